package main

import (
	"fmt"

	"github.com/openmined/papersync/internal/docsync"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newStatusCmd())
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what the next sync would do, without changing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			cmd.SilenceUsage = true
			defer attachLog(cfg)()

			f, err := buildFolders(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer persistToken(cfg, f)

			diff, err := docsync.NewReconciler(f.source, f.mirror, docsync.WithDryRun(true)).Plan(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), renderPlan(f.source.Name(), f.mirror.Name(), diff))
			return nil
		},
	}
}
