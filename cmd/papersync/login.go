package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/openmined/papersync/internal/config"
	"github.com/openmined/papersync/internal/mendeley"
	"github.com/openmined/papersync/internal/utils"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

func init() {
	rootCmd.AddCommand(newLoginCmd())
}

func newLoginCmd() *cobra.Command {
	var noSave bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize papersync against your Mendeley account",
		Long: `login runs the OAuth authorization code flow against Mendeley. Open the
printed URL, approve access, and the browser is redirected to a local
callback that hands the code back to papersync.

The resulting token is printed as MENDELEY_OAUTH2_TOKEN_BASE64 and saved into
the config file unless --no-save is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.ValidateLogin(); err != nil {
				return err
			}
			cmd.SilenceUsage = true
			defer attachLog(cfg)()

			out := cmd.OutOrStdout()
			auth := authConfig(cfg).OAuth2()
			state := uuid.NewString()

			fmt.Fprintln(out, "Open this URL in your browser to log in:")
			fmt.Fprintln(out, cyan.Render(auth.AuthCodeURL(state, oauth2.AccessTypeOffline)))
			fmt.Fprintln(out, gray.Render("waiting for the callback on "+cfg.Mendeley.RedirectURI))

			code, err := mendeley.ListenForCode(cmd.Context(), cfg.Mendeley.RedirectURI, state)
			if err != nil {
				return err
			}

			tok, err := auth.Exchange(cmd.Context(), code)
			if err != nil {
				return fmt.Errorf("mendeley token exchange: %w", err)
			}

			encoded, err := mendeley.EncodeToken(tok)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, green.Render("Login succeeded."))
			fmt.Fprintln(out, "Set this environment variable or keep it in ~/.mendeley_config:")
			fmt.Fprintf(out, "MENDELEY_OAUTH2_TOKEN_BASE64=%s\n", encoded)

			if noSave {
				return nil
			}
			return saveToken(cfg, encoded, out)
		},
	}

	cmd.Flags().BoolVar(&noSave, "no-save", false, "only print the token, do not write the config file")
	return cmd
}

// saveToken stores the token in the config file, keeping whatever else the
// file already holds.
func saveToken(cfg *config.Config, encoded string, out io.Writer) error {
	stored, err := config.Load(cfg.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		stored = config.Default()
		stored.Mendeley = cfg.Mendeley
	}
	stored.Mendeley.Token = encoded

	if err := stored.Save(cfg.Path); err != nil {
		return err
	}

	fmt.Fprintf(out, "Token saved to %s %s\n", cfg.Path, lightGray.Render("("+utils.MaskSecret(encoded)+")"))
	return nil
}
