package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/openmined/papersync/internal/config"
	"github.com/openmined/papersync/internal/docsync"
	"github.com/openmined/papersync/internal/utils"
	"github.com/openmined/papersync/internal/version"
	"github.com/spf13/cobra"
)

const (
	exitOK      = 0
	exitFatal   = 1
	exitPartial = 2
)

var rootCmd = &cobra.Command{
	Use:   "papersync",
	Short: "Mirror a Mendeley folder onto a reMarkable folder and pull annotations back",
	Long: `papersync runs one reconciliation pass between a Mendeley folder (the source
of truth for which documents exist) and a reMarkable folder (the source of
truth for annotated content).

Documents only on reMarkable are deleted there, documents only in Mendeley
are uploaded, and annotated copies of documents present on both sides are
pulled back into Mendeley.`,
	Version:       version.Detailed(),
	SilenceErrors: true,
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
		return runSync(cmd, cfg)
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "papersync config file")
	rootCmd.PersistentFlags().StringP("source-folder", "s", config.DefaultSourceFolder, "Mendeley folder to mirror")
	rootCmd.PersistentFlags().StringP("mirror-folder", "m", config.DefaultMirrorFolder, "reMarkable folder holding the mirror")
	rootCmd.PersistentFlags().String("rmapi", config.DefaultRmapiPath, "path to the rmapi binary")
	rootCmd.PersistentFlags().String("log-file", config.DefaultLogFilePath, "append logs to this file")
	rootCmd.Flags().String("trash-dir", config.DefaultTrashDir, "keep annotated copies of deleted documents here")
	rootCmd.Flags().Bool("no-trash", false, "delete mirror documents without keeping a copy")
	rootCmd.Flags().BoolP("dry-run", "n", false, "print the plan without changing anything")
}

func main() {
	os.Exit(run())
}

func run() int {
	slog.SetDefault(slog.New(consoleHandler))

	// Setup root context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", red.Render("ERROR"), err)
	}
	return exitCode(err)
}

var consoleHandler = tint.NewHandler(os.Stdout, &tint.Options{
	Level:      slog.LevelInfo,
	TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
})

// attachLog fans the default logger out to cfg.LogFile until the returned
// func is called. A log file that can't be opened only costs a warning.
func attachLog(cfg *config.Config) func() {
	detach, err := attachLogFile(cfg.LogFile)
	if err != nil {
		slog.Warn("log file", "path", cfg.LogFile, "error", err)
		return func() {}
	}
	return detach
}

func attachLogFile(path string) (func(), error) {
	logFile, err := openLogFile(path)
	if err != nil {
		return nil, err
	}

	fileHandler := slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug})
	prev := slog.Default()
	slog.SetDefault(slog.New(utils.NewMultiLogHandler(consoleHandler, fileHandler)))

	return func() {
		slog.SetDefault(prev)
		if err := logFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "%s: log file %s: %v\n", yellow.Render("WARN"), path, err)
		}
	}, nil
}

// openLogFile appends to the log file through a line numbering interceptor.
// Closing the result flushes the interceptor and then the file.
func openLogFile(path string) (io.WriteCloser, error) {
	if err := utils.EnsureParent(path); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	return &logWriter{LogInterceptor: utils.NewLogInterceptor(file), file: file}, nil
}

type logWriter struct {
	*utils.LogInterceptor
	file *os.File
}

func (w *logWriter) Close() error {
	return errors.Join(w.LogInterceptor.Close(), w.file.Close())
}

// exitCode maps a command error onto the process exit status. Partial
// failures get their own code so that wrappers can tell them apart from
// runs that never got going.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var partial *docsync.PartialError
	if errors.As(err, &partial) {
		return exitPartial
	}
	return exitFatal
}
