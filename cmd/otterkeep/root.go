package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/its-jojoo/otterkeep/internal/app"
	"github.com/its-jojoo/otterkeep/internal/config"
	"github.com/its-jojoo/otterkeep/internal/usecase/navigate"
)

var (
	cfgFile  string
	storeDir string
	logLevel string

	// set up by PersistentPreRunE for commands that use the stores
	cfg         *config.Config
	application *app.App
)

// skipApp marks commands that run without opening the stores.
const skipApp = "skip-app"

var rootCmd = &cobra.Command{
	Use:           "otterkeep",
	Short:         "Clipboard history, recent files and bookmarks that survive restarts",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipApp] != "" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if storeDir != "" {
			cfg.StoreDir = storeDir
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}

		logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
		slog.SetDefault(logger)

		application, err = app.New(cmd.Context(), cfg, app.Deps{
			Logger:   logger,
			Host:     navigate.FSHost{Out: cmd.OutOrStdout()},
			Notifier: stderrNotifier{w: cmd.ErrOrStderr()},
		})
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if application == nil {
			return nil
		}
		err := application.Close()
		application = nil
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml or "+config.Path()+")")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store-dir", "", "directory for store files")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

type stderrNotifier struct{ w io.Writer }

func (n stderrNotifier) Warn(msg string) { fmt.Fprintln(n.w, "warning:", msg) }
