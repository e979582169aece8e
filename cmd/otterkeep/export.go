package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/its-jojoo/otterkeep/internal/adapter/storage/jsonfile"
	"github.com/its-jojoo/otterkeep/internal/config"
)

var (
	exportOut  string
	configPath string
)

var exportCmd = &cobra.Command{
	Use:       "export <store>",
	Short:     "Write a store to a JSON file, whatever its backend",
	ValidArgs: []string{"clipboard", "files", "bookmarks", "quickbookmarks"},
	Args:      cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, ok := application.Store(args[0])
		if !ok {
			return fmt.Errorf("unknown store %q", args[0])
		}
		out := exportOut
		if out == "" {
			out = "otterkeep-" + strings.ToLower(s.Name()) + ".json"
		}

		items := s.Items()
		if err := jsonfile.New(out).Save(cmd.Context(), items); err != nil {
			return fmt.Errorf("export %s: %w", s.Name(), err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "exported", len(items), "items to", out)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration file",
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a config file with the default settings",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipApp: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.Path()
		}
		if err := config.WriteDefault(path); err != nil {
			return fmt.Errorf("creating config file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default otterkeep-<store>.json)")
	configInitCmd.Flags().StringVar(&configPath, "path", "", "where to write the file (default "+config.Path()+")")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(exportCmd, configCmd)
}
