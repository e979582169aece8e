package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Recently opened files",
}

var filesOpenCmd = &cobra.Command{
	Use:   "open <path...>",
	Short: "Record files as opened",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, p := range args {
			abs, err := filepath.Abs(p)
			if err != nil {
				return err
			}
			application.Track.DocumentOpened(cmd.Context(), abs, strings.TrimPrefix(filepath.Ext(abs), "."))
		}
		return nil
	},
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List files, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printItems(cmd.OutOrStdout(), application.Files.Items())
		return nil
	},
}

var filesRemoveCmd = &cobra.Command{
	Use:   "remove <index|path>",
	Short: "Forget a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		it, err := selectItem(application.Files, args[0])
		if err != nil {
			return err
		}
		application.Files.RemoveItem(it.ID)
		return nil
	},
}

var filesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application.Files.ClearAll()
		return nil
	},
}

func init() {
	filesCmd.AddCommand(filesOpenCmd, filesListCmd, filesRemoveCmd, filesClearCmd)
	rootCmd.AddCommand(filesCmd)
}
