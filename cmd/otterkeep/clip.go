package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/its-jojoo/otterkeep/internal/usecase/search"
)

var (
	clipQuery string
	clipLimit int
)

var clipCmd = &cobra.Command{
	Use:   "clip",
	Short: "Clipboard history",
}

var clipAddCmd = &cobra.Command{
	Use:   "add [text...]",
	Short: "Add text to the history (reads stdin without arguments)",
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if len(args) == 0 {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			text = string(data)
		}
		_, saved, err := application.Capture.ProcessText(cmd.Context(), text, nil)
		if err != nil {
			return err
		}
		if !saved {
			fmt.Fprintln(cmd.OutOrStdout(), "(ignored)")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "saved")
		return nil
	},
}

var clipListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the history, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		items := application.Clipboard.Items()
		if clipQuery != "" {
			items = search.Query(items, clipQuery, search.Options{OutLimit: clipLimit})
		} else if clipLimit > 0 && len(items) > clipLimit {
			items = items[:clipLimit]
		}
		printItems(cmd.OutOrStdout(), items)
		return nil
	},
}

var clipRemoveCmd = &cobra.Command{
	Use:   "remove <index|text>",
	Short: "Remove an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		it, err := selectItem(application.Clipboard, args[0])
		if err != nil {
			return err
		}
		application.Clipboard.RemoveItem(it.ID)
		return nil
	},
}

var clipClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application.Clipboard.ClearAll()
		return nil
	},
}

var clipPasteCmd = &cobra.Command{
	Use:   "paste <index|text>",
	Short: "Put an entry back on the system clipboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		it, err := selectItem(application.Clipboard, args[0])
		if err != nil {
			return err
		}
		return application.Capture.Paste(cmd.Context(), it.Value)
	},
}

var clipWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Record clipboard changes until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		application.Start(ctx)
		fmt.Fprintln(cmd.ErrOrStderr(), "watching clipboard, Ctrl+C to stop")

		err := application.Capture.Run(ctx, application.Monitor)
		if errors.Is(err, ctx.Err()) {
			return nil
		}
		return err
	},
}

func init() {
	clipListCmd.Flags().StringVarP(&clipQuery, "query", "q", "", "only show entries matching this text")
	clipListCmd.Flags().IntVarP(&clipLimit, "limit", "n", 20, "maximum entries to show (0 for all)")

	clipCmd.AddCommand(clipAddCmd, clipListCmd, clipRemoveCmd, clipClearCmd, clipPasteCmd, clipWatchCmd)
	rootCmd.AddCommand(clipCmd)
}
