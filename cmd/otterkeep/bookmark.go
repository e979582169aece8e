package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/its-jojoo/otterkeep/internal/core"
	"github.com/its-jojoo/otterkeep/internal/store"
	"github.com/its-jojoo/otterkeep/internal/usecase/navigate"
)

var bookmarkAt cursor

var bookmarkCmd = &cobra.Command{
	Use:     "bookmark",
	Aliases: []string{"bm"},
	Short:   "Bookmarks in files",
}

var bookmarkAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Bookmark the selection, the word at the cursor or the current line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, ed, pos, err := editorAt(args[0], bookmarkAt)
		if err != nil {
			return err
		}
		c := navigate.BookmarkChange(text, ed, pos)
		if c.Value == "" {
			return fmt.Errorf("nothing to bookmark at %s:%d", args[0], bookmarkAt.line)
		}
		it, _ := application.Bookmarks.Add(c)
		fmt.Fprintf(cmd.OutOrStdout(), "bookmarked %q%s\n", it.Value, describe(it))
		return nil
	},
}

var bookmarkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookmarks by file and line",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printItems(cmd.OutOrStdout(), application.Bookmarks.Items())
		return nil
	},
}

var bookmarkJumpCmd = &cobra.Command{
	Use:   "jump <index|text>",
	Short: "Print where a bookmark is now, correcting it if the file changed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return jump(cmd, application.Bookmarks, args[0])
	},
}

var bookmarkRemoveCmd = &cobra.Command{
	Use:   "remove <index|text>",
	Short: "Remove a bookmark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		it, err := selectItem(application.Bookmarks, args[0])
		if err != nil {
			return err
		}
		application.Bookmarks.RemoveItem(it.ID)
		return nil
	},
}

var bookmarkClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every bookmark",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application.Bookmarks.ClearAll()
		return nil
	},
}

func jump(cmd *cobra.Command, s *store.Store, sel string) error {
	it, err := selectItem(s, sel)
	if err != nil {
		return err
	}
	return show(cmd, s, it)
}

func show(cmd *cobra.Command, s *store.Store, it core.Item) error {
	got, err := application.Navigate.ResolveAndShow(cmd.Context(), it, s)
	if err != nil {
		return err
	}
	if got.Drift == core.DriftNotFound {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %q not found, showing its last known position\n", core.Preview(got.Value, previewWidth))
	}
	return nil
}

func addCursorFlags(cmd *cobra.Command, c *cursor) {
	cmd.Flags().IntVarP(&c.line, "line", "l", 1, "cursor line (1-based)")
	cmd.Flags().IntVarP(&c.col, "col", "c", 1, "cursor column in bytes (1-based)")
	cmd.Flags().IntVar(&c.endLine, "end-line", 0, "selection end line; selects from the cursor")
	cmd.Flags().IntVar(&c.endCol, "end-col", 1, "selection end column")
}

func init() {
	addCursorFlags(bookmarkAddCmd, &bookmarkAt)

	bookmarkCmd.AddCommand(bookmarkAddCmd, bookmarkListCmd, bookmarkJumpCmd, bookmarkRemoveCmd, bookmarkClearCmd)
	rootCmd.AddCommand(bookmarkCmd)
}
