package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/its-jojoo/otterkeep/internal/core"
	"github.com/its-jojoo/otterkeep/internal/usecase/navigate"
)

var markAt cursor

var markCmd = &cobra.Command{
	Use:   "mark",
	Short: "Quick bookmarks, one per key",
}

var markSetCmd = &cobra.Command{
	Use:   "set <key> <file>",
	Short: "Set mark <key> at the cursor; the scratch key keeps every mark",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		if utf8.RuneCountInString(key) != 1 {
			return fmt.Errorf("mark key must be a single character, got %q", key)
		}
		text, ed, pos, err := editorAt(args[1], markAt)
		if err != nil {
			return err
		}
		c := navigate.BookmarkChange(text, ed, pos)
		if c.Value == "" {
			return fmt.Errorf("nothing to mark at %s:%d", args[1], markAt.line)
		}
		c.Key = key
		it, _ := application.QuickBookmarks.Add(c)
		fmt.Fprintf(cmd.OutOrStdout(), "mark %s: %q%s\n", key, core.Preview(it.Value, previewWidth), describe(it))
		return nil
	},
}

var markJumpCmd = &cobra.Command{
	Use:   "jump <key>",
	Short: "Print where mark <key> is now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		it, ok := application.QuickBookmarks.GetByKey(args[0])
		if !ok {
			return fmt.Errorf("mark %q: %w", args[0], core.ErrNotFound)
		}
		return show(cmd, application.QuickBookmarks, it)
	},
}

var markListCmd = &cobra.Command{
	Use:   "list",
	Short: "List marks by key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printItems(cmd.OutOrStdout(), application.QuickBookmarks.Items())
		return nil
	},
}

var markClearCmd = &cobra.Command{
	Use:   "clear [key]",
	Short: "Remove the marks for key, or every mark",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			application.QuickBookmarks.ClearAll()
			return nil
		}
		n := application.QuickBookmarks.RemoveAllByKey(args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d\n", n)
		return nil
	},
}

func init() {
	addCursorFlags(markSetCmd, &markAt)

	markCmd.AddCommand(markSetCmd, markJumpCmd, markListCmd, markClearCmd)
	rootCmd.AddCommand(markCmd)
}
