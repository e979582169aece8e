package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/its-jojoo/otterkeep/internal/core"
	"github.com/its-jojoo/otterkeep/internal/store"
	"github.com/its-jojoo/otterkeep/internal/usecase/navigate"
)

const previewWidth = 80

var (
	indexStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5F8787"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF41")).Bold(true)
	descStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	driftStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
)

func printItems(w io.Writer, items []core.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "(empty)")
		return
	}
	for i, it := range items {
		key := " "
		if it.Key != "" {
			key = keyStyle.Render(it.Key)
		}
		fmt.Fprintf(w, "%s %s %s%s\n", indexStyle.Render(fmt.Sprintf("%3d", i+1)), key, core.Preview(it.Value, previewWidth), describe(it))
	}
}

// describe renders "  (file:line ×uses)".
func describe(it core.Item) string {
	var parts []string
	if it.Location != nil {
		parts = append(parts, fmt.Sprintf("%s:%d", filepath.Base(navigate.PathFromURI(it.Location.URI)), it.Location.Range.Start.Line+1))
	}
	if it.UpdateCount > 0 {
		parts = append(parts, fmt.Sprintf("×%d", it.UpdateCount))
	}
	var drift string
	if it.Drift == core.DriftNotFound {
		drift = " " + driftStyle.Render("not found")
	}
	if len(parts) == 0 {
		return drift
	}
	return descStyle.Render("  ("+strings.Join(parts, " ")+")") + drift
}

// selectItem resolves a 1-based list index, or else an exact value.
func selectItem(s *store.Store, sel string) (core.Item, error) {
	items := s.Items()
	if n, err := strconv.Atoi(sel); err == nil {
		if n < 1 || n > len(items) {
			return core.Item{}, fmt.Errorf("%s: no item %d (have %d)", s.Name(), n, len(items))
		}
		return items[n-1], nil
	}
	if it, ok := s.GetByValue(sel); ok {
		return it, nil
	}
	return core.Item{}, fmt.Errorf("%s: %q: %w", s.Name(), sel, core.ErrNotFound)
}

// cursor is a 1-based line/column pair taken from flags.
type cursor struct {
	line, col       int
	endLine, endCol int
}

// editorAt describes file as if it were open in an editor with the cursor
// at c, returning the document text as well.
func editorAt(file string, c cursor) (string, core.EditorContext, core.Position, error) {
	data, err := os.ReadFile(navigate.PathFromURI(file))
	if err != nil {
		return "", core.EditorContext{}, core.Position{}, err
	}
	pos := core.Position{Line: max(c.line-1, 0), Character: max(c.col-1, 0)}
	ed := core.EditorContext{
		URI:      navigate.URIFromPath(file),
		Language: strings.TrimPrefix(filepath.Ext(file), "."),
		Focused:  true,
	}
	if c.endLine > 0 {
		end := core.Position{Line: c.endLine - 1, Character: max(c.endCol-1, 0)}
		if pos.Before(end) {
			ed.Selection = core.Range{Start: pos, End: end}
			ed.HasSelection = true
		}
	}
	return string(data), ed, pos, nil
}
