package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()), out.String())
	return out.String()
}

func TestCLI_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("store_dir: "+filepath.Join(dir, "store")+"\n"), 0o644))
	with := func(args ...string) []string { return append([]string{"--config", cfgPath}, args...) }

	// clipboard history
	assert.Contains(t, run(t, with("clip", "add", "hello", "world")...), "saved")
	assert.Contains(t, run(t, with("clip", "add", "   ")...), "(ignored)")
	assert.Contains(t, run(t, with("clip", "list")...), "hello world")

	// bookmarks survive edits to the file
	src := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("alpha\n  beta gamma\n"), 0o644))
	assert.Contains(t, run(t, with("bookmark", "add", src, "--line", "2", "--col", "3")...), `bookmarked "beta"`)
	assert.Contains(t, run(t, with("mark", "set", "a", src)...), `mark a: "alpha"`)

	require.NoError(t, os.WriteFile(src, []byte("new first line\nalpha\n  beta gamma\n"), 0o644))
	assert.Contains(t, run(t, with("bookmark", "jump", "1")...), src+":3:3")
	assert.Contains(t, run(t, with("mark", "jump", "a")...), src+":2:1")
	assert.Contains(t, run(t, with("bookmark", "list")...), "notes.txt:3")

	// files
	run(t, with("files", "open", src)...)
	assert.Contains(t, run(t, with("files", "list")...), src)

	// export
	out := filepath.Join(dir, "clip.json")
	assert.Contains(t, run(t, with("export", "clipboard", "--out", out)...), "exported 1 items")
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"hello world"`)

	// clearing
	assert.Contains(t, run(t, with("mark", "clear", "a")...), "removed 1")
	run(t, with("clip", "clear")...)
	assert.Contains(t, run(t, with("clip", "list")...), "(empty)")
}

func TestCLI_ConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "otterkeep", "config.yaml")
	assert.Contains(t, run(t, "config", "init", "--path", path), "Created")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "quick_bookmarks:")
}
