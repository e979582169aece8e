//go:build darwin

package clipboard

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

type darwinClipboard struct{}

// System returns the macOS pasteboard.
func System() Clipboard { return darwinClipboard{} }

func (darwinClipboard) ReadText(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "pbpaste")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", err
	}
	// stored literally; no trimming
	return out.String(), nil
}

func (darwinClipboard) WriteText(ctx context.Context, text string) error {
	cmd := exec.CommandContext(ctx, "pbcopy")
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}
