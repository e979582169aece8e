//go:build !darwin

package clipboard

import "context"

type unsupportedClipboard struct{}

// System returns a clipboard that fails with ErrUnsupported.
func System() Clipboard { return unsupportedClipboard{} }

func (unsupportedClipboard) ReadText(ctx context.Context) (string, error) {
	_ = ctx
	return "", ErrUnsupported
}

func (unsupportedClipboard) WriteText(ctx context.Context, text string) error {
	_, _ = ctx, text
	return ErrUnsupported
}
