package navigate

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/its-jojoo/otterkeep/internal/core"
)

type fileDocument struct {
	uri  string
	text string
}

func (d fileDocument) URI() string  { return d.uri }
func (d fileDocument) Text() string { return d.text }

// FSHost opens documents from the local filesystem and shows them by
// printing "path:line:column" (1-based), which terminals and editors can
// follow.
type FSHost struct {
	Out io.Writer
}

func (h FSHost) OpenDocument(ctx context.Context, uri string) (Document, error) {
	_ = ctx
	data, err := os.ReadFile(PathFromURI(uri))
	if err != nil {
		return nil, err
	}
	return fileDocument{uri: uri, text: string(data)}, nil
}

func (h FSHost) ShowDocument(ctx context.Context, doc Document, selection core.Range) error {
	_ = ctx
	out := h.Out
	if out == nil {
		out = os.Stdout
	}
	_, err := fmt.Fprintf(out, "%s:%d:%d\n", PathFromURI(doc.URI()), selection.Start.Line+1, selection.Start.Character+1)
	return err
}

// PathFromURI returns the filesystem path of a file:// URI. Anything else
// is treated as a path already.
func PathFromURI(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	u, err := url.Parse(uri)
	if err != nil {
		return strings.TrimPrefix(uri, "file://")
	}
	return filepath.FromSlash(u.Path)
}

// URIFromPath returns the file:// URI of path, made absolute.
func URIFromPath(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
