package core

import "errors"

var (
	ErrEmptyValue         = errors.New("empty value")
	ErrNotFound           = errors.New("not found")
	ErrMalformedStore     = errors.New("malformed store file")
	ErrUnsupportedVersion = errors.New("unsupported store version")
)
