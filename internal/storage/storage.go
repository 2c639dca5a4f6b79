// Package storage puts uploaded media somewhere a browser can fetch it from.
package storage

import (
	"context"
	"io"
)

// Uploader stores one object under key and returns its public URL.
type Uploader interface {
	Name() string
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}
