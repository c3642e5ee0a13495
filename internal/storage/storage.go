// Package storage persists uploaded files and returns the URL they are served from.
package storage

import (
	"context"
	"errors"
	"io"
)

// Error values double as the codes reported back to the editor.
var (
	ErrCreateDir      = errors.New("ERROR_CREATE_DIR")
	ErrDirNotWritable = errors.New("ERROR_DIR_NOT_WRITEABLE")
)

// Store saves an object under name and returns its public URL.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
}
