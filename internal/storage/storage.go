package storage

import (
	"context"
	"errors"
)

// Storage is the file-store capability consumed by the CV pipeline. One
// conforming implementation per backend, selected at startup and injected.
//
// Save uses create-only semantics: writing to a name that already exists is
// an error, never a silent overwrite. Stored names are generated as fresh
// random identifiers, so a collision indicates a bug, not a retry.
type Storage interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
	Load(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
}

var (
	ErrNotFound  = errors.New("file not found")
	ErrExists    = errors.New("file already exists")
	ErrTraversal = errors.New("path traversal detected")
)
