// Package storage provides whole-document persistence with atomic replacement
// and a write serializer for read-modify-write sequences.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no document exists under the key.
var ErrNotFound = errors.New("storage: document not found")

// Store is a transactional key-value document store. Each key names a whole
// document that is read and replaced as a unit; Put must be atomic so a
// concurrent reader never observes a partially written document.
type Store interface {
	Get(ctx context.Context, key string, out any) error
	Put(ctx context.Context, key string, doc any) error
}
