// Package storage is the durable key/value store backing per-session
// state (current role, guest cart snapshots). It plays the part the
// browser's local storage plays for the UI: small serialized values
// under fixed keys, surviving reloads.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: key not found")

// Store is implemented by every backend. Values are opaque bytes;
// callers own the serialization.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
