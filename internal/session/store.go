package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store.Get for absent keys.
var ErrNotFound = errors.New("key not found")

// Store is the key-value store behind the persistence shim.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
