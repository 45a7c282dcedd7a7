// Package metadata stores the console's small key/value slots (the session
// token and the serialized user) in the local SQLite database.
package metadata

import (
	"context"
)

// Repository is a key/value slot store. Get returns (nil, nil) for a missing
// key; Delete of a missing key is not an error. Clear drops every key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
}
