// Package credstore is the persisted credential record of the portal core:
// an asynchronous string key-value store plus a typed repository that owns
// the key layout and its invariants.
//
// Read failures are never fatal. A store that cannot answer reads as
// "absent", biasing every caller toward re-authentication over silently
// wrong access.
package credstore

import (
	"context"
	"errors"
)

// ErrKeyNotFound indicates the key holds no value.
var ErrKeyNotFound = errors.New("credstore: key not found")

// Store is the raw persistence surface the portal platform provides. All
// operations are asynchronous and may fail; MultiSet and MultiRemove are
// atomic with respect to the keys they touch.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	MultiSet(ctx context.Context, pairs [][2]string) error
	MultiRemove(ctx context.Context, keys []string) error
}
