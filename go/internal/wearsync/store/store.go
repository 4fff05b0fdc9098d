// Package store holds the wrist's last-value cache. The backend is injected: memory
// for tests, bbolt on the device, Postgres when the cache is shared.
package store

import (
	"context"
	"errors"

	"github.com/mcdev12/basehaptic/go/internal/wearsync/events"
)

// Cache keys
const (
	KeyGame      = "game"
	KeyTheme     = "theme"
	KeyLastEvent = "last_event"
)

// ErrClosed is returned by a backend used after Close.
var ErrClosed = errors.New("store closed")

// Store is a last-value-per-key persistence backend.
type Store interface {
	Get(ctx context.Context, key string) (events.DataMap, bool, error)
	Set(ctx context.Context, key string, value events.DataMap) error
	Close() error
}
