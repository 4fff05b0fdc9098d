// Package feed produces the game updates the handheld publishes to the wrist.
package feed

import (
	"context"

	"github.com/mcdev12/basehaptic/go/internal/models"
)

// Update is one tick of the game feed. Snapshot is nil for a standalone haptic pulse.
type Update struct {
	Snapshot *models.GameSnapshot `json:"snapshot,omitempty"`
	Haptic   models.EventType     `json:"haptic,omitempty"`
}

// Source emits updates until it is exhausted or ctx is done.
type Source interface {
	Run(ctx context.Context, emit func(Update)) error
}
