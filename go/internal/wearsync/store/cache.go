package store

import (
	"context"
	"time"

	"github.com/mcdev12/basehaptic/go/internal/models"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/events"
)

const (
	keyEventType = "type"
	keyEventAt   = "at"
)

// Cache is the typed view of the wrist's store
type Cache struct {
	store Store
}

func NewCache(s Store) *Cache {
	return &Cache{store: s}
}

// Game returns the cached snapshot; ok is false when nothing has been received
// or the cached game id is blank.
func (c *Cache) Game(ctx context.Context) (models.GameSnapshot, bool, error) {
	m, found, err := c.store.Get(ctx, KeyGame)
	if err != nil || !found {
		return models.GameSnapshot{}, false, err
	}
	g := events.DecodeGame(m)
	return g, g.HasGame(), nil
}

// SetGame overwrites every cached game field.
func (c *Cache) SetGame(ctx context.Context, g models.GameSnapshot) error {
	return c.store.Set(ctx, KeyGame, events.GameRecord(0, g).Data)
}

// Team returns the synced team, DEFAULT when none has been received.
func (c *Cache) Team(ctx context.Context) (string, error) {
	m, found, err := c.store.Get(ctx, KeyTheme)
	if err != nil || !found {
		return models.TeamDefault, err
	}
	return events.DecodeTheme(m).Team, nil
}

func (c *Cache) SetTeam(ctx context.Context, sel models.ThemeSelection) error {
	return c.store.Set(ctx, KeyTheme, events.ThemeRecord(0, sel).Data)
}

// LastEvent returns the last-event marker.
func (c *Cache) LastEvent(ctx context.Context) (models.HapticEvent, bool, error) {
	m, found, err := c.store.Get(ctx, KeyLastEvent)
	if err != nil || !found {
		return models.HapticEvent{}, false, err
	}
	ev := models.HapticEvent{
		Type: models.ParseEventType(m.String(keyEventType, "")),
	}
	if ms := m.Int64(keyEventAt, 0); ms > 0 {
		ev.At = time.UnixMilli(ms)
	}
	if ev.IsZero() {
		return models.HapticEvent{}, false, nil
	}
	return ev, true, nil
}

func (c *Cache) SetLastEvent(ctx context.Context, ev models.HapticEvent) error {
	return c.store.Set(ctx, KeyLastEvent, events.DataMap{
		keyEventType: string(ev.Type),
		keyEventAt:   ev.At.UnixMilli(),
	})
}
