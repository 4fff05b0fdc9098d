package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/mcdev12/basehaptic/go/internal/models"
	"github.com/rs/zerolog/log"
)

type ListenerConfig struct {
	DatabaseURL   string        // Postgres DSN for LISTEN/NOTIFY
	NotifyChannel string        // Channel name to LISTEN on
	PingInterval  time.Duration // Keeps the listening connection alive
	MinReconnect  time.Duration
	MaxReconnect  time.Duration
}

func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		NotifyChannel: "game_snapshots",
		PingInterval:  90 * time.Second,
		MinReconnect:  10 * time.Second,
		MaxReconnect:  time.Minute,
	}
}

// PGListener receives game updates pushed by the backend with pg_notify. The payload
// is a JSON Update, or a bare JSON GameSnapshot.
type PGListener struct {
	listener *pq.Listener
	cfg      ListenerConfig
}

func NewPGListener(cfg ListenerConfig) (*PGListener, error) {
	l := pq.NewListener(
		cfg.DatabaseURL,
		cfg.MinReconnect,
		cfg.MaxReconnect,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("listener event")
			}
		},
	)
	if err := l.Listen(cfg.NotifyChannel); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("failed to listen to channel: %w", err)
	}

	log.Info().
		Str("channel", cfg.NotifyChannel).
		Msg("listening for game snapshots")

	return &PGListener{listener: l, cfg: cfg}, nil
}

func (l *PGListener) Run(ctx context.Context, emit func(Update)) error {
	pingTicker := time.NewTicker(l.cfg.PingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("game listener shutting down")
			return l.listener.Close()
		case note := <-l.listener.Notify:
			if note == nil {
				// Connection was re-established; updates sent meanwhile are lost
				log.Warn().Str("channel", l.cfg.NotifyChannel).Msg("listener reconnected")
				continue
			}
			u, err := DecodeUpdate([]byte(note.Extra))
			if err != nil {
				log.Error().Err(err).Str("channel", note.Channel).Msg("invalid game notification")
				continue
			}
			emit(u)
		case <-pingTicker.C:
			if err := l.listener.Ping(); err != nil {
				log.Error().Err(err).Msg("failed to ping listener")
			}
		}
	}
}

// DecodeUpdate parses a notification payload.
func DecodeUpdate(payload []byte) (Update, error) {
	var u Update
	if err := json.Unmarshal(payload, &u); err != nil {
		return Update{}, fmt.Errorf("decode update: %w", err)
	}
	if u.Snapshot == nil && u.Haptic == "" {
		var g models.GameSnapshot
		if err := json.Unmarshal(payload, &g); err != nil {
			return Update{}, fmt.Errorf("decode snapshot: %w", err)
		}
		if !g.HasGame() {
			return Update{}, fmt.Errorf("payload has neither a snapshot nor a haptic tag")
		}
		u.Snapshot = &g
	}
	u.Haptic = models.ParseEventType(string(u.Haptic))
	if u.Snapshot != nil {
		u.Snapshot.EventType = models.ParseEventType(string(u.Snapshot.EventType))
	}
	return u, nil
}
