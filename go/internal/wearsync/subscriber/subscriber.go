// Package subscriber applies records received from the handheld to the wrist's cache.
//
// Every record fully overwrites the channel it belongs to, so replaying a record
// leaves the cache unchanged. Nothing is returned to the sender: results are observed
// through the cache and the notification hub. Malformed fields decode to zero values,
// unknown channels are ignored, and cache failures are logged.
package subscriber

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/basehaptic/go/internal/haptic"
	"github.com/mcdev12/basehaptic/go/internal/metrics"
	"github.com/mcdev12/basehaptic/go/internal/models"
	"github.com/mcdev12/basehaptic/go/internal/theme"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/events"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/notify"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/store"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/transport"
	"github.com/rs/zerolog/log"
)

type Subscriber struct {
	cache      *store.Cache
	hub        *notify.Hub
	dispatcher *haptic.Dispatcher
	clock      clockwork.Clock
	metrics    metrics.Collector
}

// Option configures a Subscriber
type Option func(*Subscriber)

func WithClock(clock clockwork.Clock) Option {
	return func(s *Subscriber) { s.clock = clock }
}

func WithMetrics(collector metrics.Collector) Option {
	return func(s *Subscriber) { s.metrics = collector }
}

func New(cache *store.Cache, hub *notify.Hub, dispatcher *haptic.Dispatcher, opts ...Option) *Subscriber {
	s := &Subscriber{
		cache:      cache,
		hub:        hub,
		dispatcher: dispatcher,
		clock:      clockwork.NewRealClock(),
		metrics:    metrics.NoOp{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run feeds every record from r into Handle until ctx is done.
func (s *Subscriber) Run(ctx context.Context, r transport.Receiver) error {
	log.Info().Msg("subscriber started")
	err := r.Receive(ctx, s.Handle)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("receive records: %w", err)
	}
	log.Info().Msg("subscriber stopped")
	return nil
}

// Handle applies one record. It is safe to call from transport goroutines.
func (s *Subscriber) Handle(ctx context.Context, rec events.Record) {
	ch := rec.Channel()
	if ch == events.ChannelUnknown {
		log.Debug().Str("path", rec.Path).Msg("ignoring record on unknown path")
		return
	}
	s.metrics.RecordReceive(string(ch))

	switch ch {
	case events.ChannelGame:
		s.handleGame(ctx, rec)
	case events.ChannelTheme:
		s.handleTheme(ctx, rec)
	case events.ChannelHaptic:
		s.handleHaptic(ctx, rec)
	}
}

func (s *Subscriber) handleGame(ctx context.Context, rec events.Record) {
	g := events.DecodeGame(rec.Data)
	if err := s.cache.SetGame(ctx, g); err != nil {
		log.Error().Err(err).Str("path", rec.Path).Msg("failed to cache game")
	}

	// Game records carry the followed team as well. No receipt time is stored so a
	// replayed record leaves the theme entry unchanged.
	if g.MyTeam != "" {
		sel := models.ThemeSelection{Team: g.MyTeam}
		if err := s.cache.SetTeam(ctx, sel); err != nil {
			log.Error().Err(err).Str("team", g.MyTeam).Msg("failed to cache theme")
		}
		s.notify(notify.Notification{Kind: notify.KindThemeUpdated})
	}

	n := notify.Notification{Kind: notify.KindGameUpdated}
	if g.EventType != "" {
		n.Event = s.fire(ctx, g.EventType)
	}
	s.notify(n)

	log.Debug().
		Str("game_id", g.GameID).
		Str("inning", g.Inning).
		Int("home_score", g.HomeScore).
		Int("away_score", g.AwayScore).
		Str("event_type", string(g.EventType)).
		Msg("game updated")
}

func (s *Subscriber) handleTheme(ctx context.Context, rec events.Record) {
	sel := events.DecodeTheme(rec.Data)
	if err := s.cache.SetTeam(ctx, sel); err != nil {
		log.Error().Err(err).Str("team", sel.Team).Msg("failed to cache theme")
	}
	s.notify(notify.Notification{Kind: notify.KindThemeUpdated})
	log.Debug().Str("team", sel.Team).Msg("theme updated")
}

func (s *Subscriber) handleHaptic(ctx context.Context, rec events.Record) {
	tag := events.DecodeEventType(rec.Data)
	if tag == "" {
		log.Debug().Str("path", rec.Path).Msg("haptic record without event type")
		return
	}
	ev := s.fire(ctx, tag)
	s.notify(notify.Notification{Kind: notify.KindHapticTriggered, Event: ev})
}

// fire plays the waveform for tag and stamps the last-event marker with the
// receipt time.
func (s *Subscriber) fire(ctx context.Context, tag models.EventType) models.HapticEvent {
	ev := models.HapticEvent{Type: models.ParseEventType(string(tag)), At: s.clock.Now()}
	s.dispatcher.Trigger(ctx, ev.Type)
	if err := s.cache.SetLastEvent(ctx, ev); err != nil {
		log.Error().Err(err).Str("event_type", string(ev.Type)).Msg("failed to cache last event")
	}
	return ev
}

func (s *Subscriber) notify(n notify.Notification) {
	if s.hub == nil {
		return
	}
	n.At = s.clock.Now()
	s.hub.Publish(n)
}

// WatchView is what the wrist renders: the current game, if any, themed for the
// followed team.
type WatchView struct {
	Active     bool                `json:"active"`
	Game       models.GameSnapshot `json:"game"`
	Team       string              `json:"team"`
	Palette    theme.Palette       `json:"palette"`
	ScoreDiff  int                 `json:"score_diff"` // followed team's lead
	BottomHalf bool                `json:"bottom_half"`
	LastEvent  *models.HapticEvent `json:"last_event,omitempty"`
}

// View rebuilds the wrist state from the cache. A failing cache yields the
// no-active-game view.
func (s *Subscriber) View(ctx context.Context) WatchView {
	var v WatchView

	g, ok, err := s.cache.Game(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to read cached game")
	}
	if ok {
		v.Active = true
		v.Game = g
	}

	synced, err := s.cache.Team(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to read cached team")
	}
	v.Team = theme.Resolve(synced, g.MyTeam)
	v.Palette = theme.Lookup(v.Team)
	if v.Active {
		v.ScoreDiff = g.ScoreDiff(v.Team)
		v.BottomHalf = g.IsBottomHalf()
	}

	if ev, ok, err := s.cache.LastEvent(ctx); err != nil {
		log.Error().Err(err).Msg("failed to read last event")
	} else if ok {
		v.LastEvent = &ev
	}
	return v
}
