// Package overlay decides when the wrist shows a transient "event just happened"
// overlay. Only events younger than the freshness window are shown, so a cached event
// replayed on relaunch stays hidden. A newer event replaces the visible one and
// restarts its hide timer.
package overlay

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/basehaptic/go/internal/models"
	"github.com/rs/zerolog/log"
)

// DefaultFreshness is the maximum age of an event that may still trigger an effect.
const DefaultFreshness = 5 * time.Second

// Config describes one overlay
type Config struct {
	Name      string
	Freshness time.Duration
	Duration  time.Duration
	Accepts   func(models.EventType) bool
}

// EventOverlayConfig is the small badge shown for hits, runs and outs.
func EventOverlayConfig() Config {
	return Config{
		Name:      "event_overlay",
		Freshness: DefaultFreshness,
		Duration:  2200 * time.Millisecond,
		Accepts: func(t models.EventType) bool {
			switch t {
			case models.EventTypeHit, models.EventTypeScore, models.EventTypeOut:
				return true
			}
			return false
		},
	}
}

// HomeRunConfig is the full-screen celebration reserved for home runs.
func HomeRunConfig() Config {
	return Config{
		Name:      "homerun_transition",
		Freshness: DefaultFreshness,
		Duration:  2000 * time.Millisecond,
		Accepts: func(t models.EventType) bool {
			return t == models.EventTypeHomeRun
		},
	}
}

// State is the overlay's visibility and the event it shows
type State struct {
	Visible bool
	Event   models.HapticEvent
}

// Gate is a two-state overlay: hidden, or visible for a fixed duration
type Gate struct {
	clock   clockwork.Clock
	config  Config
	changes chan State

	mu      sync.Mutex
	current models.HapticEvent
	visible bool
	latest  time.Time // newest event ever shown, the replay guard
	timer   clockwork.Timer
	stopped bool
}

func NewGate(cfg Config, clock clockwork.Clock) *Gate {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cfg.Freshness <= 0 {
		cfg.Freshness = DefaultFreshness
	}
	return &Gate{
		clock:   clock,
		config:  cfg,
		changes: make(chan State, 16),
	}
}

func (g *Gate) Name() string { return g.config.Name }

// Changes delivers every show and hide. Transitions are dropped when nobody reads.
func (g *Gate) Changes() <-chan State { return g.changes }

// Offer shows ev if the overlay accepts its type, it is fresh, and it is newer than
// anything shown before. It reports whether the overlay became visible.
func (g *Gate) Offer(ev models.HapticEvent) bool {
	ev.Type = models.ParseEventType(string(ev.Type))
	if ev.IsZero() {
		return false
	}
	if g.config.Accepts != nil && !g.config.Accepts(ev.Type) {
		return false
	}
	if age := g.clock.Since(ev.At); age > g.config.Freshness {
		log.Debug().
			Str("overlay", g.config.Name).
			Str("event_type", string(ev.Type)).
			Dur("age", age).
			Msg("stale event suppressed")
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped || !ev.At.After(g.latest) {
		return false
	}

	g.current = ev
	g.visible = true
	g.latest = ev.At

	// Replace any pending hide; the token check in hide covers a timer that already fired
	if g.timer != nil {
		g.timer.Stop()
	}
	token := ev.At
	g.timer = g.clock.AfterFunc(g.config.Duration, func() { g.hide(token) })

	g.emit(State{Visible: true, Event: ev})
	return true
}

func (g *Gate) hide(token time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.visible || !g.current.At.Equal(token) {
		return
	}
	g.visible = false
	g.timer = nil
	g.emit(State{Visible: false, Event: g.current})
}

// emit must be called with g.mu held.
func (g *Gate) emit(s State) {
	select {
	case g.changes <- s:
	default:
		log.Warn().Str("overlay", g.config.Name).Msg("overlay change dropped")
	}
}

// Current returns the visible event, if any.
func (g *Gate) Current() (models.HapticEvent, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current, g.visible
}

// Stop cancels the pending hide and rejects further events.
func (g *Gate) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopped = true
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}
