// Package wrist is the watch side of wear sync: it keeps the overlays in step with the
// subscriber and serves the rendered state.
package wrist

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mcdev12/basehaptic/go/internal/models"
	"github.com/mcdev12/basehaptic/go/internal/overlay"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/notify"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/subscriber"
	"github.com/rs/zerolog/log"
)

// OverlayState is one overlay as the UI would draw it
type OverlayState struct {
	Visible bool                `json:"visible"`
	Event   *models.HapticEvent `json:"event,omitempty"`
}

// State is the full wrist screen
type State struct {
	subscriber.WatchView
	Overlays map[string]OverlayState `json:"overlays"`
}

type App struct {
	sub   *subscriber.Subscriber
	gates []*overlay.Gate
}

func NewApp(sub *subscriber.Subscriber, gates ...*overlay.Gate) *App {
	return &App{sub: sub, gates: gates}
}

// Restore replays the cached last event through the overlays, as on a relaunch. The
// freshness window keeps an old event hidden.
func (a *App) Restore(ctx context.Context) {
	v := a.sub.View(ctx)
	if v.LastEvent == nil {
		return
	}
	shown := a.offer(*v.LastEvent)
	log.Info().
		Str("event_type", string(v.LastEvent.Type)).
		Time("at", v.LastEvent.At).
		Bool("shown", shown).
		Msg("restored last event")
}

func (a *App) offer(ev models.HapticEvent) bool {
	shown := false
	for _, g := range a.gates {
		if g.Offer(ev) {
			shown = true
		}
	}
	return shown
}

// Watch routes events from notifications into the overlays and logs overlay
// transitions until ctx is done or the subscription closes.
func (a *App) Watch(ctx context.Context, notes *notify.Subscription) {
	for _, g := range a.gates {
		go a.logTransitions(ctx, g)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notes.C():
			if !ok {
				return
			}
			log.Debug().Str("kind", string(n.Kind)).Msg("wrist notified")
			if !n.Event.IsZero() {
				a.offer(n.Event)
			}
		}
	}
}

func (a *App) logTransitions(ctx context.Context, g *overlay.Gate) {
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-g.Changes():
			if s.Visible {
				log.Info().Str("overlay", g.Name()).Str("event_type", string(s.Event.Type)).Msg("overlay shown")
			} else {
				log.Info().Str("overlay", g.Name()).Msg("overlay hidden")
			}
		}
	}
}

// State assembles the current screen.
func (a *App) State(ctx context.Context) State {
	s := State{WatchView: a.sub.View(ctx), Overlays: make(map[string]OverlayState, len(a.gates))}
	for _, g := range a.gates {
		ev, visible := g.Current()
		o := OverlayState{Visible: visible}
		if visible {
			o.Event = &ev
		}
		s.Overlays[g.Name()] = o
	}
	return s
}

// RegisterRoutes registers the status API with an HTTP mux
func (a *App) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/state", a.HandleState)
}

// HandleState handles GET /api/state
func (a *App) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(a.State(r.Context())); err != nil {
		log.Error().Err(err).Msg("failed to write state")
	}
}
