package notify

import (
	"sync"
	"time"

	"github.com/mcdev12/basehaptic/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Kind tags a notification
type Kind string

const (
	KindGameUpdated     Kind = "game_updated"
	KindThemeUpdated    Kind = "theme_updated"
	KindHapticTriggered Kind = "haptic_triggered"
)

// Notification tells UI consumers that a part of the cache changed. Event is set
// only for KindHapticTriggered and for game updates carrying an event tag.
type Notification struct {
	Kind  Kind               `json:"kind"`
	Event models.HapticEvent `json:"event,omitempty"`
	At    time.Time          `json:"at"`
}

// Hub fans notifications from the subscriber out to any number of consumers.
// Publish never blocks; a consumer that falls behind misses notifications.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscription is one consumer's view of the hub
type Subscription struct {
	ch   chan Notification
	hub  *Hub
	once sync.Once
}

// C returns the notification channel. It is closed when the subscription or hub closes.
func (s *Subscription) C() <-chan Notification { return s.ch }

// Close detaches the subscription.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Subscribe registers a consumer with the given buffer size.
func (h *Hub) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = 16
	}
	s := &Subscription{ch: make(chan Notification, buffer), hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(s.ch)
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		s.once.Do(func() { close(s.ch) })
	}
}

// Publish delivers n to every subscriber that has room.
func (h *Hub) Publish(n Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		select {
		case s.ch <- n:
		default:
			log.Warn().Str("kind", string(n.Kind)).Msg("notification subscriber full, dropping")
		}
	}
}

// Close closes every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for s := range h.subs {
		delete(h.subs, s)
		s.once.Do(func() { close(s.ch) })
	}
}
