// Package handheld is the phone side of wear sync: it tracks the followed team and
// the latest game, and hands every change to the publisher.
package handheld

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mcdev12/basehaptic/go/internal/feed"
	"github.com/mcdev12/basehaptic/go/internal/models"
	"github.com/rs/zerolog/log"
)

// ErrUnknownTeam is returned when a theme change names a club that does not exist.
var ErrUnknownTeam = errors.New("unknown team")

// Publisher is the subset of the wear publisher the handheld uses
type Publisher interface {
	PublishGame(g models.GameSnapshot) bool
	PublishTheme(team string) bool
	PublishHaptic(eventType models.EventType) bool
}

type Service struct {
	pub Publisher

	mu   sync.RWMutex
	team string
	last *models.GameSnapshot
}

func NewService(pub Publisher, team string) *Service {
	if t, ok := models.FindTeam(team); ok {
		team = t.Code
	} else {
		team = models.TeamDefault
	}
	return &Service{pub: pub, team: team}
}

// Team returns the followed team.
func (s *Service) Team() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.team
}

// SetTeam changes the followed team and pushes it to the wrist. DEFAULT clears it.
func (s *Service) SetTeam(team string) (string, bool, error) {
	code := models.TeamDefault
	if team = strings.TrimSpace(team); team != "" && !strings.EqualFold(team, models.TeamDefault) {
		t, ok := models.FindTeam(team)
		if !ok {
			return "", false, fmt.Errorf("%w: %q", ErrUnknownTeam, team)
		}
		code = t.Code
	}

	s.mu.Lock()
	s.team = code
	s.mu.Unlock()

	log.Info().Str("team", code).Msg("followed team changed")
	return code, s.pub.PublishTheme(code), nil
}

// PublishGame remembers g and pushes it. A snapshot without a followed team is
// stamped with the current one.
func (s *Service) PublishGame(g models.GameSnapshot) bool {
	s.mu.Lock()
	if g.MyTeam == "" {
		g.MyTeam = s.team
	}
	stored := g
	s.last = &stored
	s.mu.Unlock()

	return s.pub.PublishGame(g)
}

// PublishHaptic pushes a standalone event pulse.
func (s *Service) PublishHaptic(eventType models.EventType) bool {
	return s.pub.PublishHaptic(models.ParseEventType(string(eventType)))
}

// LastGame returns the most recently published snapshot.
func (s *Service) LastGame() (models.GameSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return models.GameSnapshot{}, false
	}
	return *s.last, true
}

// Drive publishes every update from src until it finishes or ctx is done.
func (s *Service) Drive(ctx context.Context, src feed.Source) error {
	err := src.Run(ctx, func(u feed.Update) {
		if u.Snapshot != nil && !s.PublishGame(*u.Snapshot) {
			log.Warn().Str("game_id", u.Snapshot.GameID).Msg("game update not queued")
		}
		if u.Haptic != "" && !s.PublishHaptic(u.Haptic) {
			log.Warn().Str("event_type", string(u.Haptic)).Msg("haptic update not queued")
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("game feed: %w", err)
	}
	return nil
}
