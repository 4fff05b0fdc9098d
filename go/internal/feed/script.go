package feed

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/basehaptic/go/internal/models"
	"github.com/rs/zerolog/log"
)

const defaultStepDelay = 2 * time.Second

// Step is one play of a scripted game
type Step struct {
	Event       models.EventType
	Description string
	Apply       func(models.GameSnapshot) models.GameSnapshot
	Delay       time.Duration // pause after the step, defaultStepDelay when zero
}

// Script replays a fixed sequence of plays, publishing the whole game state after each.
type Script struct {
	Initial models.GameSnapshot
	Steps   []Step
	clock   clockwork.Clock
}

func NewScript(initial models.GameSnapshot, steps []Step, clock clockwork.Clock) *Script {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Script{Initial: initial, Steps: steps, clock: clock}
}

// Run applies every step in order and emits the resulting snapshot tagged with the
// step's event.
func (s *Script) Run(ctx context.Context, emit func(Update)) error {
	state := s.Initial
	log.Info().Str("game_id", state.GameID).Int("steps", len(s.Steps)).Msg("simulation started")

	for i, step := range s.Steps {
		if step.Apply != nil {
			state = step.Apply(state)
		}
		snap := state
		snap.EventType = step.Event

		log.Info().
			Int("step", i+1).
			Str("event_type", string(step.Event)).
			Str("inning", snap.Inning).
			Msg(step.Description)
		emit(Update{Snapshot: &snap})

		delay := step.Delay
		if delay <= 0 {
			delay = defaultStepDelay
		}
		select {
		case <-ctx.Done():
			log.Info().Int("step", i+1).Msg("simulation cancelled")
			return ctx.Err()
		case <-s.clock.After(delay):
		}
	}

	log.Info().Str("game_id", state.GameID).Msg("simulation finished")
	return nil
}

// DemoGame is the opening state of the demo inning: SSG hosting KIA.
func DemoGame(myTeam string) models.GameSnapshot {
	return models.GameSnapshot{
		GameID:   "test_001",
		HomeTeam: "SSG",
		AwayTeam: "KIA",
		Inning:   "1회초",
		Pitcher:  "양현종",
		Batter:   "추신수",
		MyTeam:   myTeam,
	}
}

// DemoSteps is the scripted first inning used to exercise the wrist end to end.
func DemoSteps() []Step {
	const homeRunDelay = 3 * time.Second
	return []Step{
		{Event: models.EventTypeBall, Description: "1회초 볼 원", Apply: func(g models.GameSnapshot) models.GameSnapshot {
			g.Ball = 1
			return g
		}},
		{Event: models.EventTypeStrike, Description: "스트라이크!", Apply: func(g models.GameSnapshot) models.GameSnapshot {
			g.Strike = 1
			return g
		}},
		{Event: models.EventTypeBall, Description: "볼 투", Apply: func(g models.GameSnapshot) models.GameSnapshot {
			g.Ball = 2
			return g
		}},
		{Event: models.EventTypeHit, Description: "추신수, 좌전 안타!", Apply: func(g models.GameSnapshot) models.GameSnapshot {
			g.Ball, g.Strike = 0, 0
			g.Bases.First = true
			g.Batter = "김현수"
			return g
		}},
		{Event: models.EventTypeStrike, Description: "김현수에게 스트라이크", Apply: func(g models.GameSnapshot) models.GameSnapshot {
			g.Strike = 1
			return g
		}},
		{Event: models.EventTypeStrike, Description: "연속 스트라이크!", Apply: func(g models.GameSnapshot) models.GameSnapshot {
			g.Strike = 2
			return g
		}},
		{Event: models.EventTypeHomeRun, Description: "김현수! 투런 홈런!!", Delay: homeRunDelay, Apply: func(g models.GameSnapshot) models.GameSnapshot {
			g.HomeScore += 2
			g.Ball, g.Strike = 0, 0
			g.Bases.First = false
			g.Batter = "최정"
			return g
		}},
		{Event: models.EventTypeScore, Description: "SSG 2점 리드!"},
		{Event: models.EventTypeBall, Description: "최정에게 볼", Apply: func(g models.GameSnapshot) models.GameSnapshot {
			g.Ball = 1
			return g
		}},
		{Event: models.EventTypeOut, Description: "최정, 플라이 아웃", Apply: func(g models.GameSnapshot) models.GameSnapshot {
			g.Ball, g.Strike, g.Out = 0, 0, 1
			g.Batter = "한유섬"
			return g
		}},
		{Event: models.EventTypeStrike, Description: "한유섬에게 스트라이크", Apply: func(g models.GameSnapshot) models.GameSnapshot {
			g.Strike = 1
			return g
		}},
		{Event: models.EventTypeHit, Description: "한유섬, 중전 안타!", Apply: func(g models.GameSnapshot) models.GameSnapshot {
			g.Ball, g.Strike = 0, 0
			g.Bases.First = true
			g.Batter = "박성한"
			return g
		}},
		{Event: models.EventTypeOut, Description: "박성한, 삼진 아웃", Apply: func(g models.GameSnapshot) models.GameSnapshot {
			g.Ball, g.Strike, g.Out = 0, 0, 2
			g.Batter = "이재원"
			return g
		}},
		{Event: models.EventTypeOut, Description: "이재원, 땅볼 아웃, 체인지!", Apply: func(g models.GameSnapshot) models.GameSnapshot {
			g.Ball, g.Strike, g.Out = 0, 0, 0
			g.Bases = models.BaseStatus{}
			g.Inning = "1회말"
			g.Pitcher = "김광현"
			g.Batter = "나성범"
			return g
		}},
		{Event: models.EventTypeStrike, Description: "나성범에게 스트라이크", Apply: func(g models.GameSnapshot) models.GameSnapshot {
			g.Strike = 1
			return g
		}},
		{Event: models.EventTypeBall, Description: "볼", Apply: func(g models.GameSnapshot) models.GameSnapshot {
			g.Ball = 1
			return g
		}},
		{Event: models.EventTypeHit, Description: "나성범, 우전 안타!", Apply: func(g models.GameSnapshot) models.GameSnapshot {
			g.Ball, g.Strike = 0, 0
			g.Bases.First = true
			g.Batter = "김도영"
			return g
		}},
		{Event: models.EventTypeHomeRun, Description: "김도영!! 역전 투런 홈런!!!", Delay: homeRunDelay, Apply: func(g models.GameSnapshot) models.GameSnapshot {
			g.AwayScore += 2
			g.Ball, g.Strike = 0, 0
			g.Bases.First = false
			g.Batter = "최형우"
			return g
		}},
		{Event: models.EventTypeScore, Description: "KIA 역전!"},
	}
}

// NewDemoScript builds the demo inning for the given followed team.
func NewDemoScript(myTeam string, clock clockwork.Clock) *Script {
	return NewScript(DemoGame(myTeam), DemoSteps(), clock)
}
