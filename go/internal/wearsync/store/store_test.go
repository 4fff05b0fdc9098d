package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/basehaptic/go/internal/models"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/events"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	out := map[string]Store{"memory": NewMemory()}

	b, err := NewBolt(filepath.Join(t.TempDir(), "wear.db"))
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	out["bolt"] = b

	if dsn := os.Getenv("WEAR_TEST_DATABASE_URL"); dsn != "" {
		pg, err := NewPostgres(context.Background(), dsn, "test-"+uuid.New().String())
		if err != nil {
			t.Fatalf("open postgres: %v", err)
		}
		out["postgres"] = pg
	}

	t.Cleanup(func() {
		for _, s := range out {
			_ = s.Close()
		}
	})
	return out
}

func TestStoreGetMissing(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(context.Background(), "nothing")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if ok {
				t.Fatalf("expected missing key")
			}
		})
	}
}

func TestStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Set(ctx, KeyTheme, events.DataMap{events.KeyMyTeam: "LG"}); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := s.Set(ctx, KeyTheme, events.DataMap{events.KeyMyTeam: "KT"}); err != nil {
				t.Fatalf("set: %v", err)
			}
			got, ok, err := s.Get(ctx, KeyTheme)
			if err != nil || !ok {
				t.Fatalf("get: ok=%v err=%v", ok, err)
			}
			if team := got.String(events.KeyMyTeam, ""); team != "KT" {
				t.Fatalf("expected overwrite, got %q", team)
			}
		})
	}
}

func TestCacheGameRoundTrip(t *testing.T) {
	ctx := context.Background()
	want := models.GameSnapshot{
		GameID: "g-77", HomeTeam: "LOTTE", AwayTeam: "NC",
		HomeScore: 11, AwayScore: 9, Inning: "7회초",
		Ball: 1, Strike: 2, Out: 1,
		Bases:   models.BaseStatus{Second: true, Third: true},
		Pitcher: "PARK", Batter: "SON", MyTeam: "LOTTE",
		EventType: models.EventTypeScore,
	}
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			c := NewCache(s)
			if _, ok, _ := c.Game(ctx); ok {
				t.Fatalf("expected no game before first write")
			}
			if err := c.SetGame(ctx, want); err != nil {
				t.Fatalf("set game: %v", err)
			}
			got, ok, err := c.Game(ctx)
			if err != nil || !ok {
				t.Fatalf("game: ok=%v err=%v", ok, err)
			}
			if got != want {
				t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
			}
		})
	}
}

func TestCacheTeamDefaultsAndLastEvent(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			c := NewCache(s)
			team, err := c.Team(ctx)
			if err != nil || team != models.TeamDefault {
				t.Fatalf("expected default team, got %q err=%v", team, err)
			}
			if err := c.SetTeam(ctx, models.ThemeSelection{Team: "HANWHA", UpdatedAt: time.Now()}); err != nil {
				t.Fatalf("set team: %v", err)
			}
			if team, _ := c.Team(ctx); team != "HANWHA" {
				t.Fatalf("expected HANWHA, got %q", team)
			}

			if _, ok, _ := c.LastEvent(ctx); ok {
				t.Fatalf("expected no last event yet")
			}
			at := time.UnixMilli(1_718_000_000_321)
			if err := c.SetLastEvent(ctx, models.HapticEvent{Type: models.EventTypeHomeRun, At: at}); err != nil {
				t.Fatalf("set last event: %v", err)
			}
			ev, ok, err := c.LastEvent(ctx)
			if err != nil || !ok {
				t.Fatalf("last event: ok=%v err=%v", ok, err)
			}
			if ev.Type != models.EventTypeHomeRun || !ev.At.Equal(at) {
				t.Fatalf("unexpected last event %+v", ev)
			}
		})
	}
}

func TestCacheBlankGameIDIsNoGame(t *testing.T) {
	c := NewCache(NewMemory())
	if err := c.SetGame(context.Background(), models.GameSnapshot{HomeTeam: "SSG"}); err != nil {
		t.Fatalf("set game: %v", err)
	}
	if _, ok, _ := c.Game(context.Background()); ok {
		t.Fatalf("blank game id should read as no active game")
	}
}

func TestBoltSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wear.db")
	b, err := NewBolt(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := NewCache(b).SetGame(context.Background(), models.GameSnapshot{GameID: "persisted", HomeScore: 4}); err != nil {
		t.Fatalf("set game: %v", err)
	}
	_ = b.Close()

	b, err = NewBolt(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	g, ok, err := NewCache(b).Game(context.Background())
	if err != nil || !ok || g.GameID != "persisted" || g.HomeScore != 4 {
		t.Fatalf("unexpected game after reopen: %+v ok=%v err=%v", g, ok, err)
	}
}

func TestMemoryClosed(t *testing.T) {
	m := NewMemory()
	_ = m.Close()
	if err := m.Set(context.Background(), KeyGame, events.DataMap{}); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
