package overlay

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/basehaptic/go/internal/models"
)

func nextState(t *testing.T, g *Gate) State {
	t.Helper()
	select {
	case s := <-g.Changes():
		return s
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for overlay change")
		return State{}
	}
}

func noState(t *testing.T, g *Gate) {
	t.Helper()
	select {
	case s := <-g.Changes():
		t.Fatalf("unexpected overlay change %+v", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStaleHomeRunSuppressed(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := NewGate(HomeRunConfig(), clock)

	old := models.HapticEvent{Type: models.EventTypeHomeRun, At: clock.Now().Add(-10 * time.Second)}
	if g.Offer(old) {
		t.Fatalf("a 10s old home run must not trigger the overlay")
	}
	if _, visible := g.Current(); visible {
		t.Fatalf("overlay should stay hidden")
	}
	noState(t, g)
}

func TestFreshHomeRunShowsThenHides(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := NewGate(HomeRunConfig(), clock)

	ev := models.HapticEvent{Type: models.EventTypeHomeRun, At: clock.Now().Add(-time.Second)}
	if !g.Offer(ev) {
		t.Fatalf("fresh home run should trigger the overlay")
	}
	if s := nextState(t, g); !s.Visible || !s.Event.At.Equal(ev.At) {
		t.Fatalf("expected visible state, got %+v", s)
	}

	clock.Advance(2 * time.Second)
	if s := nextState(t, g); s.Visible {
		t.Fatalf("expected overlay to hide after its duration")
	}
	if _, visible := g.Current(); visible {
		t.Fatalf("Current should report hidden")
	}
}

func TestNewerEventRestartsTimeout(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := NewGate(HomeRunConfig(), clock)

	first := models.HapticEvent{Type: models.EventTypeHomeRun, At: clock.Now()}
	g.Offer(first)
	nextState(t, g)

	clock.Advance(1500 * time.Millisecond)
	second := models.HapticEvent{Type: models.EventTypeHomeRun, At: clock.Now()}
	if !g.Offer(second) {
		t.Fatalf("newer home run should take over")
	}
	if s := nextState(t, g); !s.Event.At.Equal(second.At) {
		t.Fatalf("expected second event to be shown, got %+v", s)
	}

	// Past the first overlay's deadline, within the second's
	clock.Advance(1 * time.Second)
	noState(t, g)
	cur, visible := g.Current()
	if !visible || !cur.At.Equal(second.At) {
		t.Fatalf("expected second overlay still visible, got %+v visible=%v", cur, visible)
	}

	clock.Advance(1 * time.Second)
	if s := nextState(t, g); s.Visible {
		t.Fatalf("expected overlay to hide after the restarted timeout")
	}
}

func TestReplayedEventDoesNotReshow(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := NewGate(EventOverlayConfig(), clock)

	ev := models.HapticEvent{Type: models.EventTypeHit, At: clock.Now()}
	if !g.Offer(ev) {
		t.Fatalf("expected hit overlay")
	}
	if g.Offer(ev) {
		t.Fatalf("the same event must not show twice")
	}
	older := models.HapticEvent{Type: models.EventTypeOut, At: ev.At.Add(-time.Second)}
	if g.Offer(older) {
		t.Fatalf("an older event must not replace a newer one")
	}
}

func TestOverlayFilters(t *testing.T) {
	clock := clockwork.NewFakeClock()
	events := NewGate(EventOverlayConfig(), clock)
	homeRun := NewGate(HomeRunConfig(), clock)

	cases := []struct {
		eventType   models.EventType
		wantEvent   bool
		wantHomeRun bool
	}{
		{models.EventTypeHit, true, false},
		{models.EventTypeScore, true, false},
		{models.EventTypeOut, true, false},
		{models.EventTypeBall, false, false},
		{models.EventTypeStrike, false, false},
		{"homerun", false, true},
		{"UNKNOWN", false, false},
	}
	for _, tc := range cases {
		clock.Advance(time.Millisecond)
		ev := models.HapticEvent{Type: tc.eventType, At: clock.Now()}
		if got := events.Offer(ev); got != tc.wantEvent {
			t.Errorf("event overlay Offer(%s) = %v, want %v", tc.eventType, got, tc.wantEvent)
		}
		if got := homeRun.Offer(ev); got != tc.wantHomeRun {
			t.Errorf("home run Offer(%s) = %v, want %v", tc.eventType, got, tc.wantHomeRun)
		}
	}
}

func TestStopCancelsPendingHide(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := NewGate(EventOverlayConfig(), clock)
	g.Offer(models.HapticEvent{Type: models.EventTypeScore, At: clock.Now()})
	nextState(t, g)

	g.Stop()
	clock.Advance(5 * time.Second)
	noState(t, g)
	if g.Offer(models.HapticEvent{Type: models.EventTypeScore, At: clock.Now()}) {
		t.Fatalf("stopped gate should reject events")
	}
}
