package events

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/basehaptic/go/internal/models"
)

func sampleGame() models.GameSnapshot {
	return models.GameSnapshot{
		GameID:    "20240601-SSG-KIA",
		HomeTeam:  "SSG",
		AwayTeam:  "KIA",
		HomeScore: 5,
		AwayScore: 4,
		Inning:    "9회말",
		Ball:      3,
		Strike:    2,
		Out:       2,
		Bases:     models.BaseStatus{First: true, Third: true},
		Pitcher:   "KIM",
		Batter:    "LEE",
		MyTeam:    "SSG",
		EventType: models.EventTypeHit,
	}
}

func TestGameRecordSurvivesWire(t *testing.T) {
	want := sampleGame()
	rec := GameRecord(1718000000000, want)

	b, err := Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := Unmarshal(b)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Path != "/game/1718000000000" {
		t.Fatalf("unexpected path %q", got.Path)
	}
	if !got.Urgent {
		t.Fatalf("expected urgent record")
	}
	if got.Channel() != ChannelGame {
		t.Fatalf("expected game channel, got %q", got.Channel())
	}
	if snap := DecodeGame(got.Data); snap != want {
		t.Fatalf("decoded snapshot mismatch:\n got %+v\nwant %+v", snap, want)
	}
}

func TestGameRecordOmitsEmptyEventType(t *testing.T) {
	g := sampleGame()
	g.EventType = ""
	rec := GameRecord(1, g)
	if _, ok := rec.Data[KeyEventType]; ok {
		t.Fatalf("event_type should be omitted when empty")
	}
	if got := DecodeGame(rec.Data).EventType; got != "" {
		t.Fatalf("expected empty event type, got %q", got)
	}
}

func TestThemeRecord(t *testing.T) {
	at := time.UnixMilli(1718000000123)
	rec := ThemeRecord(7, models.ThemeSelection{Team: "LG", UpdatedAt: at})
	b, err := Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := Unmarshal(b)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	sel := DecodeTheme(got.Data)
	if sel.Team != "LG" || !sel.UpdatedAt.Equal(at) {
		t.Fatalf("unexpected theme %+v", sel)
	}
}

func TestThemeRecordWithoutTimestamp(t *testing.T) {
	rec := ThemeRecord(0, models.ThemeSelection{Team: "SSG"})
	if _, ok := rec.Data[KeyUpdatedAt]; ok {
		t.Fatalf("updated_at should be omitted for a zero time, got %v", rec.Data)
	}
	if sel := DecodeTheme(rec.Data); sel.Team != "SSG" || !sel.UpdatedAt.IsZero() {
		t.Fatalf("unexpected theme %+v", sel)
	}
}

func TestDecodeDefaults(t *testing.T) {
	snap := DecodeGame(DataMap{KeyGameID: "g1", KeyHomeScore: "not-a-number", KeyBall: 2.5})
	if snap.GameID != "g1" || snap.HomeScore != 0 || snap.Ball != 0 || snap.Bases.First {
		t.Fatalf("malformed fields should default, got %+v", snap)
	}
	if sel := DecodeTheme(DataMap{}); sel.Team != models.TeamDefault {
		t.Fatalf("missing team should default, got %q", sel.Team)
	}
}

func TestChannelFromPath(t *testing.T) {
	cases := []struct {
		path string
		want Channel
	}{
		{"/game/123", ChannelGame},
		{"/game", ChannelGame},
		{"/theme/1", ChannelTheme},
		{"/haptic/99", ChannelHaptic},
		{"/gameday/1", ChannelUnknown},
		{"/score/1", ChannelUnknown},
		{"", ChannelUnknown},
	}
	for _, tc := range cases {
		if got := ChannelFromPath(tc.path); got != tc.want {
			t.Errorf("ChannelFromPath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, err := Unmarshal([]byte{0xff, 0x01, 0x02}); err == nil {
		t.Fatalf("expected error for garbage input")
	}
}

func TestSequencerStrictlyIncreasesWithinTick(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(5000))
	seq := NewSequencer(clock)

	a, b, c := seq.Next(), seq.Next(), seq.Next()
	if !(a < b && b < c) {
		t.Fatalf("expected strictly increasing suffixes, got %d %d %d", a, b, c)
	}
	if a != 5000 {
		t.Fatalf("first suffix should be the clock millis, got %d", a)
	}

	clock.Advance(time.Second)
	if d := seq.Next(); d != 6000 {
		t.Fatalf("expected suffix to follow the clock again, got %d", d)
	}
}
