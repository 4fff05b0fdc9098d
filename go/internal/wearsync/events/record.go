package events

import (
	"time"

	"github.com/mcdev12/basehaptic/go/internal/models"
)

// Record keys shared by the handheld and the wrist.
const (
	KeyGameID     = "game_id"
	KeyHomeTeam   = "home_team"
	KeyAwayTeam   = "away_team"
	KeyHomeScore  = "home_score"
	KeyAwayScore  = "away_score"
	KeyInning     = "inning"
	KeyBall       = "ball"
	KeyStrike     = "strike"
	KeyOut        = "out"
	KeyBaseFirst  = "base_first"
	KeyBaseSecond = "base_second"
	KeyBaseThird  = "base_third"
	KeyPitcher    = "pitcher"
	KeyBatter     = "batter"
	KeyMyTeam     = "my_team"
	KeyEventType  = "event_type"
	KeyUpdatedAt  = "updated_at"
)

// Record is a single key-value push on a channel.
type Record struct {
	Path   string  `json:"path"`
	Data   DataMap `json:"data"`
	Urgent bool    `json:"urgent"`
}

// Channel returns the channel the record was published on.
func (r Record) Channel() Channel {
	return ChannelFromPath(r.Path)
}

// GameRecord encodes a full game snapshot.
func GameRecord(seq int64, g models.GameSnapshot) Record {
	data := DataMap{
		KeyGameID:     g.GameID,
		KeyHomeTeam:   g.HomeTeam,
		KeyAwayTeam:   g.AwayTeam,
		KeyHomeScore:  g.HomeScore,
		KeyAwayScore:  g.AwayScore,
		KeyInning:     g.Inning,
		KeyBall:       g.Ball,
		KeyStrike:     g.Strike,
		KeyOut:        g.Out,
		KeyBaseFirst:  g.Bases.First,
		KeyBaseSecond: g.Bases.Second,
		KeyBaseThird:  g.Bases.Third,
		KeyPitcher:    g.Pitcher,
		KeyBatter:     g.Batter,
		KeyMyTeam:     g.MyTeam,
	}
	if g.EventType != "" {
		data[KeyEventType] = string(g.EventType)
	}
	return Record{Path: Path(ChannelGame, seq), Data: data, Urgent: true}
}

// ThemeRecord encodes a followed-team change. updated_at is omitted for a zero
// UpdatedAt.
func ThemeRecord(seq int64, t models.ThemeSelection) Record {
	data := DataMap{KeyMyTeam: t.Team}
	if !t.UpdatedAt.IsZero() {
		data[KeyUpdatedAt] = t.UpdatedAt.UnixMilli()
	}
	return Record{Path: Path(ChannelTheme, seq), Data: data, Urgent: true}
}

// HapticRecord encodes a standalone event pulse.
func HapticRecord(seq int64, eventType models.EventType) Record {
	return Record{
		Path:   Path(ChannelHaptic, seq),
		Data:   DataMap{KeyEventType: string(eventType)},
		Urgent: true,
	}
}

// DecodeGame rebuilds a snapshot; absent fields default to zero values.
func DecodeGame(m DataMap) models.GameSnapshot {
	return models.GameSnapshot{
		GameID:    m.String(KeyGameID, ""),
		HomeTeam:  m.String(KeyHomeTeam, ""),
		AwayTeam:  m.String(KeyAwayTeam, ""),
		HomeScore: m.Int(KeyHomeScore, 0),
		AwayScore: m.Int(KeyAwayScore, 0),
		Inning:    m.String(KeyInning, ""),
		Ball:      m.Int(KeyBall, 0),
		Strike:    m.Int(KeyStrike, 0),
		Out:       m.Int(KeyOut, 0),
		Bases: models.BaseStatus{
			First:  m.Bool(KeyBaseFirst, false),
			Second: m.Bool(KeyBaseSecond, false),
			Third:  m.Bool(KeyBaseThird, false),
		},
		Pitcher:   m.String(KeyPitcher, ""),
		Batter:    m.String(KeyBatter, ""),
		MyTeam:    m.String(KeyMyTeam, ""),
		EventType: DecodeEventType(m),
	}
}

// DecodeTheme rebuilds a theme selection. A missing team decodes as the default.
func DecodeTheme(m DataMap) models.ThemeSelection {
	sel := models.ThemeSelection{Team: m.String(KeyMyTeam, models.TeamDefault)}
	if ms := m.Int64(KeyUpdatedAt, 0); ms > 0 {
		sel.UpdatedAt = time.UnixMilli(ms)
	}
	return sel
}

// DecodeEventType reads the optional event tag.
func DecodeEventType(m DataMap) models.EventType {
	raw := m.String(KeyEventType, "")
	if raw == "" {
		return ""
	}
	return models.ParseEventType(raw)
}
