package models

import "strings"

// BaseStatus holds the occupied flags for each base
type BaseStatus struct {
	First  bool `json:"first"`
	Second bool `json:"second"`
	Third  bool `json:"third"`
}

// Occupied returns how many runners are on base.
func (b BaseStatus) Occupied() int {
	n := 0
	for _, on := range []bool{b.First, b.Second, b.Third} {
		if on {
			n++
		}
	}
	return n
}

// GameSnapshot is the complete state of one game at a point in time.
// It is always published and cached as a whole; there are no partial updates.
type GameSnapshot struct {
	GameID    string     `json:"game_id"`
	HomeTeam  string     `json:"home_team"`
	AwayTeam  string     `json:"away_team"`
	HomeScore int        `json:"home_score"`
	AwayScore int        `json:"away_score"`
	Inning    string     `json:"inning"`
	Ball      int        `json:"ball"`
	Strike    int        `json:"strike"`
	Out       int        `json:"out"`
	Bases     BaseStatus `json:"bases"`
	Pitcher   string     `json:"pitcher"`
	Batter    string     `json:"batter"`
	MyTeam    string     `json:"my_team"`
	EventType EventType  `json:"event_type,omitempty"`
}

// HasGame reports whether the snapshot describes an active game.
func (g GameSnapshot) HasGame() bool {
	return strings.TrimSpace(g.GameID) != ""
}

// IsBottomHalf derives the half-inning from the inning label.
// Labels look like "9회말", "1회초", "Bottom 9" or "T3".
func (g GameSnapshot) IsBottomHalf() bool {
	label := strings.ToLower(strings.TrimSpace(g.Inning))
	return strings.HasSuffix(label, "말") || strings.HasPrefix(label, "b")
}

// ScoreDiff returns the lead of team over its opponent, zero when team is not playing.
func (g GameSnapshot) ScoreDiff(team string) int {
	switch {
	case strings.EqualFold(team, g.HomeTeam):
		return g.HomeScore - g.AwayScore
	case strings.EqualFold(team, g.AwayTeam):
		return g.AwayScore - g.HomeScore
	default:
		return 0
	}
}
