package models

import (
	"strings"
	"time"
)

// EventType tags a notable play
type EventType string

const (
	EventTypeBall         EventType = "BALL"
	EventTypeStrike       EventType = "STRIKE"
	EventTypeOut          EventType = "OUT"
	EventTypeHit          EventType = "HIT"
	EventTypeHomeRun      EventType = "HOMERUN"
	EventTypeScore        EventType = "SCORE"
	EventTypeWalk         EventType = "WALK"
	EventTypeSteal        EventType = "STEAL"
	EventTypeSacFlyScore  EventType = "SAC_FLY_SCORE"
	EventTypeTagUpAdvance EventType = "TAG_UP_ADVANCE"
	EventTypeOther        EventType = "OTHER"
)

// hapticEventTypes have a waveform on the wrist; the rest are informational.
var hapticEventTypes = map[EventType]bool{
	EventTypeBall:    true,
	EventTypeStrike:  true,
	EventTypeOut:     true,
	EventTypeHit:     true,
	EventTypeHomeRun: true,
	EventTypeScore:   true,
}

var informationalEventTypes = map[EventType]bool{
	EventTypeWalk:         true,
	EventTypeSteal:        true,
	EventTypeSacFlyScore:  true,
	EventTypeTagUpAdvance: true,
	EventTypeOther:        true,
}

// ParseEventType normalizes a raw tag. Unrecognised tags are returned upper-cased
// so callers can still log them; use IsKnown to check.
func ParseEventType(raw string) EventType {
	return EventType(strings.ToUpper(strings.TrimSpace(raw)))
}

// IsKnown reports whether t is one of the enumerated event types.
func (t EventType) IsKnown() bool {
	return hapticEventTypes[t] || informationalEventTypes[t]
}

func (t EventType) String() string { return string(t) }

// HapticEvent is a notable play observed on the wrist.
type HapticEvent struct {
	Type EventType `json:"type"`
	At   time.Time `json:"at"`
}

// IsZero reports whether no event has been recorded.
func (e HapticEvent) IsZero() bool {
	return e.Type == "" || e.At.IsZero()
}
