package haptic

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcdev12/basehaptic/go/internal/metrics"
	"github.com/mcdev12/basehaptic/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Actuator is the local vibration motor
type Actuator interface {
	Available() bool
	Vibrate(ctx context.Context, w Waveform) error
}

// Dispatcher maps event tags to waveforms and plays them
type Dispatcher struct {
	actuator Actuator
	metrics  metrics.Collector
}

func NewDispatcher(actuator Actuator, collector metrics.Collector) *Dispatcher {
	if collector == nil {
		collector = metrics.NoOp{}
	}
	return &Dispatcher{actuator: actuator, metrics: collector}
}

// Trigger plays the waveform for tag. It reports whether anything played; unknown tags,
// a missing actuator and actuator failures are logged, never returned.
func (d *Dispatcher) Trigger(ctx context.Context, tag models.EventType) bool {
	eventType := models.ParseEventType(string(tag))

	w, ok := WaveformFor(eventType)
	if !ok {
		log.Debug().Str("event_type", string(tag)).Msg("unknown event type, no haptic")
		d.metrics.RecordHaptic(string(eventType), false)
		return false
	}
	if d.actuator == nil || !d.actuator.Available() {
		log.Warn().Str("event_type", string(eventType)).Msg("vibrator not available")
		d.metrics.RecordHaptic(string(eventType), false)
		return false
	}
	if err := d.actuator.Vibrate(ctx, w); err != nil {
		log.Error().Err(err).Str("event_type", string(eventType)).Msg("vibration failed")
		d.metrics.RecordHaptic(string(eventType), false)
		return false
	}

	log.Debug().Str("event_type", string(eventType)).Dur("duration", w.Total()).Msg("haptic feedback")
	d.metrics.RecordHaptic(string(eventType), true)
	return true
}

// LogActuator stands in for a vibration motor on headless devices by logging each pattern
type LogActuator struct{}

func (LogActuator) Available() bool { return true }

func (LogActuator) Vibrate(ctx context.Context, w Waveform) error {
	log.Info().
		Str("pattern", Render(w)).
		Dur("duration", w.Total()).
		Int("peak", w.Peak()).
		Msg("vibrate")
	return nil
}

// Render draws a waveform as on/off glyphs, e.g. "●○●" for a two-pulse pattern.
func Render(w Waveform) string {
	var b strings.Builder
	for i, t := range w.Timings {
		if t == 0 {
			continue
		}
		amp := 0
		if i < len(w.Amplitudes) {
			amp = w.Amplitudes[i]
		}
		if amp > 0 {
			b.WriteString("●")
		} else {
			b.WriteString("○")
		}
	}
	return b.String()
}

// String implements fmt.Stringer for log output.
func (w Waveform) String() string {
	return fmt.Sprintf("%s (%s)", Render(w), w.Total())
}
