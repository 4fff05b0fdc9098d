package haptic

import (
	"time"

	"github.com/mcdev12/basehaptic/go/internal/models"
)

// Waveform is an alternating off/on timing sequence with a matching amplitude per step.
// Amplitudes range 0-255; the first step is the initial delay.
type Waveform struct {
	Timings    []time.Duration
	Amplitudes []int
}

// Total returns the playing time of the waveform.
func (w Waveform) Total() time.Duration {
	var d time.Duration
	for _, t := range w.Timings {
		d += t
	}
	return d
}

// Peak returns the strongest amplitude.
func (w Waveform) Peak() int {
	peak := 0
	for _, a := range w.Amplitudes {
		if a > peak {
			peak = a
		}
	}
	return peak
}

func ms(values ...int) []time.Duration {
	out := make([]time.Duration, len(values))
	for i, v := range values {
		out[i] = time.Duration(v) * time.Millisecond
	}
	return out
}

// Ranked strongest first: a home run is the longest and hardest pulse, a ball the lightest.
var waveforms = map[models.EventType]Waveform{
	models.EventTypeHomeRun: {Timings: ms(0, 200, 150, 200, 150, 200), Amplitudes: []int{0, 255, 0, 255, 0, 255}},
	models.EventTypeScore:   {Timings: ms(0, 200, 200, 200), Amplitudes: []int{0, 255, 0, 255}},
	models.EventTypeHit:     {Timings: ms(0, 150, 100, 150), Amplitudes: []int{0, 180, 0, 180}},
	models.EventTypeOut:     {Timings: ms(0, 100), Amplitudes: []int{0, 150}},
	models.EventTypeStrike:  {Timings: ms(0, 80, 80, 80), Amplitudes: []int{0, 120, 0, 120}},
	models.EventTypeBall:    {Timings: ms(0, 50), Amplitudes: []int{0, 80}},
}

// WaveformFor looks up the pattern for an event tag. Tags are matched case-insensitively.
func WaveformFor(t models.EventType) (Waveform, bool) {
	w, ok := waveforms[models.ParseEventType(string(t))]
	return w, ok
}
