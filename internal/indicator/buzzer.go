package indicator

import (
	"time"

	"github.com/osu-uwrt/opboxlink/internal/actuator"
)

// BuzzerState is a semantic buzzer indicator state.
type BuzzerState int

const (
	BuzzerOff BuzzerState = iota
	BuzzerChirp
	BuzzerLongChirp
	BuzzerChirpTwice
	BuzzerPanic
)

// BuzzerPattern returns the canonical playback pattern for state.
func BuzzerPattern(state BuzzerState) actuator.Pattern {
	switch state {
	case BuzzerChirp:
		return actuator.Pattern{
			{Value: 1, Duration: 125 * time.Millisecond},
			{Value: 0, Duration: oneShot},
		}
	case BuzzerLongChirp:
		return actuator.Pattern{
			{Value: 1, Duration: 500 * time.Millisecond},
			{Value: 0, Duration: oneShot},
		}
	case BuzzerChirpTwice:
		return actuator.Pattern{
			{Value: 0, Duration: 125 * time.Millisecond},
			{Value: 1, Duration: 125 * time.Millisecond},
			{Value: 0, Duration: 125 * time.Millisecond},
			{Value: 1, Duration: 125 * time.Millisecond},
			{Value: 0, Duration: oneShot},
		}
	case BuzzerPanic:
		return panicPattern()
	default: // BuzzerOff
		return actuator.Pattern{{Value: 0, Duration: oneShot}}
	}
}

// panicPattern is (1, 500ms) then 50x[(0, 5ms)(1, 5ms)].
func panicPattern() actuator.Pattern {
	pattern := make(actuator.Pattern, 0, 1+50*2)
	pattern = append(pattern, actuator.Step{Value: 1, Duration: 500 * time.Millisecond})
	for i := 0; i < 50; i++ {
		pattern = append(pattern,
			actuator.Step{Value: 0, Duration: 5 * time.Millisecond},
			actuator.Step{Value: 1, Duration: 5 * time.Millisecond},
		)
	}
	return pattern
}
