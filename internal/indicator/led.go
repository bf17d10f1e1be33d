// Package indicator provides pure semantic-state to Pattern mappings for the
// LED and buzzer indicators, driven through the Actuator Scheduler.
package indicator

import (
	"time"

	"github.com/osu-uwrt/opboxlink/internal/actuator"
)

// LEDState is a semantic LED indicator state.
type LEDState int

const (
	LEDOff LEDState = iota
	LEDOn
	LEDBlinkOnce
	LEDBlinkTwice
	LEDFastBlink
	LEDSlowBlink
)

// oneShot is the idiom for "hold the terminal value until replaced."
const oneShot = 24 * time.Hour

// LEDPattern returns the canonical playback pattern for state.
func LEDPattern(state LEDState) actuator.Pattern {
	switch state {
	case LEDOn:
		return actuator.Pattern{{Value: 1, Duration: time.Second}}
	case LEDBlinkOnce:
		return actuator.Pattern{
			{Value: 0, Duration: 125 * time.Millisecond},
			{Value: 1, Duration: 125 * time.Millisecond},
			{Value: 0, Duration: 125 * time.Millisecond},
			{Value: 0, Duration: oneShot},
		}
	case LEDBlinkTwice:
		return actuator.Pattern{
			{Value: 0, Duration: 125 * time.Millisecond},
			{Value: 1, Duration: 125 * time.Millisecond},
			{Value: 0, Duration: 125 * time.Millisecond},
			{Value: 1, Duration: 125 * time.Millisecond},
			{Value: 0, Duration: oneShot},
		}
	case LEDFastBlink:
		return actuator.Pattern{
			{Value: 0, Duration: 250 * time.Millisecond},
			{Value: 1, Duration: 250 * time.Millisecond},
		}
	case LEDSlowBlink:
		return actuator.Pattern{
			{Value: 0, Duration: time.Second},
			{Value: 1, Duration: time.Second},
		}
	default: // LEDOff
		return actuator.Pattern{{Value: 0, Duration: oneShot}}
	}
}
