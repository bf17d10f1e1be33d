package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLEDOnIsOneSecondHold(t *testing.T) {
	p := LEDPattern(LEDOn)
	require.Equal(t, 1, len(p))
	require.Equal(t, 1, p[0].Value)
	require.Equal(t, time.Second, p[0].Duration)
}

func TestLEDBlinkOnceEndsWithOneShotHold(t *testing.T) {
	p := LEDPattern(LEDBlinkOnce)
	require.Len(t, p, 4)
	last := p[len(p)-1]
	require.Equal(t, 0, last.Value)
	require.Equal(t, 24*time.Hour, last.Duration)
}

func TestLEDFastBlinkHasNoTerminalHold(t *testing.T) {
	p := LEDPattern(LEDFastBlink)
	for _, step := range p {
		require.Less(t, step.Duration, time.Hour)
	}
}

func TestBuzzerPanicStepCount(t *testing.T) {
	p := BuzzerPattern(BuzzerPanic)
	require.Len(t, p, 1+50*2)
	require.Equal(t, 1, p[0].Value)
	require.Equal(t, 500*time.Millisecond, p[0].Duration)
	require.Equal(t, 0, p[1].Value)
	require.Equal(t, 5*time.Millisecond, p[1].Duration)
}

func TestBuzzerChirpTwiceMatchesLEDBlinkTwiceShape(t *testing.T) {
	led := LEDPattern(LEDBlinkTwice)
	buzz := BuzzerPattern(BuzzerChirpTwice)
	require.Equal(t, len(led), len(buzz))
}

func TestOffStatesHoldZero(t *testing.T) {
	require.Equal(t, 0, LEDPattern(LEDOff)[0].Value)
	require.Equal(t, 0, BuzzerPattern(BuzzerOff)[0].Value)
}
