package actuator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetPatternClearQueueAppliesWithinShortLatency(t *testing.T) {
	sink := NewMemorySink()
	s := New(sink, 0, "test", nil)
	defer s.Close()

	s.SetPattern(Pattern{{Value: 1, Duration: time.Second}}, true)

	require.Eventually(t, func() bool { return sink.Value() == 1 }, 50*time.Millisecond, time.Millisecond)
}

func TestOneShotPatternHoldsTerminalValue(t *testing.T) {
	sink := NewMemorySink()
	s := New(sink, 0, "test", nil)
	defer s.Close()

	s.SetPattern(Pattern{
		{Value: 1, Duration: 200 * time.Millisecond},
		{Value: 0, Duration: 24 * time.Hour},
	}, true)

	require.Eventually(t, func() bool { return sink.Value() == 1 }, 50*time.Millisecond, time.Millisecond)
	time.Sleep(250 * time.Millisecond)
	require.Equal(t, 0, sink.Value())
}

func TestEmptyPatternIsImmediatelyFinished(t *testing.T) {
	sink := NewMemorySink()
	s := New(sink, 7, "test", nil)
	defer s.Close()

	s.SetPattern(Pattern{}, true)
	time.Sleep(30 * time.Millisecond)

	s.SetNextPattern(Pattern{{Value: 3, Duration: 100 * time.Millisecond}}, 10*time.Millisecond)
	require.Eventually(t, func() bool { return sink.Value() == 3 }, 200*time.Millisecond, time.Millisecond)
}

func TestCloseWritesDefaultValue(t *testing.T) {
	sink := NewMemorySink()
	s := New(sink, 9, "test", nil)
	s.SetPattern(Pattern{{Value: 1, Duration: time.Second}}, true)
	require.Eventually(t, func() bool { return sink.Value() == 1 }, 50*time.Millisecond, time.Millisecond)

	s.Close()
	require.Equal(t, 9, sink.Value())
}

// Preemptive pattern: scenario #6.
func TestPreemptivePatternScenario(t *testing.T) {
	sink := NewMemorySink()
	s := New(sink, 0, "test", nil)
	defer s.Close()

	s.SetPattern(Pattern{{Value: 1, Duration: 24 * time.Hour}}, true)
	s.SetNextPattern(Pattern{{Value: 0, Duration: 24 * time.Hour}}, 500*time.Millisecond)
	s.SetNextPattern(Pattern{{Value: 1, Duration: 24 * time.Hour}}, 250*time.Millisecond)

	time.Sleep(400 * time.Millisecond)
	require.Equal(t, 1, sink.Value())

	s.SetPattern(Pattern{{Value: 0, Duration: 24 * time.Hour}}, true)

	require.Eventually(t, func() bool { return sink.Value() == 0 }, 50*time.Millisecond, time.Millisecond)

	time.Sleep(600 * time.Millisecond)
	require.Equal(t, 0, sink.Value())

	time.Sleep(500 * time.Millisecond)
	require.Equal(t, 0, sink.Value())
}

func TestSetNextPatternPlaysAfterActiveFinishes(t *testing.T) {
	sink := NewMemorySink()
	s := New(sink, 0, "test", nil)
	defer s.Close()

	s.SetPattern(Pattern{{Value: 1, Duration: 50 * time.Millisecond}}, true)
	s.SetNextPattern(Pattern{{Value: 2, Duration: time.Second}}, 60*time.Millisecond)

	require.Eventually(t, func() bool { return sink.Value() == 2 }, 300*time.Millisecond, time.Millisecond)
}
