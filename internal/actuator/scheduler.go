package actuator

import (
	"sync"
	"time"

	"github.com/osu-uwrt/opboxlink/internal/logger"
	"github.com/osu-uwrt/opboxlink/internal/metrics"
)

// schedulerTick is the playback task's polling granularity: the upper bound
// on preemption latency for set_pattern(clear_queue=true).
const schedulerTick = 5 * time.Millisecond

// defaultStepOnOutOfRange (value 0, 100ms) is substituted only for a negative
// step index. An index at or past the end of the active pattern gets no
// substitute step: stepAt reports it as the end of the pattern.
var defaultStepOnOutOfRange = Step{Duration: 100 * time.Millisecond}

// Scheduler plays back one active Pattern at a time while holding a queue of
// future (pattern, delay_before_start) entries. At most one pattern is
// active; set_pattern with clear_queue=true preempts the active pattern
// within one tick.
type Scheduler struct {
	sink         Sink
	defaultValue int
	indicator    string
	metrics      *metrics.Metrics

	mu          sync.Mutex
	active      Pattern
	activeStart time.Time
	queue       []queued
	queueStart  time.Time
	lastValue   int

	stopCh    chan struct{}
	stoppedCh chan struct{}
	wg        sync.WaitGroup
}

// New constructs a Scheduler over sink with defaultValue, and spawns its
// playback task immediately. indicator labels this scheduler's pattern-swap
// metric (e.g. "led", "buzzer"). m is optional and may be nil, in which case
// pattern-swap counting is skipped.
func New(sink Sink, defaultValue int, indicator string, m *metrics.Metrics) *Scheduler {
	s := &Scheduler{
		sink:         sink,
		defaultValue: defaultValue,
		indicator:    indicator,
		metrics:      m,
		lastValue:    defaultValue,
		stopCh:       make(chan struct{}),
		stoppedCh:    make(chan struct{}),
	}
	s.wg.Add(1)
	go s.playback()
	return s
}

// Close stops the playback task, writes the default value, and joins the
// task. MUST NOT be called from the playback task itself.
func (s *Scheduler) Close() {
	close(s.stopCh)
	s.wg.Wait()
}

// SetPattern installs pattern as a new front-of-queue entry with zero delay,
// so the playback task promotes it on its next tick. If clearQueue, any
// queued follow-ups are dropped; otherwise the current front entry's delay
// is reduced by the active pattern's elapsed time, keeping the queue's
// absolute schedule intact.
func (s *Scheduler) SetPattern(pattern Pattern, clearQueue bool) {
	if s.metrics != nil {
		s.metrics.ActuatorPatternSwapsTotal.WithLabelValues(s.indicator).Inc()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if clearQueue {
		s.queue = nil
	} else if len(s.queue) > 0 {
		elapsed := time.Since(s.queueStart)
		s.queue[0].delay -= elapsed
		if s.queue[0].delay < 0 {
			s.queue[0].delay = 0
		}
	}

	s.queue = append([]queued{{pattern: pattern, delay: 0}}, s.queue...)
}

// SetNextPattern appends (pattern, delay) to the queue. delay is counted from
// the moment the entry ahead of it becomes active; for the queue's head, from
// when the currently active pattern began.
func (s *Scheduler) SetNextPattern(pattern Pattern, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, queued{pattern: pattern, delay: delay})
}

// State returns the last value written to the sink.
func (s *Scheduler) State() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastValue
}

func (s *Scheduler) recordValue(v int) {
	s.mu.Lock()
	s.lastValue = v
	s.mu.Unlock()
}

// queueHeadDue reports whether the queue's front entry's delay has elapsed.
func (s *Scheduler) queueHeadDue() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return false
	}
	return time.Since(s.queueStart) >= s.queue[0].delay
}

// tryPromoteQueueHead pops the queue's front entry and installs it as the
// active pattern if its delay has elapsed. Returns true if it did so.
func (s *Scheduler) tryPromoteQueueHead() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 || time.Since(s.queueStart) < s.queue[0].delay {
		return false
	}

	next := s.queue[0]
	s.queue = s.queue[1:]
	s.active = next.pattern
	now := time.Now()
	s.activeStart = now
	s.queueStart = now
	return true
}

// stepAt fetches the active pattern's step at i, guarding against the active
// pattern shrinking out from under a concurrent mutation.
func (s *Scheduler) stepAt(i int) (Step, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= len(s.active) {
		return Step{}, false
	}
	if i < 0 {
		logger.Debug("actuator: negative step index, substituting default step")
		return defaultStepOnOutOfRange, true
	}
	return s.active[i], true
}

func (s *Scheduler) activeLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

func (s *Scheduler) playback() {
	defer s.wg.Done()
	defer close(s.stoppedCh)
	defer func() {
		if err := s.sink.Write(s.defaultValue); err != nil {
			logger.Warn("actuator: default-value write on shutdown failed", logger.Err(err))
		}
	}()

	now := time.Now()
	s.mu.Lock()
	s.queueStart = now
	s.activeStart = now
	s.mu.Unlock()

	ticker := time.NewTicker(schedulerTick)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		if s.activeLen() == 0 {
			if s.tryPromoteQueueHead() {
				continue
			}
			if !s.sleepTick(ticker) {
				return
			}
			continue
		}

		s.playActivePattern(ticker)
		s.tryPromoteQueueHead()
	}
}

// playActivePattern runs the active pattern's steps to completion, writing
// each value to the sink and waiting the shorter of the step's duration or
// the queue head becoming due. Returns true if the queue preempted it.
func (s *Scheduler) playActivePattern(ticker *time.Ticker) bool {
	for i := 0; ; i++ {
		step, ok := s.stepAt(i)
		if !ok {
			return false
		}

		if err := s.sink.Write(step.Value); err != nil {
			logger.Warn("actuator: sink write failed", logger.Err(err))
		}
		s.recordValue(step.Value)

		deadline := time.Now().Add(step.Duration)
		for {
			select {
			case <-s.stopCh:
				return false
			case <-ticker.C:
			}
			if s.queueHeadDue() {
				return true
			}
			if !time.Now().Before(deadline) {
				break
			}
		}
	}
}

// sleepTick waits one tick, or returns false if stopped in the meantime.
func (s *Scheduler) sleepTick(ticker *time.Ticker) bool {
	select {
	case <-s.stopCh:
		return false
	case <-ticker.C:
		return true
	}
}
