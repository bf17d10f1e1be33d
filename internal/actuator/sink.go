package actuator

import (
	"fmt"
	"os"
	"strconv"
	"sync"
)

// Sink is the abstract output an Actuator Scheduler drives. Write is called
// from the playback task on every step transition and on shutdown with the
// default value.
type Sink interface {
	Write(value int) error
}

// FileSink writes the current value as a decimal string to a file, the
// pattern used by Linux GPIO sysfs "value" nodes and convenient for
// bench testing without real hardware.
type FileSink struct {
	mu   sync.Mutex
	path string
}

// NewFileSink returns a Sink that overwrites path with each value written.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Write(value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path, []byte(strconv.Itoa(value)), 0644); err != nil {
		return fmt.Errorf("actuator: write sink %q: %w", s.path, err)
	}
	return nil
}

// MemorySink records the last value written, for use in tests.
type MemorySink struct {
	mu    sync.Mutex
	value int
}

func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) Write(value int) error {
	s.mu.Lock()
	s.value = value
	s.mu.Unlock()
	return nil
}

func (s *MemorySink) Value() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}
