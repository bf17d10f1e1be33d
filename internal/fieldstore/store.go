// Package fieldstore implements the in-memory, timestamped field record
// shared between a Serial Processor's read and write paths.
package fieldstore

import (
	"sync"
	"time"

	"github.com/osu-uwrt/opboxlink/internal/frame"
)

type entry struct {
	bytes     []byte
	writeTime time.Time
}

// Store is a mutex-guarded map from field id to its most recently written
// bytes and write time. A later Set always replaces an earlier one
// regardless of the time argument's ordering -- the time is advisory, used
// only for freshness queries such as Link Engine liveness.
type Store struct {
	mu     sync.RWMutex
	fields map[frame.FieldID]entry
}

// New returns an empty Store.
func New() *Store {
	return &Store{fields: make(map[frame.FieldID]entry)}
}

// Get returns the field's current bytes. The second return value is false if
// the field has never been written.
func (s *Store) Get(field frame.FieldID) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.fields[field]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(e.bytes))
	copy(out, e.bytes)
	return out, true
}

// GetStamped returns the field's bytes along with the time they were
// written.
func (s *Store) GetStamped(field frame.FieldID) (value []byte, writeTime time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.fields[field]
	if !ok {
		return nil, time.Time{}, false
	}
	out := make([]byte, len(e.bytes))
	copy(out, e.bytes)
	return out, e.writeTime, true
}

// Set replaces field's bytes and write time.
func (s *Store) Set(field frame.FieldID, value []byte, writeTime time.Time) {
	v := make([]byte, len(value))
	copy(v, value)
	s.mu.Lock()
	s.fields[field] = entry{bytes: v, writeTime: writeTime}
	s.mu.Unlock()
}

// Has reports whether field has ever been written.
func (s *Store) Has(field frame.FieldID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.fields[field]
	return ok
}

// byteWidth returns the field's wire width as declared by any frame layout
// that includes it, or 0 if the field is not part of any known layout.
func byteWidth(field frame.FieldID) int {
	for _, layout := range frame.Layouts {
		for _, fl := range layout {
			if fl.Field == field {
				return fl.Length
			}
		}
	}
	return 0
}

// SetUint8 writes a single-byte enumeration or counter field.
func SetUint8(s *Store, field frame.FieldID, v uint8, now time.Time) {
	s.Set(field, []byte{v}, now)
}

// GetUint8 reads a single-byte field, returning ok=false if unset.
func GetUint8(s *Store, field frame.FieldID) (uint8, bool) {
	b, ok := s.Get(field)
	if !ok || len(b) == 0 {
		return 0, false
	}
	return b[0], true
}

// SetString writes a fixed-width, NUL-padded string field, truncating to the
// field's declared wire width if necessary.
func SetString(s *Store, field frame.FieldID, v string, now time.Time) {
	width := byteWidth(field)
	buf := make([]byte, width)
	n := copy(buf, v)
	for ; n < width; n++ {
		buf[n] = 0
	}
	s.Set(field, buf, now)
}

// GetString reads a fixed-width, NUL-padded string field back into a Go
// string, trimming the trailing NUL padding.
func GetString(s *Store, field frame.FieldID) (string, bool) {
	b, ok := s.Get(field)
	if !ok {
		return "", false
	}
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end]), true
}
