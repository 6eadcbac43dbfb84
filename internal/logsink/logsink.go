package logsink

import (
	"fmt"
	"sync"
)

// Sink is an append-only ordered list of progress lines shared by every
// pipeline branch of one request. Appends from concurrent writers keep each
// line intact; ordering between writers follows append time.
type Sink struct {
	mu    sync.Mutex
	lines []string
}

// New creates an empty sink.
func New() *Sink {
	return &Sink{}
}

// Appendf formats one line and appends it.
func (s *Sink) Appendf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	s.mu.Lock()
	s.lines = append(s.lines, line)
	s.mu.Unlock()
}

// Lines returns a copy of everything appended so far.
func (s *Sink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}
