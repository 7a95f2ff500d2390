package render

import (
	"fmt"
	"io"
	"sync"
)

// clearScreen repositions the cursor and wipes the previous frame so the
// transcript replaces itself in place.
const clearScreen = "\033[H\033[2J"

// StdoutSink displays transcripts on a plain text writer. In live mode
// every Display repaints the full document; otherwise only the latest
// document is printed, on Close, so non-interactive output stays clean.
type StdoutSink struct {
	w      io.Writer
	mu     sync.Mutex
	live   bool
	latest string
}

// NewStdoutSink creates a sink. live selects repaint-per-event display.
func NewStdoutSink(w io.Writer, live bool) *StdoutSink {
	return &StdoutSink{w: w, live: live}
}

func (s *StdoutSink) Display(html string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = html
	if s.live {
		fmt.Fprint(s.w, clearScreen)
		fmt.Fprintln(s.w, html)
	}
}

// Close flushes the final transcript in non-live mode.
func (s *StdoutSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live && s.latest != "" {
		fmt.Fprintln(s.w, s.latest)
	}
	return nil
}
