// Package console implements a sink printing one line per frame.
package console

import (
	"bufio"
	"io"
	"os"
	"sync"

	"firestige.xyz/atalkdump/internal/core"
)

const Name = "console"

// TimeFormat is the per-line timestamp layout.
const TimeFormat = "15:04:05.000000"

// Options control line layout.
type Options struct {
	// NoTimestamp drops the leading capture time.
	NoTimestamp bool
}

// Sink writes decoded lines to a writer, one write per line.
type Sink struct {
	mu   sync.Mutex
	out  *bufio.Writer
	opts Options
}

// NewSink creates a console sink on w; nil means stdout.
func NewSink(w io.Writer, opts Options) *Sink {
	if w == nil {
		w = os.Stdout
	}
	return &Sink{out: bufio.NewWriter(w), opts: opts}
}

func (s *Sink) Name() string { return Name }

func (s *Sink) Send(frame *core.DecodedFrame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.opts.NoTimestamp && !frame.Raw.Timestamp.IsZero() {
		s.out.WriteString(frame.Raw.Timestamp.Format(TimeFormat))
		s.out.WriteByte(' ')
	}
	s.out.WriteString(frame.Line)
	s.out.WriteByte('\n')
	return s.out.Flush()
}

// Flush writes out buffered lines.
func (s *Sink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Flush()
}

func (s *Sink) Close() error {
	return s.Flush()
}
