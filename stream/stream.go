package stream

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rustyeddy/pnl/message"
)

const maxLineSize = 1 << 20

// Stream yields parsed messages of one kind from a line source.
//
// A Stream built over a nil source is valid and always exhausted. That is
// what Open returns when the input cannot be opened.
type Stream struct {
	name string
	kind message.Kind

	src     io.Closer
	scanner *bufio.Scanner

	line int
	done bool
}

// New wraps r. If r is also an io.Closer it is closed by Close.
func New(name string, kind message.Kind, r io.Reader) *Stream {
	s := &Stream{name: name, kind: kind}
	if r == nil {
		s.done = true
		return s
	}
	if c, ok := r.(io.Closer); ok {
		s.src = c
	}
	s.scanner = bufio.NewScanner(r)
	s.scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return s
}

// FromLines is a Stream over an in-memory list of lines.
func FromLines(name string, kind message.Kind, lines []string) *Stream {
	return New(name, kind, strings.NewReader(strings.Join(lines, "\n")))
}

func (s *Stream) Name() string       { return s.name }
func (s *Stream) Kind() message.Kind { return s.kind }

// Available reports whether the stream has an underlying source.
func (s *Stream) Available() bool { return s.scanner != nil }

// Next returns the next message. ok is false once the source is exhausted,
// and stays false. Blank lines are skipped. A malformed line returns an error
// wrapping message.ErrInvalidFormat.
func (s *Stream) Next() (message.Message, bool, error) {
	if s.done {
		return nil, false, nil
	}
	for s.scanner.Scan() {
		s.line++
		m, ok, err := message.Parse(s.kind, s.scanner.Text())
		if err != nil {
			return nil, false, fmt.Errorf("%s:%d: %w", s.name, s.line, err)
		}
		if !ok {
			continue
		}
		return m, true, nil
	}
	s.done = true
	if err := s.scanner.Err(); err != nil {
		return nil, false, fmt.Errorf("%s: read: %w", s.name, err)
	}
	return nil, false, nil
}

// Close releases the source. It is safe to call more than once.
func (s *Stream) Close() error {
	s.done = true
	if s.src == nil {
		return nil
	}
	err := s.src.Close()
	s.src = nil
	return err
}
