package stream

import (
	"fmt"

	"github.com/colbyte/colrle/errs"
	"github.com/colbyte/colrle/position"
)

// Source is the input byte stream a ByteDecoder reads from.
type Source interface {
	// Next grants a readable window. Returns errs.ErrShortRead wrapped with
	// stream identity if no bytes remain.
	Next() ([]byte, error)

	// Skip advances the source by n bytes, which may span multiple windows.
	Skip(n int64) error

	// Seek sets the source's absolute position by consuming exactly one
	// integer from p.
	Seek(p position.Provider) error
}

// SliceSource is a Source backed by an in-memory byte slice, granting
// windows of up to DefaultWindowSize bytes at a time so decoders exercise
// the same "request a new window" path a real chunked stream would force.
type SliceSource struct {
	name       string
	data       []byte
	pos        int
	windowSize int
}

// NewSliceSource wraps data for sequential or seekable reads. name
// identifies the stream in error messages.
func NewSliceSource(name string, data []byte) *SliceSource {
	return &SliceSource{name: name, data: data, windowSize: DefaultWindowSize}
}

// Next implements Source.
func (s *SliceSource) Next() ([]byte, error) {
	if s.pos >= len(s.data) {
		return nil, errShortRead(s.name)
	}

	end := s.pos + s.windowSize
	if end > len(s.data) {
		end = len(s.data)
	}

	buf := s.data[s.pos:end]
	s.pos = end

	return buf, nil
}

// Skip implements Source.
func (s *SliceSource) Skip(n int64) error {
	target := s.pos + int(n)
	if target > len(s.data) {
		return errShortRead(s.name)
	}

	s.pos = target

	return nil
}

// Seek implements Source. Consumes exactly one integer from p: the
// absolute byte offset to reposition to.
func (s *SliceSource) Seek(p position.Provider) error {
	offset := p.Next()
	if offset < 0 || int(offset) > len(s.data) {
		return fmt.Errorf("%w: stream %q: offset %d", errs.ErrSeekOutOfRange, s.name, offset)
	}

	s.pos = int(offset)

	return nil
}

// Name returns the stream identity used in error messages.
func (s *SliceSource) Name() string {
	return s.name
}

func errShortRead(name string) error {
	return fmt.Errorf("%w: stream %q", errs.ErrShortRead, name)
}
