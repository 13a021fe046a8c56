// Package stream provides the output sink and input source collaborators
// that rle.ByteEncoder/ByteDecoder write into and read from. Both grant
// fixed-size windows rather than exposing an io.Writer/io.Reader directly,
// so the codec can track its own cursor into the currently granted window
// and only ask for a new one once it is exhausted — the same contract
// protobuf's ZeroCopyOutputStream/ZeroCopyInputStream expose, adapted to
// colrle's pooled buffers.
package stream

import (
	"github.com/colbyte/colrle/internal/pool"
	"github.com/colbyte/colrle/position"
)

// DefaultWindowSize is the size of the writable/readable window Sink.Next
// and Source.Next grant by default.
const DefaultWindowSize = 4096

// Sink is the output byte stream a ByteEncoder writes into. An encoder
// never writes past the window most recently granted by Next without
// requesting another.
type Sink interface {
	// Next grants a writable window. The returned slice's length is the
	// window's capacity; the caller tracks its own write position within
	// it. A Sink backed by a fallible resource (unlike BufferSink's pooled
	// memory) should wrap failures in errs.ErrAllocationFailed.
	Next() ([]byte, error)

	// BackUp unwrites the last n bytes of the most recently granted window.
	// Used exactly once, at flush, to return the unused tail of the final
	// window.
	BackUp(n int)

	// Flush finalizes all granted windows and returns the total number of
	// bytes written to the sink so far.
	Flush() (int64, error)

	// RecordPosition delegates position snapshotting to rec, reporting the
	// sink's own offset coordinates for the current window (capacity and
	// used bytes within it) before the caller appends any codec-level state.
	RecordPosition(rec position.Recorder, capacity, used int, stride int)
}

// BufferSink is a Sink backed by a pooled, contiguously growing buffer. It
// grants windows by extending the buffer's length in DefaultWindowSize
// chunks and reports positions as an absolute offset into that buffer.
type BufferSink struct {
	name        string
	buf         *pool.ByteBuffer
	windowSize  int
	windowStart int
	windowCap   int
}

// NewBufferSink creates a Sink that pools its storage from
// internal/pool's default blob buffer pool. name identifies the stream in
// error messages.
func NewBufferSink(name string) *BufferSink {
	return &BufferSink{
		name:       name,
		buf:        pool.GetBlobBuffer(),
		windowSize: DefaultWindowSize,
	}
}

// Next implements Sink.
func (s *BufferSink) Next() ([]byte, error) {
	s.windowStart = s.buf.Len()
	s.buf.ExtendOrGrow(s.windowSize)
	s.windowCap = s.windowSize

	return s.buf.Bytes()[s.windowStart : s.windowStart+s.windowCap], nil
}

// BackUp implements Sink.
func (s *BufferSink) BackUp(n int) {
	s.buf.SetLength(s.buf.Len() - n)
}

// Flush implements Sink.
func (s *BufferSink) Flush() (int64, error) {
	return int64(s.buf.Len()), nil
}

// RecordPosition implements Sink.
func (s *BufferSink) RecordPosition(rec position.Recorder, _, used int, stride int) {
	rec.Add(int64(s.windowStart+used), stride)
}

// Bytes returns the bytes written to the sink so far. Valid after Flush;
// the caller must not retain it past the sink's next use.
func (s *BufferSink) Bytes() []byte {
	return s.buf.Bytes()
}

// Release returns the sink's buffer to the pool. The sink is not usable
// afterward.
func (s *BufferSink) Release() {
	pool.PutBlobBuffer(s.buf)
	s.buf = nil
}

// Name returns the stream identity used in error messages.
func (s *BufferSink) Name() string {
	return s.name
}
