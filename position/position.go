// Package position defines the cursor collaborators that let an rle decoder
// resume mid-stream: a Provider yields the integers a seek consumes in
// order, a Recorder accepts the integers an encoder emits while recording a
// resumable point.
package position

// Provider is a stateful cursor yielding a sequence of non-negative
// integers, consumed in order. A byte decoder's SeekToRowGroup consumes
// exactly one integer from a Provider (after its Source has consumed its
// own, source-specific count); a boolean decoder consumes one more on top
// of that (the in-byte bit offset).
type Provider interface {
	// Next returns the next position value. Panics if the provider is
	// exhausted — running out mid-seek means the recorded positions and the
	// seek sequence have desynchronized, which is a programmer error, not a
	// recoverable one.
	Next() int64
}

// Recorder is an append-only sink for position values, optionally tagged by
// a stride index (the row-group boundary the position belongs to).
// Encoders push their sink's own offset coordinates first, then codec-level
// state (staged literal count, in-byte bit offset) on top.
type Recorder interface {
	Add(value int64, stride int)
}

// Slice is a Provider backed by an in-memory list of recorded positions,
// and also a Recorder that appends to that same list. It is the
// collaborator implementation used throughout colrle's tests.
type Slice struct {
	values []int64
	next   int
}

// NewSlice wraps an existing position list for sequential Provider reads.
func NewSlice(values []int64) *Slice {
	return &Slice{values: values}
}

// Next implements Provider.
func (s *Slice) Next() int64 {
	v := s.values[s.next]
	s.next++

	return v
}

// Add implements Recorder.
func (s *Slice) Add(value int64, _ int) {
	s.values = append(s.values, value)
}

// Values returns the recorded/remaining position list.
func (s *Slice) Values() []int64 {
	return s.values
}

// Reset rewinds the Provider side to the start of the list without
// discarding recorded values, so the same Slice can be replayed.
func (s *Slice) Reset() {
	s.next = 0
}
