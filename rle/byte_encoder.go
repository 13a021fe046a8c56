package rle

import (
	"iter"

	"github.com/colbyte/colrle/internal/bitutil"
	"github.com/colbyte/colrle/position"
	"github.com/colbyte/colrle/stream"
)

// Ranges is an ordered, non-decreasing sequence of indices an Add call
// iterates over. Use Span for a contiguous range.
type Ranges = iter.Seq[int]

// Span returns a Ranges over the contiguous indices [from, to).
func Span(from, to int) Ranges {
	return func(yield func(int) bool) {
		for i := from; i < to; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

// ByteEncoder is the byte-level run-length encoder: component C. It stages
// up to MaxLiteralSize bytes at a time, detecting runs of three or more
// identical bytes and switching between run and literal frames as
// profitable.
//
// A ByteEncoder owns its Sink exclusively; it is not safe for concurrent
// use.
type ByteEncoder struct {
	sink stream.Sink

	literals      [MaxLiteralSize]byte
	numLiterals   int
	repeat        bool
	tailRunLength int

	buf    []byte
	bufPos int
	bufCap int

	written int64
}

// NewByteEncoder creates a ByteEncoder writing into sink.
func NewByteEncoder(sink stream.Sink) *ByteEncoder {
	return &ByteEncoder{sink: sink}
}

// Add consumes the positions enumerated by ranges from data, skipping
// positions marked null in nulls (nil nulls means "no nulls"), and returns
// the count of non-null values written.
func (e *ByteEncoder) Add(data []byte, ranges Ranges, nulls bitutil.NullMask) (int, error) {
	return e.AddFunc(func(i int) byte { return data[i] }, ranges, nulls.IsNull)
}

// AddFunc is Add with callbacks instead of a flat slice and bitmask, for
// callers whose values/nulls aren't laid out as a contiguous byte slice.
func (e *ByteEncoder) AddFunc(valueAt func(int) byte, ranges Ranges, isNullAt func(int) bool) (int, error) {
	count := 0

	for pos := range ranges {
		if isNullAt != nil && isNullAt(pos) {
			continue
		}

		if err := e.write(valueAt(pos)); err != nil {
			return count, err
		}

		count++
	}

	return count, nil
}

// GetBufferSize returns the number of bytes emitted so far, not counting
// values still staged in the literal/run buffer.
func (e *ByteEncoder) GetBufferSize() int64 {
	return e.written
}

// Flush emits any pending frame and returns the cumulative number of bytes
// written to the sink.
func (e *ByteEncoder) Flush() (int64, error) {
	if err := e.writeValues(); err != nil {
		return 0, err
	}

	if e.buf != nil {
		e.sink.BackUp(e.bufCap - e.bufPos)
		e.buf, e.bufPos, e.bufCap = nil, 0, 0
	}

	return e.sink.Flush()
}

// RecordPosition snapshots a resumable decode position: the sink's own
// offset for the current window, followed by the number of values
// currently staged but not yet emitted — a decoder resuming here must skip
// exactly that many post-header values.
func (e *ByteEncoder) RecordPosition(rec position.Recorder, stride int) {
	e.sink.RecordPosition(rec, e.bufCap, e.bufPos, stride)
	rec.Add(int64(e.numLiterals), stride)
}

// write drives the literal/repeat state machine for a single input byte.
func (e *ByteEncoder) write(v byte) error {
	switch {
	case e.numLiterals == 0:
		e.literals[0] = v
		e.numLiterals = 1
		e.tailRunLength = 1

	case e.repeat:
		if v == e.literals[0] {
			e.numLiterals++
			if e.numLiterals == MaximumRepeat {
				if err := e.writeValues(); err != nil {
					return err
				}
			}
		} else {
			if err := e.writeValues(); err != nil {
				return err
			}

			e.literals[0] = v
			e.numLiterals = 1
			e.tailRunLength = 1
		}

	default:
		if v == e.literals[e.numLiterals-1] {
			e.tailRunLength++
		} else {
			e.tailRunLength = 1
		}

		if e.tailRunLength == MinimumRepeat {
			if e.numLiterals+1 > MinimumRepeat {
				e.numLiterals -= MinimumRepeat - 1
				if err := e.writeValues(); err != nil {
					return err
				}

				e.literals[0] = v
			}

			e.repeat = true
			e.numLiterals = MinimumRepeat
		} else {
			e.literals[e.numLiterals] = v
			e.numLiterals++

			if e.numLiterals == MaxLiteralSize {
				if err := e.writeValues(); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// writeValues emits the staged frame, if any, and resets staging state.
func (e *ByteEncoder) writeValues() error {
	if e.numLiterals == 0 {
		return nil
	}

	if e.repeat {
		if err := e.writeByte(byte(e.numLiterals - MinimumRepeat)); err != nil {
			return err
		}

		if err := e.writeByte(e.literals[0]); err != nil {
			return err
		}
	} else {
		if err := e.writeByte(byte(-e.numLiterals)); err != nil {
			return err
		}

		for i := 0; i < e.numLiterals; i++ {
			if err := e.writeByte(e.literals[i]); err != nil {
				return err
			}
		}
	}

	e.repeat = false
	e.tailRunLength = 0
	e.numLiterals = 0

	return nil
}

// writeByte writes one wire byte, requesting a new sink window when the
// current one is exhausted.
func (e *ByteEncoder) writeByte(c byte) error {
	if e.bufPos == e.bufCap {
		buf, err := e.sink.Next()
		if err != nil {
			return err
		}

		e.buf = buf
		e.bufCap = len(buf)
		e.bufPos = 0
	}

	e.buf[e.bufPos] = c
	e.bufPos++
	e.written++

	return nil
}
