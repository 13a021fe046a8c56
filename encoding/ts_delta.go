package encoding

import (
	"encoding/binary"
	"iter"

	"github.com/colbyte/colrle/internal/pool"
)

// TimestampDeltaEncoder is the value encoder a TimestampColumnWriter uses
// when configured with format.TypeDelta: delta-of-delta compression over
// zigzag+varint, the classic Gorilla-paper timestamp encoding.
//
// The first timestamp is written as a full varint. The second is written as
// a zigzag+varint delta from the first. Every timestamp after that is
// written as the zigzag+varint difference between its delta and the
// previous row's delta — for a column with regular row spacing (metrics
// sampled on a fixed interval), that delta-of-delta is zero on every row
// after the second, collapsing to one byte per row.
//
// Decoding must proceed from the start of the stream: each row's value
// depends on the accumulated delta chain, so TimestampDeltaDecoder has no
// O(1) random access the way NumericRawDecoder does.
type TimestampDeltaEncoder struct {
	prevTS    int64
	prevDelta int64
	temp      [binary.MaxVarintLen64]byte
	buf       *pool.ByteBuffer
	count     int
}

var _ ColumnarEncoder[int64] = (*TimestampDeltaEncoder)(nil)

// NewTimestampDeltaEncoder creates an encoder ready to accept the row
// group's first timestamp.
func NewTimestampDeltaEncoder() *TimestampDeltaEncoder {
	return &TimestampDeltaEncoder{
		buf: pool.GetBlobBuffer(),
	}
}

// Write encodes one timestamp (microseconds since the Unix epoch),
// following the first-value/delta/delta-of-delta rule based on how many
// rows have been written so far.
func (e *TimestampDeltaEncoder) Write(timestampUs int64) {
	e.count++
	e.buf.Grow(10)

	if e.count == 1 {
		n := binary.PutUvarint(e.temp[:], uint64(timestampUs)) //nolint:gosec
		e.buf.MustWrite(e.temp[:n])
		e.prevTS = timestampUs

		return
	}

	delta := timestampUs - e.prevTS

	var valToEncode int64
	if e.count == 2 {
		valToEncode = delta
		e.prevDelta = delta
	} else {
		valToEncode = delta - e.prevDelta
		e.prevDelta = delta
	}

	zigzag := (valToEncode << 1) ^ (valToEncode >> 63)

	n := binary.PutUvarint(e.temp[:], uint64(zigzag)) //nolint:gosec
	e.buf.MustWrite(e.temp[:n])

	e.prevTS = timestampUs
}

// WriteSlice encodes a row batch in one pass: same first/delta/delta-of-delta
// rule as Write, but with a single buffer growth sized for the expected
// compression ratio of regular-interval data instead of growing per row.
func (e *TimestampDeltaEncoder) WriteSlice(timestampsUs []int64) {
	tsLen := len(timestampsUs)
	if tsLen == 0 {
		return
	}

	e.count += tsLen

	estimatedSize := 6 + (tsLen-1)*2
	e.buf.Grow(estimatedSize)

	prevTS := e.prevTS
	prevDelta := e.prevDelta
	startIdx := 0

	if e.prevTS == 0 {
		ts := timestampsUs[0]
		n := binary.PutUvarint(e.temp[:], uint64(ts)) //nolint:gosec
		e.buf.MustWrite(e.temp[:n])
		prevTS = ts
		startIdx = 1
	}

	if startIdx < tsLen && prevDelta == 0 {
		ts := timestampsUs[startIdx]
		delta := ts - prevTS
		zigzag := (delta << 1) ^ (delta >> 63)
		n := binary.PutUvarint(e.temp[:], uint64(zigzag)) //nolint:gosec
		e.buf.MustWrite(e.temp[:n])
		prevTS = ts
		prevDelta = delta
		startIdx++
	}

	for _, ts := range timestampsUs[startIdx:] {
		delta := ts - prevTS
		deltaOfDelta := delta - prevDelta
		zigzag := (deltaOfDelta << 1) ^ (deltaOfDelta >> 63)
		n := binary.PutUvarint(e.temp[:], uint64(zigzag)) //nolint:gosec
		e.buf.MustWrite(e.temp[:n])
		prevTS = ts
		prevDelta = delta
	}

	e.prevTS = prevTS
	e.prevDelta = prevDelta
}

// Bytes returns the encoded stream written since the last Finish: a full
// varint, a zigzag+varint delta, then a zigzag+varint delta-of-delta per
// remaining row. The slice aliases the internal buffer and is valid only
// until the next Write, WriteSlice, or Reset call.
func (e *TimestampDeltaEncoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Len returns the number of timestamps written since the last Finish.
func (e *TimestampDeltaEncoder) Len() int {
	return e.count
}

// Size returns the byte length of the stream written since the last Finish.
func (e *TimestampDeltaEncoder) Size() int {
	return e.buf.Len()
}

// Reset clears the delta chain without releasing the buffer or clearing
// Len, so the next WriteSlice starts a fresh chain after the bytes already
// written. Write picks its first-value and delta rules by Len, which Reset
// leaves as is, so a Write after Reset does not start a fresh chain.
func (e *TimestampDeltaEncoder) Reset() {
	e.prevTS = 0
	e.prevDelta = 0
}

// Finish releases the encoder's buffer back to the pool and clears all
// state, leaving the encoder as if newly constructed.
func (e *TimestampDeltaEncoder) Finish() {
	pool.PutBlobBuffer(e.buf)
	e.buf = pool.GetBlobBuffer()
	e.prevTS = 0
	e.prevDelta = 0
	e.count = 0
}

// TimestampDeltaDecoder is the decode side of TimestampDeltaEncoder. It is
// stateless: each All call walks the delta chain from the start of data on
// its own, so one decoder value can be reused across many column streams.
type TimestampDeltaDecoder struct{}

var _ ColumnarDecoder[int64] = TimestampDeltaDecoder{}

// NewTimestampDeltaDecoder creates a stateless delta-of-delta decoder.
func NewTimestampDeltaDecoder() TimestampDeltaDecoder {
	return TimestampDeltaDecoder{}
}

// All yields up to count timestamps decoded from data's delta-of-delta
// chain, stopping early if the chain runs out of valid varints before count
// is reached.
func (d TimestampDeltaDecoder) All(data []byte, count int) iter.Seq[int64] {
	return func(yield func(int64) bool) {
		if len(data) == 0 || count <= 0 {
			return
		}

		offset := 0
		yielded := 0

		firstTS, n := binary.Uvarint(data[offset:])
		if n <= 0 {
			return
		}
		offset += n
		yielded++

		curTS := int64(firstTS) //nolint:gosec
		if !yield(curTS) {
			return
		}

		if yielded >= count {
			return
		}

		zigzag, n := binary.Uvarint(data[offset:])
		if n <= 0 {
			return
		}
		offset += n

		delta := int64(zigzag>>1) ^ -(int64(zigzag & 1)) //nolint:gosec
		curTS += delta
		yielded++

		if !yield(curTS) {
			return
		}

		prevDelta := delta

		for yielded < count && offset < len(data) {
			zigzag, n := binary.Uvarint(data[offset:])
			if n <= 0 {
				return
			}
			offset += n

			deltaOfDelta := int64(zigzag>>1) ^ -(int64(zigzag & 1)) //nolint:gosec
			delta = prevDelta + deltaOfDelta
			curTS += delta
			yielded++

			if !yield(curTS) {
				return
			}

			prevDelta = delta
		}
	}
}

// At decodes the timestamp at the zero-based index by walking the delta
// chain from the start of data up to that index — delta-of-delta encoding
// gives no shortcut past that, unlike NumericRawDecoder's fixed stride.
func (d TimestampDeltaDecoder) At(data []byte, index int, count int) (int64, bool) {
	if index < 0 || index >= count || len(data) == 0 {
		return 0, false
	}

	offset := 0
	curIdx := 0

	firstTS, n := binary.Uvarint(data[offset:])
	if n <= 0 {
		return 0, false
	}
	offset += n

	curTS := int64(firstTS) //nolint:gosec

	if index == 0 {
		return curTS, true
	}

	curIdx++

	if offset >= len(data) {
		return 0, false
	}

	zigzag, n := binary.Uvarint(data[offset:])
	if n <= 0 {
		return 0, false
	}
	offset += n

	delta := int64(zigzag>>1) ^ -(int64(zigzag & 1)) //nolint:gosec
	curTS += delta

	if index == 1 {
		return curTS, true
	}

	curIdx++
	prevDelta := delta

	for curIdx <= index && offset < len(data) {
		zigzag, n := binary.Uvarint(data[offset:])
		if n <= 0 {
			return 0, false
		}
		offset += n

		deltaOfDelta := int64(zigzag>>1) ^ -(int64(zigzag & 1)) //nolint:gosec
		delta = prevDelta + deltaOfDelta
		curTS += delta

		if curIdx == index {
			return curTS, true
		}

		curIdx++
		prevDelta = delta
	}

	return 0, false
}
