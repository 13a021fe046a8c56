package rle

import (
	"github.com/colbyte/colrle/internal/bitutil"
	"github.com/colbyte/colrle/position"
	"github.com/colbyte/colrle/stream"
)

// BoolEncoder bit-packs booleans MSB-first, 8 to a byte, and delegates the
// packed bytes to an embedded ByteEncoder: component E (encoder half). Bit
// k of the i-th boolean is stored at bit (7 - i%8) of its containing byte.
type BoolEncoder struct {
	byteEncoder *ByteEncoder

	current      byte
	bitsRemained int
}

// NewBoolEncoder creates a BoolEncoder writing into sink.
func NewBoolEncoder(sink stream.Sink) *BoolEncoder {
	return &BoolEncoder{
		byteEncoder:  NewByteEncoder(sink),
		bitsRemained: 8,
	}
}

// Add writes one bit per non-null position in ranges: data[pos] != 0, or
// true if data is nil (an all-true source is a legitimate, explicit
// calling convention here, not an overload of a missing pointer).
func (e *BoolEncoder) Add(data []byte, ranges Ranges, nulls bitutil.NullMask) (int, error) {
	return e.AddFunc(func(i int) bool { return data == nil || data[i] != 0 }, ranges, nulls.IsNull)
}

// AddFunc is Add with a callback instead of a flat byte slice.
func (e *BoolEncoder) AddFunc(valueAt func(int) bool, ranges Ranges, isNullAt func(int) bool) (int, error) {
	count := 0

	for pos := range ranges {
		if isNullAt != nil && isNullAt(pos) {
			continue
		}

		if err := e.writeBool(valueAt(pos)); err != nil {
			return count, err
		}

		count++
	}

	return count, nil
}

// AddBits is Add/AddFunc for a caller whose booleans are already bit-packed
// LSB-first (bitutil.NullMask's bit order) rather than one-byte-per-value. If invert is true, each bit is
// XOR'd before encoding — used to derive an "is present" stream from an
// "is null" bitmask without materializing a second buffer.
func (e *BoolEncoder) AddBits(bitData bitutil.NullMask, ranges Ranges, nulls bitutil.NullMask, invert bool) (int, error) {
	count := 0

	for pos := range ranges {
		if nulls != nil && nulls.IsNull(pos) {
			continue
		}

		val := bitData == nil || invert != getBitLSB(bitData, pos)
		if err := e.writeBool(val); err != nil {
			return count, err
		}

		count++
	}

	return count, nil
}

// Flush emits the partially filled byte, if any (zero-padded in the low
// bits), then flushes the underlying byte encoder.
func (e *BoolEncoder) Flush() (int64, error) {
	if e.bitsRemained != 8 {
		if err := e.flushByte(); err != nil {
			return 0, err
		}
	}

	return e.byteEncoder.Flush()
}

// GetBufferSize returns the number of bytes emitted so far by the
// underlying byte encoder.
func (e *BoolEncoder) GetBufferSize() int64 {
	return e.byteEncoder.GetBufferSize()
}

// RecordPosition records the byte encoder's position, then the bit offset
// within the last emitted byte (8 - bitsRemained).
func (e *BoolEncoder) RecordPosition(rec position.Recorder, stride int) {
	e.byteEncoder.RecordPosition(rec, stride)
	rec.Add(int64(8-e.bitsRemained), stride)
}

func (e *BoolEncoder) writeBool(v bool) error {
	e.bitsRemained--
	if v {
		e.current |= 1 << uint(e.bitsRemained)
	}

	if e.bitsRemained == 0 {
		return e.flushByte()
	}

	return nil
}

func (e *BoolEncoder) flushByte() error {
	if err := e.byteEncoder.write(e.current); err != nil {
		return err
	}

	e.current = 0
	e.bitsRemained = 8

	return nil
}

// getBitLSB reads bit i of a conventionally (LSB-first-within-byte)
// bit-packed source, matching bitutil.NullMask's own convention.
func getBitLSB(data bitutil.NullMask, i int) bool {
	return data.IsNull(i)
}
