package encoding

import (
	"fmt"

	"github.com/colbyte/colrle/endian"
	"github.com/colbyte/colrle/internal/pool"
)

// MaxTextLength bounds a single encoded string to fit a uint8 length prefix.
const MaxTextLength = 255

// VarStringEncoder encodes strings as [length:uint8][bytes:UTF-8], for
// contexts that need a simpler framing than TagEncoder's uvarint length —
// a fixed one-byte prefix in exchange for a hard 255-byte cap per string.
// It also carries WriteVarint, a zigzag varint writer shared with
// TimestampDeltaEncoder's delta-of-delta format, for callers building a
// delta-timestamp stream by hand rather than through TimestampColumnWriter.
//
// VarStringEncoder is not a ColumnarEncoder: Write/WriteSlice return an
// error instead of panicking on an oversized string.
type VarStringEncoder struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
	count  int
}

// NewVarStringEncoder creates an encoder. engine is accepted for
// constructor symmetry with the other encoders in this package.
func NewVarStringEncoder(engine endian.EndianEngine) *VarStringEncoder {
	return &VarStringEncoder{
		engine: engine,
		buf:    pool.GetBlobBuffer(),
	}
}

// Write appends a single string, erroring if it exceeds MaxTextLength.
func (e *VarStringEncoder) Write(text string) error {
	if len(text) > MaxTextLength {
		return fmt.Errorf("text length %d exceeds maximum %d", len(text), MaxTextLength)
	}

	e.count++

	e.buf.Grow(1 + len(text))

	length := uint8(len(text)) //nolint:gosec
	e.buf.MustWrite([]byte{length})
	e.buf.MustWrite([]byte(text))

	return nil
}

// WriteSlice appends a batch of strings, validating all of them and growing
// the buffer once rather than once per string.
func (e *VarStringEncoder) WriteSlice(texts []string) error {
	totalSize := 0
	for _, text := range texts {
		if len(text) > MaxTextLength {
			return fmt.Errorf("text length %d exceeds maximum %d", len(text), MaxTextLength)
		}
		totalSize += 1 + len(text)
	}

	e.buf.Grow(totalSize)

	for _, text := range texts {
		length := uint8(len(text)) //nolint:gosec
		e.buf.MustWrite([]byte{length})
		e.buf.MustWrite([]byte(text))
		e.count++
	}

	return nil
}

// WriteVarint appends val as a zigzag-encoded varint, the same framing
// TimestampDeltaEncoder uses for its delta-of-delta stream.
func (e *VarStringEncoder) WriteVarint(val int64) {
	uval := uint64(val<<1) ^ uint64(val>>63) //nolint:gosec

	for uval >= 0x80 {
		e.buf.MustWrite([]byte{byte(uval) | 0x80})
		uval >>= 7
	}
	e.buf.MustWrite([]byte{byte(uval)})
}

// Bytes returns the encoded data, sharing the encoder's underlying buffer.
func (e *VarStringEncoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Len returns the number of strings written since the last Reset.
func (e *VarStringEncoder) Len() int {
	return e.count
}

// Size returns the number of bytes written to the internal buffer.
func (e *VarStringEncoder) Size() int {
	return e.buf.Len()
}

// Reset returns the buffer to the pool. The encoder must not be reused
// after Reset.
func (e *VarStringEncoder) Reset() {
	if e.buf != nil {
		pool.PutBlobBuffer(e.buf)
		e.buf = nil
	}
	e.count = 0
}
