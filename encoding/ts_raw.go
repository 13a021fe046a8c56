package encoding

import (
	"fmt"
	"iter"
	"unsafe"

	"github.com/colbyte/colrle/endian"
	"github.com/colbyte/colrle/internal/pool"
)

// TimestampRawEncoder is the value encoder a TimestampColumnWriter uses when
// configured with format.TypeRaw: each timestamp (microseconds since Unix
// epoch) is stored as a fixed 8-byte integer rather than delta-encoded.
// TimestampColumnWriter picks this over TimestampDeltaEncoder when the
// column's timestamps aren't monotonic enough for delta-of-delta to help,
// or when random access via At without decoding preceding rows matters more
// than the smaller encoded size delta encoding usually produces.
type TimestampRawEncoder struct {
	buf    *pool.ByteBuffer
	count  int
	engine endian.EndianEngine
}

var _ ColumnarEncoder[int64] = (*TimestampRawEncoder)(nil)

// NewTimestampRawEncoder creates an encoder using engine for byte order.
func NewTimestampRawEncoder(engine endian.EndianEngine) *TimestampRawEncoder {
	return &TimestampRawEncoder{
		engine: engine,
		buf:    pool.GetBlobBuffer(),
	}
}

// Write appends a single timestamp (microseconds since Unix epoch) as 8
// fixed bytes.
func (e *TimestampRawEncoder) Write(timestampUs int64) {
	e.count++

	e.buf.Grow(8)

	e.writeInt64(timestampUs)
}

// WriteSlice appends a batch of timestamps, growing the buffer once for the
// whole batch instead of once per value.
func (e *TimestampRawEncoder) WriteSlice(timestampsUs []int64) {
	tsLen := len(timestampsUs)
	e.count += tsLen

	if tsLen == 0 {
		return
	}

	e.buf.Grow(tsLen * 8)

	startIdx := e.buf.Len()
	e.buf.ExtendOrGrow(tsLen * 8)
	buf := e.buf.Bytes()

	for i, ts := range timestampsUs {
		offset := startIdx + i*8
		e.engine.PutUint64(buf[offset:offset+8], uint64(ts)) //nolint:gosec
	}
}

// Bytes returns the encoded timestamps, 8 bytes each in the encoder's byte
// order.
func (e *TimestampRawEncoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Len returns the number of timestamps written since the last Finish.
func (e *TimestampRawEncoder) Len() int {
	return e.count
}

// Size returns the number of bytes written to the internal buffer.
func (e *TimestampRawEncoder) Size() int {
	return e.buf.Len()
}

// Reset is a no-op: raw encoding carries no cross-value state (unlike
// TimestampDeltaEncoder's running delta) for Reset to clear.
func (e *TimestampRawEncoder) Reset() {
}

// Finish returns the buffer to the pool and resets the encoder.
func (e *TimestampRawEncoder) Finish() {
	pool.PutBlobBuffer(e.buf)
	e.buf = pool.GetBlobBuffer()
	e.count = 0
}

// writeInt64 writes timestamp into the buffer's next 8 bytes. Callers must
// have already grown the buffer's capacity.
func (e *TimestampRawEncoder) writeInt64(timestamp int64) {
	bufLen := e.buf.Len()
	bs := e.buf.Bytes()[bufLen : bufLen+8]
	e.engine.PutUint64(bs, uint64(timestamp)) //nolint:gosec
	e.buf.SetLength(bufLen + 8)
}

// TimestampRawDecoder reads TimestampRawEncoder's output back into
// timestamps. It holds no state beyond the byte order, so one instance
// serves every raw-encoded timestamp column a TimestampColumnReader opens.
type TimestampRawDecoder struct {
	engine endian.EndianEngine
}

var _ ColumnarDecoder[int64] = TimestampRawDecoder{}

// NewTimestampRawDecoder creates a decoder. engine must match the encoder's.
func NewTimestampRawDecoder(engine endian.EndianEngine) TimestampRawDecoder {
	return TimestampRawDecoder{engine: engine}
}

// All decodes every timestamp in data in order.
func (d TimestampRawDecoder) All(data []byte, count int) iter.Seq[int64] {
	return func(yield func(int64) bool) {
		if len(data) == 0 || count == 0 {
			return
		}

		dataLen := len(data)
		if dataLen%8 != 0 {
			return
		}

		for i := range count {
			start := i * 8
			if start+8 > dataLen {
				break
			}

			ts := int64(d.engine.Uint64(data[start : start+8])) //nolint: gosec

			if !yield(ts) {
				break
			}
		}
	}
}

// At decodes just the timestamp at index out of count total timestamps in
// data, without decoding the rest.
func (d TimestampRawDecoder) At(data []byte, index int, count int) (int64, bool) {
	if len(data) == 0 || index < 0 || index >= count {
		return 0, false
	}

	start := index * 8
	if start+8 > len(data) {
		return 0, false
	}

	ts := int64(d.engine.Uint64(data[start : start+8])) //nolint: gosec

	return ts, true
}

// TimestampRawUnsafeDecoder decodes the same format as TimestampRawDecoder
// but reinterprets the input bytes directly as an []int64 instead of
// reading each value through the endian engine, trading the byte-order
// flexibility for the cost of a safe decode. Only correct when the data's
// byte order matches the host's native order — check with
// endian.CompareNativeEndian before choosing this decoder over
// TimestampRawDecoder.
type TimestampRawUnsafeDecoder struct{}

var _ ColumnarDecoder[int64] = TimestampRawUnsafeDecoder{}

// NewTimestampRawUnsafeDecoder creates a decoder. engine is accepted for
// constructor symmetry with TimestampRawDecoder but unused — the whole
// point of this decoder is to skip the endian engine.
func NewTimestampRawUnsafeDecoder(engine endian.EndianEngine) TimestampRawUnsafeDecoder {
	return TimestampRawUnsafeDecoder{}
}

// All decodes every timestamp in data via the unsafe []int64 reinterpret.
func (d TimestampRawUnsafeDecoder) All(data []byte, count int) iter.Seq[int64] {
	return func(yield func(int64) bool) {
		if len(data) < count*8 || count == 0 {
			return
		}

		timestamps, err := unsafeDecodeInt64Slice(data)
		if err != nil {
			return
		}

		for i, ts := range timestamps {
			if i >= count {
				break
			}

			if !yield(ts) {
				break
			}
		}
	}
}

// At decodes just the timestamp at index via the unsafe []int64 reinterpret.
func (d TimestampRawUnsafeDecoder) At(data []byte, index int, count int) (int64, bool) {
	if len(data) == 0 || index < 0 || index >= count {
		return 0, false
	}

	timestamps, err := unsafeDecodeInt64Slice(data)
	if err != nil {
		return 0, false
	}

	if index >= len(timestamps) {
		return 0, false
	}

	return timestamps[index], true
}

func unsafeDecodeInt64Slice(data []byte) ([]int64, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("byte slice length (%d) is not a multiple of 8", len(data))
	}

	ptr := (*int64)(unsafe.Pointer(&data[0]))

	return unsafe.Slice(ptr, len(data)/8), nil
}
