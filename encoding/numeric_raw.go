package encoding

import (
	"fmt"
	"iter"
	"math"
	"unsafe"

	"github.com/colbyte/colrle/endian"
	"github.com/colbyte/colrle/internal/pool"
)

// NumericRawEncoder is the uncompressed value encoder a NumericColumnWriter
// uses when configured with format.TypeRaw: each float64 is written in its
// native IEEE 754 representation, 8 bytes per row, no transform.
//
// It exists alongside NumericGorillaEncoder as the "no compression" choice:
// rows that change value on every call (counters, jittery sensor readings)
// gain nothing from Gorilla's XOR delta and pay its bit-packing overhead for
// nothing, so raw encoding is the better default when values don't repeat.
type NumericRawEncoder struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
	count  int
}

var _ ColumnarEncoder[float64] = (*NumericRawEncoder)(nil)

// NewNumericRawEncoder creates a raw float64 encoder using engine's byte
// order. The returned encoder owns a pooled buffer until Finish is called.
func NewNumericRawEncoder(engine endian.EndianEngine) *NumericRawEncoder {
	return &NumericRawEncoder{
		engine: engine,
		buf:    pool.GetBlobBuffer(),
	}
}

// Write encodes a single float64 value, growing the buffer by 8 bytes ahead
// of writing to amortize reallocation across repeated calls. Panics if
// Finish has already been called.
func (e *NumericRawEncoder) Write(val float64) {
	if e.buf == nil {
		panic("encoder already finished - cannot write after Finish()")
	}

	e.count++
	e.buf.Grow(8)
	e.writeFloat64(val)
}

// WriteSlice encodes values in one pass, pre-allocating len(values)*8 bytes
// up front instead of growing per value. Prefer this over repeated Write
// calls when a column's whole row batch is available at once.
func (e *NumericRawEncoder) WriteSlice(values []float64) {
	if e.buf == nil {
		panic("encoder already finished - cannot write after Finish()")
	}

	valLen := len(values)
	e.count += valLen

	if valLen == 0 {
		return
	}

	e.buf.Grow(valLen * 8)

	startIdx := e.buf.Len()
	e.buf.ExtendOrGrow(valLen * 8)

	for i, v := range values {
		offset := startIdx + i*8
		e.engine.PutUint64(e.buf.Slice(offset, offset+8), math.Float64bits(v))
	}
}

// Bytes returns the value stream written since the last Finish. The slice
// aliases the internal buffer and is only valid until the next Write,
// WriteSlice, or Reset call. Panics if Finish has already been called.
func (e *NumericRawEncoder) Bytes() []byte {
	if e.buf == nil {
		panic("encoder already finished - cannot access bytes after Finish()")
	}

	return e.buf.Bytes()
}

// Len returns the number of float64 values written since the last Finish.
func (e *NumericRawEncoder) Len() int {
	return e.count
}

// Size returns the byte length of the value stream written since the last
// Finish. Panics if Finish has already been called.
func (e *NumericRawEncoder) Size() int {
	if e.buf == nil {
		panic("encoder already finished - cannot access size after Finish()")
	}

	return e.buf.Len()
}

// Reset is a no-op for raw encoding: there is no running state to clear
// beyond the accumulated buffer, which callers drain through Bytes.
func (e *NumericRawEncoder) Reset() {
}

// Finish releases the encoder's buffer back to the pool. The encoder is not
// usable afterward; create a new one to encode more values.
func (e *NumericRawEncoder) Finish() {
	if e.buf != nil {
		pool.PutBlobBuffer(e.buf)
		e.buf = nil
	}
	e.count = 0
}

func (e *NumericRawEncoder) writeFloat64(value float64) {
	bufLen := e.buf.Len()
	bs := e.buf.Slice(bufLen, bufLen+8)
	e.engine.PutUint64(bs, math.Float64bits(value))
	e.buf.SetLength(bufLen + 8)
}

// NumericRawDecoder is the decode side of NumericRawEncoder: fixed 8-byte
// stride over a value stream, so unlike NumericGorillaDecoder it supports
// O(1) random access via At without decoding from the start.
type NumericRawDecoder struct {
	engine endian.EndianEngine
}

var _ ColumnarDecoder[float64] = NumericRawDecoder{}

// NewNumericRawDecoder creates a decoder using engine's byte order, which
// must match the encoder that produced the data. Returned by value: the
// decoder is stateless and carries no buffer to release.
func NewNumericRawDecoder(engine endian.EndianEngine) NumericRawDecoder {
	return NumericRawDecoder{engine: engine}
}

// All decodes count float64 values from data in order. Yields nothing if
// data is shorter than count*8 bytes or count is zero.
func (d NumericRawDecoder) All(data []byte, count int) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		if len(data) < count*8 || count == 0 {
			return
		}

		for i := range count {
			start := i * 8
			bits := d.engine.Uint64(data[start : start+8])
			val := math.Float64frombits(bits)
			if !yield(val) {
				return
			}
		}
	}
}

// At decodes the value at the zero-based index within a stream of count
// values, without decoding any value before it. Returns false if index is
// out of [0, count) or data is too short to contain it.
func (d NumericRawDecoder) At(data []byte, index int, count int) (float64, bool) {
	if len(data) == 0 || index < 0 || index >= count {
		return 0, false
	}

	start := index * 8
	if start+8 > len(data) {
		return 0, false
	}

	bits := d.engine.Uint64(data[start : start+8])
	val := math.Float64frombits(bits)

	return val, true
}

// NumericRawUnsafeDecoder decodes the same wire format as NumericRawDecoder
// but reinterprets the byte slice directly as a []float64 via unsafe.Slice
// instead of copying field-by-field, trading a platform-native-endianness
// assumption for zero-copy reads on large columns.
//
// The caller must guarantee data's length is a multiple of 8; this decoder
// does not validate alignment the way the safe decoder's bounds checks do.
type NumericRawUnsafeDecoder struct {
	engine endian.EndianEngine
}

var _ ColumnarDecoder[float64] = NumericRawUnsafeDecoder{}

// NewNumericRawUnsafeDecoder creates an unsafe raw float64 decoder. engine
// is accepted for interface symmetry with NewNumericRawDecoder but unused:
// the unsafe cast always reads in the platform's native byte order.
func NewNumericRawUnsafeDecoder(engine endian.EndianEngine) NumericRawUnsafeDecoder {
	return NumericRawUnsafeDecoder{engine: engine}
}

// All decodes count float64 values from data via a zero-copy unsafe cast.
// Yields nothing if data is shorter than count*8 bytes, count is zero, or
// the cast fails because len(data) is not a multiple of 8.
func (d NumericRawUnsafeDecoder) All(data []byte, count int) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		if len(data) < count*8 || count == 0 {
			return
		}

		floatSlice, err := unsafeDecodeFloat64Slice(data[:count*8])
		if floatSlice == nil || err != nil {
			return
		}

		for _, val := range floatSlice {
			if !yield(val) {
				return
			}
		}
	}
}

// At retrieves the value at the zero-based index via the same unsafe cast
// All uses. Returns false if index is out of [0, count) or the cast fails.
func (d NumericRawUnsafeDecoder) At(data []byte, index int, count int) (float64, bool) {
	if len(data) == 0 || index < 0 || index >= count {
		return 0, false
	}

	floatSlice, err := unsafeDecodeFloat64Slice(data)
	if floatSlice == nil || err != nil {
		return 0, false
	}

	if index >= len(floatSlice) {
		return 0, false
	}

	return floatSlice[index], true
}

// unsafeDecodeFloat64Slice reinterprets data as a []float64 without copying.
func unsafeDecodeFloat64Slice(data []byte) ([]float64, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("byte slice length (%d) is not a multiple of 8", len(data))
	}

	ptr := (*float64)(unsafe.Pointer(&data[0]))

	return unsafe.Slice(ptr, len(data)/8), nil
}
