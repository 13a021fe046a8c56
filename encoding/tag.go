package encoding

import (
	"encoding/binary"
	"iter"

	"github.com/colbyte/colrle/endian"
	"github.com/colbyte/colrle/internal/pool"
)

// TagEncoder is the value encoder a StringColumnWriter uses once it has
// dictionary-coded a column's repeated strings down to a small set of
// distinct entries: TagEncoder stores that dictionary itself (the list of
// distinct tag strings), not the per-row codes, which StringColumnWriter
// encodes separately (through rle.ByteEncoder, or as fixed-width codes once
// the dictionary passes 256 entries). Each entry is written as
// [length:uvarint][bytes:UTF-8].
type TagEncoder struct {
	buf    *pool.ByteBuffer
	count  int
	engine endian.EndianEngine
}

var _ ColumnarEncoder[string] = (*TagEncoder)(nil)

// NewTagEncoder creates a tag encoder. engine is accepted only to satisfy
// the same constructor shape as the numeric/timestamp encoders; tag
// encoding is endian-neutral since it never writes multi-byte integers
// other than uvarint lengths.
func NewTagEncoder(engine endian.EndianEngine) *TagEncoder {
	return &TagEncoder{
		engine: engine,
		buf:    pool.GetBlobBuffer(),
	}
}

// Bytes returns the encoded dictionary entries written so far.
func (e *TagEncoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Len returns the number of entries written since the last Finish.
func (e *TagEncoder) Len() int {
	return e.count
}

// Size returns the number of bytes written to the internal buffer.
func (e *TagEncoder) Size() int {
	return e.buf.Len()
}

// Reset clears the entry count but keeps the buffer for reuse.
func (e *TagEncoder) Reset() {
	e.count = 0
}

// Finish returns the buffer to the pool and resets the encoder.
func (e *TagEncoder) Finish() {
	pool.PutBlobBuffer(e.buf)
	e.buf = pool.GetBlobBuffer()
	e.count = 0
}

// Write appends a single dictionary entry.
func (e *TagEncoder) Write(tag string) {
	if len(tag) == 0 {
		e.buf.MustWrite([]byte{0})
		e.count++
		return
	}

	tagLen := len(tag)
	varintBytes := varintLen(uint64(tagLen))

	requiredBytes := varintBytes + tagLen
	oldLen := e.buf.Len()
	e.buf.ExtendOrGrow(requiredBytes)
	buf := e.buf.Bytes()

	binary.PutUvarint(buf[oldLen:], uint64(tagLen))
	copy(buf[oldLen+varintBytes:], tag)

	e.count++
}

// WriteSlice appends a batch of dictionary entries, sizing the buffer
// growth once up front instead of once per entry.
func (e *TagEncoder) WriteSlice(tags []string) {
	if len(tags) == 0 {
		return
	}

	totalSize := 0
	for i := range tags {
		tagLen := len(tags[i])
		totalSize += varintLen(uint64(tagLen)) + tagLen
	}

	oldLen := e.buf.Len()
	e.buf.ExtendOrGrow(totalSize)
	buf := e.buf.Bytes()

	offset := oldLen
	for i := range tags {
		tag := tags[i]
		tagLen := len(tag)

		n := binary.PutUvarint(buf[offset:], uint64(tagLen))
		offset += n

		if tagLen > 0 {
			copy(buf[offset:], tag)
			offset += tagLen
		}
	}

	e.count += len(tags)
}

// TagDecoder reads a dictionary's entries back out of a StringColumnWriter's
// flushed payload. It carries no state of its own, so a single instance
// decodes any number of columns.
type TagDecoder struct {
	engine endian.EndianEngine
}

var _ ColumnarDecoder[string] = TagDecoder{}

// NewTagDecoder creates a tag decoder. engine is accepted for constructor
// symmetry with the other decoders but unused.
func NewTagDecoder(engine endian.EndianEngine) TagDecoder {
	return TagDecoder{
		engine: engine,
	}
}

// All decodes every dictionary entry in data in order.
func (d TagDecoder) All(data []byte, count int) iter.Seq[string] {
	return func(yield func(string) bool) {
		offset := 0
		for range count {
			tagLen, n, ok := decodeTagAt(data, offset)
			if !ok {
				return
			}

			offset += n
			tag := string(data[offset : offset+tagLen])
			offset += tagLen

			if !yield(tag) {
				return
			}
		}
	}
}

// At decodes just the entry at index out of count total entries in data.
func (d TagDecoder) At(data []byte, index int, count int) (string, bool) {
	if index < 0 || index >= count {
		return "", false
	}

	offset := 0
	for i := 0; i <= index; i++ {
		tagLen, n, ok := decodeTagAt(data, offset)
		if !ok {
			return "", false
		}

		offset += n

		if i == index {
			tag := string(data[offset : offset+tagLen])
			return tag, true
		}

		offset += tagLen
	}

	return "", false
}

// decodeTagAt reads one entry's length prefix at offset, returning the
// entry's byte length, the varint's own length, and whether the read was
// in bounds. Shared by All and At.
func decodeTagAt(data []byte, offset int) (tagLen int, varintSize int, ok bool) {
	if offset >= len(data) {
		return 0, 0, false
	}

	tagLenU64, n := binary.Uvarint(data[offset:])
	if n <= 0 {
		return 0, 0, false
	}

	if tagLenU64 > uint64(^uint(0)>>1) || offset+n+int(tagLenU64) > len(data) {
		return 0, 0, false
	}

	return int(tagLenU64), n, true
}

// varintLen returns the number of bytes binary.PutUvarint would need for n,
// without allocating a scratch buffer to measure it.
func varintLen(n uint64) int {
	if n < 1<<7 {
		return 1
	}
	if n < 1<<14 {
		return 2
	}
	if n < 1<<21 {
		return 3
	}
	if n < 1<<28 {
		return 4
	}
	if n < 1<<35 {
		return 5
	}
	if n < 1<<42 {
		return 6
	}
	if n < 1<<49 {
		return 7
	}
	if n < 1<<56 {
		return 8
	}
	if n < 1<<63 {
		return 9
	}

	return 10
}
