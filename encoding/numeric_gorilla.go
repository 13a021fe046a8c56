package encoding

import (
	"encoding/binary"
	"iter"
	"math"
	"math/bits"

	"github.com/colbyte/colrle/internal/pool"
)

const (
	gorillaSmallSequenceThreshold = 64
)

// NumericGorillaEncoder is the value encoder a NumericColumnWriter uses when
// configured with format.TypeGorilla: the Facebook Gorilla XOR scheme for
// float64 columns whose consecutive rows tend to repeat or drift slightly
// (gauge metrics, slowly varying sensor readings), in contrast to
// NumericRawEncoder's fixed 8-bytes-per-row cost.
//
//  1. The first row is stored uncompressed, 64 bits.
//  2. Each later row is XORed against the previous row's bits.
//     - XOR == 0 (value repeated): one control bit.
//     - XOR != 0: a control bit, then either "reuse the previous
//       leading/trailing-zero window" (one bit) or "new window" (one bit +
//       5-bit leading-zero count + 6-bit block size), followed by the
//       meaningful XOR bits themselves.
//
// See https://www.vldb.org/pvldb/vol8/p1816-teller.pdf for the original
// algorithm description.
type NumericGorillaEncoder struct {
	bitBuf        uint64
	prevValue     uint64
	bitCount      int
	count         int
	prevLeading   int
	prevTrailing  int
	prevBlockSize int
	firstValue    bool

	buf *pool.ByteBuffer
}

var _ ColumnarEncoder[float64] = (*NumericGorillaEncoder)(nil)

// NewNumericGorillaEncoder creates a Gorilla-XOR encoder ready for a
// column's first value.
func NewNumericGorillaEncoder() *NumericGorillaEncoder {
	return &NumericGorillaEncoder{
		buf:        pool.GetBlobBuffer(),
		firstValue: true,
	}
}

// Write encodes one value: stored raw if it is the column's first value,
// otherwise XOR-compressed against the previous value.
func (e *NumericGorillaEncoder) Write(val float64) {
	if e.buf == nil {
		panic("encoder already finished - cannot write values after Finish()")
	}

	e.count++
	valBits := math.Float64bits(val)

	if e.firstValue {
		e.firstValue = false
		e.prevValue = valBits
		e.writeBits(valBits, 64)

		return
	}

	e.writeValue(valBits)
}

// WriteSlice encodes a row batch, detecting runs of identical consecutive
// values and folding a run into a single multi-bit "unchanged" write
// instead of re-deriving the zero-XOR case one value at a time.
func (e *NumericGorillaEncoder) WriteSlice(values []float64) {
	if e.buf == nil {
		panic("encoder already finished - cannot write values after Finish()")
	}

	if len(values) == 0 {
		return
	}

	if e.firstValue {
		e.count++
		valBits := math.Float64bits(values[0])
		e.firstValue = false
		e.prevValue = valBits
		e.writeBits(valBits, 64)
		values = values[1:]
	}

	i := 0
	for i < len(values) {
		valBits := math.Float64bits(values[i])

		j := i + 1
		for j < len(values) && math.Float64bits(values[j]) == valBits {
			j++
		}

		runLength := j - i
		if runLength > 1 && valBits == e.prevValue {
			e.writeMultipleZeroBits(runLength)
			e.count += runLength
			i = j
		} else {
			e.count++
			e.writeValue(valBits)
			i++
		}
	}
}

func (e *NumericGorillaEncoder) writeMultipleZeroBits(count int) {
	for count > 0 {
		bitsToWrite := count
		if bitsToWrite > 64 {
			bitsToWrite = 64
		}
		e.writeBits(0, bitsToWrite)
		count -= bitsToWrite
	}
}

// Bytes returns the XOR-compressed stream written since the last Finish,
// flushing any bits still sitting in the bit buffer first. The slice
// aliases the internal buffer and is valid only until the next Write,
// WriteSlice, Reset, or Finish call.
func (e *NumericGorillaEncoder) Bytes() []byte {
	if e.buf == nil {
		panic("encoder already finished - cannot access bytes after Finish()")
	}

	if e.bitCount > 0 {
		e.flushBits()
	}

	return e.buf.Bytes()
}

// Len returns the number of float64 values written since the last Finish.
func (e *NumericGorillaEncoder) Len() int {
	return e.count
}

// Size returns the byte length flushed to the internal buffer so far; bits
// still pending in the bit buffer are not counted until Bytes or Finish
// flushes them.
func (e *NumericGorillaEncoder) Size() int {
	if e.buf == nil {
		panic("encoder already finished - cannot access size after Finish()")
	}

	return e.buf.Len()
}

// Reset clears the XOR chain and bit buffer so the encoder can start a
// fresh column, retaining the accumulated byte buffer rather than
// releasing it.
func (e *NumericGorillaEncoder) Reset() {
	e.bitBuf = 0
	e.bitCount = 0
	e.prevValue = 0
	e.prevLeading = 0
	e.prevTrailing = 0
	e.prevBlockSize = 0
	e.firstValue = true
}

// Finish releases the encoder's buffer back to the pool, leaving the
// encoder unusable; create a new one to encode further values. Callers
// must call Bytes before Finish to retrieve the encoded stream.
func (e *NumericGorillaEncoder) Finish() {
	if e.buf == nil {
		return
	}

	pool.PutBlobBuffer(e.buf)
	e.buf = nil
	e.count = 0
}

// writeValue XOR-compresses one value against the previous one, choosing
// between the zero-XOR fast path, the reuse-previous-window path, and the
// new-window path.
func (e *NumericGorillaEncoder) writeValue(valBits uint64) {
	xor := valBits ^ e.prevValue
	e.prevValue = valBits

	if xor == 0 {
		e.bitBuf = (e.bitBuf << 1)
		e.bitCount++
		if e.bitCount == 64 {
			e.flushBits()
		}

		return
	}

	e.writeBit(1)

	leading := bits.LeadingZeros64(xor)
	trailing := bits.TrailingZeros64(xor)

	// The leading-zero field is 5 bits wide (max 31); values above that are
	// clamped, and the surplus is also taken off trailing (not below zero),
	// so the window grows but still covers every set bit of the XOR.
	if leading > 31 {
		adjustment := leading - 31
		leading = 31
		trailing -= adjustment
		if trailing < 0 {
			trailing = 0
		}
	}

	// count > 2 excludes the first value (stored raw) and the second value
	// (no prior window to compare against).
	if e.count > 2 && e.prevBlockSize > 0 && leading >= e.prevLeading && trailing >= e.prevTrailing {
		e.writeBit(0)
		e.writeBits(xor>>e.prevTrailing, e.prevBlockSize)
	} else {
		blockSize := 64 - leading - trailing
		e.writeBit(1)

		e.write5Bits(uint64(leading))          //nolint:gosec // G115: leading is always 0-31
		e.write6Bits(uint64(blockSize - 1))     //nolint:gosec // G115: blockSize-1 is always 0-63
		e.writeBits(xor>>trailing, blockSize)

		e.prevLeading = leading
		e.prevTrailing = trailing
		e.prevBlockSize = blockSize
	}
}

func (e *NumericGorillaEncoder) writeBit(bit uint64) {
	e.bitBuf = (e.bitBuf << 1) | bit
	e.bitCount++

	if e.bitCount == 64 {
		e.flushBits()
	}
}

// writeBits writes the low numBits bits of value, splitting across a
// bit-buffer flush boundary when the write doesn't fit in what remains of
// the current 64-bit accumulator.
func (e *NumericGorillaEncoder) writeBits(value uint64, numBits int) {
	if numBits == 0 {
		return
	}

	if numBits < 64 {
		value &= (1 << numBits) - 1
	}

	available := 64 - e.bitCount

	if numBits <= available {
		e.bitBuf = (e.bitBuf << numBits) | value
		e.bitCount += numBits

		if e.bitCount == 64 {
			e.flushBits()
		}
	} else {
		highBits := numBits - available
		e.bitBuf = (e.bitBuf << available) | (value >> highBits)
		e.bitCount = 64
		e.flushBits()

		e.bitBuf = value & ((1 << highBits) - 1)
		e.bitCount = highBits
	}
}

// write5Bits writes the leading-zero-count field.
func (e *NumericGorillaEncoder) write5Bits(value uint64) {
	value &= 0x1F
	available := 64 - e.bitCount
	if available >= 5 {
		e.bitBuf = (e.bitBuf << 5) | value
		e.bitCount += 5
		if e.bitCount >= 64 {
			e.flushBits()
		}
	} else {
		highBits := 5 - available
		e.bitBuf = (e.bitBuf << available) | (value >> highBits)
		e.bitCount = 64
		e.flushBits()

		e.bitBuf = value & ((1 << highBits) - 1)
		e.bitCount = highBits
	}
}

// write6Bits writes the block-size field.
func (e *NumericGorillaEncoder) write6Bits(value uint64) {
	value &= 0x3F
	available := 64 - e.bitCount
	if available >= 6 {
		e.bitBuf = (e.bitBuf << 6) | value
		e.bitCount += 6
		if e.bitCount >= 64 {
			e.flushBits()
		}
	} else {
		highBits := 6 - available
		e.bitBuf = (e.bitBuf << available) | (value >> highBits)
		e.bitCount = 64
		e.flushBits()

		e.bitBuf = value & ((1 << highBits) - 1)
		e.bitCount = highBits
	}
}

// flushBits left-aligns and appends the current bit buffer's valid bits to
// the byte buffer as whole bytes, most significant byte first.
func (e *NumericGorillaEncoder) flushBits() {
	if e.bitCount == 0 {
		return
	}

	numBytes := (e.bitCount + 7) / 8

	e.buf.Grow(numBytes)

	alignedBits := e.bitBuf << (64 - e.bitCount)

	startLen := e.buf.Len()
	e.buf.ExtendOrGrow(numBytes)

	bs := e.buf.Slice(startLen, startLen+numBytes)

	if numBytes == 8 {
		binary.BigEndian.PutUint64(bs, alignedBits)
	} else {
		for i := range numBytes {
			shift := 56 - (i * 8)
			bs[i] = byte(alignedBits >> shift)
		}
	}

	e.bitBuf = 0
	e.bitCount = 0
}

// NumericGorillaDecoder is the decode side of NumericGorillaEncoder. It is
// stateless: decoding any row past the first requires replaying the XOR
// chain from the start of the stream, so unlike NumericRawDecoder there is
// no O(1) random access — At still walks forward from row zero.
type NumericGorillaDecoder struct{}

var _ ColumnarDecoder[float64] = NumericGorillaDecoder{}

// NewNumericGorillaDecoder creates a stateless Gorilla-XOR decoder.
func NewNumericGorillaDecoder() NumericGorillaDecoder {
	return NumericGorillaDecoder{}
}

// gorillaBlockState caches the previous value's leading/trailing-zero
// window so a "reuse previous window" control bit can be resolved without
// re-reading window metadata from the stream.
type gorillaBlockState struct {
	trailing  int
	blockSize int
	valid     bool
}

// next reads one changed value's window metadata, either the cached window
// (reuse bit) or a fresh 5-bit leading + 6-bit size pair, updating the
// cache in the latter case.
func (s *gorillaBlockState) next(br *bitReader) (trailing int, blockSize int, ok bool) {
	blockControlBit, ok := br.readBit()
	if !ok {
		return 0, 0, false
	}

	if blockControlBit == 0 {
		if !s.valid {
			return 0, 0, false
		}

		return s.trailing, s.blockSize, true
	}

	leading, ok := br.read5Bits()
	if !ok {
		return 0, 0, false
	}

	blockSize, ok = br.read6Bits()
	if !ok {
		return 0, 0, false
	}
	blockSize++
	if blockSize < 1 || blockSize > 64 {
		return 0, 0, false
	}

	trailing = 64 - leading - blockSize
	if trailing < 0 || trailing > 64 {
		return 0, 0, false
	}

	s.trailing = trailing
	s.blockSize = blockSize
	s.valid = true

	return trailing, blockSize, true
}

// All decodes count float64 values from a Gorilla-compressed stream,
// starting from the raw first value and replaying the XOR chain. Yields
// fewer than count values if the stream is short or malformed.
func (d NumericGorillaDecoder) All(data []byte, count int) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		if len(data) == 0 || count == 0 {
			return
		}

		if len(data) >= 64 {
			_ = data[63]
		}

		br := newBitReader(data)

		firstBits, ok := br.readBits(64)
		if !ok {
			return
		}
		prevValue := firstBits
		prevFloat := math.Float64frombits(prevValue)
		if !yield(prevFloat) {
			return
		}

		if count == 1 {
			return
		}

		remaining := count - 1
		if remaining <= gorillaSmallSequenceThreshold {
			d.decodeAllSmall(br, prevValue, prevFloat, remaining, yield)
			return
		}

		d.decodeAllLarge(br, prevValue, prevFloat, remaining, yield)
	}
}

func (NumericGorillaDecoder) decodeAllSmall(br *bitReader, prevValue uint64, prevFloat float64, remaining int, yield func(float64) bool) {
	trailing := 0
	blockSize := 0
	blockValid := false

	for remaining > 0 {
		controlBit, ok := br.readBit()
		if !ok {
			return
		}

		if controlBit == 0 {
			if !yield(prevFloat) {
				return
			}
			remaining--

			continue
		}

		reuseBit, ok := br.readBit()
		if !ok {
			return
		}

		var trailingBits, blockSizeBits int
		if reuseBit == 0 {
			if !blockValid {
				return
			}
			trailingBits = trailing
			blockSizeBits = blockSize
		} else {
			leading, ok := br.read5Bits()
			if !ok {
				return
			}
			sizeBits, ok := br.read6Bits()
			if !ok {
				return
			}
			blockSizeBits = sizeBits + 1
			if blockSizeBits < 1 || blockSizeBits > 64 {
				return
			}
			trailingBits = 64 - leading - blockSizeBits
			if trailingBits < 0 || trailingBits > 64 {
				return
			}

			trailing = trailingBits
			blockSize = blockSizeBits
			blockValid = true
		}

		meaningful, ok := br.readBits(blockSizeBits)
		if !ok {
			return
		}

		shift := uint64(trailingBits) // #nosec G115 -- trailingBits constrained to [0,64]
		prevValue ^= meaningful << shift
		prevFloat = math.Float64frombits(prevValue)
		if !yield(prevFloat) {
			return
		}
		remaining--
	}
}

func (NumericGorillaDecoder) decodeAllLarge(br *bitReader, prevValue uint64, prevFloat float64, remaining int, yield func(float64) bool) {
	if remaining <= 0 {
		return
	}

	state := gorillaBlockState{}
	produced := 0

	for produced < remaining {
		controlBit, ok := br.readBit()
		if !ok {
			return
		}

		if controlBit == 0 {
			if !yield(prevFloat) {
				return
			}
			produced++

			for produced < remaining {
				controlBit, ok = br.readBit()
				if !ok {
					return
				}
				if controlBit != 0 {
					break
				}

				if !yield(prevFloat) {
					return
				}
				produced++
			}

			if produced >= remaining {
				return
			}
		}

		trailing, blockSize, ok := state.next(br)
		if !ok {
			return
		}

		meaningfulBits, ok := br.readBits(blockSize)
		if !ok {
			return
		}

		shift := uint64(trailing) // #nosec G115 -- trailing validated by gorillaBlockState
		prevValue ^= meaningfulBits << shift
		prevFloat = math.Float64frombits(prevValue)
		if !yield(prevFloat) {
			return
		}
		produced++
	}
}

func (NumericGorillaDecoder) decodeAtSmall(br *bitReader, prevValue uint64, target int) (float64, bool) {
	trailing := 0
	blockSize := 0
	blockValid := false
	prevFloat := math.Float64frombits(prevValue)

	for current := 1; current <= target; {
		controlBit, ok := br.readBit()
		if !ok {
			return 0, false
		}

		if controlBit == 0 {
			if current == target {
				return prevFloat, true
			}
			current++

			continue
		}

		reuseBit, ok := br.readBit()
		if !ok {
			return 0, false
		}

		var trailingBits, blockSizeBits int
		if reuseBit == 0 {
			if !blockValid {
				return 0, false
			}
			trailingBits = trailing
			blockSizeBits = blockSize
		} else {
			leading, ok := br.read5Bits()
			if !ok {
				return 0, false
			}
			sizeBits, ok := br.read6Bits()
			if !ok {
				return 0, false
			}
			blockSizeBits = sizeBits + 1
			if blockSizeBits < 1 || blockSizeBits > 64 {
				return 0, false
			}
			trailingBits = 64 - leading - blockSizeBits
			if trailingBits < 0 || trailingBits > 64 {
				return 0, false
			}

			trailing = trailingBits
			blockSize = blockSizeBits
			blockValid = true
		}

		meaningful, ok := br.readBits(blockSizeBits)
		if !ok {
			return 0, false
		}

		shift := uint64(trailingBits) // #nosec G115 -- trailingBits constrained to [0,64]
		prevValue ^= meaningful << shift
		prevFloat = math.Float64frombits(prevValue)
		if current == target {
			return prevFloat, true
		}
		current++
	}

	return 0, false
}

// At decodes the value at the zero-based index by replaying the XOR chain
// from the start of data. Returns false if index is out of [0, count) or
// the stream is too short or malformed to reach it.
func (d NumericGorillaDecoder) At(data []byte, index int, count int) (float64, bool) {
	if len(data) == 0 || index < 0 || index >= count {
		return 0, false
	}

	br := newBitReader(data)

	firstBits, ok := br.readBits(64)
	if !ok {
		return 0, false
	}

	prevValue := firstBits
	prevFloat := math.Float64frombits(prevValue)
	if index == 0 {
		return prevFloat, true
	}
	remaining := index
	if remaining <= gorillaSmallSequenceThreshold {
		return d.decodeAtSmall(br, prevValue, remaining)
	}

	state := gorillaBlockState{}

	for current := 1; current <= index; {
		controlBit, ok := br.readBit()
		if !ok {
			return 0, false
		}

		if controlBit == 0 {
			if current == index {
				return prevFloat, true
			}
			current++

			for current <= index {
				controlBit, ok = br.readBit()
				if !ok {
					return 0, false
				}
				if controlBit != 0 {
					break
				}
				if current == index {
					return prevFloat, true
				}
				current++
			}

			if controlBit == 0 {
				return 0, false
			}
		}

		trailing, blockSize, ok := state.next(br)
		if !ok {
			return 0, false
		}

		meaningfulBits, ok := br.readBits(blockSize)
		if !ok {
			return 0, false
		}

		shift := uint64(trailing) // #nosec G115 -- trailing validated by gorillaBlockState
		prevValue ^= meaningfulBits << shift
		prevFloat = math.Float64frombits(prevValue)
		if current == index {
			return prevFloat, true
		}
		current++
	}

	return 0, false
}

// ByteLength reports how many bytes of data are consumed by the first count
// Gorilla-encoded values, without materializing them, which gives a
// stream's byte boundary within data that packs several streams back to
// back. Returns 0 if data is too short or
// malformed to scan through count values.
func (d NumericGorillaDecoder) ByteLength(data []byte, count int) int {
	if len(data) == 0 || count <= 0 {
		return 0
	}

	br := newBitReader(data)

	if _, ok := br.readBits(64); !ok {
		return 0
	}

	if count == 1 {
		return 8
	}

	state := gorillaBlockState{}

	for i := 1; i < count; i++ {
		controlBit, ok := br.readBit()
		if !ok {
			return 0
		}

		if controlBit == 0 {
			continue
		}

		_, blockSize, ok := state.next(br)
		if !ok {
			return 0
		}

		if _, ok := br.readBits(blockSize); !ok {
			return 0
		}
	}

	totalBits := br.bytePos*8 - br.bitCount
	totalBytes := (totalBits + 7) / 8

	return totalBytes
}

// bitReader reads individual bits and fixed-width bit fields out of a byte
// slice, MSB first, buffering up to 64 bits at a time.
type bitReader struct {
	data     []byte
	bytePos  int
	bitBuf   uint64
	bitCount int
}

func newBitReader(data []byte) *bitReader {
	return &bitReader{
		data: data,
	}
}

func (br *bitReader) readBit() (uint64, bool) {
	if br.bitCount == 0 {
		if !br.fillBuffer() {
			return 0, false
		}
	}

	bit := br.bitBuf >> 63
	br.bitBuf <<= 1
	br.bitCount--

	return bit, true
}

// read5Bits reads the leading-zero-count field, with a fast path avoiding
// readBits' general split-across-refill loop when enough bits are already
// buffered.
func (br *bitReader) read5Bits() (int, bool) {
	if br.bitCount >= 5 {
		br.bitCount -= 5
		val := int((br.bitBuf >> 59) & 0x1F) //nolint: gosec
		br.bitBuf <<= 5

		return val, true
	}

	val, ok := br.readBits(5)

	return int(val), ok //nolint: gosec
}

// read6Bits reads the block-size field, with the same fast path as
// read5Bits.
func (br *bitReader) read6Bits() (int, bool) {
	if br.bitCount >= 6 {
		br.bitCount -= 6
		val := int((br.bitBuf >> 58) & 0x3F) //nolint: gosec
		br.bitBuf <<= 6

		return val, true
	}

	val, ok := br.readBits(6)

	return int(val), ok //nolint: gosec
}

// readBits reads numBits (1-64) bits, right-aligned in the result, pulling
// from fillBuffer as many times as needed when the request spans a refill
// boundary.
func (br *bitReader) readBits(numBits int) (uint64, bool) {
	if numBits == 0 {
		return 0, true
	}

	if numBits <= br.bitCount {
		shift := 64 - numBits
		result := br.bitBuf >> shift
		br.bitBuf <<= numBits
		br.bitCount -= numBits

		return result, true
	}

	var result uint64
	firstRead := true

	for numBits > 0 {
		if br.bitCount == 0 {
			if !br.fillBuffer() {
				return 0, false
			}
		}

		bitsToRead := numBits
		if bitsToRead > br.bitCount {
			bitsToRead = br.bitCount
		}

		shift := 64 - bitsToRead
		shiftedBits := br.bitBuf >> shift

		if firstRead {
			result = shiftedBits
			firstRead = false
		} else {
			result = (result << bitsToRead) | shiftedBits
		}

		br.bitBuf <<= bitsToRead
		br.bitCount -= bitsToRead
		numBits -= bitsToRead
	}

	return result, true
}

// fillBuffer reads up to 8 more bytes from data into the bit buffer,
// left-aligned so MSB-first extraction stays consistent whether the buffer
// holds a full 8 bytes or a short tail.
func (br *bitReader) fillBuffer() bool {
	if br.bytePos >= len(br.data) {
		return false
	}

	bytesAvailable := len(br.data) - br.bytePos
	bytesToRead := 8
	if bytesToRead > bytesAvailable {
		bytesToRead = bytesAvailable
	}

	if bytesToRead == 8 {
		br.bitBuf = binary.BigEndian.Uint64(br.data[br.bytePos : br.bytePos+8])
		br.bytePos += 8
		br.bitCount = 64

		return true
	}

	br.bitBuf = 0
	for i := 0; i < bytesToRead; i++ {
		br.bitBuf = (br.bitBuf << 8) | uint64(br.data[br.bytePos])
		br.bytePos++
	}

	br.bitBuf <<= (8 - bytesToRead) * 8
	br.bitCount = bytesToRead * 8

	return true
}
