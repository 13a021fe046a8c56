package rle

import (
	"fmt"

	"github.com/colbyte/colrle/errs"
	"github.com/colbyte/colrle/internal/bitutil"
	"github.com/colbyte/colrle/position"
	"github.com/colbyte/colrle/stream"
)

// BoolDecoder is the inverse of BoolEncoder: component E (decoder half). It
// materializes booleans bit-packed MSB-first into a caller-supplied buffer.
//
// The decoder reads bytes from its underlying ByteDecoder in their natural
// (MSB-first-write) order and reverses each byte's bit order on ingest, so
// the alignment step below can shift the destination buffer LSB-first in
// 64-bit chunks; the dense result is reversed back to MSB-first before it
// is scattered over null positions.
type BoolDecoder struct {
	byteDecoder *ByteDecoder

	remainingBits    int
	reversedLastByte byte
}

// NewBoolDecoder creates a BoolDecoder reading from source.
func NewBoolDecoder(source stream.Source) *BoolDecoder {
	return &BoolDecoder{byteDecoder: NewByteDecoder(source)}
}

// Skip consumes n bits: first from any carried-over remainingBits, then
// whole bytes via the byte decoder, then (if a residual bit count remains)
// one more byte, whose bits are reversed and partially retained.
func (d *BoolDecoder) Skip(n int64) error {
	if n <= int64(d.remainingBits) {
		d.remainingBits -= int(n)

		return nil
	}

	n -= int64(d.remainingBits)
	d.remainingBits = 0

	d.byteDecoder.Skip(n / 8)

	residual := int(n % 8)
	if residual == 0 {
		return nil
	}

	var b [1]byte
	if err := d.byteDecoder.Next(b[:], 1, nil); err != nil {
		return err
	}

	bitutil.ReverseBits(b[:])
	d.reversedLastByte = b[0]
	d.remainingBits = 8 - residual

	return nil
}

// SeekToRowGroup repositions the decoder at a point recorded by
// BoolEncoder.RecordPosition: it seeks the underlying byte decoder, then
// skips 8*byteSkip + bitOffset bits, built from the two integers a boolean
// recording appends.
func (d *BoolDecoder) SeekToRowGroup(p position.Provider) error {
	if err := d.byteDecoder.SeekToRowGroup(p); err != nil {
		return err
	}

	bitOffset := p.Next()
	if bitOffset < 0 || bitOffset > 8 {
		return fmt.Errorf("%w: %d", errs.ErrInvalidBitOffset, bitOffset)
	}

	skipBits := 8*d.byteDecoder.pendingSkip + bitOffset
	d.byteDecoder.pendingSkip = 0
	d.remainingBits = 0

	return d.Skip(skipBits)
}

// Next materializes numValues booleans, bit-packed MSB-first, into dst.
// dst must be at least ceil(numValues/8) bytes; bits past numValues in the
// last output byte are zeroed.
func (d *BoolDecoder) Next(dst []byte, numValues int, nulls bitutil.NullMask) error {
	nonNulls := bitutil.CountNonNulls(nulls, numValues)
	outputBytes := bitutil.DivRoundUp(numValues, 8)

	if nonNulls == 0 {
		for i := 0; i < outputBytes; i++ {
			dst[i] = 0
		}

		return nil
	}

	if d.remainingBits >= nonNulls {
		dst[0] = (d.reversedLastByte >> uint(8-d.remainingBits)) & (0xff >> uint(8-nonNulls))
		d.remainingBits -= nonNulls
	} else {
		var previousByte byte
		if d.remainingBits > 0 {
			previousByte = d.reversedLastByte >> uint(8-d.remainingBits)
		}

		bytesRead := bitutil.DivRoundUp(nonNulls-d.remainingBits, 8)
		if err := d.byteDecoder.Next(dst, bytesRead, nil); err != nil {
			return err
		}

		bitutil.ReverseBits(dst[:bytesRead])
		d.reversedLastByte = dst[bytesRead-1]

		if d.remainingBits > 0 {
			// The carried remainingBits plus the freshly read bytesRead*8 bits
			// can span one more output byte than bytesRead accounts for (e.g.
			// nonNulls=30 with remainingBits=6 reads bytesRead=3 bytes but
			// needs ceil(30/8)=4 output bytes once those 6 bits are folded
			// in). Shift out to outBytes so the trailing carry lands in that
			// last byte; any bytes beyond bytesRead start as whatever was
			// already in dst, which is fine since only the low nonNulls bits
			// of the dense region are read back out by the caller.
			outBytes := bitutil.DivRoundUp(nonNulls, 8)
			shiftInPlace(dst[:outBytes], d.remainingBits, previousByte)
		}

		d.remainingBits = bytesRead*8 + d.remainingBits - nonNulls
	}

	// The dense bits above are LSB-first; turn them back into MSB-first.
	bitutil.ReverseBits(dst[:bitutil.DivRoundUp(nonNulls, 8)])

	if numValues > nonNulls {
		bitutil.ScatterBits(nonNulls, numValues, dst, nulls)
	}

	dst[outputBytes-1] &= byte(0xff) << uint(outputBytes*8-numValues)

	return nil
}

// shiftInPlace shifts data left by remainingBits, OR-ing previousByte in at
// the LSB end and carrying a new previousByte out of each chunk — in
// 64-bit chunks where the slice length allows, byte-at-a-time for the tail.
// Neither path depends on the alignment of data: chunks are chosen by
// length and each 64-bit chunk is assembled byte by byte.
func shiftInPlace(data []byte, remainingBits int, previousByte byte) {
	n64 := len(data) / 8
	for i := 0; i < n64; i++ {
		tmp := le64(data[i*8 : i*8+8])
		putLE64(data[i*8:i*8+8], uint64(previousByte)|tmp<<uint(remainingBits))
		previousByte = byte(tmp >> uint(64-remainingBits))
	}

	for i := n64 * 8; i < len(data); i++ {
		tmp := data[i]
		data[i] = previousByte | tmp<<uint(remainingBits)
		previousByte = tmp >> uint(8-remainingBits)
	}
}

func le64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}

	return v
}

func putLE64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v)
		v >>= 8
	}
}
