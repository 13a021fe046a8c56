package rle

import (
	"github.com/colbyte/colrle/internal/bitutil"
	"github.com/colbyte/colrle/position"
	"github.com/colbyte/colrle/stream"
)

// ByteDecoder is the inverse of ByteEncoder: component D. It materializes
// bytes into a caller-supplied destination buffer, optionally leaving null
// positions untouched and not consuming a source byte for them.
//
// A ByteDecoder owns its Source exclusively; it is not safe for concurrent
// use.
type ByteDecoder struct {
	source stream.Source

	remainingValues int
	repeating       bool
	value           byte

	buf    []byte
	bufPos int

	pendingSkip int64
}

// NewByteDecoder creates a ByteDecoder reading from source.
func NewByteDecoder(source stream.Source) *ByteDecoder {
	return &ByteDecoder{source: source}
}

// Next materializes numValues bytes into dst starting at index 0.
// Positions whose bit is set in nulls are left untouched in dst and do not
// consume a source byte.
func (d *ByteDecoder) Next(dst []byte, numValues int, nulls bitutil.NullMask) error {
	if err := d.skipPending(); err != nil {
		return err
	}

	pos := 0
	for nulls != nil && pos < numValues && nulls.IsNull(pos) {
		pos++
	}

	for pos < numValues {
		if d.remainingValues == 0 {
			if err := d.readHeader(); err != nil {
				return err
			}
		}

		count := numValues - pos
		if count > d.remainingValues {
			count = d.remainingValues
		}

		consumed, err := d.consume(dst, pos, count, nulls)
		if err != nil {
			return err
		}

		d.remainingValues -= consumed
		pos += count

		for nulls != nil && pos < numValues && nulls.IsNull(pos) {
			pos++
		}
	}

	return nil
}

// consume materializes count values of the current frame into
// dst[position:position+count], honoring nulls, and returns the number of
// bytes actually consumed from the source (differs from count only when
// nulls skip positions).
func (d *ByteDecoder) consume(dst []byte, position, count int, nulls bitutil.NullMask) (int, error) {
	if d.repeating {
		if nulls == nil {
			for i := 0; i < count; i++ {
				dst[position+i] = d.value
			}

			return count, nil
		}

		consumed := 0
		for i := 0; i < count; i++ {
			if !nulls.IsNull(position + i) {
				dst[position+i] = d.value
				consumed++
			}
		}

		return consumed, nil
	}

	if nulls == nil {
		i := 0
		for i < count {
			if err := d.ensureBuffer(); err != nil {
				return 0, err
			}

			copyBytes := count - i
			if avail := len(d.buf) - d.bufPos; copyBytes > avail {
				copyBytes = avail
			}

			copy(dst[position+i:position+i+copyBytes], d.buf[d.bufPos:d.bufPos+copyBytes])
			d.bufPos += copyBytes
			i += copyBytes
		}

		return count, nil
	}

	consumed := 0
	for i := 0; i < count; i++ {
		if nulls.IsNull(position + i) {
			continue
		}

		b, err := d.readByte()
		if err != nil {
			return 0, err
		}

		dst[position+i] = b
		consumed++
	}

	return consumed, nil
}

// Skip logically skips n values. Applied lazily before the next Next or
// Seek call.
func (d *ByteDecoder) Skip(n int64) {
	d.pendingSkip += n
}

// SeekToRowGroup repositions the decoder at a point recorded by
// ByteEncoder.RecordPosition: it seeks the source, invalidates the current
// window and frame, and queues the recorded staged-value count as a
// pending skip.
func (d *ByteDecoder) SeekToRowGroup(p position.Provider) error {
	if err := d.source.Seek(p); err != nil {
		return err
	}

	d.buf, d.bufPos = nil, 0
	d.remainingValues = 0
	d.pendingSkip = p.Next()

	return nil
}

// skipPending walks frames, consuming pendingSkip logical values: for run
// frames this just advances remainingValues' bookkeeping, for literal
// frames it must also advance the source by the same number of bytes.
func (d *ByteDecoder) skipPending() error {
	pending := d.pendingSkip
	d.pendingSkip = 0

	for pending > 0 {
		if d.remainingValues == 0 {
			if err := d.readHeader(); err != nil {
				return err
			}
		}

		n := pending
		if n > int64(d.remainingValues) {
			n = int64(d.remainingValues)
		}

		if !d.repeating {
			if err := d.skipBytes(n); err != nil {
				return err
			}
		}

		d.remainingValues -= int(n)
		pending -= n
	}

	return nil
}

// readHeader reads and decodes one wire header byte, priming
// remainingValues/repeating/value for the frame it introduces.
func (d *ByteDecoder) readHeader() error {
	b, err := d.readByte()
	if err != nil {
		return err
	}

	h := int(int8(b))
	if h >= 0 {
		d.repeating = true
		d.remainingValues = h + MinimumRepeat

		v, err := d.readByte()
		if err != nil {
			return err
		}

		d.value = v
	} else {
		d.repeating = false
		d.remainingValues = -h
	}

	return nil
}

// readByte returns the next raw wire byte, requesting a new source window
// when the current one is exhausted.
func (d *ByteDecoder) readByte() (byte, error) {
	if err := d.ensureBuffer(); err != nil {
		return 0, err
	}

	b := d.buf[d.bufPos]
	d.bufPos++

	return b, nil
}

// ensureBuffer requests a new source window if the current one is
// exhausted.
func (d *ByteDecoder) ensureBuffer() error {
	if d.bufPos < len(d.buf) {
		return nil
	}

	buf, err := d.source.Next()
	if err != nil {
		return err
	}

	d.buf = buf
	d.bufPos = 0

	return nil
}

// skipBytes advances the source by n raw bytes, crossing windows as
// needed.
func (d *ByteDecoder) skipBytes(n int64) error {
	if d.bufPos < len(d.buf) {
		avail := int64(len(d.buf) - d.bufPos)
		if avail > n {
			avail = n
		}

		d.bufPos += int(avail)
		n -= avail
	}

	if n > 0 {
		d.buf, d.bufPos = nil, 0

		return d.source.Skip(n)
	}

	return nil
}
