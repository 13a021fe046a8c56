package column

import (
	"github.com/colbyte/colrle/internal/bitutil"
	"github.com/colbyte/colrle/position"
	"github.com/colbyte/colrle/rle"
	"github.com/colbyte/colrle/stream"
)

// ByteColumn is the simplest column kind (4.F minimal case): its value
// stream is a direct use of component C, the byte RLE encoder, alongside
// the shared boolean-RLE presence stream.
type ByteColumnWriter struct {
	presence *presenceWriter
	values   *rle.ByteEncoder
	valSink  *stream.BufferSink
	rows     int64
	closed   bool
}

// NewByteColumnWriter creates a ByteColumnWriter. name identifies the
// column's streams in error messages.
func NewByteColumnWriter(name string) *ByteColumnWriter {
	valSink := stream.NewBufferSink(name + ".values")

	return &ByteColumnWriter{
		presence: newPresenceWriter(name + ".presence"),
		values:   rle.NewByteEncoder(valSink),
		valSink:  valSink,
	}
}

// Add appends len(data) rows. nulls marks which positions are absent; a nil
// mask means every row is present.
func (w *ByteColumnWriter) Add(data []byte, nulls bitutil.NullMask) (int, error) {
	if w.closed {
		panic("column: Add called on a flushed ByteColumnWriter")
	}

	if err := w.presence.add(len(data), nulls); err != nil {
		return 0, err
	}

	n, err := w.values.Add(data, rle.Span(0, len(data)), nulls)
	w.rows += int64(len(data))

	return n, err
}

// Rows returns the number of rows added so far, including null rows.
func (w *ByteColumnWriter) Rows() int64 {
	return w.rows
}

// RecordPosition snapshots a resumable decode position for both streams at
// the current row-group boundary.
func (w *ByteColumnWriter) RecordPosition(rec position.Recorder, stride int) {
	w.presence.recordPosition(rec, stride)
	w.values.RecordPosition(rec, stride)
}

// Flush drains both streams and returns their wire bytes. The writer is not
// usable afterward.
func (w *ByteColumnWriter) Flush() (presenceBytes, valueBytes []byte, err error) {
	presenceBytes, err = w.presence.flush()
	if err != nil {
		return nil, nil, err
	}

	if _, err := w.values.Flush(); err != nil {
		return nil, nil, err
	}

	valueBytes = make([]byte, len(w.valSink.Bytes()))
	copy(valueBytes, w.valSink.Bytes())
	w.valSink.Release()
	w.closed = true

	return presenceBytes, valueBytes, nil
}

// ByteColumnReader is the decode side of ByteColumnWriter.
type ByteColumnReader struct {
	presence *presenceReader
	values   *rle.ByteDecoder
}

// NewByteColumnReader wraps the presence and value wire bytes produced by a
// ByteColumnWriter.Flush call.
func NewByteColumnReader(name string, presenceBytes, valueBytes []byte) *ByteColumnReader {
	return &ByteColumnReader{
		presence: newPresenceReader(name+".presence", presenceBytes),
		values:   rle.NewByteDecoder(stream.NewSliceSource(name+".values", valueBytes)),
	}
}

// Next materializes numValues rows into dst, returning the null mask for
// those rows. Positions marked null in the returned mask are left untouched
// in dst.
func (r *ByteColumnReader) Next(dst []byte, numValues int) (bitutil.NullMask, error) {
	if len(dst) < numValues {
		panic("column: dst shorter than numValues")
	}

	nulls, err := r.presence.next(numValues)
	if err != nil {
		return nil, err
	}

	if err := r.values.Next(dst, numValues, nulls); err != nil {
		return nil, err
	}

	return nulls, nil
}

// SeekToRowGroup repositions both streams using the two positions recorded
// by ByteColumnWriter.RecordPosition, in the order they were recorded:
// presence first, then values.
func (r *ByteColumnReader) SeekToRowGroup(presenceGroup, valuesGroup position.Provider) error {
	if err := r.presence.seekToRowGroup(presenceGroup); err != nil {
		return err
	}

	return r.values.SeekToRowGroup(valuesGroup)
}
