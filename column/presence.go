// Package column composes the byte and boolean RLE codecs from package rle
// with the value-level encoders from package encoding to form complete
// column writers/readers for a row-group-oriented store: a presence stream
// (boolean RLE) plus a value stream whose shape depends on the column kind.
package column

import (
	"github.com/colbyte/colrle/internal/bitutil"
	"github.com/colbyte/colrle/position"
	"github.com/colbyte/colrle/rle"
	"github.com/colbyte/colrle/stream"
)

// presenceWriter is the boolean-RLE "is present" stream every column kind
// writes alongside its value stream, using the same convention byte and
// string columns share: bit set means the row has a non-null value.
type presenceWriter struct {
	enc  *rle.BoolEncoder
	sink *stream.BufferSink
}

func newPresenceWriter(streamName string) *presenceWriter {
	sink := stream.NewBufferSink(streamName)

	return &presenceWriter{enc: rle.NewBoolEncoder(sink), sink: sink}
}

// add records presence for n consecutive logical rows, deriving "is
// present" from nulls by inversion so callers never materialize a second
// boolean buffer.
func (w *presenceWriter) add(n int, nulls bitutil.NullMask) error {
	_, err := w.enc.AddBits(nulls, rle.Span(0, n), nil, true)

	return err
}

func (w *presenceWriter) recordPosition(rec position.Recorder, stride int) {
	w.enc.RecordPosition(rec, stride)
}

// flush drains the presence stream and returns its wire bytes.
func (w *presenceWriter) flush() ([]byte, error) {
	if _, err := w.enc.Flush(); err != nil {
		return nil, err
	}

	out := make([]byte, len(w.sink.Bytes()))
	copy(out, w.sink.Bytes())
	w.sink.Release()

	return out, nil
}

// presenceReader is the decode side of presenceWriter.
type presenceReader struct {
	dec *rle.BoolDecoder
}

func newPresenceReader(streamName string, wire []byte) *presenceReader {
	source := stream.NewSliceSource(streamName, wire)

	return &presenceReader{dec: rle.NewBoolDecoder(source)}
}

// next materializes a NullMask (LSB-first "is null") for the next n
// logical rows, crossing the boolean decoder's MSB-first bit order.
func (r *presenceReader) next(n int) (bitutil.NullMask, error) {
	packed := make([]byte, bitutil.DivRoundUp(n, 8))
	if err := r.dec.Next(packed, n, nil); err != nil {
		return nil, err
	}

	return bitutil.NullMaskFromPresenceMSB(packed, n), nil
}

func (r *presenceReader) seekToRowGroup(p position.Provider) error {
	return r.dec.SeekToRowGroup(p)
}
