package column

import (
	"fmt"

	"github.com/colbyte/colrle/encoding"
	"github.com/colbyte/colrle/endian"
	"github.com/colbyte/colrle/errs"
	"github.com/colbyte/colrle/format"
	"github.com/colbyte/colrle/internal/bitutil"
	"github.com/colbyte/colrle/internal/pool"
	"github.com/colbyte/colrle/position"
)

// NumericColumnWriter is the float64 value column half of 4.G: a boolean
// RLE presence stream alongside a raw or Gorilla-XOR encoded value stream.
// The value encoding is chosen once at construction, not inferred from the
// data, since switching encoders mid-stream would break Gorilla's running
// XOR state.
type NumericColumnWriter struct {
	presence *presenceWriter
	values   encoding.ColumnarEncoder[float64]
	kind     format.EncodingType
	rows     int64
	closed   bool
}

// NewNumericColumnWriter creates a NumericColumnWriter using kind
// (format.TypeRaw or format.TypeGorilla) for the value stream. Any other
// kind panics: it is a caller configuration mistake, not a data condition.
func NewNumericColumnWriter(name string, kind format.EncodingType) *NumericColumnWriter {
	w := &NumericColumnWriter{
		presence: newPresenceWriter(name + ".presence"),
		kind:     kind,
	}

	switch kind {
	case format.TypeRaw:
		w.values = encoding.NewNumericRawEncoder(endian.GetLittleEndianEngine())
	case format.TypeGorilla:
		w.values = encoding.NewNumericGorillaEncoder()
	default:
		panic(fmt.Sprintf("column: unsupported numeric value encoding %s", kind))
	}

	return w
}

// Add appends len(values) rows. nulls marks which positions are absent; a
// nil mask means every row is present.
func (w *NumericColumnWriter) Add(values []float64, nulls bitutil.NullMask) error {
	if w.closed {
		panic("column: Add called on a flushed NumericColumnWriter")
	}

	if err := w.presence.add(len(values), nulls); err != nil {
		return err
	}

	w.rows += int64(len(values))

	if nulls == nil {
		w.values.WriteSlice(values)
		return nil
	}

	for i, v := range values {
		if !nulls.IsNull(i) {
			w.values.Write(v)
		}
	}

	return nil
}

// Rows returns the number of rows added so far, including null rows.
func (w *NumericColumnWriter) Rows() int64 {
	return w.rows
}

// Kind returns the value encoding this writer was constructed with.
func (w *NumericColumnWriter) Kind() format.EncodingType {
	return w.kind
}

// RecordPosition snapshots a resumable decode position for the presence
// stream. The value stream is flushed whole, at Flush, and is not
// incrementally seekable.
func (w *NumericColumnWriter) RecordPosition(rec position.Recorder, stride int) {
	w.presence.recordPosition(rec, stride)
}

// Flush drains the presence and value streams. The writer is not usable
// afterward.
func (w *NumericColumnWriter) Flush() (presenceBytes, valueBytes []byte, rowCount int, err error) {
	presenceBytes, err = w.presence.flush()
	if err != nil {
		return nil, nil, 0, err
	}

	rowCount = w.values.Len()
	valueBytes = append([]byte(nil), w.values.Bytes()...)
	w.values.Finish()
	w.closed = true

	return presenceBytes, valueBytes, rowCount, nil
}

// NumericColumnReader is the decode side of NumericColumnWriter.
type NumericColumnReader struct {
	presence *presenceReader
	decode   func(data []byte, scratch []float64) error
	data     []byte
	rowCount int
	consumed int
}

// NewNumericColumnReader wraps the wire bytes produced by a
// NumericColumnWriter.Flush call, using the same kind the writer used.
func NewNumericColumnReader(name string, presenceBytes, valueBytes []byte, rowCount int, kind format.EncodingType) *NumericColumnReader {
	r := &NumericColumnReader{
		presence: newPresenceReader(name+".presence", presenceBytes),
		data:     valueBytes,
		rowCount: rowCount,
	}

	switch kind {
	case format.TypeRaw:
		dec := encoding.NewNumericRawDecoder(endian.GetLittleEndianEngine())
		r.decode = func(data []byte, scratch []float64) error {
			return fillFloat64(dec.All(data, len(scratch)), scratch)
		}
	case format.TypeGorilla:
		dec := encoding.NewNumericGorillaDecoder()
		r.decode = func(data []byte, scratch []float64) error {
			return fillFloat64(dec.All(data, len(scratch)), scratch)
		}
	default:
		panic(fmt.Sprintf("column: unsupported numeric value encoding %s", kind))
	}

	return r
}

// Next materializes the next numValues rows into dst, returning the null
// mask for those rows. Since the underlying encoders are sequential-access
// only, each call decodes the value stream from its start through the last
// value it returns; callers reading a whole column in one pass should
// prefer a single large numValues.
func (r *NumericColumnReader) Next(dst []float64, numValues int) (bitutil.NullMask, error) {
	if len(dst) < numValues {
		panic("column: dst shorter than numValues")
	}

	nulls, err := r.presence.next(numValues)
	if err != nil {
		return nil, err
	}

	nonNulls := bitutil.CountNonNulls(nulls, numValues)

	scratch, cleanup := pool.GetFloat64Slice(r.consumed + nonNulls)
	defer cleanup()

	if err := r.decode(r.data, scratch); err != nil {
		return nil, err
	}

	dense := r.consumed
	r.consumed += nonNulls
	for i := 0; i < numValues; i++ {
		if nulls.IsNull(i) {
			dst[i] = 0
			continue
		}

		dst[i] = scratch[dense]
		dense++
	}

	return nulls, nil
}

func fillFloat64(seq func(func(float64) bool), dst []float64) error {
	i := 0
	for v := range seq {
		if i >= len(dst) {
			break
		}

		dst[i] = v
		i++
	}

	if i < len(dst) {
		return fmt.Errorf("%w: numeric column value stream", errs.ErrShortRead)
	}

	return nil
}

// SeekToRowGroup repositions the presence stream using the position
// recorded by NumericColumnWriter.RecordPosition.
func (r *NumericColumnReader) SeekToRowGroup(presenceGroup position.Provider) error {
	return r.presence.seekToRowGroup(presenceGroup)
}

// TimestampColumnWriter is the int64 timestamp column half of 4.G: a
// boolean RLE presence stream alongside a raw or delta-of-delta encoded
// timestamp stream.
type TimestampColumnWriter struct {
	presence *presenceWriter
	values   encoding.ColumnarEncoder[int64]
	kind     format.EncodingType
	rows     int64
	closed   bool
}

// NewTimestampColumnWriter creates a TimestampColumnWriter using kind
// (format.TypeRaw or format.TypeDelta) for the value stream.
func NewTimestampColumnWriter(name string, kind format.EncodingType) *TimestampColumnWriter {
	w := &TimestampColumnWriter{
		presence: newPresenceWriter(name + ".presence"),
		kind:     kind,
	}

	switch kind {
	case format.TypeRaw:
		w.values = encoding.NewTimestampRawEncoder(endian.GetLittleEndianEngine())
	case format.TypeDelta:
		w.values = encoding.NewTimestampDeltaEncoder()
	default:
		panic(fmt.Sprintf("column: unsupported timestamp encoding %s", kind))
	}

	return w
}

// Add appends len(values) rows of microsecond timestamps. nulls marks which
// positions are absent; a nil mask means every row is present.
func (w *TimestampColumnWriter) Add(values []int64, nulls bitutil.NullMask) error {
	if w.closed {
		panic("column: Add called on a flushed TimestampColumnWriter")
	}

	if err := w.presence.add(len(values), nulls); err != nil {
		return err
	}

	w.rows += int64(len(values))

	if nulls == nil {
		w.values.WriteSlice(values)
		return nil
	}

	for i, v := range values {
		if !nulls.IsNull(i) {
			w.values.Write(v)
		}
	}

	return nil
}

// Rows returns the number of rows added so far, including null rows.
func (w *TimestampColumnWriter) Rows() int64 {
	return w.rows
}

// Kind returns the value encoding this writer was constructed with.
func (w *TimestampColumnWriter) Kind() format.EncodingType {
	return w.kind
}

// RecordPosition snapshots a resumable decode position for the presence
// stream.
func (w *TimestampColumnWriter) RecordPosition(rec position.Recorder, stride int) {
	w.presence.recordPosition(rec, stride)
}

// Flush drains the presence and value streams. The writer is not usable
// afterward.
func (w *TimestampColumnWriter) Flush() (presenceBytes, valueBytes []byte, rowCount int, err error) {
	presenceBytes, err = w.presence.flush()
	if err != nil {
		return nil, nil, 0, err
	}

	rowCount = w.values.Len()
	valueBytes = append([]byte(nil), w.values.Bytes()...)
	w.values.Finish()
	w.closed = true

	return presenceBytes, valueBytes, rowCount, nil
}

// TimestampColumnReader is the decode side of TimestampColumnWriter.
type TimestampColumnReader struct {
	presence *presenceReader
	decode   func(data []byte, scratch []int64) error
	data     []byte
	consumed int
}

// NewTimestampColumnReader wraps the wire bytes produced by a
// TimestampColumnWriter.Flush call, using the same kind the writer used.
func NewTimestampColumnReader(name string, presenceBytes, valueBytes []byte, kind format.EncodingType) *TimestampColumnReader {
	r := &TimestampColumnReader{
		presence: newPresenceReader(name+".presence", presenceBytes),
		data:     valueBytes,
	}

	switch kind {
	case format.TypeRaw:
		dec := encoding.NewTimestampRawDecoder(endian.GetLittleEndianEngine())
		r.decode = func(data []byte, scratch []int64) error {
			return fillInt64(dec.All(data, len(scratch)), scratch)
		}
	case format.TypeDelta:
		dec := encoding.NewTimestampDeltaDecoder()
		r.decode = func(data []byte, scratch []int64) error {
			return fillInt64(dec.All(data, len(scratch)), scratch)
		}
	default:
		panic(fmt.Sprintf("column: unsupported timestamp encoding %s", kind))
	}

	return r
}

// Next materializes the next numValues rows into dst, returning the null
// mask for those rows. Like NumericColumnReader.Next, each call decodes the
// value stream from its start through the last value it returns.
func (r *TimestampColumnReader) Next(dst []int64, numValues int) (bitutil.NullMask, error) {
	if len(dst) < numValues {
		panic("column: dst shorter than numValues")
	}

	nulls, err := r.presence.next(numValues)
	if err != nil {
		return nil, err
	}

	nonNulls := bitutil.CountNonNulls(nulls, numValues)

	scratch, cleanup := pool.GetInt64Slice(r.consumed + nonNulls)
	defer cleanup()

	if err := r.decode(r.data, scratch); err != nil {
		return nil, err
	}

	dense := r.consumed
	r.consumed += nonNulls
	for i := 0; i < numValues; i++ {
		if nulls.IsNull(i) {
			dst[i] = 0
			continue
		}

		dst[i] = scratch[dense]
		dense++
	}

	return nulls, nil
}

func fillInt64(seq func(func(int64) bool), dst []int64) error {
	i := 0
	for v := range seq {
		if i >= len(dst) {
			break
		}

		dst[i] = v
		i++
	}

	if i < len(dst) {
		return fmt.Errorf("%w: timestamp column value stream", errs.ErrShortRead)
	}

	return nil
}

// SeekToRowGroup repositions the presence stream using the position
// recorded by TimestampColumnWriter.RecordPosition.
func (r *TimestampColumnReader) SeekToRowGroup(presenceGroup position.Provider) error {
	return r.presence.seekToRowGroup(presenceGroup)
}
