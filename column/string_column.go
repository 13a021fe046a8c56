package column

import (
	"fmt"

	"github.com/colbyte/colrle/encoding"
	"github.com/colbyte/colrle/endian"
	"github.com/colbyte/colrle/errs"
	"github.com/colbyte/colrle/internal/bitutil"
	"github.com/colbyte/colrle/position"
	"github.com/colbyte/colrle/rle"
	"github.com/colbyte/colrle/stream"
)

// MaxByteDictionary is the largest dictionary size (4.F) that can be
// addressed by a one-byte-per-row code stream through the byte RLE encoder.
// Larger dictionaries fall back to a fixed-width uint32 code stream.
const MaxByteDictionary = 256

// StringColumnWriter is the dictionary-encoded string column (4.F): row
// values are interned into a deduplicated dictionary, and the per-row
// dictionary code is written either through byte RLE (dictionary size ≤
// MaxByteDictionary, one wire byte per row) or as fixed-width uint32 codes
// (larger dictionaries, where RLE gives little benefit over arbitrary code
// churn and byte RLE cannot address the code space anyway).
//
// Unlike ByteColumnWriter and NumericColumnWriter, the code stream's shape
// is only known once every row has been seen, so StringColumnWriter buffers
// dictionary codes in memory across Add calls and only writes the value
// stream at Flush.
type StringColumnWriter struct {
	presence *presenceWriter
	dict     *dictionary
	codes    []int
	rows     int64
	closed   bool
}

// NewStringColumnWriter creates a StringColumnWriter. name identifies the
// column's streams in error messages.
func NewStringColumnWriter(name string) *StringColumnWriter {
	return &StringColumnWriter{
		presence: newPresenceWriter(name + ".presence"),
		dict:     newDictionary(),
	}
}

// Add appends len(values) rows. nulls marks which positions are absent; a
// nil mask means every row is present. Present values must be non-empty
// (errs.ErrEmptyDictionaryEntry): absence is spelled through nulls, not an
// empty string.
func (w *StringColumnWriter) Add(values []string, nulls bitutil.NullMask) error {
	if w.closed {
		panic("column: Add called on a flushed StringColumnWriter")
	}

	if err := w.presence.add(len(values), nulls); err != nil {
		return err
	}

	w.rows += int64(len(values))

	for i, v := range values {
		if nulls.IsNull(i) {
			continue
		}

		code, err := w.dict.intern(v)
		if err != nil {
			return err
		}

		w.codes = append(w.codes, code)
	}

	return nil
}

// Rows returns the number of rows added so far, including null rows.
func (w *StringColumnWriter) Rows() int64 {
	return w.rows
}

// RecordPosition snapshots a resumable decode position for the presence
// stream. The dictionary and code streams are not incrementally seekable:
// they are only materialized whole, at Flush, so a StringColumn row group
// boundary is always the start of a fresh dictionary.
func (w *StringColumnWriter) RecordPosition(rec position.Recorder, stride int) {
	w.presence.recordPosition(rec, stride)
}

// StringColumnStats reports the shape decisions StringColumnWriter.Flush
// made, which the caller must hand back to NewStringColumnReader.
type StringColumnStats struct {
	DictionaryCount int
	RowCount        int
	FixedWidthCodes bool
	HashCollision   bool
}

// Flush drains the presence, dictionary, and code streams. The writer is
// not usable afterward.
func (w *StringColumnWriter) Flush() (presenceBytes, dictBytes, codeBytes []byte, stats StringColumnStats, err error) {
	presenceBytes, err = w.presence.flush()
	if err != nil {
		return nil, nil, nil, StringColumnStats{}, err
	}

	tagEnc := encoding.NewTagEncoder(endian.GetLittleEndianEngine())
	tagEnc.WriteSlice(w.dict.Entries())
	dictBytes = append([]byte(nil), tagEnc.Bytes()...)
	tagEnc.Finish()

	stats = StringColumnStats{
		DictionaryCount: w.dict.Len(),
		RowCount:        len(w.codes),
		FixedWidthCodes: w.dict.Len() > MaxByteDictionary,
		HashCollision:   w.dict.HasCollision(),
	}

	if stats.FixedWidthCodes {
		codeBytes, err = w.flushFixedWidthCodes()
	} else {
		codeBytes, err = w.flushByteRLECodes()
	}

	if err != nil {
		return nil, nil, nil, StringColumnStats{}, err
	}

	w.closed = true

	return presenceBytes, dictBytes, codeBytes, stats, nil
}

func (w *StringColumnWriter) flushByteRLECodes() ([]byte, error) {
	sink := stream.NewBufferSink("string.codes")
	enc := rle.NewByteEncoder(sink)

	data := make([]byte, len(w.codes))
	for i, code := range w.codes {
		data[i] = byte(code)
	}

	if _, err := enc.Add(data, rle.Span(0, len(data)), nil); err != nil {
		return nil, err
	}

	if _, err := enc.Flush(); err != nil {
		return nil, err
	}

	out := append([]byte(nil), sink.Bytes()...)
	sink.Release()

	return out, nil
}

func (w *StringColumnWriter) flushFixedWidthCodes() ([]byte, error) {
	engine := endian.GetLittleEndianEngine()
	out := make([]byte, 0, len(w.codes)*4)

	for _, code := range w.codes {
		out = engine.AppendUint32(out, uint32(code))
	}

	return out, nil
}

// StringColumnReader is the decode side of StringColumnWriter.
type StringColumnReader struct {
	presence *presenceReader
	entries  []string
	codes    *rle.ByteDecoder
	fixed    []byte
	fixedPos int
	stats    StringColumnStats
}

// NewStringColumnReader wraps the wire bytes and stats produced by a
// StringColumnWriter.Flush call.
func NewStringColumnReader(name string, presenceBytes, dictBytes, codeBytes []byte, stats StringColumnStats) *StringColumnReader {
	tagDec := encoding.NewTagDecoder(endian.GetLittleEndianEngine())
	entries := make([]string, 0, stats.DictionaryCount)

	for v := range tagDec.All(dictBytes, stats.DictionaryCount) {
		entries = append(entries, v)
	}

	r := &StringColumnReader{
		presence: newPresenceReader(name+".presence", presenceBytes),
		entries:  entries,
		stats:    stats,
	}

	if stats.FixedWidthCodes {
		r.fixed = codeBytes
	} else {
		r.codes = rle.NewByteDecoder(stream.NewSliceSource(name+".codes", codeBytes))
	}

	return r
}

// Next materializes numValues rows into dst, returning the null mask for
// those rows. Null positions are left as "" in dst.
func (r *StringColumnReader) Next(dst []string, numValues int) (bitutil.NullMask, error) {
	if len(dst) < numValues {
		panic("column: dst shorter than numValues")
	}

	nulls, err := r.presence.next(numValues)
	if err != nil {
		return nil, err
	}

	nonNulls := bitutil.CountNonNulls(nulls, numValues)

	if r.stats.FixedWidthCodes {
		engine := endian.GetLittleEndianEngine()

		for i := 0; i < numValues; i++ {
			if nulls.IsNull(i) {
				dst[i] = ""
				continue
			}

			if r.fixedPos+4 > len(r.fixed) {
				return nil, fmt.Errorf("%w: string column fixed-width codes", errs.ErrShortRead)
			}

			code := engine.Uint32(r.fixed[r.fixedPos : r.fixedPos+4])
			r.fixedPos += 4

			if int(code) >= len(r.entries) {
				return nil, fmt.Errorf("%w: dictionary code %d out of range", errs.ErrSeekOutOfRange, code)
			}

			dst[i] = r.entries[code]
		}

		return nulls, nil
	}

	codes := make([]byte, nonNulls)
	if err := r.codes.Next(codes, nonNulls, nil); err != nil {
		return nil, err
	}

	dense := 0
	for i := 0; i < numValues; i++ {
		if nulls.IsNull(i) {
			dst[i] = ""
			continue
		}

		code := int(codes[dense])
		dense++

		if code >= len(r.entries) {
			return nil, fmt.Errorf("%w: dictionary code %d out of range", errs.ErrSeekOutOfRange, code)
		}

		dst[i] = r.entries[code]
	}

	return nulls, nil
}

// SeekToRowGroup repositions the presence stream using the position
// recorded by StringColumnWriter.RecordPosition. The dictionary and code
// streams (byte-RLE or fixed-width) are not repositioned: the writer
// records no position for them.
func (r *StringColumnReader) SeekToRowGroup(presenceGroup position.Provider) error {
	return r.presence.seekToRowGroup(presenceGroup)
}
