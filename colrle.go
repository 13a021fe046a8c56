// Package colrle provides row-group orchestration (2, expansion) above the
// byte/boolean RLE codec: RowGroupWriter and RowGroupReader own one column
// writer/reader per named column stream, enforce that every column agrees
// on the row group's row count, and hand finished column streams through a
// pluggable compress.Codec.
//
// The codec and column packages have no knowledge of a "row group"; this
// package is where their streams are named, counted, and compressed into
// the payload a file container would persist.
package colrle

import (
	"fmt"

	"github.com/colbyte/colrle/column"
	"github.com/colbyte/colrle/compress"
	"github.com/colbyte/colrle/errs"
	"github.com/colbyte/colrle/format"
)

// ColumnKind identifies which column package type backs a named column.
type ColumnKind uint8

const (
	ColumnByte ColumnKind = iota + 1
	ColumnString
	ColumnNumeric
	ColumnTimestamp
)

// ColumnPayload is the compressed, named result of flushing one column.
// Streams holds each of the column's wire streams (e.g. "presence",
// "values", or for StringColumn "presence"/"dictionary"/"codes"), already
// passed through the row group's compress.Codec.
type ColumnPayload struct {
	Name         string
	Kind         ColumnKind
	EncodingType format.EncodingType
	Streams      map[string][]byte
	StringStats  column.StringColumnStats
	Rows         int64
}

// rowGroupColumn is the uniform handle RowGroupWriter keeps per registered
// column, bridging the four concrete column.*Writer types' differently
// shaped Flush signatures behind one interface.
type rowGroupColumn interface {
	rows() int64
	flush(codec compress.Codec) (ColumnPayload, error)
}

// RowGroupWriter owns one column writer per named column stream and drives
// them together: every Add call on a column must agree on row count with
// every other column in the group, enforced at Flush.
//
// A RowGroupWriter is not safe for concurrent use; one writer owns all its
// column encoders and sinks single-threaded. Callers parallelize across row
// groups, not within one.
type RowGroupWriter struct {
	config  column.Config
	codec   compress.Codec
	order   []string
	columns map[string]rowGroupColumn
}

// NewRowGroupWriter creates a RowGroupWriter configured by opts.
func NewRowGroupWriter(opts ...column.Option) (*RowGroupWriter, error) {
	cfg, err := column.Apply(opts...)
	if err != nil {
		return nil, err
	}

	codec, err := compress.CreateCodec(cfg.Compression, "row group")
	if err != nil {
		return nil, err
	}

	return &RowGroupWriter{
		config:  cfg,
		codec:   codec,
		columns: make(map[string]rowGroupColumn),
	}, nil
}

func (g *RowGroupWriter) register(name string, col rowGroupColumn) error {
	if _, exists := g.columns[name]; exists {
		return fmt.Errorf("%w: %s", errs.ErrDuplicateColumn, name)
	}

	g.columns[name] = col
	g.order = append(g.order, name)

	return nil
}

// AddByteColumn registers and returns a new column.ByteColumnWriter under
// name.
func (g *RowGroupWriter) AddByteColumn(name string) (*column.ByteColumnWriter, error) {
	w := column.NewByteColumnWriter(name)
	if err := g.register(name, byteColumnHandle{w}); err != nil {
		return nil, err
	}

	return w, nil
}

// AddStringColumn registers and returns a new column.StringColumnWriter
// under name.
func (g *RowGroupWriter) AddStringColumn(name string) (*column.StringColumnWriter, error) {
	w := column.NewStringColumnWriter(name)
	if err := g.register(name, stringColumnHandle{w}); err != nil {
		return nil, err
	}

	return w, nil
}

// AddNumericColumn registers and returns a new column.NumericColumnWriter
// under name, using the row group's configured numeric encoding.
func (g *RowGroupWriter) AddNumericColumn(name string) (*column.NumericColumnWriter, error) {
	w := column.NewNumericColumnWriter(name, g.config.NumericEncoding)
	if err := g.register(name, numericColumnHandle{w}); err != nil {
		return nil, err
	}

	return w, nil
}

// AddTimestampColumn registers and returns a new column.TimestampColumnWriter
// under name, using the row group's configured timestamp encoding.
func (g *RowGroupWriter) AddTimestampColumn(name string) (*column.TimestampColumnWriter, error) {
	w := column.NewTimestampColumnWriter(name, g.config.TimestampEncoding)
	if err := g.register(name, timestampColumnHandle{w}); err != nil {
		return nil, err
	}

	return w, nil
}

// Flush validates that every registered column agrees on row count, then
// flushes and compresses each in registration order. The writer is not
// usable afterward.
func (g *RowGroupWriter) Flush() (map[string]ColumnPayload, error) {
	var expected int64 = -1

	for _, name := range g.order {
		rows := g.columns[name].rows()
		if expected == -1 {
			expected = rows
			continue
		}

		if rows != expected {
			return nil, fmt.Errorf("%w: column %q has %d rows, expected %d", errs.ErrRowCountMismatch, name, rows, expected)
		}
	}

	out := make(map[string]ColumnPayload, len(g.order))

	for _, name := range g.order {
		payload, err := g.columns[name].flush(g.codec)
		if err != nil {
			return nil, err
		}

		out[name] = payload
	}

	return out, nil
}

// RowGroupReader decodes a row group from the named ColumnPayload values a
// RowGroupWriter.Flush produced. Columns are decompressed and wrapped
// lazily, on first access.
type RowGroupReader struct {
	codec    compress.Codec
	payloads map[string]ColumnPayload
}

// NewRowGroupReader wraps payloads for reading with codec (the same
// compress.Codec the RowGroupWriter that produced them used).
func NewRowGroupReader(payloads map[string]ColumnPayload, codec compress.Codec) *RowGroupReader {
	return &RowGroupReader{codec: codec, payloads: payloads}
}

func (r *RowGroupReader) payload(name string) (ColumnPayload, error) {
	p, ok := r.payloads[name]
	if !ok {
		return ColumnPayload{}, fmt.Errorf("%w: %s", errs.ErrColumnNotFound, name)
	}

	return p, nil
}

func (r *RowGroupReader) decompress(stream []byte) ([]byte, error) {
	if len(stream) == 0 {
		return stream, nil
	}

	return r.codec.Decompress(stream)
}

// ByteColumn decodes the named column as a column.ByteColumnReader.
func (r *RowGroupReader) ByteColumn(name string) (*column.ByteColumnReader, error) {
	p, err := r.payload(name)
	if err != nil {
		return nil, err
	}

	presence, err := r.decompress(p.Streams["presence"])
	if err != nil {
		return nil, err
	}

	values, err := r.decompress(p.Streams["values"])
	if err != nil {
		return nil, err
	}

	return column.NewByteColumnReader(name, presence, values), nil
}

// StringColumn decodes the named column as a column.StringColumnReader.
func (r *RowGroupReader) StringColumn(name string) (*column.StringColumnReader, error) {
	p, err := r.payload(name)
	if err != nil {
		return nil, err
	}

	presence, err := r.decompress(p.Streams["presence"])
	if err != nil {
		return nil, err
	}

	dict, err := r.decompress(p.Streams["dictionary"])
	if err != nil {
		return nil, err
	}

	codes, err := r.decompress(p.Streams["codes"])
	if err != nil {
		return nil, err
	}

	return column.NewStringColumnReader(name, presence, dict, codes, p.StringStats), nil
}

// NumericColumn decodes the named column as a column.NumericColumnReader.
func (r *RowGroupReader) NumericColumn(name string) (*column.NumericColumnReader, error) {
	p, err := r.payload(name)
	if err != nil {
		return nil, err
	}

	presence, err := r.decompress(p.Streams["presence"])
	if err != nil {
		return nil, err
	}

	values, err := r.decompress(p.Streams["values"])
	if err != nil {
		return nil, err
	}

	return column.NewNumericColumnReader(name, presence, values, int(p.Rows), p.EncodingType), nil
}

// TimestampColumn decodes the named column as a column.TimestampColumnReader.
func (r *RowGroupReader) TimestampColumn(name string) (*column.TimestampColumnReader, error) {
	p, err := r.payload(name)
	if err != nil {
		return nil, err
	}

	presence, err := r.decompress(p.Streams["presence"])
	if err != nil {
		return nil, err
	}

	values, err := r.decompress(p.Streams["values"])
	if err != nil {
		return nil, err
	}

	return column.NewTimestampColumnReader(name, presence, values, p.EncodingType), nil
}
