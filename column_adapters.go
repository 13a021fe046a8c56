package colrle

import (
	"github.com/colbyte/colrle/column"
	"github.com/colbyte/colrle/compress"
)

// byteColumnHandle/stringColumnHandle/numericColumnHandle/timestampColumnHandle
// adapt the four concrete column writer types, whose Flush signatures carry
// different extra metadata (dictionary stats, row counts, encoding kind),
// to the single rowGroupColumn interface RowGroupWriter.Flush drives.

type byteColumnHandle struct{ w *column.ByteColumnWriter }

func (h byteColumnHandle) rows() int64 { return h.w.Rows() }

func (h byteColumnHandle) flush(codec compress.Codec) (ColumnPayload, error) {
	presence, values, err := h.w.Flush()
	if err != nil {
		return ColumnPayload{}, err
	}

	streams, err := compressStreams(codec, map[string][]byte{"presence": presence, "values": values})
	if err != nil {
		return ColumnPayload{}, err
	}

	return ColumnPayload{Kind: ColumnByte, Streams: streams, Rows: h.w.Rows()}, nil
}

type stringColumnHandle struct{ w *column.StringColumnWriter }

func (h stringColumnHandle) rows() int64 { return h.w.Rows() }

func (h stringColumnHandle) flush(codec compress.Codec) (ColumnPayload, error) {
	presence, dict, codes, stats, err := h.w.Flush()
	if err != nil {
		return ColumnPayload{}, err
	}

	streams, err := compressStreams(codec, map[string][]byte{
		"presence":   presence,
		"dictionary": dict,
		"codes":      codes,
	})
	if err != nil {
		return ColumnPayload{}, err
	}

	return ColumnPayload{Kind: ColumnString, Streams: streams, StringStats: stats, Rows: h.w.Rows()}, nil
}

type numericColumnHandle struct{ w *column.NumericColumnWriter }

func (h numericColumnHandle) rows() int64 { return h.w.Rows() }

func (h numericColumnHandle) flush(codec compress.Codec) (ColumnPayload, error) {
	presence, values, rowCount, err := h.w.Flush()
	if err != nil {
		return ColumnPayload{}, err
	}

	streams, err := compressStreams(codec, map[string][]byte{"presence": presence, "values": values})
	if err != nil {
		return ColumnPayload{}, err
	}

	return ColumnPayload{
		Kind:         ColumnNumeric,
		EncodingType: h.w.Kind(),
		Streams:      streams,
		Rows:         int64(rowCount),
	}, nil
}

type timestampColumnHandle struct{ w *column.TimestampColumnWriter }

func (h timestampColumnHandle) rows() int64 { return h.w.Rows() }

func (h timestampColumnHandle) flush(codec compress.Codec) (ColumnPayload, error) {
	presence, values, rowCount, err := h.w.Flush()
	if err != nil {
		return ColumnPayload{}, err
	}

	streams, err := compressStreams(codec, map[string][]byte{"presence": presence, "values": values})
	if err != nil {
		return ColumnPayload{}, err
	}

	return ColumnPayload{
		Kind:         ColumnTimestamp,
		EncodingType: h.w.Kind(),
		Streams:      streams,
		Rows:         int64(rowCount),
	}, nil
}

func compressStreams(codec compress.Codec, raw map[string][]byte) (map[string][]byte, error) {
	out := make(map[string][]byte, len(raw))

	for name, data := range raw {
		if len(data) == 0 {
			out[name] = data
			continue
		}

		compressed, err := codec.Compress(data)
		if err != nil {
			return nil, err
		}

		out[name] = compressed
	}

	return out, nil
}
