// Package compress provides the compression codecs RowGroupWriter/Reader
// apply to a column's already-encoded payload — the second of colrle's two
// compression stages, after the encoding package's delta/Gorilla/varint
// transforms have already exploited whatever pattern the column's values
// have.
//
// # Interfaces
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// # Built-in codecs
//
//   - NoOpCompressor (format.CompressionNone): passes data through
//     unchanged, for payloads too small for a real compressor to help.
//   - ZstdCompressor (format.CompressionZstd): best compression ratio of
//     the four, at the highest CPU cost; the default choice for columns
//     that are written once and read rarely.
//   - S2Compressor (format.CompressionS2): a faster, lower-ratio
//     alternative to Zstd, suited to write-throughput-sensitive ingestion.
//   - LZ4Compressor (format.CompressionLZ4): fastest decompression of the
//     three real compressors, suited to read-latency-sensitive columns.
//
// # Choosing a codec
//
// RowGroupWriter/column.Option select a codec per row group via
// format.CompressionType, not per column — every column in one row group
// is compressed with the same codec:
//
//	g, _ := colrle.NewRowGroupWriter(column.WithCompression(format.CompressionZstd))
//
// RowGroupReader is given the codec to use explicitly (from the row
// group's recorded CompressionType) rather than detecting it from the
// payload's bytes.
//
// # Extending
//
// A caller can implement Compressor/Decompressor directly for a codec this
// package doesn't provide; CreateCodec only recognizes the four built-in
// format.CompressionType values, so an external codec is wired in by the
// caller's own code rather than through this package's registry.
package compress
