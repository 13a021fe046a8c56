package compress

import (
	"fmt"

	"github.com/colbyte/colrle/errs"
	"github.com/colbyte/colrle/format"
)

// Compressor compresses an encoded column-stream payload before it is
// written to a row group's output. Payloads passed in here are already
// RLE/delta/Gorilla-encoded by the encoding package — compression is the
// row group's second stage, applied to whatever bytes the first stage
// produced (timestamps, values, dictionary codes, or tag bytes).
type Compressor interface {
	// Compress returns a newly allocated copy of data's compressed form.
	// data is not modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor, given the same algorithm. RowGroupReader
// selects which Decompressor to use from the format.CompressionType recorded
// for the row group rather than detecting it from the payload.
type Decompressor interface {
	// Decompress returns a newly allocated copy of data's decompressed form.
	// data is not modified.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions. Every built-in compression algorithm
// implements both ends through the same type, since colrle never mixes
// compressors across a read/write pair.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats reports the size and timing of one compression
// operation, for callers instrumenting row-group write cost.
type CompressionStats struct {
	Algorithm           format.CompressionType
	OriginalSize        int64
	CompressedSize      int64
	Ratio               float64
	CompressionTimeNs   int64
	DecompressionTimeNs int64
}

// CompressionRatio returns CompressedSize/OriginalSize. Below 1.0 means the
// payload shrank; at or above 1.0 means compression bought nothing (or
// made it worse, rare for RLE/delta-encoded columnar data).
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the compression ratio expressed as a 0-100 percent
// reduction.
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

// CreateCodec builds a fresh Codec for compressionType. target names the
// caller's payload kind (e.g. "timestamp stream") for the error message if
// compressionType isn't one colrle knows how to handle.
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("%w: %s compression %s", errs.ErrUnsupportedCompression, target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns one of the shared built-in Codec instances for
// compressionType rather than allocating a new one. CreateCodec is for
// callers that need an independent instance; RowGroupWriter uses it.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, compressionType)
}
