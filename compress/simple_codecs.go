package compress

import (
	"errors"
	"sync"

	"github.com/klauspost/compress/s2"
	"github.com/pierrec/lz4/v4"
)

// NoOpCompressor is the format.CompressionNone codec. RowGroupWriter selects
// it when a column's payload is already small (a handful of tag bytes, a
// short dictionary) and the framing overhead of a real compressor would
// outweigh anything it could recover.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor returns the pass-through codec.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns data unchanged. Unlike the other codecs, the returned
// slice aliases the input rather than copying it — there is nothing to
// transform, so RowGroupWriter's caller must not mutate data afterward if it
// configured format.CompressionNone.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data unchanged, mirroring Compress.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

// S2Compressor is the format.CompressionS2 codec, for column payloads where
// write throughput matters more than the extra few percent Zstd would
// squeeze out — ingestion-time row groups rather than cold storage.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor returns the S2 codec.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress compresses an RLE/delta/Gorilla-encoded payload with S2.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress reverses Compress.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}

// lz4CompressorPool reuses lz4.Compressor instances across column payloads
// within a row group write; the type carries internal hash-table state
// worth keeping warm across the many small column streams a row group
// flush compresses back to back.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor is the format.CompressionLZ4 codec, a faster but lower-ratio
// alternative to Zstd for column payloads on the decode-latency-sensitive
// read path.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor returns the LZ4 codec.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses data with a pooled lz4.Compressor.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// lz4MaxDecompressedSize bounds the adaptive buffer growth in Decompress. A
// single column payload within one row group never needs a buffer larger
// than this; hitting the cap means the compressed bytes are corrupt rather
// than that the column is legitimately huge.
const lz4MaxDecompressedSize = 128 * 1024 * 1024

// Decompress reverses Compress. LZ4 block compression doesn't record the
// decompressed size, so colrle doesn't know a column payload's expanded
// length up front — it guesses 4x the compressed size and doubles on a
// short-buffer error until it fits or lz4MaxDecompressedSize is exceeded.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	bufSize := len(data) * 4

	for bufSize <= lz4MaxDecompressedSize {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < lz4MaxDecompressedSize {
				bufSize *= 2
				continue
			}

			return nil, err
		}

		return buf[:n], nil
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}
