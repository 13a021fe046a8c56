//go:build !cgo

package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdDecoderPool keeps warmed-up zstd decoders around across the many
// column payloads a single RowGroupReader decodes in sequence — one per
// timestamp stream, one per value stream, one per string column's
// dictionary-coded bytes.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("colrle: failed to create zstd decoder for pool: %v", err))
		}
		return decoder
	},
}

// zstdEncoderPool is the write-side counterpart, reused across the columns
// of a single row group flush.
var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			panic(fmt.Sprintf("colrle: failed to create zstd encoder for pool: %v", err))
		}
		return encoder
	},
}

// Compress implements Compressor for a column payload already produced by
// the encoding package (RLE bytes, delta varints, Gorilla bit blocks, or
// dictionary codes).
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	encoder := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)

	return encoder.EncodeAll(data, nil), nil
}

// Decompress implements Decompressor. RowGroupReader treats any failure here
// as a corrupt or truncated row group rather than retrying.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	decoder := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	decompressed, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("colrle: zstd decompression failed: %w", err)
	}

	return decompressed, nil
}
