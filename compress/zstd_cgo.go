//go:build cgo

package compress

import (
	"github.com/valyala/gozstd"
)

// This build of ZstdCompressor binds libzstd through cgo instead of the pure
// Go port in zstd_pure.go. Same Codec contract, same column-payload inputs;
// chosen automatically whenever the build has cgo enabled.

// Compress implements Compressor using libzstd at a fixed moderate level.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.CompressLevel(nil, data, 3), nil
}

// Decompress implements Decompressor.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.Decompress(nil, data)
}
