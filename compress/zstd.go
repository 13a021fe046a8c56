package compress

// ZstdCompressor is the format.CompressionZstd codec: the best-ratio choice
// among colrle's built-in codecs, at the cost of slower compression than S2
// or LZ4. RowGroupWriter favors it for columns destined for longer-term
// storage, where write cost is paid once but decode happens many times (or
// not at all before the row group is deleted).
//
// Compress/Decompress are implemented in zstd_pure.go (pure Go, selected by
// default) or zstd_cgo.go (cgo binding, selected with the cgo build tag) —
// both satisfy the same Codec contract against the same struct.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor returns the Zstd codec.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
