package format

// EncodingType selects how a NumericColumnWriter or TimestampColumnWriter
// turns values into bytes, before any CompressionType is applied on top.
// CompressionType selects the byte-level compressor a RowGroupWriter runs
// over an already-encoded column payload.
type (
	EncodingType    uint8
	CompressionType uint8
)

const (
	TypeRaw     EncodingType = 0x1 // TypeRaw stores values as fixed-width bytes, no transform.
	TypeDelta   EncodingType = 0x2 // TypeDelta stores delta-of-delta varints; TimestampColumnWriter's default.
	TypeGorilla EncodingType = 0x3 // TypeGorilla stores XOR-compressed bit blocks; NumericColumnWriter's default.

	CompressionNone CompressionType = 0x1 // CompressionNone skips compression (compress.NoOpCompressor).
	CompressionZstd CompressionType = 0x2 // CompressionZstd selects compress.ZstdCompressor.
	CompressionS2   CompressionType = 0x3 // CompressionS2 selects compress.S2Compressor.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 selects compress.LZ4Compressor.
)

func (e EncodingType) String() string {
	switch e {
	case TypeRaw:
		return "Raw"
	case TypeDelta:
		return "Delta"
	case TypeGorilla:
		return "Gorilla"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
