package column

import (
	"fmt"

	"github.com/colbyte/colrle/format"
	"github.com/colbyte/colrle/internal/options"
)

// Config holds the per-row-group defaults a caller can override with
// Option values. One compression choice is shared by every column stream
// in a row group, not one per column.
type Config struct {
	Compression       format.CompressionType
	NumericEncoding   format.EncodingType
	TimestampEncoding format.EncodingType
}

// DefaultConfig returns the configuration a RowGroupWriter uses when no
// Option overrides it: no compression, raw numeric values, raw timestamps.
func DefaultConfig() Config {
	return Config{
		Compression:       format.CompressionNone,
		NumericEncoding:   format.TypeRaw,
		TimestampEncoding: format.TypeRaw,
	}
}

// Option configures a Config before a RowGroupWriter is constructed.
type Option = options.Option[*Config]

// WithCompression selects the block compression codec applied to every
// finished column stream.
func WithCompression(compressionType format.CompressionType) Option {
	return options.New(func(c *Config) error {
		switch compressionType {
		case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
			c.Compression = compressionType
			return nil
		default:
			return fmt.Errorf("column: invalid compression type %s", compressionType)
		}
	})
}

// WithNumericEncoding selects the value encoding new NumericColumnWriters
// use by default (format.TypeRaw or format.TypeGorilla).
func WithNumericEncoding(kind format.EncodingType) Option {
	return options.New(func(c *Config) error {
		switch kind {
		case format.TypeRaw, format.TypeGorilla:
			c.NumericEncoding = kind
			return nil
		default:
			return fmt.Errorf("column: invalid numeric value encoding %s", kind)
		}
	})
}

// WithTimestampEncoding selects the encoding new TimestampColumnWriters use
// by default (format.TypeRaw or format.TypeDelta).
func WithTimestampEncoding(kind format.EncodingType) Option {
	return options.New(func(c *Config) error {
		switch kind {
		case format.TypeRaw, format.TypeDelta:
			c.TimestampEncoding = kind
			return nil
		default:
			return fmt.Errorf("column: invalid timestamp encoding %s", kind)
		}
	})
}

// Apply builds a Config from DefaultConfig plus opts, in order.
func Apply(opts ...Option) (Config, error) {
	c := DefaultConfig()
	if err := options.Apply(&c, opts...); err != nil {
		return Config{}, err
	}

	return c, nil
}
