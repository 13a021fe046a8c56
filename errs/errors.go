// Package errs holds the sentinel errors shared across colrle's packages.
//
// Call sites wrap these with fmt.Errorf("...: %w", ErrX, ...) to attach the
// identifying detail (stream name, stride index, offset) that errors.Is
// callers don't need but operators reading logs do.
package errs

import "errors"

var (
	// ErrAllocationFailed is returned when a stream.Sink fails to grant a
	// writable window.
	ErrAllocationFailed = errors.New("colrle: sink allocation failed")

	// ErrShortRead is returned when a stream.Source runs out of bytes before
	// a decoder's request is satisfied.
	ErrShortRead = errors.New("colrle: short read")

	// ErrSeekOutOfRange is returned when a position.Provider yields a
	// position past the end of the underlying source.
	ErrSeekOutOfRange = errors.New("colrle: seek position out of range")

	// ErrInvalidBitOffset is returned when a recorded bit offset consumed by
	// BoolDecoder.SeekToRowGroup falls outside [0, 8].
	ErrInvalidBitOffset = errors.New("colrle: bit offset out of range")

	// ErrUnsupportedCompression is returned by compress.CreateCodec /
	// GetCodec for an unrecognized format.CompressionType.
	ErrUnsupportedCompression = errors.New("colrle: unsupported compression type")

	// ErrColumnNotFound is returned when a RowGroupReader is asked to read a
	// column name that was not present when the row group was written.
	ErrColumnNotFound = errors.New("colrle: column not found")

	// ErrRowCountMismatch is returned when columns added to a RowGroupWriter
	// disagree on the number of logical rows.
	ErrRowCountMismatch = errors.New("colrle: row count mismatch across columns")

	// ErrEmptyDictionaryEntry is returned when a StringColumn is asked to
	// intern an empty-but-present value where the encoding requires a
	// non-empty string.
	ErrEmptyDictionaryEntry = errors.New("colrle: empty dictionary entry")

	// ErrDuplicateColumn is returned when a RowGroupWriter is asked to add
	// a column name that was already registered.
	ErrDuplicateColumn = errors.New("colrle: duplicate column name")
)
