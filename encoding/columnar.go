package encoding

import "iter"

// ColumnarEncoder is the shape every value encoder in this package exposes,
// whether it appends float64s (NumericRawEncoder, NumericGorillaEncoder),
// int64 timestamps (TimestampRawEncoder, TimestampDeltaEncoder), or tag
// strings (TagEncoder). A column writer holds one of these per column and
// never inspects which concrete encoding backs it beyond the format.EncodingType
// it records alongside the bytes.
type ColumnarEncoder[T comparable] interface {
	// Bytes returns the encoded byte slice so far, valid until the next
	// Write, WriteSlice, or Reset. The caller must not modify it.
	Bytes() []byte

	// Len returns the number of values encoded so far.
	Len() int

	// Size returns the number of bytes written to the internal buffer.
	Size() int

	// Reset clears encoder state (e.g. previous-value deltas) but keeps the
	// accumulated buffer, letting the encoder be reused across the next
	// column without copying out Bytes() first.
	Reset()

	// Finish returns the encoder's buffer to its pool. The encoder is not
	// usable afterward; a column writer calls this once Bytes() has been
	// copied into the row group's output. Callers typically defer it:
	//
	//	enc := NewTimestampRawEncoder(engine)
	//	defer enc.Finish()
	Finish()

	// Write appends a single value.
	Write(data T)

	// WriteSlice appends values in bulk, cheaper per-value than repeated Write.
	WriteSlice(values []T)
}

// ColumnarDecoder is the read-side counterpart to ColumnarEncoder. A column
// reader holds the decoded byte payload and the original value count (read
// from the row group's column metadata) and doesn't otherwise need to know
// which encoding produced the bytes.
type ColumnarDecoder[T comparable] interface {
	// All decodes every value in data, an iterator yielding up to count
	// values in order. If data is short or malformed it may yield fewer.
	All(data []byte, count int) iter.Seq[T]

	// At decodes just the value at index (0-based) out of count total
	// values encoded in data. The second return value is false if index is
	// out of [0, count).
	At(data []byte, index int, count int) (T, bool)
}
