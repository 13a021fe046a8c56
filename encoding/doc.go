// Package encoding holds the value encoders and decoders behind every
// column kind in the column package. Each pair implements the generic
// ColumnarEncoder[T]/ColumnarDecoder[T] interfaces except VarStringEncoder,
// a lower-level primitive the column package doesn't use directly.
//
// # Implementations
//
// Timestamps (int64 Unix microseconds):
//   - TimestampRawEncoder/Decoder, TimestampRawUnsafeDecoder — fixed 8
//     bytes per value (format.TypeRaw)
//   - TimestampDeltaEncoder/Decoder — delta-of-delta with zigzag+varint
//     (format.TypeDelta), 1 byte per value for strictly regular intervals,
//     up to the raw 8+ bytes for highly irregular ones
//
// Numeric values (float64):
//   - NumericRawEncoder/Decoder, NumericRawUnsafeDecoder — fixed 8 bytes
//     per value (format.TypeRaw)
//   - NumericGorillaEncoder/Decoder — Facebook's Gorilla XOR compression
//     (format.TypeGorilla): identical consecutive values cost 1 bit,
//     similar ones cost a handful of bits, unrelated ones cost close to
//     the full 64
//
// Strings:
//   - TagEncoder/Decoder — length-prefixed (uvarint) UTF-8 entries;
//     StringColumnWriter uses this to store a column's dictionary
//   - VarStringEncoder — length-prefixed (uint8, 255-byte cap) UTF-8
//     strings plus a standalone zigzag-varint writer, for callers that
//     need simpler framing than TagEncoder's uvarint length
//
// column.NumericColumnWriter/TimestampColumnWriter/StringColumnWriter pick
// among these via format.EncodingType; callers working directly against
// this package (a custom column kind, for instance) implement
// ColumnarEncoder[T]/ColumnarDecoder[T] themselves rather than going
// through the column package's options.
//
// # Gorilla bit packing
//
// NumericGorillaEncoder buffers bits in a uint64 and appends it to the
// underlying buffer as 8 bytes once all 64 bits are filled; Bytes flushes a
// partly filled word, padding its last byte with zero bits:
//
//	bitBuf: [████████ ████████ ████████ ████░░░░ ...] (28 of 64 bits filled)
//	         ↓ Bytes flushes the partial word
//	output:  [████████] [████████] [████████] [████0000]
//
// # Varint and zigzag framing
//
// TagEncoder's length prefixes and TimestampDeltaEncoder's deltas both use
// the same two building blocks: a base-128 varint (MSB marks continuation)
//
//	Value 0-127:     0xxxxxxx                    (1 byte)
//	Value 128-16383: 1xxxxxxx 0xxxxxxx           (2 bytes)
//
// and, for signed values, zigzag mapping before varint-encoding:
//
//	Positive: 0 → 0, 1 → 2, 2 → 4, 3 → 6
//	Negative: -1 → 1, -2 → 3, -3 → 5
//
// # Buffer lifecycle
//
// Every encoder's buffer comes from internal/pool and must be returned via
// Finish once the caller is done reading Bytes():
//
//	enc := encoding.NewTimestampRawEncoder(engine)
//	defer enc.Finish()
//	enc.WriteSlice(timestamps)
//	payload := enc.Bytes()
//
// Encoders are not safe for concurrent use; decoders are stateless and
// safe to share across goroutines.
package encoding
