// Package rle implements the byte-level and bit-packed boolean run-length
// encoding used by colrle's column streams.
//
// Two codecs live here: ByteEncoder/ByteDecoder operate on raw bytes using
// the frame format below; BoolEncoder/BoolDecoder bit-pack booleans
// MSB-first into bytes and delegate the resulting byte stream to the byte
// codec. Both are single-owner, single-threaded value types: a codec holds
// exclusive use of the Sink or Source it wraps and is not safe to share
// across goroutines.
//
// Wire format: a stream is a concatenation of self-delimiting frames, each
// introduced by one signed header byte h.
//
//   - h >= 0: run frame. length = h + MinimumRepeat, payload = one repeated byte.
//   - h <  0: literal frame. length = -h, payload = that many raw bytes.
package rle

const (
	// MinimumRepeat is the shortest run a run frame may encode. Below this,
	// a literal frame is cheaper: two header+value bytes only pay for
	// themselves once three or more repeats are saved.
	MinimumRepeat = 3

	// MaximumRepeat is the longest run a single run frame may encode
	// (127 + MinimumRepeat, since the header is a single signed byte).
	MaximumRepeat = 127 + MinimumRepeat

	// MaxLiteralSize is the longest literal frame payload in bytes.
	MaxLiteralSize = 128
)
