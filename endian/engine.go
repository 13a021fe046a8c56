// Package endian supplies the byte order column encoders and decoders use
// for multi-byte values. Every constructor in the encoding package takes an
// EndianEngine rather than assuming the host's native order:
//
//	engine := endian.GetLittleEndianEngine()
//	encoder := encoding.NewTimestampRawEncoder(engine)
//
// The column package's writer/reader pairs (NumericColumnWriter/Reader,
// TimestampColumnWriter/Reader, StringColumnWriter/Reader) always pass
// GetLittleEndianEngine(), fixing colrle's wire format to little-endian.
// CompareNativeEndian lets a caller confirm the host's native order matches
// before choosing one of encoding's Unsafe decoders over its safe
// counterpart.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder so encoders can both
// write into a pre-sized buffer (PutUint64) and append to a growing one
// (AppendUint64) through a single value. binary.LittleEndian and
// binary.BigEndian both already satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	// For a big-endian system, the MSB (0x01) is first.
	var i uint16 = 0x0100

	// Create a byte slice pointing to the memory address of 'i'.
	// We only need the first byte.
	b := (*[2]byte)(unsafe.Pointer(&i))

	// Check the first byte at the lowest memory address
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

func IsNativeBigEndian() bool {
	return CheckEndianness() == binary.BigEndian
}

func CompareNativeEndian(engine EndianEngine) bool {
	return engine == CheckEndianness()
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
