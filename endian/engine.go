// Package endian provides byte order utilities for the binary parts of a NITF file.
//
// Text fields of a NITF file are byte-order free, but the block mask tables,
// binary TRE fields and multi-byte pixel samples are stored big-endian. This
// package combines binary.ByteOrder and binary.AppendByteOrder into a single
// EndianEngine and adds in-place sample swapping for pixel buffers.
//
// # Basic Usage
//
//	engine := endian.GetFileEngine()
//	offset := engine.Uint32(table[4*i:])
//
// Swapping 16-bit samples read from the file to host order:
//
//	if !endian.CompareNativeEndian(endian.GetFileEngine()) {
//	    endian.SwapInPlace(buf, 2)
//	}
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))
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

// GetFileEngine returns the byte order of every binary quantity stored in a NITF file.
func GetFileEngine() EndianEngine {
	return binary.BigEndian
}

// SwapInPlace reverses the byte order of every elemSize-byte sample in buf.
//
// Complex samples must be swapped per component, so callers pass the component
// size (4 for complex float32 pairs), not the pixel size. Trailing bytes that
// do not form a whole sample are left untouched. elemSize values below 2 are
// a no-op.
func SwapInPlace(buf []byte, elemSize int) {
	if elemSize < 2 {
		return
	}

	n := len(buf) - len(buf)%elemSize
	switch elemSize {
	case 2:
		for i := 0; i < n; i += 2 {
			buf[i], buf[i+1] = buf[i+1], buf[i]
		}
	case 4:
		for i := 0; i < n; i += 4 {
			buf[i], buf[i+1], buf[i+2], buf[i+3] = buf[i+3], buf[i+2], buf[i+1], buf[i]
		}
	case 8:
		for i := 0; i < n; i += 8 {
			binary.LittleEndian.PutUint64(buf[i:], binary.BigEndian.Uint64(buf[i:]))
		}
	default:
		for i := 0; i < n; i += elemSize {
			s := buf[i : i+elemSize]
			for l, r := 0, elemSize-1; l < r; l, r = l+1, r-1 {
				s[l], s[r] = s[r], s[l]
			}
		}
	}
}
