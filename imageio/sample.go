package imageio

import (
	"bytes"
	"fmt"
	"math"

	"github.com/ngageoint/six-library-sub017/endian"
	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/format"
)

// PixelFormat describes one sample as stored in the file: big-endian, Size
// bytes, interpreted according to Type.
type PixelFormat struct {
	Type format.PixelType
	Size int
}

// Validate checks that Size is a width Type can have.
func (p PixelFormat) Validate() error {
	ok := false
	switch p.Type {
	case format.PixelInteger, format.PixelSignedInteger:
		ok = p.Size == 1 || p.Size == 2 || p.Size == 4 || p.Size == 8
	case format.PixelBiLevel:
		ok = p.Size == 1
	case format.PixelReal:
		ok = p.Size == 4 || p.Size == 8
	case format.PixelComplex:
		ok = p.Size == 8 || p.Size == 16
	}
	if !ok {
		return fmt.Errorf("%w: %d-byte %q samples", errs.ErrInvalidParameter, p.Size, p.Type)
	}

	return nil
}

// component returns the width of the byte-swappable part of a sample.
func (p PixelFormat) component() int {
	if p.Type == format.PixelComplex {
		return p.Size / 2
	}

	return p.Size
}

func readFloat(b []byte) float64 {
	e := endian.GetFileEngine()
	if len(b) == 4 {
		return float64(math.Float32frombits(e.Uint32(b)))
	}

	return math.Float64frombits(e.Uint64(b))
}

func readUint(b []byte) uint64 {
	e := endian.GetFileEngine()
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(e.Uint16(b))
	case 4:
		return uint64(e.Uint32(b))
	default:
		return e.Uint64(b)
	}
}

func readInt(b []byte) int64 {
	switch len(b) {
	case 1:
		return int64(int8(b[0]))
	case 2:
		return int64(int16(readUint(b)))
	case 4:
		return int64(int32(readUint(b)))
	default:
		return int64(readUint(b))
	}
}

// value returns b as a float64. A complex sample yields its squared
// magnitude.
func (p PixelFormat) value(b []byte) float64 {
	switch p.Type {
	case format.PixelSignedInteger:
		return float64(readInt(b))
	case format.PixelReal:
		return readFloat(b)
	case format.PixelComplex:
		half := p.Size / 2
		re, im := readFloat(b[:half]), readFloat(b[half:])
		return re*re + im*im
	default:
		return float64(readUint(b))
	}
}

// greater reports whether sample a orders after sample b. Integers compare
// exactly; complex samples compare by magnitude.
func (p PixelFormat) greater(a, b []byte) bool {
	switch p.Type {
	case format.PixelInteger, format.PixelBiLevel:
		return bytes.Compare(a, b) > 0
	case format.PixelSignedInteger:
		if sa, sb := a[0]^0x80, b[0]^0x80; sa != sb {
			return sa > sb
		}
		return bytes.Compare(a[1:], b[1:]) > 0
	default:
		return p.value(a) > p.value(b)
	}
}

func clampInt(v float64, lo, hi int64) int64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v <= float64(lo):
		return lo
	case v >= float64(hi):
		return hi
	default:
		return int64(math.Round(v))
	}
}

// scale multiplies the sample in b by factor and adds offset, saturating
// integers at the limits of their width.
func (p PixelFormat) scale(b []byte, factor, offset float64) {
	e := endian.GetFileEngine()
	switch p.Type {
	case format.PixelReal:
		putFloat(b, readFloat(b)*factor+offset)
	case format.PixelComplex:
		half := p.Size / 2
		putFloat(b[:half], readFloat(b[:half])*factor+offset)
		putFloat(b[half:], readFloat(b[half:])*factor)
	case format.PixelSignedInteger:
		bits := uint(p.Size * 8)
		hi := int64(math.MaxInt64)
		if bits < 64 {
			hi = 1<<(bits-1) - 1
		}
		v := uint64(clampInt(float64(readInt(b))*factor+offset, -hi-1, hi))
		putUint(e, b, v)
	default:
		bits := uint(p.Size * 8)
		var v uint64
		x := float64(readUint(b))*factor + offset
		switch {
		case math.IsNaN(x) || x <= 0:
			v = 0
		case bits == 64 && x >= math.MaxUint64:
			v = math.MaxUint64
		case bits < 64 && x >= float64(uint64(1)<<bits-1):
			v = uint64(1)<<bits - 1
		default:
			v = uint64(math.Round(x))
		}
		putUint(e, b, v)
	}
}

func putFloat(b []byte, v float64) {
	e := endian.GetFileEngine()
	if len(b) == 4 {
		e.PutUint32(b, math.Float32bits(float32(v)))
		return
	}
	e.PutUint64(b, math.Float64bits(v))
}

func putUint(e endian.EndianEngine, b []byte, v uint64) {
	switch len(b) {
	case 1:
		b[0] = byte(v)
	case 2:
		e.PutUint16(b, uint16(v))
	case 4:
		e.PutUint32(b, uint32(v))
	default:
		e.PutUint64(b, v)
	}
}
