package compress

import (
	"bytes"

	"golang.org/x/image/tiff/lzw"
)

// LZWCodec compresses blocks with TIFF flavoured LZW (identifier LZ): MSB
// first bit packing, 8-bit literals, and the code width growing one code
// earlier than in GIF streams.
type LZWCodec struct{}

var _ Codec = (*LZWCodec)(nil)

// NewLZWCodec creates a new LZW codec.
func NewLZWCodec() LZWCodec {
	return LZWCodec{}
}

const (
	lzwClear    = 256
	lzwEOI      = 257
	lzwFirst    = 258
	lzwMaxWidth = 12
	// lzwTableFull is the next code at which the table is reset.
	lzwTableFull = 1<<lzwMaxWidth - 2
)

type lzwEncoder struct {
	out   []byte
	bits  uint32
	nBits uint
	width uint
	next  int
	table map[uint32]int
}

func (e *lzwEncoder) put(code int) {
	e.bits |= uint32(code) << (32 - e.width - e.nBits)
	e.nBits += e.width
	for e.nBits >= 8 {
		e.out = append(e.out, byte(e.bits>>24))
		e.bits <<= 8
		e.nBits -= 8
	}
}

// grow widens codes once next no longer fits.
func (e *lzwEncoder) grow() {
	for e.next >= 1<<e.width && e.width < lzwMaxWidth {
		e.width++
	}
}

func (e *lzwEncoder) reset() {
	e.width = 9
	e.next = lzwFirst
	clear(e.table)
}

func (e *lzwEncoder) flush() {
	if e.nBits > 0 {
		e.out = append(e.out, byte(e.bits>>24))
	}
}

// Compress compresses the input data into one LZW strip.
func (c LZWCodec) Compress(dst, data []byte) ([]byte, error) {
	e := &lzwEncoder{out: dst[:0], table: make(map[uint32]int)}
	e.reset()
	e.put(lzwClear)

	if len(data) == 0 {
		e.put(lzwEOI)
		e.flush()
		return e.out, nil
	}

	prefix := int(data[0])
	for _, b := range data[1:] {
		key := uint32(prefix)<<8 | uint32(b)
		if code, ok := e.table[key]; ok {
			prefix = code
			continue
		}

		e.put(prefix)
		e.table[key] = e.next
		e.next++
		if e.next >= lzwTableFull {
			e.put(lzwClear)
			e.reset()
		} else {
			e.grow()
		}
		prefix = int(b)
	}

	e.put(prefix)
	// The decoder counts the final code as a table addition.
	e.next++
	e.grow()
	e.put(lzwEOI)
	e.flush()

	return e.out, nil
}

// Decompress decodes one LZW strip of size original bytes.
func (c LZWCodec) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return checkSize("lzw", nil, size)
	}

	r := lzw.NewReader(bytes.NewReader(data), lzw.MSB, 8)
	defer r.Close()

	return readSized("lzw", r, size)
}
