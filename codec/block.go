package codec

import (
	"fmt"
	"io"
	"math"

	"github.com/ngageoint/six-library-sub017/blocking"
	"github.com/ngageoint/six-library-sub017/compress"
	"github.com/ngageoint/six-library-sub017/endian"
	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/format"
	"github.com/ngageoint/six-library-sub017/internal/pool"
)

// Block index trailer written after the compressed units:
//
//	┌──────────────────┬────────────────┬──────────┬─────────┐
//	│ offset 8 │ len 4 │ ... × N units  │ N (4)    │ "NBIX"  │
//	└──────────────────┴────────────────┴──────────┴─────────┘
//
// Offsets are relative to the start of the image data; a unit that was
// never written has offset noUnit.
const (
	trailerMagic     = "NBIX"
	trailerEntrySize = 12
	trailerFixedSize = 8
	noUnit           = math.MaxUint64
)

type trailerEntry struct {
	offset uint64
	length uint32
}

// blockCodecIdentifiers lists the byte codecs stored block by block; zlib
// is kept for the whole-image codec.
func blockCodecIdentifiers() []format.CompressionType {
	var ids []format.CompressionType
	for _, id := range compress.Identifiers() {
		if id != format.CompressionZlib {
			ids = append(ids, id)
		}
	}

	return ids
}

// blockCodec compresses every unit independently with a byte codec.
type blockCodec struct {
	id    format.CompressionType
	codec compress.Codec
}

var _ builtin = (*blockCodec)(nil)

func newBlockCodec(id format.CompressionType) (*blockCodec, error) {
	c, err := compress.CreateCodec(id, "block")
	if err != nil {
		return nil, err
	}

	return &blockCodec{id: id, codec: c}, nil
}

func (b *blockCodec) fail(block int, err error) error {
	return errs.NewDecompressionError(string(b.id), block, err)
}

func (b *blockCodec) Open(r io.ReadSeeker, offset, length uint64, layout blocking.Layout,
	info *blocking.Info, mask *blocking.Mask,
) (DecompressionControl, error) {
	engine := endian.GetFileEngine()
	units := layout.BlockUnits(info)

	if length < trailerFixedSize {
		return nil, b.fail(-1, fmt.Errorf("%w: %d bytes of image data hold no block index", errs.ErrInvalidObject, length))
	}
	fixed := make([]byte, trailerFixedSize)
	if err := readAt(r, offset+length-trailerFixedSize, fixed); err != nil {
		return nil, err
	}
	if string(fixed[4:]) != trailerMagic {
		return nil, b.fail(-1, fmt.Errorf("%w: block index magic %q", errs.ErrInvalidObject, fixed[4:]))
	}
	if n := int(engine.Uint32(fixed)); n != units {
		return nil, b.fail(-1, fmt.Errorf("%w: block index of %d units, image has %d", errs.ErrInvalidObject, n, units))
	}

	indexSize := uint64(units) * trailerEntrySize
	if indexSize > length-trailerFixedSize {
		return nil, b.fail(-1, fmt.Errorf("%w: block index larger than the image data", errs.ErrInvalidObject))
	}
	dataEnd := length - trailerFixedSize - indexSize
	index := make([]byte, indexSize)
	if err := readAt(r, offset+dataEnd, index); err != nil {
		return nil, err
	}

	ctl := &blockControl{codec: b, r: r, offset: offset, info: *info, entries: make([]trailerEntry, units)}
	for i := range ctl.entries {
		e := trailerEntry{
			offset: engine.Uint64(index[i*trailerEntrySize:]),
			length: engine.Uint32(index[i*trailerEntrySize+8:]),
		}
		ctl.entries[i] = e
		if e.offset == noUnit {
			continue
		}
		if e.offset+uint64(e.length) > dataEnd {
			return nil, b.fail(i, fmt.Errorf("%w: unit at %d+%d past the data end %d",
				errs.ErrInvalidObject, e.offset, e.length, dataEnd))
		}
		if err := mask.SetUnit(i, offset+e.offset); err != nil {
			return nil, err
		}
	}

	return ctl, nil
}

type blockControl struct {
	codec   *blockCodec
	r       io.ReadSeeker
	offset  uint64
	info    blocking.Info
	entries []trailerEntry
}

func (c *blockControl) ReadBlock(n int) ([]byte, error) {
	if n < 0 || n >= len(c.entries) {
		return nil, fmt.Errorf("%w: block unit %d of %d", errs.ErrInvalidParameter, n, len(c.entries))
	}
	e := c.entries[n]
	if e.offset == noUnit {
		return nil, fmt.Errorf("%w: block unit %d was never written", errs.ErrInvalidParameter, n)
	}

	buf := pool.GetStreamBuffer()
	defer pool.PutStreamBuffer(buf)

	compressed := buf.Resize(int(e.length))
	if err := readAt(c.r, c.offset+e.offset, compressed); err != nil {
		return nil, err
	}
	out, err := c.codec.codec.Decompress(compressed, c.info.Length)
	if err != nil {
		return nil, c.codec.fail(n, err)
	}

	return out, nil
}

func (c *blockControl) FreeBlock([]byte) {}

func (c *blockControl) Close() error {
	c.entries = nil
	return nil
}

func (b *blockCodec) Start(w io.WriteSeeker, offset uint64, layout blocking.Layout,
	info *blocking.Info,
) (CompressionControl, error) {
	ctl := &blockWriter{
		codec:   b,
		w:       w,
		offset:  offset,
		length:  info.Length,
		entries: make([]trailerEntry, layout.BlockUnits(info)),
	}
	for i := range ctl.entries {
		ctl.entries[i].offset = noUnit
	}

	return ctl, nil
}

type blockWriter struct {
	codec   *blockCodec
	w       io.WriteSeeker
	offset  uint64
	pos     uint64
	length  int
	entries []trailerEntry
}

func (c *blockWriter) WriteBlock(n int, data []byte) error {
	id := string(c.codec.id)
	if n < 0 || n >= len(c.entries) {
		return fmt.Errorf("%w: block unit %d of %d", errs.ErrInvalidParameter, n, len(c.entries))
	}
	if len(data) != c.length {
		return errs.NewCompressionError(id, n, fmt.Errorf("%w: unit of %d bytes, want %d",
			errs.ErrInvalidParameter, len(data), c.length))
	}

	buf := pool.GetStreamBuffer()
	defer pool.PutStreamBuffer(buf)

	compressed, err := c.codec.codec.Compress(buf.B, data)
	if err != nil {
		return errs.NewCompressionError(id, n, err)
	}
	buf.B = compressed[:0]
	if uint64(len(compressed)) > math.MaxUint32 {
		return errs.NewCompressionError(id, n, fmt.Errorf("compressed unit of %d bytes", len(compressed)))
	}
	if err := writeAt(c.w, c.offset+c.pos, compressed); err != nil {
		return err
	}
	c.entries[n] = trailerEntry{offset: c.pos, length: uint32(len(compressed))}
	c.pos += uint64(len(compressed))

	return nil
}

func (c *blockWriter) End() (uint64, error) {
	engine := endian.GetFileEngine()
	trailer := make([]byte, 0, len(c.entries)*trailerEntrySize+trailerFixedSize)
	for _, e := range c.entries {
		trailer = engine.AppendUint64(trailer, e.offset)
		trailer = engine.AppendUint32(trailer, e.length)
	}
	trailer = engine.AppendUint32(trailer, uint32(len(c.entries)))
	trailer = append(trailer, trailerMagic...)

	if err := writeAt(c.w, c.offset+c.pos, trailer); err != nil {
		return 0, err
	}

	return c.pos + uint64(len(trailer)), nil
}
