package codec

import (
	"fmt"
	"io"

	"github.com/ngageoint/six-library-sub017/blocking"
	"github.com/ngageoint/six-library-sub017/compress"
	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/format"
	"github.com/ngageoint/six-library-sub017/internal/pool"
)

// wholeImageCodec stores the whole image as a single zlib stream. Whatever
// blocking the subheader declares, the image is handled as one block
// covering it, so every unit is one band (B, S) or all bands (P, R) of the
// full image.
type wholeImageCodec struct {
	id    format.CompressionType
	codec compress.Codec
}

var _ builtin = (*wholeImageCodec)(nil)

func newWholeImageCodec(id format.CompressionType) (*wholeImageCodec, error) {
	c, err := compress.CreateCodec(id, "image")
	if err != nil {
		return nil, err
	}

	return &wholeImageCodec{id: id, codec: c}, nil
}

// singleBlock rewrites info to one block spanning the image.
func singleBlock(layout blocking.Layout, info *blocking.Info) {
	*info = blocking.Info{
		NumBlocksPerRow: 1,
		NumBlocksPerCol: 1,
		NumRowsPerBlock: layout.Rows,
		NumColsPerBlock: layout.Cols,
	}
	info.Length = layout.BandSize(info) * layout.BandsPerBlock()
}

func (c *wholeImageCodec) Open(r io.ReadSeeker, offset, length uint64, layout blocking.Layout,
	info *blocking.Info, mask *blocking.Mask,
) (DecompressionControl, error) {
	singleBlock(layout, info)
	*mask = *blocking.DenseMask(layout, info, offset)

	return &wholeImageControl{
		codec:  c,
		r:      r,
		offset: offset,
		length: length,
		size:   info.Length,
		units:  layout.BlockUnits(info),
	}, nil
}

type wholeImageControl struct {
	codec  *wholeImageCodec
	r      io.ReadSeeker
	offset uint64
	length uint64
	size   int
	units  int
	image  []byte
}

// ReadBlock inflates the stream on first use and serves every unit from it.
func (c *wholeImageControl) ReadBlock(n int) ([]byte, error) {
	if n < 0 || n >= c.units {
		return nil, fmt.Errorf("%w: block unit %d of %d", errs.ErrInvalidParameter, n, c.units)
	}

	if c.image == nil {
		buf := pool.GetStreamBuffer()
		defer pool.PutStreamBuffer(buf)

		compressed := buf.Resize(int(c.length))
		if err := readAt(c.r, c.offset, compressed); err != nil {
			return nil, err
		}
		image, err := c.codec.codec.Decompress(compressed, c.size*c.units)
		if err != nil {
			return nil, errs.NewDecompressionError(string(c.codec.id), -1, err)
		}
		c.image = image
	}

	start := n * c.size
	return c.image[start : start+c.size : start+c.size], nil
}

func (c *wholeImageControl) FreeBlock([]byte) {}

func (c *wholeImageControl) Close() error {
	c.image = nil
	return nil
}

func (c *wholeImageCodec) Start(w io.WriteSeeker, offset uint64, layout blocking.Layout,
	info *blocking.Info,
) (CompressionControl, error) {
	singleBlock(layout, info)
	units := layout.BlockUnits(info)

	return &wholeImageWriter{
		codec:  c,
		w:      w,
		offset: offset,
		size:   info.Length,
		image:  make([]byte, info.Length*units),
	}, nil
}

type wholeImageWriter struct {
	codec  *wholeImageCodec
	w      io.WriteSeeker
	offset uint64
	size   int
	image  []byte
}

// WriteBlock buffers unit n; the stream is compressed by End.
func (c *wholeImageWriter) WriteBlock(n int, data []byte) error {
	units := len(c.image) / c.size
	if n < 0 || n >= units {
		return fmt.Errorf("%w: block unit %d of %d", errs.ErrInvalidParameter, n, units)
	}
	if len(data) != c.size {
		return errs.NewCompressionError(string(c.codec.id), n, fmt.Errorf("%w: unit of %d bytes, want %d",
			errs.ErrInvalidParameter, len(data), c.size))
	}
	copy(c.image[n*c.size:], data)

	return nil
}

func (c *wholeImageWriter) End() (uint64, error) {
	buf := pool.GetStreamBuffer()
	defer pool.PutStreamBuffer(buf)

	compressed, err := c.codec.codec.Compress(buf.B, c.image)
	if err != nil {
		return 0, errs.NewCompressionError(string(c.codec.id), -1, err)
	}
	if err := writeAt(c.w, c.offset, compressed); err != nil {
		return 0, err
	}

	return uint64(len(compressed)), nil
}
