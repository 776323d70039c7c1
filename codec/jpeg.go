package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"slices"

	"github.com/ngageoint/six-library-sub017/blocking"
	"github.com/ngageoint/six-library-sub017/endian"
	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/format"
	"github.com/ngageoint/six-library-sub017/internal/pool"
)

// JPEG markers the stream walker needs.
const (
	markerTEM  = 0x01
	markerRST0 = 0xD0
	markerRST7 = 0xD7
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
)

// JPEGQuality is the quality C3 blocks are encoded with.
const JPEGQuality = 90

// jpegCodec stores every unit as an independent baseline JPEG stream of
// 8-bit samples: one band as grayscale or three pixel interleaved bands as
// RGB. C3 streams follow each other and are found by walking their markers;
// M3 streams are located by the block mask.
type jpegCodec struct {
	id format.CompressionType
}

var _ builtin = (*jpegCodec)(nil)

func newJPEGCodec(id format.CompressionType) *jpegCodec {
	return &jpegCodec{id: id}
}

func (c *jpegCodec) fail(block int, err error) error {
	return errs.NewDecompressionError(string(c.id), block, err)
}

func checkJPEGLayout(layout blocking.Layout) error {
	if layout.BytesPerPixel != 1 {
		return fmt.Errorf("%w: JPEG blocks need 8-bit samples, got %d bytes", errs.ErrInvalidObject, layout.BytesPerPixel)
	}
	switch {
	case layout.Bands == 1:
		return nil
	case layout.Bands == 3 && layout.Mode == format.BlockingBandInterleavedByPixel:
		return nil
	default:
		return fmt.Errorf("%w: JPEG blocks need 1 band or 3 bands interleaved by pixel, got %d bands mode %s",
			errs.ErrInvalidObject, layout.Bands, layout.Mode)
	}
}

// jpegStreamEnd returns the position just past the EOI marker of the JPEG
// stream starting at data[start].
func jpegStreamEnd(data []byte, start int) (int, error) {
	truncated := fmt.Errorf("%w: JPEG stream at %d is truncated", errs.ErrInvalidObject, start)
	if len(data) < start+2 || data[start] != 0xFF || data[start+1] != markerSOI {
		return 0, fmt.Errorf("%w: no SOI marker at %d", errs.ErrInvalidObject, start)
	}

	pos := start + 2
	for {
		if pos >= len(data) || data[pos] != 0xFF {
			return 0, truncated
		}
		// Fill bytes.
		for pos < len(data) && data[pos] == 0xFF {
			pos++
		}
		if pos >= len(data) {
			return 0, truncated
		}
		marker := data[pos]
		pos++

		switch {
		case marker == markerEOI:
			return pos, nil
		case marker == markerTEM || marker == markerSOI || (marker >= markerRST0 && marker <= markerRST7):
			continue
		}

		if pos+2 > len(data) {
			return 0, truncated
		}
		pos += int(endian.GetFileEngine().Uint16(data[pos:]))

		if marker != markerSOS {
			continue
		}
		// Entropy coded data runs to the next marker other than a stuffed
		// 0xFF00 or a restart marker.
		for pos < len(data) {
			if data[pos] != 0xFF {
				pos++
				continue
			}
			if pos+1 >= len(data) {
				return 0, truncated
			}
			next := data[pos+1]
			if next == 0 || (next >= markerRST0 && next <= markerRST7) {
				pos += 2
				continue
			}
			break
		}
	}
}

type jpegSpan struct {
	offset uint64
	length uint64
}

func (c *jpegCodec) Open(r io.ReadSeeker, offset, length uint64, layout blocking.Layout,
	info *blocking.Info, mask *blocking.Mask,
) (DecompressionControl, error) {
	if err := checkJPEGLayout(layout); err != nil {
		return nil, c.fail(-1, err)
	}

	units := layout.BlockUnits(info)
	spans := make([]jpegSpan, units)

	if c.id.IsMasked() {
		present := make([]uint64, 0, units)
		for i := range units {
			off, err := mask.UnitOffset(i)
			if err != nil {
				return nil, err
			}
			if off != blocking.Absent {
				present = append(present, off)
			}
		}
		slices.Sort(present)
		for i := range units {
			off, _ := mask.UnitOffset(i)
			if off == blocking.Absent {
				continue
			}
			end := offset + length
			if j, _ := slices.BinarySearch(present, off); j+1 < len(present) {
				end = present[j+1]
			}
			if off < offset || end > offset+length || end <= off {
				return nil, c.fail(i, fmt.Errorf("%w: unit at %d outside the image data", errs.ErrInvalidBlockMask, off))
			}
			spans[i] = jpegSpan{offset: off, length: end - off}
		}
	} else {
		data := make([]byte, length)
		if err := readAt(r, offset, data); err != nil {
			return nil, err
		}
		pos := 0
		for i := range units {
			end, err := jpegStreamEnd(data, pos)
			if err != nil {
				return nil, c.fail(i, err)
			}
			spans[i] = jpegSpan{offset: offset + uint64(pos), length: uint64(end - pos)}
			if err := mask.SetUnit(i, spans[i].offset); err != nil {
				return nil, err
			}
			pos = end
		}
	}

	return &jpegControl{
		codec:  c,
		r:      r,
		layout: layout,
		info:   *info,
		spans:  spans,
		pool:   pool.NewBlockPool(info.Length),
	}, nil
}

type jpegControl struct {
	codec  *jpegCodec
	r      io.ReadSeeker
	layout blocking.Layout
	info   blocking.Info
	spans  []jpegSpan
	pool   *pool.BlockPool
}

func (c *jpegControl) ReadBlock(n int) ([]byte, error) {
	if n < 0 || n >= len(c.spans) || c.spans[n].length == 0 {
		return nil, fmt.Errorf("%w: block unit %d holds no JPEG stream", errs.ErrInvalidParameter, n)
	}

	data := make([]byte, c.spans[n].length)
	if err := readAt(c.r, c.spans[n].offset, data); err != nil {
		return nil, err
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, c.codec.fail(n, err)
	}

	rows, cols := c.info.NumRowsPerBlock, c.info.NumColsPerBlock
	b := img.Bounds()
	if b.Dx() != cols || b.Dy() != rows {
		return nil, c.codec.fail(n, fmt.Errorf("JPEG block of %dx%d, want %dx%d", b.Dx(), b.Dy(), cols, rows))
	}

	out := c.pool.Get()
	bands := c.layout.Bands
	for y := range rows {
		for x := range cols {
			px := img.At(b.Min.X+x, b.Min.Y+y)
			i := (y*cols + x) * bands
			if bands == 1 {
				out[i] = color.GrayModel.Convert(px).(color.Gray).Y
				continue
			}
			rgb := color.RGBAModel.Convert(px).(color.RGBA)
			out[i], out[i+1], out[i+2] = rgb.R, rgb.G, rgb.B
		}
	}

	return out, nil
}

func (c *jpegControl) FreeBlock(b []byte) {
	c.pool.Put(b)
}

func (c *jpegControl) Close() error {
	c.spans = nil
	return nil
}

func (c *jpegCodec) Start(w io.WriteSeeker, offset uint64, layout blocking.Layout,
	info *blocking.Info,
) (CompressionControl, error) {
	if c.id.IsMasked() {
		return nil, fmt.Errorf("%w: writing %s is not supported", errs.ErrUnknownCompressionType, c.id)
	}
	if err := checkJPEGLayout(layout); err != nil {
		return nil, errs.NewCompressionError(string(c.id), -1, err)
	}

	return &jpegWriter{
		codec:  c,
		w:      w,
		offset: offset,
		layout: layout,
		info:   *info,
		units:  layout.BlockUnits(info),
	}, nil
}

type jpegWriter struct {
	codec  *jpegCodec
	w      io.WriteSeeker
	offset uint64
	pos    uint64
	layout blocking.Layout
	info   blocking.Info
	units  int
	next   int
}

// WriteBlock encodes unit n. Units must arrive in order since a reader finds
// them by position.
func (c *jpegWriter) WriteBlock(n int, data []byte) error {
	id := string(c.codec.id)
	if n != c.next || n >= c.units {
		return errs.NewCompressionError(id, n, fmt.Errorf("%w: unit %d written out of order, want %d",
			errs.ErrInvalidParameter, n, c.next))
	}
	if len(data) != c.info.Length {
		return errs.NewCompressionError(id, n, fmt.Errorf("%w: unit of %d bytes, want %d",
			errs.ErrInvalidParameter, len(data), c.info.Length))
	}

	rect := image.Rect(0, 0, c.info.NumColsPerBlock, c.info.NumRowsPerBlock)
	var img image.Image
	if c.layout.Bands == 1 {
		img = &image.Gray{Pix: data, Stride: rect.Dx(), Rect: rect}
	} else {
		rgba := image.NewRGBA(rect)
		for i := 0; i < len(data)/3; i++ {
			copy(rgba.Pix[i*4:], data[i*3:i*3+3])
			rgba.Pix[i*4+3] = 0xFF
		}
		img = rgba
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return errs.NewCompressionError(id, n, err)
	}
	if err := writeAt(c.w, c.offset+c.pos, buf.Bytes()); err != nil {
		return err
	}
	c.pos += uint64(buf.Len())
	c.next++

	return nil
}

func (c *jpegWriter) End() (uint64, error) {
	if c.next != c.units {
		return 0, errs.NewCompressionError(string(c.codec.id), -1,
			fmt.Errorf("%w: %d of %d units written", errs.ErrInvalidObject, c.next, c.units))
	}

	return c.pos, nil
}
