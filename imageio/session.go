package imageio

import (
	"fmt"
	"io"

	"github.com/ngageoint/six-library-sub017/blocking"
	"github.com/ngageoint/six-library-sub017/codec"
	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/format"
	"github.com/ngageoint/six-library-sub017/internal/pool"
	"github.com/ngageoint/six-library-sub017/plugin"
	"github.com/ngageoint/six-library-sub017/record"
	"github.com/ngageoint/six-library-sub017/section"
)

// Session reads the pixel data of one image segment.
//
// The codec is resolved when the session is created; the block mask is
// read, and the codec opened, by the first Read or an explicit Open. A
// session is not safe for concurrent use.
type Session struct {
	id     format.CompressionType
	offset uint64
	length uint64
	layout blocking.Layout
	info   blocking.Info
	px     PixelFormat
	cfg    *Config
	pad    []byte

	codec  *codec.Session
	mask   *blocking.Mask
	header *section.MaskHeader
	blocks *pool.BlockPool

	fetches int
	closed  bool
	// failed holds the error of an open that got past the codec.
	failed  error
}

// New creates a session for the image data described by sub, length bytes
// at offset. An image compressed with an identifier no codec serves fails
// here, before any I/O. A nil reg means plugin.Default.
func New(sub *record.ImageSubheader, offset, length uint64, reg *plugin.Registry, opts ...Option) (*Session, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	info, layout, err := blocking.FromSubheader(sub)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:     sub.Compression(),
		offset: offset,
		length: length,
		layout: layout,
		info:   *info,
		px:     PixelFormat{Type: sub.PixelType(), Size: layout.BytesPerPixel},
		cfg:    cfg,
		pad:    cfg.padValue,
	}
	if s.pad != nil && len(s.pad) != layout.BytesPerPixel {
		return nil, fmt.Errorf("%w: pad value of %d bytes for %d-byte pixels",
			errs.ErrInvalidParameter, len(s.pad), layout.BytesPerPixel)
	}

	if s.id.IsCompressed() {
		if reg == nil {
			if reg, err = plugin.Default(); err != nil {
				return nil, err
			}
		}
		dec, err := codec.ResolveDecompressor(reg, s.id)
		if err != nil {
			return nil, err
		}
		s.codec = codec.NewSession(s.id, dec)
	}

	return s, nil
}

// Layout returns the pixel layout of the image.
func (s *Session) Layout() blocking.Layout {
	return s.layout
}

// Info returns the block grid, as rewritten by the codec once opened.
func (s *Session) Info() blocking.Info {
	return s.info
}

// Mask returns the block mask, or nil before the session is opened.
func (s *Session) Mask() *blocking.Mask {
	return s.mask
}

// PixelFormat returns the sample format of the image.
func (s *Session) PixelFormat() PixelFormat {
	return s.px
}

// ReadBlockCount returns the number of blocks fetched by the last Read.
// Absent blocks are not fetched.
func (s *Session) ReadBlockCount() int {
	return s.fetches
}

// Open reads the block mask and opens the codec. It is a no-op on an open
// session.
func (s *Session) Open(r io.ReadSeeker) error {
	if s.closed {
		return fmt.Errorf("%w: image session", errs.ErrSessionClosed)
	}
	if s.mask != nil {
		return nil
	}
	if s.failed != nil {
		return s.failed
	}

	var mask *blocking.Mask
	switch {
	case s.id.IsMasked():
		m, header, err := blocking.ReadMask(r, s.offset, s.layout, &s.info)
		if err != nil {
			return err
		}
		mask, s.header = m, header
		if s.pad == nil && len(header.PadCode) == s.layout.BytesPerPixel {
			s.pad = append([]byte(nil), header.PadCode...)
		}
	case s.codec == nil:
		mask = blocking.DenseMask(s.layout, &s.info, s.offset)
	default:
		mask = blocking.NewMask(s.layout, &s.info)
	}

	if s.codec != nil {
		if err := s.codec.Open(r, s.offset, s.length, s.layout, &s.info, mask); err != nil {
			return err
		}
	}

	if err := s.checkGrid(mask); err != nil {
		// The codec cannot be reopened; later calls report the same error.
		s.failed = err
		if s.codec != nil {
			if cerr := s.codec.Close(); cerr != nil {
				s.cfg.logger.Debug("closing codec after a failed open", "compression", s.id, "error", cerr)
			}
		}

		return err
	}
	if s.pad == nil {
		s.pad = make([]byte, s.layout.BytesPerPixel)
	}
	s.mask = mask
	s.blocks = pool.NewBlockPool(s.info.Length)
	s.cfg.logger.Debug("image session opened",
		"compression", s.id, "mode", s.layout.Mode.String(),
		"blocks", s.info.NumBlocks(), "units", mask.Len(), "absent", mask.AllAbsent())

	return nil
}

// checkGrid checks the blocking info and mask left by the codec.
func (s *Session) checkGrid(mask *blocking.Mask) error {
	if err := s.info.Validate(s.layout.Rows, s.layout.Cols); err != nil {
		return err
	}
	if mask.Len() != s.layout.BlockUnits(&s.info) {
		return fmt.Errorf("%w: mask of %d units for a grid of %d", errs.ErrInvalidBlockMask,
			mask.Len(), s.layout.BlockUnits(&s.info))
	}

	return nil
}

// Close releases the codec. Reads fail afterwards; closing twice is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.codec != nil {
		return s.codec.Close()
	}

	return nil
}

// fetch returns unit n and the function that releases it.
func (s *Session) fetch(r io.ReadSeeker, n int) ([]byte, func(), error) {
	s.fetches++
	if s.codec != nil {
		b, err := s.codec.ReadBlock(n)
		if err != nil {
			return nil, nil, err
		}
		if len(b) < s.info.Length {
			s.codec.FreeBlock(b)
			return nil, nil, errs.NewDecompressionError(string(s.id), n,
				fmt.Errorf("%w: unit of %d bytes, want %d", errs.ErrInvalidObject, len(b), s.info.Length))
		}

		return b, func() { s.codec.FreeBlock(b) }, nil
	}

	off, err := s.mask.UnitOffset(n)
	if err != nil {
		return nil, nil, err
	}
	buf := s.blocks.Get()
	if _, err := r.Seek(int64(off), io.SeekStart); err != nil {
		s.blocks.Put(buf)
		return nil, nil, fmt.Errorf("%w: seek to block unit %d at %d: %v", errs.ErrIO, n, off, err)
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		s.blocks.Put(buf)
		return nil, nil, fmt.Errorf("%w: read block unit %d at %d: %v", errs.ErrIO, n, off, err)
	}
	s.cfg.logger.Debug("block unit read", "unit", n, "offset", off, "bytes", len(buf))

	return buf, func() { s.blocks.Put(buf) }, nil
}
