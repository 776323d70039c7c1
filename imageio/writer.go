package imageio

import (
	"fmt"
	"io"

	"github.com/ngageoint/six-library-sub017/blocking"
	"github.com/ngageoint/six-library-sub017/codec"
	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/format"
	"github.com/ngageoint/six-library-sub017/plugin"
	"github.com/ngageoint/six-library-sub017/record"
)

// BlockWriter writes the pixel data of one image segment from full rows.
//
// Rows are buffered until a block row is complete, then cut into blocks.
// Pixels of edge blocks that lie outside the image get the pad value.
// Uncompressed data is written in place; masked data records every block
// in the mask, whose header and tables are written by Done ahead of the
// data. Any other compression goes through the codec registered for it.
type BlockWriter struct {
	w      io.WriteSeeker
	id     format.CompressionType
	offset uint64
	layout blocking.Layout
	info   blocking.Info
	cfg    *Config
	pad    []byte

	ctl     codec.CompressionControl
	builder *blocking.MaskBuilder
	start   uint64

	staging  [][]byte
	staged   int
	written  int
	blockRow int
	unit     []byte
	done     bool
}

// NewWriter starts writing the image data described by sub at offset of w.
// A nil reg means plugin.Default.
func NewWriter(w io.WriteSeeker, sub *record.ImageSubheader, offset uint64, reg *plugin.Registry,
	opts ...Option,
) (*BlockWriter, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	info, layout, err := blocking.FromSubheader(sub)
	if err != nil {
		return nil, err
	}

	bw := &BlockWriter{
		w:      w,
		id:     sub.Compression(),
		offset: offset,
		layout: layout,
		info:   *info,
		cfg:    cfg,
		pad:    cfg.padValue,
		start:  offset,
	}
	if bw.pad == nil {
		bw.pad = make([]byte, layout.BytesPerPixel)
	} else if len(bw.pad) != layout.BytesPerPixel {
		return nil, fmt.Errorf("%w: pad value of %d bytes for %d-byte pixels",
			errs.ErrInvalidParameter, len(bw.pad), layout.BytesPerPixel)
	}

	switch {
	case bw.id.IsCompressed():
		if reg == nil {
			if reg, err = plugin.Default(); err != nil {
				return nil, err
			}
		}
		comp, err := codec.ResolveCompressor(reg, bw.id)
		if err != nil {
			return nil, err
		}
		if bw.ctl, err = comp.Start(w, offset, layout, &bw.info); err != nil {
			return nil, err
		}
		if err := bw.info.Validate(layout.Rows, layout.Cols); err != nil {
			return nil, err
		}
	case bw.id.IsMasked():
		var padCode []byte
		if cfg.padCode {
			padCode = bw.pad
		}
		if bw.builder, err = blocking.NewMaskBuilder(layout, &bw.info, padCode); err != nil {
			return nil, err
		}
		bw.start = offset + uint64(bw.builder.Size())
	}

	bw.staging = make([][]byte, layout.Bands)
	for i := range bw.staging {
		bw.staging[i] = make([]byte, bw.info.NumRowsPerBlock*layout.Cols*layout.BytesPerPixel)
	}
	bw.unit = make([]byte, bw.info.Length)
	cfg.logger.Debug("image writer started", "compression", bw.id, "mode", layout.Mode.String(),
		"blocks", bw.info.NumBlocks(), "unit_bytes", bw.info.Length)

	return bw, nil
}

// Info returns the block grid being written, as the codec left it.
func (bw *BlockWriter) Info() blocking.Info {
	return bw.info
}

// WriteRows appends rows full image rows. bands holds one buffer per band
// in band order, each at least rows × Cols pixels.
func (bw *BlockWriter) WriteRows(rows int, bands [][]byte) error {
	if bw.done {
		return fmt.Errorf("%w: image writer finished", errs.ErrInvalidObject)
	}
	if rows < 0 || bw.written+rows > bw.layout.Rows {
		return fmt.Errorf("%w: %d rows after %d of %d", errs.ErrInvalidRequest, rows, bw.written, bw.layout.Rows)
	}
	if len(bands) != bw.layout.Bands {
		return fmt.Errorf("%w: %d band buffers for %d bands", errs.ErrInvalidRequest, len(bands), bw.layout.Bands)
	}
	row := bw.layout.Cols * bw.layout.BytesPerPixel
	for i, b := range bands {
		if len(b) < rows*row {
			return fmt.Errorf("%w: band %d holds %d bytes, need %d", errs.ErrInvalidRequest, i, len(b), rows*row)
		}
	}

	for done := 0; done < rows; {
		n := min(rows-done, bw.info.NumRowsPerBlock-bw.staged)
		for i, b := range bands {
			copy(bw.staging[i][bw.staged*row:], b[done*row:(done+n)*row])
		}
		done += n
		bw.staged += n
		bw.written += n
		if bw.staged == bw.info.NumRowsPerBlock || bw.written == bw.layout.Rows {
			if err := bw.flush(); err != nil {
				return err
			}
		}
	}

	return nil
}

// flush cuts the staged block row into units and emits them.
func (bw *BlockWriter) flush() error {
	l, info := bw.layout, &bw.info
	for bc := range info.NumBlocksPerRow {
		block := bw.blockRow*info.NumBlocksPerRow + bc
		bx := bc * info.NumColsPerBlock
		edge := bw.staged < info.NumRowsPerBlock || bx+info.NumColsPerBlock > l.Cols

		if l.BandsPerBlock() == 1 {
			for band := range l.Bands {
				bw.fill(bx, band)
				if err := bw.emit(l.UnitIndex(info, band, block), band, block, edge); err != nil {
					return err
				}
			}
			continue
		}
		bw.fill(bx, -1)
		if err := bw.emit(l.UnitIndex(info, 0, block), 0, block, edge); err != nil {
			return err
		}
	}
	bw.staged = 0
	bw.blockRow++

	return nil
}

// fill builds the unit of the block starting at column bx in bw.unit. A
// band of -1 interleaves every band as the blocking mode says.
func (bw *BlockWriter) fill(bx, band int) {
	n := bw.layout.BytesPerPixel
	rpb, cpb := bw.info.NumRowsPerBlock, bw.info.NumColsPerBlock
	cols := bw.layout.Cols
	valid := max(0, min(cpb, cols-bx))

	put := func(dst []byte, b, y, x int) {
		if y < bw.staged && x < valid {
			src := (y*cols + bx + x) * n
			copy(dst, bw.staging[b][src:src+n])
			return
		}
		copy(dst, bw.pad)
	}

	switch {
	case band >= 0:
		for y := range rpb {
			for x := range cpb {
				put(bw.unit[(y*cpb+x)*n:], band, y, x)
			}
		}
	case bw.layout.Mode == format.BlockingBandInterleavedByPixel:
		nb := bw.layout.Bands
		for y := range rpb {
			for x := range cpb {
				for b := range nb {
					put(bw.unit[((y*cpb+x)*nb+b)*n:], b, y, x)
				}
			}
		}
	default:
		nb := bw.layout.Bands
		for y := range rpb {
			for b := range nb {
				for x := range cpb {
					put(bw.unit[((y*nb+b)*cpb+x)*n:], b, y, x)
				}
			}
		}
	}
}

func (bw *BlockWriter) emit(unit, band, block int, edge bool) error {
	if bw.ctl != nil {
		return bw.ctl.WriteBlock(unit, bw.unit)
	}

	rel := uint64(unit) * uint64(bw.info.Length)
	if err := bw.writeAt(bw.start+rel, bw.unit); err != nil {
		return err
	}
	if bw.builder != nil {
		if err := bw.builder.Record(band, block, rel); err != nil {
			return err
		}
		if edge {
			return bw.builder.MarkPad(band, block)
		}
	}

	return nil
}

func (bw *BlockWriter) writeAt(offset uint64, data []byte) error {
	if _, err := bw.w.Seek(int64(offset), io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek to %d: %v", errs.ErrIO, offset, err)
	}
	if _, err := bw.w.Write(data); err != nil {
		return fmt.Errorf("%w: write %d bytes at %d: %v", errs.ErrIO, len(data), offset, err)
	}

	return nil
}

// Done finishes the image data and returns its length. The writer is left
// positioned at the end of the data.
func (bw *BlockWriter) Done() (uint64, error) {
	if bw.done {
		return 0, fmt.Errorf("%w: image writer finished", errs.ErrInvalidObject)
	}
	if bw.written != bw.layout.Rows {
		return 0, fmt.Errorf("%w: %d of %d rows written", errs.ErrInvalidObject, bw.written, bw.layout.Rows)
	}
	bw.done = true

	var length uint64
	switch {
	case bw.ctl != nil:
		n, err := bw.ctl.End()
		if err != nil {
			return 0, err
		}
		length = n
	default:
		length = bw.start - bw.offset + uint64(bw.layout.BlockUnits(&bw.info))*uint64(bw.info.Length)
		if bw.builder != nil {
			if err := bw.writeAt(bw.offset, bw.builder.Bytes()); err != nil {
				return 0, err
			}
		}
	}

	if _, err := bw.w.Seek(int64(bw.offset+length), io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w: seek to %d: %v", errs.ErrIO, bw.offset+length, err)
	}
	bw.cfg.logger.Debug("image writer done", "compression", bw.id, "bytes", length)

	return length, nil
}
