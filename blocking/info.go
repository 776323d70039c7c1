// Package blocking derives the block geometry of an image segment and
// manages its block mask: the per block file offsets, with a sentinel for
// blocks that were never written.
package blocking

import (
	"fmt"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/format"
	"github.com/ngageoint/six-library-sub017/record"
)

// Info is the block grid of an image. A codec may replace the grid
// declared by the subheader with its own when a session is opened.
type Info struct {
	NumBlocksPerRow int
	NumBlocksPerCol int
	NumRowsPerBlock int
	NumColsPerBlock int
	// Length is the size in bytes of one block as a codec returns it.
	Length int
}

// NumBlocks returns the number of block positions in the grid.
func (i *Info) NumBlocks() int {
	return i.NumBlocksPerRow * i.NumBlocksPerCol
}

// Validate checks that the grid covers rows × cols.
func (i *Info) Validate(rows, cols int) error {
	if i.NumRowsPerBlock <= 0 || i.NumColsPerBlock <= 0 || i.NumBlocksPerRow <= 0 || i.NumBlocksPerCol <= 0 {
		return fmt.Errorf("%w: empty block grid %+v", errs.ErrInvalidObject, *i)
	}
	if i.NumBlocksPerCol*i.NumRowsPerBlock < rows || i.NumBlocksPerRow*i.NumColsPerBlock < cols {
		return fmt.Errorf("%w: block grid %+v does not cover %d×%d", errs.ErrInvalidObject, *i, rows, cols)
	}
	if i.Length <= 0 {
		return fmt.Errorf("%w: block length %d", errs.ErrInvalidObject, i.Length)
	}

	return nil
}

// Layout is everything the subheader says about how pixels are stored.
type Layout struct {
	Rows          int
	Cols          int
	Bands         int
	BytesPerPixel int
	Mode          format.BlockingMode
}

// BandsPerBlock returns how many bands one block holds: every band for
// pixel and row interleaving, one band otherwise.
func (l Layout) BandsPerBlock() int {
	switch l.Mode {
	case format.BlockingBandInterleavedByPixel, format.BlockingBandInterleavedByRow:
		return l.Bands
	default:
		return 1
	}
}

// BlockUnits returns the number of separately stored blocks: one per band
// per position when a block holds a single band.
func (l Layout) BlockUnits(info *Info) int {
	if l.BandsPerBlock() == 1 {
		return info.NumBlocks() * l.Bands
	}

	return info.NumBlocks()
}

// BandSize returns the size of one band of one block.
func (l Layout) BandSize(info *Info) int {
	return info.NumRowsPerBlock * info.NumColsPerBlock * l.BytesPerPixel
}

// UnitIndex returns the position of the block unit holding band of block
// in file order.
func (l Layout) UnitIndex(info *Info, band, block int) int {
	switch l.Mode {
	case format.BlockingBandSequential:
		return band*info.NumBlocks() + block
	case format.BlockingBandInterleavedByBlock:
		return block*l.Bands + band
	default:
		return block
	}
}

// whole returns the block edge: 0 means the whole dimension.
func whole(edge uint64, total int) int {
	if edge == 0 {
		return total
	}

	return int(edge)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// LayoutOf reads the pixel layout of sub.
func LayoutOf(sub *record.ImageSubheader) (Layout, error) {
	rows, err := sub.Rows()
	if err != nil {
		return Layout{}, err
	}
	cols, err := sub.Cols()
	if err != nil {
		return Layout{}, err
	}
	bpp, err := sub.BytesPerPixel()
	if err != nil {
		return Layout{}, err
	}

	l := Layout{
		Rows:          int(rows),
		Cols:          int(cols),
		Bands:         sub.NumBands(),
		BytesPerPixel: bpp,
		Mode:          sub.Mode(),
	}
	if l.Rows == 0 || l.Cols == 0 {
		return Layout{}, fmt.Errorf("%w: image of %d×%d pixels", errs.ErrInvalidObject, l.Rows, l.Cols)
	}
	if l.Bands == 0 {
		return Layout{}, fmt.Errorf("%w: image has no bands", errs.ErrInvalidObject)
	}
	if !l.Mode.IsValid() {
		return Layout{}, fmt.Errorf("%w: blocking mode %q", errs.ErrInvalidObject, l.Mode)
	}

	return l, nil
}

// FromSubheader derives the block grid declared by sub. NPPBH/NPPBV of 0
// mean one block spans the dimension; NBPR/NBPC are recomputed from the
// block size rather than trusted.
func FromSubheader(sub *record.ImageSubheader) (*Info, Layout, error) {
	l, err := LayoutOf(sub)
	if err != nil {
		return nil, Layout{}, err
	}

	nppbh, err := sub.Fields.Uint("NPPBH")
	if err != nil {
		return nil, Layout{}, err
	}
	nppbv, err := sub.Fields.Uint("NPPBV")
	if err != nil {
		return nil, Layout{}, err
	}

	info := &Info{
		NumRowsPerBlock: whole(nppbv, l.Rows),
		NumColsPerBlock: whole(nppbh, l.Cols),
	}
	info.NumBlocksPerRow = ceilDiv(l.Cols, info.NumColsPerBlock)
	info.NumBlocksPerCol = ceilDiv(l.Rows, info.NumRowsPerBlock)
	info.Length = l.BandSize(info) * l.BandsPerBlock()

	if err := info.Validate(l.Rows, l.Cols); err != nil {
		return nil, Layout{}, err
	}

	return info, l, nil
}
