package imageio

import (
	"fmt"

	"github.com/ngageoint/six-library-sub017/errs"
)

// DownSampler reduces a full resolution window to one pixel per
// RowSkip × ColSkip cell.
//
// Apply receives one buffer per band holding inRows × inCols samples and
// fills one buffer per band with outRows × outCols samples. Output pixel
// (r, c) covers the input rows [r*RowSkip, (r+1)*RowSkip) and columns
// [c*ColSkip, (c+1)*ColSkip), clipped to the input.
type DownSampler interface {
	RowSkip() int
	ColSkip() int
	Apply(in [][]byte, inRows, inCols int, out [][]byte, outRows, outCols int, px PixelFormat) error
}

type skip struct {
	rows, cols int
}

func newSkip(rowSkip, colSkip int) (skip, error) {
	if rowSkip < 1 || colSkip < 1 {
		return skip{}, fmt.Errorf("%w: skip factors %d×%d", errs.ErrInvalidParameter, rowSkip, colSkip)
	}

	return skip{rows: rowSkip, cols: colSkip}, nil
}

func (s skip) RowSkip() int { return s.rows }
func (s skip) ColSkip() int { return s.cols }

// cell returns the input span of output pixel (r, c).
func (s skip) cell(r, c, inRows, inCols int) (r0, r1, c0, c1 int) {
	r0, c0 = r*s.rows, c*s.cols
	r1, c1 = min(r0+s.rows, inRows), min(c0+s.cols, inCols)

	return r0, r1, c0, c1
}

func (s skip) check(in [][]byte, inRows, inCols int, out [][]byte, outRows, outCols int, px PixelFormat) error {
	if len(in) != len(out) {
		return fmt.Errorf("%w: %d input bands, %d output bands", errs.ErrInvalidParameter, len(in), len(out))
	}
	if (outRows-1)*s.rows >= inRows || (outCols-1)*s.cols >= inCols {
		return fmt.Errorf("%w: %d×%d output from %d×%d input at skip %d×%d",
			errs.ErrInvalidParameter, outRows, outCols, inRows, inCols, s.rows, s.cols)
	}
	for i := range in {
		if len(in[i]) < inRows*inCols*px.Size || len(out[i]) < outRows*outCols*px.Size {
			return fmt.Errorf("%w: band %d buffer too small", errs.ErrInvalidParameter, i)
		}
	}

	return nil
}

// PixelSkip keeps the top left pixel of every cell.
type PixelSkip struct{ skip }

// NewPixelSkip creates a pixel skip down-sampler.
func NewPixelSkip(rowSkip, colSkip int) (*PixelSkip, error) {
	s, err := newSkip(rowSkip, colSkip)
	if err != nil {
		return nil, err
	}

	return &PixelSkip{s}, nil
}

// NewNearest is NewPixelSkip: the nearest neighbour of a cell is its origin.
func NewNearest(rowSkip, colSkip int) (*PixelSkip, error) {
	return NewPixelSkip(rowSkip, colSkip)
}

func (d *PixelSkip) Apply(in [][]byte, inRows, inCols int, out [][]byte, outRows, outCols int, px PixelFormat) error {
	if err := d.check(in, inRows, inCols, out, outRows, outCols, px); err != nil {
		return err
	}
	n := px.Size
	for b := range in {
		for r := range outRows {
			for c := range outCols {
				src := ((r*d.rows)*inCols + c*d.cols) * n
				dst := (r*outCols + c) * n
				copy(out[b][dst:dst+n], in[b][src:src+n])
			}
		}
	}

	return nil
}

// MaxDownSample keeps the largest sample of every cell, band by band.
// Complex samples are ranked by magnitude.
type MaxDownSample struct{ skip }

// NewMaxDownSample creates a maximum down-sampler.
func NewMaxDownSample(rowSkip, colSkip int) (*MaxDownSample, error) {
	s, err := newSkip(rowSkip, colSkip)
	if err != nil {
		return nil, err
	}

	return &MaxDownSample{s}, nil
}

func (d *MaxDownSample) Apply(in [][]byte, inRows, inCols int, out [][]byte, outRows, outCols int, px PixelFormat) error {
	if err := d.check(in, inRows, inCols, out, outRows, outCols, px); err != nil {
		return err
	}
	n := px.Size
	for b := range in {
		for r := range outRows {
			for c := range outCols {
				r0, r1, c0, c1 := d.cell(r, c, inRows, inCols)
				best := in[b][(r0*inCols+c0)*n:][:n]
				for y := r0; y < r1; y++ {
					for x := c0; x < c1; x++ {
						s := in[b][(y*inCols+x)*n:][:n]
						if px.greater(s, best) {
							best = s
						}
					}
				}
				copy(out[b][(r*outCols+c)*n:], best)
			}
		}
	}

	return nil
}

// pairSelector picks one input pixel per cell from two bands and copies
// both of its samples.
type pairSelector struct {
	skip
	better func(px PixelFormat, a0, a1, b0, b1 []byte) bool
}

func (d *pairSelector) Apply(in [][]byte, inRows, inCols int, out [][]byte, outRows, outCols int, px PixelFormat) error {
	if len(in) != 2 {
		return fmt.Errorf("%w: down-sampler needs exactly 2 bands, got %d", errs.ErrInvalidParameter, len(in))
	}
	if err := d.check(in, inRows, inCols, out, outRows, outCols, px); err != nil {
		return err
	}
	n := px.Size
	for r := range outRows {
		for c := range outCols {
			r0, r1, c0, c1 := d.cell(r, c, inRows, inCols)
			best := (r0*inCols + c0) * n
			for y := r0; y < r1; y++ {
				for x := c0; x < c1; x++ {
					i := (y*inCols + x) * n
					if d.better(px, in[0][i:i+n], in[1][i:i+n], in[0][best:best+n], in[1][best:best+n]) {
						best = i
					}
				}
			}
			dst := (r*outCols + c) * n
			copy(out[0][dst:dst+n], in[0][best:best+n])
			copy(out[1][dst:dst+n], in[1][best:best+n])
		}
	}

	return nil
}

// SumSqDownSample keeps, for a two band image, the pixel of every cell
// whose bands have the largest sum of squares, as for I/Q pairs.
type SumSqDownSample struct{ pairSelector }

// NewSumSqDownSample creates a sum of squares down-sampler.
func NewSumSqDownSample(rowSkip, colSkip int) (*SumSqDownSample, error) {
	s, err := newSkip(rowSkip, colSkip)
	if err != nil {
		return nil, err
	}

	return &SumSqDownSample{pairSelector{skip: s, better: func(px PixelFormat, a0, a1, b0, b1 []byte) bool {
		va0, va1, vb0, vb1 := px.value(a0), px.value(a1), px.value(b0), px.value(b1)
		return va0*va0+va1*va1 > vb0*vb0+vb1*vb1
	}}}, nil
}

// Select2DownSample keeps, for a two band image, the pixel of every cell
// with the largest first band sample.
type Select2DownSample struct{ pairSelector }

// NewSelect2DownSample creates a first band selecting down-sampler.
func NewSelect2DownSample(rowSkip, colSkip int) (*Select2DownSample, error) {
	s, err := newSkip(rowSkip, colSkip)
	if err != nil {
		return nil, err
	}

	return &Select2DownSample{pairSelector{skip: s, better: func(px PixelFormat, a0, _, b0, _ []byte) bool {
		return px.greater(a0, b0)
	}}}, nil
}
