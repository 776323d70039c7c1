package imageio

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/ngageoint/six-library-sub017/endian"
	"github.com/ngageoint/six-library-sub017/errs"
)

// Transform rewrites the samples of a window after it has been read.
//
// ApplyRows receives one band buffer of cols samples per row and must only
// touch rows [from, to). Calls for disjoint row ranges run concurrently.
type Transform interface {
	ApplyRows(buf []byte, cols, from, to int, px PixelFormat) error
}

// ByteSwap converts samples from file byte order to host byte order.
// Complex samples are swapped component by component.
type ByteSwap struct{}

func (ByteSwap) ApplyRows(buf []byte, cols, from, to int, px PixelFormat) error {
	row := cols * px.Size
	if to*row > len(buf) {
		return fmt.Errorf("%w: rows %d..%d outside buffer", errs.ErrInvalidParameter, from, to)
	}
	if endian.CompareNativeEndian(endian.GetFileEngine()) {
		return nil
	}
	endian.SwapInPlace(buf[from*row:to*row], px.component())

	return nil
}

// Scale maps every sample v to v*Factor + Offset, saturating integer
// samples. It expects samples in file byte order, so it must run before
// ByteSwap. Complex samples have Offset added to the real part only.
type Scale struct {
	Factor float64
	Offset float64
}

func (s Scale) ApplyRows(buf []byte, cols, from, to int, px PixelFormat) error {
	row := cols * px.Size
	if to*row > len(buf) {
		return fmt.Errorf("%w: rows %d..%d outside buffer", errs.ErrInvalidParameter, from, to)
	}
	for i := from * row; i < to*row; i += px.Size {
		px.scale(buf[i:i+px.Size], s.Factor, s.Offset)
	}

	return nil
}

// rowRanges splits rows into at most workers non-overlapping ranges.
func rowRanges(rows, workers int) [][2]int {
	if workers > rows {
		workers = rows
	}
	if workers < 1 {
		return nil
	}
	out := make([][2]int, 0, workers)
	per, extra := rows/workers, rows%workers
	from := 0
	for i := range workers {
		n := per
		if i < extra {
			n++
		}
		out = append(out, [2]int{from, from + n})
		from += n
	}

	return out
}

// applyTransforms runs every transform over every band, splitting the rows
// across workers. All goroutines are joined before it returns.
func applyTransforms(transforms []Transform, bands [][]byte, rows, cols, workers int, px PixelFormat) error {
	if len(transforms) == 0 || rows == 0 {
		return nil
	}

	ranges := rowRanges(rows, workers)
	for _, t := range transforms {
		var (
			wg     sync.WaitGroup
			mu     sync.Mutex
			result *multierror.Error
		)
		for _, rg := range ranges {
			wg.Add(1)
			go func(from, to int) {
				defer wg.Done()
				for _, buf := range bands {
					if err := t.ApplyRows(buf, cols, from, to, px); err != nil {
						mu.Lock()
						result = multierror.Append(result, err)
						mu.Unlock()

						return
					}
				}
			}(rg[0], rg[1])
		}
		wg.Wait()
		if err := result.ErrorOrNil(); err != nil {
			return err
		}
	}

	return nil
}
