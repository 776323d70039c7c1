package imageio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ngageoint/six-library-sub017/blocking"
	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/format"
)

// SubWindow selects part of an image.
//
// NumRows and NumCols are the size of the result. With a down-sampler each
// result pixel covers RowSkip × ColSkip image pixels, clipped at the image
// edge, so the window spans NumRows*RowSkip image rows from StartRow.
type SubWindow struct {
	StartRow int
	StartCol int
	NumRows  int
	NumCols  int
	// Bands lists the bands to read in output order. Nil reads every band.
	Bands       []int
	DownSampler DownSampler
}

// window is a validated request in image coordinates.
type window struct {
	bands            []int
	ds               DownSampler
	r0, r1, c0, c1   int
	outRows, outCols int
}

func (w *window) inRows() int { return w.r1 - w.r0 }
func (w *window) inCols() int { return w.c1 - w.c0 }

func (s *Session) resolve(win *SubWindow, out [][]byte) (*window, error) {
	if win == nil {
		return nil, fmt.Errorf("%w: nil window", errs.ErrInvalidRequest)
	}

	w := &window{bands: win.Bands, ds: win.DownSampler, outRows: win.NumRows, outCols: win.NumCols}
	if w.ds == nil {
		w.ds = s.cfg.downSampler
	}
	rowSkip, colSkip := 1, 1
	if w.ds != nil {
		rowSkip, colSkip = w.ds.RowSkip(), w.ds.ColSkip()
	}

	if win.NumRows < 1 || win.NumCols < 1 || win.StartRow < 0 || win.StartCol < 0 {
		return nil, fmt.Errorf("%w: window %d×%d at (%d, %d)", errs.ErrInvalidRequest,
			win.NumRows, win.NumCols, win.StartRow, win.StartCol)
	}
	if win.StartRow+(win.NumRows-1)*rowSkip >= s.layout.Rows || win.StartCol+(win.NumCols-1)*colSkip >= s.layout.Cols {
		return nil, fmt.Errorf("%w: window %d×%d at (%d, %d) with skip %d×%d outside %d×%d image",
			errs.ErrInvalidRequest, win.NumRows, win.NumCols, win.StartRow, win.StartCol,
			rowSkip, colSkip, s.layout.Rows, s.layout.Cols)
	}
	w.r0, w.c0 = win.StartRow, win.StartCol
	w.r1 = min(win.StartRow+win.NumRows*rowSkip, s.layout.Rows)
	w.c1 = min(win.StartCol+win.NumCols*colSkip, s.layout.Cols)

	if w.bands == nil {
		w.bands = make([]int, s.layout.Bands)
		for i := range w.bands {
			w.bands[i] = i
		}
	}
	if len(w.bands) == 0 {
		return nil, fmt.Errorf("%w: no bands requested", errs.ErrInvalidRequest)
	}
	for _, b := range w.bands {
		if b < 0 || b >= s.layout.Bands {
			return nil, fmt.Errorf("%w: band %d of %d", errs.ErrInvalidRequest, b, s.layout.Bands)
		}
	}

	if len(out) != len(w.bands) {
		return nil, fmt.Errorf("%w: %d output buffers for %d bands", errs.ErrInvalidRequest, len(out), len(w.bands))
	}
	need := w.outRows * w.outCols * s.layout.BytesPerPixel
	for i, b := range out {
		if len(b) < need {
			return nil, fmt.Errorf("%w: output buffer %d holds %d bytes, need %d", errs.ErrInvalidRequest, i, len(b), need)
		}
	}

	if _, skipOnly := w.ds.(*PixelSkip); (w.ds != nil && !skipOnly) || len(s.cfg.transforms) > 0 {
		if err := s.px.Validate(); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// Read copies the window win into out, one buffer per requested band in
// the requested order. It reports whether any returned pixel is padding:
// it came from an absent block, or it equals the pad value inside a block
// the mask flags as padded.
//
// The request is validated before any I/O. On error the content of out is
// unchanged.
func (s *Session) Read(r io.ReadSeeker, win *SubWindow, out [][]byte) (bool, error) {
	if s.closed {
		return false, fmt.Errorf("%w: image session", errs.ErrSessionClosed)
	}
	w, err := s.resolve(win, out)
	if err != nil {
		return false, err
	}
	if err := s.Open(r); err != nil {
		return false, err
	}

	s.fetches = 0
	n := s.layout.BytesPerPixel
	stage := make([][]byte, len(w.bands))
	for i := range stage {
		stage[i] = make([]byte, w.inRows()*w.inCols()*n)
	}

	padded := false
	rpb, cpb := s.info.NumRowsPerBlock, s.info.NumColsPerBlock
	for br := w.r0 / rpb; br <= (w.r1-1)/rpb; br++ {
		for bc := w.c0 / cpb; bc <= (w.c1-1)/cpb; bc++ {
			p, err := s.readBlock(r, w, stage, br, bc)
			if err != nil {
				return false, err
			}
			padded = padded || p
		}
	}

	final := make([][]byte, len(out))
	if w.ds != nil {
		for i := range final {
			final[i] = make([]byte, w.outRows*w.outCols*n)
		}
		if err := w.ds.Apply(stage, w.inRows(), w.inCols(), final, w.outRows, w.outCols, s.px); err != nil {
			return false, err
		}
	} else {
		final = stage
	}
	if err := applyTransforms(s.cfg.transforms, final, w.outRows, w.outCols, s.cfg.workers, s.px); err != nil {
		return false, err
	}
	for i := range out {
		copy(out[i], final[i])
	}

	return padded, nil
}

// readBlock copies the part of block (br, bc) inside w into stage.
func (s *Session) readBlock(r io.ReadSeeker, w *window, stage [][]byte, br, bc int) (bool, error) {
	rpb, cpb := s.info.NumRowsPerBlock, s.info.NumColsPerBlock
	block := br*s.info.NumBlocksPerRow + bc
	rc := rect{
		by: br * rpb, bx: bc * cpb,
		y0: max(w.r0, br*rpb), y1: min(w.r1, (br+1)*rpb),
		x0: max(w.c0, bc*cpb), x1: min(w.c1, (bc+1)*cpb),
	}

	type fetched struct {
		data    []byte
		release func()
	}
	units := make(map[int]fetched, len(w.bands))
	defer func() {
		for _, f := range units {
			if f.release != nil {
				f.release()
			}
		}
	}()

	padded := false
	for k, band := range w.bands {
		unit := s.layout.UnitIndex(&s.info, band, block)
		f, ok := units[unit]
		if !ok {
			off, err := s.mask.UnitOffset(unit)
			if err != nil {
				return false, err
			}
			if off != blocking.Absent {
				data, release, err := s.fetch(r, unit)
				if err != nil {
					return false, err
				}
				f = fetched{data: data, release: release}
			}
			units[unit] = f
		}

		if f.data == nil {
			s.fillPad(w, stage[k], rc)
			padded = true

			continue
		}
		s.copyBand(w, stage[k], f.data, band, rc)
		if !padded && s.mask.HasPad(band, block) {
			padded = s.containsPad(w, stage[k], rc)
		}
	}

	return padded, nil
}

// rect is the part of one block inside a window: block origin (by, bx)
// and the image rows [y0, y1) and columns [x0, x1) it contributes.
type rect struct {
	by, bx, y0, y1, x0, x1 int
}

func (s *Session) copyBand(w *window, dst, unit []byte, band int, rc rect) {
	n := s.layout.BytesPerPixel
	cpb := s.info.NumColsPerBlock
	cols := w.inCols()
	span := (rc.x1 - rc.x0) * n

	for y := rc.y0; y < rc.y1; y++ {
		d := ((y-w.r0)*cols + (rc.x0 - w.c0)) * n
		switch s.layout.Mode {
		case format.BlockingBandInterleavedByPixel:
			nb := s.layout.Bands
			for x := rc.x0; x < rc.x1; x++ {
				src := (((y-rc.by)*cpb+(x-rc.bx))*nb + band) * n
				copy(dst[d:d+n], unit[src:src+n])
				d += n
			}
		case format.BlockingBandInterleavedByRow:
			src := (((y-rc.by)*s.layout.Bands+band)*cpb + (rc.x0 - rc.bx)) * n
			copy(dst[d:d+span], unit[src:src+span])
		default:
			src := ((y-rc.by)*cpb + (rc.x0 - rc.bx)) * n
			copy(dst[d:d+span], unit[src:src+span])
		}
	}
}

func (s *Session) fillPad(w *window, dst []byte, rc rect) {
	n := s.layout.BytesPerPixel
	cols := w.inCols()
	for y := rc.y0; y < rc.y1; y++ {
		d := ((y-w.r0)*cols + (rc.x0 - w.c0)) * n
		for x := rc.x0; x < rc.x1; x++ {
			copy(dst[d:d+n], s.pad)
			d += n
		}
	}
}

func (s *Session) containsPad(w *window, dst []byte, rc rect) bool {
	n := s.layout.BytesPerPixel
	cols := w.inCols()
	for y := rc.y0; y < rc.y1; y++ {
		d := ((y-w.r0)*cols + (rc.x0 - w.c0)) * n
		for x := rc.x0; x < rc.x1; x++ {
			if bytes.Equal(dst[d:d+n], s.pad) {
				return true
			}
			d += n
		}
	}

	return false
}
