package nitf

import (
	"fmt"
	"io"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/format"
	"github.com/ngageoint/six-library-sub017/imageio"
	"github.com/ngageoint/six-library-sub017/record"
)

// ImageSource supplies the pixels of one image segment, top to bottom.
type ImageSource interface {
	// ReadRows fills bands, one buffer per band in band order, with the
	// next rows rows of the image.
	ReadRows(rows int, bands [][]byte) error
}

// MemorySource is an ImageSource over whole band images held in memory.
type MemorySource struct {
	bands    [][]byte
	rowBytes int
	row      int
}

// NewMemorySource creates a source over bands, each a full image of rows
// rowBytes long.
func NewMemorySource(bands [][]byte, rowBytes int) (*MemorySource, error) {
	if len(bands) == 0 || rowBytes <= 0 {
		return nil, fmt.Errorf("%w: %d bands of %d-byte rows", errs.ErrInvalidParameter, len(bands), rowBytes)
	}
	for i, b := range bands {
		if len(b)%rowBytes != 0 || len(b) != len(bands[0]) {
			return nil, fmt.Errorf("%w: band %d is %d bytes", errs.ErrInvalidParameter, i, len(b))
		}
	}

	return &MemorySource{bands: bands, rowBytes: rowBytes}, nil
}

func (m *MemorySource) ReadRows(rows int, bands [][]byte) error {
	if len(bands) != len(m.bands) {
		return fmt.Errorf("%w: %d buffers for %d bands", errs.ErrInvalidRequest, len(bands), len(m.bands))
	}
	from, to := m.row*m.rowBytes, (m.row+rows)*m.rowBytes
	if to > len(m.bands[0]) {
		return fmt.Errorf("%w: rows %d..%d past the end of the source", errs.ErrInvalidRequest, m.row, m.row+rows)
	}
	for i, b := range m.bands {
		copy(bands[i], b[from:to])
	}
	m.row += rows

	return nil
}

// FileSource is an ImageSource reading each band from a seekable handle.
// Band b starts at starts[b]; after every pixel the next pixelSkip pixels
// belong to other bands, so a pixel interleaved raw file with n bands is
// read with starts 0, bpp, 2*bpp... and a pixel skip of n-1.
type FileSource struct {
	h        io.ReadSeeker
	pos      []int64
	bpp      int
	skip     int
	rowBytes int
	scratch  []byte
}

// NewFileSource creates a source over h for an image cols pixels wide.
func NewFileSource(h io.ReadSeeker, starts []int64, cols, bytesPerPixel, pixelSkip int) (*FileSource, error) {
	if h == nil || len(starts) == 0 {
		return nil, fmt.Errorf("%w: file source needs a handle and at least one band", errs.ErrInvalidParameter)
	}
	if cols <= 0 || bytesPerPixel <= 0 || pixelSkip < 0 {
		return nil, fmt.Errorf("%w: file source of %d columns, %d bytes per pixel, pixel skip %d",
			errs.ErrInvalidParameter, cols, bytesPerPixel, pixelSkip)
	}
	for b, start := range starts {
		if start < 0 {
			return nil, fmt.Errorf("%w: band %d starts at %d", errs.ErrInvalidParameter, b, start)
		}
	}

	return &FileSource{
		h:        h,
		pos:      append([]int64(nil), starts...),
		bpp:      bytesPerPixel,
		skip:     pixelSkip,
		rowBytes: cols * bytesPerPixel,
	}, nil
}

// ReadRows reads the next rows rows of every band: one read per band
// spanning the pixels and the skipped bytes between them.
func (f *FileSource) ReadRows(rows int, bands [][]byte) error {
	if len(bands) != len(f.pos) {
		return fmt.Errorf("%w: %d buffers for %d bands", errs.ErrInvalidRequest, len(bands), len(f.pos))
	}
	if rows <= 0 {
		return nil
	}
	want := rows * f.rowBytes
	stride := f.bpp * (1 + f.skip)
	pixels := want / f.bpp
	span := pixels*stride - f.skip*f.bpp

	for b, buf := range bands {
		if len(buf) < want {
			return fmt.Errorf("%w: band %d buffer of %d bytes, want %d", errs.ErrInvalidRequest, b, len(buf), want)
		}
		if _, err := f.h.Seek(f.pos[b], io.SeekStart); err != nil {
			return fmt.Errorf("%w: seek to %d: %v", errs.ErrIO, f.pos[b], err)
		}
		if f.skip == 0 {
			if _, err := io.ReadFull(f.h, buf[:want]); err != nil {
				return fmt.Errorf("%w: band %d, %d bytes at %d: %v", errs.ErrIO, b, want, f.pos[b], err)
			}
		} else {
			if cap(f.scratch) < span {
				f.scratch = make([]byte, span)
			}
			raw := f.scratch[:span]
			if _, err := io.ReadFull(f.h, raw); err != nil {
				return fmt.Errorf("%w: band %d, %d bytes at %d: %v", errs.ErrIO, b, span, f.pos[b], err)
			}
			for i := range pixels {
				copy(buf[i*f.bpp:(i+1)*f.bpp], raw[i*stride:])
			}
		}
		f.pos[b] += int64(pixels * stride)
	}

	return nil
}

// Writer lays a record out in a file: the header, then every subheader
// followed by its data, then the header again with the final lengths.
type Writer struct {
	h       io.WriteSeeker
	cfg     *Config
	rec     *record.Record
	sources map[int]ImageSource
}

// NewWriter creates a writer over h.
func NewWriter(h io.WriteSeeker, opts ...Option) (*Writer, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: nil handle", errs.ErrInvalidParameter)
	}
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Writer{h: h, cfg: cfg, sources: make(map[int]ImageSource)}, nil
}

// Prepare takes a copy of rec to write. The header segment counts follow
// the segment lists; later changes to rec are not seen.
func (w *Writer) Prepare(rec *record.Record) error {
	if rec == nil || rec.Header == nil {
		return fmt.Errorf("%w: nil record", errs.ErrInvalidParameter)
	}
	c := rec.Clone()
	if w.cfg.fhdr != "" {
		if err := c.Header.Fields.SetString("FHDR", w.cfg.fhdr); err != nil {
			return err
		}
		if err := c.Header.Fields.SetString("FVER", w.cfg.fver); err != nil {
			return err
		}
	}
	if err := c.SyncCounts(); err != nil {
		return err
	}
	w.rec = c
	w.sources = make(map[int]ImageSource)

	return nil
}

// Record returns the prepared record. After Write it holds the offsets and
// lengths of every segment as written.
func (w *Writer) Record() *record.Record {
	return w.rec
}

// SetImageSource sets where the pixels of image segment i come from.
func (w *Writer) SetImageSource(i int, src ImageSource) error {
	if w.rec == nil {
		return fmt.Errorf("%w: writer not prepared", errs.ErrInvalidObject)
	}
	if i < 0 || i >= len(w.rec.Images) || src == nil {
		return fmt.Errorf("%w: image source %d of %d", errs.ErrInvalidParameter, i, len(w.rec.Images))
	}
	w.sources[i] = src

	return nil
}

// SetSegmentData replaces the data of segment i of a non-image kind.
func (w *Writer) SetSegmentData(kind format.SegmentKind, i int, data []byte) error {
	if w.rec == nil {
		return fmt.Errorf("%w: writer not prepared", errs.ErrInvalidObject)
	}

	return setData(w.rec, kind, i, append([]byte(nil), data...))
}

func (w *Writer) writeAt(offset uint64, data []byte) error {
	if _, err := w.h.Seek(int64(offset), io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek to %d: %v", errs.ErrIO, offset, err)
	}
	if _, err := w.h.Write(data); err != nil {
		return fmt.Errorf("%w: write %d bytes at %d: %v", errs.ErrIO, len(data), offset, err)
	}

	return nil
}

// Write writes the prepared record. A CLEVEL left blank or 00 is computed
// from the written file. On error the partial output is left as it is.
func (w *Writer) Write() error {
	rec := w.rec
	if rec == nil {
		return fmt.Errorf("%w: writer not prepared", errs.ErrInvalidObject)
	}
	for i := range rec.Images {
		if w.sources[i] == nil {
			return fmt.Errorf("%w: image segment %d has no source", errs.ErrInvalidObject, i)
		}
	}

	placeholder, err := rec.Header.Bytes()
	if err != nil {
		return err
	}
	if err := w.writeAt(0, placeholder); err != nil {
		return err
	}

	offset := uint64(len(placeholder))
	for _, kind := range format.SegmentKinds() {
		for i, p := range rec.Parts(kind) {
			sub, err := p.SubheaderBytes()
			if err != nil {
				return fmt.Errorf("%s subheader %d: %w", kind, i, err)
			}
			if err := w.writeAt(offset, sub); err != nil {
				return err
			}
			dataOffset := offset + uint64(len(sub))

			var length uint64
			if kind == format.SegmentImage {
				if length, err = w.writeImage(i, dataOffset); err != nil {
					return fmt.Errorf("image segment %d: %w", i, err)
				}
			} else {
				data := p.Payload()
				if err := w.writeAt(dataOffset, data); err != nil {
					return err
				}
				length = uint64(len(data))
			}

			rec.Header.Components[kind.Index()][i] = record.ComponentInfo{
				SubheaderLength: uint64(len(sub)),
				DataLength:      length,
			}
			setSpan(rec, kind, i, offset, uint64(len(sub)), length)
			offset = dataOffset + length
		}
	}

	if err := rec.Header.Fields.SetUint("FL", offset); err != nil {
		return fmt.Errorf("FL: %w", err)
	}
	if clevel := rec.Header.Fields.String("CLEVEL"); clevel == "" || clevel == "00" {
		level, err := record.ComputeComplexityLevel(rec)
		if err != nil {
			return err
		}
		if err := rec.Header.Fields.SetString("CLEVEL", level.String()); err != nil {
			return err
		}
	}

	header, err := rec.Header.Bytes()
	if err != nil {
		return err
	}
	if len(header) != len(placeholder) {
		return fmt.Errorf("%w: header grew from %d to %d bytes", errs.ErrInvalidObject, len(placeholder), len(header))
	}
	if err := w.writeAt(0, header); err != nil {
		return err
	}
	if _, err := w.h.Seek(int64(offset), io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek to %d: %v", errs.ErrIO, offset, err)
	}
	w.cfg.logger.Debug("record written", "bytes", offset, "clevel", rec.Header.Fields.String("CLEVEL"))

	return nil
}

// writeImage pumps the source of image segment i through a block writer,
// one block row at a time.
func (w *Writer) writeImage(i int, offset uint64) (uint64, error) {
	reg, err := w.cfg.resolveRegistry()
	if err != nil {
		return 0, err
	}
	sub := w.rec.Images[i].Subheader
	opts := append([]imageio.Option{imageio.WithLogger(w.cfg.logger)}, w.cfg.imageOpts...)
	bw, err := imageio.NewWriter(w.h, sub, offset, reg, opts...)
	if err != nil {
		return 0, err
	}

	rows, err := sub.Rows()
	if err != nil {
		return 0, err
	}
	cols, err := sub.Cols()
	if err != nil {
		return 0, err
	}
	n, err := sub.BytesPerPixel()
	if err != nil {
		return 0, err
	}

	info := bw.Info()
	chunk := info.NumRowsPerBlock
	bands := make([][]byte, sub.NumBands())
	for b := range bands {
		bands[b] = make([]byte, chunk*int(cols)*n)
	}
	for done := 0; done < int(rows); {
		count := min(chunk, int(rows)-done)
		if err := w.sources[i].ReadRows(count, bands); err != nil {
			return 0, err
		}
		if err := bw.WriteRows(count, bands); err != nil {
			return 0, err
		}
		done += count
	}

	return bw.Done()
}

func setSpan(rec *record.Record, kind format.SegmentKind, i int, subOffset, subLength, length uint64) {
	set := func(so, sl, o, l *uint64) {
		*so, *sl, *o, *l = subOffset, subLength, subOffset+subLength, length
	}
	switch kind {
	case format.SegmentImage:
		s := rec.Images[i]
		set(&s.SubheaderOffset, &s.SubheaderLength, &s.Offset, &s.Length)
	case format.SegmentGraphic:
		s := rec.Graphics[i]
		set(&s.SubheaderOffset, &s.SubheaderLength, &s.Offset, &s.Length)
	case format.SegmentLabel:
		s := rec.Labels[i]
		set(&s.SubheaderOffset, &s.SubheaderLength, &s.Offset, &s.Length)
	case format.SegmentText:
		s := rec.Texts[i]
		set(&s.SubheaderOffset, &s.SubheaderLength, &s.Offset, &s.Length)
	case format.SegmentDataExtension:
		s := rec.DataExtensions[i]
		set(&s.SubheaderOffset, &s.SubheaderLength, &s.Offset, &s.Length)
	case format.SegmentReservedExtension:
		s := rec.ReservedExtensions[i]
		set(&s.SubheaderOffset, &s.SubheaderLength, &s.Offset, &s.Length)
	}
}
