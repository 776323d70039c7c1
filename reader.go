package nitf

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/format"
	"github.com/ngageoint/six-library-sub017/imageio"
	"github.com/ngageoint/six-library-sub017/record"
)

// Reader parses a NITF file and hands out readers for its segments.
//
// A Reader and everything it returns share one handle, so none of them is
// safe for concurrent use.
type Reader struct {
	h      io.ReadSeeker
	cfg    *Config
	rec    *record.Record
	images []*ImageReader
	closed bool
}

// NewReader creates a reader over h. Nothing is read until Read.
func NewReader(h io.ReadSeeker, opts ...Option) (*Reader, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: nil handle", errs.ErrInvalidParameter)
	}
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Reader{h: h, cfg: cfg}, nil
}

// Read parses the file header and every subheader. Segment data stays in
// the file; each segment records where it is.
func (r *Reader) Read() (*record.Record, error) {
	if r.closed {
		return nil, fmt.Errorf("%w: reader", errs.ErrSessionClosed)
	}
	reg, err := r.cfg.resolveRegistry()
	if err != nil {
		return nil, err
	}

	rec, err := record.Parse(r.h, r.cfg.parseOptions(reg)...)
	if err != nil {
		return nil, err
	}
	r.rec = rec
	r.cfg.logger.Debug("record read",
		"images", len(rec.Images), "graphics", len(rec.Graphics), "labels", len(rec.Labels),
		"texts", len(rec.Texts), "des", len(rec.DataExtensions), "res", len(rec.ReservedExtensions))

	return rec, nil
}

// Record returns the record of the last Read, or nil.
func (r *Reader) Record() *record.Record {
	return r.rec
}

func (r *Reader) record() (*record.Record, error) {
	if r.rec != nil {
		return r.rec, nil
	}

	return r.Read()
}

// NewImageReader opens a new session on image segment i. Closing the
// Reader closes it too.
func (r *Reader) NewImageReader(i int) (*ImageReader, error) {
	if r.closed {
		return nil, fmt.Errorf("%w: reader", errs.ErrSessionClosed)
	}
	rec, err := r.record()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(rec.Images) {
		return nil, fmt.Errorf("%w: image segment %d of %d", errs.ErrInvalidParameter, i, len(rec.Images))
	}
	reg, err := r.cfg.resolveRegistry()
	if err != nil {
		return nil, err
	}

	seg := rec.Images[i]
	opts := append([]imageio.Option{imageio.WithLogger(r.cfg.logger)}, r.cfg.imageOpts...)
	s, err := imageio.New(seg.Subheader, seg.Offset, seg.Length, reg, opts...)
	if err != nil {
		return nil, fmt.Errorf("image segment %d: %w", i, err)
	}
	ir := &ImageReader{h: r.h, session: s}
	r.images = append(r.images, ir)

	return ir, nil
}

// SegmentReader returns the data of segment i of kind.
func (r *Reader) SegmentReader(kind format.SegmentKind, i int) (*io.SectionReader, error) {
	if r.closed {
		return nil, fmt.Errorf("%w: reader", errs.ErrSessionClosed)
	}
	rec, err := r.record()
	if err != nil {
		return nil, err
	}
	parts := rec.Parts(kind)
	if i < 0 || i >= len(parts) {
		return nil, fmt.Errorf("%w: %s segment %d of %d", errs.ErrInvalidParameter, kind, i, len(parts))
	}
	offset, length := parts[i].DataSpan()

	return io.NewSectionReader(readerAt(r.h), int64(offset), int64(length)), nil
}

// Close closes every image reader. The handle is left open.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var result *multierror.Error
	for _, ir := range r.images {
		if err := ir.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	r.images = nil

	return result.ErrorOrNil()
}

// ImageReader reads windows of one image segment.
type ImageReader struct {
	h       io.ReadSeeker
	session *imageio.Session
}

// Read copies win into out. See imageio.Session.Read.
func (ir *ImageReader) Read(win *imageio.SubWindow, out [][]byte) (bool, error) {
	return ir.session.Read(ir.h, win, out)
}

// Session returns the underlying image session.
func (ir *ImageReader) Session() *imageio.Session {
	return ir.session
}

// Close closes the session.
func (ir *ImageReader) Close() error {
	return ir.session.Close()
}

// readerAt adapts h to io.ReaderAt. Handles that cannot read at an offset
// are driven by seeking under a lock.
func readerAt(h io.ReadSeeker) io.ReaderAt {
	if ra, ok := h.(io.ReaderAt); ok {
		return ra
	}

	return &seekReaderAt{h: h}
}

type seekReaderAt struct {
	mu sync.Mutex
	h  io.ReadSeeker
}

func (s *seekReaderAt) ReadAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.h.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}

	return io.ReadFull(s.h, p)
}

// IsNITF reports whether h starts with a NITF 2.1 or NSIF 1.0 signature.
func IsNITF(h io.ReadSeeker) bool {
	return record.IsNITF(h)
}

// ReadFile parses the file at path and loads the data of every segment
// except images, whose pixels need an image session.
func ReadFile(path string, opts ...Option) (*record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}
	defer f.Close()

	r, err := NewReader(f, opts...)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	rec, err := r.Read()
	if err != nil {
		return nil, err
	}

	for _, kind := range format.SegmentKinds() {
		if kind == format.SegmentImage {
			continue
		}
		for i, p := range rec.Parts(kind) {
			_, length := p.DataSpan()
			data := make([]byte, length)
			sr, err := r.SegmentReader(kind, i)
			if err != nil {
				return nil, err
			}
			if _, err := io.ReadFull(sr, data); err != nil {
				return nil, fmt.Errorf("%w: %s segment %d: %v", errs.ErrIO, kind, i, err)
			}
			if err := setData(rec, kind, i, data); err != nil {
				return nil, err
			}
		}
	}

	return rec, nil
}

// setData stores data as the payload of segment i of kind.
func setData(rec *record.Record, kind format.SegmentKind, i int, data []byte) error {
	n := rec.NumSegments(kind)
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %s segment %d of %d", errs.ErrInvalidParameter, kind, i, n)
	}
	switch kind {
	case format.SegmentGraphic:
		rec.Graphics[i].Data = data
	case format.SegmentLabel:
		rec.Labels[i].Data = data
	case format.SegmentText:
		rec.Texts[i].Data = data
	case format.SegmentDataExtension:
		rec.DataExtensions[i].Data = data
	case format.SegmentReservedExtension:
		rec.ReservedExtensions[i].Data = data
	default:
		return fmt.Errorf("%w: %s segments take their data from an image source", errs.ErrInvalidParameter, kind)
	}

	return nil
}
