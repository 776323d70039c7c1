package record

import (
	"fmt"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/format"
)

// Subheader is implemented by every segment subheader type.
type Subheader[S any] interface {
	Bytes() ([]byte, error)
	Clone() S
}

// Segment is one segment of a record: its subheader and where its data lives.
//
// The offsets and lengths are set by Parse and recomputed by the writer;
// Data holds the payload of non-image segments supplied by the application.
type Segment[S Subheader[S]] struct {
	Subheader S

	SubheaderOffset uint64
	SubheaderLength uint64
	Offset          uint64
	Length          uint64

	Data []byte

	kind format.SegmentKind
}

// Segment aliases, one per kind.
type (
	ImageSegment             = Segment[*ImageSubheader]
	GraphicSegment           = Segment[*GraphicSubheader]
	LabelSegment             = Segment[*LabelSubheader]
	TextSegment              = Segment[*TextSubheader]
	DataExtensionSegment     = Segment[*DESubheader]
	ReservedExtensionSegment = Segment[*RESubheader]
)

func newSegment[S Subheader[S]](kind format.SegmentKind, sub S) *Segment[S] {
	return &Segment[S]{Subheader: sub, kind: kind}
}

// Kind returns the segment kind.
func (s *Segment[S]) Kind() format.SegmentKind {
	return s.kind
}

// SubheaderBytes serializes the subheader.
func (s *Segment[S]) SubheaderBytes() ([]byte, error) {
	return s.Subheader.Bytes()
}

// DataSpan returns the offset and length of the segment data in the file.
func (s *Segment[S]) DataSpan() (offset, length uint64) {
	return s.Offset, s.Length
}

// Payload returns the application supplied data.
func (s *Segment[S]) Payload() []byte {
	return s.Data
}

// Clone returns a deep copy.
func (s *Segment[S]) Clone() *Segment[S] {
	if s == nil {
		return nil
	}
	c := *s
	c.Subheader = s.Subheader.Clone()
	c.Data = append([]byte(nil), s.Data...)

	return &c
}

// Part is the kind independent view of a segment.
type Part interface {
	Kind() format.SegmentKind
	SubheaderBytes() ([]byte, error)
	DataSpan() (offset, length uint64)
	Payload() []byte
}

// Record is a whole NITF file: the header and its segments in file order.
type Record struct {
	Header *FileHeader

	Images             []*ImageSegment
	Graphics           []*GraphicSegment
	Labels             []*LabelSegment
	Texts              []*TextSegment
	DataExtensions     []*DataExtensionSegment
	ReservedExtensions []*ReservedExtensionSegment
}

// New creates an empty NITF 2.1 record.
func New() *Record {
	return &Record{Header: NewFileHeader()}
}

// NewImageSegment appends an image segment with a default subheader.
func (r *Record) NewImageSegment() *ImageSegment {
	s := newSegment(format.SegmentImage, NewImageSubheader())
	r.Images = append(r.Images, s)

	return s
}

// NewGraphicSegment appends a graphic segment.
func (r *Record) NewGraphicSegment() *GraphicSegment {
	s := newSegment(format.SegmentGraphic, NewGraphicSubheader())
	r.Graphics = append(r.Graphics, s)

	return s
}

// NewLabelSegment appends a label segment.
func (r *Record) NewLabelSegment() *LabelSegment {
	s := newSegment(format.SegmentLabel, NewLabelSubheader())
	r.Labels = append(r.Labels, s)

	return s
}

// NewTextSegment appends a text segment.
func (r *Record) NewTextSegment() *TextSegment {
	s := newSegment(format.SegmentText, NewTextSubheader())
	r.Texts = append(r.Texts, s)

	return s
}

// NewDataExtensionSegment appends a data extension segment with DESID id.
func (r *Record) NewDataExtensionSegment(id string) (*DataExtensionSegment, error) {
	sub, err := NewDESubheader(id)
	if err != nil {
		return nil, err
	}
	s := newSegment(format.SegmentDataExtension, sub)
	r.DataExtensions = append(r.DataExtensions, s)

	return s, nil
}

// NewReservedExtensionSegment appends a reserved extension segment with RESID id.
func (r *Record) NewReservedExtensionSegment(id string) (*ReservedExtensionSegment, error) {
	sub, err := NewRESubheader(id)
	if err != nil {
		return nil, err
	}
	s := newSegment(format.SegmentReservedExtension, sub)
	r.ReservedExtensions = append(r.ReservedExtensions, s)

	return s, nil
}

func removeAt[T any](list []T, i int) ([]T, error) {
	if i < 0 || i >= len(list) {
		return list, fmt.Errorf("%w: segment %d of %d", errs.ErrInvalidParameter, i, len(list))
	}

	return append(list[:i], list[i+1:]...), nil
}

func moveAt[T any](list []T, from, to int) error {
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
		return fmt.Errorf("%w: move %d to %d of %d segments", errs.ErrInvalidParameter, from, to, len(list))
	}
	v := list[from]
	if from < to {
		copy(list[from:to], list[from+1:to+1])
	} else {
		copy(list[to+1:from+1], list[to:from])
	}
	list[to] = v

	return nil
}

// RemoveSegment removes segment i of kind.
func (r *Record) RemoveSegment(kind format.SegmentKind, i int) error {
	var err error
	switch kind {
	case format.SegmentImage:
		r.Images, err = removeAt(r.Images, i)
	case format.SegmentGraphic:
		r.Graphics, err = removeAt(r.Graphics, i)
	case format.SegmentLabel:
		r.Labels, err = removeAt(r.Labels, i)
	case format.SegmentText:
		r.Texts, err = removeAt(r.Texts, i)
	case format.SegmentDataExtension:
		r.DataExtensions, err = removeAt(r.DataExtensions, i)
	case format.SegmentReservedExtension:
		r.ReservedExtensions, err = removeAt(r.ReservedExtensions, i)
	default:
		err = fmt.Errorf("%w: segment kind %d", errs.ErrInvalidParameter, kind)
	}

	return err
}

// RemoveImageSegment removes image segment i.
func (r *Record) RemoveImageSegment(i int) error {
	return r.RemoveSegment(format.SegmentImage, i)
}

// MoveSegment moves segment from of kind to position to, shifting the
// segments in between.
func (r *Record) MoveSegment(kind format.SegmentKind, from, to int) error {
	switch kind {
	case format.SegmentImage:
		return moveAt(r.Images, from, to)
	case format.SegmentGraphic:
		return moveAt(r.Graphics, from, to)
	case format.SegmentLabel:
		return moveAt(r.Labels, from, to)
	case format.SegmentText:
		return moveAt(r.Texts, from, to)
	case format.SegmentDataExtension:
		return moveAt(r.DataExtensions, from, to)
	case format.SegmentReservedExtension:
		return moveAt(r.ReservedExtensions, from, to)
	default:
		return fmt.Errorf("%w: segment kind %d", errs.ErrInvalidParameter, kind)
	}
}

// MoveImageSegment moves image segment from to position to.
func (r *Record) MoveImageSegment(from, to int) error {
	return r.MoveSegment(format.SegmentImage, from, to)
}

func partsOf[S Subheader[S]](list []*Segment[S]) []Part {
	parts := make([]Part, len(list))
	for i, s := range list {
		parts[i] = s
	}

	return parts
}

// Parts returns the segments of kind.
func (r *Record) Parts(kind format.SegmentKind) []Part {
	switch kind {
	case format.SegmentImage:
		return partsOf(r.Images)
	case format.SegmentGraphic:
		return partsOf(r.Graphics)
	case format.SegmentLabel:
		return partsOf(r.Labels)
	case format.SegmentText:
		return partsOf(r.Texts)
	case format.SegmentDataExtension:
		return partsOf(r.DataExtensions)
	case format.SegmentReservedExtension:
		return partsOf(r.ReservedExtensions)
	default:
		return nil
	}
}

// NumSegments returns the number of segments of kind.
func (r *Record) NumSegments(kind format.SegmentKind) int {
	return len(r.Parts(kind))
}

func cloneAll[S Subheader[S]](list []*Segment[S]) []*Segment[S] {
	if list == nil {
		return nil
	}
	out := make([]*Segment[S], len(list))
	for i, s := range list {
		out[i] = s.Clone()
	}

	return out
}

// Clone returns a deep copy of the whole record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	return &Record{
		Header:             r.Header.Clone(),
		Images:             cloneAll(r.Images),
		Graphics:           cloneAll(r.Graphics),
		Labels:             cloneAll(r.Labels),
		Texts:              cloneAll(r.Texts),
		DataExtensions:     cloneAll(r.DataExtensions),
		ReservedExtensions: cloneAll(r.ReservedExtensions),
	}
}

// SyncCounts sizes the header component lists and count fields to the
// segment lists. Lengths of segments that exist in both are kept; new
// entries take the lengths recorded on the segment.
func (r *Record) SyncCounts() error {
	for _, kind := range format.SegmentKinds() {
		parts := r.Parts(kind)
		k := kind.Index()
		var infos []ComponentInfo
		if len(parts) > 0 {
			infos = make([]ComponentInfo, len(parts))
		}
		for i, p := range parts {
			if i < len(r.Header.Components[k]) {
				infos[i] = r.Header.Components[k][i]
				continue
			}
			_, length := p.DataSpan()
			infos[i] = ComponentInfo{DataLength: length}
		}
		r.Header.Components[k] = infos

		if err := r.Header.Fields.SetUint(componentLayout[k].count, uint64(len(parts))); err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}
	}

	return nil
}
