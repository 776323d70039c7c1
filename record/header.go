package record

import (
	"fmt"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/field"
	"github.com/ngageoint/six-library-sub017/format"
	"github.com/ngageoint/six-library-sub017/tre"
)

// Recognized header signatures.
const (
	NITFSignature = "NITF"
	NSIFSignature = "NSIF"
	NITF21Version = "02.10"
	NSIF10Version = "01.00"
)

// ComponentInfo is the subheader and data length of one segment, as listed
// in the file header.
type ComponentInfo struct {
	SubheaderLength uint64
	DataLength      uint64
}

// FileHeader is the NITF file header.
type FileHeader struct {
	Fields   *field.Set
	Security *Security

	// Components lists the segment lengths per kind, in file order.
	Components [format.NumSegmentKinds][]ComponentInfo

	UserDefined *tre.Extensions
	Extended    *tre.Extensions
}

var fileHeaderSchema = concat(fileHeaderPrefix, fileHeaderMiddle, fileHeaderCounts, fileHeaderExtensions)

// NewFileHeader creates a NITF 2.1 header with no segments.
func NewFileHeader() *FileHeader {
	h := &FileHeader{
		Fields:      field.FromSchema(fileHeaderSchema),
		Security:    NewSecurity(),
		UserDefined: tre.NewExtensions(),
		Extended:    tre.NewExtensions(),
	}
	_ = h.Fields.SetString("FHDR", NITFSignature)
	_ = h.Fields.SetString("FVER", NITF21Version)
	_ = h.Fields.SetString("CLEVEL", "03")
	_ = h.Fields.SetString("STYPE", "BF01")

	return h
}

// Clone returns a deep copy.
func (h *FileHeader) Clone() *FileHeader {
	if h == nil {
		return nil
	}

	c := &FileHeader{
		Fields:      h.Fields.Clone(),
		Security:    h.Security.Clone(),
		UserDefined: h.UserDefined.Clone(),
		Extended:    h.Extended.Clone(),
	}
	for k := range h.Components {
		c.Components[k] = append([]ComponentInfo(nil), h.Components[k]...)
	}

	return c
}

// Version returns FHDR and FVER.
func (h *FileHeader) Version() (string, string) {
	return h.Fields.String("FHDR"), h.Fields.String("FVER")
}

// FileLength returns FL.
func (h *FileHeader) FileLength() (uint64, error) {
	return h.Fields.Uint("FL")
}

// HeaderLength returns HL.
func (h *FileHeader) HeaderLength() (uint64, error) {
	return h.Fields.Uint("HL")
}

// Length returns the serialized length of the header.
func (h *FileHeader) Length() (int, error) {
	b, err := h.Bytes()
	if err != nil {
		return 0, err
	}

	return len(b), nil
}

// checkVersion accepts NITF 2.1 and NSIF 1.0 signatures.
func checkVersion(fhdr, fver string) error {
	switch {
	case fhdr == NITFSignature && fver == NITF21Version:
	case fhdr == NSIFSignature && fver == NSIF10Version:
	default:
		return fmt.Errorf("%w: unsupported file version %q %q", errs.ErrInvalidHeader, fhdr, fver)
	}

	return nil
}

// ParseFileHeader parses a complete file header image.
func ParseFileHeader(data []byte, opts ...tre.ParseOption) (*FileHeader, error) {
	h := NewFileHeader()
	d := newDecoder("file header", data, opts)

	d.fields(h.Fields, fileHeaderPrefix)
	if d.err == nil {
		if err := checkVersion(h.Version()); err != nil {
			return nil, err
		}
	}
	h.Security.decode(d)
	d.fields(h.Fields, fileHeaderMiddle)

	for k, layout := range componentLayout {
		countField := h.Fields.Field(layout.count)
		d.fill(countField)
		n := d.count(h.Fields, layout.count)
		var infos []ComponentInfo
		if n > 0 {
			infos = make([]ComponentInfo, 0, n)
		}
		sub := field.New(layout.subheader, field.BCSN)
		dat := field.New(layout.data, field.BCSN)
		for i := 0; i < n && d.err == nil; i++ {
			d.fill(sub)
			d.fill(dat)
			s, err1 := sub.Uint()
			l, err2 := dat.Uint()
			if err1 != nil || err2 != nil {
				d.err = fmt.Errorf("%w: %s/%s %d is not numeric", errs.ErrInvalidHeader, layout.subheaderID, layout.dataID, i)
				break
			}
			infos = append(infos, ComponentInfo{SubheaderLength: s, DataLength: l})
		}
		h.Components[k] = infos
	}

	h.UserDefined = d.extensions(h.Fields, "UDHDL", "UDHOFL")
	h.Extended = d.extensions(h.Fields, "XHDL", "XHDLOFL")

	if err := d.finish(); err != nil {
		return nil, err
	}

	return h, nil
}

// Bytes serializes the header. Segment counts are written from the
// Components lists and HL from the serialized length; FL is written as
// stored.
func (h *FileHeader) Bytes() ([]byte, error) {
	if err := checkVersion(h.Version()); err != nil {
		return nil, err
	}

	e := newEncoder()
	e.fields(h.Fields, fileHeaderPrefix)
	h.Security.encode(e)
	e.fields(h.Fields, fileHeaderMiddle)
	hlOffset := e.buf.Len() - h.Fields.Field("HL").Len()

	for k, layout := range componentLayout {
		infos := h.Components[k]
		e.setCount(h.Fields, layout.count, len(infos))
		e.field(h.Fields.Field(layout.count))

		sub := field.New(layout.subheader, field.BCSN)
		dat := field.New(layout.data, field.BCSN)
		for i, info := range infos {
			if err := sub.SetUint(info.SubheaderLength); err != nil {
				e.err = fmt.Errorf("%s %d: %w", layout.subheaderID, i, err)
				break
			}
			if err := dat.SetUint(info.DataLength); err != nil {
				e.err = fmt.Errorf("%s %d: %w", layout.dataID, i, err)
				break
			}
			e.field(sub)
			e.field(dat)
		}
	}

	e.extensions(h.UserDefined, h.Fields, "UDHDL", "UDHOFL")
	e.extensions(h.Extended, h.Fields, "XHDL", "XHDLOFL")

	if e.err == nil {
		hl := h.Fields.Field("HL")
		if err := hl.SetUint(uint64(e.buf.Len())); err != nil {
			e.err = fmt.Errorf("HL: %w", err)
		} else {
			copy(e.buf.B[hlOffset:], hl.Bytes())
		}
	}

	return e.bytes()
}
