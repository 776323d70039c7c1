package record

import (
	"fmt"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/field"
	"github.com/ngageoint/six-library-sub017/format"
	"github.com/ngageoint/six-library-sub017/tre"
)

// TREOverflowID is the DESID of a data extension that carries TREs which
// did not fit their header.
const TREOverflowID = "TRE_OVERFLOW"

// plainLayout describes the graphic, text and label subheaders: a prefix,
// the security group, a body and an extended subheader area.
type plainLayout struct {
	what     string
	kind     format.SegmentKind
	prefix   field.Schema
	body     field.Schema
	length   string
	overflow string
}

var (
	graphicLayout = plainLayout{
		what: "graphic subheader", kind: format.SegmentGraphic,
		prefix: graphicPrefix, body: graphicBody, length: "SXSHDL", overflow: "SXSOFL",
	}
	labelLayout = plainLayout{
		what: "label subheader", kind: format.SegmentLabel,
		prefix: labelPrefix, body: labelBody, length: "LXSHDL", overflow: "LXSOFL",
	}
	textLayout = plainLayout{
		what: "text subheader", kind: format.SegmentText,
		prefix: textPrefix, body: textBody, length: "TXSHDL", overflow: "TXSOFL",
	}
)

func (l plainLayout) schema() field.Schema {
	return concat(l.prefix, l.body, field.Schema{
		named(extendedLength, l.length),
		named(extendedOverflow, l.overflow),
	})
}

// plainSubheader is the shared state of graphic, text and label subheaders.
type plainSubheader struct {
	Fields   *field.Set
	Security *Security
	Extended *tre.Extensions
}

func newPlain(l plainLayout) plainSubheader {
	p := plainSubheader{
		Fields:   field.FromSchema(l.schema()),
		Security: NewSecurity(),
		Extended: tre.NewExtensions(),
	}
	_ = p.Fields.SetString(l.prefix[0].Name, l.kind.PartType())

	return p
}

func (p plainSubheader) clone() plainSubheader {
	return plainSubheader{
		Fields:   p.Fields.Clone(),
		Security: p.Security.Clone(),
		Extended: p.Extended.Clone(),
	}
}

func (p *plainSubheader) parse(l plainLayout, data []byte, opts []tre.ParseOption) error {
	d := newDecoder(l.what, data, opts)
	d.fields(p.Fields, l.prefix)
	p.Security.decode(d)
	d.fields(p.Fields, l.body)
	p.Extended = d.extensions(p.Fields, l.length, l.overflow)
	if err := d.finish(); err != nil {
		return err
	}

	return checkPartType(l.what, p.Fields.String(l.prefix[0].Name), l.kind)
}

func (p *plainSubheader) bytes(l plainLayout) ([]byte, error) {
	e := newEncoder()
	e.fields(p.Fields, l.prefix)
	p.Security.encode(e)
	e.fields(p.Fields, l.body)
	e.extensions(p.Extended, p.Fields, l.length, l.overflow)

	return e.bytes()
}

func checkPartType(what, got string, kind format.SegmentKind) error {
	if got != kind.PartType() {
		return fmt.Errorf("%w: %s starts with %q, want %q", errs.ErrInvalidHeader, what, got, kind.PartType())
	}

	return nil
}

// GraphicSubheader is the subheader of a graphic (CGM) segment.
type GraphicSubheader struct {
	plainSubheader
}

// NewGraphicSubheader creates a CGM graphic subheader.
func NewGraphicSubheader() *GraphicSubheader {
	s := &GraphicSubheader{newPlain(graphicLayout)}
	_ = s.Fields.SetString("SFMT", "C")
	_ = s.Fields.SetString("SDLVL", "001")
	_ = s.Fields.SetString("SCOLOR", "C")

	return s
}

// ParseGraphicSubheader parses a graphic subheader image.
func ParseGraphicSubheader(data []byte, opts ...tre.ParseOption) (*GraphicSubheader, error) {
	s := &GraphicSubheader{newPlain(graphicLayout)}
	if err := s.parse(graphicLayout, data, opts); err != nil {
		return nil, err
	}

	return s, nil
}

// Bytes serializes the subheader.
func (s *GraphicSubheader) Bytes() ([]byte, error) {
	return s.bytes(graphicLayout)
}

// Clone returns a deep copy.
func (s *GraphicSubheader) Clone() *GraphicSubheader {
	if s == nil {
		return nil
	}

	return &GraphicSubheader{s.clone()}
}

// TextSubheader is the subheader of a text segment.
type TextSubheader struct {
	plainSubheader
}

// NewTextSubheader creates a subheader for plain (STA) text.
func NewTextSubheader() *TextSubheader {
	s := &TextSubheader{newPlain(textLayout)}
	_ = s.Fields.SetString("TXTFMT", "STA")

	return s
}

// ParseTextSubheader parses a text subheader image.
func ParseTextSubheader(data []byte, opts ...tre.ParseOption) (*TextSubheader, error) {
	s := &TextSubheader{newPlain(textLayout)}
	if err := s.parse(textLayout, data, opts); err != nil {
		return nil, err
	}

	return s, nil
}

// Bytes serializes the subheader.
func (s *TextSubheader) Bytes() ([]byte, error) {
	return s.bytes(textLayout)
}

// Clone returns a deep copy.
func (s *TextSubheader) Clone() *TextSubheader {
	if s == nil {
		return nil
	}

	return &TextSubheader{s.clone()}
}

// LabelSubheader is the subheader of a label segment.
type LabelSubheader struct {
	plainSubheader
}

// NewLabelSubheader creates a label subheader with black text on a white
// background.
func NewLabelSubheader() *LabelSubheader {
	s := &LabelSubheader{newPlain(labelLayout)}
	_ = s.Fields.SetString("LDLVL", "001")
	_ = s.Fields.Field("LBC").SetBytes([]byte{0xff, 0xff, 0xff})

	return s
}

// ParseLabelSubheader parses a label subheader image.
func ParseLabelSubheader(data []byte, opts ...tre.ParseOption) (*LabelSubheader, error) {
	s := &LabelSubheader{newPlain(labelLayout)}
	if err := s.parse(labelLayout, data, opts); err != nil {
		return nil, err
	}

	return s, nil
}

// Bytes serializes the subheader.
func (s *LabelSubheader) Bytes() ([]byte, error) {
	return s.bytes(labelLayout)
}

// Clone returns a deep copy.
func (s *LabelSubheader) Clone() *LabelSubheader {
	if s == nil {
		return nil
	}

	return &LabelSubheader{s.clone()}
}

// DESubheader is the subheader of a data extension segment.
//
// DESOFLW and DESITEM are only present for TRE_OVERFLOW segments.
// UserDefined holds the DESSHL bytes of user-defined subheader fields.
type DESubheader struct {
	Fields      *field.Set
	Security    *Security
	UserDefined []byte
}

var deSchema = concat(dePrefix, deOverflow, field.Schema{deSubheaderLength})

// NewDESubheader creates a data extension subheader for id.
func NewDESubheader(id string) (*DESubheader, error) {
	s := &DESubheader{Fields: field.FromSchema(deSchema), Security: NewSecurity()}
	_ = s.Fields.SetString("DE", format.SegmentDataExtension.PartType())
	_ = s.Fields.SetString("DESVER", "01")
	if err := s.Fields.SetString("DESID", id); err != nil {
		return nil, err
	}

	return s, nil
}

// ID returns DESID.
func (s *DESubheader) ID() string {
	return s.Fields.String("DESID")
}

// IsTREOverflow reports whether the segment carries overflowed TREs.
func (s *DESubheader) IsTREOverflow() bool {
	return s.ID() == TREOverflowID
}

// SetOverflow names the header whose TREs the segment continues: DESOFLW is
// one of UDHD, UDID, XHD, IXSHD, SXSHD, TXSHD and DESITEM the segment number.
func (s *DESubheader) SetOverflow(source string, item int) error {
	if !s.IsTREOverflow() {
		return fmt.Errorf("%w: DESID %q is not %s", errs.ErrInvalidParameter, s.ID(), TREOverflowID)
	}
	if err := s.Fields.SetString("DESOFLW", source); err != nil {
		return err
	}

	return s.Fields.SetUint("DESITEM", uint64(item))
}

// Clone returns a deep copy.
func (s *DESubheader) Clone() *DESubheader {
	if s == nil {
		return nil
	}

	return &DESubheader{
		Fields:      s.Fields.Clone(),
		Security:    s.Security.Clone(),
		UserDefined: append([]byte(nil), s.UserDefined...),
	}
}

// ParseDESubheader parses a data extension subheader image.
func ParseDESubheader(data []byte) (*DESubheader, error) {
	s := &DESubheader{Fields: field.FromSchema(deSchema), Security: NewSecurity()}
	d := newDecoder("data extension subheader", data, nil)
	d.fields(s.Fields, dePrefix)
	s.Security.decode(d)
	if d.err == nil && s.IsTREOverflow() {
		d.fields(s.Fields, deOverflow)
	}
	d.fill(s.Fields.Field(deSubheaderLength.Name))
	s.UserDefined = append([]byte(nil), d.take(d.count(s.Fields, deSubheaderLength.Name))...)
	if err := d.finish(); err != nil {
		return nil, err
	}
	if err := checkPartType(d.what, s.Fields.String("DE"), format.SegmentDataExtension); err != nil {
		return nil, err
	}

	return s, nil
}

// Bytes serializes the subheader; DESSHL is written from UserDefined.
func (s *DESubheader) Bytes() ([]byte, error) {
	e := newEncoder()
	e.fields(s.Fields, dePrefix)
	s.Security.encode(e)
	if s.IsTREOverflow() {
		e.fields(s.Fields, deOverflow)
	}
	e.setCount(s.Fields, deSubheaderLength.Name, len(s.UserDefined))
	e.field(s.Fields.Field(deSubheaderLength.Name))
	_, _ = e.buf.Write(s.UserDefined)

	return e.bytes()
}

// RESubheader is the subheader of a reserved extension segment.
type RESubheader struct {
	Fields      *field.Set
	Security    *Security
	UserDefined []byte
}

var reSchema = concat(rePrefix, field.Schema{reSubheaderLength})

// NewRESubheader creates a reserved extension subheader for id.
func NewRESubheader(id string) (*RESubheader, error) {
	s := &RESubheader{Fields: field.FromSchema(reSchema), Security: NewSecurity()}
	_ = s.Fields.SetString("RE", format.SegmentReservedExtension.PartType())
	_ = s.Fields.SetString("RESVER", "01")
	if err := s.Fields.SetString("RESID", id); err != nil {
		return nil, err
	}

	return s, nil
}

// ID returns RESID.
func (s *RESubheader) ID() string {
	return s.Fields.String("RESID")
}

// Clone returns a deep copy.
func (s *RESubheader) Clone() *RESubheader {
	if s == nil {
		return nil
	}

	return &RESubheader{
		Fields:      s.Fields.Clone(),
		Security:    s.Security.Clone(),
		UserDefined: append([]byte(nil), s.UserDefined...),
	}
}

// ParseRESubheader parses a reserved extension subheader image.
func ParseRESubheader(data []byte) (*RESubheader, error) {
	s := &RESubheader{Fields: field.FromSchema(reSchema), Security: NewSecurity()}
	d := newDecoder("reserved extension subheader", data, nil)
	d.fields(s.Fields, rePrefix)
	s.Security.decode(d)
	d.fill(s.Fields.Field(reSubheaderLength.Name))
	s.UserDefined = append([]byte(nil), d.take(d.count(s.Fields, reSubheaderLength.Name))...)
	if err := d.finish(); err != nil {
		return nil, err
	}
	if err := checkPartType(d.what, s.Fields.String("RE"), format.SegmentReservedExtension); err != nil {
		return nil, err
	}

	return s, nil
}

// Bytes serializes the subheader; RESSHL is written from UserDefined.
func (s *RESubheader) Bytes() ([]byte, error) {
	e := newEncoder()
	e.fields(s.Fields, rePrefix)
	s.Security.encode(e)
	e.setCount(s.Fields, reSubheaderLength.Name, len(s.UserDefined))
	e.field(s.Fields.Field(reSubheaderLength.Name))
	_, _ = e.buf.Write(s.UserDefined)

	return e.bytes()
}
