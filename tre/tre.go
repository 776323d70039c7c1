// Package tre models Tagged Record Extensions and the ordered containers that
// hold them in file headers and subheaders.
//
// A TRE is laid out by a Description resolved through the plugin registry
// under plugin.TRE. Tags without a registered description are kept as a
// single raw binary field, so unknown TREs round trip byte for byte.
package tre

import (
	"fmt"
	"strings"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/field"
)

// Wire layout of a TRE: CETAG (6 bytes BCS-A), CEL (5 bytes BCS-N), CEDATA.
const (
	TagSize    = 6
	LengthSize = 5
	HeaderSize = TagSize + LengthSize
	MaxLength  = 99999
)

// RawField is the name of the single field of a TRE without a description.
const RawField = "raw"

// TRE is one tagged extension.
type TRE struct {
	tag    string
	desc   *Description
	fields *field.Set
}

// New creates a TRE of tag laid out by desc with every field at its fill
// value. Loops start empty since every loop count reads zero.
func New(tag string, desc *Description) (*TRE, error) {
	if err := checkTag(tag); err != nil {
		return nil, err
	}
	if desc == nil {
		return NewRaw(tag, nil)
	}

	set, err := desc.layout(field.NewSet())
	if err != nil {
		return nil, err
	}

	return &TRE{tag: tag, desc: desc, fields: set}, nil
}

// NewRaw creates a TRE that stores data as-is.
func NewRaw(tag string, data []byte) (*TRE, error) {
	if err := checkTag(tag); err != nil {
		return nil, err
	}

	f := field.NewResizable(len(data), field.Binary)
	if err := f.SetBytes(data); err != nil {
		return nil, err
	}
	set := field.NewSet()
	set.Add(RawField, f)

	return &TRE{tag: tag, fields: set}, nil
}

// Parse lays data out according to desc.
func Parse(tag string, desc *Description, data []byte) (*TRE, error) {
	if desc == nil {
		return NewRaw(tag, data)
	}
	if err := checkTag(tag); err != nil {
		return nil, err
	}

	set, err := desc.parse(data)
	if err != nil {
		return nil, err
	}

	return &TRE{tag: tag, desc: desc, fields: set}, nil
}

func checkTag(tag string) error {
	if tag == "" || len(tag) > TagSize || strings.TrimSpace(tag) != tag {
		return fmt.Errorf("%w: TRE tag %q", errs.ErrInvalidParameter, tag)
	}

	return nil
}

// Tag returns the TRE tag.
func (t *TRE) Tag() string {
	return t.tag
}

// Description returns the layout of the TRE, or nil for raw TREs.
func (t *TRE) Description() *Description {
	return t.desc
}

// IsRaw reports whether the TRE is kept as uninterpreted bytes.
func (t *TRE) IsRaw() bool {
	return t.desc == nil
}

// Fields returns the fields in layout order.
func (t *TRE) Fields() *field.Set {
	return t.fields
}

// Field returns the field named name, or nil.
func (t *TRE) Field(name string) *field.Field {
	return t.fields.Field(name)
}

// SetField stores value in the named field and re-lays out the TRE, so
// setting a loop count or a length field creates or resizes the fields that
// depend on it.
func (t *TRE) SetField(name, value string) error {
	f, ok := t.fields.Get(name)
	if !ok {
		return fmt.Errorf("%w: %s has no field %q", errs.ErrInvalidParameter, t.tag, name)
	}

	var err error
	if f.Type() == field.Binary {
		err = f.SetBytes([]byte(value))
	} else {
		err = f.SetString(value)
	}
	if err != nil {
		return fmt.Errorf("%s.%s: %w", t.tag, name, err)
	}

	return t.relayout()
}

// SetFieldBytes stores raw bytes in the named field and re-lays out the TRE.
func (t *TRE) SetFieldBytes(name string, value []byte) error {
	f, ok := t.fields.Get(name)
	if !ok {
		return fmt.Errorf("%w: %s has no field %q", errs.ErrInvalidParameter, t.tag, name)
	}
	if err := f.SetBytes(value); err != nil {
		return fmt.Errorf("%s.%s: %w", t.tag, name, err)
	}

	return t.relayout()
}

func (t *TRE) relayout() error {
	if t.desc == nil {
		return nil
	}

	set, err := t.desc.layout(t.fields)
	if err != nil {
		return err
	}
	t.fields = set

	return nil
}

// Length returns the length of the TRE data, excluding the tag and length prefix.
func (t *TRE) Length() int {
	return t.fields.Size()
}

// Bytes returns the TRE data, excluding the tag and length prefix.
func (t *TRE) Bytes() []byte {
	return t.fields.AppendBytes(make([]byte, 0, t.Length()))
}

// AppendTo appends the tag, the length and the data of the TRE to dst.
func (t *TRE) AppendTo(dst []byte) ([]byte, error) {
	n := t.Length()
	if n > MaxLength {
		return dst, fmt.Errorf("%w: %s data is %d bytes, limit %d", errs.ErrFieldOverflow, t.tag, n, MaxLength)
	}

	dst = append(dst, fmt.Sprintf("%-*s%0*d", TagSize, t.tag, LengthSize, n)...)

	return t.fields.AppendBytes(dst), nil
}

// Clone returns a deep copy. Cloning a nil TRE returns nil.
func (t *TRE) Clone() *TRE {
	if t == nil {
		return nil
	}

	return &TRE{tag: t.tag, desc: t.desc, fields: t.fields.Clone()}
}

// Equal reports whether both TREs have the same tag and field contents.
func (t *TRE) Equal(other *TRE) bool {
	if t == nil || other == nil {
		return t == other
	}

	return t.tag == other.tag && t.fields.Equal(other.fields)
}
