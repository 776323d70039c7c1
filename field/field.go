// Package field implements the fixed-width value cells that make up every NITF
// header, subheader and TRE.
//
// A Field owns a byte buffer of exactly its declared width. Text fields are
// stored as the format stores them: BCS-A values are left justified and space
// filled, BCS-N values are right justified and zero filled, and binary values
// are raw bytes. Setters validate the value against the width and type and
// return errs.ErrFieldOverflow rather than truncating.
package field

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ngageoint/six-library-sub017/endian"
	"github.com/ngageoint/six-library-sub017/errs"
)

// Type is the storage type of a field.
type Type uint8

const (
	BCSA   Type = 0x1 // BCSA is basic character set alphanumeric text, space filled on the right.
	BCSN   Type = 0x2 // BCSN is basic character set numeric text, zero filled on the left.
	Binary Type = 0x3 // Binary is raw bytes, zero filled.
)

func (t Type) String() string {
	switch t {
	case BCSA:
		return "BCS-A"
	case BCSN:
		return "BCS-N"
	case Binary:
		return "Binary"
	default:
		return "Unknown"
	}
}

// fill returns the byte used to initialize a field of type t.
func (t Type) fill() byte {
	switch t {
	case BCSA:
		return ' '
	case BCSN:
		return '0'
	default:
		return 0
	}
}

// Field is a fixed-width typed value cell.
type Field struct {
	typ       Type
	raw       []byte
	resizable bool
}

// New creates a field of exactly size bytes initialized with the fill value of typ.
func New(size int, typ Type) *Field {
	if size < 0 {
		size = 0
	}
	f := &Field{typ: typ, raw: make([]byte, size)}
	f.Reset()

	return f
}

// NewResizable creates a field whose width follows the values assigned to it.
// It is used for variable-length content such as comments or conditional TRE fields.
func NewResizable(size int, typ Type) *Field {
	f := New(size, typ)
	f.resizable = true

	return f
}

// NewString creates a field of the given width holding s.
func NewString(size int, typ Type, s string) (*Field, error) {
	f := New(size, typ)
	if err := f.SetString(s); err != nil {
		return nil, err
	}

	return f, nil
}

// Type returns the storage type of the field.
func (f *Field) Type() Type {
	return f.typ
}

// Len returns the width of the field in bytes.
func (f *Field) Len() int {
	return len(f.raw)
}

// Resizable reports whether the width follows assigned values.
func (f *Field) Resizable() bool {
	return f.resizable
}

// Reset overwrites the whole field with its fill value.
func (f *Field) Reset() {
	fill := f.typ.fill()
	for i := range f.raw {
		f.raw[i] = fill
	}
}

// Resize changes the width of the field and resets its content.
func (f *Field) Resize(size int) {
	if size < 0 {
		size = 0
	}
	f.raw = make([]byte, size)
	f.Reset()
}

// Bytes returns the raw content. The returned slice aliases the field buffer.
func (f *Field) Bytes() []byte {
	return f.raw
}

// String returns the raw content as a string, padding included.
func (f *Field) String() string {
	return string(f.raw)
}

// Trimmed returns the content with surrounding spaces removed.
func (f *Field) Trimmed() string {
	return strings.TrimSpace(string(f.raw))
}

// IsBlank reports whether a text field holds only spaces.
func (f *Field) IsBlank() bool {
	return f.typ != Binary && len(bytes.TrimSpace(f.raw)) == 0
}

// SetBytes copies data into the field.
//
// Data shorter than the width is padded the same way as SetString; binary
// fields require the exact width.
func (f *Field) SetBytes(data []byte) error {
	if f.resizable && len(data) != len(f.raw) {
		f.Resize(len(data))
	}
	if len(data) > len(f.raw) {
		return fmt.Errorf("%w: %d bytes into %s field of width %d", errs.ErrFieldOverflow, len(data), f.typ, len(f.raw))
	}

	switch {
	case len(data) == len(f.raw):
		copy(f.raw, data)
	case f.typ == BCSA:
		f.fillRight(data)
	case f.typ == BCSN:
		f.fillLeft(data)
	default:
		return fmt.Errorf("%w: binary field of width %d needs exactly %d bytes, got %d",
			errs.ErrInvalidParameter, len(f.raw), len(f.raw), len(data))
	}

	return nil
}

// SetString validates s against the field type and stores it.
func (f *Field) SetString(s string) error {
	switch f.typ {
	case Binary:
		return fmt.Errorf("%w: string set on binary field", errs.ErrInvalidParameter)
	case BCSA:
		if err := checkBCSA(s); err != nil {
			return err
		}
	case BCSN:
		if err := checkBCSN(s); err != nil {
			return err
		}
	}

	return f.SetBytes([]byte(s))
}

// SetInt stores v as decimal text, or big-endian two's complement for binary fields.
func (f *Field) SetInt(v int64) error {
	if f.typ == Binary {
		return f.setBinary(uint64(v), v < 0)
	}

	return f.SetBytes(strconv.AppendInt(nil, v, 10))
}

// SetUint stores v as decimal text, or big-endian for binary fields.
func (f *Field) SetUint(v uint64) error {
	if f.typ == Binary {
		return f.setBinary(v, false)
	}

	return f.SetBytes(strconv.AppendUint(nil, v, 10))
}

// SetFloat stores v as left justified fixed point text, keeping as many decimal
// places as the width allows. plus forces a leading sign for positive values.
func (f *Field) SetFloat(v float64, plus bool) error {
	if f.typ == Binary {
		switch len(f.raw) {
		case 4:
			endian.GetFileEngine().PutUint32(f.raw, math.Float32bits(float32(v)))
			return nil
		case 8:
			endian.GetFileEngine().PutUint64(f.raw, math.Float64bits(v))
			return nil
		default:
			return fmt.Errorf("%w: binary real needs width 4 or 8, got %d", errs.ErrInvalidParameter, len(f.raw))
		}
	}

	width := len(f.raw)
	for prec := width; prec >= 0; prec-- {
		s := strconv.FormatFloat(v, 'f', prec, 64)
		if plus && v >= 0 {
			s = "+" + s
		}
		if len(s) <= width {
			return f.SetBytes([]byte(s))
		}
	}

	return fmt.Errorf("%w: %g does not fit width %d", errs.ErrFieldOverflow, v, width)
}

// Int returns the field as a signed integer. Blank text fields read as zero.
func (f *Field) Int() (int64, error) {
	if f.typ == Binary {
		u, err := f.binaryValue()
		if err != nil {
			return 0, err
		}
		switch len(f.raw) {
		case 1:
			return int64(int8(u)), nil
		case 2:
			return int64(int16(u)), nil
		case 4:
			return int64(int32(u)), nil
		default:
			return int64(u), nil
		}
	}

	s := f.Trimmed()
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(strings.TrimPrefix(s, "+"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: field value %q is not an integer", errs.ErrInvalidParameter, s)
	}

	return v, nil
}

// Uint returns the field as an unsigned integer. Blank text fields read as zero.
func (f *Field) Uint() (uint64, error) {
	if f.typ == Binary {
		return f.binaryValue()
	}

	s := f.Trimmed()
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: field value %q is not an unsigned integer", errs.ErrInvalidParameter, s)
	}

	return v, nil
}

// Float returns the field as a real number.
func (f *Field) Float() (float64, error) {
	if f.typ == Binary {
		switch len(f.raw) {
		case 4:
			return float64(math.Float32frombits(endian.GetFileEngine().Uint32(f.raw))), nil
		case 8:
			return math.Float64frombits(endian.GetFileEngine().Uint64(f.raw)), nil
		default:
			return 0, fmt.Errorf("%w: binary real needs width 4 or 8, got %d", errs.ErrInvalidParameter, len(f.raw))
		}
	}

	s := f.Trimmed()
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: field value %q is not a real number", errs.ErrInvalidParameter, s)
	}

	return v, nil
}

// Clone returns a deep copy of the field. Cloning a nil field returns nil.
func (f *Field) Clone() *Field {
	if f == nil {
		return nil
	}

	return &Field{
		typ:       f.typ,
		raw:       append(make([]byte, 0, len(f.raw)), f.raw...),
		resizable: f.resizable,
	}
}

// Equal reports whether both fields have the same type and content.
func (f *Field) Equal(other *Field) bool {
	if f == nil || other == nil {
		return f == other
	}

	return f.typ == other.typ && bytes.Equal(f.raw, other.raw)
}

// fillRight copies data and pads with spaces on the right.
func (f *Field) fillRight(data []byte) {
	n := copy(f.raw, data)
	for i := n; i < len(f.raw); i++ {
		f.raw[i] = ' '
	}
}

// fillLeft right justifies data with zeros; a leading sign moves to the first byte.
func (f *Field) fillLeft(data []byte) {
	zeros := len(f.raw) - len(data)
	for i := 0; i < zeros; i++ {
		f.raw[i] = '0'
	}
	copy(f.raw[zeros:], data)

	if zeros > 0 && len(data) > 0 && (data[0] == '+' || data[0] == '-') {
		f.raw[0] = data[0]
		f.raw[zeros] = '0'
	}
}

func (f *Field) setBinary(v uint64, negative bool) error {
	engine := endian.GetFileEngine()
	switch len(f.raw) {
	case 1:
		if !negative && v > math.MaxUint8 {
			return fmt.Errorf("%w: %d into 1 byte", errs.ErrFieldOverflow, v)
		}
		f.raw[0] = byte(v)
	case 2:
		if !negative && v > math.MaxUint16 {
			return fmt.Errorf("%w: %d into 2 bytes", errs.ErrFieldOverflow, v)
		}
		engine.PutUint16(f.raw, uint16(v))
	case 4:
		if !negative && v > math.MaxUint32 {
			return fmt.Errorf("%w: %d into 4 bytes", errs.ErrFieldOverflow, v)
		}
		engine.PutUint32(f.raw, uint32(v))
	case 8:
		engine.PutUint64(f.raw, v)
	default:
		return fmt.Errorf("%w: binary integer needs width 1, 2, 4 or 8, got %d", errs.ErrInvalidParameter, len(f.raw))
	}

	return nil
}

func (f *Field) binaryValue() (uint64, error) {
	engine := endian.GetFileEngine()
	switch len(f.raw) {
	case 1:
		return uint64(f.raw[0]), nil
	case 2:
		return uint64(engine.Uint16(f.raw)), nil
	case 4:
		return uint64(engine.Uint32(f.raw)), nil
	case 8:
		return engine.Uint64(f.raw), nil
	default:
		return 0, fmt.Errorf("%w: binary integer needs width 1, 2, 4 or 8, got %d", errs.ErrInvalidParameter, len(f.raw))
	}
}

func checkBCSA(s string) error {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x20 || c > 0x7e {
			return fmt.Errorf("%w: byte 0x%02x at %d is not BCS-A", errs.ErrFieldOverflow, c, i)
		}
	}

	return nil
}

// checkBCSN accepts digits, sign, decimal point and slash. An all-space value is allowed for blank fields.
func checkBCSN(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= '0' && c <= '9') || c == '+' || c == '-' || c == '.' || c == '/' {
			continue
		}

		return fmt.Errorf("%w: %q at %d is not BCS-N", errs.ErrFieldOverflow, c, i)
	}

	return nil
}
