package field

import (
	"fmt"

	"github.com/ngageoint/six-library-sub017/errs"
)

// Def declares one field of a fixed layout.
type Def struct {
	Name string
	Size int
	Type Type
}

// Schema is an ordered fixed layout. Headers and subheaders are declared as
// schemas so construction, cloning and serialization stay generic.
type Schema []Def

// Size returns the serialized length of the schema in bytes.
func (s Schema) Size() int {
	n := 0
	for _, d := range s {
		n += d.Size
	}

	return n
}

// Lookup returns the definition named name.
func (s Schema) Lookup(name string) (Def, bool) {
	for _, d := range s {
		if d.Name == name {
			return d, true
		}
	}

	return Def{}, false
}

// Set is an ordered collection of named fields.
type Set struct {
	names  []string
	fields map[string]*Field
}

// NewSet creates an empty field set.
func NewSet() *Set {
	return &Set{fields: make(map[string]*Field)}
}

// FromSchema constructs every field of schema with its fill value.
func FromSchema(schema Schema) *Set {
	s := &Set{
		names:  make([]string, 0, len(schema)),
		fields: make(map[string]*Field, len(schema)),
	}
	for _, d := range schema {
		s.Add(d.Name, New(d.Size, d.Type))
	}

	return s
}

// Add appends f under name, or replaces the field already stored under name
// keeping its position.
func (s *Set) Add(name string, f *Field) {
	if _, ok := s.fields[name]; !ok {
		s.names = append(s.names, name)
	}
	s.fields[name] = f
}

// Remove deletes the field stored under name.
func (s *Set) Remove(name string) {
	if _, ok := s.fields[name]; !ok {
		return
	}
	delete(s.fields, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			break
		}
	}
}

// Get returns the field stored under name.
func (s *Set) Get(name string) (*Field, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// Field returns the field stored under name, or nil.
func (s *Set) Field(name string) *Field {
	return s.fields[name]
}

// Has reports whether a field is stored under name.
func (s *Set) Has(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// Names returns the field names in insertion order.
func (s *Set) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of fields.
func (s *Set) Len() int {
	return len(s.names)
}

// Size returns the serialized length of every field in bytes.
func (s *Set) Size() int {
	n := 0
	for _, name := range s.names {
		n += s.fields[name].Len()
	}

	return n
}

// AppendBytes appends the raw content of every field, in order, to dst.
func (s *Set) AppendBytes(dst []byte) []byte {
	for _, name := range s.names {
		dst = append(dst, s.fields[name].Bytes()...)
	}

	return dst
}

// Clone returns a deep copy of the set. Cloning a nil set returns nil.
func (s *Set) Clone() *Set {
	if s == nil {
		return nil
	}

	c := &Set{
		names:  append([]string(nil), s.names...),
		fields: make(map[string]*Field, len(s.fields)),
	}
	for name, f := range s.fields {
		c.fields[name] = f.Clone()
	}

	return c
}

// Equal reports whether both sets hold equal fields in the same order.
func (s *Set) Equal(other *Set) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.names) != len(other.names) {
		return false
	}
	for i, name := range s.names {
		if other.names[i] != name || !s.fields[name].Equal(other.fields[name]) {
			return false
		}
	}

	return true
}

// lookup returns the named field or an ErrInvalidParameter error.
func (s *Set) lookup(name string) (*Field, error) {
	f, ok := s.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: no field %q", errs.ErrInvalidParameter, name)
	}

	return f, nil
}

// SetString stores v in the named field.
func (s *Set) SetString(name, v string) error {
	f, err := s.lookup(name)
	if err != nil {
		return err
	}
	if err := f.SetString(v); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	return nil
}

// SetUint stores v in the named field.
func (s *Set) SetUint(name string, v uint64) error {
	f, err := s.lookup(name)
	if err != nil {
		return err
	}
	if err := f.SetUint(v); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	return nil
}

// SetInt stores v in the named field.
func (s *Set) SetInt(name string, v int64) error {
	f, err := s.lookup(name)
	if err != nil {
		return err
	}
	if err := f.SetInt(v); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	return nil
}

// Uint reads the named field as an unsigned integer.
func (s *Set) Uint(name string) (uint64, error) {
	f, err := s.lookup(name)
	if err != nil {
		return 0, err
	}
	v, err := f.Uint()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}

	return v, nil
}

// Int reads the named field as a signed integer.
func (s *Set) Int(name string) (int64, error) {
	f, err := s.lookup(name)
	if err != nil {
		return 0, err
	}
	v, err := f.Int()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}

	return v, nil
}

// String returns the trimmed text of the named field, or "" when it is absent.
func (s *Set) String(name string) string {
	if f, ok := s.fields[name]; ok {
		return f.Trimmed()
	}

	return ""
}
