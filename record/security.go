package record

import (
	"github.com/ngageoint/six-library-sub017/field"
)

// Security is the classification and security group of a header.
type Security struct {
	Fields *field.Set
}

// NewSecurity creates an unclassified security group.
func NewSecurity() *Security {
	s := &Security{Fields: field.FromSchema(SecuritySchema)}
	_ = s.Fields.SetString("CLAS", "U")

	return s
}

// Classification returns the one-letter classification.
func (s *Security) Classification() string {
	return s.Fields.String("CLAS")
}

// Clone returns a deep copy.
func (s *Security) Clone() *Security {
	if s == nil {
		return nil
	}

	return &Security{Fields: s.Fields.Clone()}
}

func (s *Security) decode(d *decoder) {
	d.fields(s.Fields, SecuritySchema)
}

func (s *Security) encode(e *encoder) {
	e.fields(s.Fields, SecuritySchema)
}
