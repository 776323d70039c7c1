package tre

import (
	"slices"
)

// Extensions is an ordered collection of TREs. Several TREs may share a tag;
// their relative order is preserved.
type Extensions struct {
	tres []*TRE
}

// NewExtensions creates an empty collection.
func NewExtensions() *Extensions {
	return &Extensions{}
}

// Append adds t at the end.
func (x *Extensions) Append(t *TRE) {
	x.tres = append(x.tres, t)
}

// Find returns every TRE with tag, in insertion order.
func (x *Extensions) Find(tag string) []*TRE {
	var out []*TRE
	for _, t := range x.tres {
		if t.tag == tag {
			out = append(out, t)
		}
	}

	return out
}

// First returns the first TRE with tag.
func (x *Extensions) First(tag string) (*TRE, bool) {
	for _, t := range x.tres {
		if t.tag == tag {
			return t, true
		}
	}

	return nil, false
}

// Exists reports whether a TRE with tag is present.
func (x *Extensions) Exists(tag string) bool {
	_, ok := x.First(tag)
	return ok
}

// Remove deletes every TRE with tag and returns how many were removed.
func (x *Extensions) Remove(tag string) int {
	n := len(x.tres)
	x.tres = slices.DeleteFunc(x.tres, func(t *TRE) bool { return t.tag == tag })

	return n - len(x.tres)
}

// Merge appends deep copies of every TRE of other, in order.
func (x *Extensions) Merge(other *Extensions) {
	if other == nil {
		return
	}
	for _, t := range other.tres {
		x.tres = append(x.tres, t.Clone())
	}
}

// All returns the TREs in order. The slice must not be modified.
func (x *Extensions) All() []*TRE {
	if x == nil {
		return nil
	}

	return x.tres
}

// Len returns the number of TREs.
func (x *Extensions) Len() int {
	if x == nil {
		return 0
	}

	return len(x.tres)
}

// Size returns the serialized length, tag and length prefixes included.
func (x *Extensions) Size() int {
	if x == nil {
		return 0
	}

	n := 0
	for _, t := range x.tres {
		n += HeaderSize + t.Length()
	}

	return n
}

// Bytes serializes every TRE in order.
func (x *Extensions) Bytes() ([]byte, error) {
	buf := make([]byte, 0, x.Size())
	for _, t := range x.All() {
		var err error
		if buf, err = t.AppendTo(buf); err != nil {
			return nil, err
		}
	}

	return buf, nil
}

// Clone returns a deep copy. Cloning a nil collection returns nil.
func (x *Extensions) Clone() *Extensions {
	if x == nil {
		return nil
	}

	c := &Extensions{tres: make([]*TRE, len(x.tres))}
	for i, t := range x.tres {
		c.tres[i] = t.Clone()
	}

	return c
}

// Equal reports whether both collections hold equal TREs in the same order.
func (x *Extensions) Equal(other *Extensions) bool {
	if x.Len() != other.Len() {
		return false
	}
	for i := range x.Len() {
		if !x.tres[i].Equal(other.tres[i]) {
			return false
		}
	}

	return true
}
