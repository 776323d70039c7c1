package record

import (
	"fmt"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/field"
	"github.com/ngageoint/six-library-sub017/internal/pool"
	"github.com/ngageoint/six-library-sub017/tre"
)

// decoder reads fields sequentially from a subheader image. The first error
// sticks; later calls are no-ops.
type decoder struct {
	what string
	data []byte
	pos  int
	err  error
	tre  []tre.ParseOption
}

func newDecoder(what string, data []byte, opts []tre.ParseOption) *decoder {
	return &decoder{what: what, data: data, tre: opts}
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || d.pos+n > len(d.data) {
		d.err = fmt.Errorf("%w: %s truncated at offset %d, %d more bytes needed",
			errs.ErrInvalidHeader, d.what, d.pos, n)
		return nil
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n

	return b
}

// fill copies the next Len bytes into f.
func (d *decoder) fill(f *field.Field) {
	if b := d.take(f.Len()); b != nil {
		if err := f.SetBytes(b); err != nil {
			d.err = err
		}
	}
}

// fields fills the fields of schema, in schema order, from set.
func (d *decoder) fields(set *field.Set, schema field.Schema) {
	for _, def := range schema {
		d.fill(set.Field(def.Name))
	}
}

// count reads a numeric field already filled in set.
func (d *decoder) count(set *field.Set, name string) int {
	if d.err != nil {
		return 0
	}
	v, err := set.Uint(name)
	if err != nil {
		d.err = fmt.Errorf("%w: %s %v", errs.ErrInvalidHeader, d.what, err)
		return 0
	}

	return int(v)
}

// extensions reads a length field, then an overflow field and TRE data when
// the length is not zero.
func (d *decoder) extensions(set *field.Set, lengthName, overflowName string) *tre.Extensions {
	d.fill(set.Field(lengthName))
	n := d.count(set, lengthName)
	if d.err != nil || n == 0 {
		return tre.NewExtensions()
	}

	overflow := set.Field(overflowName)
	if n < overflow.Len() {
		d.err = fmt.Errorf("%w: %s %s is %d", errs.ErrInvalidHeader, d.what, lengthName, n)
		return tre.NewExtensions()
	}
	d.fill(overflow)
	data := d.take(n - overflow.Len())
	if d.err != nil {
		return tre.NewExtensions()
	}

	x, err := tre.ParseExtensions(data, d.tre...)
	if err != nil {
		d.err = fmt.Errorf("%s %s: %w", d.what, lengthName, err)
		return tre.NewExtensions()
	}

	return x
}

// finish reports the sticky error, or trailing bytes when the subheader
// image was not fully consumed.
func (d *decoder) finish() error {
	if d.err != nil {
		return d.err
	}
	if d.pos != len(d.data) {
		return fmt.Errorf("%w: %s has %d unread bytes", errs.ErrInvalidHeader, d.what, len(d.data)-d.pos)
	}

	return nil
}

// encoder serializes fields into a pooled buffer.
type encoder struct {
	buf *pool.ByteBuffer
	err error
}

func newEncoder() *encoder {
	return &encoder{buf: pool.GetHeaderBuffer()}
}

func (e *encoder) field(f *field.Field) {
	_, _ = e.buf.Write(f.Bytes())
}

func (e *encoder) fields(set *field.Set, schema field.Schema) {
	for _, def := range schema {
		e.field(set.Field(def.Name))
	}
}

// extensions updates the length field to match x and writes the length,
// overflow and TRE data.
func (e *encoder) extensions(x *tre.Extensions, set *field.Set, lengthName, overflowName string) {
	if e.err != nil {
		return
	}
	data, err := x.Bytes()
	if err != nil {
		e.err = err
		return
	}

	length := set.Field(lengthName)
	if len(data) == 0 {
		e.err = length.SetUint(0)
		e.field(length)

		return
	}

	overflow := set.Field(overflowName)
	if err := length.SetUint(uint64(len(data) + overflow.Len())); err != nil {
		e.err = fmt.Errorf("%s: %w", lengthName, err)
		return
	}
	e.field(length)
	e.field(overflow)
	_, _ = e.buf.Write(data)
}

func (e *encoder) setCount(set *field.Set, name string, n int) {
	if e.err != nil {
		return
	}
	if err := set.SetUint(name, uint64(n)); err != nil {
		e.err = err
	}
}

// bytes returns a copy of the serialized data and releases the buffer.
func (e *encoder) bytes() ([]byte, error) {
	defer pool.PutHeaderBuffer(e.buf)
	if e.err != nil {
		return nil, e.err
	}

	return append([]byte(nil), e.buf.Bytes()...), nil
}
