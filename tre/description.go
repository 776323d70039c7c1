package tre

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/field"
)

// SizeGobble as an entry size consumes every remaining byte of the TRE.
const SizeGobble = -1

type control uint8

const (
	ctrlField control = iota
	ctrlLoop
	ctrlEndLoop
)

// Entry describes one field of a TRE layout, or the start or end of a loop.
//
// A field has a fixed Size, or takes its length from the integer value of an
// earlier field named by LengthFrom, optionally multiplied by the value of
// LengthTimes. Inside a loop, names refer to the field of the same iteration.
type Entry struct {
	Type        field.Type
	Size        int
	Label       string
	Name        string
	LengthFrom  string
	LengthTimes string

	ctrl      control
	countFrom string
}

// Loop starts a group of entries repeated as many times as the value of
// the countFrom field. Fields inside the loop are named NAME[i].
func Loop(countFrom string) Entry {
	return Entry{ctrl: ctrlLoop, countFrom: countFrom}
}

// EndLoop closes the innermost Loop.
func EndLoop() Entry {
	return Entry{ctrl: ctrlEndLoop}
}

// Description is the field layout of one TRE tag.
type Description struct {
	Tag     string
	Entries []Entry
}

// Validate checks that loops are balanced and length references name
// earlier fields.
func (d *Description) Validate() error {
	depth := 0
	seen := make(map[string]bool)
	for i, e := range d.Entries {
		switch e.ctrl {
		case ctrlLoop:
			if !seen[e.countFrom] {
				return fmt.Errorf("%w: %s entry %d: loop count %q is not an earlier field", errs.ErrInvalidObject, d.Tag, i, e.countFrom)
			}
			depth++
		case ctrlEndLoop:
			depth--
			if depth < 0 {
				return fmt.Errorf("%w: %s entry %d: unbalanced end of loop", errs.ErrInvalidObject, d.Tag, i)
			}
		default:
			if e.Name == "" {
				return fmt.Errorf("%w: %s entry %d has no name", errs.ErrInvalidObject, d.Tag, i)
			}
			if e.LengthFrom != "" && !seen[e.LengthFrom] {
				return fmt.Errorf("%w: %s.%s: length %q is not an earlier field", errs.ErrInvalidObject, d.Tag, e.Name, e.LengthFrom)
			}
			if e.LengthTimes != "" && !seen[e.LengthTimes] {
				return fmt.Errorf("%w: %s.%s: multiplier %q is not an earlier field", errs.ErrInvalidObject, d.Tag, e.Name, e.LengthTimes)
			}
			seen[e.Name] = true
		}
	}
	if depth != 0 {
		return fmt.Errorf("%w: %s: unterminated loop", errs.ErrInvalidObject, d.Tag)
	}

	return nil
}

// producer supplies the field for one layout slot. size is SizeGobble for
// entries consuming the rest of the data.
type producer func(name string, e Entry, size int, conditional bool) (*field.Field, error)

// walker lays out a Description into a field set, slot by slot.
type walker struct {
	desc    *Description
	set     *field.Set
	produce producer
}

func (w *walker) run() error {
	_, err := w.walk(0, "")
	return err
}

// walk processes entries from start until the matching EndLoop or the end of
// the description, and returns the index after the last processed entry.
func (w *walker) walk(start int, suffix string) (int, error) {
	entries := w.desc.Entries
	for i := start; i < len(entries); i++ {
		e := entries[i]
		switch e.ctrl {
		case ctrlEndLoop:
			return i + 1, nil
		case ctrlLoop:
			count, err := w.value(e.countFrom, suffix)
			if err != nil {
				return 0, err
			}
			end := w.loopEnd(i)
			for n := 0; n < count; n++ {
				if _, err := w.walk(i+1, suffix+"["+strconv.Itoa(n)+"]"); err != nil {
					return 0, err
				}
			}
			i = end - 1
		default:
			size, conditional, err := w.size(e, suffix)
			if err != nil {
				return 0, err
			}
			name := e.Name + suffix
			f, err := w.produce(name, e, size, conditional)
			if err != nil {
				return 0, err
			}
			w.set.Add(name, f)
		}
	}

	return len(entries), nil
}

// loopEnd returns the index after the EndLoop matching the Loop at start.
func (w *walker) loopEnd(start int) int {
	depth := 0
	for i := start; i < len(w.desc.Entries); i++ {
		switch w.desc.Entries[i].ctrl {
		case ctrlLoop:
			depth++
		case ctrlEndLoop:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}

	return len(w.desc.Entries)
}

func (w *walker) size(e Entry, suffix string) (int, bool, error) {
	if e.LengthFrom == "" {
		return e.Size, false, nil
	}

	n, err := w.value(e.LengthFrom, suffix)
	if err != nil {
		return 0, false, err
	}
	if e.LengthTimes != "" {
		m, err := w.value(e.LengthTimes, suffix)
		if err != nil {
			return 0, false, err
		}
		n *= m
	}

	return n, true, nil
}

// value reads the integer value of name, resolving it against the current
// loop iteration first and then against each enclosing scope.
func (w *walker) value(name, suffix string) (int, error) {
	for {
		if f, ok := w.set.Get(name + suffix); ok {
			v, err := f.Int()
			if err != nil {
				return 0, fmt.Errorf("%s.%s: %w", w.desc.Tag, name+suffix, err)
			}
			if v < 0 {
				return 0, fmt.Errorf("%w: %s.%s is negative", errs.ErrInvalidHeader, w.desc.Tag, name+suffix)
			}

			return int(v), nil
		}
		if suffix == "" {
			return 0, fmt.Errorf("%w: %s: no field %q", errs.ErrInvalidObject, w.desc.Tag, name)
		}
		suffix = suffix[:strings.LastIndexByte(suffix, '[')]
	}
}

// parse lays out data according to d.
func (d *Description) parse(data []byte) (*field.Set, error) {
	pos := 0
	w := &walker{desc: d, set: field.NewSet()}
	w.produce = func(name string, e Entry, size int, conditional bool) (*field.Field, error) {
		if size == SizeGobble {
			size = len(data) - pos
		}
		if pos+size > len(data) {
			return nil, fmt.Errorf("%w: %s.%s needs %d bytes at offset %d, TRE has %d",
				errs.ErrInvalidHeader, d.Tag, name, size, pos, len(data))
		}

		var f *field.Field
		if conditional || e.Size == SizeGobble {
			f = field.NewResizable(size, e.Type)
		} else {
			f = field.New(size, e.Type)
		}
		if err := f.SetBytes(data[pos : pos+size]); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", d.Tag, name, err)
		}
		pos += size

		return f, nil
	}

	if err := w.run(); err != nil {
		return nil, err
	}
	if pos != len(data) {
		return nil, fmt.Errorf("%w: %s: %d trailing bytes", errs.ErrInvalidHeader, d.Tag, len(data)-pos)
	}

	return w.set, nil
}

// layout rebuilds the field set of d from the current values in prev.
// Fields whose slot still exists with the same width keep their value;
// new slots get fill values. Loop counts and conditional lengths are read
// from the rebuilt set as it is produced.
func (d *Description) layout(prev *field.Set) (*field.Set, error) {
	w := &walker{desc: d, set: field.NewSet()}
	w.produce = func(name string, e Entry, size int, conditional bool) (*field.Field, error) {
		old, hasOld := prev.Get(name)
		if size == SizeGobble {
			if hasOld {
				return old, nil
			}

			return field.NewResizable(0, e.Type), nil
		}
		if hasOld && old.Len() == size {
			return old, nil
		}

		var f *field.Field
		if conditional {
			f = field.NewResizable(size, e.Type)
		} else {
			f = field.New(size, e.Type)
		}

		return f, nil
	}

	if err := w.run(); err != nil {
		return nil, err
	}

	return w.set, nil
}
