package blocking

import (
	"fmt"
	"math"

	"github.com/ngageoint/six-library-sub017/errs"
)

// Absent marks a block that was never written: it reads as the pad value
// and costs no I/O.
const Absent uint64 = math.MaxUint64

// Mask holds the file offset of every block unit, in file order. It
// belongs to one session and is never cloned with the record.
type Mask struct {
	layout  Layout
	info    Info
	offsets []uint64
	padded  []bool
}

// NewMask creates a mask for layout and info with every block absent.
func NewMask(layout Layout, info *Info) *Mask {
	n := layout.BlockUnits(info)
	m := &Mask{
		layout:  layout,
		info:    *info,
		offsets: make([]uint64, n),
		padded:  make([]bool, n),
	}
	for i := range m.offsets {
		m.offsets[i] = Absent
	}

	return m
}

// DenseMask creates the mask of uncompressed, unmasked data starting at
// start: block units follow each other with no gaps.
func DenseMask(layout Layout, info *Info, start uint64) *Mask {
	m := NewMask(layout, info)
	for i := range m.offsets {
		m.offsets[i] = start + uint64(i)*uint64(info.Length)
	}

	return m
}

// Len returns the number of block units.
func (m *Mask) Len() int {
	return len(m.offsets)
}

// Info returns the block grid the mask was built for.
func (m *Mask) Info() Info {
	return m.info
}

// Layout returns the pixel layout the mask was built for.
func (m *Mask) Layout() Layout {
	return m.layout
}

func (m *Mask) index(band, block int) (int, error) {
	if block < 0 || block >= m.info.NumBlocks() || band < 0 || band >= m.layout.Bands {
		return 0, fmt.Errorf("%w: band %d block %d outside %d bands × %d blocks",
			errs.ErrInvalidParameter, band, block, m.layout.Bands, m.info.NumBlocks())
	}
	i := m.layout.UnitIndex(&m.info, band, block)
	if i >= len(m.offsets) {
		return 0, fmt.Errorf("%w: block unit %d of %d", errs.ErrInvalidBlockMask, i, len(m.offsets))
	}

	return i, nil
}

// Offset returns the file offset of band of block, or Absent.
func (m *Mask) Offset(band, block int) (uint64, error) {
	i, err := m.index(band, block)
	if err != nil {
		return 0, err
	}

	return m.offsets[i], nil
}

// IsAbsent reports whether band of block was never written.
func (m *Mask) IsAbsent(band, block int) bool {
	off, err := m.Offset(band, block)
	return err == nil && off == Absent
}

// Set records the offset of band of block.
func (m *Mask) Set(band, block int, offset uint64) error {
	i, err := m.index(band, block)
	if err != nil {
		return err
	}
	m.offsets[i] = offset

	return nil
}

// HasPad reports whether band of block is flagged as containing pad pixels.
func (m *Mask) HasPad(band, block int) bool {
	i, err := m.index(band, block)
	return err == nil && m.padded[i]
}

// SetPad flags band of block as containing pad pixels.
func (m *Mask) SetPad(band, block int, padded bool) error {
	i, err := m.index(band, block)
	if err != nil {
		return err
	}
	m.padded[i] = padded

	return nil
}

// AllAbsent reports whether no block was written.
func (m *Mask) AllAbsent() bool {
	for _, off := range m.offsets {
		if off != Absent {
			return false
		}
	}

	return true
}

// UnitOffset returns the offset of block unit i, or Absent.
func (m *Mask) UnitOffset(i int) (uint64, error) {
	if i < 0 || i >= len(m.offsets) {
		return 0, fmt.Errorf("%w: block unit %d of %d", errs.ErrInvalidParameter, i, len(m.offsets))
	}

	return m.offsets[i], nil
}

// SetUnit records the offset of block unit i.
func (m *Mask) SetUnit(i int, offset uint64) error {
	if i < 0 || i >= len(m.offsets) {
		return fmt.Errorf("%w: block unit %d of %d", errs.ErrInvalidParameter, i, len(m.offsets))
	}
	m.offsets[i] = offset

	return nil
}

// Offsets returns a copy of the unit offsets in file order.
func (m *Mask) Offsets() []uint64 {
	return append([]uint64(nil), m.offsets...)
}
