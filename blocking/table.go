package blocking

import (
	"fmt"
	"io"
	"math"

	"github.com/ngageoint/six-library-sub017/endian"
	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/format"
	"github.com/ngageoint/six-library-sub017/section"
)

// TableEntries returns the number of entries of each mask table: one per
// block and band for band sequential images, one per block otherwise.
func TableEntries(layout Layout, info *Info) int {
	if layout.Mode == format.BlockingBandSequential {
		return info.NumBlocks() * layout.Bands
	}

	return info.NumBlocks()
}

// tableIndex maps band of block to its mask table entry, reporting false
// for the bands of a band interleaved by block image that share the entry
// of band 0.
func tableIndex(layout Layout, info *Info, band, block int) (int, bool) {
	switch layout.Mode {
	case format.BlockingBandSequential:
		return band*info.NumBlocks() + block, true
	case format.BlockingBandInterleavedByBlock:
		return block, band == 0
	default:
		return block, true
	}
}

func readAt(r io.ReadSeeker, offset uint64, buf []byte) error {
	if _, err := r.Seek(int64(offset), io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek to %d: %v", errs.ErrIO, offset, err)
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("%w: read %d bytes at %d: %v", errs.ErrIO, len(buf), offset, err)
	}

	return nil
}

// ReadMask reads the mask table at the start of masked image data at
// dataOffset and returns the absolute offset of every block unit.
func ReadMask(r io.ReadSeeker, dataOffset uint64, layout Layout, info *Info) (*Mask, *section.MaskHeader, error) {
	fixed := make([]byte, section.MaskHeaderFixedSize)
	if err := readAt(r, dataOffset, fixed); err != nil {
		return nil, nil, err
	}

	bits := int(endian.GetFileEngine().Uint16(fixed[8:]))
	if bits > section.MaxPadCodeBits {
		return nil, nil, fmt.Errorf("%w: pad code of %d bits", errs.ErrInvalidBlockMask, bits)
	}
	full := make([]byte, section.MaskHeaderFixedSize+(bits+7)/8)
	copy(full, fixed)
	if len(full) > len(fixed) {
		if err := readAt(r, dataOffset+uint64(len(fixed)), full[len(fixed):]); err != nil {
			return nil, nil, err
		}
	}
	header, err := section.ParseMaskHeader(full)
	if err != nil {
		return nil, nil, err
	}

	entries := TableEntries(layout, info)
	if int(header.ImageDataOffset) < header.Size()+header.TablesSize(entries) {
		return nil, nil, fmt.Errorf("%w: IMDATOFF %d inside the mask tables", errs.ErrInvalidBlockMask, header.ImageDataOffset)
	}

	tables := make([]byte, header.TablesSize(entries))
	if len(tables) > 0 {
		if err := readAt(r, dataOffset+uint64(header.Size()), tables); err != nil {
			return nil, nil, err
		}
	}

	base := dataOffset + uint64(header.ImageDataOffset)
	var blockTable, padTable []uint32
	if header.HasBlockMask() {
		if blockTable, err = section.ParseMaskTable(tables, entries); err != nil {
			return nil, nil, err
		}
		tables = tables[entries*section.MaskRecordSize:]
	}
	if header.HasPadMask() {
		if padTable, err = section.ParseMaskTable(tables, entries); err != nil {
			return nil, nil, err
		}
	}

	if blockTable == nil {
		m := DenseMask(layout, info, base)
		return m, &header, applyPad(m, layout, info, padTable)
	}

	m := NewMask(layout, info)
	bandSize := uint64(layout.BandSize(info))
	for block := 0; block < info.NumBlocks(); block++ {
		for band := 0; band < layout.Bands; band++ {
			entry, _ := tableIndex(layout, info, band, block)
			v := blockTable[entry]
			if v == section.NoOffset {
				continue
			}
			off := base + uint64(v)
			if layout.Mode == format.BlockingBandInterleavedByBlock {
				off += uint64(band) * bandSize
			}
			if err := m.Set(band, block, off); err != nil {
				return nil, nil, err
			}
		}
	}

	return m, &header, applyPad(m, layout, info, padTable)
}

func applyPad(m *Mask, layout Layout, info *Info, padTable []uint32) error {
	if padTable == nil {
		return nil
	}
	for block := 0; block < info.NumBlocks(); block++ {
		for band := 0; band < layout.Bands; band++ {
			entry, _ := tableIndex(layout, info, band, block)
			if padTable[entry] == section.NoOffset {
				continue
			}
			if err := m.SetPad(band, block, true); err != nil {
				return err
			}
		}
	}

	return nil
}

// MaskBuilder collects block offsets while masked image data is written,
// then serializes the mask header and tables that precede the data.
type MaskBuilder struct {
	layout Layout
	info   Info
	header section.MaskHeader
	block  []uint32
	pad    []uint32
}

// NewMaskBuilder creates a builder with every block absent. A non-empty
// padCode adds a pad pixel table and declares padCode as the pad value.
func NewMaskBuilder(layout Layout, info *Info, padCode []byte) (*MaskBuilder, error) {
	if len(padCode)*8 > section.MaxPadCodeBits {
		return nil, fmt.Errorf("%w: pad code of %d bytes", errs.ErrInvalidParameter, len(padCode))
	}

	n := TableEntries(layout, info)
	b := &MaskBuilder{
		layout: layout,
		info:   *info,
		header: section.MaskHeader{
			BlockRecordLength: section.MaskRecordSize,
			PadCodeBits:       uint16(len(padCode) * 8),
			PadCode:           append([]byte(nil), padCode...),
		},
		block: make([]uint32, n),
	}
	for i := range b.block {
		b.block[i] = section.NoOffset
	}
	if len(padCode) > 0 {
		b.header.PadRecordLength = section.MaskRecordSize
		b.pad = make([]uint32, n)
		for i := range b.pad {
			b.pad[i] = section.NoOffset
		}
	}
	b.header.ImageDataOffset = uint32(b.header.Size() + b.header.TablesSize(n))

	return b, nil
}

// Size returns the size of the header and tables, which is also where the
// block data starts.
func (b *MaskBuilder) Size() int {
	return int(b.header.ImageDataOffset)
}

// Record stores the offset of band of block relative to the start of the
// block data. The bands after band 0 of a band interleaved by block image
// follow band 0 and are not recorded.
func (b *MaskBuilder) Record(band, block int, offset uint64) error {
	if block < 0 || block >= b.info.NumBlocks() || band < 0 || band >= b.layout.Bands {
		return fmt.Errorf("%w: band %d block %d", errs.ErrInvalidParameter, band, block)
	}
	if offset >= math.MaxUint32 {
		return fmt.Errorf("%w: block offset %d does not fit the mask table", errs.ErrInvalidBlockMask, offset)
	}
	if i, own := tableIndex(b.layout, &b.info, band, block); own {
		b.block[i] = uint32(offset)
	}

	return nil
}

// MarkPad flags band of block as containing pad pixels.
func (b *MaskBuilder) MarkPad(band, block int) error {
	if b.pad == nil {
		return nil
	}
	if block < 0 || block >= b.info.NumBlocks() || band < 0 || band >= b.layout.Bands {
		return fmt.Errorf("%w: band %d block %d", errs.ErrInvalidParameter, band, block)
	}
	if i, own := tableIndex(b.layout, &b.info, band, block); own {
		b.pad[i] = 0
	}

	return nil
}

// Bytes serializes the header and tables.
func (b *MaskBuilder) Bytes() []byte {
	out := b.header.AppendTo(make([]byte, 0, b.Size()))
	out = section.AppendMaskTable(out, b.block)
	if b.pad != nil {
		out = section.AppendMaskTable(out, b.pad)
	}

	return out
}
