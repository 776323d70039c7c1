package section

import (
	"fmt"

	"github.com/ngageoint/six-library-sub017/endian"
	"github.com/ngageoint/six-library-sub017/errs"
)

// MaskHeader is the header that starts the data of a masked image (IC of
// NM or M*). All integers are big-endian.
type MaskHeader struct {
	// ImageDataOffset is the distance from the start of the image data to
	// the first block, past this header and both tables.
	ImageDataOffset uint32 // byte offset 0-3 (IMDATOFF)
	// BlockRecordLength is 4 when the block mask table is present, else 0.
	BlockRecordLength uint16 // byte offset 4-5 (BMRLNTH)
	// PadRecordLength is 4 when the pad pixel mask table is present, else 0.
	PadRecordLength uint16 // byte offset 6-7 (TMRLNTH)
	// PadCodeBits is the width in bits of PadCode; 0 means no pad value.
	PadCodeBits uint16 // byte offset 8-9 (TPXCDLNTH)
	// PadCode is the pad pixel value, (PadCodeBits+7)/8 bytes.
	PadCode []byte // byte offset 10- (TPXCD)
}

// PadCodeSize returns the number of bytes PadCode occupies.
func (h *MaskHeader) PadCodeSize() int {
	return (int(h.PadCodeBits) + 7) / 8
}

// Size returns the serialized size of the header without its tables.
func (h *MaskHeader) Size() int {
	return MaskHeaderFixedSize + h.PadCodeSize()
}

// HasBlockMask reports whether a block mask table follows the header.
func (h *MaskHeader) HasBlockMask() bool {
	return h.BlockRecordLength != 0
}

// HasPadMask reports whether a pad pixel mask table follows the block table.
func (h *MaskHeader) HasPadMask() bool {
	return h.PadRecordLength != 0
}

// TablesSize returns the size of the tables for count entries each.
func (h *MaskHeader) TablesSize(count int) int {
	n := 0
	if h.HasBlockMask() {
		n += count * MaskRecordSize
	}
	if h.HasPadMask() {
		n += count * MaskRecordSize
	}

	return n
}

// Validate checks the record lengths and the pad code width.
func (h *MaskHeader) Validate() error {
	for _, l := range []uint16{h.BlockRecordLength, h.PadRecordLength} {
		if l != 0 && l != MaskRecordSize {
			return fmt.Errorf("%w: mask record length %d", errs.ErrInvalidBlockMask, l)
		}
	}
	if h.PadCodeBits > MaxPadCodeBits {
		return fmt.Errorf("%w: pad code of %d bits", errs.ErrInvalidBlockMask, h.PadCodeBits)
	}
	if len(h.PadCode) != h.PadCodeSize() {
		return fmt.Errorf("%w: pad code has %d bytes, want %d", errs.ErrInvalidBlockMask, len(h.PadCode), h.PadCodeSize())
	}

	return nil
}

// Parse parses the header from the start of data. data may extend past
// the header.
func (h *MaskHeader) Parse(data []byte) error {
	if len(data) < MaskHeaderFixedSize {
		return fmt.Errorf("%w: mask header needs %d bytes, got %d", errs.ErrInvalidBlockMask, MaskHeaderFixedSize, len(data))
	}

	engine := endian.GetFileEngine()
	h.ImageDataOffset = engine.Uint32(data[imageDataOffsetOffset:])
	h.BlockRecordLength = engine.Uint16(data[blockRecordLenOffset:])
	h.PadRecordLength = engine.Uint16(data[padRecordLenOffset:])
	h.PadCodeBits = engine.Uint16(data[padCodeLenOffset:])
	if h.PadCodeBits > MaxPadCodeBits {
		return fmt.Errorf("%w: pad code of %d bits", errs.ErrInvalidBlockMask, h.PadCodeBits)
	}

	size := h.PadCodeSize()
	if len(data) < MaskHeaderFixedSize+size {
		return fmt.Errorf("%w: pad code truncated", errs.ErrInvalidBlockMask)
	}
	h.PadCode = append([]byte(nil), data[MaskHeaderFixedSize:MaskHeaderFixedSize+size]...)

	return h.Validate()
}

// Bytes serializes the header.
func (h *MaskHeader) Bytes() []byte {
	return h.AppendTo(make([]byte, 0, h.Size()))
}

// AppendTo appends the serialized header to dst.
func (h *MaskHeader) AppendTo(dst []byte) []byte {
	engine := endian.GetFileEngine()
	dst = engine.AppendUint32(dst, h.ImageDataOffset)
	dst = engine.AppendUint16(dst, h.BlockRecordLength)
	dst = engine.AppendUint16(dst, h.PadRecordLength)
	dst = engine.AppendUint16(dst, h.PadCodeBits)

	return append(dst, h.PadCode...)
}

// ParseMaskHeader parses a MaskHeader from the start of data.
func ParseMaskHeader(data []byte) (MaskHeader, error) {
	h := MaskHeader{}
	if err := h.Parse(data); err != nil {
		return MaskHeader{}, err
	}

	return h, nil
}

// ParseMaskTable decodes count offsets from data.
func ParseMaskTable(data []byte, count int) ([]uint32, error) {
	if count < 0 || len(data) < count*MaskRecordSize {
		return nil, fmt.Errorf("%w: mask table of %d entries needs %d bytes, got %d",
			errs.ErrInvalidBlockMask, count, count*MaskRecordSize, len(data))
	}

	engine := endian.GetFileEngine()
	offsets := make([]uint32, count)
	for i := range offsets {
		offsets[i] = engine.Uint32(data[i*MaskRecordSize:])
	}

	return offsets, nil
}

// AppendMaskTable appends offsets to dst.
func AppendMaskTable(dst []byte, offsets []uint32) []byte {
	engine := endian.GetFileEngine()
	for _, off := range offsets {
		dst = engine.AppendUint32(dst, off)
	}

	return dst
}
