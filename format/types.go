package format

type (
	SegmentKind     uint8
	BlockingMode    byte
	PixelType       string
	CompressionType string
)

const (
	SegmentImage             SegmentKind = 0x1 // SegmentImage represents an image segment (IM).
	SegmentGraphic           SegmentKind = 0x2 // SegmentGraphic represents a graphic segment (SY).
	SegmentLabel             SegmentKind = 0x3 // SegmentLabel represents a label segment (LA).
	SegmentText              SegmentKind = 0x4 // SegmentText represents a text segment (TE).
	SegmentDataExtension     SegmentKind = 0x5 // SegmentDataExtension represents a data extension segment (DE).
	SegmentReservedExtension SegmentKind = 0x6 // SegmentReservedExtension represents a reserved extension segment (RE).
)

// NumSegmentKinds is the number of segment kinds. Kinds are numbered in the
// order their segments appear in a file.
const NumSegmentKinds = 6

const (
	BlockingBandInterleavedByBlock BlockingMode = 'B' // one band per block, blocks of each band follow each other
	BlockingBandInterleavedByPixel BlockingMode = 'P' // all bands of a pixel are adjacent
	BlockingBandInterleavedByRow   BlockingMode = 'R' // all bands of a block row are adjacent
	BlockingBandSequential         BlockingMode = 'S' // every block of band 0, then every block of band 1, ...
)

const (
	PixelInteger       PixelType = "INT" // unsigned integer
	PixelBiLevel       PixelType = "B"   // bi-level, one bit per pixel
	PixelSignedInteger PixelType = "SI"  // two's complement signed integer
	PixelReal          PixelType = "R"   // IEEE floating point
	PixelComplex       PixelType = "C"   // complex floating point, real then imaginary
)

const (
	CompressionNone       CompressionType = "NC" // uncompressed, every block present
	CompressionNoneMasked CompressionType = "NM" // uncompressed with block/pad mask table
	CompressionBiLevel    CompressionType = "C1"
	CompressionJPEG       CompressionType = "C3"
	CompressionVQ         CompressionType = "C4"
	CompressionLossless   CompressionType = "C5"
	CompressionJPEG2000   CompressionType = "C8"
	CompressionJPEGMasked CompressionType = "M3"
	CompressionJ2KMasked  CompressionType = "M8"

	// Private identifiers served by the built-in general purpose codecs.
	CompressionZstd CompressionType = "ZS"
	CompressionS2   CompressionType = "S2"
	CompressionLZ4  CompressionType = "L4"
	CompressionLZW  CompressionType = "LZ"
	CompressionZlib CompressionType = "ZL"
)

func (s SegmentKind) String() string {
	switch s {
	case SegmentImage:
		return "Image"
	case SegmentGraphic:
		return "Graphic"
	case SegmentLabel:
		return "Label"
	case SegmentText:
		return "Text"
	case SegmentDataExtension:
		return "DataExtension"
	case SegmentReservedExtension:
		return "ReservedExtension"
	default:
		return "Unknown"
	}
}

// Index returns the zero-based position of the kind in file order.
func (s SegmentKind) Index() int {
	return int(s) - 1
}

// IsValid reports whether s is one of the defined kinds.
func (s SegmentKind) IsValid() bool {
	return s >= SegmentImage && s <= SegmentReservedExtension
}

// SegmentKinds returns every kind in file order.
func SegmentKinds() []SegmentKind {
	return []SegmentKind{
		SegmentImage, SegmentGraphic, SegmentLabel,
		SegmentText, SegmentDataExtension, SegmentReservedExtension,
	}
}

// PartType returns the two character file part type that starts the segment subheader.
func (s SegmentKind) PartType() string {
	switch s {
	case SegmentImage:
		return "IM"
	case SegmentGraphic:
		return "SY"
	case SegmentLabel:
		return "LA"
	case SegmentText:
		return "TE"
	case SegmentDataExtension:
		return "DE"
	case SegmentReservedExtension:
		return "RE"
	default:
		return ""
	}
}

func (m BlockingMode) String() string {
	switch m {
	case BlockingBandInterleavedByBlock:
		return "BandInterleavedByBlock"
	case BlockingBandInterleavedByPixel:
		return "BandInterleavedByPixel"
	case BlockingBandInterleavedByRow:
		return "BandInterleavedByRow"
	case BlockingBandSequential:
		return "BandSequential"
	default:
		return "Unknown"
	}
}

// IsValid reports whether m is one of the four blocking modes.
func (m BlockingMode) IsValid() bool {
	switch m {
	case BlockingBandInterleavedByBlock, BlockingBandInterleavedByPixel,
		BlockingBandInterleavedByRow, BlockingBandSequential:
		return true
	default:
		return false
	}
}

// IsValid reports whether p is a known pixel value type.
func (p PixelType) IsValid() bool {
	switch p {
	case PixelInteger, PixelBiLevel, PixelSignedInteger, PixelReal, PixelComplex:
		return true
	default:
		return false
	}
}

func (c CompressionType) String() string {
	return string(c)
}

// IsCompressed reports whether the image data passes through a codec.
func (c CompressionType) IsCompressed() bool {
	return c != CompressionNone && c != CompressionNoneMasked && c != ""
}

// IsMasked reports whether the image data starts with a block/pad mask table.
// Every masked identifier starts with 'M' except the uncompressed NM.
func (c CompressionType) IsMasked() bool {
	return c == CompressionNoneMasked || (len(c) == 2 && c[0] == 'M')
}
