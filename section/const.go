package section

import "math"

// offsets and sizes of the mask table header
const (
	MaskHeaderFixedSize = 10 // IMDATOFF, BMRLNTH, TMRLNTH and TPXCDLNTH
	MaskRecordSize      = 4  // size of one BMR or TMR entry
	MaxPadCodeBits      = 32 // widest pad pixel code accepted

	imageDataOffsetOffset = 0
	blockRecordLenOffset  = 4
	padRecordLenOffset    = 6
	padCodeLenOffset      = 8
)

// NoOffset marks a block that is not recorded in the image data.
const NoOffset = math.MaxUint32
