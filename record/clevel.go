package record

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ngageoint/six-library-sub017/errs"
)

// ComplexityLevel is the CLEVEL of a file.
type ComplexityLevel int

const (
	ComplexityLevel03 ComplexityLevel = 3
	ComplexityLevel05 ComplexityLevel = 5
	ComplexityLevel06 ComplexityLevel = 6
	ComplexityLevel07 ComplexityLevel = 7
	ComplexityLevel09 ComplexityLevel = 9
)

func (c ComplexityLevel) String() string {
	return fmt.Sprintf("%02d", int(c))
}

// extentLevel grades a pixel extent, in rows and columns.
func extentLevel(rows, cols uint64) ComplexityLevel {
	switch {
	case rows <= 2047 && cols <= 2047:
		return ComplexityLevel03
	case rows <= 8191 && cols <= 8191:
		return ComplexityLevel05
	case rows <= 65535 && cols <= 65535:
		return ComplexityLevel06
	case rows <= 99999999 && cols <= 99999999:
		return ComplexityLevel07
	default:
		return ComplexityLevel09
	}
}

func fileSizeLevel(fl uint64) ComplexityLevel {
	switch {
	case fl <= 52428799:
		return ComplexityLevel03
	case fl <= 1073741823:
		return ComplexityLevel05
	case fl <= 2147483647:
		return ComplexityLevel06
	case fl <= 10737418239:
		return ComplexityLevel07
	default:
		return ComplexityLevel09
	}
}

func blockLevel(nppbh, nppbv uint64) ComplexityLevel {
	switch {
	case nppbh == 0 || nppbv == 0:
		return ComplexityLevel09
	case nppbh <= 2048 && nppbv <= 2048:
		return ComplexityLevel03
	case nppbh <= 8192 && nppbv <= 8192:
		return ComplexityLevel05
	default:
		return ComplexityLevel06
	}
}

func desLevel(n int) ComplexityLevel {
	switch {
	case n <= 10:
		return ComplexityLevel03
	case n <= 50:
		return ComplexityLevel06
	case n <= 100:
		return ComplexityLevel07
	default:
		return ComplexityLevel09
	}
}

// commonCoordinateExtent returns the extent of an image in the common
// coordinate system: its ILOC offset plus its size.
func commonCoordinateExtent(sub *ImageSubheader, rows, cols uint64) (uint64, uint64, error) {
	iloc := sub.Fields.String("ILOC")
	if iloc == "" {
		return rows, cols, nil
	}
	if len(iloc) != 10 {
		return 0, 0, fmt.Errorf("%w: ILOC %q", errs.ErrInvalidHeader, iloc)
	}

	r, err1 := strconv.ParseInt(strings.TrimSpace(iloc[:5]), 10, 64)
	c, err2 := strconv.ParseInt(strings.TrimSpace(iloc[5:]), 10, 64)
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("%w: ILOC %q", errs.ErrInvalidHeader, iloc)
	}

	return uint64(max(r, 0)) + rows, uint64(max(c, 0)) + cols, nil
}

// ComputeComplexityLevel grades r by file length, image and block sizes,
// common coordinate extent and data extension count, returning the highest
// level any of them requires.
func ComputeComplexityLevel(r *Record) (ComplexityLevel, error) {
	level := ComplexityLevel03
	raise := func(l ComplexityLevel) {
		if l > level {
			level = l
		}
	}

	fl, err := r.Header.FileLength()
	if err != nil {
		return 0, fmt.Errorf("FL: %w", err)
	}
	raise(fileSizeLevel(fl))
	raise(desLevel(len(r.DataExtensions)))

	for i, seg := range r.Images {
		sub := seg.Subheader
		rows, err := sub.Rows()
		if err != nil {
			return 0, fmt.Errorf("image %d: %w", i, err)
		}
		cols, err := sub.Cols()
		if err != nil {
			return 0, fmt.Errorf("image %d: %w", i, err)
		}
		raise(extentLevel(rows, cols))

		nppbh, err := sub.Fields.Uint("NPPBH")
		if err != nil {
			return 0, fmt.Errorf("image %d: %w", i, err)
		}
		nppbv, err := sub.Fields.Uint("NPPBV")
		if err != nil {
			return 0, fmt.Errorf("image %d: %w", i, err)
		}
		raise(blockLevel(nppbh, nppbv))

		er, ec, err := commonCoordinateExtent(sub, rows, cols)
		if err != nil {
			return 0, fmt.Errorf("image %d: %w", i, err)
		}
		raise(extentLevel(er, ec))
	}

	return level, nil
}
