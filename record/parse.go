package record

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/format"
	"github.com/ngageoint/six-library-sub017/internal/pool"
	"github.com/ngageoint/six-library-sub017/tre"
)

// versionPrefixLength is the size of FHDR and FVER together.
const versionPrefixLength = 9

// readAt reads exactly len(buf) bytes at offset.
func readAt(r io.ReadSeeker, offset uint64, buf []byte) error {
	if _, err := r.Seek(int64(offset), io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek to %d: %v", errs.ErrIO, offset, err)
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("%w: read %d bytes at %d: %v", errs.ErrIO, len(buf), offset, err)
	}

	return nil
}

// readHeaderLength checks the FHDR/FVER prefix, then reads the fixed part of
// the file header and returns HL.
func readHeaderLength(r io.ReadSeeker) (uint64, error) {
	buf := make([]byte, fixedHeaderLength)
	prefix := buf[:versionPrefixLength]
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w: seek to 0: %v", errs.ErrIO, err)
	}
	if n, err := io.ReadFull(r, prefix); err != nil {
		return 0, fmt.Errorf("%w: %d byte file: %v", errs.ErrInvalidHeader, n, err)
	}
	if err := checkVersion(string(prefix[:4]), string(prefix[4:])); err != nil {
		return 0, err
	}
	if err := readAt(r, versionPrefixLength, buf[versionPrefixLength:]); err != nil {
		return 0, err
	}

	hlWidth := fileHeaderMiddle[len(fileHeaderMiddle)-1].Size
	hl, err := strconv.ParseUint(strings.TrimSpace(string(buf[len(buf)-hlWidth:])), 10, 64)
	if err != nil || hl < uint64(fixedHeaderLength) {
		return 0, fmt.Errorf("%w: HL %q", errs.ErrInvalidHeader, buf[len(buf)-hlWidth:])
	}

	return hl, nil
}

// IsNITF reports whether r starts with a NITF 2.1 or NSIF 1.0 signature.
func IsNITF(r io.ReadSeeker) bool {
	buf := make([]byte, versionPrefixLength)
	if err := readAt(r, 0, buf); err != nil {
		return false
	}

	return checkVersion(string(buf[:4]), string(buf[4:])) == nil
}

// Parse reads the file header and every subheader of r.
//
// Segment data is not read; each segment records where its data starts
// and how long it is.
func Parse(r io.ReadSeeker, opts ...tre.ParseOption) (*Record, error) {
	hl, err := readHeaderLength(r)
	if err != nil {
		return nil, err
	}

	buf := pool.GetHeaderBuffer()
	defer pool.PutHeaderBuffer(buf)

	headerData := buf.Resize(int(hl))
	if err := readAt(r, 0, headerData); err != nil {
		return nil, err
	}
	header, err := ParseFileHeader(headerData, opts...)
	if err != nil {
		return nil, err
	}

	rec := &Record{Header: header}
	offset := hl
	for _, kind := range format.SegmentKinds() {
		for i, info := range header.Components[kind.Index()] {
			data := buf.Resize(int(info.SubheaderLength))
			if err := readAt(r, offset, data); err != nil {
				return nil, fmt.Errorf("%s subheader %d: %w", kind, i, err)
			}
			if err := rec.addParsed(kind, data, offset, info, opts); err != nil {
				return nil, fmt.Errorf("%s subheader %d: %w", kind, i, err)
			}
			offset += info.SubheaderLength + info.DataLength
		}
	}

	return rec, nil
}

func (r *Record) addParsed(kind format.SegmentKind, data []byte, offset uint64, info ComponentInfo, opts []tre.ParseOption) error {
	switch kind {
	case format.SegmentImage:
		sub, err := ParseImageSubheader(data, opts...)
		if err != nil {
			return err
		}
		s := newSegment(kind, sub)
		s.setSpan(offset, info)
		r.Images = append(r.Images, s)
	case format.SegmentGraphic:
		sub, err := ParseGraphicSubheader(data, opts...)
		if err != nil {
			return err
		}
		s := newSegment(kind, sub)
		s.setSpan(offset, info)
		r.Graphics = append(r.Graphics, s)
	case format.SegmentLabel:
		sub, err := ParseLabelSubheader(data, opts...)
		if err != nil {
			return err
		}
		s := newSegment(kind, sub)
		s.setSpan(offset, info)
		r.Labels = append(r.Labels, s)
	case format.SegmentText:
		sub, err := ParseTextSubheader(data, opts...)
		if err != nil {
			return err
		}
		s := newSegment(kind, sub)
		s.setSpan(offset, info)
		r.Texts = append(r.Texts, s)
	case format.SegmentDataExtension:
		sub, err := ParseDESubheader(data)
		if err != nil {
			return err
		}
		s := newSegment(kind, sub)
		s.setSpan(offset, info)
		r.DataExtensions = append(r.DataExtensions, s)
	case format.SegmentReservedExtension:
		sub, err := ParseRESubheader(data)
		if err != nil {
			return err
		}
		s := newSegment(kind, sub)
		s.setSpan(offset, info)
		r.ReservedExtensions = append(r.ReservedExtensions, s)
	default:
		return fmt.Errorf("%w: segment kind %d", errs.ErrInvalidParameter, kind)
	}

	return nil
}

func (s *Segment[S]) setSpan(offset uint64, info ComponentInfo) {
	s.SubheaderOffset = offset
	s.SubheaderLength = info.SubheaderLength
	s.Offset = offset + info.SubheaderLength
	s.Length = info.DataLength
}
