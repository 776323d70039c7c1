package record

import (
	"fmt"
	"strings"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/field"
	"github.com/ngageoint/six-library-sub017/format"
	"github.com/ngageoint/six-library-sub017/tre"
)

// Image subheader limits.
const (
	MaxComments        = 9
	MaxBlockDimension  = 8192 // largest NPPBH/NPPBV written as a number
	DefaultBlockLength = 1024 // block edge chosen by SetDimensions for large images
	maxNBANDS          = 9
)

// BandInfo describes one band of an image.
type BandInfo struct {
	Fields *field.Set
	// LUTs holds NLUTS lookup tables of NELUT entries each.
	LUTs [][]byte
}

// NewBandInfo creates a band with the given representation and subcategory.
func NewBandInfo(representation, subcategory string) (*BandInfo, error) {
	b := &BandInfo{Fields: field.FromSchema(bandSchema)}
	if err := b.Fields.SetString("IREPBAND", representation); err != nil {
		return nil, err
	}
	if err := b.Fields.SetString("ISUBCAT", subcategory); err != nil {
		return nil, err
	}
	_ = b.Fields.SetString("IFC", "N")

	return b, nil
}

// Representation returns IREPBAND.
func (b *BandInfo) Representation() string {
	return b.Fields.String("IREPBAND")
}

// Clone returns a deep copy.
func (b *BandInfo) Clone() *BandInfo {
	c := &BandInfo{Fields: b.Fields.Clone()}
	for _, lut := range b.LUTs {
		c.LUTs = append(c.LUTs, append([]byte(nil), lut...))
	}

	return c
}

func (b *BandInfo) decode(d *decoder) {
	names := bandSchema[:5]
	d.fields(b.Fields, names)
	nluts := d.count(b.Fields, "NLUTS")
	if nluts == 0 {
		return
	}
	d.fill(b.Fields.Field("NELUT"))
	nelut := d.count(b.Fields, "NELUT")
	for i := 0; i < nluts && d.err == nil; i++ {
		b.LUTs = append(b.LUTs, append([]byte(nil), d.take(nelut)...))
	}
}

func (b *BandInfo) encode(e *encoder) {
	e.fields(b.Fields, bandSchema[:4])
	e.setCount(b.Fields, "NLUTS", len(b.LUTs))
	e.field(b.Fields.Field("NLUTS"))
	if len(b.LUTs) == 0 {
		return
	}

	nelut := len(b.LUTs[0])
	for _, lut := range b.LUTs {
		if len(lut) != nelut {
			e.err = fmt.Errorf("%w: lookup tables of one band differ in length", errs.ErrInvalidObject)
			return
		}
	}
	e.setCount(b.Fields, "NELUT", nelut)
	e.field(b.Fields.Field("NELUT"))
	for _, lut := range b.LUTs {
		_, _ = e.buf.Write(lut)
	}
}

// ImageSubheader is the subheader of an image segment.
type ImageSubheader struct {
	Fields   *field.Set
	Security *Security
	Comments []*field.Field
	Bands    []*BandInfo

	UserDefined *tre.Extensions
	Extended    *tre.Extensions
}

var imageSchema = concat(imagePrefix, imagePixel, imageConditional, imageBlocking, imageExtensions)

// NewImageSubheader creates an uncompressed, single-block, band
// interleaved by block image subheader with no bands.
func NewImageSubheader() *ImageSubheader {
	s := &ImageSubheader{
		Fields:      field.FromSchema(imageSchema),
		Security:    NewSecurity(),
		UserDefined: tre.NewExtensions(),
		Extended:    tre.NewExtensions(),
	}
	for name, v := range map[string]string{
		"IM":     "IM",
		"ENCRYP": "0",
		"PVTYPE": string(format.PixelInteger),
		"PJUST":  "R",
		"IC":     string(format.CompressionNone),
		"IMODE":  string(format.BlockingBandInterleavedByBlock),
		"NBPR":   "1",
		"NBPC":   "1",
		"IDLVL":  "1",
		"IMAG":   "1.0",
	} {
		_ = s.Fields.SetString(name, v)
	}

	return s
}

// Clone returns a deep copy.
func (s *ImageSubheader) Clone() *ImageSubheader {
	if s == nil {
		return nil
	}

	c := &ImageSubheader{
		Fields:      s.Fields.Clone(),
		Security:    s.Security.Clone(),
		UserDefined: s.UserDefined.Clone(),
		Extended:    s.Extended.Clone(),
	}
	for _, com := range s.Comments {
		c.Comments = append(c.Comments, com.Clone())
	}
	for _, b := range s.Bands {
		c.Bands = append(c.Bands, b.Clone())
	}

	return c
}

// Rows returns NROWS.
func (s *ImageSubheader) Rows() (uint64, error) {
	return s.Fields.Uint("NROWS")
}

// Cols returns NCOLS.
func (s *ImageSubheader) Cols() (uint64, error) {
	return s.Fields.Uint("NCOLS")
}

// BitsPerPixel returns NBPP.
func (s *ImageSubheader) BitsPerPixel() (uint64, error) {
	return s.Fields.Uint("NBPP")
}

// BytesPerPixel returns the storage size of one sample of one band.
func (s *ImageSubheader) BytesPerPixel() (int, error) {
	nbpp, err := s.BitsPerPixel()
	if err != nil {
		return 0, err
	}
	if nbpp == 0 {
		return 0, fmt.Errorf("%w: NBPP is 0", errs.ErrInvalidObject)
	}

	return int((nbpp-1)/8 + 1), nil
}

// NumBands returns the number of bands.
func (s *ImageSubheader) NumBands() int {
	return len(s.Bands)
}

// BandInfo returns band i.
func (s *ImageSubheader) BandInfo(i int) (*BandInfo, error) {
	if i < 0 || i >= len(s.Bands) {
		return nil, fmt.Errorf("%w: band %d of %d", errs.ErrInvalidParameter, i, len(s.Bands))
	}

	return s.Bands[i], nil
}

// Compression returns IC.
func (s *ImageSubheader) Compression() format.CompressionType {
	return format.CompressionType(s.Fields.String("IC"))
}

// Mode returns IMODE.
func (s *ImageSubheader) Mode() format.BlockingMode {
	m := s.Fields.String("IMODE")
	if m == "" {
		return 0
	}

	return format.BlockingMode(m[0])
}

// PixelType returns PVTYPE.
func (s *ImageSubheader) PixelType() format.PixelType {
	return format.PixelType(s.Fields.String("PVTYPE"))
}

// SetPixelInformation sets the pixel value type, bit depths, justification,
// representation, category and bands.
func (s *ImageSubheader) SetPixelInformation(pvtype format.PixelType, nbpp, abpp int, pjust, irep, icat string, bands []*BandInfo) error {
	if !pvtype.IsValid() {
		return fmt.Errorf("%w: pixel type %q", errs.ErrInvalidParameter, pvtype)
	}
	if nbpp < 1 || abpp < 1 || abpp > nbpp {
		return fmt.Errorf("%w: NBPP %d ABPP %d", errs.ErrInvalidParameter, nbpp, abpp)
	}
	if len(bands) == 0 {
		return fmt.Errorf("%w: image needs at least one band", errs.ErrInvalidParameter)
	}

	for name, v := range map[string]string{"PVTYPE": string(pvtype), "PJUST": pjust, "IREP": irep, "ICAT": icat} {
		if err := s.Fields.SetString(name, v); err != nil {
			return err
		}
	}
	if err := s.Fields.SetUint("NBPP", uint64(nbpp)); err != nil {
		return err
	}
	if err := s.Fields.SetUint("ABPP", uint64(abpp)); err != nil {
		return err
	}
	s.Bands = bands

	return nil
}

// SetBlocking sets the image dimensions and block geometry. A block edge
// equal to a dimension larger than MaxBlockDimension is written as 0, the
// format's "whole dimension" value.
func (s *ImageSubheader) SetBlocking(rows, cols, rowsPerBlock, colsPerBlock uint64, mode format.BlockingMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("%w: blocking mode %q", errs.ErrInvalidParameter, mode)
	}
	if rows == 0 || cols == 0 || rowsPerBlock == 0 || colsPerBlock == 0 {
		return fmt.Errorf("%w: zero image or block dimension", errs.ErrInvalidParameter)
	}

	nppbv, err := blockDimension(rows, rowsPerBlock)
	if err != nil {
		return err
	}
	nppbh, err := blockDimension(cols, colsPerBlock)
	if err != nil {
		return err
	}

	values := []struct {
		name string
		v    uint64
	}{
		{"NROWS", rows},
		{"NCOLS", cols},
		{"NPPBV", nppbv},
		{"NPPBH", nppbh},
		{"NBPC", (rows + rowsPerBlock - 1) / rowsPerBlock},
		{"NBPR", (cols + colsPerBlock - 1) / colsPerBlock},
	}
	for _, kv := range values {
		if err := s.Fields.SetUint(kv.name, kv.v); err != nil {
			return err
		}
	}

	return s.Fields.SetString("IMODE", string(mode))
}

func blockDimension(total, perBlock uint64) (uint64, error) {
	if perBlock <= MaxBlockDimension {
		return perBlock, nil
	}
	if perBlock >= total {
		return 0, nil
	}

	return 0, fmt.Errorf("%w: block edge %d exceeds %d", errs.ErrInvalidParameter, perBlock, MaxBlockDimension)
}

// SetDimensions sets the image size, choosing the blocking: one block per
// dimension up to MaxBlockDimension, DefaultBlockLength blocks beyond.
func (s *ImageSubheader) SetDimensions(rows, cols uint64) error {
	rpb, cpb := rows, cols
	if rows > MaxBlockDimension {
		rpb = DefaultBlockLength
	}
	if cols > MaxBlockDimension {
		cpb = DefaultBlockLength
	}

	mode := s.Mode()
	if !mode.IsValid() {
		mode = format.BlockingBandInterleavedByBlock
	}

	return s.SetBlocking(rows, cols, rpb, cpb, mode)
}

// SetCompression sets IC and COMRAT.
func (s *ImageSubheader) SetCompression(ic format.CompressionType, comrat string) error {
	if len(ic) != 2 {
		return fmt.Errorf("%w: compression %q", errs.ErrInvalidParameter, ic)
	}
	if err := s.Fields.SetString("IC", string(ic)); err != nil {
		return err
	}

	return s.Fields.SetString("COMRAT", comrat)
}

// InsertComment inserts text at pos and returns its index. A position past
// the end appends.
func (s *ImageSubheader) InsertComment(text string, pos int) (int, error) {
	if len(s.Comments) >= MaxComments {
		return 0, fmt.Errorf("%w: image already has %d comments", errs.ErrFieldOverflow, MaxComments)
	}
	f, err := field.NewString(commentDef.Size, commentDef.Type, text)
	if err != nil {
		return 0, err
	}
	if pos < 0 || pos > len(s.Comments) {
		pos = len(s.Comments)
	}

	s.Comments = append(s.Comments, nil)
	copy(s.Comments[pos+1:], s.Comments[pos:])
	s.Comments[pos] = f

	return pos, nil
}

// RemoveComment deletes the comment at pos.
func (s *ImageSubheader) RemoveComment(pos int) error {
	if pos < 0 || pos >= len(s.Comments) {
		return fmt.Errorf("%w: comment %d of %d", errs.ErrInvalidParameter, pos, len(s.Comments))
	}
	s.Comments = append(s.Comments[:pos], s.Comments[pos+1:]...)

	return nil
}

func hasGeolocation(set *field.Set) bool {
	return !set.Field("ICORDS").IsBlank()
}

func hasCompressionRate(set *field.Set) bool {
	ic := format.CompressionType(set.String("IC"))
	return ic.IsCompressed()
}

// ParseImageSubheader parses an image subheader image.
func ParseImageSubheader(data []byte, opts ...tre.ParseOption) (*ImageSubheader, error) {
	s := NewImageSubheader()
	d := newDecoder("image subheader", data, opts)
	f := s.Fields

	d.fields(f, imagePrefix)
	s.Security.decode(d)
	d.fields(f, imagePixel)
	if d.err == nil && hasGeolocation(f) {
		d.fill(f.Field("IGEOLO"))
	}

	d.fill(f.Field("NICOM"))
	for i, n := 0, d.count(f, "NICOM"); i < n && d.err == nil; i++ {
		com := field.New(commentDef.Size, commentDef.Type)
		d.fill(com)
		s.Comments = append(s.Comments, com)
	}

	d.fill(f.Field("IC"))
	if d.err == nil && hasCompressionRate(f) {
		d.fill(f.Field("COMRAT"))
	}

	d.fill(f.Field("NBANDS"))
	nbands := d.count(f, "NBANDS")
	if d.err == nil && nbands == 0 {
		d.fill(f.Field("XBANDS"))
		nbands = d.count(f, "XBANDS")
	}
	for i := 0; i < nbands && d.err == nil; i++ {
		b := &BandInfo{Fields: field.FromSchema(bandSchema)}
		b.decode(d)
		s.Bands = append(s.Bands, b)
	}

	d.fields(f, imageBlocking)
	s.UserDefined = d.extensions(f, "UDIDL", "UDOFL")
	s.Extended = d.extensions(f, "IXSHDL", "IXSOFL")

	if err := d.finish(); err != nil {
		return nil, err
	}
	if !strings.EqualFold(f.String("IM"), "IM") {
		return nil, fmt.Errorf("%w: image subheader starts with %q", errs.ErrInvalidHeader, f.String("IM"))
	}

	return s, nil
}

// Bytes serializes the subheader. NICOM, NBANDS/XBANDS and the extension
// lengths are written from the comment, band and TRE lists.
func (s *ImageSubheader) Bytes() ([]byte, error) {
	e := newEncoder()
	f := s.Fields

	e.fields(f, imagePrefix)
	s.Security.encode(e)
	e.fields(f, imagePixel)
	if hasGeolocation(f) {
		e.field(f.Field("IGEOLO"))
	}

	e.setCount(f, "NICOM", len(s.Comments))
	e.field(f.Field("NICOM"))
	for _, com := range s.Comments {
		e.field(com)
	}

	e.field(f.Field("IC"))
	if hasCompressionRate(f) {
		e.field(f.Field("COMRAT"))
	}

	if len(s.Bands) <= maxNBANDS && len(s.Bands) > 0 {
		e.setCount(f, "NBANDS", len(s.Bands))
		e.field(f.Field("NBANDS"))
	} else {
		e.setCount(f, "NBANDS", 0)
		e.setCount(f, "XBANDS", len(s.Bands))
		e.field(f.Field("NBANDS"))
		e.field(f.Field("XBANDS"))
	}
	for _, b := range s.Bands {
		b.encode(e)
	}

	e.fields(f, imageBlocking)
	e.extensions(s.UserDefined, f, "UDIDL", "UDOFL")
	e.extensions(s.Extended, f, "IXSHDL", "IXSOFL")

	return e.bytes()
}
