package record

import (
	"github.com/ngageoint/six-library-sub017/field"
)

// Field layouts of NITF 2.1 / NSIF 1.0. Conditional and repeated parts are
// declared as separate schemas and sequenced by the parse and serialize code.

// SecuritySchema is the classification followed by the security group shared
// by the file header and every subheader (167 bytes).
var SecuritySchema = field.Schema{
	{Name: "CLAS", Size: 1, Type: field.BCSA},
	{Name: "CLSY", Size: 2, Type: field.BCSA},
	{Name: "CODE", Size: 11, Type: field.BCSA},
	{Name: "CTLH", Size: 2, Type: field.BCSA},
	{Name: "REL", Size: 20, Type: field.BCSA},
	{Name: "DCTP", Size: 2, Type: field.BCSA},
	{Name: "DCDT", Size: 8, Type: field.BCSA},
	{Name: "DCXM", Size: 4, Type: field.BCSA},
	{Name: "DG", Size: 1, Type: field.BCSA},
	{Name: "DGDT", Size: 8, Type: field.BCSA},
	{Name: "CLTX", Size: 43, Type: field.BCSA},
	{Name: "CATP", Size: 1, Type: field.BCSA},
	{Name: "CAUT", Size: 40, Type: field.BCSA},
	{Name: "CRSN", Size: 1, Type: field.BCSA},
	{Name: "SRDT", Size: 8, Type: field.BCSA},
	{Name: "CTLN", Size: 15, Type: field.BCSA},
}

// File header, before and after the security group.
var (
	fileHeaderPrefix = field.Schema{
		{Name: "FHDR", Size: 4, Type: field.BCSA},
		{Name: "FVER", Size: 5, Type: field.BCSA},
		{Name: "CLEVEL", Size: 2, Type: field.BCSN},
		{Name: "STYPE", Size: 4, Type: field.BCSA},
		{Name: "OSTAID", Size: 10, Type: field.BCSA},
		{Name: "FDT", Size: 14, Type: field.BCSN},
		{Name: "FTITLE", Size: 80, Type: field.BCSA},
	}
	fileHeaderMiddle = field.Schema{
		{Name: "FSCOP", Size: 5, Type: field.BCSN},
		{Name: "FSCPYS", Size: 5, Type: field.BCSN},
		{Name: "ENCRYP", Size: 1, Type: field.BCSN},
		{Name: "FBKGC", Size: 3, Type: field.Binary},
		{Name: "ONAME", Size: 24, Type: field.BCSA},
		{Name: "OPHONE", Size: 18, Type: field.BCSA},
		{Name: "FL", Size: 12, Type: field.BCSN},
		{Name: "HL", Size: 6, Type: field.BCSN},
	}
	fileHeaderCounts = field.Schema{
		{Name: "NUMI", Size: 3, Type: field.BCSN},
		{Name: "NUMS", Size: 3, Type: field.BCSN},
		{Name: "NUMX", Size: 3, Type: field.BCSN},
		{Name: "NUMT", Size: 3, Type: field.BCSN},
		{Name: "NUMDES", Size: 3, Type: field.BCSN},
		{Name: "NUMRES", Size: 3, Type: field.BCSN},
	}
	fileHeaderExtensions = field.Schema{
		{Name: "UDHDL", Size: 5, Type: field.BCSN},
		{Name: "UDHOFL", Size: 3, Type: field.BCSN},
		{Name: "XHDL", Size: 5, Type: field.BCSN},
		{Name: "XHDLOFL", Size: 3, Type: field.BCSN},
	}
)

// fixedHeaderLength is the offset just past HL: enough to learn the header length.
var fixedHeaderLength = fileHeaderPrefix.Size() + SecuritySchema.Size() + fileHeaderMiddle.Size()

// componentWidths gives the subheader and data length widths of each
// segment kind in the file header, in file order.
type componentWidths struct {
	count       string
	subheader   int
	data        int
	subheaderID string
	dataID      string
}

var componentLayout = [...]componentWidths{
	{count: "NUMI", subheader: 6, data: 10, subheaderID: "LISH", dataID: "LI"},
	{count: "NUMS", subheader: 4, data: 6, subheaderID: "LSSH", dataID: "LS"},
	{count: "NUMX", subheader: 4, data: 3, subheaderID: "LLSH", dataID: "LL"},
	{count: "NUMT", subheader: 4, data: 5, subheaderID: "LTSH", dataID: "LT"},
	{count: "NUMDES", subheader: 4, data: 9, subheaderID: "LDSH", dataID: "LD"},
	{count: "NUMRES", subheader: 4, data: 7, subheaderID: "LRESH", dataID: "LRE"},
}

// Image subheader parts.
var (
	imagePrefix = field.Schema{
		{Name: "IM", Size: 2, Type: field.BCSA},
		{Name: "IID1", Size: 10, Type: field.BCSA},
		{Name: "IDATIM", Size: 14, Type: field.BCSN},
		{Name: "TGTID", Size: 17, Type: field.BCSA},
		{Name: "IID2", Size: 80, Type: field.BCSA},
	}
	imagePixel = field.Schema{
		{Name: "ENCRYP", Size: 1, Type: field.BCSN},
		{Name: "ISORCE", Size: 42, Type: field.BCSA},
		{Name: "NROWS", Size: 8, Type: field.BCSN},
		{Name: "NCOLS", Size: 8, Type: field.BCSN},
		{Name: "PVTYPE", Size: 3, Type: field.BCSA},
		{Name: "IREP", Size: 8, Type: field.BCSA},
		{Name: "ICAT", Size: 8, Type: field.BCSA},
		{Name: "ABPP", Size: 2, Type: field.BCSN},
		{Name: "PJUST", Size: 1, Type: field.BCSA},
		{Name: "ICORDS", Size: 1, Type: field.BCSA},
	}
	imageConditional = field.Schema{
		{Name: "IGEOLO", Size: 60, Type: field.BCSA},
		{Name: "NICOM", Size: 1, Type: field.BCSN},
		{Name: "IC", Size: 2, Type: field.BCSA},
		{Name: "COMRAT", Size: 4, Type: field.BCSA},
		{Name: "NBANDS", Size: 1, Type: field.BCSN},
		{Name: "XBANDS", Size: 5, Type: field.BCSN},
	}
	imageBlocking = field.Schema{
		{Name: "ISYNC", Size: 1, Type: field.BCSN},
		{Name: "IMODE", Size: 1, Type: field.BCSA},
		{Name: "NBPR", Size: 4, Type: field.BCSN},
		{Name: "NBPC", Size: 4, Type: field.BCSN},
		{Name: "NPPBH", Size: 4, Type: field.BCSN},
		{Name: "NPPBV", Size: 4, Type: field.BCSN},
		{Name: "NBPP", Size: 2, Type: field.BCSN},
		{Name: "IDLVL", Size: 3, Type: field.BCSN},
		{Name: "IALVL", Size: 3, Type: field.BCSN},
		{Name: "ILOC", Size: 10, Type: field.BCSN},
		{Name: "IMAG", Size: 4, Type: field.BCSA},
	}
	imageExtensions = field.Schema{
		{Name: "UDIDL", Size: 5, Type: field.BCSN},
		{Name: "UDOFL", Size: 3, Type: field.BCSN},
		{Name: "IXSHDL", Size: 5, Type: field.BCSN},
		{Name: "IXSOFL", Size: 3, Type: field.BCSN},
	}

	commentDef = field.Def{Name: "ICOM", Size: 80, Type: field.BCSA}

	bandSchema = field.Schema{
		{Name: "IREPBAND", Size: 2, Type: field.BCSA},
		{Name: "ISUBCAT", Size: 6, Type: field.BCSA},
		{Name: "IFC", Size: 1, Type: field.BCSA},
		{Name: "IMFLT", Size: 3, Type: field.BCSA},
		{Name: "NLUTS", Size: 1, Type: field.BCSN},
		{Name: "NELUT", Size: 5, Type: field.BCSN},
	}
)

// Graphic, text and label subheaders.
var (
	graphicPrefix = field.Schema{
		{Name: "SY", Size: 2, Type: field.BCSA},
		{Name: "SID", Size: 10, Type: field.BCSA},
		{Name: "SNAME", Size: 20, Type: field.BCSA},
	}
	graphicBody = field.Schema{
		{Name: "ENCRYP", Size: 1, Type: field.BCSN},
		{Name: "SFMT", Size: 1, Type: field.BCSA},
		{Name: "SSTRUCT", Size: 13, Type: field.BCSN},
		{Name: "SDLVL", Size: 3, Type: field.BCSN},
		{Name: "SALVL", Size: 3, Type: field.BCSN},
		{Name: "SLOC", Size: 10, Type: field.BCSN},
		{Name: "SBND1", Size: 10, Type: field.BCSN},
		{Name: "SCOLOR", Size: 1, Type: field.BCSA},
		{Name: "SBND2", Size: 10, Type: field.BCSN},
		{Name: "SRES2", Size: 2, Type: field.BCSN},
	}

	textPrefix = field.Schema{
		{Name: "TE", Size: 2, Type: field.BCSA},
		{Name: "TEXTID", Size: 7, Type: field.BCSA},
		{Name: "TXTALVL", Size: 3, Type: field.BCSN},
		{Name: "TXTDT", Size: 14, Type: field.BCSN},
		{Name: "TXTITL", Size: 80, Type: field.BCSA},
	}
	textBody = field.Schema{
		{Name: "ENCRYP", Size: 1, Type: field.BCSN},
		{Name: "TXTFMT", Size: 3, Type: field.BCSA},
	}

	labelPrefix = field.Schema{
		{Name: "LA", Size: 2, Type: field.BCSA},
		{Name: "LID", Size: 10, Type: field.BCSA},
	}
	labelBody = field.Schema{
		{Name: "ENCRYP", Size: 1, Type: field.BCSN},
		{Name: "LFS", Size: 1, Type: field.BCSA},
		{Name: "LCW", Size: 2, Type: field.BCSN},
		{Name: "LCH", Size: 2, Type: field.BCSN},
		{Name: "LDLVL", Size: 3, Type: field.BCSN},
		{Name: "LALVL", Size: 3, Type: field.BCSN},
		{Name: "LLOC", Size: 10, Type: field.BCSN},
		{Name: "LTC", Size: 3, Type: field.Binary},
		{Name: "LBC", Size: 3, Type: field.Binary},
	}

	// Widths of the extended subheader length and overflow fields of
	// graphic, text and label subheaders; each kind names them itself.
	extendedLength   = field.Def{Size: 5, Type: field.BCSN}
	extendedOverflow = field.Def{Size: 3, Type: field.BCSN}
)

// Data extension and reserved extension subheaders.
var (
	dePrefix = field.Schema{
		{Name: "DE", Size: 2, Type: field.BCSA},
		{Name: "DESID", Size: 25, Type: field.BCSA},
		{Name: "DESVER", Size: 2, Type: field.BCSN},
	}
	deOverflow = field.Schema{
		{Name: "DESOFLW", Size: 6, Type: field.BCSA},
		{Name: "DESITEM", Size: 3, Type: field.BCSN},
	}
	deSubheaderLength = field.Def{Name: "DESSHL", Size: 4, Type: field.BCSN}

	rePrefix = field.Schema{
		{Name: "RE", Size: 2, Type: field.BCSA},
		{Name: "RESID", Size: 25, Type: field.BCSA},
		{Name: "RESVER", Size: 2, Type: field.BCSN},
	}
	reSubheaderLength = field.Def{Name: "RESSHL", Size: 4, Type: field.BCSN}
)

// concat joins schemas into one.
func concat(parts ...field.Schema) field.Schema {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make(field.Schema, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}

	return out
}

// named returns def renamed to name.
func named(def field.Def, name string) field.Def {
	def.Name = name
	return def
}
