package tre

import (
	"fmt"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/field"
	"github.com/ngageoint/six-library-sub017/plugin"
)

// BLOCKA describes the image block information extension.
var BLOCKA = &Description{
	Tag: "BLOCKA",
	Entries: []Entry{
		{Type: field.BCSN, Size: 2, Label: "Block Instance Number", Name: "BLOCK_INSTANCE"},
		{Type: field.BCSN, Size: 5, Label: "Number of Gray Fill Pixels", Name: "N_GRAY"},
		{Type: field.BCSN, Size: 5, Label: "Row Count", Name: "L_LINES"},
		{Type: field.BCSA, Size: 3, Label: "Layover Angle", Name: "LAYOVER_ANGLE"},
		{Type: field.BCSA, Size: 3, Label: "Shadow Angle", Name: "SHADOW_ANGLE"},
		{Type: field.BCSA, Size: 16, Label: "Reserved", Name: "RESERVED1"},
		{Type: field.BCSA, Size: 21, Label: "First Row, First Column Location", Name: "FRLC_LOC"},
		{Type: field.BCSA, Size: 21, Label: "Last Row, First Column Location", Name: "LRLC_LOC"},
		{Type: field.BCSA, Size: 21, Label: "Last Row, Last Column Location", Name: "LRFC_LOC"},
		{Type: field.BCSA, Size: 21, Label: "First Row, Last Column Location", Name: "FRFC_LOC"},
		{Type: field.BCSA, Size: 5, Label: "Reserved", Name: "RESERVED2"},
	},
}

// ENGRDA describes the engineering data extension: a counted list of
// records whose label and data lengths come from fields of the same record.
var ENGRDA = &Description{
	Tag: "ENGRDA",
	Entries: []Entry{
		{Type: field.BCSA, Size: 20, Label: "Unique Source System Name", Name: "RESRC"},
		{Type: field.BCSN, Size: 3, Label: "Record Entry Count", Name: "RECNT"},
		Loop("RECNT"),
		{Type: field.BCSN, Size: 2, Label: "Engineering Data Label Length", Name: "ENGLN"},
		{Type: field.BCSA, Label: "Engineering Data Label", Name: "ENGLBL", LengthFrom: "ENGLN"},
		{Type: field.BCSN, Size: 4, Label: "Engineering Matrix Data Column Count", Name: "ENGMTXC"},
		{Type: field.BCSN, Size: 4, Label: "Engineering Matrix Data Row Count", Name: "ENGMTXR"},
		{Type: field.BCSA, Size: 1, Label: "Value Type of Engineering Data Element", Name: "ENGTYP"},
		{Type: field.BCSN, Size: 1, Label: "Engineering Data Element Size", Name: "ENGDTS"},
		{Type: field.BCSA, Size: 2, Label: "Engineering Data Units", Name: "ENGDATU"},
		{Type: field.BCSN, Size: 8, Label: "Engineering Data Count", Name: "ENGDATC"},
		{Type: field.Binary, Label: "Engineering Data", Name: "ENGDATA", LengthFrom: "ENGDATC", LengthTimes: "ENGDTS"},
		EndLoop(),
	},
}

// Builtins returns the descriptions linked into every registry.
func Builtins() []*Description {
	return []*Description{BLOCKA, ENGRDA}
}

func init() {
	byTag := make(map[string]*DescriptionHandler)
	tags := make([]string, 0, len(Builtins()))
	for _, d := range Builtins() {
		h, err := NewDescriptionHandler(d)
		if err != nil {
			panic(err)
		}
		byTag[d.Tag] = h
		tags = append(tags, d.Tag)
	}

	plugin.Register(plugin.TRE, plugin.Static(func(tag string) (any, error) {
		h, ok := byTag[tag]
		if !ok {
			return nil, fmt.Errorf("%w: %q", errs.ErrUnknownTREType, tag)
		}

		return h, nil
	}, tags...))
}
