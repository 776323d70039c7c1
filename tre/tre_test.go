package tre

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/field"
	"github.com/ngageoint/six-library-sub017/plugin"
)

func engrdaData() []byte {
	var b strings.Builder
	b.WriteString("TESTSYS             ") // RESRC
	b.WriteString("001")                  // RECNT
	b.WriteString("04")                   // ENGLN
	b.WriteString("TEMP")                 // ENGLBL
	b.WriteString("0001")                 // ENGMTXC
	b.WriteString("0002")                 // ENGMTXR
	b.WriteString("I")                    // ENGTYP
	b.WriteString("2")                    // ENGDTS
	b.WriteString("dC")                   // ENGDATU
	b.WriteString("00000002")             // ENGDATC
	b.Write([]byte{0x00, 0x15, 0x00, 0x16})

	return []byte(b.String())
}

func TestParse_ENGRDA(t *testing.T) {
	data := engrdaData()

	x, err := Parse("ENGRDA", ENGRDA, data)
	require.NoError(t, err)
	require.False(t, x.IsRaw())
	require.Equal(t, len(data), x.Length())

	require.Equal(t, "TESTSYS", x.Field("RESRC").Trimmed())
	require.Equal(t, "TEMP", x.Field("ENGLBL[0]").String())
	require.Equal(t, []byte{0x00, 0x15, 0x00, 0x16}, x.Field("ENGDATA[0]").Bytes())
	require.Nil(t, x.Field("ENGLBL"))

	require.Equal(t, data, x.Bytes())
}

func TestParse_Malformed(t *testing.T) {
	data := engrdaData()

	t.Run("truncated", func(t *testing.T) {
		_, err := Parse("ENGRDA", ENGRDA, data[:len(data)-1])
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		_, err := Parse("ENGRDA", ENGRDA, append(append([]byte(nil), data...), 'X'))
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})

	t.Run("count is not a number", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		copy(bad[20:], "0x1")
		_, err := Parse("ENGRDA", ENGRDA, bad)
		require.ErrorIs(t, err, errs.ErrInvalidParameter)
	})
}

func TestNew_LayoutFollowsCounts(t *testing.T) {
	x, err := New("ENGRDA", ENGRDA)
	require.NoError(t, err)
	require.Equal(t, 23, x.Length(), "an empty ENGRDA has no records")

	require.NoError(t, x.SetField("RESRC", "SENSOR"))
	require.NoError(t, x.SetField("RECNT", "1"))
	require.NotNil(t, x.Field("ENGLN[0]"))
	require.Equal(t, 0, x.Field("ENGLBL[0]").Len())
	require.Equal(t, 23+22, x.Length())

	require.NoError(t, x.SetField("ENGLN[0]", "4"))
	require.Equal(t, 4, x.Field("ENGLBL[0]").Len())
	require.NoError(t, x.SetField("ENGLBL[0]", "TEMP"))

	require.NoError(t, x.SetField("ENGDTS[0]", "2"))
	require.NoError(t, x.SetField("ENGDATC[0]", "2"))
	require.Equal(t, 4, x.Field("ENGDATA[0]").Len())
	require.NoError(t, x.SetFieldBytes("ENGDATA[0]", []byte{1, 2, 3, 4}))

	parsed, err := Parse("ENGRDA", ENGRDA, x.Bytes())
	require.NoError(t, err)
	require.True(t, x.Equal(parsed))
	require.Equal(t, "SENSOR", parsed.Field("RESRC").Trimmed())

	require.ErrorIs(t, x.SetField("NOPE", "1"), errs.ErrInvalidParameter)
	require.ErrorIs(t, x.SetField("RECNT", "1000"), errs.ErrFieldOverflow)
}

func TestNew_BLOCKA(t *testing.T) {
	x, err := New("BLOCKA", BLOCKA)
	require.NoError(t, err)
	require.Equal(t, 123, x.Length())
	require.Equal(t, BLOCKA.Entries[0].Name, x.Fields().Names()[0])

	require.NoError(t, x.SetField("BLOCK_INSTANCE", "1"))
	require.NoError(t, x.SetField("L_LINES", "512"))
	require.Equal(t, "01", x.Field("BLOCK_INSTANCE").String())
	require.Equal(t, "00512", x.Field("L_LINES").String())
}

func TestNewRaw(t *testing.T) {
	x, err := NewRaw("ZZTEST", []byte("opaque"))
	require.NoError(t, err)
	require.True(t, x.IsRaw())
	require.Equal(t, []byte("opaque"), x.Bytes())
	require.NoError(t, x.SetField(RawField, "bytes!"))

	buf, err := x.AppendTo(nil)
	require.NoError(t, err)
	require.Equal(t, "ZZTEST00006bytes!", string(buf))

	for _, tag := range []string{"", "TOOLONG", " LEAD"} {
		_, err := NewRaw(tag, nil)
		require.ErrorIs(t, err, errs.ErrInvalidParameter, tag)
	}
}

func TestAppendTo_Overflow(t *testing.T) {
	x, err := NewRaw("BIG", make([]byte, MaxLength+1))
	require.NoError(t, err)

	_, err = x.AppendTo(nil)
	require.ErrorIs(t, err, errs.ErrFieldOverflow)
}

func TestDescription_Validate(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"unterminated loop", []Entry{{Type: field.BCSN, Size: 1, Name: "N"}, Loop("N")}},
		{"extra end", []Entry{EndLoop()}},
		{"unknown count", []Entry{Loop("N"), EndLoop()}},
		{"unknown length", []Entry{{Type: field.BCSA, Name: "A", LengthFrom: "L"}}},
		{"unknown multiplier", []Entry{
			{Type: field.BCSN, Size: 1, Name: "L"},
			{Type: field.BCSA, Name: "A", LengthFrom: "L", LengthTimes: "M"},
		}},
		{"unnamed", []Entry{{Type: field.BCSA, Size: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Description{Tag: "TEST", Entries: tt.entries}
			require.ErrorIs(t, d.Validate(), errs.ErrInvalidObject)
		})
	}

	for _, d := range Builtins() {
		require.NoError(t, d.Validate(), d.Tag)
	}
}

func TestDescription_NestedLoop(t *testing.T) {
	d := &Description{Tag: "NESTED", Entries: []Entry{
		{Type: field.BCSN, Size: 1, Name: "NROW"},
		Loop("NROW"),
		{Type: field.BCSN, Size: 1, Name: "NCOL"},
		Loop("NCOL"),
		{Type: field.BCSA, Size: 1, Name: "V"},
		EndLoop(),
		EndLoop(),
		{Type: field.BCSA, Size: SizeGobble, Name: "REST"},
	}}
	require.NoError(t, d.Validate())

	x, err := Parse("NESTED", d, []byte("22ab1ctail"))
	require.NoError(t, err)
	require.Equal(t, "b", x.Field("V[0][1]").String())
	require.Equal(t, "c", x.Field("V[1][0]").String())
	require.Equal(t, "tail", x.Field("REST").String())
	require.Equal(t, []byte("22ab1ctail"), x.Bytes())
}

func TestTRE_Clone(t *testing.T) {
	x, err := Parse("ENGRDA", ENGRDA, engrdaData())
	require.NoError(t, err)

	c := x.Clone()
	require.True(t, x.Equal(c))

	require.NoError(t, c.SetField("RESRC", "OTHER"))
	require.False(t, x.Equal(c))
	require.Equal(t, "TESTSYS", x.Field("RESRC").Trimmed())

	var nilTRE *TRE
	require.Nil(t, nilTRE.Clone())
}

func TestBuiltinsRegistered(t *testing.T) {
	reg, err := plugin.New()
	require.NoError(t, err)
	defer reg.Close()

	for _, d := range Builtins() {
		h, err := Resolve(reg, d.Tag)
		require.NoError(t, err)
		require.Same(t, d, h.Description(d.Tag))
	}

	x, err := NewFromRegistry(reg, "BLOCKA")
	require.NoError(t, err)
	require.Equal(t, 123, x.Length())

	_, err = Resolve(reg, "NOSUCH")
	require.ErrorIs(t, err, errs.ErrUnknownTREType)
}
