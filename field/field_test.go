package field

import (
	"testing"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{BCSA, "     "},
		{BCSN, "00000"},
		{Binary, "\x00\x00\x00\x00\x00"},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			f := New(5, tt.typ)
			require.Equal(t, 5, f.Len())
			require.Equal(t, tt.want, f.String())
			require.False(t, f.Resizable())
		})
	}
}

func TestField_SetString(t *testing.T) {
	t.Run("BCS-A fills right", func(t *testing.T) {
		f := New(6, BCSA)
		require.NoError(t, f.SetString("AB"))
		require.Equal(t, "AB    ", f.String())
		require.Equal(t, "AB", f.Trimmed())
	})

	t.Run("BCS-N fills left", func(t *testing.T) {
		f := New(5, BCSN)
		require.NoError(t, f.SetString("42"))
		require.Equal(t, "00042", f.String())
	})

	t.Run("BCS-N sign moves to front", func(t *testing.T) {
		f := New(5, BCSN)
		require.NoError(t, f.SetString("-42"))
		require.Equal(t, "-0042", f.String())

		v, err := f.Int()
		require.NoError(t, err)
		require.Equal(t, int64(-42), v)
	})

	t.Run("Overflow is not truncated", func(t *testing.T) {
		f := New(3, BCSA)
		require.NoError(t, f.SetString("XYZ"))

		err := f.SetString("ABCD")
		require.ErrorIs(t, err, errs.ErrFieldOverflow)
		require.Equal(t, "XYZ", f.String())
	})

	t.Run("BCS-N rejects letters", func(t *testing.T) {
		f := New(4, BCSN)
		require.ErrorIs(t, f.SetString("12a"), errs.ErrFieldOverflow)
		require.Equal(t, "0000", f.String())
	})

	t.Run("BCS-A rejects control bytes", func(t *testing.T) {
		f := New(4, BCSA)
		require.ErrorIs(t, f.SetString("a\x01"), errs.ErrFieldOverflow)
	})

	t.Run("Binary rejects strings", func(t *testing.T) {
		f := New(4, Binary)
		require.ErrorIs(t, f.SetString("ab"), errs.ErrInvalidParameter)
	})

	t.Run("Resizable follows value", func(t *testing.T) {
		f := NewResizable(0, BCSA)
		require.NoError(t, f.SetString("hello"))
		require.Equal(t, 5, f.Len())
		require.Equal(t, "hello", f.String())
	})
}

func TestField_Numeric(t *testing.T) {
	t.Run("Uint round trip", func(t *testing.T) {
		f := New(8, BCSN)
		require.NoError(t, f.SetUint(512))
		require.Equal(t, "00000512", f.String())

		v, err := f.Uint()
		require.NoError(t, err)
		require.Equal(t, uint64(512), v)
	})

	t.Run("Uint overflow", func(t *testing.T) {
		f := New(3, BCSN)
		require.ErrorIs(t, f.SetUint(1000), errs.ErrFieldOverflow)
	})

	t.Run("Int into BCS-A is left justified", func(t *testing.T) {
		f := New(5, BCSA)
		require.NoError(t, f.SetInt(-7))
		require.Equal(t, "-7   ", f.String())

		v, err := f.Int()
		require.NoError(t, err)
		require.Equal(t, int64(-7), v)
	})

	t.Run("Blank reads as zero", func(t *testing.T) {
		f := New(4, BCSA)
		require.True(t, f.IsBlank())

		v, err := f.Uint()
		require.NoError(t, err)
		require.Zero(t, v)
	})

	t.Run("Not a number", func(t *testing.T) {
		f := New(4, BCSA)
		require.NoError(t, f.SetString("abc"))

		_, err := f.Int()
		require.ErrorIs(t, err, errs.ErrInvalidParameter)
	})

	t.Run("Binary big-endian", func(t *testing.T) {
		f := New(4, Binary)
		require.NoError(t, f.SetUint(0x01020304))
		require.Equal(t, []byte{1, 2, 3, 4}, f.Bytes())

		v, err := f.Uint()
		require.NoError(t, err)
		require.Equal(t, uint64(0x01020304), v)
	})

	t.Run("Binary signed", func(t *testing.T) {
		f := New(2, Binary)
		require.NoError(t, f.SetInt(-2))

		v, err := f.Int()
		require.NoError(t, err)
		require.Equal(t, int64(-2), v)
	})

	t.Run("Binary overflow", func(t *testing.T) {
		f := New(1, Binary)
		require.ErrorIs(t, f.SetUint(256), errs.ErrFieldOverflow)
	})

	t.Run("Binary odd width", func(t *testing.T) {
		f := New(3, Binary)
		require.ErrorIs(t, f.SetUint(1), errs.ErrInvalidParameter)
	})
}

func TestField_SetFloat(t *testing.T) {
	tests := []struct {
		name  string
		width int
		typ   Type
		v     float64
		plus  bool
		want  string
	}{
		{"fraction", 4, BCSA, 1.5, false, "1.50"},
		{"whole number fills zeros", 4, BCSN, 12, false, "12.0"},
		{"plus sign", 5, BCSA, 2.25, true, "+2.25"},
		{"negative", 6, BCSN, -3.125, false, "-3.125"},
		{"drops decimal point", 3, BCSN, 999.2, false, "999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.width, tt.typ)
			require.NoError(t, f.SetFloat(tt.v, tt.plus))
			require.Equal(t, tt.want, f.String())
		})
	}

	t.Run("Too wide", func(t *testing.T) {
		f := New(2, BCSN)
		require.ErrorIs(t, f.SetFloat(12345, false), errs.ErrFieldOverflow)
	})

	t.Run("Binary float32", func(t *testing.T) {
		f := New(4, Binary)
		require.NoError(t, f.SetFloat(0.5, false))

		v, err := f.Float()
		require.NoError(t, err)
		require.InDelta(t, 0.5, v, 1e-9)
	})
}

func TestField_CloneEqual(t *testing.T) {
	f := New(4, BCSA)
	require.NoError(t, f.SetString("ABCD"))

	c := f.Clone()
	require.True(t, f.Equal(c))

	require.NoError(t, c.SetString("WXYZ"))
	require.Equal(t, "ABCD", f.String())
	require.False(t, f.Equal(c))

	var nilField *Field
	require.Nil(t, nilField.Clone())
	require.True(t, nilField.Equal(nil))
	require.False(t, f.Equal(nil))
}

func TestField_SetBytesBinaryLength(t *testing.T) {
	f := New(3, Binary)
	require.ErrorIs(t, f.SetBytes([]byte{1}), errs.ErrInvalidParameter)
	require.NoError(t, f.SetBytes([]byte{1, 2, 3}))
	require.ErrorIs(t, f.SetBytes([]byte{1, 2, 3, 4}), errs.ErrFieldOverflow)
}
