package record

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/tre"
)

func TestPlainSubheaders_RoundTrip(t *testing.T) {
	x, err := tre.NewRaw("CMETAA", []byte("0123456789"))
	require.NoError(t, err)

	t.Run("Graphic", func(t *testing.T) {
		s := NewGraphicSubheader()
		require.NoError(t, s.Fields.SetString("SNAME", "outline"))
		s.Extended.Append(x)

		data, err := s.Bytes()
		require.NoError(t, err)
		require.Len(t, data, 258+3+21)

		parsed, err := ParseGraphicSubheader(data)
		require.NoError(t, err)
		require.True(t, s.Fields.Equal(parsed.Fields))
		require.True(t, s.Extended.Equal(parsed.Extended))
		require.Equal(t, "outline", parsed.Fields.String("SNAME"))
	})

	t.Run("Text", func(t *testing.T) {
		s := NewTextSubheader()
		require.NoError(t, s.Fields.SetString("TXTITL", "notes"))

		data, err := s.Bytes()
		require.NoError(t, err)
		require.Len(t, data, 282)

		parsed, err := ParseTextSubheader(data)
		require.NoError(t, err)
		require.True(t, s.Fields.Equal(parsed.Fields))
		require.Equal(t, "STA", parsed.Fields.String("TXTFMT"))
	})

	t.Run("Label", func(t *testing.T) {
		s := NewLabelSubheader()
		data, err := s.Bytes()
		require.NoError(t, err)
		require.Len(t, data, 212)

		parsed, err := ParseLabelSubheader(data)
		require.NoError(t, err)
		require.True(t, s.Fields.Equal(parsed.Fields))
		require.Equal(t, []byte{0xff, 0xff, 0xff}, parsed.Fields.Field("LBC").Bytes())
	})

	t.Run("Wrong part type", func(t *testing.T) {
		data, err := NewTextSubheader().Bytes()
		require.NoError(t, err)

		_, err = ParseGraphicSubheader(data)
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})
}

func TestDESubheader(t *testing.T) {
	t.Run("Plain", func(t *testing.T) {
		s, err := NewDESubheader("XML_DATA_CONTENT")
		require.NoError(t, err)
		s.UserDefined = []byte("user fields")

		data, err := s.Bytes()
		require.NoError(t, err)
		require.Len(t, data, 200+len("user fields"))

		parsed, err := ParseDESubheader(data)
		require.NoError(t, err)
		require.Equal(t, "XML_DATA_CONTENT", parsed.ID())
		require.False(t, parsed.IsTREOverflow())
		require.Equal(t, []byte("user fields"), parsed.UserDefined)
	})

	t.Run("TRE overflow", func(t *testing.T) {
		s, err := NewDESubheader(TREOverflowID)
		require.NoError(t, err)
		require.NoError(t, s.SetOverflow("UDID", 1))

		data, err := s.Bytes()
		require.NoError(t, err)
		require.Len(t, data, 209)

		parsed, err := ParseDESubheader(data)
		require.NoError(t, err)
		require.True(t, parsed.IsTREOverflow())
		require.Equal(t, "UDID", parsed.Fields.String("DESOFLW"))
		require.Equal(t, "001", parsed.Fields.String("DESITEM"))
	})

	t.Run("Overflow on plain segment", func(t *testing.T) {
		s, err := NewDESubheader("XML_DATA_CONTENT")
		require.NoError(t, err)
		require.ErrorIs(t, s.SetOverflow("UDID", 1), errs.ErrInvalidParameter)
	})

	t.Run("Clone", func(t *testing.T) {
		s, err := NewDESubheader("A")
		require.NoError(t, err)
		s.UserDefined = []byte{1}
		c := s.Clone()
		c.UserDefined[0] = 2
		require.Equal(t, byte(1), s.UserDefined[0])
	})
}

func TestRESubheader(t *testing.T) {
	s, err := NewRESubheader("RESERVED")
	require.NoError(t, err)
	s.UserDefined = []byte("abc")

	data, err := s.Bytes()
	require.NoError(t, err)
	require.Len(t, data, 200+3)

	parsed, err := ParseRESubheader(data)
	require.NoError(t, err)
	require.Equal(t, "RESERVED", parsed.ID())
	require.Equal(t, []byte("abc"), parsed.UserDefined)

	_, err = ParseRESubheader(data[:len(data)-1])
	require.ErrorIs(t, err, errs.ErrInvalidHeader)
}
