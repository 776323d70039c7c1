package field

import (
	"testing"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/stretchr/testify/require"
)

var testSchema = Schema{
	{Name: "TAG", Size: 2, Type: BCSA},
	{Name: "COUNT", Size: 3, Type: BCSN},
	{Name: "RAW", Size: 2, Type: Binary},
}

func TestFromSchema(t *testing.T) {
	s := FromSchema(testSchema)

	require.Equal(t, 3, s.Len())
	require.Equal(t, []string{"TAG", "COUNT", "RAW"}, s.Names())
	require.Equal(t, testSchema.Size(), s.Size())
	require.Equal(t, []byte("  000\x00\x00"), s.AppendBytes(nil))

	d, ok := testSchema.Lookup("COUNT")
	require.True(t, ok)
	require.Equal(t, 3, d.Size)

	_, ok = testSchema.Lookup("MISSING")
	require.False(t, ok)
}

func TestSet_TypedAccess(t *testing.T) {
	s := FromSchema(testSchema)

	require.NoError(t, s.SetString("TAG", "IM"))
	require.NoError(t, s.SetUint("COUNT", 7))
	require.NoError(t, s.SetInt("RAW", 258))

	require.Equal(t, "IM", s.String("TAG"))
	v, err := s.Uint("COUNT")
	require.NoError(t, err)
	require.Equal(t, uint64(7), v)

	i, err := s.Int("RAW")
	require.NoError(t, err)
	require.Equal(t, int64(258), i)

	require.Equal(t, []byte("IM007\x01\x02"), s.AppendBytes(nil))

	err = s.SetUint("COUNT", 1000)
	require.ErrorIs(t, err, errs.ErrFieldOverflow)
	require.Contains(t, err.Error(), "COUNT")

	require.ErrorIs(t, s.SetString("NOPE", "x"), errs.ErrInvalidParameter)
	require.Equal(t, "", s.String("NOPE"))
}

func TestSet_AddRemove(t *testing.T) {
	s := NewSet()
	s.Add("A", New(1, BCSA))
	s.Add("B", New(1, BCSA))
	s.Add("C", New(1, BCSA))

	replacement := New(4, BCSN)
	s.Add("B", replacement)
	require.Equal(t, []string{"A", "B", "C"}, s.Names())
	require.Same(t, replacement, s.Field("B"))

	s.Remove("A")
	s.Remove("missing")
	require.Equal(t, []string{"B", "C"}, s.Names())
	require.False(t, s.Has("A"))
	require.Nil(t, s.Field("A"))
}

func TestSet_CloneEqual(t *testing.T) {
	s := FromSchema(testSchema)
	require.NoError(t, s.SetString("TAG", "SY"))

	c := s.Clone()
	require.True(t, s.Equal(c))

	require.NoError(t, c.SetString("TAG", "TE"))
	require.False(t, s.Equal(c))
	require.Equal(t, "SY", s.String("TAG"))

	var nilSet *Set
	require.Nil(t, nilSet.Clone())
	require.True(t, nilSet.Equal(nil))
	require.False(t, s.Equal(nil))
}
