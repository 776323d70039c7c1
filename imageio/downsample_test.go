package imageio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/format"
)

var uint8px = PixelFormat{Type: format.PixelInteger, Size: 1}

// grid is a 5×5 band with distinct values; the largest of each 2×2 cell is
// its bottom right pixel.
func grid() []byte {
	b := make([]byte, 25)
	for i := range b {
		b[i] = byte(i)
	}

	return b
}

func TestPixelSkip(t *testing.T) {
	d, err := NewPixelSkip(2, 2)
	require.NoError(t, err)
	require.Equal(t, 2, d.RowSkip())
	require.Equal(t, 2, d.ColSkip())

	out := [][]byte{make([]byte, 9)}
	require.NoError(t, d.Apply([][]byte{grid()}, 5, 5, out, 3, 3, uint8px))
	require.Equal(t, []byte{0, 2, 4, 10, 12, 14, 20, 22, 24}, out[0])

	n, err := NewNearest(2, 2)
	require.NoError(t, err)
	nearest := [][]byte{make([]byte, 9)}
	require.NoError(t, n.Apply([][]byte{grid()}, 5, 5, nearest, 3, 3, uint8px))
	require.Equal(t, out, nearest)
}

func TestMaxDownSample(t *testing.T) {
	d, err := NewMaxDownSample(2, 2)
	require.NoError(t, err)

	t.Run("Edge cells are clipped", func(t *testing.T) {
		out := [][]byte{make([]byte, 9)}
		require.NoError(t, d.Apply([][]byte{grid()}, 5, 5, out, 3, 3, uint8px))
		require.Equal(t, []byte{6, 8, 9, 16, 18, 19, 21, 23, 24}, out[0])
	})

	t.Run("Signed", func(t *testing.T) {
		px := PixelFormat{Type: format.PixelSignedInteger, Size: 2}
		in := []byte{0xff, 0xff, 0x00, 0x01, 0x80, 0x00, 0xff, 0x00}
		out := [][]byte{make([]byte, 2)}
		require.NoError(t, d.Apply([][]byte{in}, 2, 2, out, 1, 1, px))
		require.Equal(t, []byte{0x00, 0x01}, out[0])
	})

	t.Run("Real", func(t *testing.T) {
		px := PixelFormat{Type: format.PixelReal, Size: 4}
		in := make([]byte, 16)
		for i, v := range []float32{-3, 2.5, -10, 1} {
			binary.BigEndian.PutUint32(in[i*4:], math.Float32bits(v))
		}
		out := [][]byte{make([]byte, 4)}
		require.NoError(t, d.Apply([][]byte{in}, 2, 2, out, 1, 1, px))
		require.Equal(t, float32(2.5), math.Float32frombits(binary.BigEndian.Uint32(out[0])))
	})

	t.Run("Complex by magnitude", func(t *testing.T) {
		px := PixelFormat{Type: format.PixelComplex, Size: 8}
		in := make([]byte, 32)
		for i, v := range [][2]float32{{1, 1}, {0, -3}, {2, 2}, {-1, 0}} {
			binary.BigEndian.PutUint32(in[i*8:], math.Float32bits(v[0]))
			binary.BigEndian.PutUint32(in[i*8+4:], math.Float32bits(v[1]))
		}
		out := [][]byte{make([]byte, 8)}
		require.NoError(t, d.Apply([][]byte{in}, 2, 2, out, 1, 1, px))
		require.Equal(t, in[8:16], out[0])
	})
}

func TestPairSelectors(t *testing.T) {
	// cell values (band0, band1): (3, 0) (1, 4) (2, 2) (0, 1)
	in := [][]byte{{3, 1, 2, 0}, {0, 4, 2, 1}}

	t.Run("Sum of squares", func(t *testing.T) {
		d, err := NewSumSqDownSample(2, 2)
		require.NoError(t, err)
		out := [][]byte{{0}, {0}}
		require.NoError(t, d.Apply(in, 2, 2, out, 1, 1, uint8px))
		require.Equal(t, [][]byte{{1}, {4}}, out)
	})

	t.Run("Select first band", func(t *testing.T) {
		d, err := NewSelect2DownSample(2, 2)
		require.NoError(t, err)
		out := [][]byte{{0}, {0}}
		require.NoError(t, d.Apply(in, 2, 2, out, 1, 1, uint8px))
		require.Equal(t, [][]byte{{3}, {0}}, out)
	})

	t.Run("Needs two bands", func(t *testing.T) {
		d, err := NewSelect2DownSample(2, 2)
		require.NoError(t, err)
		err = d.Apply([][]byte{in[0]}, 2, 2, [][]byte{{0}}, 1, 1, uint8px)
		require.ErrorIs(t, err, errs.ErrInvalidParameter)
	})
}

func TestDownSampler_Errors(t *testing.T) {
	_, err := NewPixelSkip(0, 1)
	require.ErrorIs(t, err, errs.ErrInvalidParameter)
	_, err = NewMaxDownSample(1, -1)
	require.ErrorIs(t, err, errs.ErrInvalidParameter)

	d, err := NewPixelSkip(2, 2)
	require.NoError(t, err)
	err = d.Apply([][]byte{grid()}, 5, 5, [][]byte{make([]byte, 16)}, 4, 4, uint8px)
	require.ErrorIs(t, err, errs.ErrInvalidParameter)
	err = d.Apply([][]byte{grid()}, 5, 5, [][]byte{make([]byte, 4)}, 3, 3, uint8px)
	require.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func TestPixelFormat_Validate(t *testing.T) {
	require.NoError(t, PixelFormat{Type: format.PixelComplex, Size: 16}.Validate())
	require.NoError(t, PixelFormat{Type: format.PixelBiLevel, Size: 1}.Validate())
	require.ErrorIs(t, PixelFormat{Type: format.PixelReal, Size: 2}.Validate(), errs.ErrInvalidParameter)
	require.ErrorIs(t, PixelFormat{Type: "XX", Size: 1}.Validate(), errs.ErrInvalidParameter)
}
