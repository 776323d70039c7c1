package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ngageoint/six-library-sub017/blocking"
	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/format"
	"github.com/ngageoint/six-library-sub017/internal/memfile"
	"github.com/ngageoint/six-library-sub017/plugin"
)

func newRegistry(t *testing.T) *plugin.Registry {
	t.Helper()
	reg, err := plugin.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	return reg
}

// units returns n distinct units of size bytes.
func units(n, size int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = make([]byte, size)
		for j := range out[i] {
			out[i][j] = byte(i*31 + j)
		}
	}

	return out
}

// writeImage compresses every unit not listed in skip and returns the file
// holding the image data at offset.
func writeImage(t *testing.T, c Compressor, offset uint64, layout blocking.Layout, info *blocking.Info,
	data [][]byte, skip ...int,
) (*memfile.File, uint64) {
	t.Helper()
	f := memfile.New(make([]byte, offset))
	ctl, err := c.Start(f, offset, layout, info)
	require.NoError(t, err)

	skipped := make(map[int]bool)
	for _, s := range skip {
		skipped[s] = true
	}
	for i, u := range data {
		if !skipped[i] {
			require.NoError(t, ctl.WriteBlock(i, u))
		}
	}
	length, err := ctl.End()
	require.NoError(t, err)

	return f, length
}

func TestResolve(t *testing.T) {
	reg := newRegistry(t)

	for _, id := range []format.CompressionType{"ZS", "S2", "L4", "LZ", "ZL", "C3", "M3"} {
		t.Run("Decompressor "+id.String(), func(t *testing.T) {
			d, err := ResolveDecompressor(reg, id)
			require.NoError(t, err)
			require.NotNil(t, d)
		})
	}
	for _, id := range []format.CompressionType{"ZS", "S2", "L4", "LZ", "ZL", "C3"} {
		t.Run("Compressor "+id.String(), func(t *testing.T) {
			c, err := ResolveCompressor(reg, id)
			require.NoError(t, err)
			require.NotNil(t, c)
		})
	}

	t.Run("Unknown", func(t *testing.T) {
		_, err := ResolveDecompressor(reg, format.CompressionJPEG2000)
		require.ErrorIs(t, err, errs.ErrUnknownCompressionType)
		require.ErrorIs(t, err, errs.ErrPluginNotFound)

		_, err = ResolveCompressor(reg, format.CompressionJPEGMasked)
		require.ErrorIs(t, err, errs.ErrUnknownCompressionType)
	})

	t.Run("Wrong interface", func(t *testing.T) {
		reg, err := plugin.New(plugin.WithoutBuiltins(), plugin.WithHandler(plugin.Decompression,
			plugin.Static(func(string) (any, error) { return "not a codec", nil }, "XX")))
		require.NoError(t, err)
		defer reg.Close()

		_, err = ResolveDecompressor(reg, "XX")
		require.ErrorIs(t, err, errs.ErrInvalidObject)
	})
}

func TestBlockCodec(t *testing.T) {
	layout := blocking.Layout{Rows: 8, Cols: 8, Bands: 2, BytesPerPixel: 1, Mode: format.BlockingBandSequential}
	const offset = 64

	for _, id := range blockCodecIdentifiers() {
		t.Run(id.String(), func(t *testing.T) {
			c, err := newBlockCodec(id)
			require.NoError(t, err)

			info := &blocking.Info{NumBlocksPerRow: 2, NumBlocksPerCol: 2, NumRowsPerBlock: 4, NumColsPerBlock: 4, Length: 16}
			data := units(8, 16)
			f, length := writeImage(t, c, offset, layout, info, data, 3)

			mask := blocking.NewMask(layout, info)
			s := NewSession(id, c)
			require.NoError(t, s.Open(f, offset, length, layout, info, mask))
			require.Equal(t, Opened, s.State())

			for i, want := range data {
				off, err := mask.UnitOffset(i)
				require.NoError(t, err)
				if i == 3 {
					require.Equal(t, blocking.Absent, off)
					_, err := s.ReadBlock(i)
					require.ErrorIs(t, err, errs.ErrInvalidParameter)
					continue
				}
				require.GreaterOrEqual(t, off, uint64(offset))

				got, err := s.ReadBlock(i)
				require.NoError(t, err)
				require.Equal(t, want, got)
				s.FreeBlock(got)
			}
			require.NoError(t, s.Close())
		})
	}
}

func TestBlockCodec_Errors(t *testing.T) {
	layout := blocking.Layout{Rows: 4, Cols: 4, Bands: 1, BytesPerPixel: 1, Mode: format.BlockingBandInterleavedByBlock}
	info := &blocking.Info{NumBlocksPerRow: 2, NumBlocksPerCol: 2, NumRowsPerBlock: 2, NumColsPerBlock: 2, Length: 4}
	c, err := newBlockCodec(format.CompressionZstd)
	require.NoError(t, err)

	t.Run("Wrong unit size", func(t *testing.T) {
		ctl, err := c.Start(memfile.New(nil), 0, layout, info)
		require.NoError(t, err)
		err = ctl.WriteBlock(0, []byte{1})
		require.ErrorIs(t, err, errs.ErrCompression)
		require.ErrorIs(t, err, errs.ErrInvalidParameter)
		require.ErrorIs(t, ctl.WriteBlock(4, make([]byte, 4)), errs.ErrInvalidParameter)
	})

	t.Run("Bad magic", func(t *testing.T) {
		f, length := writeImage(t, c, 0, layout, info, units(4, 4))
		f.Bytes()[length-1] = 'Y'

		_, err := c.Open(f, 0, length, layout, info, blocking.NewMask(layout, info))
		require.ErrorIs(t, err, errs.ErrDecompression)
		require.ErrorIs(t, err, errs.ErrInvalidObject)
	})

	t.Run("Unit count mismatch", func(t *testing.T) {
		f, length := writeImage(t, c, 0, layout, info, units(4, 4))
		bigger := &blocking.Info{NumBlocksPerRow: 4, NumBlocksPerCol: 2, NumRowsPerBlock: 2, NumColsPerBlock: 1, Length: 2}

		_, err := c.Open(f, 0, length, layout, bigger, blocking.NewMask(layout, bigger))
		require.ErrorIs(t, err, errs.ErrInvalidObject)
	})

	t.Run("Too short", func(t *testing.T) {
		_, err := c.Open(memfile.New([]byte{1, 2}), 0, 2, layout, info, blocking.NewMask(layout, info))
		require.ErrorIs(t, err, errs.ErrDecompression)
	})

	t.Run("Corrupt unit", func(t *testing.T) {
		f, length := writeImage(t, c, 0, layout, info, units(4, 4))
		f.Bytes()[0] ^= 0xFF

		ctl, err := c.Open(f, 0, length, layout, info, blocking.NewMask(layout, info))
		require.NoError(t, err)
		_, err = ctl.ReadBlock(0)
		require.ErrorIs(t, err, errs.ErrDecompression)
	})

	t.Run("Unit length mismatch", func(t *testing.T) {
		f, length := writeImage(t, c, 0, layout, info, units(4, 4))
		longer := *info
		longer.Length = 8

		ctl, err := c.Open(f, 0, length, layout, &longer, blocking.NewMask(layout, &longer))
		require.NoError(t, err)
		_, err = ctl.ReadBlock(1)
		require.ErrorIs(t, err, errs.ErrDecompression)
	})
}

func TestSession(t *testing.T) {
	layout := blocking.Layout{Rows: 2, Cols: 2, Bands: 1, BytesPerPixel: 1, Mode: format.BlockingBandInterleavedByBlock}
	info := &blocking.Info{NumBlocksPerRow: 1, NumBlocksPerCol: 1, NumRowsPerBlock: 2, NumColsPerBlock: 2, Length: 4}
	c, err := newBlockCodec(format.CompressionS2)
	require.NoError(t, err)
	f, length := writeImage(t, c, 0, layout, info, units(1, 4))

	s := NewSession(format.CompressionS2, c)
	require.Equal(t, Unopened, s.State())

	_, err = s.ReadBlock(0)
	require.ErrorIs(t, err, errs.ErrSessionClosed)

	require.NoError(t, s.Open(f, 0, length, layout, info, blocking.NewMask(layout, info)))
	err = s.Open(f, 0, length, layout, info, blocking.NewMask(layout, info))
	require.ErrorIs(t, err, errs.ErrInvalidObject)

	_, err = s.ReadBlock(0)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.Equal(t, Closed, s.State())
	require.NoError(t, s.Close())

	_, err = s.ReadBlock(0)
	require.ErrorIs(t, err, errs.ErrSessionClosed)
	require.ErrorIs(t, s.Open(f, 0, length, layout, info, blocking.NewMask(layout, info)), errs.ErrInvalidObject)
}

func TestSession_WrapsOpenErrors(t *testing.T) {
	layout := blocking.Layout{Rows: 2, Cols: 2, Bands: 1, BytesPerPixel: 1, Mode: format.BlockingBandInterleavedByBlock}
	info := &blocking.Info{NumBlocksPerRow: 1, NumBlocksPerCol: 1, NumRowsPerBlock: 2, NumColsPerBlock: 2, Length: 4}
	c, err := newBlockCodec(format.CompressionLZ4)
	require.NoError(t, err)

	s := NewSession(format.CompressionLZ4, c)
	err = s.Open(memfile.New(make([]byte, 4)), 100, 20, layout, info, blocking.NewMask(layout, info))
	require.ErrorIs(t, err, errs.ErrIO)
	require.ErrorIs(t, err, errs.ErrDecompression)
	require.Equal(t, Unopened, s.State())
}

func TestWholeImageCodec(t *testing.T) {
	layout := blocking.Layout{Rows: 10, Cols: 6, Bands: 2, BytesPerPixel: 1, Mode: format.BlockingBandInterleavedByBlock}
	c, err := newWholeImageCodec(format.CompressionZlib)
	require.NoError(t, err)

	writeInfo := &blocking.Info{NumBlocksPerRow: 2, NumBlocksPerCol: 3, NumRowsPerBlock: 4, NumColsPerBlock: 4, Length: 16}
	want := blocking.Info{NumBlocksPerRow: 1, NumBlocksPerCol: 1, NumRowsPerBlock: 10, NumColsPerBlock: 6, Length: 60}
	data := units(2, 60)

	f := memfile.New(make([]byte, 32))
	ctl, err := c.Start(f, 32, layout, writeInfo)
	require.NoError(t, err)
	require.Equal(t, want, *writeInfo)
	require.ErrorIs(t, ctl.WriteBlock(0, make([]byte, 16)), errs.ErrCompression)
	for i, u := range data {
		require.NoError(t, ctl.WriteBlock(i, u))
	}
	length, err := ctl.End()
	require.NoError(t, err)

	info := &blocking.Info{NumBlocksPerRow: 2, NumBlocksPerCol: 3, NumRowsPerBlock: 4, NumColsPerBlock: 4, Length: 16}
	mask := blocking.NewMask(layout, info)
	dc, err := c.Open(f, 32, length, layout, info, mask)
	require.NoError(t, err)
	require.Equal(t, want, *info)
	require.Equal(t, 2, mask.Len())
	require.False(t, mask.AllAbsent())

	for i, u := range data {
		got, err := dc.ReadBlock(i)
		require.NoError(t, err)
		require.Equal(t, u, got)
	}
	_, err = dc.ReadBlock(2)
	require.ErrorIs(t, err, errs.ErrInvalidParameter)
	require.NoError(t, dc.Close())
}
