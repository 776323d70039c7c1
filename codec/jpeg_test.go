package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ngageoint/six-library-sub017/blocking"
	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/format"
	"github.com/ngageoint/six-library-sub017/internal/memfile"
)

// smooth returns n units of a gentle gradient JPEG reproduces closely.
func smooth(n, rows, cols, bands int) [][]byte {
	out := make([][]byte, n)
	for u := range out {
		out[u] = make([]byte, rows*cols*bands)
		for y := range rows {
			for x := range cols {
				for b := range bands {
					out[u][(y*cols+x)*bands+b] = byte(64 + u*20 + b*10 + x + y)
				}
			}
		}
	}

	return out
}

func requireClose(t *testing.T, want, got []byte, tolerance int) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		d := int(want[i]) - int(got[i])
		if d < -tolerance || d > tolerance {
			require.Failf(t, "sample differs", "sample %d: want %d got %d", i, want[i], got[i])
		}
	}
}

func TestJPEGCodec(t *testing.T) {
	tests := []struct {
		name      string
		layout    blocking.Layout
		tolerance int
	}{
		{
			name:      "Gray",
			layout:    blocking.Layout{Rows: 16, Cols: 32, Bands: 1, BytesPerPixel: 1, Mode: format.BlockingBandInterleavedByBlock},
			tolerance: 4,
		},
		{
			name:      "RGB",
			layout:    blocking.Layout{Rows: 16, Cols: 32, Bands: 3, BytesPerPixel: 1, Mode: format.BlockingBandInterleavedByPixel},
			tolerance: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newJPEGCodec(format.CompressionJPEG)
			info := &blocking.Info{NumBlocksPerRow: 2, NumBlocksPerCol: 1, NumRowsPerBlock: 16, NumColsPerBlock: 16,
				Length: 16 * 16 * tt.layout.Bands}
			data := smooth(2, 16, 16, tt.layout.Bands)
			f, length := writeImage(t, c, 10, tt.layout, info, data)

			mask := blocking.NewMask(tt.layout, info)
			ctl, err := c.Open(f, 10, length, tt.layout, info, mask)
			require.NoError(t, err)

			first, err := mask.UnitOffset(0)
			require.NoError(t, err)
			require.Equal(t, uint64(10), first)

			for i, want := range data {
				got, err := ctl.ReadBlock(i)
				require.NoError(t, err)
				requireClose(t, want, got, tt.tolerance)
				ctl.FreeBlock(got)
			}
			require.NoError(t, ctl.Close())
		})
	}
}

func TestJPEGCodec_Masked(t *testing.T) {
	layout := blocking.Layout{Rows: 8, Cols: 24, Bands: 1, BytesPerPixel: 1, Mode: format.BlockingBandInterleavedByBlock}
	info := &blocking.Info{NumBlocksPerRow: 3, NumBlocksPerCol: 1, NumRowsPerBlock: 8, NumColsPerBlock: 8, Length: 64}
	data := smooth(3, 8, 8, 1)

	f, length := writeImage(t, newJPEGCodec(format.CompressionJPEG), 0, layout, info, data)
	end0, err := jpegStreamEnd(f.Bytes(), 0)
	require.NoError(t, err)
	end1, err := jpegStreamEnd(f.Bytes(), end0)
	require.NoError(t, err)

	// Unit 1 is dropped from the mask; its stream stays in the data.
	mask := blocking.NewMask(layout, info)
	require.NoError(t, mask.SetUnit(0, 0))
	require.NoError(t, mask.SetUnit(2, uint64(end1)))

	c := newJPEGCodec(format.CompressionJPEGMasked)
	ctl, err := c.Open(f, 0, length, layout, info, mask)
	require.NoError(t, err)

	got, err := ctl.ReadBlock(0)
	require.NoError(t, err)
	requireClose(t, data[0], got, 4)
	got, err = ctl.ReadBlock(2)
	require.NoError(t, err)
	requireClose(t, data[2], got, 4)

	_, err = ctl.ReadBlock(1)
	require.ErrorIs(t, err, errs.ErrInvalidParameter)

	_, err = c.Start(memfile.New(nil), 0, layout, info)
	require.ErrorIs(t, err, errs.ErrUnknownCompressionType)
}

func TestJPEGCodec_Errors(t *testing.T) {
	c := newJPEGCodec(format.CompressionJPEG)

	t.Run("Unsupported layout", func(t *testing.T) {
		layout := blocking.Layout{Rows: 8, Cols: 8, Bands: 2, BytesPerPixel: 1, Mode: format.BlockingBandInterleavedByPixel}
		info := &blocking.Info{NumBlocksPerRow: 1, NumBlocksPerCol: 1, NumRowsPerBlock: 8, NumColsPerBlock: 8, Length: 128}

		_, err := c.Open(memfile.New(nil), 0, 0, layout, info, blocking.NewMask(layout, info))
		require.ErrorIs(t, err, errs.ErrDecompression)
		require.ErrorIs(t, err, errs.ErrInvalidObject)

		_, err = c.Start(memfile.New(nil), 0, layout, info)
		require.ErrorIs(t, err, errs.ErrCompression)
	})

	t.Run("Out of order", func(t *testing.T) {
		layout := blocking.Layout{Rows: 8, Cols: 16, Bands: 1, BytesPerPixel: 1, Mode: format.BlockingBandInterleavedByBlock}
		info := &blocking.Info{NumBlocksPerRow: 2, NumBlocksPerCol: 1, NumRowsPerBlock: 8, NumColsPerBlock: 8, Length: 64}
		ctl, err := c.Start(memfile.New(nil), 0, layout, info)
		require.NoError(t, err)

		require.ErrorIs(t, ctl.WriteBlock(1, make([]byte, 64)), errs.ErrInvalidParameter)
		require.NoError(t, ctl.WriteBlock(0, make([]byte, 64)))
		_, err = ctl.End()
		require.ErrorIs(t, err, errs.ErrInvalidObject)
	})

	t.Run("Truncated stream", func(t *testing.T) {
		layout := blocking.Layout{Rows: 8, Cols: 8, Bands: 1, BytesPerPixel: 1, Mode: format.BlockingBandInterleavedByBlock}
		info := &blocking.Info{NumBlocksPerRow: 1, NumBlocksPerCol: 1, NumRowsPerBlock: 8, NumColsPerBlock: 8, Length: 64}
		f, length := writeImage(t, c, 0, layout, info, smooth(1, 8, 8, 1))

		_, err := c.Open(f, 0, length-2, layout, info, blocking.NewMask(layout, info))
		require.ErrorIs(t, err, errs.ErrInvalidObject)
	})
}

func TestJPEGStreamEnd(t *testing.T) {
	stream := []byte{
		0xFF, markerSOI,
		0xFF, 0xE0, 0x00, 0x04, 0xFF, 0xD9, // APP0 whose payload looks like EOI
		0xFF, markerSOS, 0x00, 0x03, 0x01,
		0x12, 0xFF, 0x00, 0x34, 0xFF, markerRST0, 0x56, // stuffed byte and restart marker
		0xFF, 0xFF, markerEOI, // fill byte before EOI
	}

	end, err := jpegStreamEnd(append(stream, 0xAA), 0)
	require.NoError(t, err)
	require.Equal(t, len(stream), end)

	_, err = jpegStreamEnd(stream[:len(stream)-1], 0)
	require.ErrorIs(t, err, errs.ErrInvalidObject)

	_, err = jpegStreamEnd([]byte{0x00, 0x01}, 0)
	require.ErrorIs(t, err, errs.ErrInvalidObject)
}
