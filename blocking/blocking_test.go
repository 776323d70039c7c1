package blocking

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/format"
	"github.com/ngageoint/six-library-sub017/record"
	"github.com/ngageoint/six-library-sub017/section"
)

func newSubheader(t *testing.T, rows, cols, rpb, cpb uint64, nbpp, bands int, mode format.BlockingMode) *record.ImageSubheader {
	t.Helper()
	sub := record.NewImageSubheader()
	infos := make([]*record.BandInfo, bands)
	for i := range infos {
		b, err := record.NewBandInfo("M", "")
		require.NoError(t, err)
		infos[i] = b
	}
	require.NoError(t, sub.SetPixelInformation(format.PixelInteger, nbpp, nbpp, "R", "MONO", "VIS", infos))
	require.NoError(t, sub.SetBlocking(rows, cols, rpb, cpb, mode))

	return sub
}

func TestFromSubheader(t *testing.T) {
	tests := []struct {
		name  string
		sub   func(t *testing.T) *record.ImageSubheader
		want  Info
		units int
	}{
		{
			name: "Band interleaved by block",
			sub: func(t *testing.T) *record.ImageSubheader {
				return newSubheader(t, 512, 512, 256, 256, 8, 2, format.BlockingBandInterleavedByBlock)
			},
			want:  Info{NumBlocksPerRow: 2, NumBlocksPerCol: 2, NumRowsPerBlock: 256, NumColsPerBlock: 256, Length: 65536},
			units: 8,
		},
		{
			name: "Band interleaved by pixel",
			sub: func(t *testing.T) *record.ImageSubheader {
				return newSubheader(t, 100, 100, 64, 64, 16, 3, format.BlockingBandInterleavedByPixel)
			},
			want:  Info{NumBlocksPerRow: 2, NumBlocksPerCol: 2, NumRowsPerBlock: 64, NumColsPerBlock: 64, Length: 64 * 64 * 2 * 3},
			units: 4,
		},
		{
			name: "Band sequential with padding",
			sub: func(t *testing.T) *record.ImageSubheader {
				return newSubheader(t, 500, 300, 256, 128, 32, 2, format.BlockingBandSequential)
			},
			want:  Info{NumBlocksPerRow: 3, NumBlocksPerCol: 2, NumRowsPerBlock: 256, NumColsPerBlock: 128, Length: 256 * 128 * 4},
			units: 12,
		},
		{
			name: "Whole dimension block",
			sub: func(t *testing.T) *record.ImageSubheader {
				return newSubheader(t, 9000, 100, 9000, 100, 8, 1, format.BlockingBandInterleavedByRow)
			},
			want:  Info{NumBlocksPerRow: 1, NumBlocksPerCol: 1, NumRowsPerBlock: 9000, NumColsPerBlock: 100, Length: 900000},
			units: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, layout, err := FromSubheader(tt.sub(t))
			require.NoError(t, err)
			require.Equal(t, tt.want, *info)
			require.Equal(t, tt.units, layout.BlockUnits(info))
		})
	}
}

func TestFromSubheader_StaleBlockCounts(t *testing.T) {
	sub := newSubheader(t, 512, 512, 256, 256, 8, 1, format.BlockingBandInterleavedByBlock)
	require.NoError(t, sub.Fields.SetUint("NBPR", 7))

	info, _, err := FromSubheader(sub)
	require.NoError(t, err)
	require.Equal(t, 2, info.NumBlocksPerRow)
}

func TestFromSubheader_Errors(t *testing.T) {
	t.Run("No bands", func(t *testing.T) {
		sub := record.NewImageSubheader()
		require.NoError(t, sub.Fields.SetUint("NBPP", 8))
		require.NoError(t, sub.SetDimensions(10, 10))

		_, _, err := FromSubheader(sub)
		require.ErrorIs(t, err, errs.ErrInvalidObject)
	})

	t.Run("Zero NBPP", func(t *testing.T) {
		sub := newSubheader(t, 10, 10, 10, 10, 8, 1, format.BlockingBandInterleavedByBlock)
		require.NoError(t, sub.Fields.SetUint("NBPP", 0))

		_, _, err := FromSubheader(sub)
		require.ErrorIs(t, err, errs.ErrInvalidObject)
	})
}

func TestInfo_CoversImage(t *testing.T) {
	for _, rows := range []uint64{1, 255, 256, 257, 1000} {
		for _, cols := range []uint64{1, 100, 128, 129} {
			for _, edge := range []uint64{1, 7, 64, 256} {
				sub := newSubheader(t, rows, cols, edge, edge, 8, 1, format.BlockingBandInterleavedByBlock)
				info, _, err := FromSubheader(sub)
				require.NoError(t, err)
				require.GreaterOrEqual(t, info.NumBlocksPerCol*info.NumRowsPerBlock, int(rows))
				require.GreaterOrEqual(t, info.NumBlocksPerRow*info.NumColsPerBlock, int(cols))
				require.Less(t, (info.NumBlocksPerCol-1)*info.NumRowsPerBlock, int(rows))
				require.Less(t, (info.NumBlocksPerRow-1)*info.NumColsPerBlock, int(cols))
			}
		}
	}
}

func TestDenseMask(t *testing.T) {
	info := &Info{NumBlocksPerRow: 2, NumBlocksPerCol: 1, NumRowsPerBlock: 2, NumColsPerBlock: 2, Length: 4}

	tests := []struct {
		mode        format.BlockingMode
		band, block int
		want        uint64
	}{
		{format.BlockingBandSequential, 1, 0, 100 + 2*4},
		{format.BlockingBandSequential, 0, 1, 100 + 1*4},
		{format.BlockingBandInterleavedByBlock, 1, 0, 100 + 1*4},
		{format.BlockingBandInterleavedByBlock, 0, 1, 100 + 2*4},
		{format.BlockingBandInterleavedByPixel, 1, 1, 100 + 1*4},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			layout := Layout{Rows: 2, Cols: 4, Bands: 2, BytesPerPixel: 1, Mode: tt.mode}
			m := DenseMask(layout, info, 100)
			off, err := m.Offset(tt.band, tt.block)
			require.NoError(t, err)
			require.Equal(t, tt.want, off)
			require.False(t, m.AllAbsent())
		})
	}
}

func TestMask(t *testing.T) {
	info := &Info{NumBlocksPerRow: 2, NumBlocksPerCol: 2, NumRowsPerBlock: 4, NumColsPerBlock: 4, Length: 16}
	layout := Layout{Rows: 8, Cols: 8, Bands: 2, BytesPerPixel: 1, Mode: format.BlockingBandInterleavedByBlock}

	m := NewMask(layout, info)
	require.Equal(t, 8, m.Len())
	require.True(t, m.AllAbsent())
	require.True(t, m.IsAbsent(1, 3))

	require.NoError(t, m.Set(1, 3, 42))
	require.False(t, m.IsAbsent(1, 3))
	require.False(t, m.AllAbsent())
	require.NoError(t, m.SetPad(1, 3, true))
	require.True(t, m.HasPad(1, 3))
	require.False(t, m.HasPad(0, 3))

	_, err := m.Offset(2, 0)
	require.ErrorIs(t, err, errs.ErrInvalidParameter)
	require.ErrorIs(t, m.Set(0, 4, 1), errs.ErrInvalidParameter)
	require.Equal(t, *info, m.Info())
}

func TestReadMask(t *testing.T) {
	const dataOffset = 100

	write := func(t *testing.T, b *MaskBuilder) *bytes.Reader {
		t.Helper()
		buf := make([]byte, dataOffset)
		buf = append(buf, b.Bytes()...)
		buf = append(buf, make([]byte, 256)...)

		return bytes.NewReader(buf)
	}

	t.Run("Band sequential", func(t *testing.T) {
		info := &Info{NumBlocksPerRow: 2, NumBlocksPerCol: 1, NumRowsPerBlock: 2, NumColsPerBlock: 2, Length: 4}
		layout := Layout{Rows: 2, Cols: 4, Bands: 2, BytesPerPixel: 1, Mode: format.BlockingBandSequential}

		b, err := NewMaskBuilder(layout, info, []byte{0})
		require.NoError(t, err)
		require.Equal(t, 10+1+4*4+4*4, b.Size())
		require.NoError(t, b.Record(0, 0, 0))
		require.NoError(t, b.Record(1, 1, 4))
		require.NoError(t, b.MarkPad(1, 1))

		m, header, err := ReadMask(write(t, b), dataOffset, layout, info)
		require.NoError(t, err)
		require.Equal(t, []byte{0}, header.PadCode)

		base := uint64(dataOffset + b.Size())
		off, err := m.Offset(0, 0)
		require.NoError(t, err)
		require.Equal(t, base, off)
		off, err = m.Offset(1, 1)
		require.NoError(t, err)
		require.Equal(t, base+4, off)
		require.True(t, m.IsAbsent(0, 1))
		require.True(t, m.IsAbsent(1, 0))
		require.True(t, m.HasPad(1, 1))
		require.False(t, m.HasPad(0, 0))
	})

	t.Run("Band interleaved by block", func(t *testing.T) {
		info := &Info{NumBlocksPerRow: 2, NumBlocksPerCol: 1, NumRowsPerBlock: 2, NumColsPerBlock: 2, Length: 4}
		layout := Layout{Rows: 2, Cols: 4, Bands: 3, BytesPerPixel: 1, Mode: format.BlockingBandInterleavedByBlock}

		b, err := NewMaskBuilder(layout, info, nil)
		require.NoError(t, err)
		require.Equal(t, 10+2*4, b.Size())
		require.NoError(t, b.Record(0, 1, 0))
		require.NoError(t, b.Record(2, 1, 999))

		m, header, err := ReadMask(write(t, b), dataOffset, layout, info)
		require.NoError(t, err)
		require.False(t, header.HasPadMask())

		base := uint64(dataOffset + b.Size())
		for band := 0; band < 3; band++ {
			off, err := m.Offset(band, 1)
			require.NoError(t, err)
			require.Equal(t, base+uint64(band*4), off)
			require.True(t, m.IsAbsent(band, 0))
		}
	})

	t.Run("No block table", func(t *testing.T) {
		info := &Info{NumBlocksPerRow: 1, NumBlocksPerCol: 1, NumRowsPerBlock: 2, NumColsPerBlock: 2, Length: 4}
		layout := Layout{Rows: 2, Cols: 2, Bands: 1, BytesPerPixel: 1, Mode: format.BlockingBandInterleavedByBlock}
		h := section.MaskHeader{ImageDataOffset: 16}
		buf := append(make([]byte, dataOffset), h.Bytes()...)
		buf = append(buf, make([]byte, 32)...)

		m, _, err := ReadMask(bytes.NewReader(buf), dataOffset, layout, info)
		require.NoError(t, err)
		off, err := m.Offset(0, 0)
		require.NoError(t, err)
		require.Equal(t, uint64(dataOffset+16), off)
	})

	t.Run("Data offset inside tables", func(t *testing.T) {
		info := &Info{NumBlocksPerRow: 2, NumBlocksPerCol: 2, NumRowsPerBlock: 2, NumColsPerBlock: 2, Length: 4}
		layout := Layout{Rows: 4, Cols: 4, Bands: 1, BytesPerPixel: 1, Mode: format.BlockingBandInterleavedByBlock}
		h := section.MaskHeader{ImageDataOffset: 12, BlockRecordLength: section.MaskRecordSize}
		buf := append(make([]byte, dataOffset), h.Bytes()...)
		buf = append(buf, make([]byte, 32)...)

		_, _, err := ReadMask(bytes.NewReader(buf), dataOffset, layout, info)
		require.ErrorIs(t, err, errs.ErrInvalidBlockMask)
	})

	t.Run("Short read", func(t *testing.T) {
		info := &Info{NumBlocksPerRow: 1, NumBlocksPerCol: 1, NumRowsPerBlock: 2, NumColsPerBlock: 2, Length: 4}
		layout := Layout{Rows: 2, Cols: 2, Bands: 1, BytesPerPixel: 1, Mode: format.BlockingBandInterleavedByBlock}

		_, _, err := ReadMask(bytes.NewReader(make([]byte, 4)), 0, layout, info)
		require.ErrorIs(t, err, errs.ErrIO)
	})
}

func TestMaskBuilder_Errors(t *testing.T) {
	info := &Info{NumBlocksPerRow: 1, NumBlocksPerCol: 1, NumRowsPerBlock: 2, NumColsPerBlock: 2, Length: 4}
	layout := Layout{Rows: 2, Cols: 2, Bands: 1, BytesPerPixel: 1, Mode: format.BlockingBandInterleavedByPixel}

	_, err := NewMaskBuilder(layout, info, make([]byte, 5))
	require.ErrorIs(t, err, errs.ErrInvalidParameter)

	b, err := NewMaskBuilder(layout, info, nil)
	require.NoError(t, err)
	require.ErrorIs(t, b.Record(0, 1, 0), errs.ErrInvalidParameter)
	require.ErrorIs(t, b.Record(0, 0, 1<<32), errs.ErrInvalidBlockMask)
	require.NoError(t, b.MarkPad(0, 0))
}

func TestMask_Units(t *testing.T) {
	info := &Info{NumBlocksPerRow: 2, NumBlocksPerCol: 1, NumRowsPerBlock: 2, NumColsPerBlock: 2, Length: 4}
	layout := Layout{Rows: 2, Cols: 4, Bands: 2, BytesPerPixel: 1, Mode: format.BlockingBandSequential}

	m := NewMask(layout, info)
	require.Equal(t, layout, m.Layout())
	require.NoError(t, m.SetUnit(2, 77))

	off, err := m.Offset(1, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(77), off)

	off, err = m.UnitOffset(2)
	require.NoError(t, err)
	require.Equal(t, uint64(77), off)

	_, err = m.UnitOffset(4)
	require.ErrorIs(t, err, errs.ErrInvalidParameter)
	require.ErrorIs(t, m.SetUnit(-1, 0), errs.ErrInvalidParameter)
	require.Equal(t, []uint64{Absent, Absent, 77, Absent}, m.Offsets())
}
