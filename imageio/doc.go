// Package imageio reads and writes the pixel data of image segments.
//
// A Session turns a request for a window of an image into block fetches:
// only blocks overlapping the window are read, blocks the mask marks absent
// read as the pad value without I/O, and compressed blocks are decoded by
// the codec resolved from the plugin registry. The result is delivered one
// buffer per requested band, in file byte order unless a ByteSwap transform
// is installed.
//
// # Reading a window
//
//	s, err := imageio.New(sub, offset, length, reg)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	out := [][]byte{make([]byte, 100*100*bytesPerPixel)}
//	padded, err := s.Read(f, &imageio.SubWindow{
//	    StartRow: 200, StartCol: 200, NumRows: 100, NumCols: 100, Bands: []int{1},
//	}, out)
//
// # Down-sampling
//
// A window with a DownSampler returns one pixel per RowSkip × ColSkip
// cell. PixelSkip keeps the cell origin; MaxDownSample keeps the largest
// sample; SumSqDownSample and Select2DownSample choose one pixel of a two
// band image and keep both of its samples.
//
// # Writing
//
// A BlockWriter accepts full rows for every band and cuts them into blocks:
//
//	bw, err := imageio.NewWriter(f, sub, offset, reg)
//	...
//	err = bw.WriteRows(rows, bands)
//	...
//	length, err := bw.Done()
package imageio
