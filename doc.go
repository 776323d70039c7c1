// Package nitf reads and writes NITF 2.1 and NSIF 1.0 files.
//
// A file is a header followed by segments: images, graphics, labels, text,
// data extensions and reserved extensions. Reader parses the header and
// every subheader into a record.Record and opens image sessions that read
// windows of pixels block by block. Writer lays a record out again, pulling
// pixels from an ImageSource and compressing them with whatever codec the
// image subheader names.
//
// # Reading
//
//	f, _ := os.Open("image.ntf")
//	r, err := nitf.NewReader(f)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	rec, err := r.Read()
//	if err != nil {
//	    return err
//	}
//	img, err := r.NewImageReader(0)
//	if err != nil {
//	    return err
//	}
//	out := [][]byte{make([]byte, 256*256)}
//	padded, err := img.Read(&imageio.SubWindow{NumRows: 256, NumCols: 256, Bands: []int{0}}, out)
//
// # Writing
//
//	w, err := nitf.NewWriter(f)
//	if err != nil {
//	    return err
//	}
//	if err := w.Prepare(rec); err != nil {
//	    return err
//	}
//	src, _ := nitf.NewMemorySource(bands, cols*bytesPerPixel)
//	_ = w.SetImageSource(0, src)
//	err = w.Write()
//
// Pixels already in a raw file are written through a FileSource; for a
// three band pixel interleaved 8-bit file:
//
//	src, _ := nitf.NewFileSource(raw, []int64{0, 1, 2}, cols, 1, 2)
//
// # Plugins
//
// TRE handlers and image codecs come from a plugin.Registry. The default
// registry holds the built-in codecs and TRE descriptions, plus any shared
// libraries found on NITF_PLUGIN_PATH; WithRegistry supplies another.
package nitf
