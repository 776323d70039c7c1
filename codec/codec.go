// Package codec defines the compression plugin interface through which the
// image I/O engine reads and writes compressed image data, and registers
// the built-in image codecs with the plugin registry.
//
// A codec works on block units: the separately stored pieces of an image,
// numbered in file order (see blocking.Layout.UnitIndex). ReadBlock returns
// exactly Info.Length bytes per unit.
package codec

import (
	"fmt"
	"io"

	"github.com/ngageoint/six-library-sub017/blocking"
	"github.com/ngageoint/six-library-sub017/compress"
	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/format"
	"github.com/ngageoint/six-library-sub017/plugin"
)

// Decompressor opens compressed image data for reading.
//
// Open receives the block grid derived from the subheader and a mask that is
// either read from the masked image data or entirely absent. It may rewrite
// both: a codec storing the image as one block replaces the grid, and a
// codec that locates its own blocks fills in the mask. The caller must use
// info and mask as Open left them.
type Decompressor interface {
	Open(r io.ReadSeeker, offset, length uint64, layout blocking.Layout,
		info *blocking.Info, mask *blocking.Mask) (DecompressionControl, error)
}

// DecompressionControl reads the block units of one open image.
type DecompressionControl interface {
	// ReadBlock returns the decompressed unit n, Info.Length bytes long.
	ReadBlock(n int) ([]byte, error)
	// FreeBlock hands back a buffer returned by ReadBlock.
	FreeBlock(b []byte)
	Close() error
}

// Compressor starts writing compressed image data at offset.
//
// Like Open, Start may rewrite info; the caller must produce units for the
// grid Start left.
type Compressor interface {
	Start(w io.WriteSeeker, offset uint64, layout blocking.Layout,
		info *blocking.Info) (CompressionControl, error)
}

// CompressionControl writes the block units of one image.
type CompressionControl interface {
	// WriteBlock compresses and writes unit n, Info.Length bytes long.
	WriteBlock(n int, data []byte) error
	// End flushes what is buffered and returns the length of the image data.
	End() (uint64, error)
}

func init() {
	decompressors := []string{}
	compressors := []string{}
	for _, id := range compress.Identifiers() {
		decompressors = append(decompressors, string(id))
		compressors = append(compressors, string(id))
	}
	decompressors = append(decompressors, string(format.CompressionJPEG), string(format.CompressionJPEGMasked))
	compressors = append(compressors, string(format.CompressionJPEG))

	plugin.Register(plugin.Decompression, plugin.Static(func(ident string) (any, error) {
		return newBuiltin(format.CompressionType(ident))
	}, decompressors...))
	plugin.Register(plugin.Compression, plugin.Static(func(ident string) (any, error) {
		return newBuiltin(format.CompressionType(ident))
	}, compressors...))
}

// builtin is implemented by every built-in codec: each serves both
// directions through one value.
type builtin interface {
	Decompressor
	Compressor
}

func newBuiltin(id format.CompressionType) (builtin, error) {
	switch id {
	case format.CompressionZlib:
		return newWholeImageCodec(id)
	case format.CompressionJPEG, format.CompressionJPEGMasked:
		return newJPEGCodec(id), nil
	default:
		return newBlockCodec(id)
	}
}

// ResolveDecompressor returns the decompressor registered for id.
func ResolveDecompressor(reg *plugin.Registry, id format.CompressionType) (Decompressor, error) {
	v, err := reg.Resolve(plugin.Decompression, string(id))
	if err != nil {
		return nil, err
	}
	d, ok := v.(Decompressor)
	if !ok {
		return nil, fmt.Errorf("%w: decompression plugin %q constructed %T", errs.ErrInvalidObject, id, v)
	}

	return d, nil
}

// ResolveCompressor returns the compressor registered for id.
func ResolveCompressor(reg *plugin.Registry, id format.CompressionType) (Compressor, error) {
	v, err := reg.Resolve(plugin.Compression, string(id))
	if err != nil {
		return nil, err
	}
	c, ok := v.(Compressor)
	if !ok {
		return nil, fmt.Errorf("%w: compression plugin %q constructed %T", errs.ErrInvalidObject, id, v)
	}

	return c, nil
}

func readAt(r io.ReadSeeker, offset uint64, buf []byte) error {
	if _, err := r.Seek(int64(offset), io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek to %d: %v", errs.ErrIO, offset, err)
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("%w: read %d bytes at %d: %v", errs.ErrIO, len(buf), offset, err)
	}

	return nil
}

func writeAt(w io.WriteSeeker, offset uint64, data []byte) error {
	if _, err := w.Seek(int64(offset), io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek to %d: %v", errs.ErrIO, offset, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: write %d bytes at %d: %v", errs.ErrIO, len(data), offset, err)
	}

	return nil
}
