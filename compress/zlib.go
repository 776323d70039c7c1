package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
)

// ZlibCodec compresses with zlib framed deflate (identifier ZL). The image
// codec built on it treats the whole image as a single stream.
type ZlibCodec struct {
	level int
}

var _ Codec = (*ZlibCodec)(nil)

// NewZlibCodec creates a zlib codec at the default compression level.
func NewZlibCodec() ZlibCodec {
	return ZlibCodec{level: zlib.DefaultCompression}
}

var zlibWriterPool = sync.Pool{
	New: func() any {
		w, err := zlib.NewWriterLevel(io.Discard, zlib.DefaultCompression)
		if err != nil {
			panic(fmt.Sprintf("failed to create zlib writer for pool: %v", err))
		}
		return w
	},
}

// Compress compresses the input data into one zlib stream.
func (c ZlibCodec) Compress(dst, data []byte) ([]byte, error) {
	buf := bytes.NewBuffer(dst[:0])
	buf.Grow(len(data)/2 + 64)

	w := zlibWriterPool.Get().(*zlib.Writer)
	defer zlibWriterPool.Put(w)
	w.Reset(buf)

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("zlib compression failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib compression failed: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress inflates one zlib stream of size original bytes. The checksum
// is verified once the stream has ended.
func (c ZlibCodec) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return checkSize("zlib", nil, size)
	}

	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib decompression failed: %w", err)
	}
	defer r.Close()

	return readSized("zlib", r, size)
}
