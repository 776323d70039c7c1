package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/ngageoint/six-library-sub017/errs"
)

// S2Codec compresses blocks with S2, the Snappy extension (identifier S2).
type S2Codec struct{}

var _ Codec = (*S2Codec)(nil)

// NewS2Codec creates a new S2 codec.
func NewS2Codec() S2Codec {
	return S2Codec{}
}

// Compress compresses the input data using S2 compression.
func (c S2Codec) Compress(dst, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return dst[:0], nil
	}

	return s2.Encode(dst[:cap(dst)], data), nil
}

// Decompress decompresses the input data using S2 decompression. S2 records
// the decoded length up front, so a mismatch fails before decoding.
func (c S2Codec) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return checkSize("s2", nil, size)
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}
	if n != size {
		return nil, fmt.Errorf("%w: s2 stream holds %d bytes, want %d", errs.ErrDecompression, n, size)
	}

	out, err := s2.Decode(make([]byte, size), data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return out, nil
}
