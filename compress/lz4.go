package compress

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains internal state that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Codec compresses blocks with the LZ4 block format (identifier L4).
// The block format does not store the decompressed size.
type LZ4Codec struct{}

var _ Codec = (*LZ4Codec)(nil)

// NewLZ4Codec creates a new LZ4 codec.
func NewLZ4Codec() LZ4Codec {
	return LZ4Codec{}
}

// Compress compresses the input data using LZ4 compression.
//
// Uses a pooled lz4.Compressor for better performance.
//
// Parameters:
//   - dst: Output storage, reused when it holds CompressBlockBound bytes
//   - data: Input data to compress
//
// Returns:
//   - []byte: Compressed data (empty if input is empty)
//   - error: Compression error if any
func (c LZ4Codec) Compress(dst, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return dst[:0], nil
	}
	bound := lz4.CompressBlockBound(len(data))
	if cap(dst) < bound {
		dst = make([]byte, bound)
	}
	dst = dst[:bound]

	// Get compressor from pool
	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decompress decompresses one LZ4 block of size original bytes.
//
// The block format does not record its decompressed size, so the caller's
// size is the buffer the block is decoded into: a block that needs more
// room fails instead of growing the buffer.
func (c LZ4Codec) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return checkSize("lz4", nil, size)
	}

	out := make([]byte, size)
	n, err := lz4.UncompressBlock(data, out)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}

	return checkSize("lz4", out[:n], size)
}
