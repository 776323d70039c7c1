package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ZstdCodec provides Zstandard compression of image blocks (identifier ZS).
//
// Performance characteristics:
//   - Best ratio of the built-in block codecs
//   - Encoders and decoders are pooled, so the codec is cheap to share
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a new Zstd codec with default settings.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}

// zstdDecoderPool pools zstd decoders for reuse to eliminate allocation overhead.
// The klauspost/compress/zstd decoder operates without allocations after a warmup.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}
		return decoder
	},
}

// zstdEncoderPool pools zstd encoders for reuse to eliminate allocation overhead.
var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(true),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}
		return encoder
	},
}

// Compress compresses the input data using Zstandard compression.
func (c ZstdCodec) Compress(dst, data []byte) ([]byte, error) {
	encoder := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)

	// EncodeAll is stateless - safe to use with pooled encoder
	return encoder.EncodeAll(data, dst[:0]), nil
}

// Decompress decompresses Zstd-compressed data of size original bytes.
func (c ZstdCodec) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return checkSize("zstd", nil, size)
	}

	decoder := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	// Even if this call fails, the decoder can be reused for next call
	decompressed, err := decoder.DecodeAll(data, make([]byte, 0, size))
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return checkSize("zstd", decompressed, size)
}
