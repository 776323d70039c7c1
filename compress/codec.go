package compress

import (
	"errors"
	"fmt"
	"io"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/format"
)

// Compressor compresses one self-contained buffer, typically one image block.
type Compressor interface {
	// Compress compresses data and returns the compressed result.
	//
	// Memory management:
	//   - The result may reuse the storage of dst; its contents are overwritten
	//   - A nil or too small dst makes the codec allocate
	//   - Input slice is not modified
	Compress(dst, data []byte) ([]byte, error)
}

// Decompressor restores buffers produced by the matching Compressor.
//
// Thread Safety: Decompressor implementations must be safe for concurrent use.
type Decompressor interface {
	// Decompress decompresses data whose original length is size.
	//
	// Error conditions:
	//   - Returns error if input data is corrupted or invalid
	//   - Returns error if the stream decodes to any length other than size
	Decompress(data []byte, size int) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec is a factory function that creates a Codec based on the
// specified compression identifier.
//
// Parameters:
//   - compressionType: ZS, S2, L4, LZ or ZL
//   - target: Description of target usage (for error messages)
//
// Returns:
//   - Codec: codec instance for the specified type
//   - error: errs.ErrUnknownCompressionType for any other identifier
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionZstd:
		return NewZstdCodec(), nil
	case format.CompressionS2:
		return NewS2Codec(), nil
	case format.CompressionLZ4:
		return NewLZ4Codec(), nil
	case format.CompressionLZW:
		return NewLZWCodec(), nil
	case format.CompressionZlib:
		return NewZlibCodec(), nil
	default:
		return nil, fmt.Errorf("%w: %s compression %q", errs.ErrUnknownCompressionType, target, compressionType)
	}
}

// Identifiers returns the compression identifiers CreateCodec serves.
func Identifiers() []format.CompressionType {
	return []format.CompressionType{
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
		format.CompressionLZW,
		format.CompressionZlib,
	}
}

// checkSize fails unless out is exactly size bytes long.
func checkSize(name string, out []byte, size int) ([]byte, error) {
	if len(out) != size {
		return nil, fmt.Errorf("%w: %s stream holds %d bytes, want %d", errs.ErrDecompression, name, len(out), size)
	}

	return out, nil
}

// readSized reads exactly size bytes from a decoding reader and checks
// that the stream ends there.
func readSized(name string, r io.Reader, size int) ([]byte, error) {
	out := make([]byte, size)
	n, err := io.ReadFull(r, out)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return checkSize(name, out[:n], size)
	}
	if err != nil {
		return nil, fmt.Errorf("%s decompression failed: %w", name, err)
	}

	var extra [1]byte
	switch _, err := io.ReadFull(r, extra[:]); {
	case err == nil:
		return nil, fmt.Errorf("%w: %s stream holds more than %d bytes", errs.ErrDecompression, name, size)
	case !errors.Is(err, io.EOF):
		return nil, fmt.Errorf("%s decompression failed: %w", name, err)
	}

	return out, nil
}
