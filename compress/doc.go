// Package compress provides the byte level codecs behind the built-in image
// compression plugins.
//
// # Overview
//
// Each codec compresses one self-contained buffer. The codec package wraps
// them into block codecs (every image block compressed on its own, with a
// block index trailer) or, for zlib, a whole-image stream. The image I/O
// engine never calls this package directly: it reaches codecs only through
// the plugin registry.
//
// Supported algorithms, by compression identifier:
//   - ZS: ZstdCodec, best ratio, pooled encoders and decoders
//   - S2: S2Codec, balanced speed and ratio
//   - L4: LZ4Codec, fastest decompression
//   - LZ: LZWCodec, TIFF flavoured LZW
//   - ZL: ZlibCodec, zlib framed deflate
//
// # Architecture
//
//	type Compressor interface {
//	    Compress(dst, data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte, size int) ([]byte, error)
//	}
//
// Image blocks always have a known length, so decompressors take it and
// decode straight into a buffer of that size. Uncompressed images (NC, NM)
// never reach this package.
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// # Thread Safety
//
// All codec implementations are safe for concurrent use.
//
// # Examples
//
//	codec, err := compress.CreateCodec(format.CompressionZstd, "image")
//	if err != nil {
//	    return err
//	}
//	compressed, _ := codec.Compress(nil, block)
//	original, _ := codec.Decompress(compressed, len(block))
package compress
