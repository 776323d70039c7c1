// Package errs defines the error values shared by every package of the module.
//
// Low-level operations return one of these sentinels wrapped with context
// (fmt.Errorf("...: %w", err)), so callers test the error kind with errors.Is
// and read the full context from Error().
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrMemory is returned when a buffer of the requested size cannot be allocated.
	ErrMemory = errors.New("memory allocation failed")
	// ErrIO is returned when the underlying handle fails to read, write or seek.
	ErrIO = errors.New("i/o error")
	// ErrInvalidObject is returned when an object is used in a state it does not support.
	ErrInvalidObject = errors.New("invalid object")
	// ErrInvalidParameter is returned when an argument is out of range or malformed.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInvalidRequest is returned for sub-window requests outside the image extent.
	ErrInvalidRequest = errors.New("invalid request")

	ErrDecompression          = errors.New("decompression failed")
	ErrCompression            = errors.New("compression failed")
	ErrUnknownCompressionType = errors.New("unknown compression type")
	ErrUnknownTREType         = errors.New("unknown TRE type")
	ErrPluginNotFound         = errors.New("plugin not found")
	// ErrDuplicatePlugin is returned when an identifier is claimed twice for the same kind.
	ErrDuplicatePlugin = errors.New("duplicate plugin identifier")

	// ErrFieldOverflow is returned when a value does not fit the declared field width or type.
	ErrFieldOverflow = errors.New("field overflow")

	ErrInvalidHeader    = errors.New("invalid header")
	ErrInvalidBlockMask = errors.New("invalid block mask")
	ErrSessionClosed    = errors.New("session is not open")
)

// Codec operations reported by CodecError.
const (
	OpDecompress = "decompress"
	OpCompress   = "compress"
)

// CodecError carries the codec specific message of a failed block operation.
type CodecError struct {
	Codec string // compression identifier, e.g. "C3"
	Op    string // OpDecompress or OpCompress
	Block int    // block number, -1 when the failure is not tied to one block
	Err   error
}

// NewDecompressionError wraps err as a decompression failure of codec.
func NewDecompressionError(codec string, block int, err error) *CodecError {
	return &CodecError{Codec: codec, Op: OpDecompress, Block: block, Err: err}
}

// NewCompressionError wraps err as a compression failure of codec.
func NewCompressionError(codec string, block int, err error) *CodecError {
	return &CodecError{Codec: codec, Op: OpCompress, Block: block, Err: err}
}

func (e *CodecError) Error() string {
	if e.Block < 0 {
		return fmt.Sprintf("%s %s: %v", e.Codec, e.Op, e.Err)
	}

	return fmt.Sprintf("%s %s block %d: %v", e.Codec, e.Op, e.Block, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// Is reports ErrDecompression or ErrCompression according to the failed operation.
func (e *CodecError) Is(target error) bool {
	switch target {
	case ErrDecompression:
		return e.Op == OpDecompress
	case ErrCompression:
		return e.Op == OpCompress
	default:
		return false
	}
}
