package pool

import (
	"io"
	"sync"
)

// Default sizes of the pooled buffers.
const (
	HeaderBufferDefaultSize     = 1024 * 4        // 4KiB, a subheader with a few TREs
	HeaderBufferMaxThreshold    = 1024 * 64       // 64KiB
	StreamBufferDefaultSize     = 1024 * 64       // 64KiB, one compressed block
	StreamBufferMaxThreshold    = 1024 * 1024 * 8 // 8MiB
	streamBufferSmallGrowthStep = HeaderBufferDefaultSize
)

type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Grow grows the buffer to ensure it can hold requiredBytes more bytes without reallocating.
// If the buffer has sufficient capacity, Grow does nothing.
//
// Small buffers grow by a fixed step, larger ones by 25% of their capacity.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := streamBufferSmallGrowthStep
	if cap(bb.B) > 4*streamBufferSmallGrowthStep {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Resize empties the buffer and returns it as an n-byte slice. The contents
// are whatever the reused memory held.
func (bb *ByteBuffer) Resize(n int) []byte {
	bb.Reset()
	bb.Grow(n)
	bb.B = bb.B[:n]

	return bb.B
}

// Write appends the contents of data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a pool of ByteBuffers to minimize allocations.
//
// Buffers whose capacity grew beyond maxThreshold are dropped on Put instead
// of being retained.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}
	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	headerDefaultPool = NewByteBufferPool(HeaderBufferDefaultSize, HeaderBufferMaxThreshold)
	streamDefaultPool = NewByteBufferPool(StreamBufferDefaultSize, StreamBufferMaxThreshold)
)

// GetHeaderBuffer retrieves a buffer for serializing headers and subheaders.
func GetHeaderBuffer() *ByteBuffer {
	return headerDefaultPool.Get()
}

// PutHeaderBuffer returns a buffer to the header pool.
func PutHeaderBuffer(bb *ByteBuffer) {
	headerDefaultPool.Put(bb)
}

// GetStreamBuffer retrieves a buffer for staging compressed block data.
func GetStreamBuffer() *ByteBuffer {
	return streamDefaultPool.Get()
}

// PutStreamBuffer returns a buffer to the stream pool.
func PutStreamBuffer(bb *ByteBuffer) {
	streamDefaultPool.Put(bb)
}
