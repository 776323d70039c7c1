package pool

import "sync"

// BlockPool recycles block buffers of one fixed length.
//
// An image I/O session reads blocks of a single length determined by its
// blocking geometry, so one pool per session serves every fetch.
type BlockPool struct {
	size int
	pool sync.Pool
}

// NewBlockPool creates a pool of size-byte blocks.
func NewBlockPool(size int) *BlockPool {
	bp := &BlockPool{size: size}
	bp.pool.New = func() any {
		b := make([]byte, size)
		return &b
	}

	return bp
}

// Size returns the length of the blocks handed out by the pool.
func (bp *BlockPool) Size() int {
	return bp.size
}

// Get returns a block of exactly Size bytes. Its content is undefined.
func (bp *BlockPool) Get() []byte {
	ptr, _ := bp.pool.Get().(*[]byte)
	return (*ptr)[:bp.size]
}

// Put returns a block obtained from Get. Blocks of another capacity are dropped.
func (bp *BlockPool) Put(b []byte) {
	if cap(b) != bp.size {
		return
	}
	b = b[:bp.size]
	bp.pool.Put(&b)
}
