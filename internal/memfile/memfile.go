// Package memfile provides an in-memory read/write/seek handle and a
// wrapper that counts the I/O done through a handle.
package memfile

import (
	"errors"
	"io"
)

var errNegativeOffset = errors.New("memfile: negative offset")

// File is a growable byte slice with a file position. Writing past the end
// extends it; the gap is zero filled.
type File struct {
	data []byte
	pos  int64
}

var _ io.ReadWriteSeeker = (*File)(nil)

// New returns a File holding a copy of data, positioned at 0.
func New(data []byte) *File {
	return &File{data: append([]byte(nil), data...)}
}

func (f *File) Read(p []byte) (int, error) {
	if f.pos >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.pos:])
	f.pos += int64(n)

	return n, nil
}

func (f *File) Write(p []byte) (int, error) {
	end := f.pos + int64(len(p))
	if end > int64(len(f.data)) {
		if end > int64(cap(f.data)) {
			grown := make([]byte, end, max(end, 2*int64(cap(f.data))))
			copy(grown, f.data)
			f.data = grown
		} else {
			f.data = f.data[:end]
		}
	}
	copy(f.data[f.pos:], p)
	f.pos = end

	return len(p), nil
}

func (f *File) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = f.pos + offset
	case io.SeekEnd:
		abs = int64(len(f.data)) + offset
	default:
		return 0, errors.New("memfile: invalid whence")
	}
	if abs < 0 {
		return 0, errNegativeOffset
	}
	f.pos = abs

	return abs, nil
}

// Bytes returns the content. It aliases the file until the next Write.
func (f *File) Bytes() []byte {
	return f.data
}

// Len returns the content length.
func (f *File) Len() int {
	return len(f.data)
}

// Counting wraps a ReadSeeker and counts the calls made through it.
type Counting struct {
	R     io.ReadSeeker
	Reads int
	Seeks int
	Bytes int
}

func (c *Counting) Read(p []byte) (int, error) {
	c.Reads++
	n, err := c.R.Read(p)
	c.Bytes += n

	return n, err
}

func (c *Counting) Seek(offset int64, whence int) (int64, error) {
	c.Seeks++
	return c.R.Seek(offset, whence)
}

// Calls returns the number of Read and Seek calls.
func (c *Counting) Calls() int {
	return c.Reads + c.Seeks
}

// Reset clears the counters.
func (c *Counting) Reset() {
	c.Reads, c.Seeks, c.Bytes = 0, 0, 0
}
