// Package diskarray implements the file-access layer (C2): random access
// and forward iteration over a fixed-width integer array stored at a known
// offset inside a larger file, backed by a small buffered page.
package diskarray

import (
	"os"

	"github.com/pkg/errors"
	"github.com/shenwei356/sufrindex/internal/intwidth"
)

// chunkElements is the number of W-wide elements held in one page buffer.
const chunkElements = 4096

// ErrInvalidRange is returned by GetRange for an out-of-bounds half-open range.
var ErrInvalidRange = errors.New("invalid range")

// DiskArray is a logical array of count values of width W, starting at
// baseOffset bytes into the file at path. Each DiskArray owns its own file
// handle and page buffer; it is not safe for concurrent use from more than
// one goroutine, matching spec.md §4.2 — callers needing parallel access
// must open one DiskArray per worker via Open.
type DiskArray[W intwidth.Uint] struct {
	path       string
	baseOffset int64
	count      int
	width      int

	file *os.File

	// page holds the currently buffered chunk, covering elements
	// [pageStart, pageStart+pageLen).
	page      []byte
	pageStart int
	pageLen   int

	// iterPos tracks the next element Iter will yield.
	iterPos int
}

// Open creates a new handle onto the count W-wide values stored at
// baseOffset in the file at path. Safe to call once per worker goroutine.
func Open[W intwidth.Uint](path string, baseOffset int64, count int) (*DiskArray[W], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: opening disk array", path)
	}
	return &DiskArray[W]{
		path:       path,
		baseOffset: baseOffset,
		count:      count,
		width:      intwidth.Size[W](),
		file:       f,
		page:       make([]byte, chunkElements*intwidth.Size[W]()),
	}, nil
}

// Close releases the underlying file handle.
func (d *DiskArray[W]) Close() error {
	return d.file.Close()
}

// Count returns the number of elements exposed by this array.
func (d *DiskArray[W]) Count() int {
	return d.count
}

// Size returns the byte length of the backing array: count * sizeof(W).
func (d *DiskArray[W]) Size() int64 {
	return int64(d.count) * int64(d.width)
}

// inPage reports whether element i is covered by the currently loaded page.
func (d *DiskArray[W]) inPage(i int) bool {
	return d.pageLen > 0 && i >= d.pageStart && i < d.pageStart+d.pageLen
}

// loadPage refills the page buffer starting at element i.
func (d *DiskArray[W]) loadPage(i int) error {
	n := chunkElements
	if i+n > d.count {
		n = d.count - i
	}
	byteOff := d.baseOffset + int64(i)*int64(d.width)
	buf := d.page[:n*d.width]
	if _, err := d.file.ReadAt(buf, byteOff); err != nil {
		return errors.Wrapf(err, "%s: reading disk array page at element %d", d.path, i)
	}
	d.pageStart = i
	d.pageLen = n
	return nil
}

// Get returns the i-th value, or false if i is out of range.
func (d *DiskArray[W]) Get(i int) (W, bool) {
	var zero W
	if i < 0 || i >= d.count {
		return zero, false
	}
	if !d.inPage(i) {
		if err := d.loadPage(i); err != nil {
			return zero, false
		}
	}
	localOff := (i - d.pageStart) * d.width
	return intwidth.Get[W](d.page[localOff:], 0), true
}

// GetRange returns the contiguous block of values [lo, hi). Fails with
// ErrInvalidRange if hi > count or lo > hi.
func (d *DiskArray[W]) GetRange(lo, hi int) ([]W, error) {
	if hi > d.count || lo > hi || lo < 0 {
		return nil, errors.Wrapf(ErrInvalidRange, "%d..%d", lo, hi)
	}
	n := hi - lo
	if n == 0 {
		return []W{}, nil
	}
	buf := make([]byte, n*d.width)
	byteOff := d.baseOffset + int64(lo)*int64(d.width)
	if _, err := d.file.ReadAt(buf, byteOff); err != nil {
		return nil, errors.Wrapf(err, "%s: reading range %d..%d", d.path, lo, hi)
	}
	return intwidth.DecodeSlice[W](buf, n), nil
}

// Reset rewinds the lazy forward iterator to position 0.
func (d *DiskArray[W]) Reset() {
	d.iterPos = 0
}

// Iter returns the next value in forward order and true, or the zero value
// and false once every element has been yielded. Restart with Reset.
func (d *DiskArray[W]) Iter() (W, bool) {
	v, ok := d.Get(d.iterPos)
	if !ok {
		return v, false
	}
	d.iterPos++
	return v, true
}

// ForEach streams every element from position 0 through fn, stopping early
// if fn returns false. It does not disturb Iter's cursor.
func (d *DiskArray[W]) ForEach(fn func(i int, v W) bool) error {
	for i := 0; i < d.count; i += chunkElements {
		if err := d.loadPage(i); err != nil {
			return err
		}
		for j := 0; j < d.pageLen; j++ {
			v := intwidth.Get[W](d.page[j*d.width:], 0)
			if !fn(i+j, v) {
				return nil
			}
		}
	}
	return nil
}
