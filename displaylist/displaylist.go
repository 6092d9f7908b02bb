// Package displaylist implements the byte arena display lists are built in.
//
// A DisplayList wraps a fixed byte region, usually a buffer handed out by a
// device. Producers append records at the write cursor with Create; consumers
// read them back from an independent read cursor with GetNext. The arena never
// grows: when a record does not fit, Create reports failure and writes
// nothing.
package displaylist

import "encoding/binary"

// DisplayList is an append-only byte arena with a write cursor (Size) and an
// independent read cursor.
//
// Thread safety: a DisplayList is owned by one goroutine at a time. Ownership
// moves with the double buffer swap.
type DisplayList struct {
	buf  []byte
	size int
	read int
}

// New wraps buf. The list starts empty.
func New(buf []byte) *DisplayList {
	return &DisplayList{buf: buf}
}

// Create reserves n zeroed bytes at the write cursor and advances it. It
// returns nil, leaving the list unchanged, if fewer than n bytes remain.
func (dl *DisplayList) Create(n int) []byte {
	if n < 0 || n > len(dl.buf)-dl.size {
		return nil
	}
	rec := dl.buf[dl.size : dl.size+n : dl.size+n]
	clear(rec)
	dl.size += n
	return rec
}

// CreateWord appends one little endian word. It reports false if the word
// does not fit.
func (dl *DisplayList) CreateWord(v uint32) bool {
	rec := dl.Create(4)
	if rec == nil {
		return false
	}
	binary.LittleEndian.PutUint32(rec, v)
	return true
}

// GetNext returns the next n bytes at the read cursor and advances it.
// It returns nil if the record would extend past the write cursor.
func (dl *DisplayList) GetNext(n int) []byte {
	rec := dl.LookAhead(n)
	if rec != nil {
		dl.read += n
	}
	return rec
}

// LookAhead returns the next n bytes at the read cursor without advancing.
func (dl *DisplayList) LookAhead(n int) []byte {
	if n < 0 || n > dl.size-dl.read {
		return nil
	}
	return dl.buf[dl.read : dl.read+n : dl.read+n]
}

// GetNextWord reads one little endian word.
func (dl *DisplayList) GetNextWord() (uint32, bool) {
	rec := dl.GetNext(4)
	if rec == nil {
		return 0, false
	}
	return binary.LittleEndian.Uint32(rec), true
}

// AtEnd reports whether the read cursor reached the write cursor.
func (dl *DisplayList) AtEnd() bool {
	return dl.read >= dl.size
}

// Size returns the number of bytes written.
func (dl *DisplayList) Size() int { return dl.size }

// Capacity returns the size of the underlying region.
func (dl *DisplayList) Capacity() int { return len(dl.buf) }

// FreeSpace returns the number of bytes Create can still reserve.
func (dl *DisplayList) FreeSpace() int { return len(dl.buf) - dl.size }

// Empty reports whether nothing was written.
func (dl *DisplayList) Empty() bool { return dl.size == 0 }

// Clear empties the list and resets both cursors.
func (dl *DisplayList) Clear() {
	dl.size = 0
	dl.Rewind()
}

// Rewind moves the read cursor back to the start.
func (dl *DisplayList) Rewind() {
	dl.read = 0
}

// Truncate drops everything after the first size bytes. It is used to roll
// back a multi-record append.
func (dl *DisplayList) Truncate(size int) {
	if size < 0 || size > dl.size {
		return
	}
	dl.size = size
	dl.read = min(dl.read, size)
}

// Load marks the first size bytes of the region as written, for decoding a
// list that was filled elsewhere (for example received from a bus).
func (dl *DisplayList) Load(size int) {
	dl.size = max(0, min(size, len(dl.buf)))
	dl.Rewind()
}

// Bytes returns the written part of the region.
func (dl *DisplayList) Bytes() []byte {
	return dl.buf[:dl.size]
}
