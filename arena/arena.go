// Package arena implements the one external collaborator the allocator
// core treats as a black box: a single contiguous, monotonically-growable
// byte region plus the raw memory-copy/memory-set primitives used to
// implement reallocation and zero-fill.
//
// A Region never relocates its backing storage once created — Extend only
// ever grows the used length within a capacity reserved up front — so
// every payload pointer segalloc has handed out over a Region's lifetime
// stays valid for the Region's entire lifetime, the same guarantee a real
// sbrk-backed heap gives its allocator.
package arena

import (
	"errors"
	"unsafe"

	"github.com/bytedance/gopkg/lang/mcache"
)

// ErrExhausted is returned by Extend when growing the region would exceed
// its reserved capacity. It is the sentinel spec.md §6 calls FAIL.
var ErrExhausted = errors.New("arena: exhausted reserved capacity")

// Region is a contiguous byte range [0, len) backed by a fixed-capacity
// slab. Offsets are relative to the start of the slab.
type Region struct {
	buf   []byte
	start unsafe.Pointer
}

// New reserves a Region of at least maxBytes capacity. The slab comes
// from mcache, which rounds the capacity up to the next power of two, so
// Cap() and the limit Extend enforces can exceed maxBytes. The region
// starts empty (Hi() == 0) — callers extend it to the size they need via
// Extend.
func New(maxBytes int) (*Region, error) {
	if maxBytes <= 0 {
		return nil, errors.New("arena: maxBytes must be positive")
	}
	buf := mcache.Malloc(0, maxBytes)
	// buf has cap == maxBytes but len == 0, so &buf[0] isn't valid yet;
	// start is captured lazily on the first Extend instead.
	return &Region{buf: buf}, nil
}

// Lo returns the region's fixed low address, valid only after the first
// successful Extend.
func (r *Region) Lo() unsafe.Pointer {
	return r.start
}

// Hi returns the current high-water offset (the region's used length).
func (r *Region) Hi() int {
	return len(r.buf)
}

// Cap returns the region's reserved capacity (maxBytes rounded up to a
// power of two).
func (r *Region) Cap() int {
	return cap(r.buf)
}

// Extend atomically grows the region's high-water mark by n bytes and
// returns the offset at which the new bytes begin (the region's old Hi()).
// It fails with ErrExhausted if doing so would exceed the reserved
// capacity; the region is left unchanged on failure.
func (r *Region) Extend(n int) (int, error) {
	if n <= 0 {
		return 0, errors.New("arena: extend amount must be positive")
	}
	old := len(r.buf)
	newLen := old + n
	if newLen > cap(r.buf) {
		return 0, ErrExhausted
	}
	r.buf = r.buf[:newLen]
	if r.start == nil {
		r.start = unsafe.Pointer(&r.buf[0])
	}
	return old, nil
}

// At returns a raw pointer to the byte at offset off within the region.
// The caller is responsible for keeping off within [0, Hi()).
func (r *Region) At(off int) unsafe.Pointer {
	return unsafe.Add(r.start, off)
}

// Bytes returns the region's current used range as a slice for tests and
// diagnostics. The slice aliases the region's backing storage.
func (r *Region) Bytes() []byte {
	return r.buf
}

// Close releases the region's backing slab back to the mcache pool. Only
// call this once nothing holds a pointer into the region; segalloc itself
// never calls it, since the core has no notion of tearing a live heap
// down (spec.md's non-goals exclude returning memory to the arena).
func (r *Region) Close() {
	if r.buf != nil {
		mcache.Free(r.buf[:cap(r.buf)])
		r.buf = nil
		r.start = nil
	}
}
