package segalloc

import "unsafe"

// off is a byte offset into the heap's arena, relative to the arena's
// fixed low address. The zero value, nilOff, never denotes a real block —
// the arena's first word is the prologue sentinel, so every real block
// starts at offset W or later — and is used the way a NULL pointer is
// used in the allocator this package is modeled on: as the empty-list
// marker for segregated and mini free-list heads and for "no predecessor"
// results.
//
// All raw address arithmetic in this package funnels through the small
// set of methods below, keeping the unsafe.Pointer surface reviewable in
// one place as recommended by the design notes this allocator follows.
type off int

const nilOff off = 0

func (h *Heap) ptr(o off) unsafe.Pointer {
	return h.region.At(int(o))
}

func (h *Heap) wordAt(o off) uint64 {
	return *(*uint64)(h.ptr(o))
}

func (h *Heap) putWordAt(o off, v uint64) {
	*(*uint64)(h.ptr(o)) = v
}

func (h *Heap) offAt(o off) off {
	return off(h.wordAt(o))
}

func (h *Heap) putOffAt(o off, v off) {
	h.putWordAt(o, uint64(v))
}

// header/footer field accessors

func (h *Heap) size(b off) int {
	return extractSize(h.wordAt(b))
}

func (h *Heap) alloc(b off) bool {
	return extractAlloc(h.wordAt(b))
}

func (h *Heap) prevAlloc(b off) bool {
	return extractPrevAlloc(h.wordAt(b))
}

func (h *Heap) prevIsMini(b off) bool {
	return extractPrevMini(h.wordAt(b))
}

// writeHeader packs and writes b's header word in place, leaving any
// footer or free-list link words untouched.
func (h *Heap) writeHeader(b off, size int, prevMini, prevAlloc, alloc bool) {
	h.putWordAt(b, pack(size, prevMini, prevAlloc, alloc))
}

// writeFooter writes the footer word duplicating b's header; only valid
// for free, non-mini blocks.
func (h *Heap) writeFooter(b off, size int, prevMini, prevAlloc bool) {
	h.putWordAt(b+off(size)-W, pack(size, prevMini, prevAlloc, false))
}

// writeBlock writes b's header and — iff the block is free and larger
// than a mini block — its footer, per the footer-elision rule (spec.md
// §4.1).
func (h *Heap) writeBlock(b off, size int, prevMini, prevAlloc, alloc bool) {
	h.writeHeader(b, size, prevMini, prevAlloc, alloc)
	if !alloc && size > D {
		h.writeFooter(b, size, prevMini, prevAlloc)
	}
}

// setPrevFlags rewrites only the prevMini/prevAlloc bits of b's header,
// leaving its size and its own alloc bit untouched.
func (h *Heap) setPrevFlags(b off, prevMini, prevAlloc bool) {
	size := h.size(b)
	alloc := h.alloc(b)
	h.writeHeader(b, size, prevMini, prevAlloc, alloc)
	if !alloc && size > D {
		h.writeFooter(b, size, prevMini, prevAlloc)
	}
}

// nextBlock returns the block immediately following b in address order.
// On the last user block this returns the epilogue; callers must check
// size()==0 to detect it.
func (h *Heap) nextBlock(b off) off {
	return b + off(h.size(b))
}

// prevBlock locates the block immediately preceding b, per spec.md §4.2:
// if b's prevIsMini flag is set, the predecessor is known to be a mini
// block at b-D without reading a footer (mini blocks have none); if b's
// prevAlloc flag is clear, the predecessor is free and its footer (at
// b-W) names its size. Calling this when prevAlloc is true is invalid —
// an allocated predecessor has no footer to read.
func (h *Heap) prevBlock(b off) off {
	if h.prevIsMini(b) {
		return b - D
	}
	footer := h.wordAt(b - W)
	size := extractSize(footer)
	return b - off(size)
}

// payloadToHeader recovers a block's header offset from a payload slice
// previously returned by Allocate/Reallocate/CallocLike.
func (h *Heap) payloadToHeader(p []byte) off {
	base := uintptr(h.region.Lo())
	data := uintptr(unsafe.Pointer(unsafe.SliceData(p)))
	return off(data-base) - W
}

// payload returns a slice view of b's payload, truncated to n usable
// bytes but capped to the block's full usable capacity so callers can
// observe slack via cap() (mirroring the teacher allocators' behavior).
func (h *Heap) payload(b off, n int) []byte {
	size := h.size(b)
	full := unsafe.Slice((*byte)(h.ptr(b+W)), size-W)
	return full[:n:len(full)]
}

func (h *Heap) payloadSize(b off) int {
	return h.size(b) - W
}
