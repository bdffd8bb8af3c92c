package segalloc

import "github.com/segalloc/segalloc/arena"

// Allocate reserves at least n bytes and returns a 16-byte-aligned
// payload slice, or nil if n is zero or the arena is exhausted. Per
// spec.md §4.7, the requested size is adjusted to
// asize = round_up(n+W, D), with a floor of D; if no free block fits, the
// arena is extended by max(asize, CHUNK) bytes before placing the block.
func (h *Heap) Allocate(n int) []byte {
	if h.debug {
		if err := h.ensureInit(); err == nil {
			h.mustCheckHeap("Allocate: precondition")
		}
	}
	p := h.allocate(n)
	if h.debug {
		h.mustCheckHeap("Allocate: postcondition")
	}
	return p
}

func (h *Heap) allocate(n int) []byte {
	if n <= 0 {
		return nil
	}
	if err := h.ensureInit(); err != nil {
		return nil
	}

	asize := maxv(roundUp(n+W, D), D)

	b, found := h.findFit(asize)
	if !found {
		epi := h.epilogue()
		mini := h.prevIsMini(epi)
		palloc := h.prevAlloc(epi)
		grow := maxv(asize, CHUNK)
		nb, err := h.extend(grow, mini, palloc)
		if err != nil {
			return nil
		}
		b = nb
	}

	if h.size(b) == D {
		h.removeMini(b)
	} else {
		h.removeRegular(b)
	}

	h.splitPlace(b, asize, h.prevIsMini(b), h.prevAlloc(b))
	return h.payload(b, n)
}

// Free returns p — a payload slice previously returned by Allocate,
// Reallocate, or CallocLike on this Heap and not since freed — to the
// allocator, coalescing it with any free neighbors. Freeing nil is a
// no-op. Freeing anything else is undefined, per spec.md §6.
func (h *Heap) Free(p []byte) {
	if h.debug {
		h.mustCheckHeap("Free: precondition")
	}
	h.free(p)
	if h.debug {
		h.mustCheckHeap("Free: postcondition")
	}
}

func (h *Heap) free(p []byte) {
	if p == nil {
		return
	}
	b := h.payloadToHeader(p)
	size := h.size(b)
	prevMini := h.prevIsMini(b)
	prevAlloc := h.prevAlloc(b)

	h.writeBlock(b, size, prevMini, prevAlloc, false)

	if !prevAlloc {
		prev := h.prevBlock(b)
		if h.size(prev) == D {
			h.removeMini(prev)
		} else {
			h.removeRegular(prev)
		}
	}

	next := h.nextBlock(b)
	if !h.alloc(next) {
		if h.size(next) == D {
			h.removeMini(next)
		} else {
			h.removeRegular(next)
		}
	}

	merged := h.coalesce(b)
	if h.size(merged) == D {
		h.insertMini(merged)
	} else {
		h.insertRegular(merged)
	}
}

// Reallocate resizes the block backing p to at least n bytes, copying the
// overlapping prefix and freeing the old block. It never expands in
// place. n==0 frees p and returns nil; p==nil behaves like Allocate(n).
func (h *Heap) Reallocate(p []byte, n int) []byte {
	if h.debug {
		h.mustCheckHeap("Reallocate: precondition")
	}
	q := h.reallocate(p, n)
	if h.debug {
		h.mustCheckHeap("Reallocate: postcondition")
	}
	return q
}

func (h *Heap) reallocate(p []byte, n int) []byte {
	if n == 0 {
		h.free(p)
		return nil
	}
	if p == nil {
		return h.allocate(n)
	}

	newp := h.allocate(n)
	if newp == nil {
		return nil
	}

	oldSize := h.payloadSize(h.payloadToHeader(p))
	cs := n
	if oldSize < cs {
		cs = oldSize
	}
	arena.MemCopy(newp[:cs], p[:cs])

	h.free(p)
	return newp
}

// CallocLike reserves space for nelem elements of elemSize bytes each,
// zero-filled, or nil if either argument is zero or nelem*elemSize
// overflows an int.
func (h *Heap) CallocLike(nelem, elemSize int) []byte {
	if h.debug {
		if err := h.ensureInit(); err == nil {
			h.mustCheckHeap("CallocLike: precondition")
		}
	}
	p := h.callocLike(nelem, elemSize)
	if h.debug {
		h.mustCheckHeap("CallocLike: postcondition")
	}
	return p
}

func (h *Heap) callocLike(nelem, elemSize int) []byte {
	if nelem == 0 || elemSize == 0 {
		return nil
	}
	total := nelem * elemSize
	if total/elemSize != nelem {
		return nil
	}
	p := h.allocate(total)
	if p == nil {
		return nil
	}
	arena.MemSet(p, 0)
	return p
}

// OffsetOf reports the byte offset of p's block within the heap's arena
// and whether p looks like a value Allocate could have returned (correct
// alignment, in bounds) — without trusting or dereferencing p's header.
// It yields the offset FreeAtOffset takes, for callers that persist
// offsets rather than payload slices, mirroring the teacher's
// Buddy/BitmapAllocator IsValidOffset/FreeAt split.
func (h *Heap) OffsetOf(p []byte) (int, bool) {
	b := h.payloadToHeader(p)
	if b < W || int(b) >= h.region.Hi() {
		return 0, false
	}
	if int(b+W)%D != 0 {
		return 0, false
	}
	return int(b), true
}

// FreeAtOffset frees the block whose payload begins blockOffset+W bytes
// into the arena, for callers that persisted an offset (via OffsetOf)
// rather than holding the live payload slice. Panics if blockOffset is
// out of range or misaligned, or if the header there is not marked
// allocated; an offset that points inside a block is not detected.
func (h *Heap) FreeAtOffset(blockOffset int) {
	if blockOffset < W || blockOffset >= h.region.Hi() || (blockOffset+W)%D != 0 {
		panic("segalloc: offset out of range")
	}
	b := off(blockOffset)
	if !h.alloc(b) {
		panic("segalloc: double free or invalid block")
	}
	h.free(h.payload(b, h.payloadSize(b)))
}
