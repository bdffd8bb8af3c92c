package segalloc

// coalesce merges a freshly-marked-free block b with whichever of its
// address-order neighbors are also free, per spec.md §4.4. The caller
// must already have removed both b's predecessor (if free) and b's
// successor (if free) from whatever free list each occupied; coalesce
// itself only rewrites headers/footers and returns the address of the
// merged run — it never touches a free list, leaving insertion to the
// caller once the final size is known.
func (h *Heap) coalesce(b off) off {
	prevFree := !h.prevAlloc(b)
	next := h.nextBlock(b)
	nextFree := !h.alloc(next)

	switch {
	case !prevFree && !nextFree:
		// Case 1: neither neighbor is free. b itself still becomes
		// free, so its successor's prevAlloc must flip to false
		// regardless — this is the fix for the source ambiguity
		// spec.md §9 note (c) calls out: the successor's prevMini must
		// reflect whether b (not some stale value) is mini, not be
		// zeroed unconditionally.
		h.setPrevFlags(next, h.size(b) == D, false)
		return b

	case !prevFree && nextFree:
		merged := h.size(b) + h.size(next)
		mini := h.prevIsMini(b)
		h.writeBlock(b, merged, mini, true, false)
		h.setPrevFlags(h.nextBlock(b), false, false)
		return b

	case prevFree && !nextFree:
		prev := h.prevBlock(b)
		merged := h.size(prev) + h.size(b)
		mini := h.prevIsMini(prev)
		h.writeBlock(prev, merged, mini, true, false)
		h.setPrevFlags(h.nextBlock(prev), false, false)
		return prev

	default: // prevFree && nextFree
		prev := h.prevBlock(b)
		merged := h.size(prev) + h.size(b) + h.size(next)
		mini := h.prevIsMini(prev)
		h.writeBlock(prev, merged, mini, true, false)
		h.setPrevFlags(h.nextBlock(prev), false, false)
		return prev
	}
}
