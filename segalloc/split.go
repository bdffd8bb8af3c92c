package segalloc

// splitPlace carves an allocated block of exactly asize bytes out of a
// free block b (already removed from its free list), inserting any
// leftover remainder into the appropriate free list, per spec.md §4.5.
//
// The original C implementation enumerates six (B-is-mini, asize-is-mini,
// remainder-is-mini, remainder-is-zero) cases by hand. Only two are
// actually distinct here: since both b's size and asize are always
// multiples of D (the façade only ever requests D-aligned sizes), the
// remainder size-asize is too, so it is either exactly zero or at least
// D — there is no in-between case to enumerate. b being a mini block
// itself forces asize==D and therefore remainder==0, so that case falls
// out of the zero-remainder branch rather than needing separate handling.
func (h *Heap) splitPlace(b off, asize int, prevMini, prevAlloc bool) {
	total := h.size(b)
	remainder := total - asize

	h.writeBlock(b, asize, prevMini, prevAlloc, true)

	if remainder == 0 {
		succ := h.nextBlock(b)
		h.setPrevFlags(succ, asize == D, true)
		return
	}

	rem := b + off(asize)
	if remainder == D {
		h.writeBlock(rem, D, asize == D, true, false)
		h.insertMini(rem)
	} else {
		h.writeBlock(rem, remainder, asize == D, true, false)
		h.insertRegular(rem)
	}
	succ := h.nextBlock(rem)
	h.setPrevFlags(succ, remainder == D, false)
}
