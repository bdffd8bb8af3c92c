package segalloc

// extend grows the arena by at least minBytes, rounded up to a multiple
// of D, turning the old epilogue into the header of a new free block and
// writing a fresh epilogue past it, per spec.md §4.6. epiPrevMini and
// epiPrevAlloc are the prevMini/prevAlloc flags read off the old
// epilogue before this call — i.e. whether the block that used to
// immediately precede the epilogue was a mini block, and whether it was
// allocated.
//
// The returned block has already been coalesced with a free predecessor
// (if epiPrevAlloc is false) and inserted into the appropriate free list;
// it is not yet split or removed from that list.
func (h *Heap) extend(minBytes int, epiPrevMini, epiPrevAlloc bool) (off, error) {
	n := roundUp(minBytes, D)
	b := h.epilogue()

	if _, err := h.region.Extend(n); err != nil {
		return nilOff, err
	}

	h.writeBlock(b, n, epiPrevMini, epiPrevAlloc, false)
	newEpilogue := h.nextBlock(b)
	h.writeEpilogue(newEpilogue)

	if !epiPrevAlloc {
		prev := h.prevBlock(b)
		if h.size(prev) == D {
			h.removeMini(prev)
		} else {
			h.removeRegular(prev)
		}
	}

	merged := h.coalesce(b)
	if h.size(merged) == D {
		h.insertMini(merged)
	} else {
		h.insertRegular(merged)
	}
	return merged, nil
}
