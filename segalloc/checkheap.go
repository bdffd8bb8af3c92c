package segalloc

import (
	"fmt"
	"io"

	"github.com/segalloc/segalloc/unsafex"
)

// CheckHeap walks the heap's entire block chain and free lists, returning
// a description of every invariant violation it finds. A nil/empty result
// means the heap is internally consistent. Unlike the stub this allocator
// is modeled on — the original mm_check always reports healthy — this is
// a real auditor, per spec.md §9 design note and the testable property
// P1 ("the heap is always internally consistent after any public
// operation returns").
//
// The checks performed are, in order:
//
//  1. every block's size is a positive multiple of D (except the
//     zero-sized epilogue);
//  2. every block's prevAlloc/prevMini flags agree with its actual
//     address-order predecessor;
//  3. no two free blocks are ever adjacent (coalescing would have merged
//     them);
//  4. a free, non-mini block's footer duplicates its header;
//  5. every block marked free appears in exactly one free list, and every
//     block marked allocated appears in none;
//  6. every block in segregated list index i actually belongs there per
//     findSegIndex;
//  7. every regular segregated list is a consistent circular doubly-linked
//     list (next(prev(b))==b and vice versa for every member).
func (h *Heap) CheckHeap() []string {
	if !h.inited {
		return nil
	}

	var problems []string
	report := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	freeBlocks := make(map[off]bool)
	listed := make(map[off]int) // offset -> number of free lists it was found on

	prologue := off(0)
	first := off(W)
	end := h.epilogue()

	// Walk the block chain in address order (checks 1-4).
	prev := prologue
	for b := first; b < end; b = h.nextBlock(b) {
		size := h.size(b)
		if size <= 0 || size%D != 0 {
			report("block at %d: invalid size %d", b, size)
			break
		}

		wantPrevAlloc := h.alloc(prev)
		wantPrevMini := h.size(prev) == D
		if h.prevAlloc(b) != wantPrevAlloc {
			report("block at %d: prevAlloc=%v, want %v (predecessor at %d)", b, h.prevAlloc(b), wantPrevAlloc, prev)
		}
		if h.prevIsMini(b) != wantPrevMini {
			report("block at %d: prevIsMini=%v, want %v (predecessor at %d has size %d)", b, h.prevIsMini(b), wantPrevMini, prev, h.size(prev))
		}

		if !h.alloc(b) {
			freeBlocks[b] = true
			if !wantPrevAlloc {
				report("block at %d: free block adjacent to free predecessor at %d (coalescing missed)", b, prev)
			}
			if size > D {
				header := h.wordAt(b)
				footer := h.wordAt(b + off(size) - W)
				if header != footer {
					report("block at %d: footer %#x does not match header %#x", b, footer, header)
				}
			}
		}

		prev = b
	}

	// Walk the mini list (part of check 5).
	cur := h.miniHead
	seen := make(map[off]bool)
	for cur != nilOff {
		if seen[cur] {
			report("mini list: cycle detected at %d", cur)
			break
		}
		seen[cur] = true
		if h.alloc(cur) {
			report("mini list: block at %d is marked allocated", cur)
		}
		if h.size(cur) != D {
			report("mini list: block at %d has size %d, want %d", cur, h.size(cur), D)
		}
		listed[cur]++
		cur = h.offAt(cur + nextOff)
	}

	// Walk each segregated list (checks 5, 6, 7).
	for idx := 0; idx < NLists; idx++ {
		head := h.seg[idx]
		if head == nilOff {
			continue
		}
		b := head
		visited := make(map[off]bool)
		for {
			if visited[b] {
				report("segregated list %d: cycle not closing back at head %d", idx, head)
				break
			}
			visited[b] = true
			if h.alloc(b) {
				report("segregated list %d: block at %d is marked allocated", idx, b)
			}
			if got := findSegIndex(h.size(b)); got != idx {
				report("segregated list %d: block at %d (size %d) belongs in list %d", idx, b, h.size(b), got)
			}
			listed[b]++

			next := h.offAt(b + nextOff)
			if h.offAt(next+prevOff) != b {
				report("segregated list %d: block at %d's next (%d) does not point back via prev", idx, b, next)
			}
			b = next
			if b == head {
				break
			}
		}
	}

	for b := range freeBlocks {
		switch listed[b] {
		case 0:
			report("block at %d: marked free but not present on any free list", b)
		case 1:
			// correct
		default:
			report("block at %d: present on %d free lists", b, listed[b])
		}
	}
	for b, n := range listed {
		if !freeBlocks[b] && n > 0 {
			report("block at %d: present on a free list but marked allocated", b)
		}
	}

	return problems
}

// mustCheckHeap panics if CheckHeap finds any violation, prefixing phase
// (e.g. "Allocate: postcondition") to the report. Only called when the
// Heap was constructed with WithDebugChecks.
func (h *Heap) mustCheckHeap(phase string) {
	if problems := h.CheckHeap(); len(problems) > 0 {
		panic(fmt.Sprintf("segalloc: heap corrupt at %s: %v", phase, problems))
	}
}

// CheckHeapVerbose writes a block-by-block dump of the heap to w —
// offset, size, alloc/prevAlloc/prevMini flags, and (for every free
// block) a preview of its first payload bytes, at most 8, via
// unsafex.BinaryToString — then
// any invariant violations CheckHeap finds, and returns whether the heap
// passed.
func (h *Heap) CheckHeapVerbose(w io.Writer) bool {
	if !h.inited {
		fmt.Fprintln(w, "heap not initialized")
		return true
	}

	end := h.epilogue()
	for b := off(W); b < end; b = h.nextBlock(b) {
		size := h.size(b)
		fmt.Fprintf(w, "block %6d: size=%-5d alloc=%-5v prevAlloc=%-5v prevMini=%-5v",
			b, size, h.alloc(b), h.prevAlloc(b), h.prevIsMini(b))
		if !h.alloc(b) && size > W {
			preview := h.payload(b, minInt(size-W, 8))
			fmt.Fprintf(w, " payload=%q", unsafex.BinaryToString(preview))
		}
		fmt.Fprintln(w)
		if size <= 0 {
			break
		}
	}

	problems := h.CheckHeap()
	for _, p := range problems {
		fmt.Fprintln(w, "VIOLATION:", p)
	}
	return len(problems) == 0
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
