package segalloc

import (
	"errors"

	"github.com/segalloc/segalloc/arena"
)

// Heap is a segregated free-list allocator over a single arena.Region.
// The zero value is not usable; construct one with New.
type Heap struct {
	region *arena.Region

	seg      [NLists]off
	miniHead off

	inited bool
	debug  bool
}

// Option configures a Heap at construction time.
type Option func(*Heap)

// WithDebugChecks enables pre/post invariant auditing on every public
// operation (spec.md §7: "In debug builds, the auditor is invoked at
// pre- and post-conditions of every public operation"). It is
// significantly slower and intended for tests, not production use.
func WithDebugChecks() Option {
	return func(h *Heap) { h.debug = true }
}

// New reserves an arena of maxBytes rounded up to a power of two (see
// arena.New) and returns an uninitialized Heap over it. The heap lazily
// runs its one-time setup (prologue, epilogue, first CHUNK-byte
// extension) on the first call that allocates (Allocate, Reallocate, or
// CallocLike with a non-empty request); Free never triggers it. Callers
// that want setup errors reported eagerly can call Init directly.
func New(maxBytes int, opts ...Option) (*Heap, error) {
	r, err := arena.New(maxBytes)
	if err != nil {
		return nil, err
	}
	h := &Heap{region: r}
	for _, o := range opts {
		o(h)
	}
	return h, nil
}

// Init performs the allocator's one-time setup: it writes the prologue
// and epilogue sentinels (spec.md §3) and pre-extends the arena by CHUNK
// bytes. It is safe to call once before any other operation; every
// allocating operation calls it automatically if it hasn't run yet.
func (h *Heap) Init() error {
	if h.inited {
		return nil
	}
	// Reserve the prologue word (offset 0) and an initial epilogue word
	// (offset W) — both zero-sized, always-allocated sentinels (spec.md
	// §3) — before the first real block exists.
	if _, err := h.region.Extend(2 * W); err != nil {
		return err
	}
	h.writeHeader(nilOff, 0, false, true, true)
	h.writeHeader(W, 0, false, true, true)

	h.inited = true
	if _, err := h.extend(CHUNK, false, true); err != nil {
		h.inited = false
		return err
	}
	return nil
}

func (h *Heap) ensureInit() error {
	if h.inited {
		return nil
	}
	return h.Init()
}

// epilogue returns the offset of the current epilogue sentinel — the
// zero-sized, always-allocated block terminating the arena's used range.
// It always occupies the last W bytes of the region's used range.
func (h *Heap) epilogue() off {
	return off(h.region.Hi()) - W
}

func (h *Heap) writeEpilogue(b off) {
	h.writeHeader(b, 0, false, false, true)
}

var errNotInitialized = errors.New("segalloc: heap not initialized")
