package segalloc

import "fmt"

func Example() {
	h, _ := New(1 << 20)

	a := h.Allocate(24)
	b := h.Allocate(100)
	fmt.Printf("a: len=%d cap=%d\n", len(a), cap(a))
	fmt.Printf("b: len=%d cap=%d\n", len(b), cap(b))

	h.Free(a)
	h.Free(b)

	// Output:
	// a: len=24 cap=24
	// b: len=100 cap=104
}
