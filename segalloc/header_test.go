package segalloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackExtract(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		prevMini  bool
		prevAlloc bool
		alloc     bool
	}{
		{"all clear", 32, false, false, false},
		{"all set", 48, true, true, true},
		{"alloc only", 16, false, false, true},
		{"prevAlloc only", 64, false, true, false},
		{"prevMini only", 32, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := pack(tt.size, tt.prevMini, tt.prevAlloc, tt.alloc)
			assert.Equal(t, tt.size, extractSize(w))
			assert.Equal(t, tt.prevMini, extractPrevMini(w))
			assert.Equal(t, tt.prevAlloc, extractPrevAlloc(w))
			assert.Equal(t, tt.alloc, extractAlloc(w))
		})
	}
}

func TestRoundUp(t *testing.T) {
	assert.Equal(t, 0, roundUp(0, D))
	assert.Equal(t, D, roundUp(1, D))
	assert.Equal(t, D, roundUp(D, D))
	assert.Equal(t, 2*D, roundUp(D+1, D))
}

func TestMaxv(t *testing.T) {
	assert.Equal(t, 5, maxv(5, 3))
	assert.Equal(t, 5, maxv(3, 5))
	assert.Equal(t, 5, maxv(5, 5))
}

func TestFindSegIndex(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{16, 0},
		{63, 0},
		{64, 1},
		{128, 2},
		{4096, 7},
		{1 << 30, NLists - 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, findSegIndex(tt.size), "size=%d", tt.size)
	}
}
