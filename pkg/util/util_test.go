package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSliceIncludes(t *testing.T) {
	t.Parallel()

	assert.True(t, SliceIncludes([]int64{1, 2, 3}, 2))
	assert.False(t, SliceIncludes([]int64{1, 2, 3}, 4))
	assert.False(t, SliceIncludes(nil, int64(1)))
}

func TestPtrVal(t *testing.T) {
	t.Parallel()

	p := Ptr(42)
	assert.Equal(t, 42, Val(p))
	assert.Equal(t, 0, Val[int](nil))
}
