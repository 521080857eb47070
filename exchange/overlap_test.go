package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsModelEntInOverlap(t *testing.T) {
	testCases := []struct {
		dim      int
		id       int32
		expected int8
	}{
		{2, 15, 0},
		{2, 16, 1},
		{2, 25, 1},
		{2, 26, 0},
		{1, 15, 1},
		{0, 15, 1},
		{0, 14, 0},
		{1, 25, 1},
		{3, 20, 0},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, IsModelEntInOverlap(tc.dim, tc.id), "dim %d id %d", tc.dim, tc.id)
	}
}

func TestMarkOverlap(t *testing.T) {
	tags, err := MarkOverlap([]int8{2, 1, 0, 2}, []int32{15, 15, 30, 20})
	require.NoError(t, err)
	assert.Equal(t, []int8{0, 1, 0, 1}, tags)

	_, err = MarkOverlap([]int8{2}, nil)
	assert.Error(t, err)
}
