package aag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDSet(t *testing.T) {
	s := NewIDSet(3, 1, 2, 3)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []int{1, 2, 3}, s.Sorted())

	c := s.Clone()
	c.Remove(2)
	assert.True(t, s.Has(2))
	assert.False(t, c.Has(2))

	c.Union(NewIDSet(7))
	c.Subtract(NewIDSet(1, 9))
	assert.Equal(t, []int{3, 7}, c.Sorted())
}
