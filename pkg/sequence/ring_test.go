package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRing_PushEvictsOldest(t *testing.T) {
	r := NewRing[int](3)

	r.Push(1)
	r.Push(2)
	r.Push(3)
	require.Equal(t, 3, r.Len())
	assert.Equal(t, []int{1, 2, 3}, r.Values())

	r.Push(4)
	require.Equal(t, 3, r.Len())
	assert.Equal(t, []int{2, 3, 4}, r.Values())

	r.Push(5)
	r.Push(6)
	assert.Equal(t, []int{4, 5, 6}, r.Values())
}

func TestRing_RetainsMostRecent(t *testing.T) {
	r := NewRing[int](50)

	for i := 1; i <= 120; i++ {
		r.Push(i)
	}

	values := r.Values()
	require.Len(t, values, 50)
	assert.Equal(t, 71, values[0])
	assert.Equal(t, 120, values[49])
}

func TestRing_Latest(t *testing.T) {
	r := NewRing[string](2)

	_, ok := r.Latest()
	assert.False(t, ok)

	r.Push("a")
	r.Push("b")
	r.Push("c")

	latest, ok := r.Latest()
	require.True(t, ok)
	assert.Equal(t, "c", latest)
}

func TestRing_Reset(t *testing.T) {
	r := NewRing[int](4)
	r.Push(1)
	r.Push(2)

	r.Reset()
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 4, r.Cap())
	assert.Empty(t, r.Values())

	r.Push(7)
	assert.Equal(t, []int{7}, r.Values())
}

func TestRing_MinimumCapacity(t *testing.T) {
	r := NewRing[int](0)
	require.Equal(t, 1, r.Cap())

	r.Push(1)
	r.Push(2)
	assert.Equal(t, []int{2}, r.Values())
}
