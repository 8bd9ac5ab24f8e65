package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrdered_EvictsOldestInserted(t *testing.T) {
	c := New[int, string](3)
	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(3, "c")

	// A hit does not refresh key 1.
	v, ok := c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	c.Put(4, "d")
	assert.False(t, c.Contains(1))
	assert.True(t, c.Contains(2))
	assert.True(t, c.Contains(3))
	assert.True(t, c.Contains(4))
	assert.Equal(t, 3, c.Len())
}

func TestOrdered_DefaultCapacity(t *testing.T) {
	c := New[int, int](0)
	assert.Equal(t, DefaultCapacity, c.Capacity())

	for i := 0; i < DefaultCapacity+1; i++ {
		c.Put(i, i)
	}
	assert.False(t, c.Contains(0))
	for i := 1; i <= DefaultCapacity; i++ {
		assert.True(t, c.Contains(i), "key %d", i)
	}
}

func TestOrdered_ReplaceKeepsPosition(t *testing.T) {
	c := New[string, int](2)
	c.Put("x", 1)
	c.Put("y", 2)
	c.Put("x", 10)

	v, _ := c.Get("x")
	assert.Equal(t, 10, v)

	c.Put("z", 3)
	assert.False(t, c.Contains("x"), "x is still the oldest insertion")
	assert.True(t, c.Contains("y"))
}

func TestOrdered_ConcurrentAccess(t *testing.T) {
	c := New[int, int](5)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				c.Put(w*1000+i, i)
				c.Get(i)
			}
		}(w)
	}
	wg.Wait()
	assert.Equal(t, 5, c.Len())
}
