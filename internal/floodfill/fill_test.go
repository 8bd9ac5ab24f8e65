package floodfill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// grid parses rows of '#' (foreground) and '.' (background).
func grid(rows ...string) (w, h int, fg []bool) {
	w, h = len(rows[0]), len(rows)
	fg = make([]bool, w*h)
	for y, row := range rows {
		for x, ch := range row {
			fg[y*w+x] = ch == '#'
		}
	}
	return w, h, fg
}

func TestFill_BoundingBoxAndCount(t *testing.T) {
	w, h, fg := grid(
		"......",
		".###..",
		".#....",
		".##...",
		"......",
	)
	f, err := New(w, h, Four)
	require.NoError(t, err)

	var seen []int
	r := f.Fill(1*w+1, func(p int) bool { return !fg[p] }, func(p int) { seen = append(seen, p) })

	assert.Equal(t, Region{MinX: 1, MinY: 1, MaxX: 3, MaxY: 3, Count: 6}, r)
	assert.Equal(t, 3, r.Width())
	assert.Equal(t, 3, r.Height())
	assert.Len(t, seen, 6)
	assert.Equal(t, 1*w+1, seen[0], "seed is visited first")
	for _, p := range seen {
		assert.True(t, f.Visited(p))
	}
	assert.False(t, f.Visited(0))
}

func TestFill_DiagonalNeighbors(t *testing.T) {
	w, h, fg := grid(
		"#.",
		".#",
	)
	stop := func(p int) bool { return !fg[p] }

	four, err := New(w, h, Four)
	require.NoError(t, err)
	assert.Equal(t, 1, four.Fill(0, stop, nil).Count)
	assert.False(t, four.Visited(3))

	eight, err := New(w, h, Eight)
	require.NoError(t, err)
	assert.Equal(t, 2, eight.Fill(0, stop, nil).Count)
	assert.True(t, eight.Visited(3))
}

func TestFill_NoDuplicateEnqueue(t *testing.T) {
	// A solid block reaches most pixels from several neighbors.
	w, h, fg := grid(
		"####",
		"####",
		"####",
	)
	f, err := New(w, h, Eight)
	require.NoError(t, err)
	r := f.Fill(5, func(p int) bool { return !fg[p] }, nil)
	assert.Equal(t, 12, r.Count)
}

func TestNew_RejectsUnknownConnectivity(t *testing.T) {
	_, err := New(2, 2, Connectivity("six"))
	assert.Error(t, err)
	assert.True(t, Four.Valid())
	assert.False(t, Connectivity("").Valid())
}
