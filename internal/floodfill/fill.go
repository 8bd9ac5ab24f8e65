// Package floodfill implements the breadth-first region fill shared by the
// noise filter and the sprite detector.
package floodfill

import "fmt"

// Connectivity selects the neighbor set used while filling.
type Connectivity string

const (
	// Four visits orthogonal neighbors only.
	Four Connectivity = "four"
	// Eight also visits diagonal neighbors.
	Eight Connectivity = "eight"
)

// Valid reports whether c is a known connectivity.
func (c Connectivity) Valid() bool {
	return c == Four || c == Eight
}

// Neighbor offsets; the first four are orthogonal.
var (
	dx = [8]int{0, -1, 1, 0, -1, 1, -1, 1}
	dy = [8]int{-1, 0, 0, 1, -1, -1, 1, 1}
)

// Region summarizes one filled region.
type Region struct {
	MinX, MinY int
	MaxX, MaxY int
	Count      int
}

// Width returns the bounding box width.
func (r Region) Width() int { return r.MaxX - r.MinX + 1 }

// Height returns the bounding box height.
func (r Region) Height() int { return r.MaxY - r.MinY + 1 }

// Filler runs fills over a w×h grid and owns the visited set.
// A Filler is not safe for concurrent use.
type Filler struct {
	w, h      int
	neighbors int
	visited   []byte
	queue     []int
}

// New creates a Filler with an all-unvisited set.
func New(w, h int, conn Connectivity) (*Filler, error) {
	n := 4
	switch conn {
	case Four:
	case Eight:
		n = 8
	default:
		return nil, fmt.Errorf("floodfill: unknown connectivity %q", conn)
	}
	return &Filler{
		w:         w,
		h:         h,
		neighbors: n,
		visited:   make([]byte, w*h),
		queue:     make([]int, 0, 1024),
	}, nil
}

// Visited reports whether pixel p has been reached by a fill.
func (f *Filler) Visited(p int) bool {
	return f.visited[p] != 0
}

// Fill floods from seed through neighbors for which stop returns false.
// Pixels are marked visited when enqueued so none is counted twice.
// visit, if non-nil, is called once per pixel in dequeue order.
// The seed is taken as-is; callers check it against stop first.
func (f *Filler) Fill(seed int, stop func(p int) bool, visit func(p int)) Region {
	w, h := f.w, f.h
	sx, sy := seed%w, seed/w
	r := Region{MinX: sx, MinY: sy, MaxX: sx, MaxY: sy}

	f.visited[seed] = 1
	f.queue = append(f.queue[:0], seed)

	for head := 0; head < len(f.queue); head++ {
		cur := f.queue[head]
		cx, cy := cur%w, cur/w
		r.Count++
		if cx < r.MinX {
			r.MinX = cx
		}
		if cx > r.MaxX {
			r.MaxX = cx
		}
		if cy < r.MinY {
			r.MinY = cy
		}
		if cy > r.MaxY {
			r.MaxY = cy
		}
		if visit != nil {
			visit(cur)
		}

		for d := 0; d < f.neighbors; d++ {
			nx := cx + dx[d]
			ny := cy + dy[d]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			ni := ny*w + nx
			if f.visited[ni] != 0 || stop(ni) {
				continue
			}
			f.visited[ni] = 1
			f.queue = append(f.queue, ni)
		}
	}
	return r
}
