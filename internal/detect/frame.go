package detect

import (
	"fmt"
	"time"

	"sprite-detector/internal/pixel"
)

// FrameTypeSimple is the only frame type detection produces.
const FrameTypeSimple = "simple"

// Rect is an axis-aligned box in pixel-buffer coordinates.
type Rect struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
	W int `json:"w" msgpack:"w"`
	H int `json:"h" msgpack:"h"`
}

// Frame is one detected sprite.
type Frame struct {
	ID   int    `json:"id" msgpack:"id"`
	Name string `json:"name" msgpack:"name"`
	Rect Rect   `json:"rect" msgpack:"rect"`
	Type string `json:"type" msgpack:"type"`
}

// NewFrame names a frame after its id.
func NewFrame(id int, r Rect) Frame {
	return Frame{
		ID:   id,
		Name: fmt.Sprintf("sprite_%d", id),
		Rect: r,
		Type: FrameTypeSimple,
	}
}

// Stats describes one detection run.
type Stats struct {
	Width        int           `json:"width" msgpack:"width"`
	Height       int           `json:"height" msgpack:"height"`
	Background   pixel.Color   `json:"background" msgpack:"background"`
	Algorithm    Algorithm     `json:"algorithm" msgpack:"algorithm"`
	Native       bool          `json:"native" msgpack:"native"`
	Regions      int           `json:"regions" msgpack:"regions"`
	Discarded    int           `json:"discarded" msgpack:"discarded"`
	NoiseRegions int           `json:"noise_regions" msgpack:"noise_regions"`
	NoisePixels  int           `json:"noise_pixels" msgpack:"noise_pixels"`
	Chunks       int           `json:"chunks" msgpack:"chunks"`
	Duration     time.Duration `json:"duration" msgpack:"duration"`
}

// Result is the output of Run.
type Result struct {
	Frames []Frame `json:"frames" msgpack:"frames"`
	Stats  Stats   `json:"stats" msgpack:"stats"`
}
