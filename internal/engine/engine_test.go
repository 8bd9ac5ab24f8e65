package engine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprite-detector/internal/detect"
	"sprite-detector/internal/floodfill"
	"sprite-detector/internal/pixel"
	"sprite-detector/internal/worker"
)

var (
	bg = color.NRGBA{R: 250, G: 250, B: 250, A: 255}
	fg = color.NRGBA{R: 10, G: 120, B: 10, A: 255}
)

func sheet(w, h int, blocks ...image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, bg)
		}
	}
	for _, r := range blocks {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetNRGBA(x, y, fg)
			}
		}
	}
	return img
}

// counting wraps detect.Run and counts invocations.
func counting(e *Engine) *atomic.Int64 {
	var n atomic.Int64
	e.run = func(b *pixel.Buffer, cfg detect.Config) (detect.Result, error) {
		n.Add(1)
		return detect.Run(b, cfg)
	}
	return &n
}

type failingDispatcher struct{ calls atomic.Int64 }

func (d *failingDispatcher) Dispatch(context.Context, *worker.Request) (*worker.Response, error) {
	d.calls.Add(1)
	return nil, errors.New("worker crashed")
}

func TestDetect_Scenarios(t *testing.T) {
	e := New()
	ctx := context.Background()

	frames, err := e.Detect(ctx, sheet(10, 10), detect.Overrides{Tolerance: detect.Ptr(10)})
	require.NoError(t, err)
	assert.Empty(t, frames)

	frames, err = e.Detect(ctx, sheet(10, 10, image.Rect(2, 2, 5, 5)), detect.Overrides{MinSpriteSize: detect.Ptr(4)})
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, detect.Rect{X: 2, Y: 2, W: 3, H: 3}, frames[0].Rect)
}

func TestDetect_DoesNotMutateSource(t *testing.T) {
	img := sheet(12, 12, image.Rect(0, 6, 1, 7), image.Rect(5, 5, 9, 9))
	before := append([]uint8(nil), img.Pix...)

	frames, err := New().Detect(context.Background(), img, detect.Overrides{
		EnableNoiseReduction: detect.Ptr(true),
		NoiseThreshold:       detect.Ptr(2),
		MinSpriteSize:        detect.Ptr(1),
	})
	require.NoError(t, err)
	assert.Len(t, frames, 1)
	assert.Equal(t, before, img.Pix)
}

func TestDetect_CacheHitSkipsAlgorithm(t *testing.T) {
	e := New()
	runs := counting(e)
	img := sheet(16, 16, image.Rect(3, 3, 8, 8))
	ctx := context.Background()

	first, err := e.Detect(ctx, img, detect.Overrides{})
	require.NoError(t, err)
	second, err := e.Detect(ctx, img, detect.Overrides{ForceRecalculation: detect.Ptr(false)})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), runs.Load())

	_, err = e.Detect(ctx, img, detect.Overrides{ForceRecalculation: detect.Ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), runs.Load())
}

func TestDetect_CacheKeyUsesCriticalFields(t *testing.T) {
	e := New()
	runs := counting(e)
	img := sheet(16, 16, image.Rect(3, 3, 8, 8))
	ctx := context.Background()

	_, err := e.Detect(ctx, img, detect.Overrides{})
	require.NoError(t, err)
	// Non-critical fields share the entry.
	_, err = e.Detect(ctx, img, detect.Overrides{UseWorker: detect.Ptr(false), NoiseThreshold: detect.Ptr(7)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), runs.Load())

	_, err = e.Detect(ctx, img, detect.Overrides{Connectivity: detect.Ptr(floodfill.Four)})
	require.NoError(t, err)
	_, err = e.Detect(ctx, img, detect.Overrides{Algorithm: detect.Ptr(detect.Contour)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), runs.Load())
}

func TestDetect_CacheDisabled(t *testing.T) {
	e := New()
	runs := counting(e)
	img := sheet(8, 8, image.Rect(1, 1, 4, 4))
	off := detect.Overrides{EnableCache: detect.Ptr(false)}

	for i := 0; i < 3; i++ {
		_, err := e.Detect(context.Background(), img, off)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), runs.Load())
	assert.Equal(t, 0, e.Cache().Len())
}

func TestDetect_CachedSliceIsNotShared(t *testing.T) {
	e := New()
	img := sheet(8, 8, image.Rect(1, 1, 4, 4))

	first, err := e.Detect(context.Background(), img, detect.Overrides{})
	require.NoError(t, err)
	first[0].Name = "renamed"

	second, err := e.Detect(context.Background(), img, detect.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "sprite_0", second[0].Name)
}

func TestDetect_CacheEviction(t *testing.T) {
	c := NewCache(3)
	e := New(WithCache(c))
	ctx := context.Background()

	sizes := []int{5, 6, 7, 8}
	for _, s := range sizes {
		_, err := e.Detect(ctx, sheet(s, s), detect.Overrides{})
		require.NoError(t, err)
	}

	cfg := detect.DefaultConfig()
	assert.False(t, c.Contains(KeyFor(5, 5, cfg)))
	for _, s := range sizes[1:] {
		assert.True(t, c.Contains(KeyFor(s, s, cfg)), "size %d", s)
	}
}

func TestDetect_AlgorithmFallbackIdentical(t *testing.T) {
	img := sheet(20, 20, image.Rect(1, 1, 6, 6), image.Rect(10, 2, 18, 5), image.Rect(4, 12, 9, 19))
	ctx := context.Background()

	var want []detect.Frame
	for _, alg := range []detect.Algorithm{detect.FloodFill, detect.Contour, detect.AI} {
		got, err := New().Detect(ctx, img, detect.Overrides{Algorithm: detect.Ptr(alg)})
		require.NoError(t, err)
		if want == nil {
			want = got
			continue
		}
		assert.Equal(t, want, got, "algorithm %s", alg)
	}
	assert.Len(t, want, 3)
}

func TestDetect_Validation(t *testing.T) {
	e := New()
	runs := counting(e)
	ctx := context.Background()
	img := sheet(4, 4)

	_, err := e.Detect(ctx, nil, detect.Overrides{})
	assert.True(t, detect.IsInvalidInput(err))

	_, err = e.Detect(ctx, img, detect.Overrides{Tolerance: detect.Ptr(256)})
	require.Error(t, err)
	assert.True(t, detect.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "tolerance=256")

	_, err = e.Detect(ctx, img, detect.Overrides{MinSpriteSize: detect.Ptr(0)})
	assert.True(t, detect.IsInvalidInput(err))

	assert.Equal(t, int64(0), runs.Load(), "validation happens before any processing")
}

func TestDetect_EmptyImage(t *testing.T) {
	frames, err := New().Detect(context.Background(), image.NewNRGBA(image.Rect(0, 0, 0, 0)), detect.Overrides{})
	require.NoError(t, err)
	assert.NotNil(t, frames)
	assert.Empty(t, frames)
}

type brokenImage struct{}

func (brokenImage) ColorModel() color.Model { return color.NRGBAModel }
func (brokenImage) Bounds() image.Rectangle { return image.Rect(0, 0, 4, 4) }
func (brokenImage) At(int, int) color.Color { panic("pixel source unreadable") }

func TestDetect_UnreadableSource(t *testing.T) {
	_, err := New().Detect(context.Background(), brokenImage{}, detect.Overrides{})
	require.Error(t, err)
	assert.True(t, detect.IsProcessing(err))
	assert.Contains(t, err.Error(), "unreadable")
}

func TestDetect_ValidatesBeforeReadingPixels(t *testing.T) {
	_, err := New().Detect(context.Background(), brokenImage{}, detect.Overrides{Tolerance: detect.Ptr(999)})
	require.Error(t, err)
	assert.True(t, detect.IsInvalidInput(err))
	assert.False(t, detect.IsProcessing(err))
	assert.Contains(t, err.Error(), "tolerance=999")
}

func TestDetect_WorkerPathMatchesInline(t *testing.T) {
	pool := worker.NewPool(2)
	defer pool.Close()

	img := sheet(24, 24, image.Rect(1, 1, 7, 7), image.Rect(12, 12, 20, 22))
	noCache := detect.Overrides{EnableCache: detect.Ptr(false)}

	viaWorker, err := New(WithDispatcher(pool)).Detect(context.Background(), img, noCache)
	require.NoError(t, err)

	noCache.UseWorker = detect.Ptr(false)
	inline, err := New().Detect(context.Background(), img, noCache)
	require.NoError(t, err)

	assert.Equal(t, inline, viaWorker)
}

func TestDetect_WorkerFailureFallsBack(t *testing.T) {
	d := &failingDispatcher{}
	e := New(WithDispatcher(d))
	runs := counting(e)

	frames, err := e.Detect(context.Background(), sheet(10, 10, image.Rect(2, 2, 5, 5)), detect.Overrides{})
	require.NoError(t, err)
	assert.Len(t, frames, 1)
	assert.Equal(t, int64(1), d.calls.Load())
	assert.Equal(t, int64(1), runs.Load())
}

func TestDetect_ClosedPoolFallsBack(t *testing.T) {
	pool := worker.NewPool(1)
	require.NoError(t, pool.Close())

	frames, err := New(WithDispatcher(pool)).Detect(context.Background(), sheet(10, 10, image.Rect(2, 2, 5, 5)), detect.Overrides{})
	require.NoError(t, err)
	assert.Len(t, frames, 1)
}

func TestDetect_WorkerNotUsedWhenDisabled(t *testing.T) {
	d := &failingDispatcher{}
	_, err := New(WithDispatcher(d)).Detect(context.Background(), sheet(6, 6), detect.Overrides{UseWorker: detect.Ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, int64(0), d.calls.Load())
}

func TestDetect_CanceledContext(t *testing.T) {
	e := New()
	block := make(chan struct{})
	e.run = func(b *pixel.Buffer, cfg detect.Config) (detect.Result, error) {
		<-block
		return detect.Run(b, cfg)
	}
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := e.Detect(ctx, sheet(6, 6), detect.Overrides{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, e.Cache().Len())
}

func TestDetect_ConcurrentCallers(t *testing.T) {
	e := New(WithCache(NewCache(2)))
	img := sheet(12, 12, image.Rect(2, 2, 6, 6))

	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		go func(i int) {
			_, err := e.Detect(context.Background(), img, detect.Overrides{Tolerance: detect.Ptr(i % 4)})
			errs <- err
		}(i)
	}
	for i := 0; i < 16; i++ {
		assert.NoError(t, <-errs)
	}
	assert.LessOrEqual(t, e.Cache().Len(), 2)
}
