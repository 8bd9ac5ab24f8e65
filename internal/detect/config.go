package detect

import (
	"fmt"

	"sprite-detector/internal/floodfill"
)

// Algorithm names a detection strategy.
type Algorithm string

const (
	FloodFill Algorithm = "floodFill"
	Contour   Algorithm = "contour"
	AI        Algorithm = "ai"
)

// Default configuration values.
const (
	DefaultTolerance      = 10
	DefaultMinSpriteSize  = 4
	DefaultNoiseThreshold = 4
	DefaultChunkSize      = 4 << 20
	MaxTolerance          = 255
)

// Config holds every detection option. Use DefaultConfig and Merge rather
// than building one by hand: the zero value is not valid.
type Config struct {
	Tolerance            int                    `json:"tolerance" msgpack:"tolerance"`
	MinSpriteSize        int                    `json:"min_sprite_size" msgpack:"min_sprite_size"`
	Connectivity         floodfill.Connectivity `json:"connectivity" msgpack:"connectivity"`
	EnableNoiseReduction bool                   `json:"enable_noise_reduction" msgpack:"enable_noise_reduction"`
	NoiseThreshold       int                    `json:"noise_threshold" msgpack:"noise_threshold"`
	EnableCache          bool                   `json:"enable_cache" msgpack:"enable_cache"`
	ForceRecalculation   bool                   `json:"force_recalculation" msgpack:"force_recalculation"`
	Algorithm            Algorithm              `json:"algorithm" msgpack:"algorithm"`
	ChunkSize            int                    `json:"chunk_size" msgpack:"chunk_size"`
	EnableChunking       bool                   `json:"enable_chunking" msgpack:"enable_chunking"`
	UseWorker            bool                   `json:"use_worker" msgpack:"use_worker"`
}

// DefaultConfig returns the configuration used when no override is given.
func DefaultConfig() Config {
	return Config{
		Tolerance:      DefaultTolerance,
		MinSpriteSize:  DefaultMinSpriteSize,
		Connectivity:   floodfill.Eight,
		NoiseThreshold: DefaultNoiseThreshold,
		EnableCache:    true,
		Algorithm:      FloodFill,
		ChunkSize:      DefaultChunkSize,
		UseWorker:      true,
	}
}

// Validate rejects out-of-range values. Nothing is clamped.
func (c Config) Validate() error {
	if c.Tolerance < 0 || c.Tolerance > MaxTolerance {
		return invalid("tolerance", c.Tolerance, fmt.Sprintf("must be within [0,%d]", MaxTolerance))
	}
	if c.MinSpriteSize < 1 {
		return invalid("min_sprite_size", c.MinSpriteSize, "must be at least 1")
	}
	if !c.Connectivity.Valid() {
		return invalid("connectivity", c.Connectivity, "must be four or eight")
	}
	if c.NoiseThreshold < 0 {
		return invalid("noise_threshold", c.NoiseThreshold, "must not be negative")
	}
	if _, ok := strategies[c.Algorithm]; !ok {
		return invalid("algorithm", c.Algorithm, fmt.Sprintf("must be one of %v", Algorithms()))
	}
	if c.EnableChunking && c.ChunkSize <= 0 {
		return invalid("chunk_size", c.ChunkSize, "must be positive when chunking is enabled")
	}
	return nil
}

// Overrides is a partial Config. Nil fields keep the base value.
type Overrides struct {
	Tolerance            *int                    `json:"tolerance,omitempty" yaml:"tolerance" koanf:"tolerance"`
	MinSpriteSize        *int                    `json:"min_sprite_size,omitempty" yaml:"min_sprite_size" koanf:"min_sprite_size"`
	Connectivity         *floodfill.Connectivity `json:"connectivity,omitempty" yaml:"connectivity" koanf:"connectivity"`
	EnableNoiseReduction *bool                   `json:"enable_noise_reduction,omitempty" yaml:"enable_noise_reduction" koanf:"enable_noise_reduction"`
	NoiseThreshold       *int                    `json:"noise_threshold,omitempty" yaml:"noise_threshold" koanf:"noise_threshold"`
	EnableCache          *bool                   `json:"enable_cache,omitempty" yaml:"enable_cache" koanf:"enable_cache"`
	ForceRecalculation   *bool                   `json:"force_recalculation,omitempty" yaml:"force_recalculation" koanf:"force_recalculation"`
	Algorithm            *Algorithm              `json:"algorithm,omitempty" yaml:"algorithm" koanf:"algorithm"`
	ChunkSize            *int                    `json:"chunk_size,omitempty" yaml:"-" koanf:"-"`
	EnableChunking       *bool                   `json:"enable_chunking,omitempty" yaml:"enable_chunking" koanf:"enable_chunking"`
	UseWorker            *bool                   `json:"use_worker,omitempty" yaml:"use_worker" koanf:"use_worker"`
}

// Merge applies the non-nil fields of o over base.
func Merge(base Config, o Overrides) Config {
	c := base
	if o.Tolerance != nil {
		c.Tolerance = *o.Tolerance
	}
	if o.MinSpriteSize != nil {
		c.MinSpriteSize = *o.MinSpriteSize
	}
	if o.Connectivity != nil {
		c.Connectivity = *o.Connectivity
	}
	if o.EnableNoiseReduction != nil {
		c.EnableNoiseReduction = *o.EnableNoiseReduction
	}
	if o.NoiseThreshold != nil {
		c.NoiseThreshold = *o.NoiseThreshold
	}
	if o.EnableCache != nil {
		c.EnableCache = *o.EnableCache
	}
	if o.ForceRecalculation != nil {
		c.ForceRecalculation = *o.ForceRecalculation
	}
	if o.Algorithm != nil {
		c.Algorithm = *o.Algorithm
	}
	if o.ChunkSize != nil {
		c.ChunkSize = *o.ChunkSize
	}
	if o.EnableChunking != nil {
		c.EnableChunking = *o.EnableChunking
	}
	if o.UseWorker != nil {
		c.UseWorker = *o.UseWorker
	}
	return c
}

// Layer returns o with every field that top sets replaced by top's value.
func (o Overrides) Layer(top Overrides) Overrides {
	if top.Tolerance != nil {
		o.Tolerance = top.Tolerance
	}
	if top.MinSpriteSize != nil {
		o.MinSpriteSize = top.MinSpriteSize
	}
	if top.Connectivity != nil {
		o.Connectivity = top.Connectivity
	}
	if top.EnableNoiseReduction != nil {
		o.EnableNoiseReduction = top.EnableNoiseReduction
	}
	if top.NoiseThreshold != nil {
		o.NoiseThreshold = top.NoiseThreshold
	}
	if top.EnableCache != nil {
		o.EnableCache = top.EnableCache
	}
	if top.ForceRecalculation != nil {
		o.ForceRecalculation = top.ForceRecalculation
	}
	if top.Algorithm != nil {
		o.Algorithm = top.Algorithm
	}
	if top.ChunkSize != nil {
		o.ChunkSize = top.ChunkSize
	}
	if top.EnableChunking != nil {
		o.EnableChunking = top.EnableChunking
	}
	if top.UseWorker != nil {
		o.UseWorker = top.UseWorker
	}
	return o
}

// Ptr returns a pointer to v, for building Overrides literals.
func Ptr[T any](v T) *T {
	return &v
}
