package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"golang.org/x/text/cases"

	"github.com/df07/go-texture-source/pkg/core"
	"github.com/df07/go-texture-source/pkg/material"
	"github.com/df07/go-texture-source/pkg/spectrum"
	"github.com/df07/go-texture-source/pkg/texture"
)

// ErrInvalidBakeConfig is returned for bake configurations that cannot produce an image
var ErrInvalidBakeConfig = errors.New("invalid bake configuration")

// Mode selects which evaluation of a source a bake previews
type Mode uint8

const (
	ModeRGB      Mode = iota // linear RGB with alpha
	ModeScalar               // scalar value as gray, opaque
	ModeSpectral             // spectrum converted back to linear RGB, with alpha
)

func (m Mode) String() string {
	switch m {
	case ModeRGB:
		return "rgb"
	case ModeScalar:
		return "scalar"
	case ModeSpectral:
		return "spectral"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode parses a bake mode name, ignoring case
func ParseMode(s string) (Mode, error) {
	switch cases.Fold().String(s) {
	case "rgb", "color":
		return ModeRGB, nil
	case "scalar", "float":
		return ModeScalar, nil
	case "spectral", "spectrum":
		return ModeSpectral, nil
	}
	return 0, fmt.Errorf("unknown bake mode %q", s)
}

// BakeConfig contains the settings of a bake
type BakeConfig struct {
	Width      int     // Output width in pixels
	Height     int     // Output height in pixels
	TileSize   int     // Edge of the square tiles handed to workers
	NumWorkers int     // Number of parallel workers (0 = auto-detect CPU count)
	Mode       Mode    // Evaluation previewed
	Repeat     float64 // How many times the unit UV square spans the image
}

// DefaultBakeConfig returns the default bake settings
func DefaultBakeConfig() BakeConfig {
	return BakeConfig{
		Width:    256,
		Height:   256,
		TileSize: 64,
		Mode:     ModeRGB,
		Repeat:   1,
	}
}

func (c BakeConfig) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidBakeConfig, c.Width, c.Height)
	}
	if c.TileSize <= 0 {
		return fmt.Errorf("%w: tile size %d", ErrInvalidBakeConfig, c.TileSize)
	}
	if !(c.Repeat > 0) {
		return fmt.Errorf("%w: repeat %g", ErrInvalidBakeConfig, c.Repeat)
	}
	if c.Mode > ModeSpectral {
		return fmt.Errorf("%w: %v", ErrInvalidBakeConfig, c.Mode)
	}
	return nil
}

// Baker evaluates sources over a regular UV grid in parallel, sharing one texel cache
type Baker struct {
	cache      texture.TexelCache
	lighting   *spectrum.LightingConditions
	config     BakeConfig
	workerPool *WorkerPool
}

// NewBaker creates a baker. Spectral previews project back to RGB with
// lighting, which must be the lighting conditions the baked sources were
// built with (Scene.Lighting for scene sources).
func NewBaker(cache texture.TexelCache, lighting *spectrum.LightingConditions, config BakeConfig) (*Baker, error) {
	if cache == nil {
		return nil, fmt.Errorf("%w: nil texel cache", ErrInvalidBakeConfig)
	}
	if lighting == nil {
		return nil, fmt.Errorf("%w: nil lighting conditions", ErrInvalidBakeConfig)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &Baker{
		cache:      cache,
		lighting:   lighting,
		config:     config,
		workerPool: NewWorkerPool(config.NumWorkers),
	}, nil
}

// Config returns the bake settings
func (b *Baker) Config() BakeConfig {
	return b.config
}

// BakeLinear evaluates src at the center of every pixel and returns the
// row-major linear RGBA values
func (b *Baker) BakeLinear(ctx context.Context, src material.Source) ([]core.Color4, BakeStats, error) {
	if src == nil {
		return nil, BakeStats{}, fmt.Errorf("%w: nil source", ErrInvalidBakeConfig)
	}

	start := time.Now()
	tiles := NewTileGrid(b.config.Width, b.config.Height, b.config.TileSize)
	pixels := make([]core.Color4, b.config.Width*b.config.Height)
	tr := NewTileRenderer(src, b.cache, b.lighting, b.config)

	err := b.workerPool.Run(ctx, tiles, func(ctx context.Context, tile *Tile) error {
		if err := tr.RenderTileBounds(tile.Bounds, pixels); err != nil {
			return fmt.Errorf("tile %d: %w", tile.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, BakeStats{}, err
	}

	stats := BakeStats{
		TotalPixels: len(pixels),
		TotalTiles:  len(tiles),
		Workers:     min(b.workerPool.NumWorkers(), len(tiles)),
		Duration:    time.Since(start),
	}
	if sc, ok := b.cache.(interface{ Stats() texture.CacheStats }); ok {
		stats.Cache = sc.Stats()
	}
	core.Logger().Info("bake finished", "mode", b.config.Mode.String(), "pixels", stats.TotalPixels,
		"tiles", stats.TotalTiles, "workers", stats.Workers, "duration", stats.Duration)
	return pixels, stats, nil
}

// Bake evaluates src like BakeLinear and encodes the result as an sRGB image
func (b *Baker) Bake(ctx context.Context, src material.Source) (*image.NRGBA, BakeStats, error) {
	pixels, stats, err := b.BakeLinear(ctx, src)
	if err != nil {
		return nil, stats, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, b.config.Width, b.config.Height))
	for j := 0; j < b.config.Height; j++ {
		for i := 0; i < b.config.Width; i++ {
			img.SetNRGBA(i, j, toNRGBA(pixels[j*b.config.Width+i]))
		}
	}
	return img, stats, nil
}

// toNRGBA encodes a linear color as 8-bit sRGB with straight alpha
func toNRGBA(c core.Color4) color.NRGBA {
	return color.NRGBA{
		R: texture.LinearToSRGB8(c.R),
		G: texture.LinearToSRGB8(c.G),
		B: texture.LinearToSRGB8(c.B),
		A: alpha8(c.A),
	}
}

func alpha8(a float32) uint8 {
	if !(a > 0) {
		return 0
	}
	if a >= 1 {
		return 255
	}
	return uint8(a*255 + 0.5)
}
