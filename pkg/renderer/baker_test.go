package renderer

import (
	"context"
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/df07/go-texture-source/pkg/core"
	"github.com/df07/go-texture-source/pkg/material"
	"github.com/df07/go-texture-source/pkg/spectrum"
	"github.com/df07/go-texture-source/pkg/texture"
)

// testResolver resolves texture index 0 of a single owner
type testResolver struct {
	owner core.UniqueID
	tex   texture.Texture
}

func (r testResolver) ResolveTexture(owner core.UniqueID, index int) (texture.Texture, error) {
	if owner != r.owner || index != 0 {
		return nil, texture.ErrTextureNotFound
	}
	return r.tex, nil
}

// failingCache fails every fetch
type failingCache struct{ err error }

func (c failingCache) FetchTexel(core.UniqueID, int, int, int) (core.Color4, error) {
	return core.Color4{}, c.err
}

var (
	red   = core.NewColor4(1, 0, 0, 1)
	green = core.NewColor4(0, 1, 0, 1)
	blue  = core.NewColor4(0, 0, 1, 1)
	white = core.NewColor4(1, 1, 1, 0.5)
)

// newQuadSource returns a nearest-filtered source over a 2x2 red/green/blue/white texture
func newQuadSource(t *testing.T, addressing texture.AddressingMode) (*material.TextureSource, *texture.TileCache) {
	t.Helper()
	tex, err := texture.NewLinearTexture(2, 2, []core.Color4{red, green, blue, white})
	if err != nil {
		t.Fatalf("NewLinearTexture failed: %v", err)
	}
	resolver := testResolver{owner: core.NewUniqueID(), tex: tex.WithTileSize(1, 1)}
	src, err := material.NewTextureSource(resolver.owner, resolver, material.TextureBinding{
		TextureIndex:   0,
		AddressingMode: addressing,
		FilteringMode:  texture.FilterNearest,
		Multiplier:     1,
	}, resolver.tex.Properties(), spectrum.DefaultLightingConditions())
	if err != nil {
		t.Fatalf("NewTextureSource failed: %v", err)
	}
	return src, texture.NewTileCache(resolver, texture.DefaultTileCacheConfig())
}

func newTestBaker(t *testing.T, cache texture.TexelCache, mutate func(*BakeConfig)) *Baker {
	t.Helper()
	config := DefaultBakeConfig()
	config.Width, config.Height, config.TileSize, config.NumWorkers = 4, 4, 2, 3
	if mutate != nil {
		mutate(&config)
	}
	baker, err := NewBaker(cache, spectrum.DefaultLightingConditions(), config)
	if err != nil {
		t.Fatalf("NewBaker failed: %v", err)
	}
	return baker
}

func TestBakeLinearRGB(t *testing.T) {
	src, cache := newQuadSource(t, texture.AddressClamp)
	baker := newTestBaker(t, cache, nil)

	pixels, stats, err := baker.BakeLinear(context.Background(), src)
	if err != nil {
		t.Fatalf("BakeLinear failed: %v", err)
	}

	quad := []core.Color4{red, green, blue, white}
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			expected := quad[(j/2)*2+i/2]
			if got := pixels[j*4+i]; !got.Equals(expected) {
				t.Errorf("Pixel (%d, %d): expected %v, got %v", i, j, expected, got)
			}
		}
	}

	if stats.TotalPixels != 16 {
		t.Errorf("Expected 16 pixels, got %d", stats.TotalPixels)
	}
	if stats.TotalTiles != 4 {
		t.Errorf("Expected 4 tiles, got %d", stats.TotalTiles)
	}
	if stats.Workers != 3 {
		t.Errorf("Expected 3 workers, got %d", stats.Workers)
	}
	if stats.Cache.Loads != 4 {
		t.Errorf("Expected each of the 4 tiles to load once, got %d loads", stats.Cache.Loads)
	}
	if stats.Cache.Hits+stats.Cache.Misses != 16 {
		t.Errorf("Expected 16 texel fetches, got %d", stats.Cache.Hits+stats.Cache.Misses)
	}
}

func TestBakeEncodesSRGB(t *testing.T) {
	src, cache := newQuadSource(t, texture.AddressClamp)
	img, _, err := newTestBaker(t, cache, nil).Bake(context.Background(), src)
	if err != nil {
		t.Fatalf("Bake failed: %v", err)
	}

	tests := []struct {
		x, y     int
		expected color.NRGBA
	}{
		{0, 0, color.NRGBA{255, 0, 0, 255}},
		{3, 0, color.NRGBA{0, 255, 0, 255}},
		{0, 3, color.NRGBA{0, 0, 255, 255}},
		{3, 3, color.NRGBA{255, 255, 255, 128}},
	}
	for _, tt := range tests {
		if got := img.NRGBAAt(tt.x, tt.y); got != tt.expected {
			t.Errorf("Pixel (%d, %d): expected %v, got %v", tt.x, tt.y, tt.expected, got)
		}
	}
}

func TestBakeScalarMode(t *testing.T) {
	src, cache := newQuadSource(t, texture.AddressClamp)
	baker := newTestBaker(t, cache, func(c *BakeConfig) { c.Mode = ModeScalar })

	pixels, _, err := baker.BakeLinear(context.Background(), src)
	if err != nil {
		t.Fatalf("BakeLinear failed: %v", err)
	}
	// Scalar evaluation reads the red channel and previews as opaque gray
	expected := map[int]core.Color4{
		0:  core.NewColor4(1, 1, 1, 1), // red
		3:  core.NewColor4(0, 0, 0, 1), // green
		12: core.NewColor4(0, 0, 0, 1), // blue
		15: core.NewColor4(1, 1, 1, 1), // white, alpha dropped
	}
	for i, want := range expected {
		if got := pixels[i]; !got.Equals(want) {
			t.Errorf("Pixel %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestBakeSpectralMode(t *testing.T) {
	lighting := spectrum.DefaultLightingConditions()
	src, err := material.NewColorSource(core.NewColor3(0.25, 0.5, 0.75), 0.8, lighting)
	if err != nil {
		t.Fatalf("NewColorSource failed: %v", err)
	}
	baker := newTestBaker(t, failingCache{errors.New("unused")}, func(c *BakeConfig) { c.Mode = ModeSpectral })

	pixels, _, err := baker.BakeLinear(context.Background(), src)
	if err != nil {
		t.Fatalf("BakeLinear failed: %v", err)
	}
	const tolerance = 1e-3
	for i, p := range pixels {
		if math.Abs(float64(p.R-0.25)) > tolerance || math.Abs(float64(p.G-0.5)) > tolerance ||
			math.Abs(float64(p.B-0.75)) > tolerance || p.A != 0.8 {
			t.Fatalf("Pixel %d: expected about (0.25, 0.5, 0.75, 0.8), got %v", i, p)
		}
	}
}

func TestBakeSpectralCustomLighting(t *testing.T) {
	defaults := spectrum.DefaultLightingConditions()
	// Swapping the red and green primaries gives a valid, non-default basis
	lighting, err := spectrum.NewLightingConditions("swapped",
		[3]spectrum.Spectrum{defaults.Basis(1), defaults.Basis(0), defaults.Basis(2)})
	if err != nil {
		t.Fatalf("NewLightingConditions failed: %v", err)
	}
	src, err := material.NewColorSource(core.NewColor3(0.2, 0.6, 0.9), 1, lighting)
	if err != nil {
		t.Fatalf("NewColorSource failed: %v", err)
	}

	config := DefaultBakeConfig()
	config.Width, config.Height, config.Mode = 2, 2, ModeSpectral
	baker, err := NewBaker(failingCache{errors.New("unused")}, lighting, config)
	if err != nil {
		t.Fatalf("NewBaker failed: %v", err)
	}
	pixels, _, err := baker.BakeLinear(context.Background(), src)
	if err != nil {
		t.Fatalf("BakeLinear failed: %v", err)
	}
	const tolerance = 1e-3
	p := pixels[0]
	if math.Abs(float64(p.R-0.2)) > tolerance || math.Abs(float64(p.G-0.6)) > tolerance ||
		math.Abs(float64(p.B-0.9)) > tolerance {
		t.Errorf("Expected about (0.2, 0.6, 0.9) with the sources' lighting, got %v", p)
	}
}

func TestBakeRepeatWraps(t *testing.T) {
	src, cache := newQuadSource(t, texture.AddressWrap)
	baker := newTestBaker(t, cache, func(c *BakeConfig) { c.Repeat = 2 })

	pixels, _, err := baker.BakeLinear(context.Background(), src)
	if err != nil {
		t.Fatalf("BakeLinear failed: %v", err)
	}
	// With two repetitions each 2x2 pixel block shows the whole texture
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			if got, want := pixels[j*4+i], pixels[(j%2)*4+i%2]; !got.Equals(want) {
				t.Errorf("Pixel (%d, %d): expected %v, got %v", i, j, want, got)
			}
		}
	}
	if !pixels[1].Equals(green) || !pixels[4].Equals(blue) {
		t.Errorf("Expected green at (1, 0) and blue at (0, 1), got %v and %v", pixels[1], pixels[4])
	}
}

func TestBakePropagatesErrors(t *testing.T) {
	src, _ := newQuadSource(t, texture.AddressWrap)
	errCache := errors.New("cache unavailable")
	baker := newTestBaker(t, failingCache{errCache}, nil)

	if _, _, err := baker.Bake(context.Background(), src); !errors.Is(err, errCache) {
		t.Fatalf("Expected cache error, got %v", err)
	}
	if _, _, err := baker.Bake(context.Background(), nil); !errors.Is(err, ErrInvalidBakeConfig) {
		t.Fatalf("Expected ErrInvalidBakeConfig for nil source, got %v", err)
	}
}

func TestBakeCanceled(t *testing.T) {
	src, cache := newQuadSource(t, texture.AddressWrap)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := newTestBaker(t, cache, nil).BakeLinear(ctx, src); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestNewBakerValidation(t *testing.T) {
	cache := failingCache{}
	lighting := spectrum.DefaultLightingConditions()
	tests := []struct {
		name     string
		cache    texture.TexelCache
		lighting *spectrum.LightingConditions
		mutate   func(*BakeConfig)
	}{
		{"nil cache", nil, lighting, func(*BakeConfig) {}},
		{"nil lighting", cache, nil, func(*BakeConfig) {}},
		{"zero width", cache, lighting, func(c *BakeConfig) { c.Width = 0 }},
		{"negative height", cache, lighting, func(c *BakeConfig) { c.Height = -1 }},
		{"zero tile size", cache, lighting, func(c *BakeConfig) { c.TileSize = 0 }},
		{"zero repeat", cache, lighting, func(c *BakeConfig) { c.Repeat = 0 }},
		{"NaN repeat", cache, lighting, func(c *BakeConfig) { c.Repeat = math.NaN() }},
		{"unknown mode", cache, lighting, func(c *BakeConfig) { c.Mode = Mode(9) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultBakeConfig()
			tt.mutate(&config)
			if _, err := NewBaker(tt.cache, tt.lighting, config); !errors.Is(err, ErrInvalidBakeConfig) {
				t.Errorf("Expected ErrInvalidBakeConfig, got %v", err)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
		wantErr  bool
	}{
		{"rgb", ModeRGB, false},
		{"RGB", ModeRGB, false},
		{"Scalar", ModeScalar, false},
		{"float", ModeScalar, false},
		{"SPECTRAL", ModeSpectral, false},
		{"spectrum", ModeSpectral, false},
		{"hdr", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.expected {
				t.Errorf("ParseMode(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
			if !tt.wantErr {
				if round, _ := ParseMode(got.String()); round != got {
					t.Errorf("Mode %v does not parse back from its name", got)
				}
			}
		})
	}
}

func TestBakeStatsPixelsPerSecond(t *testing.T) {
	if got := (BakeStats{TotalPixels: 100}).PixelsPerSecond(); got != 0 {
		t.Errorf("Expected 0 for zero duration, got %v", got)
	}
}
