package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-texture-source/pkg/core"
	"github.com/df07/go-texture-source/pkg/material"
	"github.com/df07/go-texture-source/pkg/renderer"
	"github.com/df07/go-texture-source/pkg/scene"
	"github.com/df07/go-texture-source/pkg/texture"
)

// options holds the parsed command line
type options struct {
	image      string
	pbrt       string
	gltf       string
	procedural string
	colorSpace string

	texture  string
	material string
	input    string

	wrap       string
	filter     string
	multiplier float64

	mode       string
	width      int
	height     int
	repeat     float64
	out        string
	workers    int
	tileSize   int
	cacheTiles int
	verbose    bool

	// set records which flags were given explicitly
	set map[string]bool
}

func parseFlags(args []string, output io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}
	fs := flag.NewFlagSet("texture-source", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&opts.image, "image", "", "Image file to sample (png, jpeg, gif, bmp, tiff, webp)")
	fs.StringVar(&opts.pbrt, "pbrt", "", "PBRT file whose textures and materials are imported")
	fs.StringVar(&opts.gltf, "gltf", "", "glTF or GLB file whose textures and materials are imported")
	fs.StringVar(&opts.procedural, "procedural", "", "Procedural texture: "+strings.Join(scene.ProceduralNames(), ", "))
	fs.StringVar(&opts.colorSpace, "colorspace", "srgb", "Color space of -image data: 'srgb' or 'linear_rgb'")

	fs.StringVar(&opts.texture, "texture", "", "Texture instance to bake (default: first instance)")
	fs.StringVar(&opts.material, "material", "", "Material whose input is baked instead of a texture instance")
	fs.StringVar(&opts.input, "input", "", "Material input to bake (default: first input)")

	fs.StringVar(&opts.wrap, "wrap", "", "Override addressing mode: 'wrap' or 'clamp'")
	fs.StringVar(&opts.filter, "filter", "", "Override filtering mode: 'nearest' or 'bilinear'")
	fs.Float64Var(&opts.multiplier, "multiplier", 1, "Override texture instance multiplier")

	defaults := renderer.DefaultBakeConfig()
	fs.StringVar(&opts.mode, "mode", defaults.Mode.String(), "Evaluation to bake: 'scalar', 'rgb' or 'spectral'")
	fs.IntVar(&opts.width, "width", 0, "Output width (default: imported size or 256)")
	fs.IntVar(&opts.height, "height", 0, "Output height (default: imported size or 256)")
	fs.Float64Var(&opts.repeat, "repeat", defaults.Repeat, "Number of times the UV square spans the output")
	fs.StringVar(&opts.out, "out", "", "Output PNG (default: output/<name>/bake_<timestamp>.png)")
	fs.IntVar(&opts.workers, "workers", 0, "Number of parallel workers (0 = auto-detect CPU count)")
	fs.IntVar(&opts.tileSize, "tile", defaults.TileSize, "Bake tile size in pixels")
	fs.IntVar(&opts.cacheTiles, "cache-tiles", texture.DefaultTileCacheConfig().TilesPerShard, "Texture tiles kept per cache shard")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	inputs := 0
	for _, name := range []string{"image", "pbrt", "gltf", "procedural"} {
		if !opts.set[name] {
			continue
		}
		if strings.TrimSpace(fs.Lookup(name).Value.String()) == "" {
			return nil, fmt.Errorf("-%s requires a non-empty value", name)
		}
		inputs++
	}
	if inputs != 1 {
		return nil, errors.New("exactly one of -image, -pbrt, -gltf or -procedural is required")
	}
	if opts.material != "" && opts.texture != "" {
		return nil, errors.New("-texture and -material are mutually exclusive")
	}
	return opts, nil
}

// loadImport builds the scene selected by the input flags
func loadImport(opts *options) (*scene.Import, error) {
	switch {
	case opts.image != "":
		cs, err := texture.ParseColorSpace(opts.colorSpace)
		if err != nil {
			return nil, err
		}
		return scene.NewImageScene(opts.image, cs, nil)
	case opts.pbrt != "":
		return scene.NewPBRTScene(opts.pbrt, nil)
	case opts.gltf != "":
		return scene.NewGLTFScene(opts.gltf, nil)
	default:
		size := max(opts.width, opts.height)
		if size <= 0 {
			size = renderer.DefaultBakeConfig().Width
		}
		return scene.NewProceduralScene(opts.procedural, size, nil)
	}
}

// selectSource returns the material input or texture instance to bake
func selectSource(imp *scene.Import, opts *options) (material.Source, error) {
	if opts.material != "" {
		return selectMaterialInput(imp, opts)
	}

	name := opts.texture
	if name == "" {
		names := imp.Assembly.TextureInstanceNames()
		if len(names) == 0 {
			return nil, fmt.Errorf("%s has no texture instances", imp.Assembly.Name())
		}
		name = names[0]
	}
	src, err := imp.Scene.BindTextureInstance(imp.Assembly, name)
	if err != nil {
		return nil, err
	}
	return overrideBinding(imp, src, opts)
}

func selectMaterialInput(imp *scene.Import, opts *options) (material.Source, error) {
	mat, ok := imp.Assembly.Material(opts.material)
	if !ok {
		return nil, fmt.Errorf("unknown material %q (available: %v)", opts.material, imp.Assembly.MaterialNames())
	}
	input := opts.input
	if input == "" {
		names := mat.InputNames()
		if len(names) == 0 {
			return nil, fmt.Errorf("material %q has no inputs", opts.material)
		}
		input = names[0]
	}
	src, ok := mat.Input(input)
	if !ok {
		return nil, fmt.Errorf("material %q has no input %q (available: %v)", opts.material, input, mat.InputNames())
	}
	if ts, ok := src.(*material.TextureSource); ok {
		return overrideBinding(imp, ts, opts)
	}
	return src, nil
}

// overrideBinding rebuilds a texture source when sampling flags were given
func overrideBinding(imp *scene.Import, src *material.TextureSource, opts *options) (material.Source, error) {
	if !opts.set["wrap"] && !opts.set["filter"] && !opts.set["multiplier"] {
		return src, nil
	}

	binding := src.Binding()
	var err error
	if opts.set["wrap"] {
		if binding.AddressingMode, err = texture.ParseAddressingMode(opts.wrap); err != nil {
			return nil, err
		}
	}
	if opts.set["filter"] {
		if binding.FilteringMode, err = texture.ParseFilteringMode(opts.filter); err != nil {
			return nil, err
		}
	}
	if opts.set["multiplier"] {
		binding.Multiplier = float32(opts.multiplier)
	}
	return material.NewTextureSource(imp.Assembly.UID(), imp.Scene, binding, src.Properties(), imp.Scene.Lighting())
}

// bakeConfig resolves the bake settings, falling back to the imported size
func bakeConfig(imp *scene.Import, opts *options) (renderer.BakeConfig, error) {
	config := renderer.DefaultBakeConfig()
	mode, err := renderer.ParseMode(opts.mode)
	if err != nil {
		return config, err
	}
	config.Mode = mode
	config.Repeat = opts.repeat
	config.TileSize = opts.tileSize
	config.NumWorkers = opts.workers

	if imp.Width > 0 && imp.Height > 0 {
		config.Width, config.Height = imp.Width, imp.Height
	}
	if opts.width > 0 {
		config.Width = opts.width
	}
	if opts.height > 0 {
		config.Height = opts.height
	}
	return config, nil
}

func outputPath(imp *scene.Import, opts *options) string {
	if opts.out != "" {
		return opts.out
	}
	timestamp := time.Now().Format("20060102_150405")
	return filepath.Join("output", imp.Assembly.Name(), fmt.Sprintf("bake_%s.png", timestamp))
}

// run loads the input, bakes the selected source and writes the PNG.
// It returns the path written.
func run(ctx context.Context, opts *options) (string, error) {
	imp, err := loadImport(opts)
	if err != nil {
		return "", err
	}
	src, err := selectSource(imp, opts)
	if err != nil {
		return "", err
	}
	config, err := bakeConfig(imp, opts)
	if err != nil {
		return "", err
	}

	cache := texture.NewTileCache(imp.Scene, texture.TileCacheConfig{TilesPerShard: opts.cacheTiles})
	baker, err := renderer.NewBaker(cache, imp.Scene.Lighting(), config)
	if err != nil {
		return "", err
	}
	img, stats, err := baker.Bake(ctx, src)
	if err != nil {
		return "", err
	}

	filename := outputPath(imp, opts)
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating output file: %w", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("saving PNG: %w", err)
	}

	core.Logger().Info("bake saved", "file", filename,
		"size", fmt.Sprintf("%dx%d", config.Width, config.Height),
		"duration", stats.Duration, "pixels_per_second", int(stats.PixelsPerSecond()),
		"cache_hit_rate", stats.Cache.HitRate, "tiles_loaded", stats.Cache.Loads)
	return filename, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	filename, err := run(context.Background(), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Bake saved as %s\n", filename)
}
