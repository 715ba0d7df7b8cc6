package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/df07/go-texture-source/pkg/core"
	"github.com/df07/go-texture-source/pkg/loaders"
	"github.com/df07/go-texture-source/pkg/material"
	"github.com/df07/go-texture-source/pkg/spectrum"
	"github.com/df07/go-texture-source/pkg/texture"
)

// checkerboardCheckSize is the edge of one generated checkerboard square, in texels
const checkerboardCheckSize = 16

// NewPBRTScene creates a scene from the textures and materials of a PBRT file.
// Image paths are resolved relative to the file.
func NewPBRTScene(filename string, lighting *spectrum.LightingConditions) (*Import, error) {
	pbrtScene, err := loaders.LoadPBRT(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load PBRT file: %w", err)
	}
	return convertPBRTScene(pbrtScene, filename, filepath.Dir(filename), lighting)
}

func convertPBRTScene(pbrtScene *loaders.PBRTScene, name, baseDir string, lighting *spectrum.LightingConditions) (*Import, error) {
	imp, err := newImport(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)), NewScene(lighting))
	if err != nil {
		return nil, err
	}

	if film := pbrtScene.Film; film != nil {
		imp.Width, _ = film.GetIntParam("xresolution")
		imp.Height, _ = film.GetIntParam("yresolution")
	}

	for i := range pbrtScene.Textures {
		if err := convertTexture(&pbrtScene.Textures[i], imp.Assembly, baseDir); err != nil {
			return nil, fmt.Errorf("failed to convert texture (line %d): %w", pbrtScene.Textures[i].Line, err)
		}
	}

	unnamed := 0
	for i := range pbrtScene.Materials {
		stmt := &pbrtScene.Materials[i]
		name := stmt.Name
		if name == "" {
			name = fmt.Sprintf("material-%d", unnamed)
			unnamed++
		}
		mat, err := convertMaterial(stmt, name, imp.Scene, imp.Assembly)
		if err != nil {
			return nil, fmt.Errorf("failed to convert material %q (line %d): %w", name, stmt.Line, err)
		}
		if err := imp.Assembly.AddMaterial(mat); err != nil {
			return nil, err
		}
	}

	return imp, nil
}

// convertTexture adds the texture of a Texture statement and an instance of
// the same name. Unsupported classes are skipped with a warning.
func convertTexture(stmt *loaders.PBRTStatement, assembly *Assembly, baseDir string) error {
	var (
		tex       texture.Texture
		filtering = texture.FilterBilinear
		err       error
	)

	switch stmt.Subtype {
	case "imagemap":
		tex, err = loadImageMap(stmt, baseDir)
	case "checkerboard":
		tex, err = newCheckerboard(stmt)
		filtering = texture.FilterNearest
	case "constant":
		tex, err = newConstantTexture(stmt)
		filtering = texture.FilterNearest
	default:
		core.Logger().Warn("unsupported pbrt texture class, skipping", "texture", stmt.Name, "class", stmt.Subtype)
		return nil
	}
	if err != nil {
		return fmt.Errorf("texture %q: %w", stmt.Name, err)
	}

	index, err := assembly.AddTexture(stmt.Name, tex)
	if err != nil {
		return err
	}

	addressing := texture.AddressWrap
	if wrap, ok := stmt.GetStringParam("wrap"); ok {
		if wrap == "black" {
			core.Logger().Warn("pbrt wrap mode black is not supported, clamping instead", "texture", stmt.Name)
			wrap = "clamp"
		}
		if addressing, err = texture.ParseAddressingMode(wrap); err != nil {
			return fmt.Errorf("texture %q: %w", stmt.Name, err)
		}
	}
	if filter, ok := stmt.GetStringParam("filter"); ok {
		switch filter {
		case "trilinear", "ewa", "EWA":
			core.Logger().Warn("pbrt filter has no mip levels here, using bilinear", "texture", stmt.Name, "filter", filter)
			filtering = texture.FilterBilinear
		default:
			if filtering, err = texture.ParseFilteringMode(filter); err != nil {
				return fmt.Errorf("texture %q: %w", stmt.Name, err)
			}
		}
	}

	multiplier := 1.0
	if scale, ok := stmt.GetFloatParam("scale"); ok {
		multiplier = scale
	}
	if invert, _ := stmt.GetBoolParam("invert"); invert {
		core.Logger().Warn("pbrt texture inversion is not supported, ignoring", "texture", stmt.Name)
	}

	return assembly.AddTextureInstance(TextureInstance{
		Name:         stmt.Name,
		TextureIndex: index,
		Addressing:   addressing,
		Filtering:    filtering,
		Multiplier:   float32(multiplier),
	})
}

// loadImageMap loads the file of an imagemap texture. 8-bit images default
// to sRGB encoding as in PBRT.
func loadImageMap(stmt *loaders.PBRTStatement, baseDir string) (texture.Texture, error) {
	filename, ok := stmt.GetStringParam("filename")
	if !ok || filename == "" {
		return nil, fmt.Errorf("imagemap requires a filename")
	}
	if !filepath.IsAbs(filename) {
		filename = filepath.Join(baseDir, filename)
	}

	colorSpace := texture.ColorSpaceSRGB
	if encoding, ok := stmt.GetStringParam("encoding"); ok {
		cs, err := texture.ParseColorSpace(encoding)
		if err != nil {
			core.Logger().Warn("unsupported pbrt texture encoding, assuming sRGB", "texture", stmt.Name, "encoding", encoding)
		} else {
			colorSpace = cs
		}
	}
	tex, err := loaders.LoadImage(filename, colorSpace)
	if err != nil {
		return nil, err
	}
	return tex, nil
}

// textureValue reads a texture color parameter, accepting both rgb and float forms
func textureValue(stmt *loaders.PBRTStatement, name string, fallback float32) core.Color4 {
	if rgb, ok := stmt.GetRGBParam(name); ok {
		return core.NewColor4(rgb.R, rgb.G, rgb.B, 1)
	}
	if v, ok := stmt.GetFloatParam(name); ok {
		return core.NewColor4(float32(v), float32(v), float32(v), 1)
	}
	return core.NewColor4(fallback, fallback, fallback, 1)
}

// newCheckerboard rasterizes a checkerboard with uscale × vscale squares over the unit square
func newCheckerboard(stmt *loaders.PBRTStatement) (texture.Texture, error) {
	checksU, checksV := 2, 2
	if u, ok := stmt.GetFloatParam("uscale"); ok {
		checksU = max(1, int(u+0.5))
	}
	if v, ok := stmt.GetFloatParam("vscale"); ok {
		checksV = max(1, int(v+0.5))
	}
	tex, err := texture.NewCheckerboardTexture(
		checksU*checkerboardCheckSize, checksV*checkerboardCheckSize, checkerboardCheckSize,
		textureValue(stmt, "tex1", 1), textureValue(stmt, "tex2", 0))
	if err != nil {
		return nil, err
	}
	return tex, nil
}

// newConstantTexture creates a single texel texture holding the value parameter
func newConstantTexture(stmt *loaders.PBRTStatement) (texture.Texture, error) {
	tex, err := texture.NewLinearTexture(1, 1, []core.Color4{textureValue(stmt, "value", 1)})
	if err != nil {
		return nil, err
	}
	return tex, nil
}

// convertMaterial turns material parameters into inputs: texture parameters
// bind the named texture instance, rgb and float parameters become constants
func convertMaterial(stmt *loaders.PBRTStatement, name string, scene *Scene, assembly *Assembly) (*Material, error) {
	mat := NewMaterial(name, stmt.Subtype)

	for paramName, param := range stmt.Parameters {
		var (
			src material.Source
			err error
		)
		switch param.Type {
		case "texture":
			textureName, _ := stmt.GetTextureParam(paramName)
			src, err = scene.BindTextureInstance(assembly, textureName)
		case "rgb":
			rgb, ok := stmt.GetRGBParam(paramName)
			if !ok {
				return nil, fmt.Errorf("parameter %q: invalid rgb value %v", paramName, param.Values)
			}
			src, err = material.NewColorSource(rgb, 1, scene.Lighting())
		case "float":
			v, ok := stmt.GetFloatParam(paramName)
			if !ok {
				return nil, fmt.Errorf("parameter %q: invalid float value %v", paramName, param.Values)
			}
			src = material.NewScalarSource(v)
		case "string", "bool", "integer":
			continue
		default:
			core.Logger().Warn("unsupported pbrt material parameter type, skipping",
				"material", name, "parameter", paramName, "type", param.Type)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", paramName, err)
		}
		mat.SetInput(paramName, src)
	}

	return mat, nil
}
