package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/df07/go-texture-source/pkg/core"
	"github.com/df07/go-texture-source/pkg/loaders"
	"github.com/df07/go-texture-source/pkg/material"
	"github.com/df07/go-texture-source/pkg/spectrum"
	"github.com/df07/go-texture-source/pkg/texture"
)

// NewGLTFScene creates a scene from the images, textures and PBR materials of
// a glTF file. Base color and emissive images are decoded as sRGB, every
// other image as linear data.
func NewGLTFScene(filename string, lighting *spectrum.LightingConditions) (*Import, error) {
	doc, err := loaders.LoadGLTF(filename)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return convertGLTFDocument(doc, name, lighting)
}

type gltfImageKey struct {
	image      int
	colorSpace texture.ColorSpace
}

type gltfTextureKey struct {
	texture    int
	colorSpace texture.ColorSpace
	multiplier float32
}

// gltfConverter adds glTF images and textures to an assembly on first use
type gltfConverter struct {
	doc       *loaders.GLTFDocument
	imp       *Import
	images    map[gltfImageKey]int
	instances map[gltfTextureKey]string
}

func convertGLTFDocument(doc *loaders.GLTFDocument, name string, lighting *spectrum.LightingConditions) (*Import, error) {
	imp, err := newImport(name, NewScene(lighting))
	if err != nil {
		return nil, err
	}
	c := &gltfConverter{
		doc:       doc,
		imp:       imp,
		images:    make(map[gltfImageKey]int),
		instances: make(map[gltfTextureKey]string),
	}

	for i, gm := range doc.Doc.Materials {
		name := gm.Name
		if name == "" {
			name = fmt.Sprintf("material-%d", i)
		}
		mat, err := c.convertMaterial(name, gm)
		if err != nil {
			return nil, fmt.Errorf("gltf material %q: %w", name, err)
		}
		if err := imp.Assembly.AddMaterial(mat); err != nil {
			return nil, err
		}
	}
	return imp, nil
}

func (c *gltfConverter) convertMaterial(name string, gm *gltf.Material) (*Material, error) {
	mat := NewMaterial(name, "pbr")
	lighting := c.imp.Scene.Lighting()

	pbr := gm.PBRMetallicRoughness
	if pbr == nil {
		pbr = &gltf.PBRMetallicRoughness{}
	}

	baseColor := pbr.BaseColorFactorOrDefault()
	if pbr.BaseColorTexture != nil {
		src, err := c.bind(pbr.BaseColorTexture.Index, texture.ColorSpaceSRGB, uniformFactor(name, "baseColor", baseColor[:3]))
		if err != nil {
			return nil, err
		}
		mat.SetInput("baseColor", src)
	} else {
		src, err := material.NewColorSource(
			core.NewColor3(float32(baseColor[0]), float32(baseColor[1]), float32(baseColor[2])),
			float32(baseColor[3]), lighting)
		if err != nil {
			return nil, err
		}
		mat.SetInput("baseColor", src)
	}

	mat.SetInput("metallic", material.NewScalarSource(pbr.MetallicFactorOrDefault()))
	mat.SetInput("roughness", material.NewScalarSource(pbr.RoughnessFactorOrDefault()))
	if pbr.MetallicRoughnessTexture != nil {
		src, err := c.bind(pbr.MetallicRoughnessTexture.Index, texture.ColorSpaceLinearRGB, 1)
		if err != nil {
			return nil, err
		}
		mat.SetInput("metallicRoughness", src)
	}

	if nt := gm.NormalTexture; nt != nil && nt.Index != nil {
		src, err := c.bind(*nt.Index, texture.ColorSpaceLinearRGB, 1)
		if err != nil {
			return nil, err
		}
		mat.SetInput("normal", src)
	}

	if ot := gm.OcclusionTexture; ot != nil && ot.Index != nil {
		src, err := c.bind(*ot.Index, texture.ColorSpaceLinearRGB, float32(ot.StrengthOrDefault()))
		if err != nil {
			return nil, err
		}
		mat.SetInput("occlusion", src)
	}

	emissive := gm.EmissiveFactor
	if gm.EmissiveTexture != nil {
		src, err := c.bind(gm.EmissiveTexture.Index, texture.ColorSpaceSRGB, uniformFactor(name, "emissive", emissive[:]))
		if err != nil {
			return nil, err
		}
		mat.SetInput("emissive", src)
	} else if emissive != [3]float64{} {
		src, err := material.NewColorSource(
			core.NewColor3(float32(emissive[0]), float32(emissive[1]), float32(emissive[2])), 1, lighting)
		if err != nil {
			return nil, err
		}
		mat.SetInput("emissive", src)
	}

	return mat, nil
}

// uniformFactor turns a color factor into a texture multiplier. Only gray
// factors can be expressed as one; other factors are dropped with a warning.
func uniformFactor(matName, slot string, factor []float64) float32 {
	if factor[0] == factor[1] && factor[1] == factor[2] {
		return float32(factor[0])
	}
	core.Logger().Warn("gltf color factor on a textured slot is not uniform, ignoring it",
		"material", matName, "slot", slot, "factor", factor)
	return 1
}

// bind returns a texture source for glTF texture index decoded in colorSpace,
// adding the image and a texture instance the first time they are needed
func (c *gltfConverter) bind(index int, colorSpace texture.ColorSpace, multiplier float32) (*material.TextureSource, error) {
	key := gltfTextureKey{texture: index, colorSpace: colorSpace, multiplier: multiplier}
	if name, ok := c.instances[key]; ok {
		return c.imp.Scene.BindTextureInstance(c.imp.Assembly, name)
	}

	if index < 0 || index >= len(c.doc.Doc.Textures) {
		return nil, fmt.Errorf("texture %d out of range (%d textures)", index, len(c.doc.Doc.Textures))
	}
	gt := c.doc.Doc.Textures[index]
	if gt.Source == nil {
		return nil, fmt.Errorf("texture %d has no image source", index)
	}

	textureIndex, err := c.image(*gt.Source, colorSpace)
	if err != nil {
		return nil, err
	}
	addressing, filtering, err := c.doc.TextureSampling(index)
	if err != nil {
		return nil, err
	}

	name := gt.Name
	if name == "" {
		name = fmt.Sprintf("texture-%d", index)
	}
	if _, taken := c.imp.Assembly.TextureInstance(name); taken {
		name = fmt.Sprintf("%s-%s-%g", name, colorSpace, multiplier)
	}
	if err := c.imp.Assembly.AddTextureInstance(TextureInstance{
		Name:         name,
		TextureIndex: textureIndex,
		Addressing:   addressing,
		Filtering:    filtering,
		Multiplier:   multiplier,
	}); err != nil {
		return nil, err
	}
	c.instances[key] = name
	return c.imp.Scene.BindTextureInstance(c.imp.Assembly, name)
}

// image returns the assembly texture index of a glTF image in colorSpace
func (c *gltfConverter) image(index int, colorSpace texture.ColorSpace) (int, error) {
	key := gltfImageKey{image: index, colorSpace: colorSpace}
	if textureIndex, ok := c.images[key]; ok {
		return textureIndex, nil
	}

	tex, err := c.doc.DecodeImage(index, colorSpace)
	if err != nil {
		return 0, err
	}

	name := fmt.Sprintf("image-%d-%s", index, colorSpace)
	if img := c.doc.Doc.Images[index]; img.Name != "" {
		name = fmt.Sprintf("%s-%s", img.Name, colorSpace)
	}
	textureIndex, err := c.imp.Assembly.AddTexture(name, tex)
	if err != nil {
		return 0, err
	}
	c.images[key] = textureIndex
	return textureIndex, nil
}
