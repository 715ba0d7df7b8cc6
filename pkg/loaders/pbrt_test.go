package loaders

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-texture-source/pkg/core"
)

func TestTokenizePBRT(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple statement",
			input:    `Film "rgb"`,
			expected: []string{`Film`, `"rgb"`},
		},
		{
			name:     "statement with array",
			input:    `Material "diffuse" "rgb reflectance" [0.7 0.3 0.1]`,
			expected: []string{`Material`, `"diffuse"`, `"rgb reflectance"`, `[0.7 0.3 0.1]`},
		},
		{
			name:     "texture declaration",
			input:    `Texture "grid" "spectrum" "imagemap" "string filename" "grid.png"`,
			expected: []string{`Texture`, `"grid"`, `"spectrum"`, `"imagemap"`, `"string filename"`, `"grid.png"`},
		},
		{
			name:     "quoted value with spaces",
			input:    `Texture "a" "float" "imagemap" "string filename" "my maps/a.png"`,
			expected: []string{`Texture`, `"a"`, `"float"`, `"imagemap"`, `"string filename"`, `"my maps/a.png"`},
		},
		{
			name:     "tabs separate tokens",
			input:    "Scale\t2 2 2",
			expected: []string{`Scale`, `2`, `2`, `2`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tokenizePBRT(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("tokenizePBRT() = %q, want %q", result, tt.expected)
			}
			for i, token := range result {
				if token != tt.expected[i] {
					t.Errorf("tokenizePBRT()[%d] = %q, want %q", i, token, tt.expected[i])
				}
			}
		})
	}
}

func TestParseStatement(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedType  string
		expectedName  string
		expectedValue string
		expectedSub   string
		expectedParam string
		expectedVals  []string
	}{
		{
			name:          "imagemap texture",
			input:         `Texture "grid" "spectrum" "imagemap" "string filename" "grid.png"`,
			expectedType:  "Texture",
			expectedName:  "grid",
			expectedValue: "spectrum",
			expectedSub:   "imagemap",
			expectedParam: "filename",
			expectedVals:  []string{"grid.png"},
		},
		{
			name:          "float checkerboard",
			input:         `Texture "checks" "float" "checkerboard" "float uscale" 8`,
			expectedType:  "Texture",
			expectedName:  "checks",
			expectedValue: "float",
			expectedSub:   "checkerboard",
			expectedParam: "uscale",
			expectedVals:  []string{"8"},
		},
		{
			name:          "material with texture binding",
			input:         `Material "diffuse" "texture reflectance" "grid"`,
			expectedType:  "Material",
			expectedSub:   "diffuse",
			expectedParam: "reflectance",
			expectedVals:  []string{"grid"},
		},
		{
			name:          "named material",
			input:         `MakeNamedMaterial "floor" "string type" "conductor" "rgb eta" [0.2 0.9 1.0]`,
			expectedType:  "MakeNamedMaterial",
			expectedName:  "floor",
			expectedParam: "eta",
			expectedVals:  []string{"0.2", "0.9", "1.0"},
		},
		{
			name:          "quoted array values",
			input:         `Film "rgb" "string filename" [ "out.exr" ]`,
			expectedType:  "Film",
			expectedSub:   "rgb",
			expectedParam: "filename",
			expectedVals:  []string{"out.exr"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := parseStatement(tt.input)
			if err != nil {
				t.Fatalf("parseStatement() error = %v", err)
			}

			if stmt.Type != tt.expectedType {
				t.Errorf("Type = %v, want %v", stmt.Type, tt.expectedType)
			}
			if stmt.Name != tt.expectedName {
				t.Errorf("Name = %v, want %v", stmt.Name, tt.expectedName)
			}
			if stmt.ValueType != tt.expectedValue {
				t.Errorf("ValueType = %v, want %v", stmt.ValueType, tt.expectedValue)
			}
			if stmt.Subtype != tt.expectedSub {
				t.Errorf("Subtype = %v, want %v", stmt.Subtype, tt.expectedSub)
			}

			param, exists := stmt.Parameters[tt.expectedParam]
			if !exists {
				t.Fatalf("missing parameter %v", tt.expectedParam)
			}
			if strings.Join(param.Values, ",") != strings.Join(tt.expectedVals, ",") {
				t.Errorf("Parameters[%v].Values = %q, want %q", tt.expectedParam, param.Values, tt.expectedVals)
			}
		})
	}
}

func TestParseStatementTextureArity(t *testing.T) {
	if _, err := parseStatement(`Texture "grid" "imagemap" "string filename" "grid.png"`); err == nil {
		t.Error("expected an error for a Texture statement without a value type")
	}
}

func TestGetParameterMethods(t *testing.T) {
	stmt := &PBRTStatement{
		Parameters: map[string]PBRTParam{
			"scale":       {Type: "float", Values: []string{"2.5"}},
			"xresolution": {Type: "integer", Values: []string{"320"}},
			"tex1":        {Type: "rgb", Values: []string{"0.8", "0.6", "0.4"}},
			"filename":    {Type: "string", Values: []string{"test.png"}},
			"invert":      {Type: "bool", Values: []string{"true"}},
			"reflectance": {Type: "texture", Values: []string{"grid"}},
			"broken":      {Type: "rgb", Values: []string{"x", "1", "1"}},
		},
	}

	if v, ok := stmt.GetFloatParam("scale"); !ok || v != 2.5 {
		t.Errorf("GetFloatParam() = %v, %v", v, ok)
	}
	if v, ok := stmt.GetIntParam("xresolution"); !ok || v != 320 {
		t.Errorf("GetIntParam() = %v, %v", v, ok)
	}
	if v, ok := stmt.GetRGBParam("tex1"); !ok || !v.Equals(core.NewColor3(0.8, 0.6, 0.4)) {
		t.Errorf("GetRGBParam() = %v, %v", v, ok)
	}
	if _, ok := stmt.GetRGBParam("broken"); ok {
		t.Error("GetRGBParam() should reject non-numeric values")
	}
	if _, ok := stmt.GetRGBParam("scale"); ok {
		t.Error("GetRGBParam() should reject non-rgb parameters")
	}
	if v, ok := stmt.GetStringParam("filename"); !ok || v != "test.png" {
		t.Errorf("GetStringParam() = %v, %v", v, ok)
	}
	if v, ok := stmt.GetBoolParam("invert"); !ok || !v {
		t.Errorf("GetBoolParam() = %v, %v", v, ok)
	}
	if v, ok := stmt.GetTextureParam("reflectance"); !ok || v != "grid" {
		t.Errorf("GetTextureParam() = %v, %v", v, ok)
	}
	if _, ok := stmt.GetTextureParam("filename"); ok {
		t.Error("GetTextureParam() should only match texture-typed parameters")
	}
	if _, ok := stmt.GetFloatParam("missing"); ok {
		t.Error("GetFloatParam() should not find a missing parameter")
	}
}

func TestParsePBRTTexturesAndMaterials(t *testing.T) {
	content := `# Texture test scene
LookAt 0 0 1  0 0 0  0 1 0
Camera "perspective" "float fov" 45
Film "rgb" "string filename" "test.png" "integer xresolution" 400 "integer yresolution" 300

WorldBegin

Texture "grid" "spectrum" "imagemap" "string filename" "grid.png" "string wrap" "clamp"
Texture "checks" "float" "checkerboard" "float uscale" 8 "float vscale" 8

AttributeBegin
    Material "diffuse" "texture reflectance" "grid"
    Shape "sphere" "float radius" 0.5
AttributeEnd

MakeNamedMaterial "floor" "string type" "conductor" "texture roughness" "checks"
NamedMaterial "floor"
Shape "bilinearPatch" "point3 P00" [0 0 0]
LightSource "infinite" "rgb L" [1 1 1]

WorldEnd
`

	scene, err := ParsePBRT(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ParsePBRT() error = %v", err)
	}

	if scene.Film == nil {
		t.Fatal("expected a Film statement")
	}
	if x, _ := scene.Film.GetIntParam("xresolution"); x != 400 {
		t.Errorf("Film xresolution = %d, want 400", x)
	}

	if len(scene.Textures) != 2 {
		t.Fatalf("textures count = %d, want 2", len(scene.Textures))
	}
	if scene.Textures[0].Name != "grid" || scene.Textures[1].Subtype != "checkerboard" {
		t.Errorf("unexpected textures %+v", scene.Textures)
	}
	if scene.Textures[0].Line != 8 {
		t.Errorf("grid texture line = %d, want 8", scene.Textures[0].Line)
	}

	if len(scene.Materials) != 2 {
		t.Fatalf("materials count = %d, want 2", len(scene.Materials))
	}
	if scene.Materials[1].Name != "floor" || scene.Materials[1].Subtype != "conductor" {
		t.Errorf("named material = %+v", scene.Materials[1])
	}

	// LookAt, Camera, NamedMaterial, two Shapes, LightSource
	if scene.Skipped != 6 {
		t.Errorf("skipped = %d, want 6", scene.Skipped)
	}
}

func TestParsePBRTErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown texture value type", `Texture "a" "color" "imagemap"`},
		{"material without type", `Material "float roughness" 0.1`},
		{"named material without name", `MakeNamedMaterial "string type" "diffuse"`},
		{"unbalanced AttributeEnd", "AttributeEnd"},
		{"unclosed AttributeBegin", "AttributeBegin\nMaterial \"diffuse\""},
		{"continuation without statement", `"float fov" 45`},
		{"film inside world", "WorldBegin\nFilm \"rgb\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePBRT(strings.NewReader(tt.content)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadPBRT(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.pbrt")
	content := "WorldBegin\nTexture \"uv\" \"spectrum\" \"imagemap\" \"string filename\" \"uv.png\"\nWorldEnd\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	scene, err := LoadPBRT(path)
	if err != nil {
		t.Fatalf("LoadPBRT() error = %v", err)
	}
	if len(scene.Textures) != 1 {
		t.Errorf("textures count = %d, want 1", len(scene.Textures))
	}
}

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"scenes/cornell.pbrt", false},
		{"/tmp/x/scene.PBRT", false},
		{"", true},
		{"scene.png", true},
		{"bad\x00.pbrt", true},
		{strings.Repeat("a", 600) + ".pbrt", true},
	}

	for _, tt := range tests {
		err := validateFilePath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateFilePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
	}
}
