package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/df07/go-texture-source/pkg/core"
)

// PBRTStatement represents a parsed PBRT statement
type PBRTStatement struct {
	Type       string               // Statement type (Texture, Material, MakeNamedMaterial, ...)
	Name       string               // Declared name (Texture, MakeNamedMaterial, NamedMaterial)
	ValueType  string               // Texture value type: "spectrum" or "float"
	Subtype    string               // Class or subtype (imagemap, checkerboard, diffuse, ...)
	Parameters map[string]PBRTParam // Named parameters
	Line       int                  // Line the statement starts on
}

// PBRTParam represents a parameter with type and value(s)
type PBRTParam struct {
	Type   string   // Parameter type (float, rgb, string, texture, ...)
	Values []string // Parameter values as strings, quotes removed
}

// PBRTScene contains the texture-relevant parts of a PBRT scene
type PBRTScene struct {
	Film      *PBRTStatement
	Textures  []PBRTStatement // Texture statements in declaration order
	Materials []PBRTStatement // Material and MakeNamedMaterial statements in declaration order
	Skipped   int             // Statements that carry no texture or material data
}

// PBRTParser encapsulates the state and logic for parsing PBRT files
type PBRTParser struct {
	scene          *PBRTScene
	attributeDepth int
	inWorld        bool
	statementLines []string
	statementLine  int
	lineNumber     int
}

// ParsePBRT parses PBRT content from an io.Reader
func ParsePBRT(reader io.Reader) (*PBRTScene, error) {
	parser := NewPBRTParser()

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		parser.lineNumber++
		if err := parser.processLine(scanner.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", parser.lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	if err := parser.finalize(); err != nil {
		return nil, err
	}
	return parser.scene, nil
}

// LoadPBRT loads and parses a PBRT scene file
func LoadPBRT(filename string) (*PBRTScene, error) {
	if err := validateFilePath(filename); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PBRT file: %w", err)
	}
	defer file.Close()

	scene, err := ParsePBRT(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	core.Logger().Info("loaded pbrt scene", "file", filename,
		"textures", len(scene.Textures), "materials", len(scene.Materials), "skipped", scene.Skipped)
	if scene.Skipped > 0 {
		core.Logger().Warn("pbrt statements without texture data were skipped", "file", filename, "count", scene.Skipped)
	}
	return scene, nil
}

// NewPBRTParser creates a new PBRT parser instance
func NewPBRTParser() *PBRTParser {
	return &PBRTParser{
		scene: &PBRTScene{
			Textures:  make([]PBRTStatement, 0),
			Materials: make([]PBRTStatement, 0),
		},
	}
}

// processAccumulatedStatement processes any accumulated statement lines and clears them
func (p *PBRTParser) processAccumulatedStatement(context string) error {
	if len(p.statementLines) == 0 {
		return nil
	}
	fullStatement := strings.Join(p.statementLines, " ")
	p.statementLines = nil

	stmt, err := parseStatement(fullStatement)
	if err != nil {
		return fmt.Errorf("error parsing statement %s '%s': %w", context, fullStatement, err)
	}
	stmt.Line = p.statementLine
	return p.routeStatement(stmt)
}

// processLine processes a single line of PBRT input
func (p *PBRTParser) processLine(line string) error {
	line = strings.TrimSpace(line)

	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	switch line {
	case "WorldBegin":
		if err := p.processAccumulatedStatement("before WorldBegin"); err != nil {
			return err
		}
		p.inWorld = true
		return nil
	case "WorldEnd":
		if err := p.processAccumulatedStatement("before WorldEnd"); err != nil {
			return err
		}
		p.inWorld = false
		return nil
	case "AttributeBegin":
		if err := p.processAccumulatedStatement("before AttributeBegin"); err != nil {
			return err
		}
		p.attributeDepth++
		return nil
	case "AttributeEnd":
		if err := p.processAccumulatedStatement("before AttributeEnd"); err != nil {
			return err
		}
		if p.attributeDepth == 0 {
			return fmt.Errorf("AttributeEnd without matching AttributeBegin")
		}
		p.attributeDepth--
		return nil
	}

	if isStatementStart(line) {
		if err := p.processAccumulatedStatement(""); err != nil {
			return err
		}
		p.statementLines = []string{line}
		p.statementLine = p.lineNumber
		return nil
	}

	if len(p.statementLines) == 0 {
		return fmt.Errorf("unexpected continuation line: %s", line)
	}
	p.statementLines = append(p.statementLines, line)
	return nil
}

// finalize processes any remaining accumulated statements
func (p *PBRTParser) finalize() error {
	if err := p.processAccumulatedStatement("at end of file"); err != nil {
		return err
	}
	if p.attributeDepth != 0 {
		return fmt.Errorf("%d AttributeBegin block(s) not closed", p.attributeDepth)
	}
	return nil
}

// routeStatement routes a parsed statement to the appropriate section of the scene
func (p *PBRTParser) routeStatement(stmt *PBRTStatement) error {
	switch stmt.Type {
	case "Film":
		if p.inWorld {
			return fmt.Errorf("Film must precede WorldBegin")
		}
		p.scene.Film = stmt
	case "Texture":
		if stmt.Name == "" || stmt.ValueType == "" || stmt.Subtype == "" {
			return fmt.Errorf(`Texture requires "name" "type" "class"`)
		}
		if stmt.ValueType != "spectrum" && stmt.ValueType != "float" {
			return fmt.Errorf("texture %q: unknown value type %q", stmt.Name, stmt.ValueType)
		}
		p.scene.Textures = append(p.scene.Textures, *stmt)
	case "Material":
		if stmt.Subtype == "" {
			return fmt.Errorf("Material requires a type")
		}
		p.scene.Materials = append(p.scene.Materials, *stmt)
	case "MakeNamedMaterial":
		if stmt.Name == "" {
			return fmt.Errorf("MakeNamedMaterial requires a name")
		}
		stmt.Subtype, _ = stmt.GetStringParam("type")
		p.scene.Materials = append(p.scene.Materials, *stmt)
	default:
		p.scene.Skipped++
	}
	return nil
}

// validateFilePath validates a file path for security issues
func validateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	// Check for null bytes (could indicate path manipulation)
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("invalid file path: null bytes not allowed")
	}

	cleanPath := filepath.Clean(filename)
	if !strings.HasSuffix(strings.ToLower(cleanPath), ".pbrt") {
		return fmt.Errorf("invalid file type: only .pbrt files are allowed")
	}
	if len(cleanPath) > 512 {
		return fmt.Errorf("file path too long: maximum 512 characters allowed")
	}
	return nil
}

// tokenizePBRT tokenizes a PBRT line respecting quoted strings and brackets
func tokenizePBRT(line string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	inBrackets := false

	for _, char := range line {
		switch char {
		case '"':
			if !inBrackets {
				current.WriteRune(char)
				if inQuotes {
					tokens = append(tokens, current.String())
					current.Reset()
					inQuotes = false
				} else {
					inQuotes = true
				}
			} else {
				current.WriteRune(char)
			}
		case '[':
			if !inQuotes {
				if current.Len() > 0 {
					tokens = append(tokens, current.String())
					current.Reset()
				}
				current.WriteRune(char)
				inBrackets = true
			} else {
				current.WriteRune(char)
			}
		case ']':
			if !inQuotes && inBrackets {
				current.WriteRune(char)
				tokens = append(tokens, current.String())
				current.Reset()
				inBrackets = false
			} else {
				current.WriteRune(char)
			}
		case ' ', '\t':
			if inQuotes || inBrackets {
				current.WriteRune(char)
			} else if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(char)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func isQuoted(token string) bool {
	return len(token) >= 2 && strings.HasPrefix(token, "\"") && strings.HasSuffix(token, "\"")
}

// isParamDecl reports whether a token is a quoted "type name" parameter declaration
func isParamDecl(token string) bool {
	return isQuoted(token) && len(strings.Fields(strings.Trim(token, "\""))) == 2
}

// parseStatement parses a single PBRT statement line
func parseStatement(line string) (*PBRTStatement, error) {
	parts := tokenizePBRT(line)
	if len(parts) == 0 {
		return nil, fmt.Errorf("invalid statement format")
	}

	stmt := &PBRTStatement{
		Type:       parts[0],
		Parameters: make(map[string]PBRTParam),
	}
	parts = parts[1:]

	// Leading quoted strings that are not parameter declarations
	var args []string
	for len(parts) > 0 && isQuoted(parts[0]) && !isParamDecl(parts[0]) {
		args = append(args, strings.Trim(parts[0], "\""))
		parts = parts[1:]
	}

	switch stmt.Type {
	case "Texture":
		if len(args) != 3 {
			return nil, fmt.Errorf(`Texture expects "name" "type" "class", got %d string(s)`, len(args))
		}
		stmt.Name, stmt.ValueType, stmt.Subtype = args[0], args[1], args[2]
	case "MakeNamedMaterial", "NamedMaterial":
		if len(args) > 0 {
			stmt.Name = args[0]
		}
	default:
		if len(args) > 0 {
			stmt.Subtype = args[0]
		}
	}

	i := 0
	for i < len(parts) {
		if !isParamDecl(parts[i]) {
			i++
			continue
		}

		paramParts := strings.Fields(strings.Trim(parts[i], "\""))
		paramType := paramParts[0]
		paramName := paramParts[1]
		i++

		var values []string
		if i < len(parts) {
			if strings.HasPrefix(parts[i], "[") && strings.HasSuffix(parts[i], "]") {
				values = splitArray(strings.Trim(parts[i], "[] "))
			} else {
				values = []string{strings.Trim(parts[i], "\"")}
			}
			i++
		}

		stmt.Parameters[paramName] = PBRTParam{
			Type:   paramType,
			Values: values,
		}
	}

	return stmt, nil
}

// splitArray splits bracket contents on whitespace, keeping quoted strings whole
func splitArray(s string) []string {
	var values []string
	for _, token := range tokenizePBRT(s) {
		values = append(values, strings.Trim(token, "\""))
	}
	return values
}

// GetFloatParam extracts a float parameter from a PBRT statement
func (stmt *PBRTStatement) GetFloatParam(name string) (float64, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return 0, false
	}
	val, err := strconv.ParseFloat(param.Values[0], 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// GetIntParam extracts an integer parameter from a PBRT statement
func (stmt *PBRTStatement) GetIntParam(name string) (int, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return 0, false
	}
	val, err := strconv.Atoi(param.Values[0])
	if err != nil {
		return 0, false
	}
	return val, true
}

// GetRGBParam extracts an RGB color parameter from a PBRT statement
func (stmt *PBRTStatement) GetRGBParam(name string) (core.Color3, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || param.Type != "rgb" || len(param.Values) < 3 {
		return core.Color3{}, false
	}
	r, err1 := strconv.ParseFloat(param.Values[0], 32)
	g, err2 := strconv.ParseFloat(param.Values[1], 32)
	b, err3 := strconv.ParseFloat(param.Values[2], 32)
	if err1 != nil || err2 != nil || err3 != nil {
		return core.Color3{}, false
	}
	return core.NewColor3(float32(r), float32(g), float32(b)), true
}

// GetStringParam extracts a string parameter from a PBRT statement
func (stmt *PBRTStatement) GetStringParam(name string) (string, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return "", false
	}
	return param.Values[0], true
}

// GetBoolParam extracts a bool parameter; both true and "true" spellings are accepted
func (stmt *PBRTStatement) GetBoolParam(name string) (bool, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return false, false
	}
	val, err := strconv.ParseBool(param.Values[0])
	if err != nil {
		return false, false
	}
	return val, true
}

// GetTextureParam returns the texture name bound to a "texture <name>" parameter
func (stmt *PBRTStatement) GetTextureParam(name string) (string, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || param.Type != "texture" || len(param.Values) == 0 {
		return "", false
	}
	return param.Values[0], true
}

// isStatementStart determines if a line starts a new PBRT statement
func isStatementStart(line string) bool {
	statementTypes := []string{
		"Camera", "Film", "Sampler", "Integrator", "PixelFilter", "ColorSpace", "Option",
		"LookAt", "Translate", "Rotate", "Scale", "Transform", "ConcatTransform",
		"CoordinateSystem", "CoordSysTransform", "ReverseOrientation",
		"Texture", "Material", "MakeNamedMaterial", "NamedMaterial",
		"Shape", "LightSource", "AreaLightSource", "MakeNamedMedium", "MediumInterface",
		"ObjectBegin", "ObjectEnd", "ObjectInstance", "Include", "Import", "Attribute",
	}

	for _, stmt := range statementTypes {
		if line == stmt || strings.HasPrefix(line, stmt+" ") || strings.HasPrefix(line, stmt+"\t") {
			return true
		}
	}
	return false
}
