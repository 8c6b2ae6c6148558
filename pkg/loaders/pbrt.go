package loaders

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/df07/go-tiled-raytracer/pkg/core"
)

// ErrInvalidScene is returned for scene files that cannot be parsed or built
var ErrInvalidScene = errors.New("invalid scene file")

// PBRTStatement represents a parsed PBRT statement
type PBRTStatement struct {
	Type       string               // Statement type (Camera, Material, Shape, etc.)
	Subtype    string               // Subtype (perspective, diffuse, sphere, etc.)
	Parameters map[string]PBRTParam // Named parameters
	Line       int                  // Line the statement starts on
}

// PBRTParam represents a parameter with type and value(s)
type PBRTParam struct {
	Type   string   // Parameter type (float, rgb, point3, etc.)
	Values []string // Parameter values as strings
}

// PBRTShape is a shape statement bound to the graphics state it was declared in
type PBRTShape struct {
	PBRTStatement
	MaterialIndex int            // Index into PBRTScene.Materials, -1 = no material
	Transform     core.Transform // Object-to-world transform at declaration
}

// LookAt is the camera placement from a LookAt statement
type LookAt struct {
	Eye    core.Point3
	Target core.Point3
	Up     core.Vec3
}

// PBRTScene contains all parsed PBRT scene data
type PBRTScene struct {
	// Pre-WorldBegin statements
	Camera     *PBRTStatement
	LookAt     *LookAt
	Film       *PBRTStatement
	Sampler    *PBRTStatement
	Integrator *PBRTStatement

	// World content
	Materials []PBRTStatement
	Shapes    []PBRTShape
}

// graphicsState is the state saved by AttributeBegin and restored by AttributeEnd
type graphicsState struct {
	materialIndex int
	transform     core.Transform
}

// PBRTParser encapsulates the state and logic for parsing PBRT files
type PBRTParser struct {
	scene          *PBRTScene
	state          graphicsState
	stateStack     []graphicsState
	namedMaterials map[string]int
	inWorld        bool
	statementLines []string
	statementStart int
	lineNumber     int
}

// ParsePBRT parses PBRT content from an io.Reader
func ParsePBRT(reader io.Reader) (*PBRTScene, error) {
	parser := NewPBRTParser()

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		parser.lineNumber++
		if err := parser.processLine(scanner.Text()); err != nil {
			return nil, err
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

	return ParsePBRT(file)
}

// NewPBRTParser creates a new PBRT parser instance
func NewPBRTParser() *PBRTParser {
	return &PBRTParser{
		scene:          &PBRTScene{},
		state:          graphicsState{materialIndex: -1, transform: core.Identity()},
		namedMaterials: make(map[string]int),
	}
}

func (p *PBRTParser) errorf(line int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrInvalidScene, line, fmt.Sprintf(format, args...))
}

// processAccumulatedStatement parses and routes the pending statement lines
func (p *PBRTParser) processAccumulatedStatement() error {
	if len(p.statementLines) == 0 {
		return nil
	}
	fullStatement := strings.Join(p.statementLines, " ")
	p.statementLines = nil

	stmt, err := parseStatement(fullStatement)
	if err != nil {
		return p.errorf(p.statementStart, "%v in '%s'", err, fullStatement)
	}
	stmt.Line = p.statementStart
	return p.routeStatement(stmt)
}

// processLine processes a single line of PBRT input
func (p *PBRTParser) processLine(line string) error {
	line = strings.TrimSpace(stripComment(line))
	if line == "" {
		return nil
	}

	switch line {
	case "WorldBegin", "WorldEnd", "AttributeBegin", "AttributeEnd":
		if err := p.processAccumulatedStatement(); err != nil {
			return err
		}
		return p.processDirective(line)
	}

	if isStatementStart(line) {
		if err := p.processAccumulatedStatement(); err != nil {
			return err
		}
		p.statementLines = []string{line}
		p.statementStart = p.lineNumber
		return nil
	}

	// Continue previous statement
	if len(p.statementLines) == 0 {
		return p.errorf(p.lineNumber, "unexpected continuation line: %s", line)
	}
	p.statementLines = append(p.statementLines, line)
	return nil
}

// stripComment removes a trailing # comment that is not inside quotes
func stripComment(line string) string {
	inQuotes := false
	for i, char := range line {
		switch char {
		case '"':
			inQuotes = !inQuotes
		case '#':
			if !inQuotes {
				return line[:i]
			}
		}
	}
	return line
}

// processDirective handles the parameterless block directives
func (p *PBRTParser) processDirective(directive string) error {
	switch directive {
	case "WorldBegin":
		if p.inWorld {
			return p.errorf(p.lineNumber, "nested WorldBegin")
		}
		p.inWorld = true
		// The world starts with a fresh transform
		p.state.transform = core.Identity()
	case "WorldEnd":
		p.inWorld = false
	case "AttributeBegin":
		p.stateStack = append(p.stateStack, p.state)
	case "AttributeEnd":
		if len(p.stateStack) == 0 {
			return p.errorf(p.lineNumber, "AttributeEnd without AttributeBegin")
		}
		p.state = p.stateStack[len(p.stateStack)-1]
		p.stateStack = p.stateStack[:len(p.stateStack)-1]
	}
	return nil
}

// finalize processes any remaining accumulated statements
func (p *PBRTParser) finalize() error {
	if err := p.processAccumulatedStatement(); err != nil {
		return err
	}
	if len(p.stateStack) > 0 {
		return p.errorf(p.lineNumber, "%d unclosed AttributeBegin", len(p.stateStack))
	}
	return nil
}

// routeStatement applies a parsed statement to the graphics state or the scene
func (p *PBRTParser) routeStatement(stmt *PBRTStatement) error {
	switch stmt.Type {
	case "LookAt":
		lookAt, err := parseLookAt(stmt)
		if err != nil {
			return p.errorf(stmt.Line, "%v", err)
		}
		p.scene.LookAt = lookAt
		return nil
	case "Translate", "Rotate", "Scale":
		t, err := parseTransform(stmt)
		if err != nil {
			return p.errorf(stmt.Line, "%v", err)
		}
		// Later transforms apply to the object first
		p.state.transform = core.Compose(p.state.transform, t)
		return nil
	case "Identity":
		p.state.transform = core.Identity()
		return nil
	}

	if !p.inWorld {
		switch stmt.Type {
		case "Camera":
			p.scene.Camera = stmt
		case "Film":
			p.scene.Film = stmt
		case "Sampler":
			p.scene.Sampler = stmt
		case "Integrator":
			p.scene.Integrator = stmt
		default:
			return p.errorf(stmt.Line, "%s is not allowed before WorldBegin", stmt.Type)
		}
		return nil
	}

	switch stmt.Type {
	case "Material":
		p.scene.Materials = append(p.scene.Materials, *stmt)
		p.state.materialIndex = len(p.scene.Materials) - 1
	case "MakeNamedMaterial":
		// The subtype is the name, the "type" parameter is the material kind
		kind, ok := stmt.GetStringParam("type")
		if !ok {
			return p.errorf(stmt.Line, "named material %q has no type", stmt.Subtype)
		}
		named := *stmt
		named.Subtype = kind
		p.scene.Materials = append(p.scene.Materials, named)
		p.namedMaterials[stmt.Subtype] = len(p.scene.Materials) - 1
	case "NamedMaterial":
		index, ok := p.namedMaterials[stmt.Subtype]
		if !ok {
			return p.errorf(stmt.Line, "unknown named material %q", stmt.Subtype)
		}
		p.state.materialIndex = index
	case "Shape":
		p.scene.Shapes = append(p.scene.Shapes, PBRTShape{
			PBRTStatement: *stmt,
			MaterialIndex: p.state.materialIndex,
			Transform:     p.state.transform,
		})
	default:
		return p.errorf(stmt.Line, "%s is not allowed inside the world block", stmt.Type)
	}
	return nil
}

// validateFilePath validates a file path for security issues
func validateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("%w: filename cannot be empty", ErrInvalidScene)
	}

	// Check for null bytes (could indicate path manipulation)
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("%w: null bytes not allowed in file path", ErrInvalidScene)
	}

	cleanPath := filepath.Clean(filename)
	if !strings.HasSuffix(strings.ToLower(cleanPath), ".pbrt") {
		return fmt.Errorf("%w: only .pbrt files are allowed", ErrInvalidScene)
	}
	if len(cleanPath) > 512 {
		return fmt.Errorf("%w: file path too long", ErrInvalidScene)
	}
	return nil
}

// parseFloats parses every value as a finite float32
func parseFloats(values []string) ([]float32, error) {
	floats := make([]float32, len(values))
	for i, s := range values {
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid number '%s'", s)
		}
		f := float32(v)
		if math32.IsNaN(f) || math32.IsInf(f, 0) {
			return nil, fmt.Errorf("number '%s' is not finite", s)
		}
		floats[i] = f
	}
	return floats, nil
}

// parseLookAt parses a LookAt statement: eye, target and up vector
func parseLookAt(stmt *PBRTStatement) (*LookAt, error) {
	values := stmt.Parameters["values"].Values
	if len(values) != 9 {
		return nil, fmt.Errorf("LookAt requires 9 values, got %d", len(values))
	}
	v, err := parseFloats(values)
	if err != nil {
		return nil, fmt.Errorf("LookAt: %v", err)
	}
	return &LookAt{
		Eye:    core.NewPoint3(v[0], v[1], v[2]),
		Target: core.NewPoint3(v[3], v[4], v[5]),
		Up:     core.NewVec3(v[6], v[7], v[8]),
	}, nil
}

// parseTransform converts a Translate, Rotate or Scale statement
func parseTransform(stmt *PBRTStatement) (core.Transform, error) {
	values := stmt.Parameters["values"].Values
	want := 3
	if stmt.Type == "Rotate" {
		want = 4
	}
	if len(values) != want {
		return core.Transform{}, fmt.Errorf("%s requires %d values, got %d", stmt.Type, want, len(values))
	}
	v, err := parseFloats(values)
	if err != nil {
		return core.Transform{}, fmt.Errorf("%s: %v", stmt.Type, err)
	}

	switch stmt.Type {
	case "Translate":
		return core.Translation(core.NewVec3(v[0], v[1], v[2])), nil
	case "Rotate":
		axis, ok := core.NewVec3(v[1], v[2], v[3]).TryNormalized()
		if !ok {
			return core.Transform{}, fmt.Errorf("Rotate axis must not be zero")
		}
		return core.Rotation(core.Degrees(v[0]).ToRadians(), axis), nil
	default:
		if !(v[0] > 0 && v[1] > 0 && v[2] > 0) {
			return core.Transform{}, fmt.Errorf("Scale factors must be positive, got %v", v)
		}
		return core.Scale(v[0], v[1], v[2]), nil
	}
}

// tokenizePBRT tokenizes a PBRT line respecting quoted strings and brackets
func tokenizePBRT(line string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	inBrackets := false

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, char := range line {
		switch {
		case char == '"' && !inBrackets:
			current.WriteRune(char)
			if inQuotes {
				flush()
			}
			inQuotes = !inQuotes
		case char == '[' && !inQuotes:
			flush()
			current.WriteRune(char)
			inBrackets = true
		case char == ']' && !inQuotes && inBrackets:
			current.WriteRune(char)
			flush()
			inBrackets = false
		case (char == ' ' || char == '\t') && !inQuotes && !inBrackets:
			flush()
		default:
			current.WriteRune(char)
		}
	}
	flush()

	return tokens
}

// parseStatement parses a single PBRT statement line
func parseStatement(line string) (*PBRTStatement, error) {
	// Positional statements carry bare numbers
	for _, positional := range []string{"LookAt", "Translate", "Rotate", "Scale", "Identity"} {
		if line == positional || strings.HasPrefix(line, positional+" ") {
			return &PBRTStatement{
				Type: positional,
				Parameters: map[string]PBRTParam{
					"values": {Type: "float", Values: strings.Fields(line[len(positional):])},
				},
			}, nil
		}
	}

	// Regular statements: Type "subtype" "param type" value
	parts := tokenizePBRT(line)
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid statement format")
	}

	stmt := &PBRTStatement{
		Type:       parts[0],
		Parameters: make(map[string]PBRTParam),
	}
	if !isQuoted(parts[1]) {
		return nil, fmt.Errorf("%s requires a quoted subtype", stmt.Type)
	}
	stmt.Subtype = strings.Trim(parts[1], `"`)
	parts = parts[2:]

	for i := 0; i < len(parts); i++ {
		if !isQuoted(parts[i]) {
			return nil, fmt.Errorf("expected parameter declaration, got %s", parts[i])
		}
		paramParts := strings.Fields(strings.Trim(parts[i], `"`))
		if len(paramParts) != 2 {
			return nil, fmt.Errorf("malformed parameter declaration %s", parts[i])
		}
		if i+1 >= len(parts) {
			return nil, fmt.Errorf("parameter %s has no value", paramParts[1])
		}
		i++

		var values []string
		if strings.HasPrefix(parts[i], "[") && strings.HasSuffix(parts[i], "]") {
			values = strings.Fields(strings.Trim(parts[i], "[] "))
		} else {
			values = []string{parts[i]}
		}
		// String values lose their quotes
		for j, v := range values {
			values[j] = strings.Trim(v, `"`)
		}

		stmt.Parameters[paramParts[1]] = PBRTParam{
			Type:   paramParts[0],
			Values: values,
		}
	}

	return stmt, nil
}

func isQuoted(token string) bool {
	return len(token) >= 2 && strings.HasPrefix(token, `"`) && strings.HasSuffix(token, `"`)
}

// GetFloatParam extracts a float parameter from a PBRT statement
func (stmt *PBRTStatement) GetFloatParam(name string) (float32, bool, error) {
	param, exists := stmt.Parameters[name]
	if !exists {
		return 0, false, nil
	}
	if len(param.Values) != 1 {
		return 0, true, fmt.Errorf("parameter %s requires 1 value, got %d", name, len(param.Values))
	}
	v, err := parseFloats(param.Values)
	if err != nil {
		return 0, true, fmt.Errorf("parameter %s: %v", name, err)
	}
	return v[0], true, nil
}

// GetIntParam extracts an integer parameter from a PBRT statement
func (stmt *PBRTStatement) GetIntParam(name string) (int, bool, error) {
	param, exists := stmt.Parameters[name]
	if !exists {
		return 0, false, nil
	}
	if len(param.Values) != 1 {
		return 0, true, fmt.Errorf("parameter %s requires 1 value, got %d", name, len(param.Values))
	}
	v, err := strconv.Atoi(param.Values[0])
	if err != nil {
		return 0, true, fmt.Errorf("parameter %s: invalid integer '%s'", name, param.Values[0])
	}
	return v, true, nil
}

// GetVec3Param extracts a three-component parameter (rgb, point3, vector3)
func (stmt *PBRTStatement) GetVec3Param(name string) (core.Vec3, bool, error) {
	param, exists := stmt.Parameters[name]
	if !exists {
		return core.Vec3{}, false, nil
	}
	if len(param.Values) != 3 {
		return core.Vec3{}, true, fmt.Errorf("parameter %s requires 3 values, got %d", name, len(param.Values))
	}
	v, err := parseFloats(param.Values)
	if err != nil {
		return core.Vec3{}, true, fmt.Errorf("parameter %s: %v", name, err)
	}
	return core.NewVec3(v[0], v[1], v[2]), true, nil
}

// GetRGBParam extracts an RGB color parameter. Channels must lie in [0, 1].
func (stmt *PBRTStatement) GetRGBParam(name string) (core.Color, bool, error) {
	v, ok, err := stmt.GetVec3Param(name)
	if !ok || err != nil {
		return core.Color{}, ok, err
	}
	if v.Min(core.Zero) != core.Zero || v.Max(core.One) != core.One {
		return core.Color{}, true, fmt.Errorf("parameter %s: color %v outside [0, 1]", name, v)
	}
	return core.ColorFromVec3(v), true, nil
}

// GetStringParam extracts a string parameter from a PBRT statement
func (stmt *PBRTStatement) GetStringParam(name string) (string, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return "", false
	}
	return param.Values[0], true
}

// isStatementStart determines if a line starts a new PBRT statement
func isStatementStart(line string) bool {
	statementTypes := []string{
		"Camera", "Film", "Sampler", "Integrator", "LookAt",
		"Material", "MakeNamedMaterial", "NamedMaterial", "Shape",
		"Translate", "Rotate", "Scale", "Identity",
	}

	for _, stmt := range statementTypes {
		if strings.HasPrefix(line, stmt+" ") || line == stmt {
			return true
		}
	}
	return false
}
