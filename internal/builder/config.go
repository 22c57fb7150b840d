package builder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/expr-lang/expr"
	"github.com/pelletier/go-toml/v2"
)

const (
	SettingsFilename  = "Buildit.toml"
	DefaultBuildDir   = "build"
	DefaultDescriptor = "CMakeLists.txt"
)

// Settings is the optional Buildit.toml of a project. The zero file yields DefaultSettings.
type Settings struct {
	Build BuildSection `toml:"build"`
	Run   RunSection   `toml:"run"`
}

// BuildSection defines the [build(.*)] section
type BuildSection struct {
	Dir           string   `toml:"dir"`
	Descriptor    string   `toml:"descriptor"`
	Generator     string   `toml:"generator"`
	ConfigureArgs []string `toml:"configure-args"`
	BuildArgs     []string `toml:"build-args"`
}

// RunSection defines the [run(.*)] section
type RunSection struct {
	Exclude []string `toml:"exclude"`
}

func DefaultSettings() *Settings {
	return &Settings{
		Build: BuildSection{
			Dir:        DefaultBuildDir,
			Descriptor: DefaultDescriptor,
			Generator:  GeneratorAuto,
		},
	}
}

func (s *Settings) validate() error {
	if s.Build.Dir == "" {
		return errors.New("build.dir must not be empty")
	}
	if s.Build.Descriptor == "" {
		return errors.New("build.descriptor must not be empty")
	}
	if !isGenerator(s.Build.Generator) {
		return fmt.Errorf("unknown generator %q, known generators: %s", s.Build.Generator, strings.Join(Generators(), ", "))
	}
	for _, pat := range s.Run.Exclude {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("invalid run.exclude pattern %q", pat)
		}
	}
	return nil
}

// mergeStructs merges the fields of the src struct into the dst struct
func mergeStructs(dst, src any) error {
	dstVal := reflect.ValueOf(dst)
	if dstVal.Kind() != reflect.Pointer || dstVal.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("dst must be a pointer to a struct")
	}

	dstElem := dstVal.Elem()
	srcVal := reflect.ValueOf(src)

	if srcVal.Kind() == reflect.Pointer {
		srcVal = srcVal.Elem()
	}

	if srcVal.Kind() != reflect.Struct {
		return fmt.Errorf("src must be a struct or a pointer to a struct")
	}

	if dstElem.Type() != srcVal.Type() {
		return fmt.Errorf("dst and src must be of the same struct type")
	}

	for i := range srcVal.NumField() {
		srcField := srcVal.Field(i)
		dstField := dstElem.Field(i)

		if !dstField.CanSet() {
			continue
		}

		switch dstField.Kind() {
		case reflect.Slice:
			if !srcField.IsNil() {
				dstField.Set(reflect.AppendSlice(dstField, srcField))
			}
		default:
			if !srcField.IsZero() {
				dstField.Set(srcField)
			}
		}
	}

	return nil
}

func mustMarshal(v any) string {
	b, err := toml.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// decodeStrict decodes a re-marshalled section, rejecting keys the section does not define
func decodeStrict(data string, dst any) error {
	return toml.NewDecoder(strings.NewReader(data)).DisallowUnknownFields().Decode(dst)
}

// unmarshalConditionalSection parses a section, then merges every sub-table whose key is
// an expression evaluating to true, e.g. [build.'target_os == "windows"'].
func unmarshalConditionalSection[T any](rawCfg map[string]any, name string, dst *T, env ConfigEnv) error {
	sectionData, ok := rawCfg[name]
	if !ok {
		return nil
	}

	sectionMap, ok := sectionData.(map[string]any)
	if !ok {
		return fmt.Errorf("invalid [%s] section format: expected a table", name)
	}

	baseFields := make(map[string]any)
	conditionalFields := make(map[string]map[string]any)

	for key, val := range sectionMap {
		if subMap, ok := val.(map[string]any); ok {
			if _, err := expr.Compile(key, expr.Env(env), expr.AsBool()); err == nil {
				conditionalFields[key] = subMap
				continue
			}
		}
		baseFields[key] = val
	}

	if len(baseFields) > 0 {
		if err := decodeStrict(mustMarshal(baseFields), dst); err != nil {
			return fmt.Errorf("failed to parse base [%s] section: %w", name, err)
		}
	}

	for expression, condMap := range conditionalFields {
		program, err := expr.Compile(expression, expr.Env(env), expr.AsBool())
		if err != nil {
			return fmt.Errorf("failed to compile expression for [%s.%q]: %w", name, expression, err)
		}

		result, err := expr.Run(program, env)
		if err != nil {
			return fmt.Errorf("failed to run expression for [%s.%q]: %w", name, expression, err)
		}

		if matched, ok := result.(bool); !ok || !matched {
			continue
		}

		var condSection T
		if err := decodeStrict(mustMarshal(condMap), &condSection); err != nil {
			return fmt.Errorf("failed to parse conditional section [%s.%q]: %w", name, expression, err)
		}
		if err := mergeStructs(dst, condSection); err != nil {
			return fmt.Errorf("failed to merge conditional section [%s.%q]: %w", name, expression, err)
		}
	}

	return nil
}

var exprRegex = regexp.MustCompile(`\{\{(.+?)\}\}`)

// evaluateString finds and evaluates all {{...}} expressions in a string
func evaluateString(s string, env ConfigEnv) (string, error) {
	matches := exprRegex.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	var sb strings.Builder
	lastIndex := 0

	for _, m := range matches {
		sb.WriteString(s[lastIndex:m[0]])

		expression := strings.TrimSpace(s[m[2]:m[3]])
		program, err := expr.Compile(expression, expr.Env(env))
		if err != nil {
			return "", fmt.Errorf("failed to compile expression %q: %w", expression, err)
		}

		result, err := expr.Run(program, env)
		if err != nil {
			return "", fmt.Errorf("failed to run expression %q: %w", expression, err)
		}

		if result != nil {
			fmt.Fprintf(&sb, "%v", result)
		}
		lastIndex = m[1]
	}

	sb.WriteString(s[lastIndex:])

	return sb.String(), nil
}

// processExpressions recursively walks the parsed TOML data and evaluates expressions in strings
func processExpressions(data any, env ConfigEnv) (any, error) {
	switch v := data.(type) {
	case map[string]any:
		for key, val := range v {
			processedVal, err := processExpressions(val, env)
			if err != nil {
				return nil, err
			}
			v[key] = processedVal
		}
		return v, nil
	case []any:
		for i, item := range v {
			processedItem, err := processExpressions(item, env)
			if err != nil {
				return nil, err
			}
			v[i] = processedItem
		}
		return v, nil
	case string:
		return evaluateString(v, env)
	default:
		return data, nil
	}
}

func ParseSettings(rdr io.Reader, env ConfigEnv) (*Settings, error) {
	var rawConfig map[string]any
	dec := toml.NewDecoder(rdr)
	if err := dec.Decode(&rawConfig); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			return nil, errors.New(derr.String())
		}
		return nil, err
	}
	if rawConfig == nil {
		rawConfig = map[string]any{}
	}

	for key := range rawConfig {
		if key != "build" && key != "run" {
			return nil, fmt.Errorf("unknown section [%s]", key)
		}
	}

	processedConfig, err := processExpressions(rawConfig, env)
	if err != nil {
		return nil, fmt.Errorf("error processing expressions in settings: %w", err)
	}
	rawConfig = processedConfig.(map[string]any)

	s := DefaultSettings()
	if err := unmarshalConditionalSection(rawConfig, "build", &s.Build, env); err != nil {
		return nil, err
	}
	if err := unmarshalConditionalSection(rawConfig, "run", &s.Run, env); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// ParseSettingsFromFile parses and validates a settings file from a filepath
func ParseSettingsFromFile(path string, env ConfigEnv) (*Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := ParseSettings(bufio.NewReader(f), env)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadSettings reads Buildit.toml from the project directory, falling back to the
// defaults when the file does not exist.
func LoadSettings(projectDir string) (*Settings, error) {
	path := filepath.Join(projectDir, SettingsFilename)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultSettings(), nil
	}
	return ParseSettingsFromFile(path, NewConfigEnv())
}

type ConfigEnv struct {
	TargetOS   string            `expr:"target_os"`
	TargetArch string            `expr:"target_arch"`
	Environ    map[string]string `expr:"environ"`
}

func NewConfigEnv() ConfigEnv {
	environ := make(map[string]string)
	for _, e := range os.Environ() {
		if i := strings.Index(e, "="); i >= 0 {
			environ[e[:i]] = e[i+1:]
		}
	}

	return ConfigEnv{
		TargetOS:   runtime.GOOS,
		TargetArch: runtime.GOARCH,
		Environ:    environ,
	}
}
