package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/qobs-build/buildit/internal/builder/gen"
	"github.com/qobs-build/buildit/internal/execx"
	"github.com/qobs-build/buildit/internal/msg"
)

var (
	errNoDescriptor   = errors.New("build descriptor not found")
	errUnsafeBuildDir = errors.New("build directory must be a subdirectory of the project")
)

const (
	GeneratorAuto  = "auto"
	GeneratorMake  = "make"
	GeneratorNinja = "ninja"
	GeneratorCMake = "cmake"
)

// Generators lists the names accepted by SetGenerator and build.generator.
func Generators() []string {
	return []string{GeneratorAuto, GeneratorMake, GeneratorNinja, GeneratorCMake}
}

func isGenerator(name string) bool {
	return slices.Contains(Generators(), name)
}

// DefaultGenerator is what "auto" means on goos: make everywhere except windows, where
// cmake drives the build itself with a Release configuration.
func DefaultGenerator(goos string) string {
	if goos == "windows" {
		return GeneratorCMake
	}
	return GeneratorMake
}

func createGenerator(name string) gen.Generator {
	if name == GeneratorAuto {
		name = DefaultGenerator(runtime.GOOS)
	}
	switch name {
	case GeneratorMake:
		return gen.MakeGen{}
	case GeneratorNinja:
		return gen.NinjaGen{}
	case GeneratorCMake:
		return gen.NewCMakeBuildGen()
	default:
		panic("createGenerator: unreachable")
	}
}

type Builder struct {
	settings *Settings
	basedir  string
	gen      gen.Generator
	tools    gen.Tools
}

func NewBuilderInDirectory(path string) (*Builder, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	settings, err := LoadSettings(path)
	if err != nil {
		return nil, err
	}
	return &Builder{
		settings: settings,
		basedir:  path,
		gen:      createGenerator(settings.Build.Generator),
		tools:    findTools(),
	}, nil
}

// SetGenerator overrides the generator chosen by the settings file.
func (b *Builder) SetGenerator(name string) error {
	if !isGenerator(name) {
		return fmt.Errorf("unknown generator %q, known generators: %s", name, strings.Join(Generators(), ", "))
	}
	b.gen = createGenerator(name)
	return nil
}

// BuildDir returns the absolute path of the build output directory.
func (b *Builder) BuildDir() string {
	return ResolveBuildDir(b.basedir, b.settings)
}

// ResolveBuildDir joins a relative build.dir onto the project directory.
func ResolveBuildDir(projectDir string, s *Settings) string {
	if filepath.IsAbs(s.Build.Dir) {
		return filepath.Clean(s.Build.Dir)
	}
	return filepath.Join(projectDir, s.Build.Dir)
}

// checkBuildDir refuses build directories that would make the recursive delete remove the
// project itself or something outside it.
func (b *Builder) checkBuildDir() error {
	rel, err := filepath.Rel(b.basedir, b.BuildDir())
	if err != nil {
		return fmt.Errorf("%w: %v", errUnsafeBuildDir, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w (got %s)", errUnsafeBuildDir, b.BuildDir())
	}
	return nil
}

// Clean removes the build directory if it exists.
func (b *Builder) Clean() error {
	if err := b.checkBuildDir(); err != nil {
		return err
	}
	buildDir := b.BuildDir()
	if _, err := os.Stat(buildDir); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	msg.Status("Cleaning", "existing build directory")
	return os.RemoveAll(buildDir)
}

// Build configures and compiles the project from a fresh build directory, then returns the
// executables found in it.
func (b *Builder) Build(ctx context.Context) ([]string, error) {
	msg.Status("Starting", "build process")

	descriptor := filepath.Join(b.basedir, b.settings.Build.Descriptor)
	if _, err := os.Stat(descriptor); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s not found in %s", errNoDescriptor, b.settings.Build.Descriptor, b.basedir)
	} else if err != nil {
		return nil, err
	}

	if err := b.Clean(); err != nil {
		return nil, err
	}
	buildDir := b.BuildDir()
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return nil, err
	}
	msg.Status("Created", "build directory: %s", buildDir)

	srcDir, err := filepath.Rel(buildDir, b.basedir)
	if err != nil {
		return nil, err
	}

	msg.Status("Configuring", "with CMake")
	configure := b.gen.ConfigureCommand(b.tools, srcDir, b.settings.Build.ConfigureArgs)
	if err := b.runStep(ctx, buildDir, configure); err != nil {
		return nil, fmt.Errorf("cmake configuration failed: %w", err)
	}

	msg.Status("Building", "project")
	compile := b.gen.BuildCommand(b.tools, b.settings.Build.BuildArgs)
	if err := b.runStep(ctx, buildDir, compile); err != nil {
		return nil, fmt.Errorf("build failed: %w", err)
	}

	msg.Status("Finished", "build completed successfully")
	return b.report(buildDir), nil
}

// runStep runs one external command with its output captured. Stdout is echoed on
// success; on failure both streams are surfaced verbatim.
func (b *Builder) runStep(ctx context.Context, dir string, argv []string) error {
	msg.Status("Running", "%s", displayCommand(argv))
	res := execx.Capture(ctx, dir, argv)
	if res.Success() {
		writeIndented(msg.Output, res.Stdout)
		return nil
	}
	if !res.Started {
		return &res
	}

	msg.Error("command failed with return code %d", res.Code)
	if res.Stdout != "" {
		msg.Hint("STDOUT:")
		writeIndented(msg.Output, res.Stdout)
	}
	if res.Stderr != "" {
		msg.Hint("STDERR:")
		writeIndented(msg.Output, res.Stderr)
	}
	return &res
}

// report prints the executables in the build directory. It never fails the build.
func (b *Builder) report(buildDir string) []string {
	exes, err := FindExecutables(buildDir, b.settings.Run.Exclude)
	if err != nil {
		msg.Warn("could not list %s: %v", buildDir, err)
		return nil
	}
	fmt.Fprintln(msg.Output)
	msg.Status("Built", "files:")
	for _, name := range exes {
		msg.Hint("  %s", name)
	}
	return exes
}

func displayCommand(argv []string) string {
	if len(argv) == 0 {
		return ""
	}
	shown := slices.Clone(argv)
	shown[0] = strings.TrimSuffix(filepath.Base(shown[0]), ".exe")
	return execx.CommandLine(shown)
}

func writeIndented(w io.Writer, s string) {
	if s == "" {
		return
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	io.WriteString(&msg.IndentWriter{Indent: "    ", W: w}, s)
}
