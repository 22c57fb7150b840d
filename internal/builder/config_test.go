package builder

import (
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"
)

func testEnv(goos string) ConfigEnv {
	return ConfigEnv{
		TargetOS:   goos,
		TargetArch: "amd64",
		Environ:    map[string]string{"CC": "clang", "BUILD_TYPE": "Debug"},
	}
}

func TestLoadSettingsDefaultsWithoutFile(t *testing.T) {
	s, err := LoadSettings(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Build.Dir != "build" || s.Build.Descriptor != "CMakeLists.txt" || s.Build.Generator != GeneratorAuto {
		t.Fatalf("unexpected defaults: %+v", s.Build)
	}
	if len(s.Build.ConfigureArgs) != 0 || len(s.Build.BuildArgs) != 0 || len(s.Run.Exclude) != 0 {
		t.Fatalf("defaults must not add arguments: %+v", s)
	}
}

func TestParseSettingsEmpty(t *testing.T) {
	s, err := ParseSettings(strings.NewReader(""), testEnv("linux"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(s, DefaultSettings()) {
		t.Fatalf("empty file must yield defaults, got %+v", s)
	}
}

func TestParseSettingsBase(t *testing.T) {
	src := `
[build]
dir = "out"
generator = "ninja"
configure-args = ["-DCMAKE_BUILD_TYPE=Release"]
build-args = ["-j", "4"]

[run]
exclude = ["*_test"]
`
	s, err := ParseSettings(strings.NewReader(src), testEnv("linux"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Build.Dir != "out" || s.Build.Generator != "ninja" {
		t.Fatalf("unexpected build section: %+v", s.Build)
	}
	if s.Build.Descriptor != DefaultDescriptor {
		t.Fatalf("unset keys must keep their defaults, got descriptor %q", s.Build.Descriptor)
	}
	if !slices.Equal(s.Build.ConfigureArgs, []string{"-DCMAKE_BUILD_TYPE=Release"}) {
		t.Fatalf("configure-args: %q", s.Build.ConfigureArgs)
	}
	if !slices.Equal(s.Build.BuildArgs, []string{"-j", "4"}) {
		t.Fatalf("build-args: %q", s.Build.BuildArgs)
	}
	if !slices.Equal(s.Run.Exclude, []string{"*_test"}) {
		t.Fatalf("exclude: %q", s.Run.Exclude)
	}
}

func TestParseSettingsConditionalSections(t *testing.T) {
	src := `
[build]
configure-args = ["-DBASE=1"]

[build.'target_os == "windows"']
generator = "ninja"
configure-args = ["-DWIN=1"]

[build.'target_os != "windows"']
configure-args = ["-DUNIX=1"]

[run.'target_arch == "amd64"']
exclude = ["bench_*"]
`
	linux, err := ParseSettings(strings.NewReader(src), testEnv("linux"))
	if err != nil {
		t.Fatalf("parse linux: %v", err)
	}
	if linux.Build.Generator != GeneratorAuto {
		t.Fatalf("windows-only generator leaked into linux: %q", linux.Build.Generator)
	}
	if !slices.Equal(linux.Build.ConfigureArgs, []string{"-DBASE=1", "-DUNIX=1"}) {
		t.Fatalf("linux configure-args: %q", linux.Build.ConfigureArgs)
	}
	if !slices.Equal(linux.Run.Exclude, []string{"bench_*"}) {
		t.Fatalf("linux exclude: %q", linux.Run.Exclude)
	}

	windows, err := ParseSettings(strings.NewReader(src), testEnv("windows"))
	if err != nil {
		t.Fatalf("parse windows: %v", err)
	}
	if windows.Build.Generator != GeneratorNinja {
		t.Fatalf("windows generator: %q", windows.Build.Generator)
	}
	if !slices.Equal(windows.Build.ConfigureArgs, []string{"-DBASE=1", "-DWIN=1"}) {
		t.Fatalf("windows configure-args: %q", windows.Build.ConfigureArgs)
	}
}

func TestParseSettingsInterpolation(t *testing.T) {
	src := `
[build]
dir = "build-{{ target_os }}"
configure-args = ["-DCMAKE_C_COMPILER={{ environ.CC }}", "-DCMAKE_BUILD_TYPE={{ environ.BUILD_TYPE }}"]
`
	s, err := ParseSettings(strings.NewReader(src), testEnv("linux"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Build.Dir != "build-linux" {
		t.Fatalf("dir: %q", s.Build.Dir)
	}
	want := []string{"-DCMAKE_C_COMPILER=clang", "-DCMAKE_BUILD_TYPE=Debug"}
	if !slices.Equal(s.Build.ConfigureArgs, want) {
		t.Fatalf("want %q, got %q", want, s.Build.ConfigureArgs)
	}
}

func TestParseSettingsErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown section", "[package]\nname = \"x\"\n", "unknown section [package]"},
		{"unknown key", "[build]\ndirectory = \"x\"\n", "failed to parse base [build] section"},
		{"bad generator", "[build]\ngenerator = \"scons\"\n", `unknown generator "scons"`},
		{"empty dir", "[build]\ndir = \"\"\n", "build.dir must not be empty"},
		{"bad exclude", "[run]\nexclude = [\"[\"]\n", "invalid run.exclude pattern"},
		{"bad expression", "[build]\ndir = \"{{ nope( }}\"\n", "error processing expressions"},
		{"syntax", "[build\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSettings(strings.NewReader(tt.src), testEnv("linux"))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("want error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadSettingsReportsPath(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, SettingsFilename), []byte("[build]\ngenerator = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	_, err := LoadSettings(dir)
	if err == nil || !strings.Contains(err.Error(), SettingsFilename) {
		t.Fatalf("want error mentioning %s, got %v", SettingsFilename, err)
	}
}
