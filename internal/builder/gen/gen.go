package gen

// Tools holds the resolved executables a generator may invoke.
type Tools struct {
	CMake string
	Make  string
	Ninja string
}

// Generator describes a CMake generator: how build files are produced and how they are
// compiled afterwards. Both commands run inside the build directory.
type Generator interface {
	Name() string
	ConfigureCommand(tools Tools, srcDir string, extra []string) []string
	BuildCommand(tools Tools, extra []string) []string
}

func command(argv []string, extra []string) []string {
	out := make([]string, 0, len(argv)+len(extra))
	out = append(out, argv...)
	return append(out, extra...)
}
