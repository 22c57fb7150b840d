package gen

// CMakeBuildGen leaves the native tool to CMake and asks it for a Release build. This is
// the windows default, where the platform generator (Visual Studio) is multi-config and
// the configuration must be chosen at build time.
type CMakeBuildGen struct {
	Config string
}

func NewCMakeBuildGen() *CMakeBuildGen {
	return &CMakeBuildGen{Config: "Release"}
}

func (g *CMakeBuildGen) Name() string { return "cmake" }

func (g *CMakeBuildGen) ConfigureCommand(tools Tools, srcDir string, extra []string) []string {
	return command([]string{tools.CMake, srcDir}, extra)
}

func (g *CMakeBuildGen) BuildCommand(tools Tools, extra []string) []string {
	return command([]string{tools.CMake, "--build", ".", "--config", g.Config}, extra)
}
