package gen

// MakeGen uses CMake's default generator and runs make, the non-windows default.
type MakeGen struct{}

func (MakeGen) Name() string { return "make" }

func (MakeGen) ConfigureCommand(tools Tools, srcDir string, extra []string) []string {
	return command([]string{tools.CMake, srcDir}, extra)
}

func (MakeGen) BuildCommand(tools Tools, extra []string) []string {
	return command([]string{tools.Make}, extra)
}
