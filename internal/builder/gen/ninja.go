package gen

// NinjaGen generates build.ninja files and compiles them with ninja.
type NinjaGen struct{}

func (NinjaGen) Name() string { return "ninja" }

func (NinjaGen) ConfigureCommand(tools Tools, srcDir string, extra []string) []string {
	return command([]string{tools.CMake, "-G", "Ninja", srcDir}, extra)
}

func (NinjaGen) BuildCommand(tools Tools, extra []string) []string {
	return command([]string{tools.Ninja}, extra)
}
