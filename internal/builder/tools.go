package builder

import (
	"os"
	"os/exec"

	"github.com/qobs-build/buildit/internal/builder/gen"
)

// findTool resolves an external tool, preferring the environment override (e.g. $CMAKE)
// and then $PATH. An unresolved tool is returned by name so that the failure surfaces
// when it is started.
func findTool(envVar, name string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	if path, err := exec.LookPath(name); err == nil {
		return path
	}
	return name
}

func findTools() gen.Tools {
	return gen.Tools{
		CMake: findTool("CMAKE", "cmake"),
		Make:  findTool("MAKE", "make"),
		Ninja: findTool("NINJA", "ninja"),
	}
}
