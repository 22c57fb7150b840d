// buildit [-C dir] [-g gen], buildit clean
package cmd

import (
	"fmt"
	"os"

	"github.com/qobs-build/buildit/internal/builder"
	"github.com/qobs-build/buildit/internal/msg"
	"github.com/spf13/cobra"
)

var (
	flagDirectory string
	flagGenerator EnumValue = NewEnumValue(builder.GeneratorAuto, map[string]string{
		builder.GeneratorAuto:  "Platform default: make, or cmake --build on windows (default)",
		builder.GeneratorMake:  "Unix Makefiles, compiled with make",
		builder.GeneratorNinja: "Ninja files, compiled with ninja",
		builder.GeneratorCMake: "Let cmake --build drive the native tool in Release",
	})
)

// exit is replaced in tests
var exit = os.Exit

func newBuilder(cmd *cobra.Command) *builder.Builder {
	b, err := builder.NewBuilderInDirectory(flagDirectory)
	if err != nil {
		msg.Fatal("%v", err)
	}
	if cmd.Flags().Changed("gen") {
		if err := b.SetGenerator(flagGenerator.Value()); err != nil {
			msg.Fatal("%v", err)
		}
	}
	return b
}

func doBuild(cmd *cobra.Command, args []string) {
	b := newBuilder(cmd)
	if _, err := b.Build(cmd.Context()); err != nil {
		msg.Fatal("%v", err)
	}
}

func doClean(cmd *cobra.Command, args []string) {
	b := newBuilder(cmd)
	if err := b.Clean(); err != nil {
		msg.Fatal("%v", err)
	}
	msg.Info("removed %s", b.BuildDir())
}

var buildCmd = &cobra.Command{
	Use:   "buildit",
	Short: "Configure and build a CMake project",
	Long: `Configure and build the CMake project in the current directory.

The build directory is deleted and recreated on every run, cmake is invoked
inside it, then the generated files are compiled. Executables found in the
build directory afterwards are listed; run them with runit.`,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	Run:           doBuild,
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the build directory",
	Args:  cobra.NoArgs,
	Run:   doClean,
}

func init() {
	buildCmd.PersistentFlags().StringVarP(&flagDirectory, "directory", "C", ".", "Project directory containing CMakeLists.txt")
	buildCmd.Flags().VarP(&flagGenerator, "gen", "g", "Generator to build with, one of "+flagGenerator.HelpString())
	buildCmd.RegisterFlagCompletionFunc("gen", flagGenerator.CompletionFunc())

	// buildit clean subcommand
	buildCmd.AddCommand(cleanCmd)
}

// ExecuteBuild runs the buildit command line.
func ExecuteBuild() {
	if err := buildCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exit(1)
	}
}
