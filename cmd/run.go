// runit [args...]
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/qobs-build/buildit/internal/msg"
	"github.com/qobs-build/buildit/internal/runner"
	"github.com/spf13/cobra"
)

func doRun(cmd *cobra.Command, args []string) {
	r, err := runner.New(".")
	if err != nil {
		msg.Fatal("%v", err)
	}
	r.Stdin = cmd.InOrStdin()
	r.Stdout = cmd.OutOrStdout()
	r.Stderr = cmd.ErrOrStderr()

	code, err := r.Run(cmd.Context(), args)
	if err != nil {
		msg.Error("%v", err)
		if errors.Is(err, runner.ErrNoBuildDir) || errors.Is(err, runner.ErrNoExecutables) {
			msg.Hint("run %s first to build the project", color.HiCyanString("buildit"))
		}
	}
	exit(code)
}

// every argument belongs to the program being run, so flag parsing is disabled
var runCmd = &cobra.Command{
	Use:   "runit [args...]",
	Short: "Run the executable produced by buildit",
	Long: `Run the executable found in the build directory, passing all arguments
through unchanged. runit exits with the program's exit code, 1 if nothing
could be run, or 130 when interrupted.`,
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: true,
	SilenceErrors:      true,
	SilenceUsage:       true,
	Run:                doRun,
}

// ExecuteRun runs the runit command line.
func ExecuteRun() {
	if err := runCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exit(1)
	}
}
