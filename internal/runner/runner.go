// Package runner locates the executable produced by a build and runs it, forwarding
// arguments and standard streams and propagating its exit code.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/qobs-build/buildit/internal/builder"
	"github.com/qobs-build/buildit/internal/execx"
	"github.com/qobs-build/buildit/internal/msg"
)

var (
	ErrNoBuildDir    = errors.New("build directory not found")
	ErrNoExecutables = errors.New("no executables found in build directory")
)

// ExitInterrupted is the exit code after a keyboard interrupt, as a shell would report it.
const ExitInterrupted = 130

type Runner struct {
	BuildDir string
	Exclude  []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a Runner for the project in projectDir, honouring its Buildit.toml.
func New(projectDir string) (*Runner, error) {
	projectDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, err
	}
	settings, err := builder.LoadSettings(projectDir)
	if err != nil {
		return nil, err
	}
	return &Runner{
		BuildDir: builder.ResolveBuildDir(projectDir, settings),
		Exclude:  settings.Run.Exclude,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}, nil
}

// Select returns the name of the executable to run. With several candidates the first one
// in directory enumeration order wins; that order is not sorted and may differ between
// filesystems.
func (r *Runner) Select() (string, error) {
	msg.Status("Looking", "for executable to run")

	info, err := os.Stat(r.BuildDir)
	if errors.Is(err, os.ErrNotExist) || (err == nil && !info.IsDir()) {
		return "", fmt.Errorf("%w: %s", ErrNoBuildDir, r.BuildDir)
	} else if err != nil {
		return "", err
	}

	exes, err := builder.FindExecutables(r.BuildDir, r.Exclude)
	if err != nil {
		return "", err
	}

	switch len(exes) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNoExecutables, r.BuildDir)
	case 1:
		msg.Status("Found", "executable: %s", exes[0])
	default:
		msg.Status("Found", "multiple executables:")
		for i, name := range exes {
			msg.Hint("%d. %s", i+1, name)
		}
		msg.Hint("running the first one: %s", exes[0])
	}
	return exes[0], nil
}

// Run selects an executable and runs it with args. The returned code is what the calling
// process should exit with; err is set only when nothing could be run.
func (r *Runner) Run(ctx context.Context, args []string) (int, error) {
	name, err := r.Select()
	if err != nil {
		return 1, err
	}
	return r.Exec(ctx, name, args)
}

// Exec runs the named build directory entry from inside the build directory and waits for
// it. A keyboard interrupt kills the child and yields ExitInterrupted.
func (r *Runner) Exec(ctx context.Context, name string, args []string) (int, error) {
	fmt.Fprintln(msg.Output)
	msg.Status("Running", "%s", name)
	msg.Rule()

	ictx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	argv := append([]string{filepath.Join(r.BuildDir, name)}, args...)
	res := execx.Stream(ictx, r.BuildDir, argv, r.Stdin, r.Stdout, r.Stderr)

	if ictx.Err() != nil && ctx.Err() == nil {
		fmt.Fprintln(msg.Output)
		msg.Warn("execution interrupted by user")
		return ExitInterrupted, nil
	}
	if !res.Started {
		return 1, fmt.Errorf("could not execute %s: %w", name, res.Err)
	}

	msg.Rule()
	if res.Code != 0 {
		msg.Error("%s failed with return code %d", name, res.Code)
		return res.Code, nil
	}
	msg.Status("Finished", "%s executed successfully", name)
	return 0, nil
}
