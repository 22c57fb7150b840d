// Package execx runs external tools and translates their termination into exit codes.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
)

// Result describes a finished (or unstartable) process.
type Result struct {
	Argv    []string
	Code    int
	Err     error
	Stdout  string
	Stderr  string
	Started bool
}

// Success reports whether the process ran and exited with code 0.
func (r *Result) Success() bool {
	return r.Started && r.Err == nil
}

// Error describes the failure in a single line; captured streams are left to the caller.
func (r *Result) Error() string {
	name := "command"
	if len(r.Argv) > 0 {
		name = filepath.Base(r.Argv[0])
	}
	if !r.Started {
		return fmt.Sprintf("could not start %s: %v", name, r.Err)
	}
	return fmt.Sprintf("%s exited with code %d", name, r.Code)
}

// CommandLine joins argv for display.
func CommandLine(argv []string) string {
	return strings.Join(argv, " ")
}

// Capture runs argv in dir and collects stdout and stderr separately.
func Capture(ctx context.Context, dir string, argv []string) Result {
	var stdout, stderr bytes.Buffer
	res := run(ctx, dir, argv, nil, &stdout, &stderr)
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	return res
}

// Stream runs argv in dir with the given standard streams attached.
func Stream(ctx context.Context, dir string, argv []string, stdin io.Reader, stdout, stderr io.Writer) Result {
	return run(ctx, dir, argv, stdin, stdout, stderr)
}

func run(ctx context.Context, dir string, argv []string, stdin io.Reader, stdout, stderr io.Writer) Result {
	if len(argv) == 0 {
		return Result{Code: 1, Err: errors.New("empty command line")}
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return Result{Argv: argv, Code: 1, Err: err}
	}
	err := cmd.Wait()
	return Result{Argv: argv, Code: Code(err), Err: err, Started: true}
}

// Code maps the error returned by (*exec.Cmd).Wait to a process exit code.
// A process terminated by a signal yields 128+signal, the shell convention.
func Code(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return 1
	}
	if status, ok := ee.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	if code := ee.ExitCode(); code >= 0 {
		return code
	}
	return 1
}
