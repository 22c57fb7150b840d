//go:build unix

package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

func TestInterruptYields130(t *testing.T) {
	f := newFixture(t)
	started := filepath.Join(t.TempDir(), "STARTED")
	f.script(t, "sleeper", "touch '"+started+"'\nexec sleep 30\n")

	type result struct {
		code int
		err  error
	}
	done := make(chan result, 1)
	go func() {
		code, err := f.runner.Run(context.Background(), nil)
		done <- result{code, err}
	}()

	deadline := time.Now().Add(10 * time.Second)
	for {
		if _, err := os.Stat(started); err == nil {
			break
		} else if !errors.Is(err, os.ErrNotExist) {
			t.Fatal(err)
		}
		if time.Now().After(deadline) {
			t.Fatal("child never started")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := syscall.Kill(os.Getpid(), syscall.SIGINT); err != nil {
		t.Fatal(err)
	}

	select {
	case res := <-done:
		if res.err != nil {
			t.Fatalf("run: %v", res.err)
		}
		if res.code != ExitInterrupted {
			t.Fatalf("want %d, got %d", ExitInterrupted, res.code)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("child was not stopped by the interrupt")
	}
	if !strings.Contains(f.log.String(), "execution interrupted by user") {
		t.Fatalf("missing interrupt notice:\n%s", f.log)
	}
}

func TestCancelledContextIsNotAnInterrupt(t *testing.T) {
	f := newFixture(t)
	f.script(t, "sleeper", "exec sleep 30\n")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	code, err := f.runner.Run(ctx, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if code != 128+int(syscall.SIGKILL) {
		t.Fatalf("want the kill status, got %d", code)
	}
	if strings.Contains(f.log.String(), "interrupted") {
		t.Fatalf("cancellation reported as interrupt:\n%s", f.log)
	}
}
