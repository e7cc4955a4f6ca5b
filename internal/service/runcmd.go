package service

import (
	"context"
	"io"
	"os/exec"
)

// runCommand executes an external tool and returns its combined output.
// Package variable so tests can stub subprocess behavior.
var runCommand = func(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	return cmd.CombinedOutput()
}

// runCommandStream executes an external tool whose stdout must be consumed
// incrementally. The handler reads decoded output from r; a handler error
// wins over the subprocess exit status.
var runCommandStream = func(ctx context.Context, handler func(r io.Reader) error, bin string, args ...string) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err = cmd.Start(); err != nil {
		return err
	}

	handlerErr := handler(stdout)
	// Drain so the subprocess never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, stdout)

	waitErr := cmd.Wait()
	if handlerErr != nil {
		return handlerErr
	}
	return waitErr
}
