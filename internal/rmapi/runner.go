package rmapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result holds the captured output of one rmapi invocation
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Output is stdout and stderr joined, which is where rmapi reports errors
func (r *Result) Output() string {
	return strings.TrimSpace(r.Stdout + "\n" + r.Stderr)
}

// Runner executes rmapi commands. dir is the working directory, which is
// where rmapi drops downloaded files.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (*Result, error)
}

// ExecRunner runs the rmapi binary found at Path
type ExecRunner struct {
	Path string
}

func NewExecRunner(path string) *ExecRunner {
	return &ExecRunner{Path: path}
}

func (e *ExecRunner) Run(ctx context.Context, dir string, args ...string) (*Result, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, e.Path, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return result, nil
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		return result, &CommandError{Args: args, Result: result}
	default:
		result.ExitCode = -1
		return result, fmt.Errorf("rmapi: run %v: %w", args, err)
	}
}

// CommandError is returned when rmapi exits with a non-zero status
type CommandError struct {
	Args   []string
	Result *Result
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("rmapi %s failed (exit %d): %s", strings.Join(e.Args, " "), e.Result.ExitCode, e.Result.Output())
}
