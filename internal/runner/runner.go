// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runner executes the external single-purpose tools the
// conversion pipeline is built from. It centralizes the distinction
// between a tool that is absent from the system and a tool that ran
// and failed, so call sites never inspect exec errors directly.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Result holds the captured outcome of one tool invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Invocation describes one external tool run.
type Invocation struct {
	// Tool is the binary name or path.
	Tool string

	// Args are the command-line arguments, in order.
	Args []string

	// Dir is the working directory for the process. Empty means the
	// current directory.
	Dir string

	// Stdout, when set, receives the process standard output instead of
	// Result.Stdout. Used when a tool writes a large artifact to stdout
	// that should stream to a file rather than sit in memory.
	Stdout io.Writer
}

// Runner executes external tools synchronously. A started process runs
// to completion: cancellation takes effect before launch, never by
// signalling the child.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (Result, error)
}

// NotFoundError indicates the tool binary could not be located. There
// is no fallback: a missing tool is fatal for the stage that needs it.
type NotFoundError struct {
	Tool string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found: %v", e.Tool, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// ExitError indicates the tool ran and exited non-zero. Stderr carries
// the tool's own diagnostic text verbatim. Failing tools are assumed to
// fail deterministically on identical input, so nothing retries.
type ExitError struct {
	Tool     string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("tool %q exited with status %d", e.Tool, e.ExitCode)
	if detail := strings.TrimSpace(e.Stderr); detail != "" {
		msg += ": " + detail
	}
	return msg
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct{}

// Run resolves the tool, executes it, and captures stdout and stderr.
// It returns a *NotFoundError when the binary cannot be located and a
// *ExitError when the process exits non-zero. A cancelled context stops
// the invocation only before launch; a process that has started is
// never signalled, so a tool is not torn down mid-write and its exit
// status stays meaningful.
func (ExecRunner) Run(ctx context.Context, inv Invocation) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	path, err := exec.LookPath(inv.Tool)
	if err != nil {
		return Result{}, &NotFoundError{Tool: inv.Tool, Err: err}
	}

	cmd := exec.Command(path, inv.Args...)
	cmd.Dir = inv.Dir

	var stdout, stderr bytes.Buffer
	if inv.Stdout != nil {
		cmd.Stdout = inv.Stdout
	} else {
		cmd.Stdout = &stdout
	}
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, &ExitError{Tool: inv.Tool, ExitCode: res.ExitCode, Stderr: res.Stderr}
		}
		return res, fmt.Errorf("running %s: %w", inv.Tool, runErr)
	}

	return res, nil
}

// LookPath reports whether the tool binary can be located, returning
// its resolved path. Used by the tools command for availability checks.
func LookPath(tool string) (string, error) {
	path, err := exec.LookPath(tool)
	if err != nil {
		return "", &NotFoundError{Tool: tool, Err: err}
	}
	return path, nil
}
