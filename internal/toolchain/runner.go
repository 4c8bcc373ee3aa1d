// Package toolchain runs the external programs schemaflow orchestrates: the
// schema compiler and the database migrator.
package toolchain

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"schemaflow/internal/errs"
)

// Command is one subprocess invocation.
type Command struct {
	Name string
	Args []string
	// Quiet discards the child's stdout and stderr; used for presence probes.
	Quiet bool
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner starts commands and waits for them.
//
// Run returns *errs.ToolNotFoundError when the program cannot be found and
// *errs.ExternalToolError when it fails to start or exits nonzero.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands with os/exec, forwarding their output.
type ExecRunner struct {
	Logger zerolog.Logger
	Dir    string
	Stdout io.Writer // defaults to os.Stdout
	Stderr io.Writer // defaults to os.Stderr
}

func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	path, err := exec.LookPath(c.Name)
	if err != nil {
		return &errs.ToolNotFoundError{Tool: c.Name, Err: err}
	}

	cmd := exec.CommandContext(ctx, path, c.Args...)
	cmd.Dir = r.Dir
	cmd.Stdout, cmd.Stderr = r.Stdout, r.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if c.Quiet {
		cmd.Stdout, cmd.Stderr = io.Discard, io.Discard
	}

	r.Logger.Debug().Str("cmd", c.String()).Msg("exec")
	if err := cmd.Run(); err != nil {
		out := &errs.ExternalToolError{Tool: c.Name, Args: c.Args, Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			out.Err = ctxErr
			out.ExitCode = 0
		}
		return out
	}
	return nil
}

// Probe reports whether the program named by cmd can be launched. A program
// that starts but exits nonzero still counts as present.
func Probe(ctx context.Context, r Runner, cmd Command) (bool, error) {
	cmd.Quiet = true
	err := r.Run(ctx, cmd)
	if err == nil {
		return true, nil
	}
	var notFound *errs.ToolNotFoundError
	if errors.As(err, &notFound) {
		return false, nil
	}
	var toolErr *errs.ExternalToolError
	if errors.As(err, &toolErr) && toolErr.ExitCode != 0 {
		return true, nil
	}
	return false, err
}
