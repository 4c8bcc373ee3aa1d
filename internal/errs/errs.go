// Package errs defines the error taxonomy shared by the schemaflow workflows.
//
// Every failure is terminal: callers propagate these errors up to the CLI,
// which prints them and exits nonzero. Nothing in this module retries.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// ToolNotFoundError reports an external binary missing from PATH.
type ToolNotFoundError struct {
	Tool string
	Hint string // optional remediation text shown to the user
	Err  error
}

func (e *ToolNotFoundError) Error() string {
	msg := fmt.Sprintf("%s not found", e.Tool)
	if e.Hint != "" {
		msg += ": " + e.Hint
	}
	return msg
}

func (e *ToolNotFoundError) Unwrap() error { return e.Err }

// ConfigError reports a missing or invalid configuration value.
type ConfigError struct {
	Field string
	Msg   string
	Err   error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config")
	if e.Field != "" {
		b.WriteString(" ")
		b.WriteString(e.Field)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// IOError reports a filesystem failure while scanning, cleaning or writing.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ExternalToolError reports a nonzero exit (or failed start) of a subprocess.
type ExternalToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Err      error
}

func (e *ExternalToolError) Error() string {
	cmd := strings.TrimSpace(e.Tool + " " + strings.Join(e.Args, " "))
	if e.ExitCode != 0 {
		return fmt.Sprintf("%s: exit status %d", cmd, e.ExitCode)
	}
	return fmt.Sprintf("%s: %v", cmd, e.Err)
}

func (e *ExternalToolError) Unwrap() error { return e.Err }

// StaleError lists index artifacts whose on-disk content differs from a fresh build.
type StaleError struct {
	Paths []string
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("%d index artifact(s) out of date: %s", len(e.Paths), strings.Join(e.Paths, ", "))
}

// IO wraps err as an IOError unless it is nil or already one.
func IO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return err
	}
	return &IOError{Op: op, Path: path, Err: err}
}
