package toolchain

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"schemaflow/internal/errs"
)

// Compiler drives the external schema compiler.
type Compiler struct {
	Name    string // binary name, e.g. "packetc"
	Install string // command line run once when Name is missing; "" disables installation
	Runner  Runner
	Logger  zerolog.Logger
}

// Ensure makes sure the compiler can be launched, running the install
// command at most once.
func (c *Compiler) Ensure(ctx context.Context) error {
	c.Logger.Info().Str("compiler", c.Name).Msg("checking for compiler")
	ok, err := Probe(ctx, c.Runner, Command{Name: c.Name, Args: []string{"--help"}})
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	fields := strings.Fields(c.Install)
	if len(fields) == 0 {
		return &errs.ToolNotFoundError{Tool: c.Name, Hint: "no install command configured"}
	}
	install := Command{Name: fields[0], Args: fields[1:]}
	c.Logger.Info().Str("compiler", c.Name).Str("cmd", install.String()).Msg("compiler not found, installing")
	if err := c.Runner.Run(ctx, install); err != nil {
		var notFound *errs.ToolNotFoundError
		if errors.As(err, &notFound) {
			notFound.Hint = "required to install " + c.Name
		}
		return err
	}

	ok, err = Probe(ctx, c.Runner, Command{Name: c.Name, Args: []string{"--help"}})
	if err != nil {
		return err
	}
	if !ok {
		return &errs.ToolNotFoundError{Tool: c.Name, Hint: "still missing after running " + install.String()}
	}
	return nil
}

// Compile runs `<compiler> <language> <input> <output>`.
func (c *Compiler) Compile(ctx context.Context, language, input, output string) error {
	c.Logger.Info().
		Str("language", language).
		Str("input", input).
		Str("output", output).
		Msg("generating schemas")
	return c.Runner.Run(ctx, Command{Name: c.Name, Args: []string{language, input, output}})
}
