package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"schemaflow/internal/config"
	"schemaflow/internal/output"
)

// SchemaCompiler is the subset of toolchain.Compiler used by Update.
type SchemaCompiler interface {
	Ensure(ctx context.Context) error
	Compile(ctx context.Context, language, input, output string) error
}

// Update regenerates every configured target: it makes sure the compiler
// is available, deletes the previously generated files, runs the compiler
// and rebuilds the index of the output tree. The first failure stops the run.
func Update(ctx context.Context, schema *config.SchemaConfig, compiler SchemaCompiler, logger zerolog.Logger) error {
	if err := compiler.Ensure(ctx); err != nil {
		return err
	}

	for _, t := range schema.Targets {
		log := logger.With().Str("language", t.Language).Str("output", t.Output).Logger()

		removed, err := output.Clean(t.Output, *t.Extension)
		if err != nil {
			return err
		}
		log.Info().Int("removed", len(removed)).Msg("deleted old schemas")

		if err := compiler.Compile(ctx, t.Language, t.Input, t.Output); err != nil {
			return err
		}

		if _, err := Index(ctx, t.Output, IndexOptions{
			Renderer: *t.Renderer,
			Ext:      *t.Extension,
			Name:     *t.Index,
		}, log); err != nil {
			return err
		}
	}
	return nil
}
