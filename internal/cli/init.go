package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/zephyrtronium/abacus/internal/config"
	"github.com/zephyrtronium/abacus/internal/log"
)

// Init writes a default settings file.
type Init struct {
	Force bool `help:"Overwrite an existing settings file." short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context, g *Globals, out io.Writer) error {
	_, err := os.Stat(g.Config)
	switch {
	case err == nil && !i.Force:
		return ErrExists.With(slog.String("file", g.Config))
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return ErrWrite.With(slog.String("file", g.Config)).Wrap(err)
	}
	cfg := config.Default()
	if g.Precision > 0 {
		cfg.Precision = g.Precision
	}
	if err := cfg.Save(g.Config); err != nil {
		return ErrWrite.With(slog.String("file", g.Config)).Wrap(err)
	}
	log.DebugContext(ctx, "initialized settings file", slog.String("path", g.Config))
	fmt.Fprintln(out, "wrote", g.Config)
	return nil
}
