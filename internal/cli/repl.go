package cli

import (
	"context"

	"github.com/zephyrtronium/abacus/internal/config"
	"github.com/zephyrtronium/abacus/internal/log"
	"github.com/zephyrtronium/abacus/internal/repl"
)

// Repl starts an interactive session.
type Repl struct {
	Plain bool `help:"Use the line-oriented interface instead of the full-screen one."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.settings()
	if err != nil {
		return err
	}
	return repl.Run(ctx, repl.Options{
		Config:     cfg,
		ConfigPath: g.Config,
		StateDir:   config.StateDir(),
		Logger:     log.Default(),
		Plain:      r.Plain,
	})
}
