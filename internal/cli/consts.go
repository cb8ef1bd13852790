package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/zephyrtronium/abacus"
	"github.com/zephyrtronium/abacus/internal/log"
)

// Consts lists the constants every session starts with.
type Consts struct{}

// Run executes the consts command.
func (c *Consts) Run(ctx context.Context, g *Globals, out io.Writer) error {
	cfg, err := g.settings()
	if err != nil {
		return err
	}
	consts := abacus.NewConstants()
	if err := cfg.Apply(consts); err != nil {
		log.WarnContext(ctx, "settings applied with errors", slog.Any("error", err))
	}
	for _, name := range consts.Names() {
		v, _ := consts.Lookup(name)
		fmt.Fprintf(out, "%s = %s\n", name, v)
	}
	return nil
}
