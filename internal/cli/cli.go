// Package cli implements the abacus command line.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/zephyrtronium/abacus/internal/config"
	"github.com/zephyrtronium/abacus/internal/log"
)

const description = "An arbitrary-precision calculator."

// CLI is the top-level command line interface for abacus.
type CLI struct {
	Globals

	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Eval   Eval   `cmd:"" default:"withargs" help:"Compute expressions."`
	Repl   Repl   `cmd:""                    help:"Start an interactive session."`
	Consts Consts `cmd:""                    help:"List the constants every session starts with."`
	Init   Init   `cmd:""                    help:"Write a default settings file."`
}

// Globals holds the flags shared by all commands.
type Globals struct {
	Config    string `default:"${configPath}" help:"Settings file."                                                   type:"path"`
	Precision int    `default:"0"             help:"Significant digits of float results, overriding the settings file." short:"p"`
}

// settings loads the settings file and applies flag overrides.
func (g *Globals) settings() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, ErrSettings.With(slog.String("file", g.Config)).Wrap(err)
	}
	switch {
	case g.Precision > 0:
		cfg.Precision = g.Precision
	case g.Precision < 0:
		return nil, ErrPrecision.With(slog.Int("precision", g.Precision))
	}
	return cfg, nil
}

// Run executes the abacus command line with the given arguments. The exit
// function is called when parsing ends the program, as for --help.
func Run(ctx context.Context, exit func(code int), args ...string) error {
	return run(ctx, exit, os.Stdin, os.Stdout, args...)
}

func run(ctx context.Context, exit func(code int), in io.Reader, out io.Writer, args ...string) error {
	var cli CLI

	vars := kong.Vars{
		"configPath": config.Path(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	parser, err := kong.New(&cli,
		kong.Name(config.Name),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.Writers(out, os.Stderr),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.BindTo(in, (*io.Reader)(nil)),
		kong.BindTo(out, (*io.Writer)(nil)),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				NoExpandSubcommands: true,
			}),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cli.Log.start(ctx)
	defer cli.Pprof.start(ctx)()

	log.DebugContext(ctx, "command",
		slog.String("command", ktx.Command()),
		slog.String("config", cli.Config),
	)
	return ktx.Run(&cli.Globals)
}
