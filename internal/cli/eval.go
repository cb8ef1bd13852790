package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/zephyrtronium/abacus"
	"github.com/zephyrtronium/abacus/internal/log"
)

// Eval computes expressions given as arguments or read from input.
type Eval struct {
	Exprs []string `arg:""      help:"Expressions to compute."                                                   name:"expr" optional:""`
	In    string   `            help:"Input file, or - for stdin. Stdin is read when no expressions are given." placeholder:"FILE"`
	Lines bool     `short:"n"   help:"Compute each line of input as a separate expression."`
	Given []string `            help:"Define a constant before computing. May be repeated."                      placeholder:"NAME=VALUE" sep:"none"`
	Echo  bool     `            help:"Print the parse tree of each expression before its result."`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context, g *Globals, in io.Reader, out io.Writer) error {
	cfg, err := g.settings()
	if err != nil {
		return err
	}
	consts := abacus.NewConstants()
	if err := cfg.Apply(consts); err != nil {
		log.WarnContext(ctx, "settings applied with errors", slog.Any("error", err))
	}
	for _, d := range e.Given {
		if err := define(consts, d); err != nil {
			return err
		}
	}

	exprs, err := e.inputs(in)
	if err != nil {
		return err
	}

	logger := log.Default()
	failed := 0
	for i, expr := range exprs {
		bad := false
		sink := log.Sink(ctx, logger, slog.Int("index", i), slog.String("input", expr))
		errs := abacus.ErrorFunc(func(msg string) {
			bad = true
			sink.Error(msg)
		})
		if e.Echo {
			if tree := abacus.ParseExpression(expr, nil); tree != nil {
				fmt.Fprintf(out, "%v : ", tree)
			}
		}
		r := abacus.ComputeWith(expr, consts, errs)
		if r != "" || e.Echo {
			fmt.Fprintln(out, r)
		}
		if bad {
			failed++
		}
	}
	if failed > 0 {
		return ErrFailed.With(
			slog.Int("failed", failed),
			slog.Int("total", len(exprs)),
		)
	}
	return nil
}

// inputs collects the expressions to compute.
func (e *Eval) inputs(stdin io.Reader) ([]string, error) {
	var exprs []string
	if e.In != "" || len(e.Exprs) == 0 {
		text, err := readInput(e.In, stdin)
		if err != nil {
			return nil, ErrInput.With(slog.String("file", e.In)).Wrap(err)
		}
		if e.Lines {
			for line := range strings.Lines(text) {
				if line = strings.TrimSpace(line); line != "" {
					exprs = append(exprs, line)
				}
			}
		} else if text = strings.TrimSpace(text); text != "" {
			exprs = append(exprs, text)
		}
	}
	return append(exprs, e.Exprs...), nil
}

func readInput(name string, stdin io.Reader) (string, error) {
	var r io.Reader
	switch name {
	case "", "-":
		r = stdin
	default:
		f, err := os.Open(name)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(r)
	return string(b), err
}

// define computes the value of a NAME=VALUE definition and sets it.
func define(consts *abacus.Constants, d string) error {
	name, value, ok := strings.Cut(d, "=")
	name, value = strings.TrimSpace(name), strings.TrimSpace(value)
	if !ok {
		return ErrGiven.With(slog.String("given", d)).Wrap(fmt.Errorf("definitions must be NAME=VALUE, not %s", strconv.Quote(d)))
	}
	if !abacus.ValidIdent(name) {
		return ErrGiven.With(slog.String("given", d)).Wrap(fmt.Errorf("invalid name %s", strconv.Quote(name)))
	}
	var errs abacus.ErrorCollector
	r := abacus.ComputeWith(value, consts, &errs)
	if errs.HasErrors() {
		return ErrGiven.With(slog.String("given", d)).Wrap(fmt.Errorf("%s", strings.Join(errs.Messages, "; ")))
	}
	consts.Set(name, r)
	return nil
}
