package repl

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zephyrtronium/abacus"
	"github.com/zephyrtronium/abacus/internal/config"
	"github.com/zephyrtronium/abacus/internal/log"
)

// Result is the outcome of one line of input.
type Result struct {
	// Input is the expression which was computed. It differs from the line
	// entered for the demo command.
	Input string
	// Text is the result or the error messages.
	Text string
	// Err is set when Text holds error messages.
	Err bool
	// Quit is set when the session should end.
	Quit bool
	// Clear is set when the screen should be cleared.
	Clear bool
	// Elapsed is the time taken.
	Elapsed time.Duration
}

// Session holds the state of an interactive calculator: its constants and
// settings. A Session is not safe for concurrent use except for Reload.
type Session struct {
	ID uuid.UUID

	ctx     context.Context
	consts  *abacus.Constants
	cfg     *config.Config
	cfgPath string
	logger  log.Logger
	demo    int

	mu     sync.Mutex
	reload *config.Config
}

// NewSession creates a session using the given settings. cfgPath is where the
// save command writes them.
func NewSession(ctx context.Context, cfg *config.Config, cfgPath string, logger log.Logger) *Session {
	id := uuid.New()
	s := &Session{
		ID:      id,
		ctx:     ctx,
		cfg:     cfg,
		cfgPath: cfgPath,
		logger:  logger.With(slog.String("session", id.String())),
	}
	s.reset()
	return s
}

// Constants returns the session's constants.
func (s *Session) Constants() *abacus.Constants {
	return s.consts
}

// Logger returns the session's logger.
func (s *Session) Logger() log.Logger {
	return s.logger
}

// Reload replaces the settings before the next line is executed. Constants
// defined in the session are kept. It is safe to call concurrently with
// Execute.
func (s *Session) Reload(cfg *config.Config) {
	s.mu.Lock()
	s.reload = cfg
	s.mu.Unlock()
}

func (s *Session) applyReload() {
	s.mu.Lock()
	cfg := s.reload
	s.reload = nil
	s.mu.Unlock()
	if cfg == nil {
		return
	}
	s.cfg = cfg
	if err := cfg.Apply(s.consts); err != nil {
		s.logger.WarnContext(s.ctx, "settings reloaded with errors", slog.Any("error", err))
		return
	}
	s.logger.InfoContext(s.ctx, "settings reloaded", slog.Int("precision", cfg.Precision))
}

// reset restores the constants to the standard ones plus the configured ones.
func (s *Session) reset() {
	s.consts = abacus.NewConstants()
	if err := s.cfg.Apply(s.consts); err != nil {
		s.logger.WarnContext(s.ctx, "settings applied with errors", slog.Any("error", err))
	}
}

// Execute runs a command or computes an expression.
func (s *Session) Execute(line string) Result {
	s.applyReload()
	start := time.Now()
	line = strings.TrimSpace(line)
	r := s.execute(line)
	r.Elapsed = time.Since(start)
	s.logger.DebugContext(s.ctx, "executed",
		slog.String("input", r.Input),
		slog.Bool("error", r.Err),
		slog.Duration("elapsed", r.Elapsed),
	)
	return r
}

func (s *Session) execute(line string) Result {
	f := strings.Fields(line)
	if len(f) == 0 {
		return Result{}
	}
	switch f[0] {
	case "exit", "quit":
		if len(f) == 1 {
			return Result{Input: line, Quit: true}
		}
	case "help":
		if len(f) == 1 {
			return Result{Input: line, Text: helpText}
		}
	case "consts":
		if len(f) == 1 {
			return Result{Input: line, Text: s.listConstants()}
		}
	case "clear":
		if len(f) == 1 {
			return Result{Input: line, Clear: true}
		}
	case "reset":
		if len(f) == 1 {
			s.reset()
			return Result{Input: line, Text: "constants reset"}
		}
	case "save":
		if len(f) == 1 {
			return s.save(line)
		}
	case "prec":
		switch len(f) {
		case 1:
			return Result{Input: line, Text: "precision is " + strconv.Itoa(abacus.Precision()) + " digits"}
		case 2:
			n, err := strconv.Atoi(f[1])
			if err != nil || n < 1 {
				return Result{Input: line, Text: "precision must be a positive integer", Err: true}
			}
			abacus.SetPrecision(n)
			return Result{Input: line, Text: "precision is " + strconv.Itoa(n) + " digits"}
		}
	case "demo":
		if len(f) == 1 {
			expr := demos[s.demo%len(demos)]
			s.demo++
			return s.compute(expr)
		}
	}
	return s.compute(line)
}

func (s *Session) compute(expr string) Result {
	var errs abacus.ErrorCollector
	text := abacus.ComputeWith(expr, s.consts, &errs)
	for _, msg := range errs.Messages {
		s.logger.DebugContext(s.ctx, "computation failed", slog.String("input", expr), slog.String("message", msg))
	}
	r := Result{Input: expr, Text: text}
	if errs.HasErrors() {
		r.Err = true
		msgs := strings.Join(errs.Messages, "\n")
		if text != "" {
			msgs += "\n" + text
		}
		r.Text = msgs
	}
	return r
}

func (s *Session) listConstants() string {
	var b strings.Builder
	for i, name := range s.consts.Names() {
		if i > 0 {
			b.WriteByte('\n')
		}
		v, _ := s.consts.Lookup(name)
		fmt.Fprintf(&b, "%s = %s", name, v)
	}
	return b.String()
}

func (s *Session) save(line string) Result {
	if s.cfgPath == "" {
		return Result{Input: line, Text: "no settings file", Err: true}
	}
	cfg := *s.cfg
	cfg.Precision = abacus.Precision()
	cfg.SetConstants(s.consts)
	if err := cfg.Save(s.cfgPath); err != nil {
		return Result{Input: line, Text: "save failed: " + err.Error(), Err: true}
	}
	s.cfg = &cfg
	s.logger.InfoContext(s.ctx, "settings saved", slog.String("path", s.cfgPath))
	return Result{Input: line, Text: "saved to " + s.cfgPath}
}

// demos are shown in turn by the demo command.
var demos = []string{
	"1 + 2 * 3",
	"2^3^2",
	"100!",
	"sum[i=1,100](i)",
	"product[i=1,10](2*i - 1)",
	"sqrt(2)",
	"pi",
	"e^(pi * sqrt(163))",
	"|[3, 4]|",
	"[1, 2, 3] * [4, 5, 6]",
	"atan2(1, 1) * 4",
	"x = sin(pi / 6)",
	"2^-80",
	"-7 mod 3",
	"1 << 100",
}

const helpText = `Operators:
  A + B           A plus B
  A - B           A minus B
  A * B, A × B    A times B
  A / B, A ÷ B    A divided by B
  A ^ B           A to the power of B
  A mod B         A modulo B
  X << S          X left-shifted by S
  X >> S          X right-shifted by S
  X!              factorial of X
  | X |           absolute value or norm of X
  [A, B, ...]     vector
  sum[i=A,B](X)   sum of X for i from A to B
  product[i=A,B](X)
                  product of X for i from A to B
  name = X        define a constant

Standard constants:
  pi              the number pi ~ 3.14...
  e               Euler's number e ~ 2.71...

Functions:
  sin cos tan asin acos atan atan2(Y, X)
  sinh cosh tanh asinh acosh atanh
  sqrt exp ln log(X) log(X, B) log10 pow(B, E)
  abs ceil floor round min max rand()

Commands:
  help            show this text
  consts          list constants
  reset           forget defined constants
  save            save precision and constants to the settings file
  prec [N]        show or set the precision in digits
  demo            compute the next demonstration expression
  clear           clear the screen
  exit, quit      leave`
