package repl

import (
	"context"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/zephyrtronium/abacus"
	"github.com/zephyrtronium/abacus/internal/config"
	"github.com/zephyrtronium/abacus/internal/log"
)

func newTestSession(t *testing.T, cfgPath string) *Session {
	t.Helper()
	t.Cleanup(func() { abacus.SetPrecision(abacus.DefaultPrecision) })
	return NewSession(context.Background(), config.Default(), cfgPath, log.Make(io.Discard))
}

func TestSessionExecute(t *testing.T) {
	s := newTestSession(t, "")
	steps := []struct {
		line string
		want string
		err  bool
	}{
		{"1 + 2", "3", false},
		{"x = 4", "4", false},
		{"x * 2", "8", false},
		{"  x  ", "4", false},
		{"7 / 2", "3.5", false},
		{"1/0", `^arithmetic error: 1:2: division by zero in /$`, true},
		{"2y = 5", "(?s)^syntax error: .*\n5$", true},
		{"reset", "constants reset", false},
		{"x", `undefined constant "x"`, true},
		{"prec", "precision is 50 digits", false},
		{"prec 10", "precision is 10 digits", false},
		{"1/3", "0.3333333333", false},
		{"prec zero", "precision must be a positive integer", true},
		{"prec 0", "precision must be a positive integer", true},
		{"", "", false},
	}
	for _, c := range steps {
		r := s.Execute(c.line)
		if r.Err != c.err {
			t.Errorf("%q: want error %t, got %t: %q", c.line, c.err, r.Err, r.Text)
		}
		if !regexp.MustCompile(c.want).MatchString(r.Text) {
			t.Errorf("%q: result %q does not match %q", c.line, r.Text, c.want)
		}
		if r.Quit || r.Clear {
			t.Errorf("%q: unexpected quit or clear", c.line)
		}
	}
}

func TestSessionCommands(t *testing.T) {
	s := newTestSession(t, "")
	for _, w := range []string{"exit", "quit", " quit "} {
		if r := s.Execute(w); !r.Quit {
			t.Errorf("%q: want quit", w)
		}
	}
	if r := s.Execute("clear"); !r.Clear {
		t.Error("clear: want clear")
	}
	if r := s.Execute("help"); !strings.Contains(r.Text, "Commands:") {
		t.Errorf("help: got %q", r.Text)
	}
	s.Execute("radius = 3")
	r := s.Execute("consts")
	if !strings.Contains(r.Text, "radius = 3") || !strings.Contains(r.Text, "pi = 3.14159") {
		t.Errorf("consts: got %q", r.Text)
	}
	// A command word with arguments is computed as an expression.
	if r := s.Execute("help me"); !r.Err {
		t.Errorf("help me: want error, got %q", r.Text)
	}
}

func TestSessionDemo(t *testing.T) {
	s := newTestSession(t, "")
	r := s.Execute("demo")
	if r.Input != demos[0] || r.Text != "7" {
		t.Errorf("first demo: got %q = %q", r.Input, r.Text)
	}
	r = s.Execute("demo")
	if r.Input != demos[1] || r.Text != "512" {
		t.Errorf("second demo: got %q = %q", r.Input, r.Text)
	}
	for range demos {
		if r := s.Execute("demo"); r.Err {
			t.Errorf("demo %q: %s", r.Input, r.Text)
		}
	}
}

func TestSessionSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abacus", "config.yaml")
	s := newTestSession(t, path)
	s.Execute("x = 4")
	s.Execute("prec 30")
	if r := s.Execute("save"); r.Err {
		t.Fatalf("save: %s", r.Text)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Precision != 30 {
		t.Errorf("want precision 30, got %d", cfg.Precision)
	}
	if got := cfg.Constants["x"]; got != "4" {
		t.Errorf("want x = 4, got %q", got)
	}
	if _, ok := cfg.Constants["pi"]; ok {
		t.Error("standard constant pi was saved")
	}

	n := newTestSession(t, "")
	if r := n.Execute("save"); !r.Err {
		t.Errorf("save without a settings file: got %q", r.Text)
	}
}

func TestSessionReload(t *testing.T) {
	s := newTestSession(t, "")
	s.Execute("x = 1")
	cfg := config.Default()
	cfg.Precision = 20
	cfg.Constants = map[string]string{"y": "5"}
	s.Reload(cfg)
	if r := s.Execute("x + y"); r.Text != "6" {
		t.Errorf("want 6, got %q", r.Text)
	}
	if got := abacus.Precision(); got != 20 {
		t.Errorf("want precision 20, got %d", got)
	}
	if r := s.Execute("reset"); r.Err {
		t.Fatal(r.Text)
	}
	if r := s.Execute("y"); r.Text != "5" {
		t.Errorf("reset lost reloaded constant: got %q", r.Text)
	}
}
