// Package repl implements the interactive calculator: a full-screen terminal
// interface and a plain line-oriented one sharing a Session.
package repl

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zephyrtronium/abacus/internal/config"
	"github.com/zephyrtronium/abacus/internal/log"
)

// historyFile is the name of the history file in the state directory.
const historyFile = "history"

// Options configures Run.
type Options struct {
	// Config holds the initial settings.
	Config *config.Config
	// ConfigPath is the settings file. When it is not empty, the session
	// saves to it and reloads settings when it changes.
	ConfigPath string
	// StateDir is where history is kept. When it is empty, history is not
	// persisted.
	StateDir string
	// Logger receives diagnostics.
	Logger log.Logger
	// Plain selects the line-oriented interface.
	Plain bool
}

// Run runs an interactive session until the user leaves or ctx is done.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	s := NewSession(ctx, cfg, opts.ConfigPath, opts.Logger)
	var path string
	if opts.StateDir != "" {
		path = filepath.Join(opts.StateDir, historyFile)
	}
	h := NewHistory(path, cfg.History)
	if err := h.Load(); err != nil {
		s.Logger().WarnContext(ctx, "could not load history", slog.Any("error", err))
	}
	s.Logger().DebugContext(ctx, "session start",
		slog.String("config", opts.ConfigPath),
		slog.String("history", path),
		slog.Int("history_entries", h.Len()),
		slog.Bool("plain", opts.Plain),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.Plain {
		watch(ctx, s, opts.ConfigPath, func(cfg *config.Config, err error) {
			if err != nil {
				s.Logger().WarnContext(ctx, "could not reload settings", slog.Any("error", err))
				return
			}
			s.Reload(cfg)
			h.SetMax(cfg.History)
		})
		return runPlain(ctx, s, h, cfg.History)
	}

	p := tea.NewProgram(newModel(ctx, s, h), tea.WithContext(ctx))
	watch(ctx, s, opts.ConfigPath, func(cfg *config.Config, err error) {
		p.Send(reloadMsg{cfg: cfg, err: err})
	})
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// watch starts watching the settings file, if there is one.
func watch(ctx context.Context, s *Session, path string, fn func(*config.Config, error)) {
	if path == "" {
		return
	}
	if err := config.Watch(ctx, path, fn); err != nil {
		s.Logger().WarnContext(ctx, "could not watch settings", slog.String("path", path), slog.Any("error", err))
	}
}
