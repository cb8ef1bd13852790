package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/chzyer/readline"
)

const (
	plainPrompt  = "\033[36m>\033[0m "
	resultPrompt = "\033[32m=\033[0m "
	errorPrompt  = "\033[31m!\033[0m "
)

// completer offers prefix completions to readline.
type completer struct {
	s *Session
}

func (c completer) Do(line []rune, pos int) ([][]rune, int) {
	head := string(line[:pos])
	start, _ := wordBounds(head, len(head))
	word := head[start:]
	if word == "" {
		return nil, 0
	}
	var r [][]rune
	for _, cand := range Candidates(c.s.Constants()) {
		if cand != word && strings.HasPrefix(cand, word) {
			r = append(r, []rune(cand[len(word):]))
		}
	}
	return r, utf8.RuneCountInString(word)
}

// runPlain reads lines with readline until EOF, an interrupt on an empty line,
// or an exit command.
func runPlain(ctx context.Context, s *Session, h *History, limit int) error {
	l, err := readline.NewEx(&readline.Config{
		Prompt:                 plainPrompt,
		InterruptPrompt:        "^C",
		EOFPrompt:              "exit",
		HistorySearchFold:      true,
		HistoryLimit:           max(limit, 1),
		DisableAutoSaveHistory: true,
		AutoComplete:           completer{s},
	})
	if err != nil {
		return err
	}
	defer l.Close()
	for _, line := range h.Entries() {
		l.SaveHistory(line)
	}
	stop := context.AfterFunc(ctx, func() { l.Close() })
	defer stop()

	out := l.Stdout()
	for {
		line, err := l.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if len(line) == 0 {
				return nil
			}
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		added, err := h.Add(line)
		if err != nil {
			s.Logger().WarnContext(ctx, "could not save history", slog.Any("error", err))
		}
		if added {
			l.SaveHistory(line)
		}
		r := s.Execute(line)
		switch {
		case r.Quit:
			return nil
		case r.Clear:
			readline.ClearScreen(out)
		case r.Text == "":
		case r.Err:
			for _, msg := range strings.Split(r.Text, "\n") {
				fmt.Fprintln(out, errorPrompt+msg)
			}
		default:
			fmt.Fprintln(out, resultPrompt+r.Text)
		}
	}
}
