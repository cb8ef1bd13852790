package repl

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	return newModel(context.Background(), newTestSession(t, ""), NewHistory("", 10))
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	r, cmd := m.Update(msg)
	n, ok := r.(model)
	if !ok {
		t.Fatalf("Update returned %T", r)
	}
	return n, cmd
}

func typeText(t *testing.T, m model, s string) model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func TestModelExecute(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "1+2")
	if got := m.input.Value(); got != "1+2" {
		t.Fatalf("want input 1+2, got %q", got)
	}
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Error("enter gave no command")
	}
	if !m.computing {
		t.Error("not computing after enter")
	}
	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}
	if m.history.Len() != 1 {
		t.Errorf("want 1 history entry, got %d", m.history.Len())
	}
	if !strings.Contains(m.View(), "computing") {
		t.Errorf("view does not show computation: %q", m.View())
	}

	// Input while computing is refused.
	m = typeText(t, m, "x")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.input.Value() != "x" || m.history.Len() != 1 {
		t.Errorf("input accepted during computation: %q, %d entries", m.input.Value(), m.history.Len())
	}

	m, cmd = update(t, m, resultMsg{Result{Input: "1+2", Text: "3"}})
	if m.computing {
		t.Error("still computing after result")
	}
	if cmd == nil {
		t.Error("result gave no command")
	}
	m, _ = update(t, m, tickMsg{gen: m.gen})
	if m.computing {
		t.Error("tick restarted computation")
	}

	m, _ = update(t, m, resultMsg{Result{Quit: true}})
	if !m.quitting || m.View() != "" {
		t.Errorf("want quitting with empty view, got %t, %q", m.quitting, m.View())
	}
}

func TestModelComplete(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "1 + sq")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if got := m.input.Value(); got != "1 + sqrt" {
		t.Errorf("single completion: got %q", got)
	}
	if m.tabActive {
		t.Error("single completion left cycling active")
	}

	m = newTestModel(t)
	m = typeText(t, m, "co")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if !m.tabActive {
		t.Fatal("cycling not active")
	}
	first := m.input.Value()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	second := m.input.Value()
	if first == second || !strings.HasPrefix(first, "co") || !strings.HasPrefix(second, "co") {
		t.Errorf("cycling gave %q then %q", first, second)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if got := m.input.Value(); got != first {
		t.Errorf("shift-tab: want %q, got %q", first, got)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if got := m.input.Value(); got != "co" || m.tabActive {
		t.Errorf("esc: want co restored, got %q (cycling %t)", got, m.tabActive)
	}
}

func TestModelHistory(t *testing.T) {
	m := newTestModel(t)
	for _, line := range []string{"1", "2"} {
		if _, err := m.history.Add(line); err != nil {
			t.Fatal(err)
		}
	}
	m.historyIdx = m.history.Len()
	steps := []struct {
		key  tea.KeyType
		want string
	}{
		{tea.KeyUp, "2"},
		{tea.KeyUp, "1"},
		{tea.KeyUp, "1"},
		{tea.KeyDown, "2"},
		{tea.KeyDown, ""},
	}
	for i, s := range steps {
		m, _ = update(t, m, tea.KeyMsg{Type: s.key})
		if got := m.input.Value(); got != s.want {
			t.Errorf("step %d: want %q, got %q", i, s.want, got)
		}
	}
}

func TestModelQuitKeys(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "12")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if m.quitting || m.input.Value() != "" {
		t.Errorf("ctrl-c with input: quitting %t, input %q", m.quitting, m.input.Value())
	}
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	if !m.quitting || cmd == nil {
		t.Error("ctrl-d on empty input did not quit")
	}
}

func TestRenderCandidates(t *testing.T) {
	got := renderCandidates([]string{"cos", "cosh", "consts"}, 1, 80)
	for _, w := range []string{"cos", "cosh", "consts"} {
		if !strings.Contains(got, w) {
			t.Errorf("missing %q in %q", w, got)
		}
	}
	if got := renderCandidates([]string{strings.Repeat("x", 100)}, 0, 20); !strings.Contains(got, "…") {
		t.Errorf("long candidate not cut: %q", got)
	}
}

func TestByteOffset(t *testing.T) {
	cases := []struct {
		s    string
		pos  int
		want int
	}{
		{"abc", 0, 0},
		{"abc", 2, 2},
		{"abc", 3, 3},
		{"πr", 1, 2},
		{"πr", 2, 3},
	}
	for _, c := range cases {
		if got := byteOffset(c.s, c.pos); got != c.want {
			t.Errorf("byteOffset(%q, %d): want %d, got %d", c.s, c.pos, c.want, got)
		}
	}
}
