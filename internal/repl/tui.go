package repl

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/docker/go-units"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zephyrtronium/abacus/internal/config"
)

const prompt = "> "

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	inputStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// slow is the computation time after which the elapsed time is shown with
// the result.
const slow = time.Second

// tickEvery is how often the status line updates during a computation.
const tickEvery = 250 * time.Millisecond

// resultMsg carries the outcome of a computation.
type resultMsg struct{ r Result }

// reloadMsg carries settings reloaded from the settings file.
type reloadMsg struct {
	cfg *config.Config
	err error
}

// tickMsg updates the status line during computation number gen.
type tickMsg struct {
	gen int
	t   time.Time
}

// model is the Bubble Tea model for the interactive calculator.
type model struct {
	ctx     context.Context
	session *Session
	history *History
	input   textinput.Model

	historyIdx int

	matches      []string // completion candidates for the current word
	wordStart    int      // byte offset of the word being completed
	wordEnd      int
	suggIdx      int
	tabActive    bool
	preTabText   string
	preTabCursor int

	computing bool
	gen       int
	started   time.Time
	now       time.Time

	width    int
	quitting bool
}

const defaultWidth = 80

func newModel(ctx context.Context, s *Session, h *History) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth
	return model{
		ctx:        ctx,
		session:    s,
		history:    h,
		input:      ti,
		historyIdx: h.Len(),
		width:      defaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-len(prompt)-2, 1)
		return m, nil
	case resultMsg:
		return m.handleResult(msg.r)
	case reloadMsg:
		return m.handleReload(msg)
	case tickMsg:
		if !m.computing || msg.gen != m.gen {
			return m, nil
		}
		m.now = msg.t
		return m, tick(m.gen)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteByte('\n')
	switch {
	case m.computing:
		d := m.now.Sub(m.started)
		b.WriteString(hintStyle.Render("computing " + strings.ToLower(units.HumanDuration(d))))
	case m.tabActive:
		b.WriteString(renderCandidates(m.matches, m.suggIdx, m.width))
	case m.historyIdx < m.history.Len():
		b.WriteString(hintStyle.Render(strconv.Itoa(m.historyIdx+1) + "/" + strconv.Itoa(m.history.Len())))
	case strings.TrimSpace(m.input.Value()) == "":
		b.WriteString(hintStyle.Render("Type an expression, or help for a list of commands"))
	}
	b.WriteByte('\n')
	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true
			return m, tea.Quit
		}
		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		return m, nil
	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case tea.KeyEnter:
		if m.tabActive {
			m.tabActive = false
			return m, nil
		}
		return m.executeInput()
	case tea.KeyTab:
		return m.handleTab(1), nil
	case tea.KeyShiftTab:
		return m.handleTab(-1), nil
	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
		}
		return m, nil
	case tea.KeyUp:
		return m.historyMove(-1), nil
	case tea.KeyDown:
		return m.historyMove(1), nil
	}
	var cmd tea.Cmd
	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleTab starts or continues cycling through completions in direction dir.
func (m model) handleTab(dir int) model {
	if !m.tabActive {
		value := m.input.Value()
		pos := byteOffset(value, m.input.Position())
		m.matches, m.wordStart = Complete(value, pos, Candidates(m.session.Constants()))
		m.wordEnd = pos
		switch len(m.matches) {
		case 0:
			return m
		case 1:
			m.replaceWord(m.matches[0])
			m.matches = nil
			return m
		}
		m.tabActive = true
		m.preTabText = value
		m.preTabCursor = m.input.Position()
		m.suggIdx = 0
		if dir < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	} else {
		m.suggIdx = (m.suggIdx + dir + len(m.matches)) % len(m.matches)
	}
	m.replaceWord(m.matches[m.suggIdx])
	return m
}

// replaceWord replaces the word being completed and moves the cursor to its end.
func (m *model) replaceWord(s string) {
	value := m.input.Value()
	next := value[:m.wordStart] + s + value[m.wordEnd:]
	m.wordEnd = m.wordStart + len(s)
	m.input.SetValue(next)
	m.input.SetCursor(utf8.RuneCountInString(next[:m.wordEnd]))
}

func (m model) historyMove(dir int) model {
	i := m.historyIdx + dir
	switch {
	case i < 0:
		return m
	case i >= m.history.Len():
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
	default:
		line, _ := m.history.At(i)
		m.historyIdx = i
		m.input.SetValue(line)
		m.input.CursorEnd()
	}
	m.tabActive = false
	return m
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}
	if m.computing {
		return m, tea.Println(hintStyle.Render("computing ..."))
	}
	m.input.SetValue("")
	if _, err := m.history.Add(input); err != nil {
		m.session.Logger().WarnContext(m.ctx, "could not save history", slog.Any("error", err))
	}
	m.historyIdx = m.history.Len()
	m.computing = true
	m.gen++
	m.started = time.Now()
	m.now = m.started
	s := m.session
	compute := func() tea.Msg { return resultMsg{s.Execute(input)} }
	return m, tea.Sequence(
		tea.Println(promptStyle.Render(prompt)+inputStyle.Render(input)),
		tea.Batch(compute, tick(m.gen)),
	)
}

func (m model) handleResult(r Result) (model, tea.Cmd) {
	m.computing = false
	switch {
	case r.Quit:
		m.quitting = true
		return m, tea.Quit
	case r.Clear:
		return m, tea.ClearScreen
	case r.Text == "":
		return m, nil
	}
	style := resultStyle
	if r.Err {
		style = errorStyle
	}
	out := style.Render(r.Text)
	if r.Elapsed >= slow {
		out += "\n" + hintStyle.Render("("+strings.ToLower(units.HumanDuration(r.Elapsed))+")")
	}
	return m, tea.Println(out)
}

func (m model) handleReload(msg reloadMsg) (model, tea.Cmd) {
	if msg.err != nil {
		return m, tea.Println(errorStyle.Render("settings: " + msg.err.Error()))
	}
	m.session.Reload(msg.cfg)
	m.history.SetMax(msg.cfg.History)
	return m, tea.Println(hintStyle.Render("settings reloaded"))
}

func tick(gen int) tea.Cmd {
	return tea.Tick(tickEvery, func(t time.Time) tea.Msg { return tickMsg{gen: gen, t: t} })
}

// renderCandidates renders completion candidates on one line with the
// selected one highlighted, cut to fit width.
func renderCandidates(matches []string, sel, width int) string {
	var b strings.Builder
	n := 0
	for i, s := range matches {
		if n+len(s)+1 > width-4 {
			b.WriteString(hintStyle.Render("…"))
			break
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		if i == sel {
			b.WriteString(selectedStyle.Render(s))
		} else {
			b.WriteString(hintStyle.Render(s))
		}
		n += len(s) + 1
	}
	return b.String()
}

// byteOffset converts a rune position in s to a byte offset.
func byteOffset(s string, pos int) int {
	for i := range s {
		if pos == 0 {
			return i
		}
		pos--
	}
	return len(s)
}
