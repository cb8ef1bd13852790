package repl

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// History is a bounded list of input lines persisted to a file. A line equal
// to the previous one is not recorded again.
type History struct {
	path    string
	max     int
	mu      sync.RWMutex
	entries []string
}

// NewHistory creates a history keeping at most max lines in the file at path.
// An empty path keeps the history in memory only.
func NewHistory(path string, max int) *History {
	return &History{path: path, max: max}
}

// Load reads the history file. A missing file is an empty history.
func (h *History) Load() error {
	if h.path == "" {
		return nil
	}
	f, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = h.entries[:0]
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || len(h.entries) > 0 && h.entries[len(h.entries)-1] == line {
			continue
		}
		h.entries = append(h.entries, line)
	}
	h.trim()
	return sc.Err()
}

// Add records a line. It reports whether the line was recorded; empty lines
// and repeats of the last line are not.
func (h *History) Add(line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) > 0 && h.entries[len(h.entries)-1] == line {
		return false, nil
	}
	h.entries = append(h.entries, line)
	h.trim()
	return true, h.write()
}

// SetMax changes the number of lines kept.
func (h *History) SetMax(max int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.max = max
	h.trim()
}

// Len returns the number of lines.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// At returns the line at index i, where 0 is the oldest.
func (h *History) At(i int) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if i < 0 || i >= len(h.entries) {
		return "", false
	}
	return h.entries[i], true
}

// Entries returns a copy of all lines, oldest first.
func (h *History) Entries() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]string(nil), h.entries...)
}

// trim drops the oldest lines beyond max. h.mu must be held.
func (h *History) trim() {
	if h.max >= 0 && len(h.entries) > h.max {
		h.entries = append(h.entries[:0], h.entries[len(h.entries)-h.max:]...)
	}
}

// write replaces the history file. h.mu must be held.
func (h *History) write() error {
	if h.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o700); err != nil {
		return err
	}
	var b strings.Builder
	for _, e := range h.entries {
		b.WriteString(e)
		b.WriteByte('\n')
	}
	return os.WriteFile(h.path, []byte(b.String()), 0o600)
}
