package repl

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"github.com/zephyrtronium/abacus"
)

// commands are the words the session handles itself.
var commands = []string{"clear", "consts", "demo", "exit", "help", "prec", "quit", "reset", "save"}

// keywords are the words which introduce folds.
var keywords = []string{"product", "sum"}

// Candidates lists every word which completion may offer: builtin functions,
// fold keywords, the given constants, and commands.
func Candidates(c *abacus.Constants) []string {
	r := abacus.Builtins()
	r = append(r, keywords...)
	if c != nil {
		r = append(r, c.Names()...)
	}
	r = append(r, commands...)
	slices.Sort(r)
	return slices.Compact(r)
}

// wordBounds finds the identifier ending at byte offset pos in line.
func wordBounds(line string, pos int) (start, end int) {
	start = pos
	for start > 0 {
		r, n := utf8.DecodeLastRuneInString(line[:start])
		if !isIdentRune(r) {
			break
		}
		start -= n
	}
	return start, pos
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Complete finds the words which could complete the identifier ending at pos
// in line. Words with the identifier as a prefix come first, followed by
// fuzzy matches by score. The identifier's start offset is returned with the
// matches.
func Complete(line string, pos int, candidates []string) ([]string, int) {
	start, end := wordBounds(line, pos)
	word := line[start:end]
	if word == "" {
		return nil, start
	}
	var prefix, rest []string
	seen := make(map[string]bool)
	for _, c := range candidates {
		if c != word && strings.HasPrefix(c, word) {
			prefix = append(prefix, c)
			seen[c] = true
		}
	}
	for _, m := range fuzzy.Find(word, candidates) {
		if !seen[m.Str] && m.Str != word {
			rest = append(rest, m.Str)
			seen[m.Str] = true
		}
	}
	return append(prefix, rest...), start
}
