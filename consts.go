package abacus

import (
	"math/big"
	"sort"
	"sync"

	"github.com/zephyrtronium/bigfloat"
)

// The digits of π and e to 100 significant digits.
const (
	piText = "3.141592653589793238462643383279502884197169399375105820974944592307816406286208998628034825342117068"
	eText  = "2.718281828459045235360287471352662497757247093699959574966967627724076630353547594571382178525166427"
)

// stdDigits is the number of significant digits in piText and eText.
const stdDigits = 100

// StdConstants returns the standard constants pi and e written with at least
// the given number of significant digits.
func StdConstants(digits int) map[string]string {
	if digits <= stdDigits {
		return map[string]string{"pi": piText, "e": eText}
	}
	prec := precBits(digits + 10)
	pi := bigfloat.Pi(new(big.Float).SetPrec(prec))
	one := new(big.Float).SetPrec(prec).SetInt64(1)
	e := bigfloat.Exp(new(big.Float).SetPrec(prec), one)
	return map[string]string{
		"pi": pi.Text('f', digits+9),
		"e":  e.Text('f', digits+9),
	}
}

// Constants is a mutable set of named constants. Each constant is stored as
// the text of its value, so that it carries its own precision. A Constants
// is safe for concurrent use, but evaluation is not atomic with respect to
// other changes.
type Constants struct {
	mu    sync.RWMutex
	names map[string]string
}

// ConstOption is an option used when creating a constant set.
type ConstOption interface {
	constOption(*Constants)
}

type (
	constopt struct {
		name, text string
	}
	constsopt map[string]string
	nostdopt  struct{}
)

func (o constopt) constOption(c *Constants) { c.names[o.name] = o.text }

func (o constsopt) constOption(c *Constants) {
	for k, v := range o {
		c.names[k] = v
	}
}

func (nostdopt) constOption(c *Constants) { clear(c.names) }

// WithConstant defines a constant in a new constant set.
func WithConstant(name, text string) ConstOption {
	return constopt{name, text}
}

// WithConstants defines any number of constants in a new constant set.
func WithConstants(m map[string]string) ConstOption {
	return constsopt(m)
}

// WithoutStd removes all constants defined before it, including pi and e.
func WithoutStd() ConstOption {
	return nostdopt{}
}

// NewConstants creates a constant set holding pi and e at the current
// precision, then applies options in order.
func NewConstants(opts ...ConstOption) *Constants {
	c := Constants{names: StdConstants(Precision())}
	for _, opt := range opts {
		if opt != nil {
			opt.constOption(&c)
		}
	}
	return &c
}

// Lookup returns the text of a constant.
func (c *Constants) Lookup(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.names[name]
	return s, ok
}

// Set defines or replaces a constant. Returns c for chaining.
func (c *Constants) Set(name, text string) *Constants {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.names == nil {
		c.names = make(map[string]string)
	}
	c.names[name] = text
	return c
}

// Delete removes a constant.
func (c *Constants) Delete(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.names, name)
}

// Reset removes every constant and restores pi and e at the current
// precision.
func (c *Constants) Reset() {
	std := StdConstants(Precision())
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = std
}

// Len returns the number of constants.
func (c *Constants) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}

// Names returns the names of all constants in sorted order.
func (c *Constants) Names() []string {
	c.mu.RLock()
	r := make([]string, 0, len(c.names))
	for k := range c.names {
		r = append(r, k)
	}
	c.mu.RUnlock()
	sort.Strings(r)
	return r
}

// Map returns a copy of all constants.
func (c *Constants) Map() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r := make(map[string]string, len(c.names))
	for k, v := range c.names {
		r[k] = v
	}
	return r
}

// Clone creates a copy of a constant set and applies options to it.
func (c *Constants) Clone(opts ...ConstOption) *Constants {
	n := Constants{names: c.Map()}
	for _, opt := range opts {
		if opt != nil {
			opt.constOption(&n)
		}
	}
	return &n
}
