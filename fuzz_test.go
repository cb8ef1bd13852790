package abacus_test

import (
	"strings"
	"testing"

	"github.com/zephyrtronium/abacus"
)

func FuzzParse(f *testing.F) {
	f.Add("x")
	f.Add("1×2")
	f.Add("sum[i=1,10](i^2)")
	f.Add("|[3, 4]|")
	f.Fuzz(func(t *testing.T, s string) {
		abacus.Parse(strings.NewReader(s))
	})
}

func FuzzCompute(f *testing.F) {
	f.Add("x = 1 + 2")
	f.Add("1÷3")
	f.Add("product[k=1,5](k)!")
	f.Add("atan2(1, [2])")
	f.Fuzz(func(t *testing.T, s string) {
		var errs abacus.ErrorCollector
		r := abacus.ComputeWith(s, abacus.NewConstants(), &errs)
		if r == "" && !errs.HasErrors() {
			t.Errorf("%q: empty result without an error", s)
		}
	})
}
