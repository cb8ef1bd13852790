// Package profile runs the pprof profilers of github.com/pkg/profile for the
// abacus commands.
package profile

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dc0d/onexit"
	"github.com/pkg/profile"
)

var modes = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"clock":     profile.ClockProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// Modes returns the names of the profiling modes in sorted order.
func Modes() []string {
	r := make([]string, 0, len(modes))
	for m := range modes {
		r = append(r, m)
	}
	sort.Strings(r)
	return r
}

// Stopper stops a profiler and writes its profile.
type Stopper interface {
	Stop()
}

type ignore struct{}

func (ignore) Stop() {}

// once makes Stop idempotent, since it runs both when the command returns and
// from the exit hook.
type once struct {
	sync.Once
	p Stopper
}

func (o *once) Stop() { o.Do(o.p.Stop) }

// Start starts profiling in the given mode, writing the profile to dir. An
// empty mode does nothing. The profile is also written if the process exits
// through onexit.ForceExit before Stop is called.
func Start(mode, dir string, quiet bool) (Stopper, error) {
	if mode == "" {
		return ignore{}, nil
	}
	m, ok := modes[mode]
	if !ok {
		return nil, fmt.Errorf("unknown profiling mode %q", mode)
	}
	opts := []func(*profile.Profile){m, profile.NoShutdownHook}
	if dir != "" {
		opts = append(opts, profile.ProfilePath(dir))
	}
	if quiet {
		opts = append(opts, profile.Quiet)
	}
	p := &once{p: profile.Start(opts...)}
	onexit.Register(p.Stop)
	return p, nil
}
