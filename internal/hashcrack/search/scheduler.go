package search

import (
	"runtime"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Scheduler is consulted at every checkpoint of a running search. Pause may
// hand control back to the host and reports whether the search must stop.
type Scheduler interface {
	Pause() (stop bool)
}

// Cooperative runs the search on the caller's goroutine. Yield is called at
// every checkpoint (runtime.Gosched when nil) and ShouldCancel is polled
// right after it.
type Cooperative struct {
	Yield        func()
	ShouldCancel func() bool
}

func (c Cooperative) Pause() bool {
	if c.Yield != nil {
		c.Yield()
	} else {
		runtime.Gosched()
	}
	return c.ShouldCancel != nil && c.ShouldCancel()
}

// flagScheduler backs the dedicated worker regime: the controller flips the
// flag from another goroutine and the search observes it at the next
// checkpoint.
type flagScheduler struct {
	cancelled *atomic.Bool
}

func (s flagScheduler) Pause() bool {
	return s.cancelled.Load()
}

type Regime int

const (
	WorkerRegime Regime = iota
	CooperativeRegime
)

const (
	workerRegimeName      = "worker"
	cooperativeRegimeName = "cooperative"
)

func ParseRegime(name string) (Regime, error) {
	switch name {
	case workerRegimeName, "":
		return WorkerRegime, nil
	case cooperativeRegimeName:
		return CooperativeRegime, nil
	default:
		return WorkerRegime, errors.Errorf("unknown regime %q", name)
	}
}

func (r Regime) String() string {
	if r == CooperativeRegime {
		return cooperativeRegimeName
	}
	return workerRegimeName
}

func Regimes() []Regime {
	return []Regime{WorkerRegime, CooperativeRegime}
}
