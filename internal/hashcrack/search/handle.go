package search

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// Handle controls one search running in the dedicated worker regime. The
// cancellation flag belongs to this search only.
type Handle struct {
	id        string
	cancelled atomic.Bool
	progress  atomic.Pointer[Progress]
	done      chan struct{}
	result    *Result
	err       error
}

func newHandle() *Handle {
	return &Handle{
		id:   uuid.NewString(),
		done: make(chan struct{}),
	}
}

func (h *Handle) ID() string {
	return h.id
}

// Cancel requests a stop at the next checkpoint. It is safe to call more
// than once and after the search has finished.
func (h *Handle) Cancel() {
	h.cancelled.Store(true)
}

func (h *Handle) Cancelled() bool {
	return h.cancelled.Load()
}

func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the search finishes or ctx is done. An expired ctx does
// not cancel the search.
func (h *Handle) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Progress returns the latest snapshot reported by the search.
func (h *Handle) Progress() (Progress, bool) {
	p := h.progress.Load()
	if p == nil {
		return Progress{}, false
	}
	return *p, true
}

// Go validates the arguments and starts the search on its own goroutine.
// ctx bounds the lifetime of the search as well.
func (e *Engine) Go(ctx context.Context, targetHex string, maxLength int, progress ProgressFunc) (*Handle, error) {
	target, err := Validate(targetHex, maxLength)
	if err != nil {
		return nil, err
	}
	h := newHandle()
	report := func(p Progress) {
		h.progress.Store(&p)
		if progress != nil {
			progress(p)
		}
	}
	go func() {
		defer close(h.done)
		h.result, h.err = e.run(ctx, target, maxLength, flagScheduler{cancelled: &h.cancelled}, report)
	}()
	return h, nil
}
