package cli

import (
	"context"

	"github.com/ykhdr/hashbench/internal/hashcrack/search"
)

// runSearch runs one search in the requested regime. Cancelling ctx stops
// it at the next checkpoint in either regime.
func runSearch(
	ctx context.Context,
	engine *search.Engine,
	regime search.Regime,
	hash string,
	maxLength int,
	progress search.ProgressFunc,
) (*search.Result, error) {
	switch regime {
	case search.CooperativeRegime:
		return engine.RunCooperative(ctx, hash, maxLength, func() bool { return ctx.Err() != nil }, progress)
	default:
		h, err := engine.Go(context.WithoutCancel(ctx), hash, maxLength, progress)
		if err != nil {
			return nil, err
		}
		select {
		case <-h.Done():
		case <-ctx.Done():
			h.Cancel()
		}
		return h.Wait(context.Background())
	}
}
