// Package search drives the enumerator across candidate lengths, hashes
// every candidate and stops on the first digest equal to the target.
package search

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/ykhdr/hashbench/internal/hashcrack/digest"
	"github.com/ykhdr/hashbench/internal/hashcrack/enumerator"
)

const (
	DefaultCheckpointEvery uint64 = 500_000
	DefaultProgressEvery   uint64 = 100_000
)

type Config struct {
	Digest digest.Type
	// CheckpointEvery is the number of attempts between two scheduler
	// checkpoints; it bounds the cancellation latency.
	CheckpointEvery uint64
	ProgressEvery   uint64
}

func DefaultConfig() Config {
	return Config{
		Digest:          digest.ParseName(digest.DefaultName()),
		CheckpointEvery: DefaultCheckpointEvery,
		ProgressEvery:   DefaultProgressEvery,
	}
}

// Engine runs searches. Every Run owns its candidate, digest context and
// counters, so one Engine may serve several searches at once.
type Engine struct {
	l               zerolog.Logger
	digestType      digest.Type
	newDigester     digest.Factory
	checkpointEvery uint64
	progressEvery   uint64
}

func NewEngine(cfg Config) *Engine {
	return newEngine(cfg, digest.NewFactory(cfg.Digest))
}

func newEngine(cfg Config, factory digest.Factory) *Engine {
	if cfg.CheckpointEvery == 0 {
		cfg.CheckpointEvery = DefaultCheckpointEvery
	}
	if cfg.ProgressEvery == 0 {
		cfg.ProgressEvery = DefaultProgressEvery
	}
	return &Engine{
		digestType:      cfg.Digest,
		newDigester:     factory,
		checkpointEvery: cfg.CheckpointEvery,
		progressEvery:   cfg.ProgressEvery,
		l: log.With().
			Str("domain", "hashcrack").
			Str("type", "engine").
			Str("digest", cfg.Digest.String()).
			Logger(),
	}
}

func (e *Engine) Digest() digest.Type {
	return e.digestType
}

func (e *Engine) CheckpointEvery() uint64 {
	return e.checkpointEvery
}

type state struct {
	attempts uint64
	start    time.Time
	length   int
}

func (s *state) elapsed() time.Duration {
	return time.Since(s.start)
}

// Run searches lengths 1..maxLength for a candidate whose digest equals
// targetHex. sched is consulted every CheckpointEvery attempts, together
// with ctx; either one stopping the search yields a cancelled result.
// progress may be nil.
func (e *Engine) Run(
	ctx context.Context,
	targetHex string,
	maxLength int,
	sched Scheduler,
	progress ProgressFunc,
) (*Result, error) {
	target, err := Validate(targetHex, maxLength)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, target, maxLength, sched, progress)
}

// RunCooperative runs the search on the calling goroutine, yielding at each
// checkpoint and polling shouldCancel.
func (e *Engine) RunCooperative(
	ctx context.Context,
	targetHex string,
	maxLength int,
	shouldCancel func() bool,
	progress ProgressFunc,
) (*Result, error) {
	return e.Run(ctx, targetHex, maxLength, Cooperative{ShouldCancel: shouldCancel}, progress)
}

func (e *Engine) run(
	ctx context.Context,
	target Target,
	maxLength int,
	sched Scheduler,
	progress ProgressFunc,
) (*Result, error) {
	l := e.l.With().Hex("target", target[:]).Int("max-length", maxLength).Logger()
	l.Debug().Msg("search started")

	d := e.newDigester()
	st := &state{start: time.Now()}
	buf := make([]byte, 0, maxLength)
	var sum [digest.Size]byte
	untilCheckpoint := e.checkpointEvery
	untilProgress := e.progressEvery

	for length := 1; length <= maxLength; length++ {
		st.length = length
		c := enumerator.Initial(length)
		for {
			buf = enumerator.Render(c, buf)
			if err := d.Digest(&sum, buf); err != nil {
				l.Error().Err(err).Uint64("attempts", st.attempts).Msg("digest failed")
				return nil, errors.Wrapf(err, "digest candidate %q", buf)
			}
			st.attempts++
			if Target(sum) == target {
				return e.finish(l, st, OutcomeFound, string(buf)), nil
			}

			if progress != nil {
				untilProgress--
				if untilProgress == 0 {
					untilProgress = e.progressEvery
					progress(Progress{
						Attempts: st.attempts,
						Current:  string(buf),
						Rate:     Rate(st.attempts, st.elapsed().Milliseconds()),
					})
				}
			}

			untilCheckpoint--
			if untilCheckpoint == 0 {
				untilCheckpoint = e.checkpointEvery
				if sched.Pause() || ctx.Err() != nil {
					return e.finish(l, st, OutcomeCancelled, ""), nil
				}
			}

			if !enumerator.Increment(c) {
				break
			}
		}
		l.Debug().Int("length", length).Uint64("attempts", st.attempts).Msg("length exhausted")
	}
	return e.finish(l, st, OutcomeExhausted, ""), nil
}

func (e *Engine) finish(l zerolog.Logger, st *state, outcome Outcome, plaintext string) *Result {
	res := newResult(outcome, plaintext, st.attempts, st.elapsed())
	l.Debug().
		Stringer("outcome", outcome).
		Int("length", st.length).
		Uint64("attempts", res.Attempts).
		Int64("time-ms", res.ElapsedMillis()).
		Float64("checks-per-second", res.Rate).
		Msg("search finished")
	return res
}
