package hashcrack

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/ykhdr/hashbench/internal/hashcrack/digest"
	"github.com/ykhdr/hashbench/internal/hashcrack/search"
	"github.com/ykhdr/hashbench/internal/messages/job"
	"github.com/ykhdr/hashbench/internal/metrics"
	"github.com/ykhdr/hashbench/internal/store/jobstore"
)

// Service runs at most one search at a time. Starting a new search cancels
// the active one.
type Service struct {
	l        zerolog.Logger
	engine   *search.Engine
	jobStore jobstore.JobStore
	metrics  *metrics.Metrics

	m      sync.Mutex
	active *search.Handle
}

func NewService(engine *search.Engine, jobStore jobstore.JobStore, m *metrics.Metrics) *Service {
	return &Service{
		engine:   engine,
		jobStore: jobStore,
		metrics:  m,
		l: log.With().
			Str("domain", "hashcrack").
			Str("type", "service").
			Logger(),
	}
}

// BruteForceHash validates the request and starts the search on a worker
// goroutine. ctx bounds the lifetime of the search, not of the call.
func (s *Service) BruteForceHash(ctx context.Context, hash string, maxLength int) (*search.Handle, error) {
	if _, err := search.Validate(hash, maxLength); err != nil {
		s.l.Debug().Err(err).Str("hash", hash).Int("max-length", maxLength).Msg("rejected search request")
		return nil, err
	}

	h, info, err := s.start(ctx, hash, maxLength)
	if err != nil {
		return nil, err
	}
	// the final save in track waits for this one
	registered := make(chan struct{})
	go s.track(h, info.Copy(), registered)
	s.saveJob(info)
	close(registered)
	s.l.Info().
		Str("search-id", h.ID()).
		Str("hash", hash).
		Int("max-length", maxLength).
		Msg("search started")
	return h, nil
}

// start replaces the active search with a new one.
func (s *Service) start(ctx context.Context, hash string, maxLength int) (*search.Handle, *job.Info, error) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.active != nil {
		s.l.Debug().Str("search-id", s.active.ID()).Msg("cancelling active search")
		s.active.Cancel()
	}
	h, err := s.engine.Go(ctx, hash, maxLength, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error starting search")
	}
	s.active = h
	return h, &job.Info{
		ID:        job.Id(h.ID()),
		Status:    job.StatusInProgress,
		Hash:      hash,
		MaxLength: maxLength,
		Digest:    s.engine.Digest().String(),
		CreatedAt: time.Now(),
	}, nil
}

// CancelBruteForce cancels the active search, if any.
func (s *Service) CancelBruteForce() {
	s.m.Lock()
	defer s.m.Unlock()
	if s.active == nil {
		return
	}
	s.l.Info().Str("search-id", s.active.ID()).Msg("search cancel requested")
	s.active.Cancel()
}

func (s *Service) GenerateMd5(input string) string {
	return digest.Md5Hex(input)
}

// Status returns the recorded job and, while it is still running, its
// latest progress.
func (s *Service) Status(ctx context.Context, id job.Id) (*job.Info, *search.Progress, error) {
	info, err := s.jobStore.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if info.Status.IsFinal() {
		return info, nil, nil
	}
	s.m.Lock()
	active := s.active
	s.m.Unlock()
	if active != nil && active.ID() == string(id) {
		if p, ok := active.Progress(); ok {
			return info, &p, nil
		}
	}
	return info, nil, nil
}

func (s *Service) Jobs(ctx context.Context) ([]*job.Info, error) {
	return s.jobStore.List(ctx)
}

// Active returns the handle of the running search, or nil.
func (s *Service) Active() *search.Handle {
	s.m.Lock()
	defer s.m.Unlock()
	return s.active
}

func (s *Service) track(h *search.Handle, info *job.Info, registered <-chan struct{}) {
	<-h.Done()
	<-registered
	res, err := h.Wait(context.Background())
	info.Finish(res, err, time.Now())

	l := s.l.With().Str("search-id", h.ID()).Str("status", string(info.Status)).Logger()
	if err != nil {
		l.Error().Err(err).Msg("search failed")
	} else {
		l.Info().
			Bool("found", res.Found).
			Uint64("attempts", res.Attempts).
			Int64("time-ms", res.ElapsedMillis()).
			Float64("checks-per-second", res.Rate).
			Msg("search finished")
		s.metrics.RecordSearch(context.Background(), info.Digest, res.Outcome.String(), res.Attempts, res.Rate)
	}
	s.saveJob(info)

	s.m.Lock()
	if s.active == h {
		s.active = nil
	}
	s.m.Unlock()
}

func (s *Service) saveJob(info *job.Info) {
	if err := s.jobStore.Save(context.Background(), info); err != nil {
		s.l.Warn().Err(err).Str("search-id", string(info.ID)).Msg("failed to save job")
	}
}
