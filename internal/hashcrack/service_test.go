package hashcrack

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ykhdr/hashbench/internal/hashcrack/digest"
	"github.com/ykhdr/hashbench/internal/hashcrack/enumerator"
	"github.com/ykhdr/hashbench/internal/hashcrack/search"
	"github.com/ykhdr/hashbench/internal/messages/job"
	"github.com/ykhdr/hashbench/internal/metrics"
	"github.com/ykhdr/hashbench/internal/store/jobstore"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/mock/gomock"
)

func newTestService(t *testing.T, store jobstore.JobStore) *Service {
	t.Helper()
	m, err := metrics.New(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	engine := search.NewEngine(search.Config{
		Digest:          digest.ResetDigestType,
		CheckpointEvery: 1000,
		ProgressEvery:   1000,
	})
	return NewService(engine, store, m)
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func waitForStatus(t *testing.T, store jobstore.JobStore, id string, want job.Status) *job.Info {
	t.Helper()
	var info *job.Info
	require.Eventually(t, func() bool {
		got, err := store.Get(context.Background(), job.Id(id))
		if err != nil {
			return false
		}
		info = got
		return got.Status == want
	}, 10*time.Second, 5*time.Millisecond)
	return info
}

func TestService_BruteForceHashFound(t *testing.T) {
	store := jobstore.NewMemoryStore()
	s := newTestService(t, store)

	h, err := s.BruteForceHash(context.Background(), digest.Md5Hex("ab"), 2)
	require.NoError(t, err)
	res, err := h.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "ab", res.Plaintext)
	assert.Equal(t, uint64(62+10*62+11+1), res.Attempts)

	info := waitForStatus(t, store, h.ID(), job.StatusFound)
	require.NotNil(t, info.Result)
	assert.Equal(t, "ab", info.Result.Plaintext)
	assert.Equal(t, res.Attempts, info.Result.Attempts)
	assert.Equal(t, "md5-reset", info.Digest)
	assert.False(t, info.FinishedAt.IsZero())
	assert.Eventually(t, func() bool { return s.Active() == nil }, time.Second, time.Millisecond)
}

func TestService_BruteForceHashExhausted(t *testing.T) {
	store := jobstore.NewMemoryStore()
	s := newTestService(t, store)

	h, err := s.BruteForceHash(context.Background(), digest.Md5Hex("zzz"), 2)
	require.NoError(t, err)
	res, err := h.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, uint64(62+62*62), res.Attempts)
	waitForStatus(t, store, h.ID(), job.StatusNotFound)
}

func TestService_InvalidInputDoesNotCancelActive(t *testing.T) {
	s := newTestService(t, jobstore.NewMemoryStore())

	running, err := s.BruteForceHash(context.Background(), digest.Md5Hex("ZZZZZ"), 5)
	require.NoError(t, err)
	defer s.CancelBruteForce()

	_, err = s.BruteForceHash(context.Background(), "abc", 2)
	assert.True(t, errors.Is(err, search.ErrInvalidInput))
	_, err = s.BruteForceHash(context.Background(), digest.Md5Hex("a"), 0)
	assert.True(t, errors.Is(err, search.ErrInvalidInput))

	assert.False(t, running.Cancelled())
	assert.Same(t, running, s.Active())
}

func TestService_NewSearchReplacesActive(t *testing.T) {
	store := jobstore.NewMemoryStore()
	s := newTestService(t, store)

	first, err := s.BruteForceHash(context.Background(), digest.Md5Hex("ZZZZZ"), 5)
	require.NoError(t, err)
	second, err := s.BruteForceHash(context.Background(), digest.Md5Hex("ab"), 2)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), second.ID())
	assert.True(t, first.Cancelled())

	ctx := waitCtx(t)
	firstRes, err := first.Wait(ctx)
	require.NoError(t, err)
	assert.False(t, firstRes.Found)
	assert.Equal(t, search.OutcomeCancelled, firstRes.Outcome)
	assert.Less(t, firstRes.Attempts, enumerator.TotalCombinations(5))

	secondRes, err := second.Wait(ctx)
	require.NoError(t, err)
	assert.True(t, secondRes.Found)

	cancelled := waitForStatus(t, store, first.ID(), job.StatusCancelled)
	require.NotNil(t, cancelled.Result)
	assert.False(t, cancelled.Result.Found)
	assert.Empty(t, cancelled.Result.Plaintext)
	assert.Equal(t, firstRes.Attempts, cancelled.Result.Attempts)
}

func TestService_CancelBruteForce(t *testing.T) {
	store := jobstore.NewMemoryStore()
	s := newTestService(t, store)

	// no active search: no-op
	s.CancelBruteForce()

	h, err := s.BruteForceHash(context.Background(), digest.Md5Hex("ZZZZZ"), 5)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, ok := h.Progress()
		return ok
	}, 10*time.Second, time.Millisecond)

	s.CancelBruteForce()
	s.CancelBruteForce()

	res, err := h.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Empty(t, res.Plaintext)
	assert.Greater(t, res.Attempts, uint64(0))
	assert.Less(t, res.Attempts, enumerator.TotalCombinations(5))

	waitForStatus(t, store, h.ID(), job.StatusCancelled)
	assert.Eventually(t, func() bool { return s.Active() == nil }, time.Second, time.Millisecond)
	s.CancelBruteForce()
}

func TestService_StatusReportsProgressWhileRunning(t *testing.T) {
	store := jobstore.NewMemoryStore()
	s := newTestService(t, store)

	h, err := s.BruteForceHash(context.Background(), digest.Md5Hex("ZZZZZ"), 5)
	require.NoError(t, err)
	defer s.CancelBruteForce()

	require.Eventually(t, func() bool {
		info, p, err := s.Status(context.Background(), job.Id(h.ID()))
		return err == nil && info.Status == job.StatusInProgress && p != nil && p.Attempts > 0
	}, 10*time.Second, time.Millisecond)

	_, _, err = s.Status(context.Background(), "missing")
	assert.ErrorIs(t, err, jobstore.NotFoundErr)
}

func TestService_GenerateMd5(t *testing.T) {
	s := newTestService(t, jobstore.NewMemoryStore())
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", s.GenerateMd5(""))
	assert.Equal(t, "187ef4436122d1cc2f40dc2b92f0eba0", s.GenerateMd5("ab"))
}

func TestService_StoreFailureDoesNotFailSearch(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := jobstore.NewMockJobStore(ctrl)
	saved := make(chan *job.Info, 2)
	store.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, info *job.Info) error {
			saved <- info.Copy()
			return errors.New("mongo unavailable")
		}).
		Times(2)

	s := newTestService(t, store)
	h, err := s.BruteForceHash(context.Background(), digest.Md5Hex("a"), 1)
	require.NoError(t, err)
	res, err := h.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.True(t, res.Found)

	first := <-saved
	assert.Equal(t, job.StatusInProgress, first.Status)
	select {
	case last := <-saved:
		assert.Equal(t, job.StatusFound, last.Status)
		assert.Equal(t, "a", last.Result.Plaintext)
	case <-time.After(10 * time.Second):
		t.Fatal("final job state was not saved")
	}
}

func TestService_Jobs(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := jobstore.NewMockJobStore(ctrl)
	want := []*job.Info{{ID: "x", Status: job.StatusFound}}
	store.EXPECT().List(gomock.Any()).Return(want, nil)

	s := newTestService(t, store)
	got, err := s.Jobs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestService_SlowStoreDoesNotBlockCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := jobstore.NewMockJobStore(ctrl)
	saving := make(chan struct{})
	release := make(chan struct{})
	var (
		m        sync.Mutex
		statuses []job.Status
		once     sync.Once
	)
	store.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, info *job.Info) error {
			if info.Status == job.StatusInProgress {
				once.Do(func() { close(saving) })
				<-release
			}
			m.Lock()
			statuses = append(statuses, info.Status)
			m.Unlock()
			return nil
		}).
		Times(2)

	s := newTestService(t, store)
	started := make(chan *search.Handle, 1)
	go func() {
		h, err := s.BruteForceHash(context.Background(), digest.Md5Hex("ZZZZZ"), 5)
		assert.NoError(t, err)
		started <- h
	}()
	<-saving

	cancelled := make(chan struct{})
	go func() {
		s.CancelBruteForce()
		close(cancelled)
	}()
	select {
	case <-cancelled:
	case <-time.After(5 * time.Second):
		t.Fatal("CancelBruteForce waited for the job store")
	}

	close(release)
	h := <-started
	require.NotNil(t, h)
	res, err := h.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, search.OutcomeCancelled, res.Outcome)

	require.Eventually(t, func() bool {
		m.Lock()
		defer m.Unlock()
		return len(statuses) == 2
	}, 10*time.Second, time.Millisecond)
	assert.Equal(t, []job.Status{job.StatusInProgress, job.StatusCancelled}, statuses)
}
