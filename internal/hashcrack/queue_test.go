package hashcrack

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ykhdr/hashbench/common/amqp"
	"github.com/ykhdr/hashbench/common/amqp/consumer"
	"github.com/ykhdr/hashbench/internal/hashcrack/digest"
	"github.com/ykhdr/hashbench/internal/messages/job"
	"github.com/ykhdr/hashbench/internal/store/jobstore"
	"github.com/ykhdr/hashbench/pkg/api"
)

func newTestQueue(t *testing.T) *QueueConsumer {
	t.Helper()
	return NewQueueConsumer(newTestService(t, jobstore.NewMemoryStore()), amqp.DefaultConfig(), nil)
}

func TestQueueConsumer_DefaultsMissingBlocks(t *testing.T) {
	q := NewQueueConsumer(newTestService(t, jobstore.NewMemoryStore()), &amqp.Config{}, nil)
	assert.Equal(t, "hashbench.requests", q.consumerCfg.Queue)
	assert.Equal(t, consumerTag, q.consumerCfg.Consumer)
	assert.Equal(t, "hashbench.results", q.publisherCfg.RoutingKey)
	assert.Equal(t, "application/xml", q.publisherCfg.ContentType)
}

func TestQueueConsumer_ProcessFound(t *testing.T) {
	q := newTestQueue(t)

	resp, err := q.process(waitCtx(t), &api.BruteForceRequest{
		RequestId: "r-1",
		Hash:      digest.Md5Hex("ab"),
		MaxLength: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "r-1", resp.RequestId)
	assert.NotEmpty(t, resp.SearchId)
	assert.Equal(t, string(job.StatusFound), resp.Status)
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Result.Found)
	assert.Equal(t, "ab", resp.Result.Plaintext)
	assert.Equal(t, uint64(694), resp.Result.Attempts)
}

func TestQueueConsumer_ProcessNotFound(t *testing.T) {
	q := newTestQueue(t)

	resp, err := q.process(waitCtx(t), &api.BruteForceRequest{
		RequestId: "r-2",
		Hash:      digest.Md5Hex("zzz"),
		MaxLength: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, string(job.StatusNotFound), resp.Status)
	require.NotNil(t, resp.Result)
	assert.False(t, resp.Result.Found)
	assert.Equal(t, uint64(62), resp.Result.Attempts)
}

func TestQueueConsumer_ProcessInvalid(t *testing.T) {
	q := newTestQueue(t)

	tests := []struct {
		name string
		req  *api.BruteForceRequest
	}{
		{name: "short hash", req: &api.BruteForceRequest{RequestId: "x", Hash: "abc", MaxLength: 2}},
		{name: "non hex", req: &api.BruteForceRequest{RequestId: "x", Hash: "zz" + digest.Md5Hex("a")[2:], MaxLength: 2}},
		{name: "zero length", req: &api.BruteForceRequest{RequestId: "x", Hash: digest.Md5Hex("a"), MaxLength: 0}},
		{name: "too long", req: &api.BruteForceRequest{RequestId: "x", Hash: digest.Md5Hex("a"), MaxLength: 11}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := q.process(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, string(job.StatusError), resp.Status)
			assert.NotEmpty(t, resp.ErrorReason)
			assert.Empty(t, resp.SearchId)
			assert.Nil(t, resp.Result)
		})
	}
}

func TestQueueConsumer_ProcessCancelledByNewSearch(t *testing.T) {
	q := newTestQueue(t)

	done := make(chan *api.BruteForceResponse, 1)
	go func() {
		resp, err := q.process(context.Background(), &api.BruteForceRequest{
			RequestId: "long",
			Hash:      digest.Md5Hex("ZZZZZ"),
			MaxLength: 5,
		})
		assert.NoError(t, err)
		done <- resp
	}()
	require.Eventually(t, func() bool { return q.service.Active() != nil }, 5*time.Second, time.Millisecond)
	q.service.CancelBruteForce()

	select {
	case resp := <-done:
		assert.Equal(t, string(job.StatusCancelled), resp.Status)
		require.NotNil(t, resp.Result)
		assert.False(t, resp.Result.Found)
	case <-time.After(10 * time.Second):
		t.Fatal("cancelled request did not finish")
	}
}

func TestQueueConsumer_ProcessInterruptedIsRequeued(t *testing.T) {
	q := newTestQueue(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-time.After(20 * time.Millisecond)
		cancel()
	}()
	resp, err := q.process(ctx, &api.BruteForceRequest{
		RequestId: "shutdown",
		Hash:      digest.Md5Hex("ZZZZZ"),
		MaxLength: 5,
	})
	assert.Nil(t, resp)
	require.ErrorIs(t, err, consumer.ErrRequeue)
	assert.Contains(t, err.Error(), "shutdown")

	require.Eventually(t, func() bool { return q.service.Active() == nil }, 10*time.Second, time.Millisecond)
}
