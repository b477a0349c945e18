package hashcrack

import (
	"context"
	"encoding/xml"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/ykhdr/hashbench/common/amqp"
	amqpconn "github.com/ykhdr/hashbench/common/amqp/connection"
	"github.com/ykhdr/hashbench/common/amqp/consumer"
	"github.com/ykhdr/hashbench/common/amqp/publisher"
	"github.com/ykhdr/hashbench/internal/hashcrack/search"
	"github.com/ykhdr/hashbench/internal/messages/job"
	"github.com/ykhdr/hashbench/pkg/api"
)

const consumerTag = "hashbench"

// QueueConsumer takes search requests from the job queue, runs them through
// the Service and publishes the outcome.
type QueueConsumer struct {
	l            zerolog.Logger
	service      *Service
	amqpConn     *amqpconn.Connection
	consumerCfg  *consumer.Config
	publisherCfg *publisher.Config

	amqpPublisher publisher.Publisher[api.BruteForceResponse]
}

func NewQueueConsumer(service *Service, cfg *amqp.Config, amqpConn *amqpconn.Connection) *QueueConsumer {
	defaults := amqp.DefaultConfig()
	if cfg.ConsumerConfig == nil {
		cfg.ConsumerConfig = defaults.ConsumerConfig
	}
	if cfg.PublisherConfig == nil {
		cfg.PublisherConfig = defaults.PublisherConfig
	}
	return &QueueConsumer{
		service:      service,
		amqpConn:     amqpConn,
		consumerCfg:  cfg.ConsumerConfig.ToConsumerConfig(xml.Unmarshal, consumerTag),
		publisherCfg: cfg.PublisherConfig.ToPublisherConfig(xml.Marshal, "application/xml"),
		l: log.With().
			Str("domain", "hashcrack").
			Str("type", "queue").
			Logger(),
	}
}

// Start blocks while consuming requests.
func (q *QueueConsumer) Start(ctx context.Context) error {
	ch, err := q.amqpConn.Channel(ctx)
	if err != nil {
		q.l.Warn().Err(err).Msg("Error create amqp channel")
		return errors.Wrap(err, "error create amqp channel")
	}
	defer func() { _ = ch.Close() }()
	q.amqpPublisher = publisher.New[api.BruteForceResponse](ch, q.publisherCfg)
	q.l.Info().Str("queue", q.consumerCfg.Queue).Msg("Queue consumer is running")
	return consumer.New[api.BruteForceRequest](ch, q.receive, q.consumerCfg).Subscribe(ctx)
}

func (q *QueueConsumer) receive(ctx context.Context, req *api.BruteForceRequest) error {
	resp, err := q.process(ctx, req)
	if err != nil {
		return err
	}
	return q.amqpPublisher.SendMessage(ctx, resp, publisher.Persistent)
}

// process runs one request to completion. Invalid requests are answered
// with an error response instead of being dropped. A request interrupted by
// ctx gets no response and an error wrapping consumer.ErrRequeue, so it is
// delivered again.
func (q *QueueConsumer) process(ctx context.Context, req *api.BruteForceRequest) (*api.BruteForceResponse, error) {
	l := q.l.With().Str("request-id", req.RequestId).Logger()
	l.Debug().Str("hash", req.Hash).Int("max-length", req.MaxLength).Msg("processing queued request")
	resp := &api.BruteForceResponse{RequestId: req.RequestId}

	h, err := q.service.BruteForceHash(ctx, req.Hash, req.MaxLength)
	if err != nil {
		l.Warn().Err(err).Msg("queued request rejected")
		resp.Status = string(job.StatusError)
		resp.ErrorReason = err.Error()
		return resp, nil
	}
	resp.SearchId = h.ID()

	res, err := h.Wait(ctx)
	if err != nil {
		h.Cancel()
		l.Warn().Err(err).Msg("queued search interrupted")
		return nil, errors.Wrapf(consumer.ErrRequeue, "request %s: %v", req.RequestId, err)
	}
	if res.Outcome == search.OutcomeCancelled && ctx.Err() != nil {
		l.Warn().Msg("queued search interrupted")
		return nil, errors.Wrapf(consumer.ErrRequeue, "request %s: %v", req.RequestId, ctx.Err())
	}
	info := &job.Info{}
	info.Finish(res, nil, time.Now())
	resp.Status = string(info.Status)
	resp.Result = info.Result
	return resp, nil
}
