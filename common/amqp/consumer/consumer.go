package consumer

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"runtime/debug"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/ykhdr/hashbench/common/amqp/connection"
)

// ErrRequeue makes the consumer return the delivery to the queue instead of
// dropping it. Handlers wrap it when they were interrupted before finishing.
var ErrRequeue = stderrors.New("requeue message")

type Unmarshal func(data []byte, v any) error

// Handler processes one decoded message. The delivery is acknowledged when
// the handler returns nil, requeued for an ErrRequeue error and rejected
// without requeue otherwise.
type Handler[T any] func(ctx context.Context, data *T) error

type Config struct {
	Unmarshal Unmarshal
	Queue     string
	Consumer  string
	Prefetch  int
	Declare   bool
}

type Consumer interface {
	Subscribe(ctx context.Context) error
}

type consumer[T any] struct {
	cfg     *Config
	ch      *connection.Channel
	handler Handler[T]
	l       zerolog.Logger
}

func New[T any](ch *connection.Channel, handler Handler[T], cfg *Config) Consumer {
	if handler == nil {
		handler = func(context.Context, *T) error { return nil }
	}
	if cfg.Unmarshal == nil {
		cfg.Unmarshal = json.Unmarshal
	}
	return &consumer[T]{
		ch:      ch,
		handler: handler,
		cfg:     cfg,
		l: log.With().
			Str("domain", "amqp").
			Str("type", "consumer").
			Type("message", *new(T)).
			Str("queue", cfg.Queue).
			Logger(),
	}
}

// Subscribe consumes until ctx is done or the channel is closed.
func (c *consumer[T]) Subscribe(ctx context.Context) error {
	if c.cfg.Declare {
		if err := c.ch.DeclareQueue(c.cfg.Queue); err != nil {
			return err
		}
	}
	if c.cfg.Prefetch > 0 {
		if err := c.ch.Qos(c.cfg.Prefetch); err != nil {
			return err
		}
	}
	msgCh := c.ch.Consume(ctx, c.cfg.Queue, c.cfg.Consumer)
	c.l.Debug().Msg("consumer connected")
	for {
		select {
		case <-ctx.Done():
			c.l.Debug().Msg("consumer stopped")
			return nil
		case d, ok := <-msgCh:
			if !ok {
				c.l.Debug().Msg("consumer closed")
				return nil
			}
			c.deliver(ctx, d)
		}
	}
}

func (c *consumer[T]) deliver(ctx context.Context, d amqp.Delivery) {
	c.l.Debug().Str("message-id", d.MessageId).Msg("got new message")
	var data T
	if err := c.cfg.Unmarshal(d.Body, &data); err != nil {
		c.l.Error().Err(err).Msg("failed to unmarshal message, dropping it")
		c.settle(d, err)
		return
	}
	c.settle(d, c.handle(ctx, &data))
}

func (c *consumer[T]) handle(ctx context.Context, data *T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.l.Error().Msgf("catch panic: %v\n%s", r, string(debug.Stack()))
			err = errors.Errorf("handler panic: %v", r)
		}
	}()
	return c.handler(ctx, data)
}

func (c *consumer[T]) settle(d amqp.Delivery, handleErr error) {
	var err error
	switch {
	case handleErr == nil:
		err = d.Ack(false)
	case stderrors.Is(handleErr, ErrRequeue):
		c.l.Warn().Err(handleErr).Msg("message interrupted, requeueing")
		err = d.Nack(false, true)
	default:
		c.l.Error().Err(handleErr).Msg("failed to consume message")
		err = d.Nack(false, false)
	}
	if err != nil {
		c.l.Warn().Err(err).Msg("failed to settle delivery")
	}
}
