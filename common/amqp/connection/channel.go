package connection

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Channel is reopened on the owning Connection after the broker closes it.
type Channel struct {
	l    zerolog.Logger
	conn *Connection

	m        sync.RWMutex
	ch       *amqp.Channel
	prefetch int
	closed   atomic.Bool

	reconnectTimeout time.Duration
	cancel           context.CancelFunc
}

func (ch *Channel) Channel() *amqp.Channel {
	ch.m.RLock()
	defer ch.m.RUnlock()
	return ch.ch
}

func (ch *Channel) IsClosed() bool {
	return ch.closed.Load()
}

func (ch *Channel) Close() error {
	if !ch.closed.CompareAndSwap(false, true) {
		return ErrChannelClosed
	}
	ch.cancel()
	if err := ch.Channel().Close(); err != nil {
		return errors.Wrap(err, "failed to close amqp channel")
	}
	return nil
}

// Qos limits the number of unacknowledged deliveries. The limit is applied
// again whenever the channel is reopened.
func (ch *Channel) Qos(prefetch int) error {
	ch.m.Lock()
	defer ch.m.Unlock()
	if err := ch.ch.Qos(prefetch, 0, false); err != nil {
		return errors.Wrap(err, "failed to set qos")
	}
	ch.prefetch = prefetch
	return nil
}

// DeclareQueue declares a durable queue.
func (ch *Channel) DeclareQueue(name string) error {
	if _, err := ch.Channel().QueueDeclare(name, true, false, false, false, nil); err != nil {
		return errors.Wrapf(err, "failed to declare queue %s", name)
	}
	return nil
}

// Consume streams deliveries from queue and resubscribes after a channel
// reconnect. The returned channel is closed once ctx is done or the Channel
// is closed.
func (ch *Channel) Consume(ctx context.Context, queue, consumer string) <-chan amqp.Delivery {
	deliveries := make(chan amqp.Delivery)
	go ch.consume(ctx, deliveries, queue, consumer)
	return deliveries
}

func (ch *Channel) consume(ctx context.Context, out chan<- amqp.Delivery, queue, consumer string) {
	defer close(out)
	for {
		if ctx.Err() != nil || ch.IsClosed() {
			return
		}
		in, err := ch.Channel().ConsumeWithContext(ctx, queue, consumer, false, false, false, false, nil)
		if err != nil {
			ch.l.Error().Err(err).Str("queue", queue).Msg("failed to consume")
			select {
			case <-ctx.Done():
				return
			case <-time.After(ch.reconnectTimeout):
			}
			continue
		}
		for d := range in {
			select {
			case out <- d:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (ch *Channel) Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error {
	if err := ch.Channel().PublishWithContext(ctx, exchange, key, false, false, msg); err != nil {
		return errors.Wrap(err, "failed to publish")
	}
	return nil
}

func (ch *Channel) watch(ctx context.Context) {
	for {
		notify := ch.Channel().NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-ctx.Done():
			ch.l.Debug().Msg("watcher stopped")
			return
		case amqpErr, ok := <-notify:
			if ch.closed.Load() {
				ch.l.Debug().Msg("watcher stopped")
				return
			}
			if ok {
				ch.l.Warn().Err(amqpErr).Msg("channel closed, reopening")
			}
			next, reopened := redial(ctx, ch.reconnectTimeout, ch.closed.Load, func() (*amqp.Channel, error) {
				return ch.conn.Connection().Channel()
			}, ch.l)
			if !reopened {
				return
			}
			ch.m.Lock()
			ch.ch = next
			if ch.prefetch > 0 {
				if err := next.Qos(ch.prefetch, 0, false); err != nil {
					ch.l.Warn().Err(err).Msg("failed to restore qos")
				}
			}
			ch.m.Unlock()
			ch.l.Info().Msg("amqp channel reopened")
		}
	}
}
