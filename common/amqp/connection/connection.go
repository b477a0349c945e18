package connection

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrConnClosed    = stderrors.New("connection is already closed")
	ErrChannelClosed = stderrors.New("channel is already closed")
)

// Connection wraps an amqp connection and redials it when the broker drops
// it, until Close is called.
type Connection struct {
	l    zerolog.Logger
	uri  string
	opts amqp.Config

	m      sync.RWMutex
	conn   *amqp.Connection
	closed atomic.Bool

	reconnectTimeout time.Duration
	cancel           context.CancelFunc
}

func NewConnection(
	ctx context.Context,
	uri string,
	opts amqp.Config,
	reconnectTimeout time.Duration,
) (*Connection, error) {
	c, err := amqp.DialConfig(uri, opts)
	if err != nil {
		return nil, errors.Wrap(err, "error dial amqp connection")
	}
	ctx, cancel := context.WithCancel(ctx)
	conn := &Connection{
		uri:              uri,
		opts:             opts,
		conn:             c,
		cancel:           cancel,
		reconnectTimeout: reconnectTimeout,
		l:                log.With().Str("domain", "amqp").Str("type", "connection").Logger(),
	}
	go conn.watch(ctx)
	return conn, nil
}

func (c *Connection) Connection() *amqp.Connection {
	c.m.RLock()
	defer c.m.RUnlock()
	return c.conn
}

func (c *Connection) IsClosed() bool {
	return c.closed.Load()
}

func (c *Connection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrConnClosed
	}
	c.cancel()
	if err := c.Connection().Close(); err != nil {
		return errors.Wrap(err, "error close amqp connection")
	}
	return nil
}

func (c *Connection) watch(ctx context.Context) {
	for {
		notify := c.Connection().NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-ctx.Done():
			c.l.Debug().Msg("watcher stopped")
			return
		case amqpErr, ok := <-notify:
			if !ok || c.closed.Load() {
				c.l.Debug().Msg("watcher stopped")
				return
			}
			c.l.Warn().Err(amqpErr).Msg("connection lost, reconnecting")
			next, ok := redial(ctx, c.reconnectTimeout, c.closed.Load, func() (*amqp.Connection, error) {
				return amqp.DialConfig(c.uri, c.opts)
			}, c.l)
			if !ok {
				return
			}
			c.m.Lock()
			c.conn = next
			c.m.Unlock()
			c.l.Info().Msg("amqp connection restored")
		}
	}
}

// redial retries open every timeout until it succeeds, ctx is done or
// stopped reports true.
func redial[T any](
	ctx context.Context,
	timeout time.Duration,
	stopped func() bool,
	open func() (T, error),
	l zerolog.Logger,
) (T, bool) {
	var zero T
	for {
		if stopped() {
			return zero, false
		}
		v, err := open()
		if err == nil {
			return v, true
		}
		l.Warn().Err(err).Dur("retry-in", timeout).Msg("reconnect failed")
		select {
		case <-ctx.Done():
			return zero, false
		case <-time.After(timeout):
		}
	}
}

func (c *Connection) Channel(ctx context.Context) (*Channel, error) {
	amqpCh, err := c.Connection().Channel()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open channel")
	}
	ctx, cancel := context.WithCancel(ctx)
	ch := &Channel{
		ch:               amqpCh,
		conn:             c,
		reconnectTimeout: c.reconnectTimeout,
		cancel:           cancel,
		l:                log.With().Str("domain", "amqp").Str("type", "channel").Logger(),
	}
	go ch.watch(ctx)
	return ch, nil
}
