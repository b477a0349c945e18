package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/ykhdr/hashbench/common/amqp/connection"
)

type DeliveryMode uint8

const (
	Transient  = DeliveryMode(amqp.Transient)
	Persistent = DeliveryMode(amqp.Persistent)
)

type Marshal func(any) ([]byte, error)

type Config struct {
	Exchange    string
	RoutingKey  string
	Marshal     Marshal
	ContentType string
}

type Publisher[T any] interface {
	SendMessage(ctx context.Context, message *T, mode DeliveryMode) error
}

type publisher[T any] struct {
	cfg *Config
	ch  *connection.Channel
	l   zerolog.Logger
}

func New[T any](ch *connection.Channel, cfg *Config) Publisher[T] {
	if cfg.Marshal == nil {
		cfg.Marshal = json.Marshal
	}
	if cfg.ContentType == "" {
		cfg.ContentType = "application/json"
	}
	return &publisher[T]{
		cfg: cfg,
		ch:  ch,
		l: log.With().
			Str("domain", "amqp").
			Str("type", "publisher").
			Type("message", *new(T)).
			Str("exchange", cfg.Exchange).
			Str("routing-key", cfg.RoutingKey).
			Logger(),
	}
}

func (p *publisher[T]) SendMessage(ctx context.Context, message *T, mode DeliveryMode) error {
	body, err := p.cfg.Marshal(message)
	if err != nil {
		p.l.Error().Err(err).Msg("failed to marshal message")
		return errors.Wrap(err, "failed to marshal message")
	}
	msg := amqp.Publishing{
		DeliveryMode: uint8(mode),
		ContentType:  p.cfg.ContentType,
		Timestamp:    time.Now(),
		Body:         body,
	}
	if err = p.ch.Publish(ctx, p.cfg.Exchange, p.cfg.RoutingKey, msg); err != nil {
		p.l.Error().Err(err).Msg("failed to send message")
		return errors.Wrap(err, "failed to send message")
	}
	p.l.Debug().Int("bytes", len(body)).Msg("message sent")
	return nil
}
