package amqp

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	conn "github.com/ykhdr/hashbench/common/amqp/connection"
)

const (
	connectionName   = "hashbench"
	defaultHeartbeat = 10 * time.Second
)

// Dial opens a connection that reconnects on its own after broker failures.
func Dial(ctx context.Context, cfg *Config) (*conn.Connection, error) {
	props := amqp.NewConnectionProperties()
	props.SetClientConnectionName(connectionName)
	opts := amqp.Config{
		SASL: []amqp.Authentication{
			&amqp.PlainAuth{
				Username: cfg.Username,
				Password: cfg.Password,
			},
		},
		Heartbeat:  defaultHeartbeat,
		Properties: props,
	}
	return conn.NewConnection(ctx, cfg.URI, opts, cfg.ReconnectTimeout)
}
