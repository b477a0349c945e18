package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

type settlement struct {
	acked   bool
	nacked  bool
	requeue bool
}

// recordingAcknowledger captures how a delivery was settled.
type recordingAcknowledger struct {
	got settlement
}

func (a *recordingAcknowledger) Ack(uint64, bool) error {
	a.got.acked = true
	return nil
}

func (a *recordingAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.got.nacked = true
	a.got.requeue = requeue
	return nil
}

func (a *recordingAcknowledger) Reject(_ uint64, requeue bool) error {
	return a.Nack(0, false, requeue)
}

type message struct {
	Value string `json:"value"`
}

func TestConsumer_Settlement(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		handler Handler[message]
		want    settlement
	}{
		{
			name:    "handled",
			body:    `{"value":"x"}`,
			handler: func(context.Context, *message) error { return nil },
			want:    settlement{acked: true},
		},
		{
			name:    "failed",
			body:    `{"value":"x"}`,
			handler: func(context.Context, *message) error { return errors.New("bad request") },
			want:    settlement{nacked: true},
		},
		{
			name: "interrupted",
			body: `{"value":"x"}`,
			handler: func(context.Context, *message) error {
				return pkgerrors.Wrap(ErrRequeue, "shutting down")
			},
			want: settlement{nacked: true, requeue: true},
		},
		{
			name:    "panicked",
			body:    `{"value":"x"}`,
			handler: func(context.Context, *message) error { panic("boom") },
			want:    settlement{nacked: true},
		},
		{
			name:    "undecodable",
			body:    `{`,
			handler: func(context.Context, *message) error { return nil },
			want:    settlement{nacked: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New[message](nil, tt.handler, &Config{Unmarshal: json.Unmarshal, Queue: "q"}).(*consumer[message])
			ack := &recordingAcknowledger{}
			c.deliver(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte(tt.body)})
			assert.Equal(t, tt.want, ack.got)
		})
	}
}
