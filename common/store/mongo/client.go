package mongo

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

func NewClient(cfg *ClientConfig) (*mongo.Client, error) {
	logOpts := options.
		Logger().
		SetSink(newLogger(log.Logger)).
		SetComponentLevel(options.LogComponentCommand, options.LogLevelDebug).
		SetComponentLevel(options.LogComponentConnection, options.LogLevelDebug)
	bsonOpts := &options.BSONOptions{
		NilSliceAsEmpty: true,
	}
	opts := options.
		Client().
		ApplyURI(cfg.URI).
		SetLoggerOptions(logOpts).
		SetBSONOptions(bsonOpts)
	if cfg.Username != "" {
		opts.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to MongoDB")
	}
	return client, nil
}

// Connect opens a client for cfg, checks the server is reachable and
// returns the configured database.
func Connect(ctx context.Context, cfg *Config) (*mongo.Client, *mongo.Database, error) {
	client, err := NewClient(&cfg.ClientConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, errors.Wrap(err, "failed to ping MongoDB")
	}
	return client, client.Database(cfg.Database), nil
}
