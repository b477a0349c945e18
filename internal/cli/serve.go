package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/ykhdr/hashbench/common/amqp"
	"github.com/ykhdr/hashbench/common/consul"
	"github.com/ykhdr/hashbench/common/store/mongo"
	"github.com/ykhdr/hashbench/config"
	"github.com/ykhdr/hashbench/internal/hashcrack"
	"github.com/ykhdr/hashbench/internal/hashcrack/search"
	"github.com/ykhdr/hashbench/internal/metrics"
	"github.com/ykhdr/hashbench/internal/net"
	"github.com/ykhdr/hashbench/internal/server/api"
	"github.com/ykhdr/hashbench/internal/store/jobstore"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName            = "hashbench"
	metricsShutdownTimeout = 5 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve [config.kdl]",
		Short: "Run the HTTP API and, when configured, the queue consumer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.InitializeConfig(args)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.BenchConfig) error {
	engineCfg, err := cfg.SearchConfig.EngineConfig()
	if err != nil {
		return err
	}
	engine := search.NewEngine(engineCfg)

	store, closeStore, err := newJobStore(ctx, cfg.MongoConfig)
	if err != nil {
		return err
	}
	defer closeStore()

	meter, shutdownMetrics, err := newMeter(ctx, cfg.MetricsConfig)
	if err != nil {
		return err
	}
	defer shutdownMetrics()

	m, err := metrics.New(meter)
	if err != nil {
		return errors.Wrap(err, "error create metrics")
	}
	service := hashcrack.NewService(engine, store, m)
	defer service.CancelBruteForce()

	var queue *hashcrack.QueueConsumer
	if cfg.AmqpConfig != nil {
		amqpConn, err := amqp.Dial(ctx, cfg.AmqpConfig)
		if err != nil {
			return errors.Wrap(err, "error connect to amqp")
		}
		defer func() { _ = amqpConn.Close() }()
		queue = hashcrack.NewQueueConsumer(service, cfg.AmqpConfig, amqpConn)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return api.NewServer(cfg.ServerAddr, service).Start(gctx)
	})
	if queue != nil {
		g.Go(func() error {
			return queue.Start(gctx)
		})
	}

	if cfg.ConsulConfig != nil {
		deregister, err := registerService(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Consul registration failed")
		} else {
			defer deregister()
		}
	}

	return g.Wait()
}

// newMeter returns a nil meter, leaving the global no-op provider in place,
// when the metrics block is absent.
func newMeter(ctx context.Context, cfg *metrics.Config) (metric.Meter, func(), error) {
	if cfg == nil {
		return nil, func() {}, nil
	}
	provider, err := metrics.NewProvider(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	otel.SetMeterProvider(provider.MeterProvider())
	log.Info().Str("endpoint", cfg.Endpoint).Dur("interval", cfg.Interval).Msg("Exporting metrics over OTLP")
	return provider.Meter(), func() {
		ctxShutdown, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(ctxShutdown); err != nil {
			log.Warn().Err(err).Msg("Meter provider shutdown failed")
		}
	}, nil
}

func newJobStore(ctx context.Context, cfg *mongo.Config) (jobstore.JobStore, func(), error) {
	if cfg == nil {
		return jobstore.NewMemoryStore(), func() {}, nil
	}
	client, db, err := mongo.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("database", cfg.Database).Msg("Job history stored in MongoDB")
	return jobstore.NewJobStore(db), func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("MongoDB disconnect failed")
		}
	}, nil
}

func registerService(cfg *config.BenchConfig) (func(), error) {
	client, err := consul.NewClient(cfg.ConsulConfig)
	if err != nil {
		return nil, err
	}
	addr, port, err := net.AdvertiseAddr(cfg.ServerAddr)
	if err != nil {
		return nil, err
	}
	id, err := client.RegisterService(serviceName, string(addr), port)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := client.DeregisterService(id); err != nil {
			log.Warn().Err(err).Msg("Consul deregistration failed")
		}
	}, nil
}
