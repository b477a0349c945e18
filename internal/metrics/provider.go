package metrics

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const exporterInitTimeout = 5 * time.Second

// Config enables OTLP metric export over gRPC.
type Config struct {
	Endpoint    string        `kdl:"endpoint"`
	Interval    time.Duration `kdl:"interval"`
	ServiceName string        `kdl:"service-name"`
}

func DefaultConfig() *Config {
	return &Config{
		Endpoint:    "localhost:4317",
		Interval:    10 * time.Second,
		ServiceName: "hashbench",
	}
}

// Provider owns the SDK meter provider the instruments report to.
type Provider struct {
	mp *sdkmetric.MeterProvider
}

// NewProvider pushes metrics to cfg.Endpoint every cfg.Interval.
func NewProvider(ctx context.Context, cfg *Config) (*Provider, error) {
	ctxInit, cancel := context.WithTimeout(ctx, exporterInitTimeout)
	defer cancel()
	exp, err := otlpmetricgrpc.New(ctxInit,
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "error create otlp metric exporter")
	}
	return newProvider(cfg, sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(cfg.Interval))), nil
}

func newProvider(cfg *Config, reader sdkmetric.Reader) *Provider {
	res := sdkresource.NewSchemaless(
		semconv.ServiceName(cfg.ServiceName),
		attribute.String("service", cfg.ServiceName),
	)
	if merged, err := sdkresource.Merge(sdkresource.Default(), res); err == nil {
		res = merged
	}
	return &Provider{
		mp: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader), sdkmetric.WithResource(res)),
	}
}

func (p *Provider) MeterProvider() metric.MeterProvider {
	return p.mp
}

func (p *Provider) Meter() metric.Meter {
	return p.mp.Meter(meterName)
}

// Shutdown flushes pending data points and stops the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	if err := p.mp.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "error shutdown meter provider")
	}
	return nil
}
