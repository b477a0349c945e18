package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ykhdr/hashbench"

// Metrics holds the search instruments.
type Metrics struct {
	Searches metric.Int64Counter
	Attempts metric.Int64Counter
	Rate     metric.Float64Histogram
}

// New builds the instruments from meter, or from the global meter provider
// when meter is nil.
func New(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	searches, err := meter.Int64Counter("hashbench_searches_total",
		metric.WithDescription("Finished searches by outcome"))
	if err != nil {
		return nil, err
	}
	attempts, err := meter.Int64Counter("hashbench_attempts_total",
		metric.WithDescription("Candidates hashed"))
	if err != nil {
		return nil, err
	}
	rate, err := meter.Float64Histogram("hashbench_checks_per_second",
		metric.WithDescription("Search throughput"),
		metric.WithUnit("{check}/s"))
	if err != nil {
		return nil, err
	}
	return &Metrics{Searches: searches, Attempts: attempts, Rate: rate}, nil
}

// RecordSearch records one finished search.
func (m *Metrics) RecordSearch(ctx context.Context, digest, outcome string, attempts uint64, rate float64) {
	if m == nil {
		return
	}
	digestAttr := attribute.String("digest", digest)
	m.Searches.Add(ctx, 1, metric.WithAttributes(digestAttr, attribute.String("outcome", outcome)))
	m.Attempts.Add(ctx, int64(attempts), metric.WithAttributes(digestAttr))
	if rate > 0 {
		m.Rate.Record(ctx, rate, metric.WithAttributes(digestAttr))
	}
}
