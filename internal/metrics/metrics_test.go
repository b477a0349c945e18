package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestRecordSearch(t *testing.T) {
	ctx := context.Background()
	m, err := New(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	m.RecordSearch(ctx, "md5-reset", "found", 694, 1200.5)
	m.RecordSearch(ctx, "noop", "cancelled", 0, 0)
}

func TestRecordSearch_GlobalMeterAndNil(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	m.RecordSearch(context.Background(), "md5-sum", "exhausted", 3906, 0)

	var none *Metrics
	none.RecordSearch(context.Background(), "md5-sum", "exhausted", 1, 1)
}
