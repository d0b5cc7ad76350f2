package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*AppMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := New(provider.Meter("test"), "vaidya-test")
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			out[md.Name] = md.Data
		}
	}
	return out
}

func TestRecordOrder(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordOrder(ctx, "cod", 998)
	m.RecordOrder(ctx, "cod", 151)

	data := collect(t, reader)
	orders, ok := data["orders_created_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, orders.DataPoints, 1)
	assert.Equal(t, int64(2), orders.DataPoints[0].Value)

	revenue, ok := data["revenue_total"].(metricdata.Sum[float64])
	require.True(t, ok)
	assert.Equal(t, 1149.0, revenue.DataPoints[0].Value)
}

func TestRecordHTTPRequest_CountsErrors(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordHTTPRequest(ctx, "GET", "/api/v1/products", 200, time.Now())
	m.RecordHTTPRequest(ctx, "GET", "/api/v1/products/:id", 404, time.Now())

	data := collect(t, reader)
	total := data["http.server.request.count"].(metricdata.Sum[int64])
	var sum int64
	for _, dp := range total.DataPoints {
		sum += dp.Value
	}
	assert.Equal(t, int64(2), sum)

	errs := data["http.server.request.error.count"].(metricdata.Sum[int64])
	require.Len(t, errs.DataPoints, 1)
	assert.Equal(t, int64(1), errs.DataPoints[0].Value)
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *AppMetrics
	assert.NotPanics(t, func() {
		m.RecordOrder(context.Background(), "online", 10)
		m.RecordCartMutation(context.Background(), "add")
		m.AddLiveSubscribers(context.Background(), 1)
	})
}
