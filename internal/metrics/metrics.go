package metrics

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"vaidya/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// AppMetrics holds all application metrics. A nil *AppMetrics records nothing.
type AppMetrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestsErrors  metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// Business Metrics
	OrdersCreated       metric.Int64Counter
	RevenueTotal        metric.Float64Counter
	ProductsViewed      metric.Int64Counter
	CartMutations       metric.Int64Counter
	CheckoutTransitions metric.Int64Counter
	PaymentFailures     metric.Int64Counter

	// Application Metrics
	LiveSubscribers metric.Int64UpDownCounter

	serviceName string
}

// InitMetrics builds the meter provider. Without an OTLP endpoint the instruments still
// work but nothing is exported.
func InitMetrics(ctx context.Context, cfg *config.Config) (*AppMetrics, *sdkmetric.MeterProvider, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(semconv.ServiceName(cfg.OTELServiceName)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if cfg.OTELExporterOTLPEndpoint != "" {
		exporter, err := otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpointURL(cfg.OTELExporterOTLPEndpoint),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second)),
		))
		log.Printf("Metrics will be exported every 10 seconds to %s", cfg.OTELExporterOTLPEndpoint)
	} else {
		log.Println("OTEL_EXPORTER_OTLP_ENDPOINT not set, metrics are not exported")
	}

	meterProvider := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(meterProvider)

	m, err := New(meterProvider.Meter(cfg.OTELServiceName), cfg.OTELServiceName)
	if err != nil {
		return nil, nil, err
	}
	return m, meterProvider, nil
}

// New creates every instrument on the given meter.
func New(meter metric.Meter, serviceName string) (*AppMetrics, error) {
	buckets := []float64{2, 4, 6, 8, 10, 50, 100, 200, 400, 800, 1000, 1400, 2000, 5000, 10000}
	m := &AppMetrics{serviceName: serviceName}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http requests counter: %w", err)
	}
	if m.HTTPRequestsErrors, err = meter.Int64Counter(
		"http.server.request.error.count",
		metric.WithDescription("Total number of HTTP error requests"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http errors counter: %w", err)
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create http duration histogram: %w", err)
	}
	if m.OrdersCreated, err = meter.Int64Counter(
		"orders_created_total",
		metric.WithDescription("Total number of orders created"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create orders counter: %w", err)
	}
	if m.RevenueTotal, err = meter.Float64Counter(
		"revenue_total",
		metric.WithDescription("Total revenue of submitted orders"),
		metric.WithUnit("INR"),
	); err != nil {
		return nil, fmt.Errorf("failed to create revenue counter: %w", err)
	}
	if m.ProductsViewed, err = meter.Int64Counter(
		"products_viewed_total",
		metric.WithDescription("Total number of product detail views"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create products viewed counter: %w", err)
	}
	if m.CartMutations, err = meter.Int64Counter(
		"cart_mutations_total",
		metric.WithDescription("Cart add, decrease, remove and clear operations"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create cart mutations counter: %w", err)
	}
	if m.CheckoutTransitions, err = meter.Int64Counter(
		"checkout_transitions_total",
		metric.WithDescription("Checkout steps entered"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create checkout transitions counter: %w", err)
	}
	if m.PaymentFailures, err = meter.Int64Counter(
		"payment_failures_total",
		metric.WithDescription("Payment authorizations that failed"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create payment failures counter: %w", err)
	}
	if m.LiveSubscribers, err = meter.Int64UpDownCounter(
		"live_subscribers",
		metric.WithDescription("Open admin live view streams"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create live subscribers counter: %w", err)
	}
	return m, nil
}

// WithServiceName adds service.name to attributes
func (m *AppMetrics) WithServiceName(attrs []attribute.KeyValue) []attribute.KeyValue {
	return append(attrs, attribute.String("service.name", m.serviceName))
}

// RecordHTTPRequest records one served request.
func (m *AppMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, start time.Time) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(m.WithServiceName([]attribute.KeyValue{
		attribute.String("http.request.method", method),
		attribute.String("http.route", route),
		attribute.String("http.response.status_code", strconv.Itoa(status)),
	})...)

	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	if status >= 400 {
		m.HTTPRequestsErrors.Add(ctx, 1, attrs)
	}
	m.HTTPRequestDuration.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
}

// RecordOrder records a submitted order and its revenue.
func (m *AppMetrics) RecordOrder(ctx context.Context, paymentMethod string, total float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(m.WithServiceName([]attribute.KeyValue{
		attribute.String("payment.method", paymentMethod),
	})...)
	m.OrdersCreated.Add(ctx, 1, attrs)
	m.RevenueTotal.Add(ctx, total, attrs)
}

// RecordProductView counts a product detail view.
func (m *AppMetrics) RecordProductView(ctx context.Context, category string) {
	if m == nil {
		return
	}
	m.ProductsViewed.Add(ctx, 1, metric.WithAttributes(m.WithServiceName([]attribute.KeyValue{
		attribute.String("product.category", category),
	})...))
}

// RecordCartMutation counts a cart operation.
func (m *AppMetrics) RecordCartMutation(ctx context.Context, action string) {
	if m == nil {
		return
	}
	m.CartMutations.Add(ctx, 1, metric.WithAttributes(m.WithServiceName([]attribute.KeyValue{
		attribute.String("cart.action", action),
	})...))
}

// RecordCheckoutStep counts entry into a checkout step.
func (m *AppMetrics) RecordCheckoutStep(ctx context.Context, step string) {
	if m == nil {
		return
	}
	m.CheckoutTransitions.Add(ctx, 1, metric.WithAttributes(m.WithServiceName([]attribute.KeyValue{
		attribute.String("checkout.step", step),
	})...))
}

// RecordPaymentFailure counts a failed authorization.
func (m *AppMetrics) RecordPaymentFailure(ctx context.Context, method string) {
	if m == nil {
		return
	}
	m.PaymentFailures.Add(ctx, 1, metric.WithAttributes(m.WithServiceName([]attribute.KeyValue{
		attribute.String("payment.method", method),
	})...))
}

// AddLiveSubscribers moves the open stream count by delta.
func (m *AppMetrics) AddLiveSubscribers(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.LiveSubscribers.Add(ctx, delta, metric.WithAttributes(m.WithServiceName(nil)...))
}
