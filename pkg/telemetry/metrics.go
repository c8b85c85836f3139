package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus observability primitives for the billing API.
type Metrics struct {
	apiRequests       *prometheus.CounterVec
	apiDuration       *prometheus.HistogramVec
	pricingPreviews   *prometheus.CounterVec
	invoicesGenerated *prometheus.CounterVec
	invoiceAmount     *prometheus.HistogramVec
}

// NewMetrics registers and returns Prometheus metrics for telemetry.
func NewMetrics() *Metrics {
	apiRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "opsbill_api_requests_total",
		Help: "Counts API requests by method, route, and status.",
	}, []string{"method", "route", "status"})

	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "opsbill_api_duration_seconds",
		Help:    "API request latency per method/route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	pricingPreviews := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "opsbill_pricing_previews_total",
		Help: "Pricing previews computed by payment method.",
	}, []string{"payment_method"})

	invoicesGenerated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "opsbill_invoices_generated_total",
		Help: "Invoices generated by payment method.",
	}, []string{"payment_method"})

	invoiceAmount := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "opsbill_invoice_total_dollars",
		Help:    "Invoice total distribution in whole currency units.",
		Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000},
	}, []string{"payment_method"})

	prometheus.MustRegister(
		apiRequests,
		apiDuration,
		pricingPreviews,
		invoicesGenerated,
		invoiceAmount,
	)

	return &Metrics{
		apiRequests:       apiRequests,
		apiDuration:       apiDuration,
		pricingPreviews:   pricingPreviews,
		invoicesGenerated: invoicesGenerated,
		invoiceAmount:     invoiceAmount,
	}
}

// ObserveAPIRequest records one handled request.
func (m *Metrics) ObserveAPIRequest(method, route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordPricingPreview counts a preview computation.
func (m *Metrics) RecordPricingPreview(paymentMethod string) {
	if m == nil {
		return
	}
	m.pricingPreviews.WithLabelValues(paymentMethod).Inc()
}

// RecordInvoiceGenerated counts a persisted invoice and its total.
func (m *Metrics) RecordInvoiceGenerated(paymentMethod string, totalCents int64) {
	if m == nil {
		return
	}
	m.invoicesGenerated.WithLabelValues(paymentMethod).Inc()
	m.invoiceAmount.WithLabelValues(paymentMethod).Observe(float64(totalCents) / 100)
}
