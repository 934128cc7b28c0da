// Package metrics exposes business counters for the offer workflow on the
// Prometheus registry scraped at /-/metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jsamuelsen/offermaster-service/internal/domain"
)

const namespace = "offermaster"

// OutcomeSuccess labels events that completed. Failed events are labelled
// with their domain error kind, or OutcomeFailure when unclassified.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = domain.KindUnknown
)

// Recorder records business events. A nil *Recorder is valid and records nothing.
type Recorder struct {
	quotesCreated *prometheus.CounterVec
	quotesEmailed *prometheus.CounterVec
	pdfRender     prometheus.Histogram
	uploads       *prometheus.CounterVec
	logins        *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// NewRecorder registers the collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		quotesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_created_total",
			Help:      "Quotes created, by outcome.",
		}, []string{"outcome"}),
		quotesEmailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_emailed_total",
			Help:      "Quote emails sent, by outcome.",
		}, []string{"outcome"}),
		pdfRender: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_pdf_render_seconds",
			Help:      "Time spent rendering quote PDFs.",
			Buckets:   prometheus.DefBuckets,
		}),
		uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_uploads_total",
			Help:      "Object storage uploads, by bucket and outcome.",
		}, []string{"bucket", "outcome"}),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts, by outcome.",
		}, []string{"outcome"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// HTTPRequest records one served request. Unmatched routes share the
// "unmatched" label to keep cardinality bounded.
func (r *Recorder) HTTPRequest(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// QuoteCreated counts a quote creation attempt.
func (r *Recorder) QuoteCreated(err error) {
	if r == nil {
		return
	}
	r.quotesCreated.WithLabelValues(outcome(err)).Inc()
}

// QuoteEmailed counts a quote email attempt.
func (r *Recorder) QuoteEmailed(err error) {
	if r == nil {
		return
	}
	r.quotesEmailed.WithLabelValues(outcome(err)).Inc()
}

// PDFRendered observes a render duration.
func (r *Recorder) PDFRendered(d time.Duration) {
	if r == nil {
		return
	}
	r.pdfRender.Observe(d.Seconds())
}

// Uploaded counts an object storage upload attempt.
func (r *Recorder) Uploaded(bucket string, err error) {
	if r == nil {
		return
	}
	r.uploads.WithLabelValues(bucket, outcome(err)).Inc()
}

// LoginAttempted counts a login attempt.
func (r *Recorder) LoginAttempted(err error) {
	if r == nil {
		return
	}
	r.logins.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	return domain.Kind(err)
}
