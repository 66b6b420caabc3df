// Package telemetry provides Prometheus metrics and OpenTelemetry tracing
// for the credibility service.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonesrussell/north-cloud/credibility/internal/credibility"
	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

const serviceName = "credibility"

// Analysis outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid"
	OutcomeOracleError = "oracle_error"
	OutcomeError       = "error"
)

var scoreBuckets = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

// Metrics holds all credibility Prometheus metrics.
type Metrics struct {
	Analyses      *prometheus.CounterVec
	Scores        prometheus.Histogram
	SignalImpacts *prometheus.HistogramVec
	Votes         *prometheus.CounterVec
	TrustScores   prometheus.Histogram
	OracleLatency *prometheus.HistogramVec
	Sources       *prometheus.GaugeVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// Provider wraps telemetry providers.
type Provider struct {
	Tracer   trace.Tracer
	Metrics  *Metrics
	registry *prometheus.Registry
}

// NewProvider registers the metrics on reg. A nil reg gets a fresh registry
// carrying the Go runtime and process collectors.
func NewProvider(reg *prometheus.Registry) *Provider {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return &Provider{
		Tracer:   otel.Tracer(serviceName),
		Metrics:  initMetrics(promauto.With(reg)),
		registry: reg,
	}
}

// TracerProvider returns the global OpenTelemetry tracer provider.
func (p *Provider) TracerProvider() trace.TracerProvider {
	return otel.GetTracerProvider()
}

// Handler returns the Prometheus HTTP handler for /metrics.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry exposes the underlying registry.
func (p *Provider) Registry() *prometheus.Registry {
	return p.registry
}

func initMetrics(f promauto.Factory) *Metrics {
	return &Metrics{
		Analyses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credibility_analyses_total",
			Help: "Total analyze requests by outcome",
		}, []string{"outcome"}),
		Scores: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "credibility_score",
			Help:    "Distribution of credibility scores",
			Buckets: scoreBuckets,
		}),
		SignalImpacts: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credibility_signal_impact",
			Help:    "Impact contributed by each signal extractor",
			Buckets: []float64{-35, -25, -20, -15, -10, -5, 0, 10, 15, 25, 50},
		}, []string{"signal"}),
		Votes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credibility_votes_total",
			Help: "Total persisted reader votes",
		}, []string{"vote"}),
		TrustScores: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "credibility_trust_score",
			Help:    "Trust score of a source right after a vote",
			Buckets: scoreBuckets,
		}),
		OracleLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credibility_sentiment_oracle_duration_seconds",
			Help:    "Sentiment oracle latency by outcome",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"outcome"}),
		Sources: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "credibility_tracked_sources",
			Help: "Stored source reputations by stance relative to the neutral trust score",
		}, []string{"stance"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credibility_http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credibility_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// AnalysisCompleted implements credibility.AnalysisObserver.
func (p *Provider) AnalysisCompleted(_ context.Context, _ domain.Article, result *domain.AnalysisResult) {
	p.Metrics.Analyses.WithLabelValues(OutcomeSuccess).Inc()
	p.Metrics.Scores.Observe(float64(result.Score))
	for _, s := range result.Signals {
		p.Metrics.SignalImpacts.WithLabelValues(s.Name).Observe(float64(s.Impact))
	}
}

// AnalysisFailed implements credibility.AnalysisFailureObserver by counting
// the failure under its error class.
func (p *Provider) AnalysisFailed(_ context.Context, _ domain.Article, err error) {
	outcome := OutcomeError
	switch {
	case errors.Is(err, domain.ErrValidation):
		outcome = OutcomeInvalid
	case errors.Is(err, domain.ErrSentimentUnavailable):
		outcome = OutcomeOracleError
	}
	p.Metrics.Analyses.WithLabelValues(outcome).Inc()
}

// VoteRecorded implements credibility.VoteObserver.
func (p *Provider) VoteRecorded(_ context.Context, vote domain.Vote, rec *domain.SourceReputation) {
	p.Metrics.Votes.WithLabelValues(string(vote)).Inc()
	p.Metrics.TrustScores.Observe(float64(rec.TrustScore))
}

// InstrumentOracle wraps o so every Polarity call is timed.
func (p *Provider) InstrumentOracle(o credibility.Oracle) credibility.Oracle {
	return &timedOracle{next: o, latency: p.Metrics.OracleLatency}
}

type timedOracle struct {
	next    credibility.Oracle
	latency *prometheus.HistogramVec
}

func (t *timedOracle) Tokenize(text string) []string {
	return t.next.Tokenize(text)
}

func (t *timedOracle) Polarity(ctx context.Context, tokens []string) (float64, error) {
	start := time.Now()
	score, err := t.next.Polarity(ctx, tokens)
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	t.latency.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	return score, err
}

// Middleware records request counts and latency per matched route.
func (p *Provider) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		p.Metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		p.Metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// SourcesSnapshot sets the tracked source gauges from a full count.
func (p *Provider) SourcesSnapshot(counts map[string]int) {
	for stance, n := range counts {
		p.Metrics.Sources.WithLabelValues(stance).Set(float64(n))
	}
}
