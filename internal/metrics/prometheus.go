package metrics

import (
	"github.com/Alias1177/ForecastBot/models"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder collects forecast and sentiment metrics in Prometheus
type Recorder struct {
	forecasts          *prometheus.CounterVec
	forecastErrors     *prometheus.CounterVec
	sentimentFallbacks *prometheus.CounterVec
	latency            prometheus.Histogram
}

// New creates a recorder and registers its collectors with reg
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		forecasts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecastbot_forecasts_total",
				Help: "Total number of forecasts computed",
			},
			[]string{"symbol", "signal"},
		),
		forecastErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecastbot_forecast_errors_total",
				Help: "Total number of forecasts aborted",
			},
			[]string{"kind"},
		),
		sentimentFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecastbot_sentiment_fallbacks_total",
				Help: "Total number of rule-based sentiment fallbacks",
			},
			[]string{"reason"},
		),
		latency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "forecastbot_forecast_duration_seconds",
				Help:    "Duration of forecast computations in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	reg.MustRegister(r.forecasts, r.forecastErrors, r.sentimentFallbacks, r.latency)
	return r
}

// RecordForecast records a completed forecast
func (r *Recorder) RecordForecast(symbol string, signal models.Signal) {
	r.forecasts.WithLabelValues(symbol, string(signal)).Inc()
}

// RecordForecastError records an aborted forecast
func (r *Recorder) RecordForecastError(kind string) {
	r.forecastErrors.WithLabelValues(kind).Inc()
}

// RecordForecastLatency records forecast latency in seconds
func (r *Recorder) RecordForecastLatency(seconds float64) {
	r.latency.Observe(seconds)
}

// RecordSentimentFallback records a rule-based sentiment fallback
func (r *Recorder) RecordSentimentFallback(reason string) {
	r.sentimentFallbacks.WithLabelValues(reason).Inc()
}
