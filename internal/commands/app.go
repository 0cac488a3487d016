package commands

import (
	"github.com/Alias1177/ForecastBot/internal/analyze"
	"github.com/Alias1177/ForecastBot/internal/api/binance"
	"github.com/Alias1177/ForecastBot/internal/api/huggingface"
	"github.com/Alias1177/ForecastBot/internal/config"
	"github.com/Alias1177/ForecastBot/internal/metrics"
	"github.com/Alias1177/ForecastBot/internal/sentiment"
	"github.com/Alias1177/ForecastBot/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

// app is the wired dependency graph shared by every command
type app struct {
	cfg      *config.Config
	registry *prometheus.Registry
	market   *binance.Client
	service  *analyze.Service
}

func newApp(cfg *config.Config) *app {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.New(registry)

	market := binance.NewClient(binance.ClientOptions{
		BaseURL:        cfg.BinanceBaseURL,
		FuturesURL:     cfg.BinanceFuturesURL,
		RequestTimeout: cfg.RequestTimeout,
		MaxRetries:     2,
	})

	var classifier models.SentimentClassifier
	if cfg.SentimentEnabled() {
		classifier = huggingface.NewClient(huggingface.ClientOptions{
			APIKey:         cfg.HuggingFaceAPIKey,
			ModelURL:       cfg.HuggingFaceModelURL,
			RequestTimeout: cfg.SentimentTimeout,
		})
	} else {
		log.Info().Msg("HUGGINGFACE_API_KEY not set, sentiment uses the rule-based fallback")
	}

	scorer := sentiment.NewScorer(classifier, sentiment.ScorerOptions{
		Timeout:  cfg.SentimentTimeout,
		Recorder: recorder,
	})
	engine := analyze.NewEngine(scorer, analyze.Options{
		BollingerPeriod:     cfg.BollingerPeriod,
		BollingerMultiplier: cfg.BollingerMultiplier,
		FibonacciLookback:   cfg.FibonacciLookback,
		Recorder:            recorder,
	})

	return &app{
		cfg:      cfg,
		registry: registry,
		market:   market,
		service:  analyze.NewService(market, engine, cfg.Interval, cfg.CandleCount),
	}
}
