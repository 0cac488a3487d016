package analyze

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Alias1177/ForecastBot/internal/calculate"
	"github.com/Alias1177/ForecastBot/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SentimentScorer is the part of the sentiment package the engine depends on
type SentimentScorer interface {
	ScoreSentiment(ctx context.Context, f models.SentimentFeatures) models.SentimentResult
}

// Recorder collects forecast metrics
type Recorder interface {
	RecordForecast(symbol string, signal models.Signal)
	RecordForecastError(kind string)
	RecordForecastLatency(seconds float64)
}

// Options tune the indicator parameters of an Engine
type Options struct {
	BollingerPeriod     int
	BollingerMultiplier float64
	FibonacciLookback   int
	Recorder            Recorder
}

// Engine fuses indicators and sentiment into one forecast.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	scorer   SentimentScorer
	opts     Options
	recorder Recorder
	now      func() time.Time
	logger   zerolog.Logger
}

// NewEngine creates a forecast engine
func NewEngine(scorer SentimentScorer, opts Options) *Engine {
	if opts.BollingerPeriod <= 0 {
		opts.BollingerPeriod = calculate.DefaultBollingerPeriod
	}
	if opts.BollingerMultiplier <= 0 {
		opts.BollingerMultiplier = calculate.DefaultBollingerMultiplier
	}
	if opts.FibonacciLookback <= 0 {
		opts.FibonacciLookback = calculate.DefaultFibonacciLookback
	}
	return &Engine{
		scorer:   scorer,
		opts:     opts,
		recorder: opts.Recorder,
		now:      time.Now,
		logger:   log.With().Str("component", "forecast_engine").Logger(),
	}
}

// Forecast computes the verdict for a snapshot.
// Errors wrap calculate.ErrInsufficientData when the candle history is too short.
func (e *Engine) Forecast(ctx context.Context, snapshot *models.MarketSnapshot) (*models.ForecastResult, error) {
	start := time.Now()
	defer func() {
		if e.recorder != nil {
			e.recorder.RecordForecastLatency(time.Since(start).Seconds())
		}
	}()

	prices := snapshot.Closes()

	ema, err := calculate.AnalyzeTrend(prices)
	if err != nil {
		return nil, e.fail(snapshot.Symbol, err)
	}
	bollinger, err := calculate.ComputeBollinger(prices, e.opts.BollingerPeriod, e.opts.BollingerMultiplier)
	if err != nil {
		return nil, e.fail(snapshot.Symbol, err)
	}
	fibonacci, err := calculate.ComputeFibonacci(prices, e.opts.FibonacciLookback)
	if err != nil {
		return nil, e.fail(snapshot.Symbol, err)
	}

	sentiment := e.scorer.ScoreSentiment(ctx, models.SentimentFeatures{
		EMA9:              ema.Fast,
		EMA21:             ema.Slow,
		FundingRate:       snapshot.FundingRate,
		BollingerPosition: bollinger.Position,
		Price:             snapshot.Price,
		Volume:            snapshot.Volume24h,
	})

	votes := collectVotes(sentiment.Signal, ema, bollinger)
	signal, confidence := tallyVotes(votes)

	result := &models.ForecastResult{
		Symbol:     snapshot.Symbol,
		Price:      snapshot.Price,
		Signal:     signal,
		Confidence: confidence,
		Components: models.ForecastComponents{
			EMA:         ema,
			Bollinger:   bollinger,
			Fibonacci:   fibonacci,
			FundingRate: snapshot.FundingRate,
			Sentiment:   sentiment,
		},
		Recommendation: Recommend(signal, confidence),
		Timestamp:      e.now(),
	}

	if e.recorder != nil {
		e.recorder.RecordForecast(snapshot.Symbol, signal)
	}

	e.logger.Info().
		Str("symbol", snapshot.Symbol).
		Str("signal", string(signal)).
		Float64("confidence", confidence).
		Int("votes", len(votes)).
		Bool("sentiment_fallback", sentiment.Fallback).
		Msg("Forecast computed")

	return result, nil
}

func (e *Engine) fail(symbol string, err error) error {
	kind := "internal"
	if errors.Is(err, calculate.ErrInsufficientData) {
		kind = "insufficient_data"
	}
	if e.recorder != nil {
		e.recorder.RecordForecastError(kind)
	}
	e.logger.Debug().Err(err).Str("symbol", symbol).Msg("Forecast aborted")
	return fmt.Errorf("forecast %s: %w", symbol, err)
}
