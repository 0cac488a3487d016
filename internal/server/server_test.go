package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Alias1177/ForecastBot/internal/analyze"
	"github.com/Alias1177/ForecastBot/internal/calculate"
	"github.com/Alias1177/ForecastBot/internal/metrics"
	"github.com/Alias1177/ForecastBot/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubForecaster struct {
	err      error
	symbol   string
	interval string
}

func (f *stubForecaster) ForecastSymbolInterval(ctx context.Context, symbol, interval string) (*models.ForecastResult, error) {
	f.symbol, f.interval = symbol, interval
	if f.err != nil {
		return nil, f.err
	}
	return &models.ForecastResult{
		Symbol:         symbol,
		Price:          100,
		Signal:         models.SignalNeutral,
		Recommendation: analyze.RecommendWait,
	}, nil
}

type chanUpdates struct {
	ch chan tgbotapi.Update
}

func (u *chanUpdates) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	u.ch <- update
}

func TestHandleForecast(t *testing.T) {
	forecaster := &stubForecaster{}
	srv := NewServer(forecaster, Options{DefaultPair: "BTCUSDT", DefaultInterval: "1h"})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forecast?pair=eth-usdt&interval=4h", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result models.ForecastResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "ETHUSDT", result.Symbol)
	assert.Equal(t, models.SignalNeutral, result.Signal)
	assert.Equal(t, "4h", forecaster.interval)
}

func TestHandleForecastDefaults(t *testing.T) {
	forecaster := &stubForecaster{}
	srv := NewServer(forecaster, Options{DefaultPair: "SOLUSDT", DefaultInterval: "15m"})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forecast", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SOLUSDT", forecaster.symbol)
	assert.Equal(t, "15m", forecaster.interval)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forecast/btc_usdt", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "BTCUSDT", forecaster.symbol)
}

func TestHandleForecastErrors(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		err    error
		status int
	}{
		{"invalid symbol", "/api/forecast?pair=x", nil, http.StatusBadRequest},
		{"invalid interval", "/api/forecast?pair=BTCUSDT&interval=7m", nil, http.StatusBadRequest},
		{
			"insufficient data",
			"/api/forecast?pair=BTCUSDT",
			fmt.Errorf("forecast BTCUSDT: %w", calculate.ErrInsufficientData),
			http.StatusUnprocessableEntity,
		},
		{
			"market data",
			"/api/forecast?pair=BTCUSDT",
			fmt.Errorf("%w: %w", analyze.ErrMarketData, errors.New("connection refused")),
			http.StatusBadGateway,
		},
		{"internal", "/api/forecast?pair=BTCUSDT", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(&stubForecaster{err: tt.err}, Options{})
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, tt.status, rec.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder := metrics.New(reg)
	recorder.RecordForecast("BTCUSDT", models.SignalBullish)

	srv := NewServer(&stubForecaster{}, Options{Gatherer: reg})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `forecastbot_forecasts_total{signal="bullish",symbol="BTCUSDT"} 1`)
}

func TestTelegramWebhook(t *testing.T) {
	updates := &chanUpdates{ch: make(chan tgbotapi.Update, 1)}
	srv := NewServer(&stubForecaster{}, Options{Updates: updates})

	payload := `{"update_id":42,"message":{"message_id":1,"chat":{"id":7,"type":"private"},"text":"BTC"}}`
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(payload)))
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case update := <-updates.ch:
		assert.Equal(t, 42, update.UpdateID)
		require.NotNil(t, update.Message)
		assert.Equal(t, "BTC", update.Message.Text)
	case <-time.After(time.Second):
		t.Fatal("update was not dispatched")
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTelegramWebhookDisabled(t *testing.T) {
	srv := NewServer(&stubForecaster{}, Options{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader("{}")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	srv := NewServer(&stubForecaster{}, Options{})
	srv.router.HandleFunc("/panic", func(w http.ResponseWriter, r *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTelegramWebhookSecretToken(t *testing.T) {
	updates := &chanUpdates{ch: make(chan tgbotapi.Update, 1)}
	srv := NewServer(&stubForecaster{}, Options{Updates: updates, WebhookSecret: "s3cret_token"})
	payload := `{"update_id":7,"message":{"message_id":1,"chat":{"id":7,"type":"private"},"text":"ETH"}}`

	for _, header := range []string{"", "wrong"} {
		req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(payload))
		if header != "" {
			req.Header.Set(SecretTokenHeader, header)
		}
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
	assert.Empty(t, updates.ch)

	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(payload))
	req.Header.Set(SecretTokenHeader, "s3cret_token")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case update := <-updates.ch:
		assert.Equal(t, 7, update.UpdateID)
	case <-time.After(time.Second):
		t.Fatal("update was not dispatched")
	}
}
