package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Alias1177/ForecastBot/internal/analyze"
	"github.com/Alias1177/ForecastBot/internal/api/binance"
	"github.com/Alias1177/ForecastBot/internal/calculate"
	"github.com/Alias1177/ForecastBot/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Forecaster produces a forecast for a symbol on a candle interval
type Forecaster interface {
	ForecastSymbolInterval(ctx context.Context, symbol, interval string) (*models.ForecastResult, error)
}

// UpdateHandler consumes Telegram updates delivered by webhook
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// Options configures the HTTP server
type Options struct {
	Addr            string
	DefaultPair     string
	DefaultInterval string
	Gatherer        prometheus.Gatherer
	// Updates is optional; the webhook route is only mounted when set
	Updates UpdateHandler
	// WebhookSecret, when set, must match the secret token header Telegram sends
	WebhookSecret string
}

// Server exposes forecasts over REST
type Server struct {
	opts       Options
	forecaster Forecaster
	router     *mux.Router
	httpServer *http.Server
	logger     zerolog.Logger
}

// SecretTokenHeader carries the secret_token registered with setWebhook
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer creates the server and its routes
func NewServer(forecaster Forecaster, opts Options) *Server {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.DefaultPair == "" {
		opts.DefaultPair = "BTCUSDT"
	}
	if opts.DefaultInterval == "" {
		opts.DefaultInterval = "1h"
	}

	s := &Server{
		opts:       opts,
		forecaster: forecaster,
		logger:     log.With().Str("component", "http_server").Logger(),
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.recoveryMiddleware)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/forecast", s.handleForecast).Methods(http.MethodGet)
	api.HandleFunc("/forecast/{symbol}", s.handleForecast).Methods(http.MethodGet)

	if s.opts.Updates != nil {
		s.router.HandleFunc("/telegram/webhook", s.handleTelegramWebhook).Methods(http.MethodPost)
	}
}

// Handler returns the root router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.opts.Addr).Msg("Starting HTTP server")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	pair := mux.Vars(r)["symbol"]
	if pair == "" {
		pair = r.URL.Query().Get("pair")
	}
	if pair == "" {
		pair = s.opts.DefaultPair
	}
	symbol, err := binance.NormalizeSymbol(pair)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = s.opts.DefaultInterval
	}
	if _, err := models.IntervalDuration(interval); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.forecaster.ForecastSymbolInterval(r.Context(), symbol, interval)
	if err != nil {
		status := statusFor(err)
		s.logger.Warn().Err(err).Str("symbol", symbol).Int("status", status).Msg("Forecast request failed")
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTelegramWebhook(w http.ResponseWriter, r *http.Request) {
	if s.opts.WebhookSecret != "" {
		got := r.Header.Get(SecretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.opts.WebhookSecret)) != 1 {
			s.logger.Warn().Str("remote", r.RemoteAddr).Msg("Rejected webhook call with bad secret token")
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid secret token"})
			return
		}
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid update payload"})
		return
	}
	// Telegram only needs a fast 200; the reply is sent through the bot API.
	go s.opts.Updates.HandleUpdate(context.WithoutCancel(r.Context()), update)
	w.WriteHeader(http.StatusOK)
}

// statusFor maps forecast errors to HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, binance.ErrInvalidSymbol):
		return http.StatusBadRequest
	case errors.Is(err, calculate.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, analyze.ErrMarketData):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
