package config

import (
	"os"
	"strconv"
	"time"

	"github.com/Alias1177/ForecastBot/internal/api/binance"
	"github.com/Alias1177/ForecastBot/internal/api/huggingface"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	HuggingFaceAPIKey   string
	HuggingFaceModelURL string
	SentimentTimeout    time.Duration

	BinanceBaseURL    string
	BinanceFuturesURL string
	DefaultPair       string
	Interval          string
	CandleCount       int

	BollingerPeriod     int
	BollingerMultiplier float64
	FibonacciLookback   int

	RequestTimeout time.Duration
	HTTPAddr       string

	TelegramBotToken      string
	TelegramWebhookURL    string
	TelegramWebhookSecret string

	LogLevel string
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.HuggingFaceAPIKey = os.Getenv("HUGGINGFACE_API_KEY")
	cfg.HuggingFaceModelURL = getEnvWithDefault("HUGGINGFACE_MODEL_URL", huggingface.DefaultModelURL)
	cfg.SentimentTimeout = time.Duration(getEnvIntWithDefault("SENTIMENT_TIMEOUT", 10)) * time.Second

	cfg.BinanceBaseURL = getEnvWithDefault("BINANCE_BASE_URL", binance.DefaultBaseURL)
	cfg.BinanceFuturesURL = getEnvWithDefault("BINANCE_FUTURES_URL", binance.DefaultFuturesURL)
	cfg.DefaultPair = getEnvWithDefault("DEFAULT_PAIR", "BTCUSDT")
	cfg.Interval = getEnvWithDefault("INTERVAL", "1h")
	cfg.CandleCount = getEnvIntWithDefault("CANDLE_COUNT", 100)

	cfg.BollingerPeriod = getEnvIntWithDefault("BB_PERIOD", 20)
	cfg.BollingerMultiplier = getEnvFloatWithDefault("BB_STD_DEV", 2)
	cfg.FibonacciLookback = getEnvIntWithDefault("FIB_LOOKBACK", 100)

	cfg.RequestTimeout = time.Duration(getEnvIntWithDefault("REQUEST_TIMEOUT", 30)) * time.Second
	cfg.HTTPAddr = getEnvWithDefault("HTTP_ADDR", ":8080")

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramWebhookURL = os.Getenv("TELEGRAM_WEBHOOK_URL")
	cfg.TelegramWebhookSecret = os.Getenv("TELEGRAM_WEBHOOK_SECRET")

	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")

	return &cfg, nil
}

// SentimentEnabled reports whether the external classifier should be called
func (c *Config) SentimentEnabled() bool {
	return c.HuggingFaceAPIKey != ""
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
