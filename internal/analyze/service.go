package analyze

import (
	"context"
	"errors"
	"fmt"

	"github.com/Alias1177/ForecastBot/models"
)

// ErrMarketData marks failures of the snapshot provider
var ErrMarketData = errors.New("market data unavailable")

// Service fetches a snapshot for a symbol and runs the engine on it
type Service struct {
	provider models.SnapshotProvider
	engine   *Engine
	interval string
	limit    int
}

// NewService creates a service forecasting from interval candles, limit at a time
func NewService(provider models.SnapshotProvider, engine *Engine, interval string, limit int) *Service {
	return &Service{provider: provider, engine: engine, interval: interval, limit: limit}
}

// ForecastSymbol fetches market data for symbol and forecasts it
func (s *Service) ForecastSymbol(ctx context.Context, symbol string) (*models.ForecastResult, error) {
	return s.ForecastSymbolInterval(ctx, symbol, s.interval)
}

// ForecastSymbolInterval is ForecastSymbol with an explicit candle interval
func (s *Service) ForecastSymbolInterval(ctx context.Context, symbol, interval string) (*models.ForecastResult, error) {
	snapshot, err := s.provider.GetSnapshot(ctx, symbol, interval, s.limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMarketData, err)
	}
	return s.engine.Forecast(ctx, snapshot)
}
