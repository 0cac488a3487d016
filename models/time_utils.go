package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptySeries     = errors.New("candle series is empty")
	ErrUnorderedSeries = errors.New("candle times must be strictly increasing")
)

// IntervalDuration maps a kline interval to its duration
func IntervalDuration(interval string) (time.Duration, error) {
	switch interval {
	case "1m":
		return time.Minute, nil
	case "3m":
		return 3 * time.Minute, nil
	case "5m":
		return 5 * time.Minute, nil
	case "15m":
		return 15 * time.Minute, nil
	case "30m":
		return 30 * time.Minute, nil
	case "1h":
		return time.Hour, nil
	case "2h":
		return 2 * time.Hour, nil
	case "4h":
		return 4 * time.Hour, nil
	case "8h":
		return 8 * time.Hour, nil
	case "12h":
		return 12 * time.Hour, nil
	case "1d":
		return 24 * time.Hour, nil
	case "1w":
		return 7 * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("unsupported interval %q", interval)
}

// ValidateCandles checks that a series is non-empty and strictly increasing in time
func ValidateCandles(candles []Candle) error {
	if len(candles) == 0 {
		return ErrEmptySeries
	}
	for i := 1; i < len(candles); i++ {
		if !candles[i].Time.After(candles[i-1].Time) {
			return fmt.Errorf("candle %d at %s: %w", i, candles[i].Time.Format(time.RFC3339), ErrUnorderedSeries)
		}
	}
	return nil
}
