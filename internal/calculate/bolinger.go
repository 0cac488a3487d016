package calculate

import (
	"math"

	"github.com/Alias1177/ForecastBot/models"
)

const (
	DefaultBollingerPeriod     = 20
	DefaultBollingerMultiplier = 2.0

	bandExtreme = 0.8
)

// ComputeBollinger calculates Bollinger Bands over the last period prices
func ComputeBollinger(prices []float64, period int, multiplier float64) (models.BollingerResult, error) {
	if period < 1 {
		period = DefaultBollingerPeriod
	}
	if len(prices) < period {
		return models.BollingerResult{}, insufficient("bollinger", period, len(prices))
	}

	recent := prices[len(prices)-period:]

	middle := mean(recent)

	// Population standard deviation
	var variance float64
	for _, p := range recent {
		variance += math.Pow(p-middle, 2)
	}
	sd := math.Sqrt(variance / float64(period))

	upper := middle + multiplier*sd
	lower := middle - multiplier*sd

	// A flat window has no band width, the price sits on the mean.
	position := 0.0
	if width := sd * multiplier; width > 0 {
		position = (recent[len(recent)-1] - middle) / width
		position = math.Max(-1, math.Min(1, position))
	}

	signal := models.BandNeutral
	if position > bandExtreme {
		signal = models.BandOverbought
	} else if position < -bandExtreme {
		signal = models.BandOversold
	}

	return models.BollingerResult{
		Upper:    upper,
		Middle:   middle,
		Lower:    lower,
		Position: position,
		Signal:   signal,
	}, nil
}

// VolatilityHint describes how wide the bands are relative to the mean
func VolatilityHint(b models.BollingerResult) string {
	if b.Upper-b.Lower < 0.01*b.Middle {
		return "Low volatility - breakout likely"
	}
	return "Wide bands - high volatility"
}
