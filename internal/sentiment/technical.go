package sentiment

import (
	"fmt"
	"math"

	"github.com/Alias1177/ForecastBot/models"
)

const (
	fundingThreshold = 0.01
	bandThreshold    = 0.8
)

// TechnicalScore is the rule-based sub-score in [-1, 1]
func TechnicalScore(f models.SentimentFeatures) float64 {
	// equal averages carry no direction
	var score float64
	if f.EMA9 > f.EMA21 {
		score = 0.4
	} else if f.EMA9 < f.EMA21 {
		score = -0.4
	}

	// crowded longs pay shorts, read contrarian
	if f.FundingRate > fundingThreshold {
		score -= 0.3
	} else if f.FundingRate < -fundingThreshold {
		score += 0.3
	}

	if f.BollingerPosition < -bandThreshold {
		score += 0.3
	} else if f.BollingerPosition > bandThreshold {
		score -= 0.3
	}

	return math.Max(-1, math.Min(1, score))
}

// Describe renders the feature conditions as text for an external classifier
func Describe(f models.SentimentFeatures) string {
	momentum := "flat"
	if f.EMA9 > f.EMA21 {
		momentum = "positive"
	} else if f.EMA9 < f.EMA21 {
		momentum = "negative"
	}
	funding := "bearish"
	if f.FundingRate > 0 {
		funding = "bullish"
	}
	band := "lower band"
	if f.BollingerPosition > 0 {
		band = "upper band"
	}

	return fmt.Sprintf(
		"Price momentum: %s. Funding: %s at %.3f%%. Bollinger: %s. Last price %.4f on volume %.2f.",
		momentum, funding, f.FundingRate*100, band, f.Price, f.Volume,
	)
}

// reasons lists the technical observations in fixed order
func reasons(f models.SentimentFeatures) []string {
	out := make([]string, 0, 4)
	switch {
	case f.EMA9 > f.EMA21:
		out = append(out, "Bullish EMA crossover")
	case f.EMA9 < f.EMA21:
		out = append(out, "Bearish EMA trend")
	default:
		out = append(out, "Flat EMA")
	}
	if math.Abs(f.FundingRate) > fundingThreshold {
		if f.FundingRate > 0 {
			out = append(out, "High funding")
		} else {
			out = append(out, "Negative funding")
		}
	}
	if math.Abs(f.BollingerPosition) > bandThreshold {
		if f.BollingerPosition > 0 {
			out = append(out, "Overbought")
		} else {
			out = append(out, "Oversold")
		}
	}
	return out
}

func classify(score, threshold float64) models.Signal {
	switch {
	case score > threshold:
		return models.SignalBullish
	case score < -threshold:
		return models.SignalBearish
	default:
		return models.SignalNeutral
	}
}
