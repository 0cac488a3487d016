package calculate

import "github.com/Alias1177/ForecastBot/models"

const (
	FastEMAPeriod = 9
	SlowEMAPeriod = 21
)

// ComputeEMA returns the EMA series starting at index period-1 of prices.
// The seed is the simple average of the first period prices, each following
// value is price*k + previous*(1-k) with k = 2/(period+1).
func ComputeEMA(prices []float64, period int) []float64 {
	if period < 1 || len(prices) < period {
		return nil
	}

	// Multiplier for weighting the EMA
	k := 2.0 / float64(period+1)

	ema := make([]float64, 0, len(prices)-period+1)
	prev := mean(prices[:period])
	ema = append(ema, prev)
	for i := period; i < len(prices); i++ {
		prev = (prices[i]-prev)*k + prev
		ema = append(ema, prev)
	}

	return ema
}

// AnalyzeTrend compares EMA(9) against EMA(21) on the latest price
func AnalyzeTrend(prices []float64) (models.EMAResult, error) {
	if len(prices) < SlowEMAPeriod {
		return models.EMAResult{}, insufficient("ema", SlowEMAPeriod, len(prices))
	}

	fastSeries := ComputeEMA(prices, FastEMAPeriod)
	slowSeries := ComputeEMA(prices, SlowEMAPeriod)
	fast := fastSeries[len(fastSeries)-1]
	slow := slowSeries[len(slowSeries)-1]

	return models.EMAResult{
		Fast:  fast,
		Slow:  slow,
		Trend: classifyTrend(fast, slow),
	}, nil
}

func classifyTrend(fast, slow float64) models.Trend {
	switch {
	case fast > slow*1.01:
		return models.TrendStrongUp
	case fast > slow:
		return models.TrendWeakUp
	case fast < slow*0.99:
		return models.TrendStrongDown
	case fast < slow:
		return models.TrendWeakDown
	default:
		return models.TrendNeutral
	}
}
