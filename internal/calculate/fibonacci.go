package calculate

import (
	"math"

	"github.com/Alias1177/ForecastBot/models"
)

const (
	DefaultFibonacciLookback = 100

	// relative distance at which price counts as sitting on a level
	fibTolerance = 0.005
)

type fibRatio struct {
	name   string
	ratio  float64
	signal string
}

// Ordered from the swing high down to the swing low. Nearest-level ties keep the first entry.
var retracementRatios = []fibRatio{
	{"0% (High)", 0, models.LevelResistance},
	{"23.6%", 0.236, models.LevelResistance},
	{"38.2%", 0.382, models.LevelSupport},
	{"50%", 0.5, models.LevelSupport},
	{"61.8% (Golden)", 0.618, models.LevelSupport},
	{"78.6%", 0.786, models.LevelSupport},
	{"100% (Low)", 1.0, models.LevelSupport},
}

var extensionRatios = []fibRatio{
	{name: "127.2%", ratio: 0.272},
	{name: "161.8%", ratio: 0.618},
	{name: "261.8%", ratio: 1.618},
}

// ComputeFibonacci builds retracement levels from the swing high/low of the last lookback prices
func ComputeFibonacci(prices []float64, lookback int) (models.FibonacciResult, error) {
	if len(prices) < 2 {
		return models.FibonacciResult{}, insufficient("fibonacci", 2, len(prices))
	}
	if lookback < 1 {
		lookback = DefaultFibonacciLookback
	}

	recent := prices
	if len(prices) > lookback {
		recent = prices[len(prices)-lookback:]
	}

	high, low := recent[0], recent[0]
	for _, p := range recent[1:] {
		high = math.Max(high, p)
		low = math.Min(low, p)
	}
	span := high - low

	result := models.FibonacciResult{
		High:         high,
		Low:          low,
		Retracements: make([]models.FibonacciLevel, len(retracementRatios)),
		Extensions:   make([]models.FibonacciLevel, len(extensionRatios)),
	}
	for i, r := range retracementRatios {
		price := high - span*r.ratio
		if r.ratio == 1.0 {
			price = low
		}
		result.Retracements[i] = models.FibonacciLevel{Name: r.name, Ratio: r.ratio, Price: price}
	}
	for i, r := range extensionRatios {
		result.Extensions[i] = models.FibonacciLevel{Name: r.name, Ratio: r.ratio, Price: low - span*r.ratio}
	}

	result.CurrentLevel, result.Signal = classifyFibPosition(prices[len(prices)-1], result.Retracements)
	return result, nil
}

func classifyFibPosition(price float64, levels []models.FibonacciLevel) (string, string) {
	nearest := 0
	minDistance := math.Abs(price - levels[0].Price)
	for i := 1; i < len(levels); i++ {
		if d := math.Abs(price - levels[i].Price); d < minDistance {
			minDistance = d
			nearest = i
		}
	}

	if minDistance < fibTolerance*math.Abs(price) {
		return "Near " + levels[nearest].Name, retracementRatios[nearest].signal
	}

	level382, level500, level618 := levels[2].Price, levels[3].Price, levels[4].Price
	switch {
	case price > level618 && price < level382:
		return "Between 38.2% and 61.8%", models.LevelNeutral
	case price > level500:
		return "Above 50% retracement", models.LevelResistance
	default:
		return "Below key support", models.LevelSupport
	}
}
