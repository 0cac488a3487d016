package calculate

import (
	"math"
	"testing"

	"github.com/Alias1177/ForecastBot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatPrices(n int, price float64) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = price
	}
	return prices
}

func rampPrices(n int, start, step float64) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = start + float64(i)*step
	}
	return prices
}

func TestComputeEMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}

	ema := ComputeEMA(prices, 3)
	require.Len(t, ema, 3)
	// seed: (1+2+3)/3 = 2, k = 0.5
	assert.InDelta(t, 2.0, ema[0], 1e-9)
	assert.InDelta(t, 3.0, ema[1], 1e-9)
	assert.InDelta(t, 4.0, ema[2], 1e-9)

	assert.Empty(t, ComputeEMA(prices, 6))
	assert.Empty(t, ComputeEMA(prices, 0))
}

func TestAnalyzeTrend(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   models.Trend
	}{
		{name: "flat", prices: flatPrices(30, 100), want: models.TrendNeutral},
		{name: "flat minimum length", prices: flatPrices(21, 42), want: models.TrendNeutral},
		{name: "flat inexact 0.1", prices: flatPrices(25, 0.1), want: models.TrendNeutral},
		{name: "flat inexact 1.1", prices: flatPrices(25, 1.1), want: models.TrendNeutral},
		{name: "flat inexact 2.3", prices: flatPrices(25, 2.3), want: models.TrendNeutral},
		{name: "flat inexact 64123.37", prices: flatPrices(30, 64123.37), want: models.TrendNeutral},
		{name: "steep rise", prices: rampPrices(40, 100, 2), want: models.TrendStrongUp},
		{name: "steep fall", prices: rampPrices(40, 200, -2), want: models.TrendStrongDown},
		{name: "gentle rise", prices: rampPrices(40, 1000, 0.1), want: models.TrendWeakUp},
		{name: "gentle fall", prices: rampPrices(40, 1000, -0.1), want: models.TrendWeakDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := AnalyzeTrend(tt.prices)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Trend)
			if tt.want == models.TrendNeutral {
				assert.Equal(t, res.Fast, res.Slow)
				assert.Equal(t, tt.prices[0], res.Fast)
			}
		})
	}
}

func TestAnalyzeTrendInsufficientData(t *testing.T) {
	_, err := AnalyzeTrend(flatPrices(20, 1))
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestComputeBollingerFlat(t *testing.T) {
	for _, price := range []float64{100, 0.1, 1.1, 2.3, 64123.37} {
		res, err := ComputeBollinger(flatPrices(25, price), DefaultBollingerPeriod, DefaultBollingerMultiplier)
		require.NoError(t, err)

		assert.Equal(t, price, res.Upper, "price %v", price)
		assert.Equal(t, price, res.Middle, "price %v", price)
		assert.Equal(t, price, res.Lower, "price %v", price)
		assert.Equal(t, 0.0, res.Position, "price %v", price)
		assert.Equal(t, models.BandNeutral, res.Signal, "price %v", price)
	}
}

func TestMeanExactOnConstantWindow(t *testing.T) {
	for _, price := range []float64{0.1, 0.3, 1.1, 64123.37} {
		assert.Equal(t, price, mean(flatPrices(21, price)))
	}
	assert.InDelta(t, 2.5, mean([]float64{1, 2, 3, 4}), 1e-12)
	assert.Equal(t, 0.0, mean(nil))
}

func TestComputeBollingerKnownValues(t *testing.T) {
	prices := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	res, err := ComputeBollinger(prices, 8, 2)
	require.NoError(t, err)

	// mean 5, population stddev 2
	assert.InDelta(t, 5.0, res.Middle, 1e-9)
	assert.InDelta(t, 9.0, res.Upper, 1e-9)
	assert.InDelta(t, 1.0, res.Lower, 1e-9)
	assert.InDelta(t, 1.0, res.Position, 1e-9)
	assert.Equal(t, models.BandOverbought, res.Signal)
}

func TestComputeBollingerSignals(t *testing.T) {
	spikeUp := append(flatPrices(19, 100), 150)
	res, err := ComputeBollinger(spikeUp, 20, 2)
	require.NoError(t, err)
	assert.Equal(t, models.BandOverbought, res.Signal)
	assert.LessOrEqual(t, res.Position, 1.0)

	spikeDown := append(flatPrices(19, 100), 50)
	res, err = ComputeBollinger(spikeDown, 20, 2)
	require.NoError(t, err)
	assert.Equal(t, models.BandOversold, res.Signal)
	assert.GreaterOrEqual(t, res.Position, -1.0)
}

func TestComputeBollingerPositionBounded(t *testing.T) {
	series := [][]float64{
		rampPrices(30, 10, 3),
		rampPrices(30, 500, -7),
		{1, 1000, 1, 1000, 1, 1000, 1, 1000, 1, 1000, 1, 1000, 1, 1000, 1, 1000, 1, 1000, 1, 1000},
	}
	for _, prices := range series {
		res, err := ComputeBollinger(prices, 20, 2)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Position, -1.0)
		assert.LessOrEqual(t, res.Position, 1.0)
	}
}

func TestComputeBollingerInsufficientData(t *testing.T) {
	_, err := ComputeBollinger(flatPrices(10, 1), 20, 2)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestVolatilityHint(t *testing.T) {
	assert.Equal(t, "Low volatility - breakout likely", VolatilityHint(models.BollingerResult{Upper: 100.2, Middle: 100, Lower: 99.8}))
	assert.Equal(t, "Wide bands - high volatility", VolatilityHint(models.BollingerResult{Upper: 110, Middle: 100, Lower: 90}))
}

func TestComputeFibonacciFlat(t *testing.T) {
	res, err := ComputeFibonacci(flatPrices(25, 100), DefaultFibonacciLookback)
	require.NoError(t, err)

	assert.Equal(t, 100.0, res.High)
	assert.Equal(t, 100.0, res.Low)
	require.Len(t, res.Retracements, 7)
	for _, l := range res.Retracements {
		assert.Equal(t, 100.0, l.Price, l.Name)
	}
	// every level ties, the first one wins
	assert.Equal(t, "Near 0% (High)", res.CurrentLevel)
	assert.Equal(t, models.LevelResistance, res.Signal)
}

func TestComputeFibonacciLevels(t *testing.T) {
	prices := []float64{100, 200, 150}

	res, err := ComputeFibonacci(prices, DefaultFibonacciLookback)
	require.NoError(t, err)

	want := map[float64]float64{
		0:     200,
		0.236: 176.4,
		0.382: 161.8,
		0.5:   150,
		0.618: 138.2,
		0.786: 121.4,
		1.0:   100,
	}
	for ratio, price := range want {
		got, ok := res.Level(ratio)
		require.True(t, ok)
		assert.InDelta(t, price, got, 1e-9)
	}

	require.Len(t, res.Extensions, 3)
	assert.InDelta(t, 72.8, res.Extensions[0].Price, 1e-9)
	assert.InDelta(t, 38.2, res.Extensions[1].Price, 1e-9)
	assert.InDelta(t, -61.8, res.Extensions[2].Price, 1e-9)

	assert.Equal(t, "Near 50%", res.CurrentLevel)
	assert.Equal(t, models.LevelSupport, res.Signal)
}

func TestComputeFibonacciClassification(t *testing.T) {
	tests := []struct {
		name      string
		last      float64
		wantLabel string
		want      string
	}{
		{name: "near high", last: 199.5, wantLabel: "Near 0% (High)", want: models.LevelResistance},
		{name: "near 23.6", last: 176, wantLabel: "Near 23.6%", want: models.LevelResistance},
		{name: "near golden", last: 138, wantLabel: "Near 61.8% (Golden)", want: models.LevelSupport},
		{name: "between 38.2 and 50", last: 156, wantLabel: "Between 38.2% and 61.8%", want: models.LevelNeutral},
		{name: "above 38.2", last: 168, wantLabel: "Above 50% retracement", want: models.LevelResistance},
		{name: "below 61.8", last: 130, wantLabel: "Below key support", want: models.LevelSupport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ComputeFibonacci([]float64{100, 200, tt.last}, 100)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, res.CurrentLevel)
			assert.Equal(t, tt.want, res.Signal)
		})
	}
}

func TestComputeFibonacciLookback(t *testing.T) {
	prices := append([]float64{1000, 1}, rampPrices(10, 100, 1)...)

	res, err := ComputeFibonacci(prices, 10)
	require.NoError(t, err)
	assert.Equal(t, 109.0, res.High)
	assert.Equal(t, 100.0, res.Low)
}

func TestComputeFibonacciMonotonic(t *testing.T) {
	series := [][]float64{
		rampPrices(50, 10, 1.5),
		rampPrices(50, 300, -2.25),
		{5, 1, 9, 3, 7, 2, 8},
		{0.0001, 0.00012},
	}
	for _, prices := range series {
		res, err := ComputeFibonacci(prices, 100)
		require.NoError(t, err)
		for i := 1; i < len(res.Retracements); i++ {
			assert.GreaterOrEqual(t, res.Retracements[i-1].Price, res.Retracements[i].Price)
		}
		assert.False(t, math.IsNaN(res.Retracements[3].Price))
	}
}

func TestComputeFibonacciInsufficientData(t *testing.T) {
	_, err := ComputeFibonacci([]float64{1}, 100)
	assert.ErrorIs(t, err, ErrInsufficientData)
}
