package models

import (
	"time"
)

// Signal is a directional opinion of an indicator or of the whole forecast
type Signal string

const (
	SignalBullish Signal = "bullish"
	SignalBearish Signal = "bearish"
	SignalNeutral Signal = "neutral"
)

// Trend labels produced by the EMA crossover analysis
type Trend string

const (
	TrendStrongUp   Trend = "strong-uptrend"
	TrendWeakUp     Trend = "weak-uptrend"
	TrendNeutral    Trend = "neutral"
	TrendWeakDown   Trend = "weak-downtrend"
	TrendStrongDown Trend = "strong-downtrend"
)

// Bollinger band signals
const (
	BandOverbought = "overbought"
	BandOversold   = "oversold"
	BandNeutral    = "neutral"
)

// Fibonacci level signals
const (
	LevelSupport    = "support"
	LevelResistance = "resistance"
	LevelNeutral    = "neutral"
)

// Candle represents a single price candle
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// MarketSnapshot is everything the engine needs to forecast one pair
type MarketSnapshot struct {
	Symbol         string   `json:"symbol"`
	Price          float64  `json:"price"`
	Volume24h      float64  `json:"volume_24h"`
	PriceChange24h float64  `json:"price_change_24h"`
	FundingRate    float64  `json:"funding_rate"`
	Candles        []Candle `json:"candles"`
}

// Closes returns the close price series of the snapshot candles
func (s *MarketSnapshot) Closes() []float64 {
	prices := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		prices[i] = c.Close
	}
	return prices
}

// EMAResult holds the fast/slow EMA pair and the trend they imply
type EMAResult struct {
	Fast  float64 `json:"ema9"`
	Slow  float64 `json:"ema21"`
	Trend Trend   `json:"trend"`
}

// BollingerResult holds the bands and the normalized position of the last price
type BollingerResult struct {
	Upper    float64 `json:"upper"`
	Middle   float64 `json:"middle"`
	Lower    float64 `json:"lower"`
	Position float64 `json:"position"` // clamped to [-1, 1]
	Signal   string  `json:"signal"`   // overbought, oversold, neutral
}

// FibonacciLevel is a named retracement or extension price
type FibonacciLevel struct {
	Name  string  `json:"name"`
	Ratio float64 `json:"ratio"`
	Price float64 `json:"price"`
}

// FibonacciResult holds retracement levels and the current price classification
type FibonacciResult struct {
	High         float64          `json:"high"`
	Low          float64          `json:"low"`
	Retracements []FibonacciLevel `json:"retracements"` // ordered from 0% (high) to 100% (low)
	Extensions   []FibonacciLevel `json:"extensions"`
	CurrentLevel string           `json:"current_level"`
	Signal       string           `json:"signal"` // support, resistance, neutral
}

// Level returns the retracement price for the given ratio
func (f *FibonacciResult) Level(ratio float64) (float64, bool) {
	for _, l := range f.Retracements {
		if l.Ratio == ratio {
			return l.Price, true
		}
	}
	return 0, false
}

// SentimentFeatures is the input vector of the sentiment scorer
type SentimentFeatures struct {
	EMA9              float64 `json:"ema9"`
	EMA21             float64 `json:"ema21"`
	FundingRate       float64 `json:"funding_rate"`
	BollingerPosition float64 `json:"bollinger_position"`
	Price             float64 `json:"price"`
	Volume            float64 `json:"volume"`
}

// SentimentResult is the scorer verdict
type SentimentResult struct {
	Signal     Signal   `json:"signal"`
	Confidence float64  `json:"confidence"`
	Reasoning  []string `json:"reasoning"`
	Fallback   bool     `json:"fallback"`
}

// ClassifierLabel is one label/score pair returned by a sentiment classifier
type ClassifierLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ForecastComponents keeps every signal that went into a forecast
type ForecastComponents struct {
	EMA         EMAResult       `json:"ema"`
	Bollinger   BollingerResult `json:"bollinger"`
	Fibonacci   FibonacciResult `json:"fibonacci"`
	FundingRate float64         `json:"funding_rate"`
	Sentiment   SentimentResult `json:"sentiment"`
}

// ForecastResult is the final verdict for one snapshot
type ForecastResult struct {
	Symbol         string             `json:"symbol"`
	Price          float64            `json:"price"`
	Signal         Signal             `json:"signal"`
	Confidence     float64            `json:"confidence"`
	Components     ForecastComponents `json:"components"`
	Recommendation string             `json:"recommendation"`
	Timestamp      time.Time          `json:"timestamp"`
}
