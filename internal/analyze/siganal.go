package analyze

import "github.com/Alias1177/ForecastBot/models"

const minActionableConfidence = 0.3

// Recommendation texts
const (
	RecommendWait  = "Wait for clearer signals"
	RecommendLong  = "Consider long positions"
	RecommendShort = "Consider short positions"
	RecommendHold  = "Hold current positions"
)

// collectVotes builds the vote list: sentiment first, then EMA unless the averages are equal,
// then Bollinger if the price sits at a band extreme
func collectVotes(sentiment models.Signal, ema models.EMAResult, bb models.BollingerResult) []models.Signal {
	votes := []models.Signal{sentiment}

	if ema.Fast > ema.Slow {
		votes = append(votes, models.SignalBullish)
	} else if ema.Fast < ema.Slow {
		votes = append(votes, models.SignalBearish)
	}

	switch bb.Signal {
	case models.BandOversold:
		votes = append(votes, models.SignalBullish)
	case models.BandOverbought:
		votes = append(votes, models.SignalBearish)
	}

	return votes
}

// tallyVotes returns the majority direction and |bullish - bearish| / total
func tallyVotes(votes []models.Signal) (models.Signal, float64) {
	if len(votes) == 0 {
		return models.SignalNeutral, 0
	}

	bullish, bearish := 0, 0
	for _, v := range votes {
		switch v {
		case models.SignalBullish:
			bullish++
		case models.SignalBearish:
			bearish++
		}
	}

	signal := models.SignalNeutral
	if bullish > bearish {
		signal = models.SignalBullish
	} else if bearish > bullish {
		signal = models.SignalBearish
	}

	diff := bullish - bearish
	if diff < 0 {
		diff = -diff
	}
	return signal, float64(diff) / float64(len(votes))
}

// Recommend derives the advice text from the final signal and confidence
func Recommend(signal models.Signal, confidence float64) string {
	if confidence < minActionableConfidence {
		return RecommendWait
	}
	switch signal {
	case models.SignalBullish:
		return RecommendLong
	case models.SignalBearish:
		return RecommendShort
	default:
		return RecommendHold
	}
}
