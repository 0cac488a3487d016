package format

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/Alias1177/ForecastBot/internal/calculate"
	"github.com/Alias1177/ForecastBot/models"
)

var signalEmoji = map[models.Signal]string{
	models.SignalBullish: "🟢",
	models.SignalBearish: "🔴",
	models.SignalNeutral: "⚪",
}

// ConfidenceBar renders confidence as up to ten blocks
func ConfidenceBar(confidence float64) string {
	n := int(math.Round(math.Max(0, math.Min(1, confidence)) * 10))
	return strings.Repeat("█", n)
}

// Price formats a quote with precision suited to its magnitude
func Price(p float64) string {
	switch {
	case p >= 1000:
		return fmt.Sprintf("%.2f", p)
	case p >= 1:
		return fmt.Sprintf("%.4f", p)
	default:
		return fmt.Sprintf("%.8f", p)
	}
}

// ForecastMessage renders a forecast as Telegram HTML
func ForecastMessage(f *models.ForecastResult) string {
	c := f.Components

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 <b>%s Forecast</b>\n\n", html.EscapeString(f.Symbol)))
	sb.WriteString(fmt.Sprintf("💰 Price: $%s\n", Price(f.Price)))
	sb.WriteString(fmt.Sprintf("%s Signal: <b>%s</b>\n", signalEmoji[f.Signal], strings.ToUpper(string(f.Signal))))
	sb.WriteString(fmt.Sprintf("📈 Confidence: %s %.0f%%\n\n", ConfidenceBar(f.Confidence), f.Confidence*100))

	sb.WriteString("<b>Technical Analysis:</b>\n")
	sb.WriteString(fmt.Sprintf("📉 EMA: %s\n", c.EMA.Trend))
	sb.WriteString(fmt.Sprintf("📊 Bollinger: %s (%s)\n", c.Bollinger.Signal, calculate.VolatilityHint(c.Bollinger)))
	sb.WriteString(fmt.Sprintf("🎯 Fibonacci: %s\n", html.EscapeString(c.Fibonacci.CurrentLevel)))
	sb.WriteString(fmt.Sprintf("💸 Funding: %.3f%%\n\n", c.FundingRate*100))

	sb.WriteString("🧠 <b>Sentiment:</b>\n")
	sb.WriteString(html.EscapeString(strings.Join(c.Sentiment.Reasoning, " • ")))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("💡 <b>Recommendation:</b> %s\n\n", f.Recommendation))
	sb.WriteString("<i>⚠️ Not financial advice. DYOR!</i>")

	return sb.String()
}

// ForecastText renders a forecast as plain terminal text
func ForecastText(f *models.ForecastResult) string {
	c := f.Components

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s @ %s\n", f.Symbol, Price(f.Price)))
	sb.WriteString(fmt.Sprintf("Signal:         %s (%.0f%%)\n", strings.ToUpper(string(f.Signal)), f.Confidence*100))
	sb.WriteString(fmt.Sprintf("EMA 9/21:       %s / %s (%s)\n", Price(c.EMA.Fast), Price(c.EMA.Slow), c.EMA.Trend))
	sb.WriteString(fmt.Sprintf("Bollinger:      %s, position %.2f\n", c.Bollinger.Signal, c.Bollinger.Position))
	sb.WriteString(fmt.Sprintf("Fibonacci:      %s\n", c.Fibonacci.CurrentLevel))
	sb.WriteString(fmt.Sprintf("Funding:        %.3f%%\n", c.FundingRate*100))
	sb.WriteString(fmt.Sprintf("Sentiment:      %s (%.2f) %s\n", c.Sentiment.Signal, c.Sentiment.Confidence, strings.Join(c.Sentiment.Reasoning, ", ")))
	sb.WriteString(fmt.Sprintf("Recommendation: %s", f.Recommendation))
	return sb.String()
}
