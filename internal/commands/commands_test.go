package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Alias1177/ForecastBot/internal/analyze"
	"github.com/Alias1177/ForecastBot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatMarket serves a Binance-shaped API where every close is 100
func flatMarket(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/ticker/24hr", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"BTCUSDT","lastPrice":"100.00","priceChangePercent":"0","volume":"10","quoteVolume":"1000"}`))
	})
	mux.HandleFunc("/api/v3/klines", func(w http.ResponseWriter, r *http.Request) {
		rows := make([]string, 30)
		for i := range rows {
			open := int64(1700000000000) + int64(i)*3600000
			rows[i] = fmt.Sprintf(`[%d,"100","101","99","100","1.0",%d,"0",1,"0","0","0"]`, open, open+3599999)
		}
		w.Write([]byte("[" + strings.Join(rows, ",") + "]"))
	})
	mux.HandleFunc("/fapi/v1/fundingRate", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func setTestEnv(t *testing.T, url string) {
	t.Setenv("BINANCE_BASE_URL", url)
	t.Setenv("BINANCE_FUTURES_URL", url)
	t.Setenv("HUGGINGFACE_API_KEY", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("INTERVAL", "1h")
	t.Setenv("DEFAULT_PAIR", "BTCUSDT")
}

func TestAnalyzeJSON(t *testing.T) {
	setTestEnv(t, flatMarket(t).URL)

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"analyze", "btc-usdt", "--json", "--log-level", "error"})
	require.NoError(t, root.Execute())

	var result models.ForecastResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "BTCUSDT", result.Symbol)
	assert.Equal(t, 100.0, result.Price)
	assert.Equal(t, models.SignalNeutral, result.Signal)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, analyze.RecommendWait, result.Recommendation)
	assert.True(t, result.Components.Sentiment.Fallback)
}

func TestAnalyzeText(t *testing.T) {
	setTestEnv(t, flatMarket(t).URL)

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"analyze", "--log-level", "error"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "BTCUSDT @ 100.0000")
	assert.Contains(t, out.String(), "NEUTRAL")
	assert.Contains(t, out.String(), analyze.RecommendWait)
}

func TestAnalyzeInvalidInterval(t *testing.T) {
	setTestEnv(t, flatMarket(t).URL)

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"analyze", "BTCUSDT", "--interval", "7m", "--log-level", "error"})
	err := root.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, analyze.ErrMarketData)
}

func TestBotRequiresToken(t *testing.T) {
	setTestEnv(t, "http://127.0.0.1:0")

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"bot", "--log-level", "error"})
	assert.ErrorIs(t, root.Execute(), errNoBotToken)
}
