package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	httpClient "github.com/Alias1177/ForecastBot/internal/platform/http"
	"github.com/Alias1177/ForecastBot/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL    = "https://api.binance.com"
	DefaultFuturesURL = "https://fapi.binance.com"

	maxKlines = 1000
)

var ErrInvalidSymbol = errors.New("invalid symbol")

// Client fetches market snapshots from the Binance spot and futures REST APIs
type Client struct {
	baseURL    string
	futuresURL string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Binance client
type ClientOptions struct {
	BaseURL         string
	FuturesURL      string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new Binance API client
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = DefaultBaseURL
	}
	if options.FuturesURL == "" {
		options.FuturesURL = DefaultFuturesURL
	}
	if options.RequestsPerSec == 0 {
		options.RequestsPerSec = 10
	}

	return &Client{
		baseURL:    strings.TrimRight(options.BaseURL, "/"),
		futuresURL: strings.TrimRight(options.FuturesURL, "/"),
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetries:      options.MaxRetries,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "binance_client").Logger(),
	}
}

// NormalizeSymbol turns "btc-usdt", "BTC_USDT" or "BTC/USDT" into "BTCUSDT"
func NormalizeSymbol(symbol string) (string, error) {
	normalized := strings.ToUpper(strings.NewReplacer("-", "", "_", "", "/", "", " ", "").Replace(symbol))
	if len(normalized) < 5 {
		return "", fmt.Errorf("%q: %w", symbol, ErrInvalidSymbol)
	}
	for _, r := range normalized {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", fmt.Errorf("%q: %w", symbol, ErrInvalidSymbol)
		}
	}
	return normalized, nil
}

type ticker24h struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	Volume             string `json:"volume"`
	QuoteVolume        string `json:"quoteVolume"`
}

type fundingRateEntry struct {
	Symbol      string `json:"symbol"`
	FundingRate string `json:"fundingRate"`
	FundingTime int64  `json:"fundingTime"`
}

// GetSnapshot fetches the 24h ticker, klines and latest funding rate in parallel
func (c *Client) GetSnapshot(ctx context.Context, symbol, interval string, limit int) (*models.MarketSnapshot, error) {
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if _, err := models.IntervalDuration(interval); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxKlines {
		limit = maxKlines
	}

	var (
		wg         sync.WaitGroup
		ticker     *ticker24h
		candles    []models.Candle
		funding    float64
		tickerErr  error
		candlesErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		ticker, tickerErr = c.get24hTicker(ctx, normalized)
	}()
	go func() {
		defer wg.Done()
		candles, candlesErr = c.GetKlines(ctx, normalized, interval, limit)
	}()
	go func() {
		defer wg.Done()
		funding = c.GetFundingRate(ctx, normalized)
	}()
	wg.Wait()

	if tickerErr != nil {
		return nil, fmt.Errorf("fetching ticker: %w", tickerErr)
	}
	if candlesErr != nil {
		return nil, fmt.Errorf("fetching klines: %w", candlesErr)
	}

	price, err := strconv.ParseFloat(ticker.LastPrice, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing last price %q: %w", ticker.LastPrice, err)
	}
	volume, _ := strconv.ParseFloat(ticker.Volume, 64)
	change, _ := strconv.ParseFloat(ticker.PriceChangePercent, 64)

	return &models.MarketSnapshot{
		Symbol:         normalized,
		Price:          price,
		Volume24h:      volume,
		PriceChange24h: change,
		FundingRate:    funding,
		Candles:        candles,
	}, nil
}

// GetKlines fetches kline/candlestick data, oldest first
func (c *Client) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	params := url.Values{}
	params.Add("symbol", symbol)
	params.Add("interval", interval)
	params.Add("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, c.baseURL+"/api/v3/klines?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var raw [][]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	candles := make([]models.Candle, 0, len(raw))
	for i, row := range raw {
		candle, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("kline %d: %w", i, err)
		}
		candles = append(candles, candle)
	}

	// Sort candles by time (oldest first for proper calculations)
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Time.Before(candles[j].Time)
	})
	if err := models.ValidateCandles(candles); err != nil {
		return nil, err
	}

	c.logger.Debug().Str("symbol", symbol).Int("count", len(candles)).Msg("Fetched klines")
	return candles, nil
}

// GetFundingRate returns the latest perpetual funding rate, or 0 when it is unavailable
func (c *Client) GetFundingRate(ctx context.Context, symbol string) float64 {
	params := url.Values{}
	params.Add("symbol", symbol)
	params.Add("limit", "1")

	body, err := c.get(ctx, c.futuresURL+"/fapi/v1/fundingRate?"+params.Encode())
	if err != nil {
		c.logger.Warn().Err(err).Str("symbol", symbol).Msg("Funding rate unavailable")
		return 0
	}

	var entries []fundingRateEntry
	if err := json.Unmarshal(body, &entries); err != nil || len(entries) == 0 {
		return 0
	}
	rate, err := strconv.ParseFloat(entries[len(entries)-1].FundingRate, 64)
	if err != nil {
		return 0
	}
	return rate
}

// TopPairs returns the most traded USDT pairs by quote volume
func (c *Client) TopPairs(ctx context.Context, limit int) ([]string, error) {
	body, err := c.get(ctx, c.baseURL+"/api/v3/ticker/24hr")
	if err != nil {
		return nil, err
	}

	var tickers []ticker24h
	if err := json.Unmarshal(body, &tickers); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	type pair struct {
		symbol string
		volume float64
	}
	pairs := make([]pair, 0, len(tickers))
	for _, t := range tickers {
		if !strings.HasSuffix(t.Symbol, "USDT") {
			continue
		}
		v, _ := strconv.ParseFloat(t.QuoteVolume, 64)
		pairs = append(pairs, pair{symbol: t.Symbol, volume: v})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].volume > pairs[j].volume
	})

	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	symbols := make([]string, len(pairs))
	for i, p := range pairs {
		symbols[i] = p.symbol
	}
	return symbols, nil
}

func (c *Client) get24hTicker(ctx context.Context, symbol string) (*ticker24h, error) {
	body, err := c.get(ctx, c.baseURL+"/api/v3/ticker/24hr?symbol="+url.QueryEscape(symbol))
	if err != nil {
		return nil, err
	}
	var t ticker24h
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return &t, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

// parseKline decodes [openTime, "open", "high", "low", "close", "volume", ...]
func parseKline(row []json.RawMessage) (models.Candle, error) {
	if len(row) < 6 {
		return models.Candle{}, fmt.Errorf("expected at least 6 fields, got %d", len(row))
	}

	var openTime int64
	if err := json.Unmarshal(row[0], &openTime); err != nil {
		return models.Candle{}, fmt.Errorf("open time: %w", err)
	}

	values := make([]float64, 5)
	for i := range values {
		var s string
		if err := json.Unmarshal(row[i+1], &s); err != nil {
			return models.Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		values[i] = v
	}

	return models.Candle{
		Time:   time.UnixMilli(openTime).UTC(),
		Open:   values[0],
		High:   values[1],
		Low:    values[2],
		Close:  values[3],
		Volume: values[4],
	}, nil
}
