package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/Alias1177/ForecastBot/internal/calculate"
	"github.com/Alias1177/ForecastBot/internal/format"
	"github.com/Alias1177/ForecastBot/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var supportedIntervals = []string{"15m", "1h", "4h", "1d"}

const welcomeText = `🤖 <b>Welcome to ForecastBot!</b>

📊 Get crypto forecasts from technical signals

<b>Commands:</b>
/forecast BTC - Analyze BTC/USDT
/pairs - Most traded pairs
/interval - Choose candle interval
Or just send: BTC, ETH, SOL

<b>Features:</b>
📈 EMA, Bollinger, Fibonacci
🧠 Sentiment analysis
💰 Funding rate tracking`

// Sender is the part of tgbotapi.BotAPI the bot uses
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Forecaster produces a forecast for a symbol on a candle interval
type Forecaster interface {
	ForecastSymbolInterval(ctx context.Context, symbol, interval string) (*models.ForecastResult, error)
}

// PairLister lists the most traded pairs
type PairLister interface {
	TopPairs(ctx context.Context, limit int) ([]string, error)
}

// Bot answers Telegram updates with forecasts
type Bot struct {
	api             Sender
	forecaster      Forecaster
	pairs           PairLister
	defaultPair     string
	defaultInterval string

	mu        sync.Mutex
	intervals map[int64]string // per-chat interval choice

	logger zerolog.Logger
}

// New creates a bot. pairs may be nil, which disables the /pairs menu.
func New(api Sender, forecaster Forecaster, pairs PairLister, defaultPair, defaultInterval string) *Bot {
	return &Bot{
		api:             api,
		forecaster:      forecaster,
		pairs:           pairs,
		defaultPair:     defaultPair,
		defaultInterval: defaultInterval,
		intervals:       make(map[int64]string),
		logger:          log.With().Str("component", "telegram_bot").Logger(),
	}
}

// Run handles updates until the channel closes or ctx is done
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate processes a single update
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		msg := tgbotapi.NewMessage(chatID, welcomeText)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📈 BTC", "pair_BTCUSDT"),
				tgbotapi.NewInlineKeyboardButtonData("📊 ETH", "pair_ETHUSDT"),
			),
		)
		b.send(msg)
		return
	case "forecast":
		symbol := SymbolFromText(message.CommandArguments())
		if symbol == "" {
			symbol = b.defaultPair
		}
		b.sendForecast(ctx, chatID, symbol)
		return
	case "pairs":
		b.sendPairsMenu(ctx, chatID)
		return
	case "interval":
		b.sendIntervalMenu(chatID)
		return
	case "":
	default:
		b.send(tgbotapi.NewMessage(chatID, "Unknown command. Send /start for help."))
		return
	}

	if symbol := SymbolFromText(message.Text); symbol != "" {
		b.sendForecast(ctx, chatID, symbol)
	}
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	// Acknowledge the callback query
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Warn().Err(err).Msg("Failed to answer callback")
	}
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID

	switch data := callback.Data; {
	case strings.HasPrefix(data, "pair_"):
		b.sendForecast(ctx, chatID, strings.TrimPrefix(data, "pair_"))
	case strings.HasPrefix(data, "interval_"):
		interval := strings.TrimPrefix(data, "interval_")
		if !contains(supportedIntervals, interval) {
			return
		}
		b.mu.Lock()
		b.intervals[chatID] = interval
		b.mu.Unlock()
		b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Selected interval: %s", interval)))
	}
}

func (b *Bot) sendForecast(ctx context.Context, chatID int64, symbol string) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Debug().Err(err).Msg("Failed to send chat action")
	}

	interval := b.interval(chatID)
	result, err := b.forecaster.ForecastSymbolInterval(ctx, symbol, interval)
	if err != nil {
		b.logger.Error().Err(err).Str("symbol", symbol).Int64("chat_id", chatID).Msg("Forecast failed")
		b.send(tgbotapi.NewMessage(chatID, ErrorText(symbol, err)))
		return
	}

	msg := tgbotapi.NewMessage(chatID, format.ForecastMessage(result))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", "pair_"+result.Symbol),
			tgbotapi.NewInlineKeyboardButtonURL("📊 Chart", "https://www.binance.com/en/trade/"+result.Symbol),
		),
	)
	b.send(msg)
}

func (b *Bot) sendPairsMenu(ctx context.Context, chatID int64) {
	if b.pairs == nil {
		b.send(tgbotapi.NewMessage(chatID, "Pair list is not available."))
		return
	}
	pairs, err := b.pairs.TopPairs(ctx, 12)
	if err != nil || len(pairs) == 0 {
		b.logger.Error().Err(err).Msg("Failed to list pairs")
		b.send(tgbotapi.NewMessage(chatID, "❌ Could not load pairs, try again later."))
		return
	}

	var keyboard [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i, pair := range pairs {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(pair, "pair_"+pair))
		if (i+1)%3 == 0 || i == len(pairs)-1 {
			keyboard = append(keyboard, row)
			row = nil
		}
	}

	msg := tgbotapi.NewMessage(chatID, "Select a pair:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	b.send(msg)
}

func (b *Bot) sendIntervalMenu(chatID int64) {
	var row []tgbotapi.InlineKeyboardButton
	for _, interval := range supportedIntervals {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(interval, "interval_"+interval))
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Current interval: %s\nSelect a candle interval:", b.interval(chatID)))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	b.send(msg)
}

func (b *Bot) interval(chatID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if interval, ok := b.intervals[chatID]; ok {
		return interval
	}
	return b.defaultInterval
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send message")
	}
}

// SymbolFromText turns free text like "btc" or "ETH/USDT" into a USDT pair symbol
func SymbolFromText(text string) string {
	letters := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) && r < unicode.MaxASCII {
			return unicode.ToUpper(r)
		}
		return -1
	}, text)
	if len(letters) < 3 {
		return ""
	}
	if !strings.HasSuffix(letters, "USDT") {
		letters += "USDT"
	}
	return letters
}

// ErrorText is the chat reply for a failed forecast
func ErrorText(symbol string, err error) string {
	if errors.Is(err, calculate.ErrInsufficientData) {
		return fmt.Sprintf("❌ Not enough history for %s yet.", symbol)
	}
	return fmt.Sprintf("❌ Error: could not forecast %s.", symbol)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
