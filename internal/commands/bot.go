package commands

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alias1177/ForecastBot/internal/bot"
	"github.com/Alias1177/ForecastBot/internal/config"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var errNoBotToken = errors.New("TELEGRAM_BOT_TOKEN not set in environment")

func newBotCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot with long polling",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.TelegramBotToken == "" {
				return errNoBotToken
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
			if err != nil {
				return fmt.Errorf("initializing Telegram bot: %w", err)
			}
			log.Info().Str("username", api.Self.UserName).Msg("Authorized on Telegram")

			// Long polling is rejected while a webhook is registered
			if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
				log.Warn().Err(err).Msg("Failed to delete webhook")
			}

			a := newApp(cfg)
			b := bot.New(api, a.service, a.market, cfg.DefaultPair, cfg.Interval)

			updateConfig := tgbotapi.NewUpdate(0)
			updateConfig.Timeout = 60
			updates := api.GetUpdatesChan(updateConfig)

			go func() {
				<-ctx.Done()
				log.Info().Msg("Shutdown signal received, stopping updates")
				api.StopReceivingUpdates()
			}()

			b.Run(ctx, updates)
			return nil
		},
	}
}
