package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alias1177/ForecastBot/internal/bot"
	"github.com/Alias1177/ForecastBot/internal/config"
	"github.com/Alias1177/ForecastBot/internal/server"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve forecasts, health and metrics over HTTP",
		Long: `Serve exposes GET /api/forecast, /healthz and /metrics.

When TELEGRAM_BOT_TOKEN and TELEGRAM_WEBHOOK_URL are both set the
Telegram webhook is registered and updates are accepted on
POST /telegram/webhook.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a := newApp(cfg)
			opts := server.Options{
				Addr:            cfg.HTTPAddr,
				DefaultPair:     cfg.DefaultPair,
				DefaultInterval: cfg.Interval,
				Gatherer:        a.registry,
			}

			if cfg.TelegramBotToken != "" && cfg.TelegramWebhookURL != "" {
				api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
				if err != nil {
					return fmt.Errorf("initializing Telegram bot: %w", err)
				}
				if err := registerWebhook(api, cfg.TelegramWebhookURL, cfg.TelegramWebhookSecret); err != nil {
					return err
				}
				log.Info().Str("username", api.Self.UserName).Str("url", cfg.TelegramWebhookURL).Msg("Telegram webhook registered")
				opts.Updates = bot.New(api, a.service, a.market, cfg.DefaultPair, cfg.Interval)
				opts.WebhookSecret = cfg.TelegramWebhookSecret
			}

			srv := server.NewServer(a.service, opts)
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				log.Info().Msg("Shutdown signal received")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}

// registerWebhook points Telegram at url. A non-empty secret is sent as
// secret_token so every delivery carries it in server.SecretTokenHeader.
func registerWebhook(api *tgbotapi.BotAPI, url, secret string) error {
	params := tgbotapi.Params{"url": url}
	if secret != "" {
		params["secret_token"] = secret
	} else {
		log.Warn().Msg("TELEGRAM_WEBHOOK_SECRET not set, webhook deliveries are not authenticated")
	}
	if _, err := api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("registering webhook: %w", err)
	}
	return nil
}
