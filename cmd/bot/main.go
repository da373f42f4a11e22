package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"proxedu/config"
	"proxedu/pkg/bot"
	"proxedu/pkg/client"
	"proxedu/pkg/logger"
)

// Standalone bot: verifies codes by calling the backend over HTTP.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName+"-bot", cfg.LoggerLevel)

	if cfg.TelegramBotToken == "" {
		log.Error("TG_BOT_TOKEN is not set")
		os.Exit(1)
	}

	api := client.New(cfg.BackendURL, client.WithBotSecret(cfg.BotAPISecret))
	tg, err := bot.New(cfg, bot.NewClientVerifier(api), nil, log)
	if err != nil {
		log.Error("Failed to initialize telegram bot", logger.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go tg.Start()
	log.Info("bot is calling back to backend", logger.String("backend", cfg.BackendURL))

	<-ctx.Done()
	log.Info("Stopping bot...")
	tg.Stop()
}
