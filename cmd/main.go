package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"proxedu/config"
	"proxedu/pkg/api"
	"proxedu/pkg/bot"
	"proxedu/pkg/jobs"
	"proxedu/pkg/logger"
	"proxedu/pkg/notify"
	"proxedu/service"
	"proxedu/storage"
	"proxedu/storage/inmem"
	"proxedu/storage/postgres"
	"proxedu/storage/redisdb"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Load Config
	cfg := config.Load()

	// 2. Initialize Logger
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Storage: users and catalog in Postgres, pending registrations in Redis
	hub := notify.NewHub(log)
	var (
		stg       storage.IStorage
		regs      storage.IRegistrationStorage
		publisher service.Publisher = notify.NewLocalPublisher(hub)
	)

	if cfg.StorageDriver == config.StorageDriverMemory {
		log.Warning("running with in-memory storage, data is lost on restart")
		stg = inmem.New()
		regs = inmem.NewRegistrationStore()
	} else {
		pgStore, err := postgres.New(ctx, cfg, log)
		if err != nil {
			log.Error("Failed to connect to postgres", logger.Error(err))
			os.Exit(1)
		}
		stg = pgStore

		rdb, err := redisdb.NewClient(ctx, cfg, log)
		if err != nil {
			pgStore.Close()
			log.Error("Failed to connect to redis", logger.Error(err))
			os.Exit(1)
		}
		defer rdb.Close()
		regs = redisdb.NewRegistrationRepo(rdb, log)

		// Every replica relays the shared channel to its own sockets.
		publisher = notify.NewRedisPublisher(rdb, cfg.NotifyChannel)
		sub, err := notify.Subscribe(ctx, rdb, cfg.NotifyChannel, hub, log)
		if err != nil {
			log.Error("Failed to subscribe to notifications", logger.Error(err))
		} else {
			go sub.Run(ctx)
		}
	}
	defer stg.Close()

	// 4. Services
	svc := service.New(cfg, stg, regs, service.Options{Publisher: publisher}, log)

	// 5. Embedded Telegram bot
	if cfg.BotMode == config.BotModeEmbedded && cfg.TelegramBotToken != "" {
		tg, err := bot.New(cfg, bot.NewServiceVerifier(svc.Auth()), svc.User(), log)
		if err != nil {
			log.Error("Failed to initialize telegram bot", logger.Error(err))
		} else {
			svc.SetMessenger(tg)
			go tg.Start()
			defer tg.Stop()
		}
	} else {
		log.Info("telegram bot disabled", logger.String("mode", cfg.BotMode))
	}

	// 6. Background cleanup of expired codes
	jobs.StartRegistrationCleanupJob(ctx, cfg.CleanupInterval, svc.Auth(), log)

	// 7. HTTP API
	if cfg.LoggerLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := api.NewServer(cfg, api.NewRouter(cfg, svc, hub, log))
	go func() {
		log.Info("🚀 HTTP server listening", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// 8. Graceful Shutdown
	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown failed", logger.Error(err))
	}
	hub.Close()
}
