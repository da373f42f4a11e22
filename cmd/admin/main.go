package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"proxedu/config"
	"proxedu/pkg/client"
	"proxedu/pkg/logger"
	"proxedu/service"
	"proxedu/storage"
	"proxedu/storage/inmem"
	"proxedu/storage/postgres"
	"proxedu/storage/redisdb"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName+"-admin", "warn")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := commandLine{
		cfg:      cfg,
		out:      os.Stdout,
		in:       os.Stdin,
		services: storageOpener(cfg, log),
		api:      client.New(cfg.BackendURL, client.WithBotSecret(cfg.BotAPISecret)),
	}
	if err := cli.run(ctx, os.Args); err != nil {
		if err != errHelp {
			log.Error("admin command failed", logger.Error(err))
		}
		stop()
		os.Exit(1)
	}
}

func storageOpener(cfg config.Config, log logger.ILogger) serviceOpener {
	return func(ctx context.Context) (service.IServiceManager, func(), error) {
		if cfg.StorageDriver == config.StorageDriverMemory {
			stg := inmem.New()
			return service.New(cfg, stg, inmem.NewRegistrationStore(), service.Options{}, log), stg.Close, nil
		}

		pgStore, err := postgres.New(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		rdb, err := redisdb.NewClient(ctx, cfg, log)
		if err != nil {
			pgStore.Close()
			return nil, nil, err
		}
		var stg storage.IStorage = pgStore
		closeFn := func() {
			rdb.Close()
			stg.Close()
		}
		return service.New(cfg, stg, redisdb.NewRegistrationRepo(rdb, log), service.Options{}, log), closeFn, nil
	}
}
