package main

import (
	"context"
	"fmt"

	"proxedu/config"
	"proxedu/pkg/logger"
	"proxedu/storage/postgres"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)
	pg, err := postgres.New(context.Background(), cfg, log)

	if err != nil {
		panic(err)
	}
	defer pg.Close()

	// Catalog rows go too; modules and lessons follow their course through CASCADE.
	_, err = pg.GetPool().Exec(context.Background(),
		"TRUNCATE TABLE users, payments, messages, courses RESTART IDENTITY CASCADE")
	if err != nil {
		log.Error(fmt.Sprintf("Failed to truncate tables: %v", err))
	} else {
		log.Info("Successfully truncated users, payments, messages and the course catalog.")
	}
}
