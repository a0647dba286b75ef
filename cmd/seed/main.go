package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"duka-pos/internal/config"
	"duka-pos/internal/db"
	"duka-pos/internal/logging"
	productrepo "duka-pos/internal/repository/product"
	storerepo "duka-pos/internal/repository/store"
	"duka-pos/internal/seed"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger = logger.Named("seed")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if _, err := seed.Apply(ctx, storerepo.NewPostgres(pool, logger), productrepo.NewPostgres(pool, logger), logger); err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}
}
