package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"duka-pos/internal/config"
	"duka-pos/internal/db"
	"duka-pos/internal/domain"
	"duka-pos/internal/importer"
	"duka-pos/internal/logging"
	"duka-pos/internal/repository/product"
	"duka-pos/internal/repository/store"
)

func main() {
	var (
		filePath  string
		storeKey  string
		storeName string
	)
	flag.StringVar(&filePath, "file", "", "Path to inventory CSV (code,sku,name,price,stock)")
	flag.StringVar(&storeKey, "store", "", "Store key to import into")
	flag.StringVar(&storeName, "name", "", "Store display name when the store is created")
	flag.Parse()

	if filePath == "" || storeKey == "" {
		flag.Usage()
		os.Exit(2)
	}

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
	logger = logger.Named("importer")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	storeRepo := store.NewPostgres(pool, logger)
	st, err := storeRepo.GetByKey(ctx, storeKey)
	if errors.Is(err, domain.ErrNotFound) {
		st, err = storeRepo.Upsert(ctx, domain.Store{Key: storeKey, Name: storeName})
	}
	if err != nil {
		logger.Fatal("ensure store", zap.String("store_key", storeKey), zap.Error(err))
	}

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("open file", zap.String("file", filePath), zap.Error(err))
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, product.NewPostgres(pool, logger), st.ID, logger)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal("import failed", zap.Int("imported", count), zap.Error(err))
	}

	logger.Info("import finished",
		zap.String("store_key", storeKey),
		zap.Int("products", count),
		zap.Duration("took", time.Since(start).Truncate(time.Millisecond)),
	)
}
