package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"duka-pos/internal/breaker"
	"duka-pos/internal/checkout"
	"duka-pos/internal/config"
	"duka-pos/internal/db"
	"duka-pos/internal/event"
	"duka-pos/internal/httpserver"
	"duka-pos/internal/logging"
	"duka-pos/internal/metrics"
	debtorrepo "duka-pos/internal/repository/debtor"
	productrepo "duka-pos/internal/repository/product"
	salerepo "duka-pos/internal/repository/sale"
	sessionrepo "duka-pos/internal/repository/session"
	storerepo "duka-pos/internal/repository/store"
	possvc "duka-pos/internal/service/pos"
	productsvc "duka-pos/internal/service/product"
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
	logger = logger.Named("api")

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	m := metrics.New()

	storeRepo := storerepo.NewPostgres(dbpool, logger)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	debtorRepo := debtorrepo.NewPostgres(dbpool, logger)

	lookup := breaker.WrapLookup(productRepo, breaker.Default("catalog"), logger, m)
	productService := productsvc.New(productRepo, lookup, cfg.LookupTimeout, logger)

	var recorder checkout.Recorder = breaker.WrapRecorder(salerepo.NewPostgres(dbpool, logger), breaker.Default("sales"), logger, m)
	if len(cfg.KafkaBrokers) > 0 {
		producer := event.NewProducer(cfg.KafkaBrokers, cfg.SalesTopic, logger)
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Warn("close event producer", zap.Error(err))
			}
		}()
		recorder = event.WithSaleEvents(recorder, producer, logger, m)
		logger.Info("sale events enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.SalesTopic))
	}

	readyChecks := []httpserver.ReadyCheck{{
		Name:  "postgres",
		Check: func(ctx context.Context) error { return db.Ping(ctx, dbpool) },
	}}
	sessions, redisCheck, closeSessions := sessionStore(ctx, cfg, logger)
	defer closeSessions()
	if redisCheck != nil {
		readyChecks = append(readyChecks, *redisCheck)
	}

	posService := possvc.New(sessions, productService, recorder, possvc.Options{
		Rules:         checkout.Rules{MinPhoneDigits: cfg.MinPhoneDigits},
		SubmitTimeout: cfg.SubmitTimeout,
		Logger:        logger,
		Metrics:       m,
	})

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		StoreRepo:   storeRepo,
		ProductSvc:  productService,
		POSSvc:      posService,
		DebtorRepo:  debtorRepo,
		Metrics:     m,
		CORSOrigins: cfg.CORSOrigins,
		ReadyChecks: readyChecks,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}

// sessionStore uses Redis when REDIS_ADDR is set so sessions survive a
// restart and are shared between replicas; otherwise sessions live in memory.
// The returned readiness check is nil for the in-memory store.
func sessionStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (sessionrepo.Repository, *httpserver.ReadyCheck, func()) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, keeping sessions in memory")
		return sessionrepo.NewMemory(cfg.SessionTTL), nil, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatal("connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	logger.Info("redis connected", zap.String("addr", cfg.RedisAddr))

	check := &httpserver.ReadyCheck{
		Name:  "redis",
		Check: func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}
	return sessionrepo.NewRedis(client, cfg.SessionTTL), check, func() {
		if err := client.Close(); err != nil {
			logger.Warn("close redis", zap.Error(err))
		}
	}
}
