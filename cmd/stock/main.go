package main

import (
	"context"
	"github.com/ariefcatur/go-coffee-orders/internal/config"
	kafkax "github.com/ariefcatur/go-coffee-orders/internal/kafka"
	"github.com/ariefcatur/go-coffee-orders/internal/logx"
	"github.com/ariefcatur/go-coffee-orders/internal/orders"
	"github.com/ariefcatur/go-coffee-orders/internal/postgres"
	"github.com/ariefcatur/go-coffee-orders/internal/redisx"
	"github.com/ariefcatur/go-coffee-orders/internal/stock"
	"github.com/joho/godotenv"
	"os/signal"
	"syscall"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	log := logx.New("stock-watcher", cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	service := cfg.ServiceName + "-stock"
	log = logx.New(service, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := postgres.Connect(ctx, cfg.DB.DSN(), postgres.Options{MaxConns: cfg.DB.MaxConns, Echo: cfg.DB.Echo, Log: log})
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicStockLow, 256, log)
	prod.Start()

	w := &stock.Watcher{
		Catalog:     &orders.Repo{DB: db},
		Redis:       rdb,
		Publisher:   prod,
		Threshold:   cfg.LowStockThreshold,
		ServiceName: service,
		Log:         log,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.StockGroup, orders.TopicOrderPlaced, cfg.StockWorkers, log)
	log.Info().Str("group", cfg.StockGroup).Str("topic", orders.TopicOrderPlaced).
		Int("workers", cfg.StockWorkers).Float64("threshold", cfg.LowStockThreshold).Msg("stock watcher started")

	// Start blocking sampai signal; semua worker selesai sebelum return
	if err := cons.Start(ctx, w.HandleOrderPlaced); err != nil {
		log.Error().Err(err).Msg("consumer exit")
	}
	log.Info().Msg("shutting down consumer...")
	prod.Close()
	prod.WaitClosed()
}
