package main

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-coffee-orders/internal/config"
	"github.com/ariefcatur/go-coffee-orders/internal/httpx"
	kafkax "github.com/ariefcatur/go-coffee-orders/internal/kafka"
	"github.com/ariefcatur/go-coffee-orders/internal/logx"
	"github.com/ariefcatur/go-coffee-orders/internal/orders"
	"github.com/ariefcatur/go-coffee-orders/internal/postgres"
	"github.com/ariefcatur/go-coffee-orders/internal/redisx"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	log := logx.New("coffee-api", cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	log = logx.New(cfg.ServiceName, cfg.LogLevel)

	policy, err := orders.ParseMissingStockPolicy(cfg.MissingStockPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.DB.DSN(), postgres.Options{
		MaxConns: cfg.DB.MaxConns,
		Echo:     cfg.DB.Echo,
		Log:      log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	schema := &postgres.Schema{DB: db}
	if err := schema.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024, log)
	prod.Start()

	// Repo & handler
	repo := &orders.Repo{DB: db}
	placer := orders.NewPlacer(repo, log)
	placer.SugarIngredientID = cfg.SugarIngredientID
	placer.SugarGramsPerUnit = cfg.SugarGramsPerUnit
	placer.MissingStock = policy

	h := &httpx.Handler{
		Placer:    placer,
		Catalog:   repo,
		Schema:    schema,
		Redis:     rdb,
		Publisher: prod,
		CacheTTL:  cfg.CatalogCacheTTL,
		Service:   cfg.ServiceName,
		Log:       log,
	}
	if cfg.OrderRateLimit > 0 {
		h.Limiter = httpx.NewRateLimiter(cfg.OrderRateLimit, cfg.OrderRateBurst)
	}
	router := httpx.NewRouter(log)
	h.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("missing_stock", string(policy)).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	waitSignal(log)

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		// handler yang masih jalan tetap aman: Publish setelah Close hanya di-drop
		log.Error().Err(err).Msg("http shutdown")
	}
	prod.Close()      // tutup inbox -> flush & close writer
	prod.WaitClosed() // drain
}

func waitSignal(log zerolog.Logger) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Info().Str("signal", s.String()).Msg("shutting down...")
}
