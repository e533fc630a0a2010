package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-inventory-api.git/internal/auth"
	"github.com/ariefcatur/go-inventory-api.git/internal/catalog"
	"github.com/ariefcatur/go-inventory-api.git/internal/config"
	"github.com/ariefcatur/go-inventory-api.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-inventory-api.git/internal/kafka"
	"github.com/ariefcatur/go-inventory-api.git/internal/orders"
	"github.com/ariefcatur/go-inventory-api.git/internal/postgres"
	"github.com/ariefcatur/go-inventory-api.git/internal/redisx"
	"github.com/ariefcatur/go-inventory-api.git/internal/reports"
	"github.com/ariefcatur/go-inventory-api.git/internal/users"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers
	placedProd := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024, logger)
	placedProd.Start(ctx)
	statusProd := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024, logger)
	statusProd.Start(ctx)

	// Services
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.ServiceName, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	blacklist := &auth.RedisBlacklist{RDB: rdb}
	usersSvc := users.NewService(&users.Repo{DB: db})
	catalogRepo := &catalog.Repo{DB: db}
	catalogSvc := catalog.NewService(catalogRepo, catalogRepo)
	ordersSvc := orders.NewService(&orders.Repo{DB: db}, cfg.RestockOnDelete)
	reportsSvc := reports.NewService(&reports.Repo{DB: db}, cfg.LowStockThreshold)

	// Router & handlers
	router := httpx.NewRouter()
	mw := &httpx.AuthMiddleware{JWT: jwtMgr, Blacklist: blacklist}
	(&httpx.AuthHandler{Users: usersSvc, JWT: jwtMgr, Blacklist: blacklist, Log: logger}).Register(router, mw)
	(&httpx.UsersHandler{Users: usersSvc}).Register(router, mw)
	(&httpx.ProductsHandler{Catalog: catalogSvc}).Register(router, mw)
	(&httpx.OrdersHandler{
		Orders:         ordersSvc,
		PlacedProducer: placedProd,
		StatusProducer: statusProd,
		Service:        cfg.ServiceName,
	}).Register(router, mw)
	(&httpx.ReportsHandler{Reports: reportsSvc}).Register(router, mw)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	placedProd.Close() // tutup inbox -> flush & close writer
	statusProd.Close()
	cancel()
	placedProd.WaitClosed()
	statusProd.WaitClosed()
}
