package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/os44ua/comida-rapida/internal/cart"
	"github.com/os44ua/comida-rapida/internal/config"
	"github.com/os44ua/comida-rapida/internal/httpx"
	kafkax "github.com/os44ua/comida-rapida/internal/kafka"
	"github.com/os44ua/comida-rapida/internal/logger"
	"github.com/os44ua/comida-rapida/internal/menu"
	"github.com/os44ua/comida-rapida/internal/orders"
	"github.com/os44ua/comida-rapida/internal/postgres"
	"github.com/os44ua/comida-rapida/internal/redisx"
	"github.com/os44ua/comida-rapida/internal/store/memstore"
	pgstore "github.com/os44ua/comida-rapida/internal/store/pg"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.ServiceName)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Order store
	var store orders.Store
	switch cfg.StoreBackend {
	case "memory":
		store = memstore.New()
		log.Info("using in-memory order store")
	default:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()

		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()

		pgs := &pgstore.Store{DB: db, Redis: rdb, Log: log}
		if err := pgs.EnsureSchema(ctx); err != nil {
			log.Error("schema setup failed", "err", err)
			os.Exit(1)
		}
		store = pgs
	}

	// Event feed
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderEvents, 1024, log)
	prod.Start(ctx)
	sink := &kafkax.Sink{Producer: prod}

	// Engine
	catalog := menu.NewCatalog(menu.Seed())
	ledger := cart.NewLedger()
	flow := &orders.Flow{
		Store:   store,
		Catalog: catalog,
		Cart:    ledger,
		Events:  sink,
		Log:     log,
		Service: cfg.ServiceName,
	}
	view := &orders.SyncView{
		Store:   store,
		Events:  sink,
		Log:     log,
		Service: cfg.ServiceName,
	}
	if err := view.Subscribe(ctx); err != nil {
		log.Error("order subscription failed", "err", err)
		os.Exit(1)
	}
	defer view.Unsubscribe()

	// HTTP
	router := httpx.NewRouter()
	h := &httpx.Handler{
		Flow:    flow,
		View:    view,
		Catalog: catalog,
		Cart:    ledger,
		Store:   store,
		Log:     log,
	}
	h.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen failed", "err", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // stop intake, flush remaining events
	prod.WaitClosed() // drain
}
