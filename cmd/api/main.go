package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"makerspace/internal/auth"
	"makerspace/internal/events"
	"makerspace/internal/httpapi"
	"makerspace/internal/seed"
	"makerspace/internal/store"
	"makerspace/pkg/config"
	"makerspace/pkg/db"
	"makerspace/pkg/logging"
	"makerspace/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st store.Set
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn("using in-memory store; data is lost on restart")
		st = store.Memory()
	default:
		if !cfg.SkipMigrations {
			if err := db.Migrate(cfg); err != nil {
				log.Fatalf("migrate: %v", err)
			}
		}
		pool, err := db.Open(ctx, cfg)
		if err != nil {
			log.Fatalf("db open: %v", err)
		}
		defer pool.Close()
		st = store.Postgres(pool)
	}

	if cfg.SeedDemo {
		err := seed.Demo(ctx, seed.Stores{Machines: st.Machines, Courses: st.Courses, Users: st.Users},
			seed.Admin{Email: cfg.SeedAdminEmail, Password: cfg.SeedAdminPassword}, log)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	m := metrics.New()
	pub, err := events.NewPublisher(ctx, cfg.Events, log)
	if err != nil {
		log.Fatalf("events: %v", err)
	}
	defer func() { _ = pub.Close() }()

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:     cfg,
		Store:   st,
		Tokens:  auth.NewTokens(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL),
		Events:  events.NewEmitter(pub, log, m),
		Metrics: m,
		Log:     log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.HTTPAddr, "store": cfg.StoreDriver, "events": cfg.Events.Driver}).Info("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http serve: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	log.Info("stopped")
}
