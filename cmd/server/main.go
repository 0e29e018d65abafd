package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rgoyal8/ipl-auction-backend/internal/config"
	"github.com/rgoyal8/ipl-auction-backend/internal/httpapi"
	"github.com/rgoyal8/ipl-auction-backend/internal/hub"
	"github.com/rgoyal8/ipl-auction-backend/internal/room"
	"github.com/rgoyal8/ipl-auction-backend/internal/squads"
	"github.com/rgoyal8/ipl-auction-backend/internal/store"
)

func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	pool := squads.Demo()
	if cfg.Squads.Path != "" {
		pool, err = squads.Load(cfg.Squads.Path)
		if err != nil {
			log.Fatal("load squads", zap.String("path", cfg.Squads.Path), zap.Error(err))
		}
		log.Info("squads loaded", zap.String("path", cfg.Squads.Path), zap.Int("squads", len(pool)))
	} else {
		log.Warn("no squads path configured, using demo pool")
	}

	var sink room.Sink = room.Nop{}
	if cfg.Database.URL != "" {
		st, err := store.Open(cfg.Database.URL, log)
		if err != nil {
			log.Fatal("open database", zap.Error(err))
		}
		sink = st
		log.Info("result persistence enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := hub.NewHub(ctx, hub.Deps{
		Squads: pool,
		Rules:  cfg.Rules(),
		Sink:   sink,
		Log:    log,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: httpapi.SetupRoutes(h, pool, cfg.Server.AllowedOrigins, log),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		h.Inbox() <- hub.ShutdownHub{}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
	log.Info("shutdown complete")
}
