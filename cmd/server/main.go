package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"mongoidentity/internal/identity/handler"
	"mongoidentity/internal/identity/metrics"
	"mongoidentity/internal/identity/service"
	"mongoidentity/internal/identity/store"
	"mongoidentity/internal/identity/store/role"
	"mongoidentity/internal/identity/store/user"
	"mongoidentity/internal/platform/config"
	"mongoidentity/internal/platform/httpserver"
	"mongoidentity/internal/platform/logger"
	"mongoidentity/internal/platform/mongodb"
	"mongoidentity/internal/platform/redis"
)

// main wires high-level dependencies and keeps the server lifecycle
// small. Business logic lives in the internal identity packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(slog.LevelInfo)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, err := mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn("mongodb disconnect", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDatabase)
	var users store.UserStore = user.NewMongo(db)
	roles := role.NewMongo(db)

	redisClient, err := redis.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		users = user.NewCached(users, redisClient, cfg.UserCacheTTL)
		log.Info("user cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.UserCacheTTL)
	}

	svc := service.New(users, roles, log, metrics.New())

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())
	handler.New(svc, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting identity server", "addr", cfg.Addr, "database", cfg.MongoDatabase)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
