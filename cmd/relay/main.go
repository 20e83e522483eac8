package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"github.com/kngcl/codebattle2-sub001/internal/relay"
	sessionrepo "github.com/kngcl/codebattle2-sub001/internal/repositories/session"
)

func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	logger := logrus.New()
	if level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		logger.SetLevel(level)
	}

	repo, cleanup, err := buildRepository(logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize session store")
	}
	defer cleanup()

	hubConfig := &relay.Config{
		SessionRepo: repo,
		Logger:      logger,
	}
	if addr := getEnv("BRIDGE_REDIS_ADDR", ""); addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			cancel()
			logger.WithError(err).Fatal("failed to connect to bridge Redis")
		}
		cancel()

		hubConfig.RedisClient = redisClient
		hubConfig.NodeID = getEnv("RELAY_NODE_ID", uuid.New().String())
		logger.WithField("node_id", hubConfig.NodeID).Info("Redis bridge enabled")
	}

	hub, err := relay.NewHub(hubConfig)
	if err != nil {
		logger.WithError(err).Fatal("failed to create hub")
	}
	defer hub.Close()

	handler, err := relay.NewHandler(&relay.HandlerConfig{
		Hub:    hub,
		Logger: logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create websocket handler")
	}

	router := mux.NewRouter()
	handler.Register(router)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf(":%s", getEnv("PORT", "8080"))
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.WithField("addr", addr).Info("relay listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("shutdown was not clean")
	}
}

// buildRepository selects the session store from SESSION_STORE:
// memory (default), redis or bolt.
func buildRepository(logger *logrus.Logger) (sessionrepo.Repository, func(), error) {
	noop := func() {}

	switch store := getEnv("SESSION_STORE", "memory"); store {
	case "memory":
		return sessionrepo.NewMemory(), noop, nil

	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return nil, noop, fmt.Errorf("failed to connect to Redis: %w", err)
		}

		repo, err := sessionrepo.NewRedis(&sessionrepo.Config{
			RedisClient: redisClient,
		})
		if err != nil {
			return nil, noop, err
		}
		return repo, func() {
			if err := redisClient.Close(); err != nil {
				logger.WithError(err).Warn("failed to close Redis client")
			}
		}, nil

	case "bolt":
		db, err := bolt.Open(getEnv("BOLT_PATH", "sessions.db"), 0o600, &bolt.Options{
			Timeout: time.Second,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open bolt database: %w", err)
		}

		repo, err := sessionrepo.NewBolt(&sessionrepo.BoltConfig{DB: db})
		if err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return repo, func() {
			if err := db.Close(); err != nil {
				logger.WithError(err).Warn("failed to close bolt database")
			}
		}, nil

	default:
		return nil, noop, fmt.Errorf("unknown SESSION_STORE %q", store)
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
