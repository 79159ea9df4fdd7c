package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/cache"
	"github.com/taskflow/taskflow-api/internal/calendar"
	"github.com/taskflow/taskflow-api/internal/config"
	"github.com/taskflow/taskflow-api/internal/focus"
	"github.com/taskflow/taskflow-api/internal/handler"
	"github.com/taskflow/taskflow-api/internal/notify"
	"github.com/taskflow/taskflow-api/internal/repo"
	"github.com/taskflow/taskflow-api/internal/store"
	"github.com/taskflow/taskflow-api/internal/suggest"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to Database.")
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal("Failed to ping the Database.")
	}
	logger.Info("Successfully connected to the Database!")

	var taskCache *cache.TaskCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		taskCache = cache.New(client, 5*time.Minute)
		if err := taskCache.Ping(context.Background()); err != nil {
			logger.Warn("redis unreachable, continuing without cache", zap.Error(err))
			taskCache = nil
		}
	}

	var notifier focus.Notifier = notify.NopNotifier{}
	if cfg.NATSURL != "" {
		n, err := notify.NewNATSNotifier(cfg.NATSURL, logger)
		if err != nil {
			logger.Warn("nats unreachable, focus events disabled", zap.Error(err))
		} else {
			notifier = n
			defer n.Close()
		}
	}

	jwtManager := auth.NewJWTManager(auth.DefaultJWTConfig(cfg.JWTSecret))
	authService := auth.NewService(repo.NewUserRepo(pool), auth.NewPasswordHasher(), jwtManager, logger)

	stores := store.NewManager(repo.NewTaskRepo(pool), taskCache, logger)
	focusService := focus.NewService(notifier, logger)
	defer focusService.Shutdown()

	calendarSync := calendar.NewSync(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, logger)
	aiClient := suggest.NewClient(cfg.AIAPIKey)

	r := handler.NewRouter(handler.Handlers{
		Auth:     handler.NewAuthHandler(authService, logger),
		Tasks:    handler.NewTaskHandler(stores, logger),
		Views:    handler.NewViewHandler(stores, logger),
		Focus:    handler.NewFocusHandler(focusService, logger),
		Suggest:  handler.NewSuggestHandler(aiClient, stores, logger),
		Calendar: handler.NewCalendarHandler(calendarSync, stores, logger),
		Game:     handler.NewGameHandler(stores, focusService, logger),
		JWT:      jwtManager,
	})

	srv := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started at ", zap.String("port", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed: ", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Shutdown error: ", zap.Error(err))
	}
	logger.Info("Server stopped succsessfully!")
}
