package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	v1 "github.com/xiaoxin-go/webchat/cmd/api/router/v1"
	"github.com/xiaoxin-go/webchat/internal/config"
	cacheadapter "github.com/xiaoxin-go/webchat/internal/infrastructure/cache/adapter"
	"github.com/xiaoxin-go/webchat/internal/infrastructure/database"
	queueadapter "github.com/xiaoxin-go/webchat/internal/infrastructure/queue/adapter"
	"github.com/xiaoxin-go/webchat/internal/infrastructure/realtime"
	"github.com/xiaoxin-go/webchat/internal/pkg/chat/application/task"
	"github.com/xiaoxin-go/webchat/internal/pkg/chat/application/usecase"
	repoadapter "github.com/xiaoxin-go/webchat/internal/pkg/chat/persistence/repository/adapter"
	chathttp "github.com/xiaoxin-go/webchat/internal/pkg/chat/presentation/http"
	"github.com/xiaoxin-go/webchat/internal/pkg/chat/presence"
	"github.com/xiaoxin-go/webchat/internal/pkg/chat/store"
	socialadapter "github.com/xiaoxin-go/webchat/internal/repository/adapter"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: .env file not found or could not be loaded: %v", err)
	}

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	logger := zl.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		logger.Fatalf("parse config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	pool, err := database.Connect(connectCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logger.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	cache, err := cacheadapter.NewRedisAdapter(cfg.RedisURL)
	if err != nil {
		logger.Fatalf("connect to redis: %v", err)
	}
	defer func() { _ = cache.Close() }()

	queueClient, err := queueadapter.NewAsynqClient(cfg.RedisURL)
	if err != nil {
		logger.Fatalf("init queue client: %v", err)
	}
	defer func() { _ = queueClient.Close() }()

	hub := realtime.NewHub()
	defer hub.Close()

	registry := presence.NewRegistry(cache, logger, cfg.PresenceTTL)
	messageStore := store.New(cache, logger, cfg.MessageRetention)
	directory := repoadapter.NewPgDirectoryRepository(pool)
	social := socialadapter.NewPgSocialRepository(pool)

	sendUC := usecase.NewSendMessageUseCase(directory, social, messageStore, registry, hub, logger)
	deps := chathttp.Deps{
		Hub:    hub,
		Queue:  queueClient,
		Logger: logger,
		Send:   sendUC,
		Start:  usecase.NewStartConversationUseCase(directory, social),
		List:   usecase.NewListConversationsUseCase(directory, social, logger),
		Hist:   usecase.NewGetHistoryUseCase(directory, messageStore, logger, cfg.HistoryPageSize),
		Del:    usecase.NewDeleteConversationUseCase(directory),
		Enter:  usecase.NewEnterViewUseCase(registry),
		Exit:   usecase.NewExitViewUseCase(registry),
	}

	// Workers consume queued sends in-process.
	queueServer, err := queueadapter.NewAsynqServer(cfg.RedisURL, cfg.WorkerConcurrency, cfg.WorkerQueues, logger)
	if err != nil {
		logger.Fatalf("init queue server: %v", err)
	}
	task.RegisterSendMessageTask(queueServer, sendUC)
	go func() {
		if err := queueServer.Run(ctx); err != nil {
			logger.Errorf("queue server: %v", err)
		}
	}()

	r := gin.New()
	r.Use(gin.Recovery(), v1.RequestLogger(logger))
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	v1.RegisterRoutes(r, deps)

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}
	go func() {
		logger.Infof("listening on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("http shutdown: %v", err)
	}
}
