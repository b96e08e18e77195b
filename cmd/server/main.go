package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/minichat/chat-server/internal/api"
	"github.com/minichat/chat-server/internal/chat"
	"github.com/minichat/chat-server/internal/db"
	"github.com/minichat/chat-server/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file loaded: %v", err)
	}

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: failed to load: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("logger: failed to build: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	ruleStore, convStore, cleanup, err := buildStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store: failed to initialise", zap.Error(err))
	}
	defer cleanup()

	chatService := chat.NewService(ruleStore, convStore, logger)
	conversationService := chat.NewConversationService(convStore)
	ruleService := chat.NewRuleService(ruleStore)

	// Startup seeding is a soft failure: the server still comes up, matching
	// just falls back until rules are created by hand.
	if err := chatService.SeedDefaultRules(ctx); err != nil {
		logger.Warn("seed default keyword rules failed", zap.Error(err))
	}

	router := setupRouter(cfg, chatService, conversationService, ruleService, logger)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server crashed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}

	logger.Info("server stopped cleanly")
}

func buildStores(ctx context.Context, cfg *utils.Config, logger *zap.Logger) (chat.RuleStore, chat.ConversationStore, func(), error) {
	if cfg.StoreDriver == utils.StoreDriverMemory {
		logger.Info("using in-memory store")
		mem := db.NewMemory()
		return mem.RuleStore(), mem.ConversationStore(), func() {}, nil
	}

	mongoStore, err := db.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := mongoStore.EnsureCollections(ctx); err != nil {
		_ = mongoStore.Close(context.Background())
		return nil, nil, nil, err
	}

	cleanup := func() {
		if err := mongoStore.Close(context.Background()); err != nil {
			logger.Warn("mongo close error", zap.Error(err))
		}
	}

	return db.NewMongoRuleStore(mongoStore), db.NewMongoConversationStore(mongoStore), cleanup, nil
}

func setupRouter(cfg *utils.Config, chatService *chat.Service, conversationService *chat.ConversationService, ruleService *chat.RuleService, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = []string{cfg.CORSOrigin}
	corsCfg.AllowCredentials = true
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsCfg))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api.NewHandler(chatService, conversationService, ruleService, logger).RegisterRoutes(router)

	return router
}
