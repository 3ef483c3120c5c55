package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-stock-sentiment/internal/config"
	delivery "golang-stock-sentiment/internal/delivery/http"
	"golang-stock-sentiment/internal/repository"
	"golang-stock-sentiment/internal/service"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/postgres"
	redisPkg "golang-stock-sentiment/pkg/redis"
	"golang-stock-sentiment/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"google.golang.org/genai"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the stock sentiment API service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting API Service", logger.Field("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisCfg := redisPkg.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redisPkg.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// Initialize sentiment provider
	var sentimentRepo repository.SentimentRepository
	switch cfg.Sentiment.Provider {
	case "", "vader":
		sentimentRepo = repository.NewVaderSentimentRepository()
	case "gemini":
		genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini client", logger.ErrorField(err))
		}
		sentimentRepo = repository.NewGeminiSentimentRepository(cfg, appLogger, genAiClient)
	default:
		appLogger.Fatal("Invalid sentiment provider specified in config",
			logger.StringField("provider", cfg.Sentiment.Provider))
	}

	// Initialize repositories
	newsRepo := repository.NewNewsRepository(db.DB)
	summaryRepo := repository.NewSummaryRepository(db.DB)
	compositeRepo := repository.NewCompositeScoreRepository(db.DB)
	feedRepo := repository.NewNewsFeedRepository(cfg, appLogger)
	marketDataRepo := repository.NewMarketDataRepository(cfg, appLogger, redisClient)
	macroRepo := repository.NewMacroDataRepository(cfg, appLogger)

	// Initialize Telegram notifier
	var notifier telegram.Notifier
	if cfg.Telegram.Enabled {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	}

	// Initialize services
	txManager := repository.NewTxManager(db.DB)
	newsSvc := service.NewNewsService(txManager, cfg, appLogger, feedRepo, sentimentRepo, marketDataRepo, newsRepo, summaryRepo)
	compositeSvc := service.NewCompositeService(cfg, appLogger, summaryRepo, macroRepo, compositeRepo)
	analysisSvc := service.NewAnalysisService(cfg, appLogger, newsSvc, compositeSvc, notifier)

	// Schedule pipeline runs when configured
	var scheduler *cron.Cron
	if cfg.Scheduler.CronExpression != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.Scheduler.CronExpression, func() {
			runCtx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
			defer cancel()
			if _, err := analysisSvc.RunAnalysis(runCtx, cfg.Analysis.DefaultStocks); err != nil {
				appLogger.Error("Scheduled analysis run failed", logger.ErrorField(err))
			}
		})
		if err != nil {
			appLogger.Fatal("Invalid scheduler cron expression", logger.ErrorField(err))
		}
		scheduler.Start()
		appLogger.Info("Scheduler started", logger.StringField("cron", cfg.Scheduler.CronExpression))
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// Initialize handlers and routes
	apiV1 := e.Group("/api/v1")

	newsHandler := delivery.NewNewsHandler(newsSvc, appLogger)
	newsHandler.RegisterRoutes(apiV1)

	scoreHandler := delivery.NewScoreHandler(cfg, compositeSvc, analysisSvc, appLogger)
	scoreHandler.RegisterRoutes(apiV1)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

func main() {
	rootCmd := &cobra.Command{Use: "api"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing api CLI: %s\n", err)
		os.Exit(1)
	}
}
