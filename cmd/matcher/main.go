package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"ridematcher/internal/api"
	botfront "ridematcher/internal/bot"
	"ridematcher/internal/config"
	mongodb "ridematcher/internal/database/mongo"
	redisdb "ridematcher/internal/database/redis"
	"ridematcher/internal/matching"
	"ridematcher/internal/matching/store"
	"ridematcher/internal/models"
	"ridematcher/internal/notify"
	"ridematcher/internal/profile"
	"ridematcher/internal/schedule"
	"ridematcher/pkg/logger"
)

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "internal/config/config.yaml"
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logLevel, err := logrus.ParseLevel(cfg.Logger.Level)
	if err != nil {
		log.Fatalf("Invalid logger level: %v", err)
	}
	logger.Init(logLevel)

	// Create a single base logger for the service
	serviceLogger := logger.New("MatcherService", "", "")

	loc, err := cfg.Location()
	if err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Invalid matching timezone")
	}

	// Connect to MongoDB using the singleton GetClient
	mongoClient, err := mongodb.GetClient(&cfg.Databases.MongoDB)
	if err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to connect to MongoDB")
	}
	db := mongoClient.Database(cfg.Databases.MongoDB.Database)
	serviceLogger.Info("Successfully connected to MongoDB")

	// Connect to Redis for the schedule response cache
	redisClient, err := redisdb.GetClient(&cfg.Databases.Redis)
	if err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to connect to Redis")
	}
	serviceLogger.Info("Successfully connected to Redis")

	// Candidate pool with TTL and thread-id indexes
	candidateStore := store.NewMongoCandidateStore(db, cfg.Matching.CandidateCollection)
	indexCtx, indexCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := candidateStore.EnsureIndexes(indexCtx); err != nil {
		indexCancel()
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to ensure candidate pool indexes")
	}
	indexCancel()

	profileStore := profile.NewMongoStore(db, cfg.Matching.ProfileCollection)

	// Schedule lookup behind the Redis cache
	scheduleClient := schedule.NewClient(&cfg.Schedule, serviceLogger)
	cachedSchedule := schedule.NewCachedClient(
		scheduleClient,
		redisClient,
		time.Duration(cfg.Schedule.CacheTTLMinutes)*time.Minute,
		serviceLogger,
	)

	resolver := matching.NewIntentResolver(
		loc,
		time.Duration(cfg.Matching.ToleranceMinutes)*time.Minute,
		time.Duration(cfg.Matching.GraceMinutes)*time.Minute,
	)
	engine := matching.NewMatchEngine(candidateStore, serviceLogger)

	// The default handler closes over frontHandler, which is created after
	// the service because the Telegram dispatcher needs the bot instance.
	var frontHandler *botfront.Handler
	tgBot, err := bot.New(cfg.Telegram.Token, bot.WithDefaultHandler(
		func(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
			frontHandler.DefaultHandler(ctx, b, update)
		},
	))
	if err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to create Telegram bot")
	}

	var dispatcher notify.Dispatcher
	var kafkaDispatcher *notify.KafkaDispatcher
	switch cfg.Notify.Transport {
	case "kafka":
		kafkaDispatcher = notify.NewKafkaDispatcher(cfg.Notify.Kafka.Brokers, cfg.Notify.Kafka.Topic, serviceLogger)
		dispatcher = kafkaDispatcher
	default:
		dispatcher = notify.NewTelegramDispatcher(tgBot, serviceLogger)
	}

	matchService := matching.NewService(
		profileStore,
		cachedSchedule,
		candidateStore,
		resolver,
		engine,
		dispatcher,
		time.Duration(cfg.Matching.PostWindowMarginMinutes)*time.Minute,
		serviceLogger,
	)

	frontHandler = botfront.NewHandler(matchService, profileStore, serviceLogger)
	frontHandler.Register(tgBot)

	// Start the Telegram bot
	ctx, cancel := context.WithCancel(context.Background())
	go tgBot.Start(ctx)
	serviceLogger.Info("Telegram bot started")

	// Setup HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	apiHandler := api.NewAPI(matchService, serviceLogger)
	api.RegisterRoutes(router, apiHandler, serviceLogger)

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	// Start server
	go func() {
		serviceLogger.Info("Starting HTTP server on " + srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("HTTP server failed to start")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	serviceLogger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Server forced to shutdown")
	}

	cancel()
	if kafkaDispatcher != nil {
		if err := kafkaDispatcher.Close(); err != nil {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Error closing Kafka dispatcher")
		}
	}
	if err := redisdb.Close(); err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Error closing Redis connection")
	}
	if err := mongodb.Close(context.Background()); err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Error disconnecting from MongoDB")
	}

	serviceLogger.Info("Service gracefully stopped")
}
