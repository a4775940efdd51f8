package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"voicescreen/internal/cache"
	"voicescreen/internal/config"
	"voicescreen/internal/logger"
	"voicescreen/internal/repository"
	"voicescreen/internal/service"
	"voicescreen/internal/transport/rest"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	zlog, err := logger.New(cfg.LogJSON, cfg.Debug)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	aiConfig := config.DefaultAIConfig()
	zlog.Info("AI config",
		zap.String("drafter", aiConfig.Models.Drafter),
		zap.String("scorer", aiConfig.Models.Scorer),
		zap.String("sentiment", aiConfig.Models.Sentiment),
		zap.String("candidateQA", aiConfig.Models.CandidateQA),
		zap.Bool("enabled", aiConfig.IsEnabled()))
	if !aiConfig.IsEnabled() {
		zlog.Warn("GEMINI_API_KEY not set, drafting and scoring run on local fallbacks")
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		zlog.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		zlog.Fatal("Failed to ping MongoDB", zap.Error(err))
	}
	zlog.Info("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDatabase)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	defer rdb.Close()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		zlog.Fatal("Failed to ping Redis", zap.Error(err))
	}
	zlog.Info("Connected to Redis")

	sessionRepo := repository.NewSessionRepo(db)
	turnRepo := repository.NewTurnRepo(db)
	scoreRepo := repository.NewScoreRepo(db)
	jobRepo := repository.NewJobRepo(db)
	syncLogRepo := repository.NewSyncLogRepo(db)

	stateCache := cache.NewStateCache(rdb)

	gemini := service.NewGeminiClient(aiConfig)
	policy := service.NewPolicyEngine(zlog)
	drafter := service.NewQuestionDrafter(gemini, zlog)
	scorer := service.NewAnswerScorer(gemini, zlog)
	recommender := service.NewRecommendationEngine()
	signals := service.NewSignalsService(gemini, zlog)
	ats := service.NewATSSyncService(cfg.ATSWebhookURL, syncLogRepo, zlog)

	interviewSvc := service.NewInterviewService(
		sessionRepo, turnRepo, scoreRepo, jobRepo, stateCache,
		policy, drafter, scorer, recommender, signals, ats, gemini, zlog,
	)

	router := rest.NewRouter(&rest.Container{
		InterviewService: interviewSvc,
		JobRepo:          jobRepo,
		Logger:           zlog,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zlog.Info("Server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Forced shutdown", zap.Error(err))
	}
	zlog.Info("Server stopped")
}
