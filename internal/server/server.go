package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"schemadesigner/internal/config"
	"schemadesigner/internal/database"
	"schemadesigner/internal/handlers"
	"schemadesigner/internal/repositories"
	"schemadesigner/internal/routes"
	"schemadesigner/internal/services"
	"schemadesigner/internal/utils"
)

func NewServer() *http.Server {
	cfg := config.Load()
	logger := utils.SetupLogging(cfg.LogLevel)

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	// A nil interface keeps history disabled; the concrete repository is
	// only assigned when a database is configured.
	var historyStore services.HistoryStore
	if db != nil {
		if err := database.RunMigrations(db); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		historyStore = repositories.NewHistoryRepository(db)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	// Test Redis connection; snapshots are optional so a dead Redis only warns
	var snapshotStore services.SnapshotStore
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("redis unavailable at %s, session snapshots disabled: %v", cfg.RedisAddr, err)
		} else {
			logger.Info("Connected to Redis successfully")
			snapshotStore = repositories.NewRedisRepository(rdb)
		}
	}

	// Dependency injection
	sessionRepo := repositories.NewSessionRepository()

	llmService := services.NewLLMService(cfg, logger)
	validatorService := services.NewValidatorService(llmService, logger)
	extractorService := services.NewExtractorService(llmService, logger)
	diagramService := services.NewDiagramService()
	sqlService := services.NewSQLService(logger)
	metamodelService := services.NewMetamodelService()
	optimizerService := services.NewOptimizerService()
	executorService := services.NewExecutorService(logger)

	workflowService := services.NewWorkflowService(
		sessionRepo,
		snapshotStore,
		historyStore,
		validatorService,
		extractorService,
		validatorService,
		diagramService,
		sqlService,
		metamodelService,
		optimizerService,
		cfg.AnalyzerDebounce,
		logger,
	)

	sessionHandler := handlers.NewSessionHandler(workflowService, executorService)
	analyzeHandler := handlers.NewAnalyzeHandler(validatorService)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	routes.RegisterRoutes(router, sessionHandler, analyzeHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
