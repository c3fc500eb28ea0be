package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/acadhub/academic-records-api/api/swagger"
	"github.com/acadhub/academic-records-api/internal/handler"
	"github.com/acadhub/academic-records-api/internal/middleware"
	"github.com/acadhub/academic-records-api/internal/repository"
	"github.com/acadhub/academic-records-api/internal/service"
	"github.com/acadhub/academic-records-api/pkg/cache"
	"github.com/acadhub/academic-records-api/pkg/config"
	"github.com/acadhub/academic-records-api/pkg/database"
	"github.com/acadhub/academic-records-api/pkg/logger"
	corsmiddleware "github.com/acadhub/academic-records-api/pkg/middleware/cors"
	reqidmiddleware "github.com/acadhub/academic-records-api/pkg/middleware/requestid"
)

// @title Academic Records API
// @version 1.0.0
// @description Course and per-semester dataset management service
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(db); err != nil {
		logr.Sugar().Fatalw("failed to ensure schema", "error", err)
	}

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, dataset query cache disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && cacheRepo != nil)

	validate := validator.New()

	courseSvc := service.NewCourseService(repository.NewCourseRepository(db), cacheSvc, validate, logr)
	datasetSvc := service.NewDatasetService(repository.NewDatasetRepository(db), cacheSvc, metricsSvc, validate, logr)

	courseHandler := handler.NewCourseHandler(courseSvc)
	datasetHandler := handler.NewDatasetHandler(datasetSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api")
	{
		api.POST("/addCourse", courseHandler.Add)
		api.PUT("/updateCourse/:id", courseHandler.Update)
		api.GET("/courses", courseHandler.List)
		api.GET("/courses/:id", courseHandler.Get)
		api.GET("/courses/assessments/:courseId", courseHandler.AssessmentNames)
		api.DELETE("/deleteCourse/:id", courseHandler.Delete)

		api.PUT("/add-dataset", datasetHandler.Merge)
		api.GET("/datasets/filter", datasetHandler.Filter)
		api.GET("/datasets/:id/export", datasetHandler.Export)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
