package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"recipehub/internal/cache"
	"recipehub/internal/config"
	"recipehub/internal/database"
	"recipehub/internal/handler"
	"recipehub/internal/logger"
	"recipehub/internal/middleware"
	"recipehub/internal/repository"
	"recipehub/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	zapLogger := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer zapLogger.Sync()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("could not connect to postgres", zap.Error(err))
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("invalid redis url", zap.Error(err))
	}
	if cfg.RedisPassword != "" {
		redisOpts.Password = cfg.RedisPassword
	}
	redisClient := redis.NewClient(redisOpts)
	recipeCache := cache.NewRecipeCache(redisClient, cfg.CacheTTL)

	userRepo := repository.NewUserRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	tokenService := service.NewTokenService(cfg)
	userService := service.NewUserService(userRepo, tokenService, zapLogger)
	recipeService := service.NewRecipeService(recipeRepo, userRepo, recipeCache, zapLogger)
	reviewService := service.NewReviewService(reviewRepo, recipeRepo, userRepo, recipeCache, zapLogger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware())

	api := r.Group("/api")
	handler.NewAuthHandler(userService).RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(tokenService))
	handler.NewUserHandler(userService).RegisterRoutes(protected)
	handler.NewRecipeHandler(recipeService).RegisterRoutes(protected)
	handler.NewReviewHandler(reviewService).RegisterRoutes(protected)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	zapLogger.Info("API server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		zapLogger.Fatal("server exited", zap.Error(err))
	}
}
