package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/amalgamator/amalgamator/internal/config"
	"github.com/amalgamator/amalgamator/internal/database"
	"github.com/amalgamator/amalgamator/internal/handler"
	"github.com/amalgamator/amalgamator/internal/middleware"
	"github.com/amalgamator/amalgamator/internal/queue"
	"github.com/amalgamator/amalgamator/internal/repository"
	"github.com/amalgamator/amalgamator/internal/router"
)

func main() {
	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Redis backs the token-bucket limiter and the taxonomy response
	// cache. A nil client disables both and the API still serves.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and caching disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	amalgamations := repository.NewAmalgamationRepo(db)
	contributions := repository.NewContributionRepo(db)
	badges := repository.NewBadgeRepo(db)
	hierarchy := repository.NewHierarchicalRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users, tokens, badges)
	amalgamationHandler := handler.NewAmalgamationHandler(users, amalgamations, contributions)
	contributionHandler := handler.NewContributionHandler(users, contributions)
	badgeHandler := handler.NewBadgeHandler(badges, users)
	dataHandler := handler.NewDataHandler(cfg, hierarchy)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterAmalgamations(e, amalgamationHandler, cfg.JWTSecret)
	router.RegisterContributions(e, contributionHandler, cfg.JWTSecret)
	router.RegisterBadges(e, badgeHandler, cfg.JWTSecret)
	router.RegisterData(e, dataHandler, cfg.JWTSecret,
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
