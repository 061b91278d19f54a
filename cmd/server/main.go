package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/reelstack/movie-catalogue/internal/config"
	"github.com/reelstack/movie-catalogue/internal/database"
	"github.com/reelstack/movie-catalogue/internal/handler"
	"github.com/reelstack/movie-catalogue/internal/middleware"
	"github.com/reelstack/movie-catalogue/internal/model"
	"github.com/reelstack/movie-catalogue/internal/queue"
	"github.com/reelstack/movie-catalogue/internal/repository"
	"github.com/reelstack/movie-catalogue/internal/router"
	"github.com/reelstack/movie-catalogue/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded, continuing with environment variables")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("mongo connect failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("index creation failed: %v", err)
	}
	cancel()

	users := repository.NewUserRepo(db)
	movies := repository.NewMovieRepo(db)
	casts := repository.NewCastRepo(db)
	reviews := repository.NewReviewRepo(db)

	rdb := config.NewRedisClient()
	var sessions handler.SessionStore
	var sessionLookup middleware.SessionLookup
	if rdb != nil {
		repo := repository.NewSessionRepo(rdb, time.Duration(cfg.SessionTTLHours)*time.Hour)
		sessions = repo
		sessionLookup = repo
	} else {
		log.Println("redis unavailable: sessions disabled, bearer tokens only")
	}

	var publisher handler.IntegrityPublisher
	if cfg.RabbitURL != "" {
		publisher = queue.NewPublisher(cfg.RabbitURL)
		go queue.StartIntegrityConsumer(cfg.RabbitURL, &queue.Sweeper{
			Movies:  movies,
			Reviews: reviews,
			Users:   users,
		})
	} else {
		log.Println("RABBITMQ_URL not set: integrity queue disabled")
	}

	seedAdmin(cfg, users)

	e := echo.New()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	router.Register(e, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users, sessions, movies),
		Movies:    handler.NewMovieHandler(movies, casts, reviews, users, publisher),
		Cast:      handler.NewCastHandler(casts, movies, publisher),
		Reviews:   handler.NewReviewHandler(reviews),
		Favorites: handler.NewFavoriteHandler(users, movies),
		Authn:     middleware.Authenticate(sessionLookup, users, cfg.JWTSecret),
		Admin:     middleware.RequireAdmin(),
		Limiter:   middleware.RateLimit(config.LoadRateLimitConfig(), rdb),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// seedAdmin creates the initial admin account when ADMIN_EMAIL and
// ADMIN_PASSWORD are configured and no admin exists yet.
func seedAdmin(cfg config.Config, users *repository.UserRepo) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := users.HasAdmin(ctx)
	if err != nil {
		log.Printf("admin seed: lookup failed: %v", err)
		return
	}
	if exists {
		return
	}
	hash, err := utils.HashPassword(cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		log.Printf("admin seed: hash failed: %v", err)
		return
	}
	if _, err := users.Create(ctx, "SuperAdmin", cfg.AdminEmail, hash, model.RoleAdmin); err != nil {
		log.Printf("admin seed: create failed: %v", err)
		return
	}
	log.Printf("admin user created (email=%s)", cfg.AdminEmail)
}
