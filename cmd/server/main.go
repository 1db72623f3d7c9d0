package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/movietix/booking-api/internal/config"
	"github.com/movietix/booking-api/internal/database"
	"github.com/movietix/booking-api/internal/handler"
	"github.com/movietix/booking-api/internal/middleware"
	"github.com/movietix/booking-api/internal/queue"
	"github.com/movietix/booking-api/internal/repository"
	"github.com/movietix/booking-api/internal/router"
	"github.com/movietix/booking-api/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	movies := repository.NewMovieRepo(db)
	cinemas := repository.NewCinemaRepo(db)
	schedules := repository.NewScheduleRepo(db)
	bookings := repository.NewBookingRepo(db)
	comments := repository.NewCommentRepo(db)
	blogs := repository.NewBlogRepo(db)

	events := queue.NewPublisher(cfg.AMQPURL)
	bookingSvc := service.NewBookingService(bookings, events)
	scheduleSvc := service.NewScheduleService(schedules, &repository.Catalog{Movies: movies, Cinemas: cinemas})

	go queue.StartTicketConsumer(cfg.AMQPURL)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterUsers(e, handler.NewUserHandler(users, tokens), cfg.JWTSecret)
	router.RegisterCatalog(e,
		handler.NewMovieHandler(movies),
		handler.NewCinemaHandler(cinemas),
		handler.NewScheduleHandler(scheduleSvc),
		cfg.JWTSecret, cache)
	router.RegisterBookings(e, handler.NewBookingHandler(bookingSvc), cfg.JWTSecret)
	router.RegisterContent(e,
		handler.NewCommentHandler(comments, movies),
		handler.NewBlogHandler(blogs),
		cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
