package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/anuragpatel/minisocial-service/docs"
	"github.com/anuragpatel/minisocial-service/internal/cache"
	"github.com/anuragpatel/minisocial-service/internal/config"
	"github.com/anuragpatel/minisocial-service/internal/events"
	"github.com/anuragpatel/minisocial-service/internal/http/handlers/posts"
	"github.com/anuragpatel/minisocial-service/internal/http/handlers/users"
	wsHandlers "github.com/anuragpatel/minisocial-service/internal/http/handlers/websocket"
	"github.com/anuragpatel/minisocial-service/internal/http/middleware"
	"github.com/anuragpatel/minisocial-service/internal/services/media"
	"github.com/anuragpatel/minisocial-service/internal/storage/postgres"
	"github.com/anuragpatel/minisocial-service/internal/utils/response"
	"github.com/anuragpatel/minisocial-service/internal/websocket"
)

// @title Minisocial API
// @version 1.0
// @description Minimal social-posting service: registration, login, posts, likes, profile pictures.
func main() {
	// load config
	cfg := config.MustLoad()

	// database setup
	pg, err := postgres.NewPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	slog.Info("Connected to Postgres database")

	// redis setup
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	slog.Info("Connected to Redis")

	// object storage for profile pictures
	mediaService, err := media.NewService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize media service:", err)
	}

	// feed cache wraps the database
	store := cache.NewCacheService(pg, redisClient)

	// real-time notifications
	hub := websocket.NewHub()
	go hub.Run()
	publisher := events.NewEventPublisher(hub)

	auth := middleware.Auth(cfg.JWTSecret)
	rateLimits := middleware.NewRateLimitConfig(redisClient)

	// setup server
	router := http.NewServeMux()

	router.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, response.RequestOK("minisocial service", nil))
	})
	router.HandleFunc("GET /login", func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, response.RequestOK("POST credentials to /login to authenticate", nil))
	})

	router.HandleFunc("POST /register", users.Register(store, cfg.JWTSecret))
	router.HandleFunc("POST /login", users.Login(store, cfg.JWTSecret))
	router.HandleFunc("GET /logout", users.Logout())

	router.Handle("GET /profile", auth(users.Profile(store, mediaService)))
	router.Handle("POST /upload", auth(users.Upload(store, mediaService)))

	router.Handle("GET /allpost", auth(posts.All(store, mediaService)))
	router.Handle("POST /post", auth(rateLimits.RateLimit(middleware.ActionPosts)(posts.Create(store))))
	router.Handle("POST /updatepost/{id}", auth(posts.Update(store)))
	router.Handle("POST /delete/{id}", auth(posts.Delete(store)))
	router.Handle("POST /like/{id}", auth(rateLimits.RateLimit(middleware.ActionLikes)(posts.Like(store, publisher))))

	router.HandleFunc("GET /ws", wsHandlers.Handler(hub, cfg.JWTSecret))
	router.Handle("/swagger/", httpSwagger.WrapHandler)

	server := http.Server{
		Addr:    cfg.HTTPServer.Address,
		Handler: router,
	}

	log.Println("server started on", cfg.HTTPServer.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %s", err)
		}
	}()

	<-done

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = server.Shutdown(ctx)
	if err != nil {
		slog.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
		return
	}

	slog.Info("Server stopped")
}
