package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/dfryer1193/microblog/blog/application"
	"github.com/dfryer1193/microblog/blog/images"
	"github.com/dfryer1193/microblog/blog/persistence"
	"github.com/dfryer1193/microblog/internal/middleware"
	"github.com/dfryer1193/microblog/internal/rest"
	"github.com/dfryer1193/microblog/shared/db/sqlite"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultAddr      = ":8080"
	defaultImagesDir = "./images"
	shutdownTimeout  = 5 * time.Second
	downloadTimeout  = 30 * time.Second
)

func main() {
	// A missing .env file is fine; real env vars still apply
	godotenv.Load()

	if level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && level != zerolog.NoLevel {
		zerolog.SetGlobalLevel(level)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Initialize dependencies
	database := sqlite.NewSQLiteDB(sqlite.NewSQLiteConfig())
	if err := database.Connect(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	imagesDir := os.Getenv("IMAGES_DIR")
	if imagesDir == "" {
		imagesDir = defaultImagesDir
	}
	store := images.NewStore(imagesDir, &http.Client{Timeout: downloadTimeout})

	postRepo := persistence.NewPostRepository(database.DB())
	postService := application.NewPostService(postRepo, store)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))
	rest.NewApi(router, postService)

	addr := os.Getenv("HOST_ADDR")
	if addr == "" {
		addr = defaultAddr
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to shutdown server")
	}

	log.Info().Msg("Server stopped")
}
