package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dfryer1193/mdblog/blog/application"
	"github.com/dfryer1193/mdblog/internal/config"
	"github.com/dfryer1193/mdblog/internal/middleware"
	"github.com/dfryer1193/mdblog/internal/rest"
	webhook "github.com/dfryer1193/mdblog/webhook/http"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	configureLogging(cfg)

	parser := application.NewPostParser(application.NewMarkdownRenderer(cfg.BaseURL))
	cache, err := application.FromDir(cfg.ContentDir, parser, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.ContentDir).Msg("Failed to load posts")
	}
	log.Info().Str("dir", cache.Dir()).Int("posts", cache.Len()).Msg("Loaded posts")

	if cfg.Watch || cfg.RescanInterval > 0 {
		watcher := application.NewWatcher(cache, cache.Dir(), application.WatcherOptions{
			WatchFS:  cfg.Watch,
			Interval: cfg.RescanInterval,
		}, log.Logger)
		watcher.Start()
		defer func() {
			if err := watcher.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to gracefully close watcher")
			}
		}()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(middleware.LoggingMiddleware())
	engine.Use(gin.CustomRecovery(middleware.HandlePanics()))
	rest.NewApi(engine, rest.NewPostsHandler(cache, cfg.ScanOnRead))

	r := chi.NewRouter()
	if cfg.WebhookSecret != "" {
		webhookHandler, err := webhook.NewWebhookHandler(cfg.WebhookSecret, cache)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create webhook handler")
		}
		webhookHandler.RegisterRoutes(r)
	} else {
		log.Info().Msg("WEBHOOK_SECRET not set; push webhook disabled")
	}
	r.Mount("/", engine)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		log.Info().Msg("Starting server on port :" + fmt.Sprint(cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown server")
		return
	}

	log.Info().Msg("Server stopped")
}

func configureLogging(cfg *config.Config) {
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("Unknown log level; using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
