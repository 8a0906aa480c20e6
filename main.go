package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"civicsync/ai"
	"civicsync/config"
	"civicsync/controllers"
	"civicsync/feed"
	"civicsync/geo"
	"civicsync/i18n"
	"civicsync/middlewares"
	"civicsync/routes"
	"civicsync/storage"
	"civicsync/store"
	"civicsync/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := config.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	mongoClient, db, err := config.ConnectDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	defer mongoClient.Disconnect(context.Background())
	logger.Info("connected to MongoDB", zap.String("database", cfg.MongoDatabase))

	data := store.New(db)
	if err := data.EnsureIndexes(ctx); err != nil {
		return err
	}

	redisClient, err := config.ConnectRedis(ctx, cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddress))

	images, err := storage.NewImageStore(storage.Options{
		Endpoint:  cfg.StorageEndpoint,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		UseSSL:    cfg.StorageUseSSL,
		Bucket:    cfg.StorageBucket,
		PublicURL: cfg.StoragePublicURL,
	})
	if err != nil {
		return err
	}
	if err := images.EnsureBucket(ctx); err != nil {
		logger.Warn("image bucket unavailable, uploads will fail", zap.Error(err))
	}

	var generator feed.SummaryGenerator = ai.Disabled{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("AI summaries disabled", zap.Error(err))
		} else {
			generator = gemini
			logger.Info("AI summaries enabled", zap.String("model", gemini.Model()))
		}
	}

	tokens, err := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return err
	}
	revoked := utils.NewRevocationList(redisClient, "revoked-token")
	messages := i18n.NewBundle()

	summarizer := feed.NewSummarizer(generator, images, feed.SummarizerOptions{
		Concurrency: cfg.SummaryConcurrency,
		Timeout:     cfg.SummaryTimeout,
	}, logger.Named("summary"))
	loader := feed.NewLoader(data, data, data, summarizer, logger.Named("feed"))
	geocoder := geo.NewNominatim(cfg.GeocoderURL, cfg.GeocoderUserAgent, &http.Client{Timeout: 5 * time.Second}, logger.Named("geocoder"))

	authMW := middlewares.NewAuth(tokens, revoked, messages, logger.Named("auth"))
	auth := controllers.NewAuthController(data, tokens, revoked, controllers.CookieOptionsFor(cfg.Env, cfg.Domain), messages, logger)
	issues := controllers.NewIssueController(controllers.IssueControllerOptions{
		Issues:     data,
		Loader:     loader,
		Summarizer: summarizer,
		Toggler:    feed.NewToggler(data),
		Images:     images,
		Geocoder:   geocoder,
		Messages:   messages,
		Logger:     logger,
	})
	comments := controllers.NewCommentController(data, data, messages, logger)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middlewares.RequestLogger(logger.Named("http")),
		cors.New(corsConfig(cfg.CORSOrigin)),
		middlewares.Locale(messages),
	)

	routes.AuthRoutes(r, auth, authMW)
	routes.UserRoutes(r, auth, authMW)
	routes.IssueRoutes(r, issues, comments, authMW, routes.IssueGuards{
		RateLimit:  middlewares.IssueRateLimiter(redisClient, cfg.IssueLimitQueue, cfg.IssueDailyLimit, messages, logger),
		Privileged: middlewares.RequirePrivileged(data, messages, logger),
	})
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("civicsync API listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-sigCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	return nil
}

func corsConfig(origin string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language"},
		ExposeHeaders:    []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if origin == "" || origin == "*" {
		cfg.AllowOriginFunc = func(string) bool { return true }
		return cfg
	}
	for _, o := range strings.Split(origin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	return cfg
}
