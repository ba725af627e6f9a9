package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/aaravmahajanofficial/pos-terminal/docs"
	"github.com/aaravmahajanofficial/pos-terminal/internal/api/handlers"
	"github.com/aaravmahajanofficial/pos-terminal/internal/api/middleware"
	"github.com/aaravmahajanofficial/pos-terminal/internal/cache"
	"github.com/aaravmahajanofficial/pos-terminal/internal/config"
	"github.com/aaravmahajanofficial/pos-terminal/internal/health"
	"github.com/aaravmahajanofficial/pos-terminal/internal/metrics"
	repository "github.com/aaravmahajanofficial/pos-terminal/internal/repositories"
	service "github.com/aaravmahajanofficial/pos-terminal/internal/services"
	"github.com/aaravmahajanofficial/pos-terminal/internal/telemetry"
	"github.com/aaravmahajanofficial/pos-terminal/pkg/backend"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

//	@title						POS Terminal API
//	@version					1.0
//	@description				Local API driving the point-of-sale scanner and cart.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// .env is optional, real environment variables win
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", slog.String("error", err.Error()))
	}

	// Load config
	cfg := config.MustLoad()

	taxRate, err := cfg.Pricing.Rate()
	if err != nil {
		slog.Error("❌ Invalid pricing configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStartup()

	// Tracing setup
	shutdownTracing, err := telemetry.Setup(startupCtx, &cfg.OTel)
	if err != nil {
		slog.Error("❌ Error initializing tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Redis setup, optional
	var (
		redisClient    *redis.Client
		appCache       = cache.NewNoopCache()
		captureLimiter = cache.NewNoopRateLimiter()
	)
	if cfg.RedisConnect.Enabled() {
		redisClient, err = cache.NewRedisClient(startupCtx, &cfg.RedisConnect)
		if err != nil {
			slog.Error("❌ Error accessing the redis instance", slog.String("error", err.Error()))
			os.Exit(1)
		}
		appCache = cache.NewRedisCache(redisClient, &cfg.Cache)
		captureLimiter = cache.NewRedisRateLimiter(redisClient, &cfg.RateConfig)
	}

	defer func() {
		if err := appCache.Close(); err != nil {
			slog.Error("⚠️ Error closing redis connection", slog.String("error", err.Error()))
		}
	}()

	// Receipt journal setup, optional
	var (
		repos   *repository.Repository
		journal repository.ReceiptRepository
	)
	if cfg.Database.Enabled() {
		repos, journal, err = repository.New(startupCtx, cfg)
		if err != nil {
			slog.Error("❌ Error accessing the database", slog.String("error", err.Error()))
			os.Exit(1)
		}

		defer func() {
			if err := repos.Close(); err != nil {
				slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
			} else {
				slog.Info("✅ Database connection closed")
			}
		}()
	}

	client := backend.NewClient(cfg.Backend.BaseURL,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithRetries(cfg.Backend.RetryAttempts),
		backend.WithObserver(metrics.ObserveBackendCall),
	)

	validate := validator.New()
	resolver := service.NewScanResolutionService(client, appCache, cfg.Cache, cfg.Backend.SearchLimit)
	sessionService := service.NewSessionService(client, appCache, cfg.Cache, resolver, taxRate)
	saleService := service.NewSaleService(client, journal, validate)

	if err := metrics.RegisterSessionGauge(sessionService.Count); err != nil {
		slog.Warn("Session gauge not registered", slog.String("error", err.Error()))
	}

	sessionHandler := handlers.NewSessionHandler(sessionService)
	cartHandler := handlers.NewCartHandler(sessionService, validate)
	scannerHandler := handlers.NewScannerHandler(sessionService, validate, cfg.Backend.MaxImageBytes)
	checkoutHandler := handlers.NewCheckoutHandler(sessionService, saleService, validate)
	authMiddleware := middleware.NewAuthMiddleware()
	limitCaptures := middleware.RateLimit(captureLimiter, cache.CaptureKeyPrefix)

	endpoints := &health.Endpoints{RedisClient: redisClient, Backend: client}
	if repos != nil {
		endpoints.DB = repos.DB
	}

	healthHandler, err := health.NewHealthHandler(cfg, endpoints)
	if err != nil {
		slog.Error("❌ Error creating health handler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("terminal initialized",
		slog.String("env", cfg.Env),
		slog.String("backend", cfg.Backend.BaseURL),
		slog.Bool("redis", cfg.RedisConnect.Enabled()),
		slog.Bool("journal", cfg.Database.Enabled()),
		slog.String("version", "1.0.0"),
	)

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.Handle("GET /health", healthHandler.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	routerMux.HandleFunc("POST /api/v1/sessions", authMiddleware.Authenticate(sessionHandler.OpenSession()))
	routerMux.HandleFunc("DELETE /api/v1/sessions/{id}", authMiddleware.Authenticate(sessionHandler.CloseSession()))

	routerMux.HandleFunc("GET /api/v1/sessions/{id}/cart", authMiddleware.Authenticate(cartHandler.GetCart()))
	routerMux.HandleFunc("POST /api/v1/sessions/{id}/cart/items", authMiddleware.Authenticate(cartHandler.AddItem()))
	routerMux.HandleFunc("PATCH /api/v1/sessions/{id}/cart/items", authMiddleware.Authenticate(cartHandler.UpdateItem()))
	routerMux.HandleFunc("DELETE /api/v1/sessions/{id}/cart/items", authMiddleware.Authenticate(cartHandler.RemoveItem()))
	routerMux.HandleFunc("POST /api/v1/sessions/{id}/cart/items/decrement", authMiddleware.Authenticate(cartHandler.DecrementItem()))
	routerMux.HandleFunc("DELETE /api/v1/sessions/{id}/cart", authMiddleware.Authenticate(cartHandler.ClearCart()))

	routerMux.HandleFunc("GET /api/v1/sessions/{id}/scanner", authMiddleware.Authenticate(scannerHandler.GetState()))
	routerMux.HandleFunc("POST /api/v1/sessions/{id}/scanner/capture", authMiddleware.Authenticate(limitCaptures(scannerHandler.Capture())))
	routerMux.HandleFunc("POST /api/v1/sessions/{id}/scanner/retry", authMiddleware.Authenticate(scannerHandler.Reset()))
	routerMux.HandleFunc("POST /api/v1/sessions/{id}/scanner/reset", authMiddleware.Authenticate(scannerHandler.Reset()))
	routerMux.HandleFunc("POST /api/v1/sessions/{id}/scanner/manual", authMiddleware.Authenticate(scannerHandler.SwitchToManual()))
	routerMux.HandleFunc("POST /api/v1/sessions/{id}/scanner/search", authMiddleware.Authenticate(scannerHandler.Search()))
	routerMux.HandleFunc("POST /api/v1/sessions/{id}/scanner/choose", authMiddleware.Authenticate(scannerHandler.Choose()))
	routerMux.HandleFunc("POST /api/v1/sessions/{id}/scanner/size", authMiddleware.Authenticate(scannerHandler.SelectSize()))
	routerMux.HandleFunc("POST /api/v1/sessions/{id}/scanner/confirm", authMiddleware.Authenticate(scannerHandler.Confirm()))

	routerMux.HandleFunc("POST /api/v1/sessions/{id}/checkout", authMiddleware.Authenticate(checkoutHandler.Checkout()))
	routerMux.HandleFunc("GET /api/v1/receipts", authMiddleware.Authenticate(checkoutHandler.ListReceipts()))

	// Middleware chaining, metrics sits next to the mux to see r.Pattern
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, cfg.OTel.ServiceName)

	// Setup http server
	server := http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: handler,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.HTTPServer.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {

		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
			done <- syscall.SIGTERM
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("⚠️ Tracing shutdown encountered an issue", slog.String("error", err.Error()))
	}

}
