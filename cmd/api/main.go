package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/norvia/storefront-api/internal/cart"
	"github.com/norvia/storefront-api/internal/cartapi"
	"github.com/norvia/storefront-api/internal/catalog"
	"github.com/norvia/storefront-api/internal/chat"
	"github.com/norvia/storefront-api/internal/common"
	"github.com/norvia/storefront-api/internal/config"
	"github.com/norvia/storefront-api/internal/health"
	"github.com/norvia/storefront-api/internal/locale"
	"github.com/norvia/storefront-api/internal/obs"
	"github.com/norvia/storefront-api/internal/ratelimit"
	"github.com/norvia/storefront-api/internal/resilience"
	"github.com/norvia/storefront-api/internal/security"
	"github.com/norvia/storefront-api/internal/shopify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "storefront")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "storefront-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			SamplingRatio: sampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				ctx := context.Background()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	breaker := resilience.NewBreaker(
		envInt("STOREFRONT_BREAKER_MIN_REQUESTS", 5),
		envFloat("STOREFRONT_BREAKER_FAILURE_RATIO", 0.5),
		time.Duration(envInt("STOREFRONT_BREAKER_OPEN_SECONDS", 30))*time.Second,
	).WithTarget("shopify").WithLogger(logger)

	storefront, err := shopify.NewClient(shopify.Config{
		StoreDomain: cfg.ShopifyStoreDomain,
		AccessToken: cfg.ShopifyStorefrontToken,
		APIVersion:  cfg.ShopifyAPIVersion,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: resilience.Transport{
				Base:    otelhttp.NewTransport(http.DefaultTransport),
				Breaker: breaker,
			},
		},
		Logger: logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise storefront client")
	}

	validate := validator.New()

	catalogService := catalog.NewService(catalog.ServiceConfig{
		Source: storefront,
		Cache:  catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
		Logger: logger,
	})
	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{Service: catalogService, Logger: logger})

	cartManager := cart.NewManager(cart.ManagerConfig{
		Commerce: storefront,
		IDs:      cart.RedisIDStore{Client: redisClient, TTL: cfg.CartIDTTL},
		Logger:   logger,
	})
	cartFacade := &cartapi.Handler{Commerce: storefront, Logger: logger, Validate: validate}
	sessionCart := &cartapi.SessionHandler{Manager: cartManager}
	session := cartapi.SessionConfig{
		CookieName: cfg.SessionCookieName,
		TTL:        cfg.SessionCookieTTL,
		Secure:     cfg.AppEnv == "production",
	}

	var completer chat.Completer
	if cfg.ChatEnabled() {
		completer = &chat.AnthropicClient{
			APIKey:    cfg.AnthropicAPIKey,
			Model:     cfg.ChatModel,
			MaxTokens: cfg.ChatMaxTokens,
		}
	} else {
		logger.Warn().Msg("chat credential missing, assistant runs in degraded mode")
	}
	chatHandler := &chat.Handler{
		Completer:        completer,
		InstructionsPath: cfg.ChatInstructionsPath,
		SupportEmail:     cfg.SupportEmail,
		Logger:           logger,
		Validate:         validate,
	}

	chatLimiter, err := ratelimit.NewRedisLimiter(redisClient, cfg.ChatRateLimit, cfg.ChatRateWindow)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise chat rate limiter")
	}
	chatLimit := ratelimit.Handler{Limiter: chatLimiter, Key: common.ClientIP, Logger: logger}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{
		Enable:     envBool("SECURE_HEADERS", true),
		EnableHSTS: cfg.AppEnv == "production",
	}.Middleware)
	r.Use(security.BodyLimit{Max: 1 << 20}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{
		Checker:           health.Probes{Redis: redisClient, Storefront: storefront.Ping},
		RedisTimeout:      envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
		StorefrontTimeout: envDurationMillis("HEALTH_READY_STOREFRONT_TIMEOUT_MS", 2000),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	// Page paths without a locale prefix get redirected; API and
	// operational paths fall through to a plain 404.
	localeRouter := locale.Router{GeoHeader: cfg.GeoHeader, DefaultLocale: cfg.DefaultLocale}
	localeRedirect := localeRouter.Middleware(http.NotFoundHandler())
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		p := req.URL.Path
		if strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/health/") || p == "/metrics" {
			http.NotFound(w, req)
			return
		}
		localeRedirect.ServeHTTP(w, req)
	})

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/products", catalogHandler.Products)
		v.Get("/products/{handle}", catalogHandler.ProductDetail)

		v.Group(func(s chi.Router) {
			s.Use(session.Middleware)
			s.Post("/shopify/cart", cartFacade.Dispatch)
			s.Get("/cart", sessionCart.State)
			s.Post("/cart/items", sessionCart.AddItem)
			s.Patch("/cart/items/{lineID}", sessionCart.UpdateItem)
			s.Delete("/cart/items", sessionCart.RemoveItems)
			s.Post("/cart/open", sessionCart.Open)
			s.Post("/cart/close", sessionCart.Close)
		})

		v.With(chatLimit.Middleware).Post("/chat", chatHandler.Chat)
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		serverErr <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}
