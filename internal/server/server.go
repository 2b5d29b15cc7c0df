package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/adaptive-budget/backend/internal/ai"
	"example.com/adaptive-budget/backend/internal/auth"
	"example.com/adaptive-budget/backend/internal/config"
	"example.com/adaptive-budget/backend/internal/engine"
	"example.com/adaptive-budget/backend/internal/handlers"
	"example.com/adaptive-budget/backend/internal/notifications"
	"example.com/adaptive-budget/backend/internal/repository"
)

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool, tables engine.Tables) (*echo.Echo, error) {
	if logger == nil {
		logger = slog.Default()
	}

	insights, err := NewInsightSource(cfg.AI, logger)
	if err != nil {
		return nil, err
	}

	budgetEngine, err := engine.New(tables, insights, engine.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	if len(cfg.Server.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.Server.CORSOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
	budgetRepo := repository.NewBudgetRepository(db)
	insightRepo := repository.NewInsightRequestRepository(db)
	notificationHub := notifications.NewHub()

	var pinger handlers.Pinger
	if db != nil {
		pinger = db
	}

	registerRoutes(
		e,
		handlers.NewHealthHandler(pinger),
		handlers.NewCategoryHandler(budgetEngine.Tables()),
		handlers.NewBudgetHandler(budgetEngine, budgetRepo, insightRepo, notificationHub),
		handlers.NewNotificationHandler(notificationHub),
		auth.JWTMiddleware(tokenManager),
		rateLimiter(cfg.Server.RateLimitPerMinute, cfg.Server.RateLimitBurst),
		rateLimiter(cfg.AI.RateLimitPerMinute, cfg.AI.RateLimitBurst),
	)

	return e, nil
}

// NewInsightSource собирает оркестратор: живой провайдер, если он настроен, и шаблонный резерв.
func NewInsightSource(cfg config.AIConfig, logger *slog.Logger) (*ai.Orchestrator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var primary ai.InsightProvider
	if cfg.Enabled() {
		client, err := ai.NewClient(cfg.Provider, cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout, cfg.MaxOutputTokens)
		if err != nil {
			return nil, fmt.Errorf("build ai client: %w", err)
		}
		primary = ai.NewLLMProvider(client, cfg.Provider, cfg.Model)
	} else {
		logger.Warn("ai provider disabled, budgets will use fallback insights", slog.String("provider", cfg.Provider))
	}

	return ai.NewOrchestrator(primary, ai.NewFallbackProvider(), cfg.Timeout, logger), nil
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func rateLimiter(perMinute, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60.0),
		Burst:     burst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
