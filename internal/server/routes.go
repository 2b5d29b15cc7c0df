package server

import (
	"github.com/labstack/echo/v4"

	"example.com/adaptive-budget/backend/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	healthHandler *handlers.HealthHandler,
	categoryHandler *handlers.CategoryHandler,
	budgetHandler *handlers.BudgetHandler,
	notificationHandler *handlers.NotificationHandler,
	authMiddleware echo.MiddlewareFunc,
	apiRateLimiter echo.MiddlewareFunc,
	aiRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", healthHandler.Health)

	api := e.Group("/api/v1", apiRateLimiter)
	api.GET("/categories", categoryHandler.List)

	budgets := api.Group("/budgets")
	budgets.POST("/validate", budgetHandler.Validate)
	budgets.POST("/generate", budgetHandler.Generate, authMiddleware, aiRateLimiter)
	budgets.GET("", budgetHandler.List, authMiddleware)
	budgets.GET("/:id", budgetHandler.Get, authMiddleware)
	budgets.GET("/:id/export/json", budgetHandler.ExportJSON, authMiddleware)
	budgets.GET("/:id/export/csv", budgetHandler.ExportCSV, authMiddleware)

	notifications := api.Group("/notifications", authMiddleware)
	notifications.GET("/stream", notificationHandler.Stream)
}
