package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/adaptive-budget/backend/internal/auth"
	"example.com/adaptive-budget/backend/internal/engine"
	"example.com/adaptive-budget/backend/internal/models"
	"example.com/adaptive-budget/backend/internal/notifications"
	"example.com/adaptive-budget/backend/internal/repository"
)

// BudgetGenerator is the part of engine.Engine the handlers need.
type BudgetGenerator interface {
	ValidateInput(profile models.UserProfile) models.InputValidation
	Generate(ctx context.Context, profile models.UserProfile) (models.Budget, error)
}

type BudgetStore interface {
	Save(ctx context.Context, userID uuid.UUID, profile models.UserProfile, budget models.Budget) (models.StoredBudget, error)
	GetByID(ctx context.Context, userID, budgetID uuid.UUID) (models.StoredBudget, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.StoredBudget, error)
}

type InsightLog interface {
	LogRequest(ctx context.Context, log repository.InsightRequestLog) error
}

type BudgetHandler struct {
	Engine   BudgetGenerator
	Budgets  BudgetStore
	Insights InsightLog
	Notifier *notifications.Hub
}

// NewBudgetHandler создает обработчик генерации и просмотра бюджетов.
func NewBudgetHandler(generator BudgetGenerator, budgets BudgetStore, insights InsightLog, notifier *notifications.Hub) *BudgetHandler {
	return &BudgetHandler{
		Engine:   generator,
		Budgets:  budgets,
		Insights: insights,
		Notifier: notifier,
	}
}

type BudgetListResponse struct {
	Budgets []models.StoredBudget `json:"budgets"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
}

// Validate проверяет профиль без генерации бюджета.
func (h *BudgetHandler) Validate(c echo.Context) error {
	var profile models.UserProfile
	if err := c.Bind(&profile); err != nil {
		return badRequest(c, "invalid payload")
	}

	return c.JSON(http.StatusOK, h.Engine.ValidateInput(profile))
}

// Generate строит бюджет по профилю, сохраняет его и уведомляет подписчиков.
func (h *BudgetHandler) Generate(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var profile models.UserProfile
	if err := c.Bind(&profile); err != nil {
		return badRequest(c, "invalid payload")
	}

	ctx := c.Request().Context()
	budget, err := h.Engine.Generate(ctx, profile)
	if err != nil {
		var validationErr *engine.InputValidationError
		if errors.As(err, &validationErr) {
			return validationFailed(c, validationErr.Errors)
		}
		slog.Error("budget generation failed", slog.String("user_id", userID.String()), slog.String("error", err.Error()))
		return serverError(c)
	}

	stored, err := h.Budgets.Save(ctx, userID, profile, budget)
	if err != nil {
		slog.Error("failed to save budget", slog.String("user_id", userID.String()), slog.String("error", err.Error()))
		return serverError(c)
	}

	h.logInsightRequest(ctx, userID, stored)
	publishBudgetGenerated(h.Notifier, userID, stored)
	logBudgetSource(stored)

	return c.JSON(http.StatusCreated, stored)
}

// List возвращает бюджеты пользователя постранично.
func (h *BudgetHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	limit, offset, err := parsePagination(c, repository.DefaultPageSize, repository.MaxPageSize)
	if err != nil {
		return badRequest(c, err.Error())
	}

	budgets, err := h.Budgets.ListByUser(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, BudgetListResponse{Budgets: budgets, Limit: limit, Offset: offset})
}

// Get возвращает сохраненный бюджет.
func (h *BudgetHandler) Get(c echo.Context) error {
	stored, err := h.loadBudget(c)
	if err != nil {
		return err
	}
	if stored == nil {
		return nil
	}

	return c.JSON(http.StatusOK, stored)
}

// loadBudget resolves the :id budget of the current user. A nil budget with a nil error
// means the response has already been written.
func (h *BudgetHandler) loadBudget(c echo.Context) (*models.StoredBudget, error) {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return nil, unauthorized(c)
	}

	budgetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, badRequest(c, "invalid budget id")
	}

	stored, err := h.Budgets.GetByID(c.Request().Context(), userID, budgetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(c, "budget not found")
		}
		return nil, serverError(c)
	}

	return &stored, nil
}

func (h *BudgetHandler) logInsightRequest(ctx context.Context, userID uuid.UUID, stored models.StoredBudget) {
	if h.Insights == nil {
		return
	}

	entry, ok := repository.NewInsightRequestLog(userID, &stored.ID, stored.Budget.Trace)
	if !ok {
		return
	}

	if err := h.Insights.LogRequest(ctx, entry); err != nil {
		slog.Warn("failed to log insight request", slog.String("budget_id", stored.ID.String()), slog.String("error", err.Error()))
	}
}

func logBudgetSource(stored models.StoredBudget) {
	attrs := []any{
		slog.String("budget_id", stored.ID.String()),
		slog.String("user_id", stored.UserID.String()),
		slog.String("insight_source", stored.Budget.Metadata.InsightSource),
		slog.Int("validation_score", stored.Budget.ValidationScore),
	}
	if stored.Budget.AIGenerated {
		slog.Info("budget generated", attrs...)
		return
	}
	slog.Warn("budget generated with fallback insights", attrs...)
}
