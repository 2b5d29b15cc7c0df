package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"example.com/adaptive-budget/backend/internal/models"
)

// InsightSource enriches a balanced budget with explanations, tips and recommendations.
// Implementations must always return usable insights.
type InsightSource interface {
	Enrich(ctx context.Context, request models.InsightRequest) models.Insights
}

// Result is the deterministic part of the pipeline.
type Result struct {
	Adjustments Adjustments
	Provisional Allocation
	Balanced    Allocation
	Balance     BalanceReport
	Validation  models.ValidationResult
}

type Engine struct {
	tables     Tables
	resolver   AdjustmentResolver
	calculator AllocationCalculator
	balancer   BudgetBalancer
	validator  AllocationValidator
	insights   InsightSource
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Engine)

// WithLogger задает логгер движка.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock подменяет источник времени для generatedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New собирает движок из таблиц и источника рекомендаций.
func New(tables Tables, insights InsightSource, opts ...Option) (*Engine, error) {
	if insights == nil {
		return nil, errors.New("engine: insight source is required")
	}
	if err := tables.Validate(); err != nil {
		return nil, err
	}

	tables = tables.normalized()
	e := &Engine{
		tables:     tables,
		resolver:   NewAdjustmentResolver(tables),
		calculator: NewAllocationCalculator(tables),
		balancer:   NewBudgetBalancer(tables),
		validator:  NewAllocationValidator(tables),
		insights:   insights,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Tables возвращает копию таблиц, с которыми работает движок.
func (e *Engine) Tables() Tables {
	return e.tables.normalized()
}

// ValidateInput проверяет профиль пользователя.
func (e *Engine) ValidateInput(profile models.UserProfile) models.InputValidation {
	return ValidateInput(profile)
}

// Allocate выполняет детерминированную часть конвейера: множители, расчет,
// балансировку и оценку. Профиль должен быть заранее провалидирован.
func (e *Engine) Allocate(profile models.UserProfile) Result {
	adjustments := e.resolver.Resolve(profile.City, profile.FamilySize, profile.MonthlyIncome, profile.Age)
	provisional := e.calculator.Calculate(profile.MonthlyIncome, adjustments)
	balanced, report := e.balancer.Balance(provisional)
	validation := e.validator.Validate(balanced.Categories, balanced.Income)

	return Result{
		Adjustments: adjustments,
		Provisional: provisional,
		Balanced:    balanced,
		Balance:     report,
		Validation:  validation,
	}
}

// Generate строит бюджет для профиля. Единственная ошибка, которую видит вызывающий,
// это *InputValidationError; сбои AI деградируют до шаблонных рекомендаций.
func (e *Engine) Generate(ctx context.Context, profile models.UserProfile) (models.Budget, error) {
	check := ValidateInput(profile)
	if !check.IsValid {
		return models.Budget{}, &InputValidationError{Errors: check.Errors}
	}

	result := e.Allocate(profile)
	warnings := make([]string, 0)
	if result.Balance.Shortfall > 0 {
		warning := fmt.Sprintf("allocation exceeds income by %d after every category reached its floor", result.Balance.Shortfall)
		warnings = append(warnings, warning)
		e.logger.Warn("balancing shortfall",
			slog.Int64("shortfall", result.Balance.Shortfall),
			slog.Int64("deficit", result.Balance.Deficit),
			slog.String("city", profile.City),
		)
	}

	insights := e.insights.Enrich(ctx, models.InsightRequest{
		Profile:        profile,
		Currency:       e.tables.Currency,
		CategoryOrder:  append([]string(nil), result.Balanced.Order...),
		Categories:     result.Balanced.Categories,
		TotalBudget:    result.Balanced.Target,
		TotalAllocated: result.Balanced.TotalAllocated,
		Validation:     result.Validation,
	})

	budget := models.Budget{
		Categories:      result.Balanced.Categories,
		TotalBudget:     result.Balanced.Target,
		TotalAllocated:  result.Balanced.TotalAllocated,
		Explanations:    insights.Explanations,
		Tips:            insights.Tips,
		Recommendations: insights.Recommendations,
		AIGenerated:     insights.AIGenerated,
		Confidence:      insights.Confidence,
		ValidationScore: result.Validation.Score,
		GeneratedAt:     e.now().UTC(),
		Metadata: models.BudgetMetadata{
			Currency:           e.tables.Currency,
			InsightSource:      insights.Source,
			InsightIssues:      insights.Issues,
			BalancingShortfall: result.Balance.Shortfall,
			Warnings:           warnings,
			ValidationIssues:   result.Validation.Issues,
			ValidationWarnings: result.Validation.Warnings,
		},
		Trace: insights.Trace,
	}
	if insights.Trace != nil {
		budget.Metadata.InsightStates = insights.Trace.States
	}

	return budget, nil
}
