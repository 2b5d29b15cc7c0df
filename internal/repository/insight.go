package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/adaptive-budget/backend/internal/models"
)

// InsightRequestRepository stores one row per insight attempt, including fallbacks.
type InsightRequestRepository struct {
	db *pgxpool.Pool
}

type InsightRequestLog struct {
	UserID       uuid.UUID
	BudgetID     *uuid.UUID
	Provider     string
	Model        string
	Prompt       string
	RawResponse  string
	States       []string
	Confidence   float64
	Success      bool
	ErrorMessage *string
	LatencyMS    int64
}

// NewInsightRequestRepository создает репозиторий журнала AI-запросов.
func NewInsightRequestRepository(db *pgxpool.Pool) *InsightRequestRepository {
	return &InsightRequestRepository{db: db}
}

// NewInsightRequestLog собирает запись журнала из трассировки оркестратора.
func NewInsightRequestLog(userID uuid.UUID, budgetID *uuid.UUID, trace *models.InsightTrace) (InsightRequestLog, bool) {
	if trace == nil {
		return InsightRequestLog{}, false
	}

	log := InsightRequestLog{
		UserID:      userID,
		BudgetID:    budgetID,
		Provider:    trace.Provider,
		Model:       trace.Model,
		Prompt:      trace.Prompt,
		RawResponse: trace.RawResponse,
		States:      append([]string(nil), trace.States...),
		Confidence:  trace.Confidence,
		Success:     trace.Success,
		LatencyMS:   trace.Duration.Milliseconds(),
	}
	if log.States == nil {
		log.States = []string{}
	}
	if trace.Error != "" {
		message := trace.Error
		log.ErrorMessage = &message
	}

	return log, true
}

// LogRequest сохраняет лог AI-запроса.
func (r *InsightRequestRepository) LogRequest(ctx context.Context, log InsightRequestLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO insight_requests
		 (user_id, budget_id, provider, model, prompt, raw_response, states, confidence, success, error_message, latency_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		log.UserID,
		log.BudgetID,
		log.Provider,
		log.Model,
		log.Prompt,
		log.RawResponse,
		log.States,
		log.Confidence,
		log.Success,
		log.ErrorMessage,
		log.LatencyMS,
	)
	return err
}
