package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied in order on startup; every statement must be idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS budgets (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		profile JSONB NOT NULL,
		budget JSONB NOT NULL,
		ai_generated BOOLEAN NOT NULL DEFAULT FALSE,
		confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
		validation_score INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_budgets_user_created ON budgets (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS insight_requests (
		id BIGSERIAL PRIMARY KEY,
		user_id UUID NOT NULL,
		budget_id UUID REFERENCES budgets(id) ON DELETE CASCADE,
		provider VARCHAR(50) NOT NULL,
		model VARCHAR(100) NOT NULL DEFAULT '',
		prompt TEXT NOT NULL DEFAULT '',
		raw_response TEXT NOT NULL DEFAULT '',
		states TEXT[] NOT NULL DEFAULT '{}',
		confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
		success BOOLEAN NOT NULL,
		error_message TEXT,
		latency_ms BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_insight_requests_budget ON insight_requests (budget_id)`,
}

// EnsureSchema создает таблицы бюджетов и журнала AI-запросов, если их еще нет.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for i, statement := range schema {
		if _, err := pool.Exec(ctx, statement); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	return nil
}
