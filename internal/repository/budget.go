package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/adaptive-budget/backend/internal/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type BudgetRepository struct {
	db *pgxpool.Pool
}

// NewBudgetRepository создает репозиторий сгенерированных бюджетов.
func NewBudgetRepository(db *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// Save сохраняет профиль и бюджет пользователя.
func (r *BudgetRepository) Save(ctx context.Context, userID uuid.UUID, profile models.UserProfile, budget models.Budget) (models.StoredBudget, error) {
	stored := models.StoredBudget{
		ID:      uuid.New(),
		UserID:  userID,
		Profile: profile,
		Budget:  budget,
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return stored, fmt.Errorf("encode profile: %w", err)
	}

	budgetJSON, err := json.Marshal(budget)
	if err != nil {
		return stored, fmt.Errorf("encode budget: %w", err)
	}

	err = r.db.QueryRow(ctx,
		`INSERT INTO budgets (id, user_id, profile, budget, ai_generated, confidence, validation_score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		stored.ID, userID, profileJSON, budgetJSON, budget.AIGenerated, budget.Confidence, budget.ValidationScore,
	).Scan(&stored.CreatedAt)
	if err != nil {
		return stored, err
	}

	return stored, nil
}

// GetByID возвращает бюджет пользователя по идентификатору.
func (r *BudgetRepository) GetByID(ctx context.Context, userID, budgetID uuid.UUID) (models.StoredBudget, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, user_id, profile, budget, created_at
		 FROM budgets
		 WHERE id = $1 AND user_id = $2`,
		budgetID, userID,
	)

	stored, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return stored, ErrNotFound
		}
		return stored, err
	}

	return stored, nil
}

// ListByUser возвращает бюджеты пользователя от новых к старым.
func (r *BudgetRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.StoredBudget, error) {
	limit, offset = NormalizePage(limit, offset)

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, profile, budget, created_at
		 FROM budgets
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := make([]models.StoredBudget, 0)
	for rows.Next() {
		stored, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, stored)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return budgets, nil
}

// NormalizePage приводит limit и offset к допустимым значениям.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

func scanBudget(row pgx.Row) (models.StoredBudget, error) {
	var stored models.StoredBudget
	var profileJSON, budgetJSON []byte

	if err := row.Scan(&stored.ID, &stored.UserID, &profileJSON, &budgetJSON, &stored.CreatedAt); err != nil {
		return stored, err
	}

	if err := decodeStored(&stored, profileJSON, budgetJSON); err != nil {
		return stored, err
	}

	return stored, nil
}

func decodeStored(stored *models.StoredBudget, profileJSON, budgetJSON []byte) error {
	if err := json.Unmarshal(profileJSON, &stored.Profile); err != nil {
		return fmt.Errorf("decode profile of budget %s: %w", stored.ID, err)
	}
	if err := json.Unmarshal(budgetJSON, &stored.Budget); err != nil {
		return fmt.Errorf("decode budget %s: %w", stored.ID, err)
	}
	return nil
}
