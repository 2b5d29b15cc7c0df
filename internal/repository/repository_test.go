package repository

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/adaptive-budget/backend/internal/models"
)

// TestNormalizePage проверяет границы пагинации.
func TestNormalizePage(t *testing.T) {
	cases := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, DefaultPageSize, 0},
		{-5, -1, DefaultPageSize, 0},
		{10, 30, 10, 30},
		{1000, 5, MaxPageSize, 5},
	}

	for _, tc := range cases {
		limit, offset := NormalizePage(tc.limit, tc.offset)
		if limit != tc.wantLimit || offset != tc.wantOffset {
			t.Fatalf("NormalizePage(%d, %d) = %d, %d", tc.limit, tc.offset, limit, offset)
		}
	}
}

// TestDecodeStored проверяет разбор JSONB-колонок бюджета.
func TestDecodeStored(t *testing.T) {
	profile := models.UserProfile{MonthlyIncome: 60000, City: "Pune", FamilySize: 2, Age: 27}
	budget := models.Budget{
		Categories:  map[string]models.CategoryAllocation{"savings": {Amount: 12000, Percentage: 20, Name: "Savings"}},
		TotalBudget: 60000,
		Tips:        []string{"tip"},
		GeneratedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Trace:       &models.InsightTrace{Provider: "groq"},
	}

	profileJSON, _ := json.Marshal(profile)
	budgetJSON, _ := json.Marshal(budget)

	stored := models.StoredBudget{ID: uuid.New()}
	if err := decodeStored(&stored, profileJSON, budgetJSON); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !reflect.DeepEqual(stored.Profile, profile) {
		t.Fatalf("unexpected profile %+v", stored.Profile)
	}
	if stored.Budget.Categories["savings"].Amount != 12000 || stored.Budget.Trace != nil {
		t.Fatalf("unexpected budget %+v", stored.Budget)
	}

	if err := decodeStored(&stored, []byte("{"), budgetJSON); err == nil {
		t.Fatal("expected decode error")
	}
}

// TestNewInsightRequestLog проверяет перенос трассировки в запись журнала.
func TestNewInsightRequestLog(t *testing.T) {
	if _, ok := NewInsightRequestLog(uuid.New(), nil, nil); ok {
		t.Fatal("expected no log without trace")
	}

	budgetID := uuid.New()
	trace := &models.InsightTrace{
		Provider: "gemini",
		Model:    "gemini-1.5-flash",
		States:   []string{"IDLE", "LLM_CALLED", "LLM_FAILED", "DONE"},
		Error:    "timeout",
		Duration: 1500 * time.Millisecond,
	}

	log, ok := NewInsightRequestLog(uuid.New(), &budgetID, trace)
	if !ok {
		t.Fatal("expected log")
	}
	if log.LatencyMS != 1500 || log.Success || log.ErrorMessage == nil || *log.ErrorMessage != "timeout" {
		t.Fatalf("unexpected log %+v", log)
	}
	if *log.BudgetID != budgetID || len(log.States) != 4 {
		t.Fatalf("unexpected log %+v", log)
	}
}
