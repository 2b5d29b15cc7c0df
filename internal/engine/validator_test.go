package engine

import (
	"strings"
	"testing"

	"example.com/adaptive-budget/backend/internal/models"
)

func percentages(values map[string]int) map[string]models.CategoryAllocation {
	out := make(map[string]models.CategoryAllocation, len(values))
	for key, value := range values {
		out[key] = models.CategoryAllocation{Percentage: value}
	}
	return out
}

// TestValidateIdealAllocation проверяет максимальный балл для сбалансированного бюджета.
func TestValidateIdealAllocation(t *testing.T) {
	validator := NewAllocationValidator(DefaultTables())

	result := validator.Validate(percentages(map[string]int{
		CategoryHousing: 30, CategoryFood: 20, CategoryTransport: 10, CategoryHealthcare: 6,
		CategoryEntertainment: 10, CategoryShopping: 5, CategorySavings: 19,
	}), 0)

	if !result.IsValid || result.Score != 100 || result.Confidence != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(result.Issues) != 0 || len(result.Warnings) != 0 {
		t.Fatalf("expected no findings, got %+v", result)
	}
}

// TestValidatePenalties проверяет штрафы за выход за пределы полос.
func TestValidatePenalties(t *testing.T) {
	validator := NewAllocationValidator(DefaultTables())

	result := validator.Validate(percentages(map[string]int{
		CategoryHousing: 50, CategoryFood: 15, CategoryTransport: 10, CategoryHealthcare: 7,
		CategoryEntertainment: 8, CategoryShopping: 5, CategorySavings: 5,
	}), 0)

	if result.IsValid {
		t.Fatal("expected invalid result")
	}
	if result.Score != 75 {
		t.Fatalf("expected score 75, got %d (%v)", result.Score, result.Issues)
	}
	if len(result.Issues) != 2 {
		t.Fatalf("expected two issues, got %v", result.Issues)
	}
	if !strings.Contains(result.Issues[0], "housing is 50% of income, above the maximum of 45%") {
		t.Fatalf("unexpected first issue %q", result.Issues[0])
	}
	if !strings.Contains(result.Issues[1], "savings is 5% of income, below the minimum of 10%") {
		t.Fatalf("unexpected second issue %q", result.Issues[1])
	}
}

// TestValidateWarningsAndUnbalancedTotal проверяет предупреждения и штраф за сумму процентов.
func TestValidateWarningsAndUnbalancedTotal(t *testing.T) {
	validator := NewAllocationValidator(DefaultTables())

	result := validator.Validate(percentages(map[string]int{
		CategoryHousing: 30, CategoryFood: 20, CategoryTransport: 10, CategoryHealthcare: 7,
		CategoryEntertainment: 8, CategoryShopping: 5, CategorySavings: 31,
	}), 0)

	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "far from the ideal 20%") {
		t.Fatalf("expected savings warning, got %v", result.Warnings)
	}
	if len(result.Issues) != 1 || !strings.Contains(result.Issues[0], "111%") {
		t.Fatalf("expected unbalanced total issue, got %v", result.Issues)
	}
	if result.Score != 77 {
		t.Fatalf("expected score 77, got %d", result.Score)
	}
}

// TestValidateScoreFloor проверяет, что балл не опускается ниже нуля.
func TestValidateScoreFloor(t *testing.T) {
	validator := NewAllocationValidator(DefaultTables())

	result := validator.Validate(percentages(map[string]int{
		CategoryHousing: 90, CategoryFood: 90, CategoryTransport: 90, CategoryHealthcare: 90,
		CategoryEntertainment: 90, CategoryShopping: 90, CategorySavings: 0,
	}), 0)

	if result.Score != 0 || result.Confidence != 0 {
		t.Fatalf("expected zero score, got %d", result.Score)
	}
}

func allocations(amounts map[string]int64, income float64) map[string]models.CategoryAllocation {
	out := make(map[string]models.CategoryAllocation, len(amounts))
	for key, amount := range amounts {
		out[key] = models.CategoryAllocation{Amount: amount, Percentage: percentageOf(amount, income)}
	}
	return out
}

// TestValidateRoundedPercentagesOfReconciledBudget проверяет, что округление долей
// сведенного бюджета не считается дисбалансом.
func TestValidateRoundedPercentagesOfReconciledBudget(t *testing.T) {
	validator := NewAllocationValidator(DefaultTables())
	categories := allocations(map[string]int64{
		CategoryHousing: 305, CategoryFood: 205, CategoryTransport: 105, CategoryHealthcare: 65,
		CategoryEntertainment: 95, CategoryShopping: 45, CategorySavings: 180,
	}, 1000)

	rounded := 0
	for _, category := range categories {
		rounded += category.Percentage
	}
	if rounded != 103 {
		t.Fatalf("expected rounded percentages to add up to 103, got %d", rounded)
	}

	result := validator.Validate(categories, 1000)
	if !result.IsValid || result.Score != 100 || len(result.Issues) != 0 {
		t.Fatalf("expected reconciled budget to pass, got %+v", result)
	}
}

// TestValidateUnbalancedAmounts проверяет штраф, когда суммы действительно не сходятся с доходом.
func TestValidateUnbalancedAmounts(t *testing.T) {
	validator := NewAllocationValidator(DefaultTables())

	result := validator.Validate(allocations(map[string]int64{
		CategoryHousing: 305, CategoryFood: 205, CategoryTransport: 105, CategoryHealthcare: 65,
		CategoryEntertainment: 95, CategoryShopping: 45, CategorySavings: 280,
	}, 1000), 1000)

	if len(result.Issues) != 1 || !strings.Contains(result.Issues[0], "add up to 110% of income") {
		t.Fatalf("expected unbalanced total issue, got %v", result.Issues)
	}
	if result.Score != 80 || result.IsValid {
		t.Fatalf("unexpected result %+v", result)
	}
}
