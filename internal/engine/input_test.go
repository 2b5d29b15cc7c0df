package engine

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"example.com/adaptive-budget/backend/internal/models"
)

// TestValidateInputAcceptsProfile проверяет корректный профиль.
func TestValidateInputAcceptsProfile(t *testing.T) {
	result := ValidateInput(models.UserProfile{MonthlyIncome: 60000, City: "Pune", FamilySize: 2, Age: 27})

	if !result.IsValid || len(result.Errors) != 0 {
		t.Fatalf("expected valid profile, got %v", result.Errors)
	}
}

// TestValidateInputIncomeBelowMinimum проверяет сообщение о минимальном доходе.
func TestValidateInputIncomeBelowMinimum(t *testing.T) {
	result := ValidateInput(models.UserProfile{MonthlyIncome: 500, City: "Pune", FamilySize: 2, Age: 27})

	if result.IsValid {
		t.Fatal("expected invalid profile")
	}
	if len(result.Errors) != 1 || result.Errors[0] != "monthly income must be at least the minimum of 1000" {
		t.Fatalf("unexpected errors %v", result.Errors)
	}
}

// TestValidateInputCollectsAllErrors проверяет, что ошибки собираются по всем полям.
func TestValidateInputCollectsAllErrors(t *testing.T) {
	answers := make(map[string]string, maxLifestyleAnswers+1)
	for i := 0; i <= maxLifestyleAnswers; i++ {
		answers[fmt.Sprintf("q%d", i)] = "a"
	}

	result := ValidateInput(models.UserProfile{
		MonthlyIncome:    200000000,
		City:             "   ",
		FamilySize:       21,
		Age:              17,
		Occupation:       strings.Repeat("x", 101),
		LifestyleAnswers: answers,
	})

	want := []string{
		"monthly income must be at most 100000000",
		"family size must be at most 20",
		"age must be at least 18",
		"occupation must be at most 100 characters",
		"city is required",
		"lifestyle answers must not exceed 50 entries",
	}
	if len(result.Errors) != len(want) {
		t.Fatalf("expected %d errors, got %v", len(want), result.Errors)
	}
	for i := range want {
		if result.Errors[i] != want[i] {
			t.Fatalf("error %d: expected %q, got %q", i, want[i], result.Errors[i])
		}
	}
}

// TestValidateInputRequiredFields проверяет пустой профиль.
func TestValidateInputRequiredFields(t *testing.T) {
	result := ValidateInput(models.UserProfile{})

	if len(result.Errors) != 4 {
		t.Fatalf("expected four required errors, got %v", result.Errors)
	}
	if result.Errors[0] != "monthly income is required" {
		t.Fatalf("unexpected first error %q", result.Errors[0])
	}
}

// TestValidateInputNonFiniteIncome проверяет NaN и бесконечность.
func TestValidateInputNonFiniteIncome(t *testing.T) {
	for _, income := range []float64{math.NaN(), math.Inf(1)} {
		result := ValidateInput(models.UserProfile{MonthlyIncome: income, City: "Pune", FamilySize: 2, Age: 27})
		if result.IsValid || result.Errors[0] != "monthly income must be a finite number" {
			t.Fatalf("unexpected result for %v: %v", income, result.Errors)
		}
	}
}
