package ai

import (
	"reflect"
	"strings"
	"testing"
)

// TestLifestyleLines проверяет перевод ответов анкеты в описания.
func TestLifestyleLines(t *testing.T) {
	lines := lifestyleLines(map[string]string{
		"diningOut":    "Frequently",
		"commute":      "public_transport",
		"unknown":      "value",
		"riskAppetite": "extreme",
	})

	want := []string{"commutes by public transport", "eats out several times a week"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("expected %v, got %v", want, lines)
	}

	if lifestyleLines(nil) != nil {
		t.Fatal("expected nil for empty answers")
	}
}

// TestBuildInsightPrompt проверяет, что промпт содержит суммы в порядке категорий.
func TestBuildInsightPrompt(t *testing.T) {
	request := sampleRequest()
	request.Profile.LifestyleAnswers = map[string]string{"housing": "rent"}

	prompt, err := buildInsightPrompt(request)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, fragment := range []string{`"monthly_income": 60000`, `"amount": 11430`, "lives in rented housing", "amount is optional and in INR"} {
		if !strings.Contains(prompt, fragment) {
			t.Fatalf("expected prompt to contain %q", fragment)
		}
	}
	if strings.Index(prompt, `"key": "housing"`) > strings.Index(prompt, `"key": "savings"`) {
		t.Fatal("expected categories in declaration order")
	}
}
