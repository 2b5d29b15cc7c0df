package ai

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"example.com/adaptive-budget/backend/internal/models"
)

// TestGenerateFallbackIsDeterministic проверяет, что шаблоны не зависят от вызова.
func TestGenerateFallbackIsDeterministic(t *testing.T) {
	first := GenerateFallback(sampleRequest())
	second := GenerateFallback(sampleRequest())

	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected identical fallback insights")
	}
	if first.Confidence != FallbackConfidence || first.AIGenerated {
		t.Fatalf("unexpected fallback metadata: %+v", first)
	}
}

// TestGenerateFallbackContent проверяет объяснения, советы и рекомендации шаблонов.
func TestGenerateFallbackContent(t *testing.T) {
	insights := GenerateFallback(sampleRequest())

	if !strings.Contains(insights.Explanations.Overall, "INR 60,000") {
		t.Fatalf("expected formatted income in overall explanation: %q", insights.Explanations.Overall)
	}
	if len(insights.Explanations.Categories) != 7 {
		t.Fatalf("expected an explanation per category, got %d", len(insights.Explanations.Categories))
	}
	if !strings.Contains(insights.Explanations.Categories["housing"], "Pune") {
		t.Fatalf("expected city in housing explanation: %q", insights.Explanations.Categories["housing"])
	}

	if len(insights.Tips) < 3 {
		t.Fatalf("expected at least three tips, got %d", len(insights.Tips))
	}
	if !strings.Contains(insights.Tips[0], "compounding") {
		t.Fatalf("expected compounding tip for a 27 year old, got %q", insights.Tips[0])
	}

	wantTypes := []string{"emergency_fund", "investment", "life_insurance", "health_insurance"}
	wantAmounts := []float64{360000, 11430, 7200000, 600000}
	if len(insights.Recommendations) != len(wantTypes) {
		t.Fatalf("expected %d recommendations, got %d", len(wantTypes), len(insights.Recommendations))
	}
	for i, recommendation := range insights.Recommendations {
		if recommendation.Type != wantTypes[i] || recommendation.Amount != wantAmounts[i] {
			t.Fatalf("recommendation %d: got %s %v", i, recommendation.Type, recommendation.Amount)
		}
	}
	if !strings.Contains(insights.Recommendations[1].Description, "80% in equity") {
		t.Fatalf("expected young investor split, got %q", insights.Recommendations[1].Description)
	}
}

// TestGenerateFallbackProfileRules проверяет советы для низких сбережений и большой семьи.
func TestGenerateFallbackProfileRules(t *testing.T) {
	request := sampleRequest()
	request.Profile.Age = 50
	request.Profile.FamilySize = 5
	request.Categories["savings"] = models.CategoryAllocation{Amount: 6000, Percentage: 10, Name: "Savings"}
	request.Categories["housing"] = models.CategoryAllocation{Amount: 24000, Percentage: 40, Name: "Housing"}

	insights := GenerateFallback(request)
	joined := strings.Join(insights.Tips, "\n")

	for _, fragment := range []string{"savings rate is 10%", "INR 3,000", "years to retirement", "INR 1,500,000", "Housing takes 40%"} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("expected tip containing %q in:\n%s", fragment, joined)
		}
	}
	if insights.Recommendations[3].Amount != 1500000 {
		t.Fatalf("expected health cover for five members, got %v", insights.Recommendations[3].Amount)
	}
	if !strings.Contains(insights.Recommendations[1].Description, "40% in equity") {
		t.Fatalf("expected mid-career split, got %q", insights.Recommendations[1].Description)
	}
}

// TestFallbackProviderNeverFails проверяет провайдер шаблонов.
func TestFallbackProviderNeverFails(t *testing.T) {
	provider := NewFallbackProvider()
	candidate, err := provider.Insights(context.Background(), models.InsightRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidate.Insights.Tips) < 3 {
		t.Fatalf("expected tips for an empty request, got %v", candidate.Insights.Tips)
	}
}

// TestFormatMoney проверяет форматирование сумм.
func TestFormatMoney(t *testing.T) {
	if got := formatMoney("INR", 1234567.4); got != "INR 1,234,567" {
		t.Fatalf("unexpected format %q", got)
	}
	if got := formatMoney("", 999); got != "999" {
		t.Fatalf("unexpected format %q", got)
	}
}
