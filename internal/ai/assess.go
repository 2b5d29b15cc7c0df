package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"example.com/adaptive-budget/backend/internal/models"
)

// Deductions are counted in tenths of confidence so thresholds compare exactly.
const (
	deductMissingExplanations     = 3
	deductInsufficientTips        = 2
	deductMissingRecommendations  = 2
	deductMalformedRecommendation = 1
	deductShortTip                = 1

	fullConfidence    = 10
	minTips           = 3
	minTipLength      = 20
	maxAmountMultiple = 200
)

var errNoJSON = errors.New("ai response does not contain json")

// parseInsightPayload accepts raw JSON or JSON wrapped in a markdown code fence.
func parseInsightPayload(content string) (insightPayload, error) {
	payload, err := extractJSON(content)
	if err != nil {
		return insightPayload{}, err
	}

	var parsed insightPayload
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return insightPayload{}, fmt.Errorf("decode ai response: %w", err)
	}

	return parsed, nil
}

func extractJSON(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", errNoJSON
	}

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		if len(trimmed) >= 4 && strings.EqualFold(trimmed[:4], "json") {
			trimmed = trimmed[4:]
		}
		end := strings.LastIndex(trimmed, "```")
		if end < 0 {
			return "", errors.New("ai response has an unterminated code fence")
		}
		trimmed = strings.TrimSpace(trimmed[:end])
	}

	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return "", errNoJSON
	}

	return trimmed, nil
}

type assessment struct {
	insights models.Insights
	points   int
	issues   []string
}

func (a assessment) confidence() float64 {
	return float64(a.points) / fullConfidence
}

// assessPayload scores a parsed response starting from full confidence and keeps only the
// recommendations that can be shown.
func assessPayload(payload insightPayload, monthlyIncome float64) assessment {
	result := assessment{points: fullConfidence}
	deduct := func(points int, issue string) {
		result.points -= points
		result.issues = append(result.issues, issue)
	}

	explanations := models.Explanations{Categories: map[string]string{}}
	if payload.Explanations == nil || strings.TrimSpace(payload.Explanations.Overall) == "" {
		deduct(deductMissingExplanations, "missing explanations")
	} else {
		explanations.Overall = strings.TrimSpace(payload.Explanations.Overall)
		for key, text := range payload.Explanations.Categories {
			if text = strings.TrimSpace(text); text != "" {
				explanations.Categories[key] = text
			}
		}
	}

	tips := make([]string, 0, len(payload.Tips))
	for _, tip := range payload.Tips {
		tip = strings.TrimSpace(tip)
		if len([]rune(tip)) < minTipLength {
			deduct(deductShortTip, fmt.Sprintf("tip %q is shorter than %d characters", tip, minTipLength))
		}
		if tip != "" {
			tips = append(tips, tip)
		}
	}
	if len(payload.Tips) < minTips {
		deduct(deductInsufficientTips, fmt.Sprintf("expected at least %d tips, got %d", minTips, len(payload.Tips)))
	}

	recommendations := make([]models.Recommendation, 0, len(payload.Recommendations))
	if len(payload.Recommendations) == 0 {
		deduct(deductMissingRecommendations, "missing recommendations")
	}
	maxAmount := maxAmountMultiple * monthlyIncome
	for i, item := range payload.Recommendations {
		recommendation, problem := normalizeRecommendation(item, maxAmount)
		if problem != "" {
			deduct(deductMalformedRecommendation, fmt.Sprintf("recommendation %d: %s", i+1, problem))
			continue
		}
		recommendations = append(recommendations, recommendation)
	}

	if result.points < 0 {
		result.points = 0
	}

	result.insights = models.Insights{
		Explanations:    explanations,
		Tips:            tips,
		Recommendations: recommendations,
		AIGenerated:     true,
		Confidence:      result.confidence(),
		Issues:          result.issues,
	}
	return result
}

func normalizeRecommendation(item recommendationPayload, maxAmount float64) (models.Recommendation, string) {
	kind := strings.TrimSpace(item.Type)
	description := strings.TrimSpace(item.Description)
	if kind == "" {
		return models.Recommendation{}, "type is required"
	}
	if description == "" {
		return models.Recommendation{}, "description is required"
	}

	priority, ok := parsePriority(item.Priority)
	if !ok {
		return models.Recommendation{}, fmt.Sprintf("invalid priority %q", item.Priority)
	}

	recommendation := models.Recommendation{
		Type:        kind,
		Description: description,
		Priority:    priority,
		Icon:        strings.TrimSpace(item.Icon),
	}
	if item.Amount != nil {
		if *item.Amount < 0 || *item.Amount > maxAmount {
			return models.Recommendation{}, fmt.Sprintf("amount %.0f is outside [0, %.0f]", *item.Amount, maxAmount)
		}
		recommendation.Amount = *item.Amount
	}

	return recommendation, ""
}

func parsePriority(value string) (models.Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "critical":
		return models.PriorityCritical, true
	case "high":
		return models.PriorityHigh, true
	case "medium":
		return models.PriorityMedium, true
	case "low":
		return models.PriorityLow, true
	default:
		return "", false
	}
}
