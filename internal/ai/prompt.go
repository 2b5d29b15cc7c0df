package ai

import (
	"encoding/json"
	"fmt"

	"example.com/adaptive-budget/backend/internal/models"
)

const systemPrompt = "You are a personal finance advisor. Respond with JSON only, without extra text."

func buildInsightPrompt(request models.InsightRequest) (string, error) {
	input := promptInput{
		MonthlyIncome:  request.Profile.MonthlyIncome,
		Currency:       request.Currency,
		City:           request.Profile.City,
		FamilySize:     request.Profile.FamilySize,
		Age:            request.Profile.Age,
		Occupation:     request.Profile.Occupation,
		TotalAllocated: request.TotalAllocated,
		Categories:     make([]promptCategory, 0, len(request.CategoryOrder)),
		Validation: promptValidation{
			Score:    request.Validation.Score,
			IsValid:  request.Validation.IsValid,
			Issues:   request.Validation.Issues,
			Warnings: request.Validation.Warnings,
		},
		LifestyleInsights: lifestyleLines(request.Profile.LifestyleAnswers),
	}

	for _, key := range request.CategoryOrder {
		category, ok := request.Categories[key]
		if !ok {
			continue
		}
		input.Categories = append(input.Categories, promptCategory{
			Key:        key,
			Name:       category.Name,
			Amount:     category.Amount,
			Percentage: category.Percentage,
		})
	}

	payload, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`Explain this monthly budget and give practical guidance as JSON.

Requirements:
- Output JSON only. Code fences are allowed, any other text is not.
- Do not change the amounts; explain the allocation that is given.
- Schema:
{
  "explanations": {
    "overall": string,
    "categories": {"<category key>": string}
  },
  "tips": [string],
  "recommendations": [
    {"type": string, "amount": number, "description": string, "priority": "Critical" | "High" | "Medium" | "Low", "icon": string}
  ]
}
- Provide 3-6 tips, each at least 20 characters, specific to this household.
- Provide 2-5 recommendations; amount is optional and in %s.
- Reflect the lifestyle insights when they are present.

Input:
%s`, request.Currency, string(payload))

	return prompt, nil
}
