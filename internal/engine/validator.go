package engine

import (
	"fmt"
	"math"

	"example.com/adaptive-budget/backend/internal/models"
)

const (
	penaltyBelowMin     = 10
	penaltyAboveMax     = 15
	penaltyFarFromIdeal = 3
	penaltyUnbalanced   = 20

	idealDistance     = 10
	percentageSlack   = 1
	maxValidatorScore = 100
)

type AllocationValidator struct {
	order []string
	rules map[string]Band
}

// NewAllocationValidator создает валидатор распределения по таблице правил.
func NewAllocationValidator(tables Tables) AllocationValidator {
	return AllocationValidator{order: tables.CategoryKeys(), rules: tables.Rules}
}

// Validate оценивает распределение по полосам min/ideal/max и возвращает итоговый балл.
// Полосы сравниваются с округленными процентами, а сумма долей считается по точным суммам,
// поэтому ошибки округления отдельных категорий не дают ложного дисбаланса.
func (v AllocationValidator) Validate(categories map[string]models.CategoryAllocation, income float64) models.ValidationResult {
	result := models.ValidationResult{
		Issues:   []string{},
		Warnings: []string{},
	}
	score := maxValidatorScore

	for _, key := range v.order {
		band, ok := v.rules[key]
		if !ok {
			continue
		}
		category, ok := categories[key]
		if !ok {
			continue
		}

		percentage := float64(category.Percentage)
		switch {
		case percentage < band.Min:
			result.Issues = append(result.Issues, fmt.Sprintf("%s is %d%% of income, below the minimum of %s%%", key, category.Percentage, formatBand(band.Min)))
			score -= penaltyBelowMin
		case percentage > band.Max:
			result.Issues = append(result.Issues, fmt.Sprintf("%s is %d%% of income, above the maximum of %s%%", key, category.Percentage, formatBand(band.Max)))
			score -= penaltyAboveMax
		case math.Abs(percentage-band.Ideal) > idealDistance:
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s is %d%% of income, far from the ideal %s%%", key, category.Percentage, formatBand(band.Ideal)))
			score -= penaltyFarFromIdeal
		}
	}

	total := sharesTotal(categories, income)
	if math.Abs(total-100) > percentageSlack {
		result.Issues = append(result.Issues, fmt.Sprintf("allocations add up to %s%% of income instead of 100%%", formatBand(math.Round(total*10)/10)))
		score -= penaltyUnbalanced
	}

	if score < 0 {
		score = 0
	}

	result.Score = score
	result.IsValid = len(result.Issues) == 0
	result.Confidence = float64(score) / maxValidatorScore
	return result
}

// sharesTotal returns the share of income covered by all categories, in percent.
// Without a positive income only the rounded percentages are available.
func sharesTotal(categories map[string]models.CategoryAllocation, income float64) float64 {
	if income <= 0 {
		total := 0
		for _, category := range categories {
			total += category.Percentage
		}
		return float64(total)
	}

	var allocated int64
	for _, category := range categories {
		allocated += category.Amount
	}
	return 100 * float64(allocated) / income
}

func formatBand(value float64) string {
	return fmt.Sprintf("%g", value)
}
