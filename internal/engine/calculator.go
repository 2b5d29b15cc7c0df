package engine

import (
	"math"

	"example.com/adaptive-budget/backend/internal/models"
)

// Allocation is a provisional or balanced split of income across categories.
type Allocation struct {
	Income         float64
	Target         int64
	Order          []string
	Categories     map[string]models.CategoryAllocation
	TotalAllocated int64
}

func (a Allocation) clone() Allocation {
	out := a
	out.Order = append([]string(nil), a.Order...)
	out.Categories = make(map[string]models.CategoryAllocation, len(a.Categories))
	for key, value := range a.Categories {
		out.Categories[key] = value
	}
	return out
}

// PercentageSum возвращает сумму округленных процентов по всем категориям.
func (a Allocation) PercentageSum() int {
	total := 0
	for _, allocation := range a.Categories {
		total += allocation.Percentage
	}
	return total
}

type AllocationCalculator struct {
	categories []CategoryDefinition
}

// NewAllocationCalculator создает калькулятор на основе определений категорий.
func NewAllocationCalculator(tables Tables) AllocationCalculator {
	return AllocationCalculator{categories: tables.Categories}
}

// Calculate применяет множители к базовым долям. Сумма может не совпадать с доходом,
// согласование выполняет BudgetBalancer.
func (c AllocationCalculator) Calculate(income float64, adjustments Adjustments) Allocation {
	allocation := Allocation{
		Income:     income,
		Target:     int64(math.Round(income)),
		Order:      make([]string, 0, len(c.categories)),
		Categories: make(map[string]models.CategoryAllocation, len(c.categories)),
	}

	for _, category := range c.categories {
		amount := int64(math.Round(income * category.BasePercentage * adjustments.Combined(category.Key)))
		if amount < 0 {
			amount = 0
		}

		allocation.Order = append(allocation.Order, category.Key)
		allocation.Categories[category.Key] = models.CategoryAllocation{
			Amount:      amount,
			Percentage:  percentageOf(amount, income),
			Name:        category.Name,
			Icon:        category.Icon,
			Color:       category.Color,
			Description: category.Description,
		}
		allocation.TotalAllocated += amount
	}

	return allocation
}

func percentageOf(amount int64, income float64) int {
	if income <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(amount) / income))
}
