package engine

import (
	"math"
)

// BalanceReport describes what the balancer changed.
type BalanceReport struct {
	Difference     int64
	Adjusted       bool
	SavingsClamped bool
	Deficit        int64
	Reductions     map[string]int64
	// Shortfall is the over-allocation left after every reducible category hit its floor.
	Shortfall int64
}

type BudgetBalancer struct {
	settings BalanceSettings
}

// NewBudgetBalancer создает балансировщик с заданными порогами.
func NewBudgetBalancer(tables Tables) BudgetBalancer {
	return BudgetBalancer{settings: tables.Balancing}
}

// Balance приводит сумму категорий к доходу. Разница сначала списывается со сбережений;
// если сбережения уходят в минус, они фиксируются на минимальном уровне, а дефицит
// пропорционально распределяется по остальным категориям с учетом нижней границы.
func (b BudgetBalancer) Balance(input Allocation) (Allocation, BalanceReport) {
	allocation := input.clone()
	report := BalanceReport{
		Difference: allocation.Target - allocation.TotalAllocated,
		Reductions: map[string]int64{},
	}

	if abs64(report.Difference) <= b.settings.Tolerance {
		refreshPercentages(&allocation)
		return allocation, report
	}
	report.Adjusted = true

	amounts := make(map[string]int64, len(allocation.Order))
	for _, key := range allocation.Order {
		amounts[key] = allocation.Categories[key].Amount
	}

	savingsKey := b.settings.SavingsKey
	amounts[savingsKey] += report.Difference

	if amounts[savingsKey] < 0 {
		floor := int64(math.Round(allocation.Income * b.settings.SavingsFloor))
		report.SavingsClamped = true
		report.Deficit = floor - amounts[savingsKey]
		amounts[savingsKey] = floor

		reducible := make([]string, 0, len(allocation.Order))
		for _, key := range allocation.Order {
			if key != savingsKey {
				reducible = append(reducible, key)
			}
		}

		categoryFloor := int64(math.Round(allocation.Income * b.settings.CategoryFloor))
		report.Reductions, report.Shortfall = redistribute(amounts, reducible, report.Deficit, categoryFloor)
	}

	allocation.TotalAllocated = 0
	for _, key := range allocation.Order {
		category := allocation.Categories[key]
		category.Amount = amounts[key]
		allocation.Categories[key] = category
		allocation.TotalAllocated += amounts[key]
	}
	refreshPercentages(&allocation)

	return allocation, report
}

// redistribute removes deficit from keys in proportion to their amounts without taking any
// of them below floor. Categories that reach the floor leave the reducible set and the rest
// of the deficit is spread over the remaining ones. It returns the per-key reductions and the
// part of the deficit that could not be placed.
func redistribute(amounts map[string]int64, keys []string, deficit, floor int64) (map[string]int64, int64) {
	reductions := make(map[string]int64, len(keys))
	remaining := deficit

	for remaining > 0 {
		reducible := make([]string, 0, len(keys))
		var total int64
		for _, key := range keys {
			if amounts[key] > floor {
				reducible = append(reducible, key)
				total += amounts[key]
			}
		}
		if len(reducible) == 0 {
			break
		}

		var placed int64
		for _, key := range reducible {
			if placed >= remaining {
				break
			}
			share := int64(math.Round(float64(remaining) * float64(amounts[key]) / float64(total)))
			cut := min(share, amounts[key]-floor, remaining-placed)
			if cut <= 0 {
				continue
			}
			amounts[key] -= cut
			reductions[key] += cut
			placed += cut
		}

		if placed == 0 {
			// Every share rounded to zero; take what is left from the largest category.
			key := largestAbove(amounts, reducible)
			cut := min(remaining, amounts[key]-floor)
			amounts[key] -= cut
			reductions[key] += cut
			placed = cut
		}

		remaining -= placed
	}

	return reductions, remaining
}

func largestAbove(amounts map[string]int64, keys []string) string {
	best := keys[0]
	for _, key := range keys[1:] {
		if amounts[key] > amounts[best] {
			best = key
		}
	}
	return best
}

func refreshPercentages(allocation *Allocation) {
	for key, category := range allocation.Categories {
		category.Percentage = percentageOf(category.Amount, allocation.Income)
		allocation.Categories[key] = category
	}
}

func abs64(value int64) int64 {
	if value < 0 {
		return -value
	}
	return value
}
