package ai

import (
	"sort"
	"strings"
)

// lifestyleFragments maps a survey question and answer code to a short description.
var lifestyleFragments = map[string]map[string]string{
	"diningOut": {
		"rarely":     "rarely eats out",
		"weekly":     "eats out about once a week",
		"frequently": "eats out several times a week",
	},
	"commute": {
		"public_transport": "commutes by public transport",
		"own_vehicle":      "commutes in their own vehicle",
		"remote":           "works from home most days",
		"walk_cycle":       "walks or cycles to work",
	},
	"housing": {
		"rent":     "lives in rented housing",
		"own_loan": "is repaying a home loan",
		"own":      "owns their home outright",
		"family":   "lives with family and shares housing costs",
	},
	"shoppingHabit": {
		"minimal":  "shops only for essentials",
		"moderate": "shops occasionally for non-essentials",
		"frequent": "shops frequently for non-essentials",
	},
	"savingsGoal": {
		"emergency_fund": "wants to build an emergency fund first",
		"home":           "is saving to buy a home",
		"retirement":     "is focused on retirement savings",
		"education":      "is saving for education",
		"travel":         "is saving for travel",
	},
	"riskAppetite": {
		"low":    "prefers low-risk investments",
		"medium": "is comfortable with moderate investment risk",
		"high":   "is comfortable with high investment risk",
	},
	"dependents": {
		"none":     "has no financial dependents",
		"children": "supports children",
		"parents":  "supports elderly parents",
		"both":     "supports both children and parents",
	},
	"healthConditions": {
		"none":    "reports no ongoing health conditions",
		"chronic": "manages an ongoing health condition",
	},
}

// lifestyleLines translates survey answers into sentence fragments in a stable order.
// Unknown questions and answer codes are skipped.
func lifestyleLines(answers map[string]string) []string {
	if len(answers) == 0 {
		return nil
	}

	questions := make([]string, 0, len(answers))
	for question := range answers {
		questions = append(questions, question)
	}
	sort.Strings(questions)

	lines := make([]string, 0, len(questions))
	for _, question := range questions {
		fragments, ok := lifestyleFragments[question]
		if !ok {
			continue
		}
		answer := strings.ToLower(strings.TrimSpace(answers[question]))
		if fragment, ok := fragments[answer]; ok {
			lines = append(lines, fragment)
		}
	}

	return lines
}
