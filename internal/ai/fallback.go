package ai

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"example.com/adaptive-budget/backend/internal/models"
)

const (
	FallbackProviderName = "fallback"
	FallbackConfidence   = 0.75

	targetSavingsRate      = 15
	strongSavingsRate      = 20
	emergencyFundMonths    = 6
	lifeCoverMonths        = 120
	healthCoverPerMember   = 300000
	minHealthCover         = 500000
	youngInvestorAge       = 30
	lateCareerAge          = 45
	retirementAge          = 60
	largeFamilySize        = 3
	monthlyInvestmentShare = 0.10
	annualReturn           = 0.12
	highHousingRate        = 35
	highDiscretionaryRate  = 20
)

// FallbackProvider produces insights from fixed templates. It never fails.
type FallbackProvider struct{}

// NewFallbackProvider создает детерминированный провайдер шаблонных рекомендаций.
func NewFallbackProvider() *FallbackProvider {
	return &FallbackProvider{}
}

// Name возвращает имя провайдера.
func (p *FallbackProvider) Name() string {
	return FallbackProviderName
}

// Insights возвращает шаблонные рекомендации для бюджета.
func (p *FallbackProvider) Insights(_ context.Context, request models.InsightRequest) (Candidate, error) {
	return Candidate{Insights: GenerateFallback(request)}, nil
}

// GenerateFallback строит объяснения, советы и рекомендации по фиксированным правилам.
func GenerateFallback(request models.InsightRequest) models.Insights {
	return models.Insights{
		Explanations:    fallbackExplanations(request),
		Tips:            fallbackTips(request),
		Recommendations: fallbackRecommendations(request),
		AIGenerated:     false,
		Confidence:      FallbackConfidence,
		Source:          FallbackProviderName,
	}
}

type categoryDetail struct {
	amount     string
	percentage int
	name       string
	city       string
	familySize int
}

var categoryTemplates = map[string]func(categoryDetail) string{
	"housing": func(d categoryDetail) string {
		return fmt.Sprintf("%s (%d%%) covers rent or EMI and utilities for a family of %d in %s.", d.amount, d.percentage, d.familySize, d.city)
	},
	"food": func(d categoryDetail) string {
		return fmt.Sprintf("%s (%d%%) covers groceries and meals for %d %s in %s.", d.amount, d.percentage, d.familySize, people(d.familySize), d.city)
	},
	"transport": func(d categoryDetail) string {
		return fmt.Sprintf("%s (%d%%) covers daily commuting and vehicle costs in %s.", d.amount, d.percentage, d.city)
	},
	"healthcare": func(d categoryDetail) string {
		return fmt.Sprintf("%s (%d%%) keeps medicines, check-ups and premiums covered for %d %s.", d.amount, d.percentage, d.familySize, people(d.familySize))
	},
	"entertainment": func(d categoryDetail) string {
		return fmt.Sprintf("%s (%d%%) leaves room for outings, subscriptions and hobbies.", d.amount, d.percentage)
	},
	"shopping": func(d categoryDetail) string {
		return fmt.Sprintf("%s (%d%%) covers clothing, personal care and occasional purchases.", d.amount, d.percentage)
	},
	"savings": func(d categoryDetail) string {
		return fmt.Sprintf("%s (%d%%) builds your emergency fund and long-term investments.", d.amount, d.percentage)
	},
}

func fallbackExplanations(request models.InsightRequest) models.Explanations {
	profile := request.Profile
	city := displayCity(profile.City)
	savings := request.Categories["savings"]

	overall := fmt.Sprintf(
		"Based on a monthly income of %s for a family of %d in %s, %s (%d%%) is set aside for savings and %s covers living expenses across %d categories. The allocation scores %d/100 on the financial health check.",
		formatMoney(request.Currency, float64(request.TotalBudget)),
		profile.FamilySize,
		city,
		formatMoney(request.Currency, float64(savings.Amount)),
		savings.Percentage,
		formatMoney(request.Currency, float64(request.TotalAllocated-savings.Amount)),
		len(request.Categories)-1,
		request.Validation.Score,
	)

	categories := make(map[string]string, len(request.Categories))
	for _, key := range request.CategoryOrder {
		category, ok := request.Categories[key]
		if !ok {
			continue
		}
		detail := categoryDetail{
			amount:     formatMoney(request.Currency, float64(category.Amount)),
			percentage: category.Percentage,
			name:       category.Name,
			city:       city,
			familySize: profile.FamilySize,
		}
		if template, ok := categoryTemplates[key]; ok {
			categories[key] = template(detail)
			continue
		}
		categories[key] = fmt.Sprintf("%s (%d%%) is allocated to %s.", detail.amount, detail.percentage, strings.ToLower(detail.name))
	}

	return models.Explanations{Overall: overall, Categories: categories}
}

func fallbackTips(request models.InsightRequest) []string {
	profile := request.Profile
	income := profile.MonthlyIncome
	currency := request.Currency
	savings := request.Categories["savings"]
	tips := make([]string, 0, 8)

	switch {
	case savings.Percentage < targetSavingsRate:
		gap := math.Round(income*targetSavingsRate/100) - float64(savings.Amount)
		tips = append(tips, fmt.Sprintf(
			"Your savings rate is %d%%. Cutting one recurring expense by %s a month, such as an unused subscription or frequent food delivery, would lift it to the recommended %d%%.",
			savings.Percentage, formatMoney(currency, gap), targetSavingsRate,
		))
	case savings.Percentage >= strongSavingsRate:
		tips = append(tips, fmt.Sprintf(
			"Saving %d%% of income puts you ahead of most households; review the split between safe and growth investments once a year.",
			savings.Percentage,
		))
	}

	switch {
	case profile.Age < youngInvestorAge:
		monthly := math.Round(income * monthlyInvestmentShare)
		years := retirementAge - profile.Age
		tips = append(tips, fmt.Sprintf(
			"Time is your biggest asset: investing %s a month from age %d at %d%% a year could grow to about %s by %d thanks to compounding.",
			formatMoney(currency, monthly), profile.Age, int(annualReturn*100), formatMoney(currency, futureValue(monthly, years)), retirementAge,
		))
	case profile.Age >= lateCareerAge:
		tips = append(tips, fmt.Sprintf(
			"With about %d years to retirement, shift gradually toward debt funds and keep healthcare costs pre-funded.",
			max(retirementAge-profile.Age, 0),
		))
	}

	if profile.FamilySize > largeFamilySize {
		cover := float64(profile.FamilySize * healthCoverPerMember)
		tips = append(tips, fmt.Sprintf(
			"With %d family members, a family floater health policy of at least %s keeps one hospital stay from draining your savings.",
			profile.FamilySize, formatMoney(currency, cover),
		))
	}

	if housing, ok := request.Categories["housing"]; ok && housing.Percentage > highHousingRate {
		tips = append(tips, fmt.Sprintf(
			"Housing takes %d%% of income; keeping rent or EMI under 30%% frees cash for savings.",
			housing.Percentage,
		))
	}

	discretionary := request.Categories["entertainment"].Percentage + request.Categories["shopping"].Percentage
	if discretionary > highDiscretionaryRate {
		tips = append(tips, fmt.Sprintf(
			"Entertainment and shopping take %d%% of income; a fixed monthly cap for both makes savings goals easier to hit.",
			discretionary,
		))
	}

	if strings.EqualFold(strings.TrimSpace(profile.LifestyleAnswers["diningOut"]), "frequently") {
		tips = append(tips, "Eating out several times a week adds up quickly; cooking at home twice more each week is an easy saving.")
	}

	tips = append(tips,
		fmt.Sprintf("Build an emergency fund of %s, six months of income, before taking on new investments.", formatMoney(currency, income*emergencyFundMonths)),
		"Automate savings with a standing instruction on payday so the savings amount leaves your account first.",
		"Review spending against this plan every week; small overspends are easier to correct early.",
	)

	return tips
}

func fallbackRecommendations(request models.InsightRequest) []models.Recommendation {
	profile := request.Profile
	income := profile.MonthlyIncome
	currency := request.Currency
	savings := float64(request.Categories["savings"].Amount)

	equity, debt := investmentSplit(profile.Age)
	healthCover := math.Max(minHealthCover, float64(profile.FamilySize*healthCoverPerMember))

	return []models.Recommendation{
		{
			Type:        "emergency_fund",
			Amount:      income * emergencyFundMonths,
			Description: fmt.Sprintf("Build an emergency fund of %s covering six months of income in a liquid or sweep-in account.", formatMoney(currency, income*emergencyFundMonths)),
			Priority:    models.PriorityCritical,
			Icon:        "🛡️",
		},
		{
			Type:        "investment",
			Amount:      savings,
			Description: fmt.Sprintf("Invest %s a month with roughly %d%% in equity and %d%% in debt instruments, suited to age %d.", formatMoney(currency, savings), equity, debt, profile.Age),
			Priority:    models.PriorityMedium,
			Icon:        "📈",
		},
		{
			Type:        "life_insurance",
			Amount:      income * lifeCoverMonths,
			Description: fmt.Sprintf("Take a term life cover of %s, ten years of income, to protect your family's lifestyle.", formatMoney(currency, income*lifeCoverMonths)),
			Priority:    models.PriorityHigh,
			Icon:        "🧾",
		},
		{
			Type:        "health_insurance",
			Amount:      healthCover,
			Description: fmt.Sprintf("Hold health cover of at least %s for a family of %d.", formatMoney(currency, healthCover), profile.FamilySize),
			Priority:    models.PriorityHigh,
			Icon:        "🏥",
		},
	}
}

// investmentSplit returns the equity and debt percentages for an age band.
func investmentSplit(age int) (int, int) {
	switch {
	case age < youngInvestorAge:
		return 80, 20
	case age < lateCareerAge:
		return 60, 40
	case age < retirementAge:
		return 40, 60
	default:
		return 20, 80
	}
}

// futureValue of a monthly contribution over years at annualReturn, compounded monthly.
func futureValue(monthly float64, years int) float64 {
	if years <= 0 {
		return 0
	}
	rate := annualReturn / 12
	periods := float64(years * 12)
	return math.Round(monthly * (math.Pow(1+rate, periods) - 1) / rate)
}

func formatMoney(currency string, amount float64) string {
	value := humanize.Comma(int64(math.Round(amount)))
	if currency == "" {
		return value
	}
	return currency + " " + value
}

func displayCity(city string) string {
	trimmed := strings.TrimSpace(city)
	if trimmed == "" || strings.EqualFold(trimmed, "default") {
		return "your city"
	}
	return trimmed
}

func people(count int) string {
	if count == 1 {
		return "person"
	}
	return "people"
}
