package models

import (
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
	PriorityLow      Priority = "Low"
)

type UserProfile struct {
	MonthlyIncome    float64           `json:"monthlyIncome" validate:"required,gte=1000,lte=100000000"`
	City             string            `json:"city" validate:"required,max=100"`
	FamilySize       int               `json:"familySize" validate:"required,gte=1,lte=20"`
	Age              int               `json:"age" validate:"required,gte=18,lte=100"`
	Occupation       string            `json:"occupation,omitempty" validate:"omitempty,max=100"`
	LifestyleAnswers map[string]string `json:"lifestyleAnswers,omitempty"`
}

type CategoryAllocation struct {
	Amount      int64  `json:"amount"`
	Percentage  int    `json:"percentage"`
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
}

type Explanations struct {
	Overall    string            `json:"overall"`
	Categories map[string]string `json:"categories"`
}

type Recommendation struct {
	Type        string   `json:"type"`
	Amount      float64  `json:"amount,omitempty"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Icon        string   `json:"icon,omitempty"`
}

type ValidationResult struct {
	IsValid    bool     `json:"isValid"`
	Issues     []string `json:"issues"`
	Warnings   []string `json:"warnings"`
	Score      int      `json:"score"`
	Confidence float64  `json:"confidence"`
}

type InputValidation struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// BudgetMetadata хранит служебные сведения о том, как был собран бюджет.
type BudgetMetadata struct {
	Currency           string   `json:"currency"`
	InsightSource      string   `json:"insightSource"`
	InsightStates      []string `json:"insightStates,omitempty"`
	InsightIssues      []string `json:"insightIssues,omitempty"`
	BalancingShortfall int64    `json:"balancingShortfall"`
	Warnings           []string `json:"warnings,omitempty"`
	ValidationIssues   []string `json:"validationIssues"`
	ValidationWarnings []string `json:"validationWarnings"`
}

type Budget struct {
	Categories      map[string]CategoryAllocation `json:"categories"`
	TotalBudget     int64                         `json:"totalBudget"`
	TotalAllocated  int64                         `json:"totalAllocated"`
	Explanations    Explanations                  `json:"explanations"`
	Tips            []string                      `json:"tips"`
	Recommendations []Recommendation              `json:"recommendations"`
	AIGenerated     bool                          `json:"aiGenerated"`
	Confidence      float64                       `json:"confidence"`
	ValidationScore int                           `json:"validationScore"`
	GeneratedAt     time.Time                     `json:"generatedAt"`
	Metadata        BudgetMetadata                `json:"metadata"`

	// Trace is not part of the output contract; handlers persist it to the insight log.
	Trace *InsightTrace `json:"-"`
}

// InsightRequest is everything an insight provider may see about a request.
type InsightRequest struct {
	Profile        UserProfile
	Currency       string
	CategoryOrder  []string
	Categories     map[string]CategoryAllocation
	TotalBudget    int64
	TotalAllocated int64
	Validation     ValidationResult
}

type Insights struct {
	Explanations    Explanations
	Tips            []string
	Recommendations []Recommendation
	AIGenerated     bool
	Confidence      float64
	Source          string
	Issues          []string
	Trace           *InsightTrace
}

type InsightTrace struct {
	Provider    string
	Model       string
	Prompt      string
	RawResponse string
	States      []string
	Confidence  float64
	Success     bool
	Error       string
	Duration    time.Duration
}

type StoredBudget struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"userId"`
	Profile   UserProfile `json:"profile"`
	Budget    Budget      `json:"budget"`
	CreatedAt time.Time   `json:"createdAt"`
}
