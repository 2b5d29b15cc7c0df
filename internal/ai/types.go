package ai

// insightPayload is the JSON document the model is asked to return.
type insightPayload struct {
	Explanations    *explanationsPayload    `json:"explanations"`
	Tips            []string                `json:"tips"`
	Recommendations []recommendationPayload `json:"recommendations"`
}

type explanationsPayload struct {
	Overall    string            `json:"overall"`
	Categories map[string]string `json:"categories"`
}

type recommendationPayload struct {
	Type        string   `json:"type"`
	Amount      *float64 `json:"amount,omitempty"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Icon        string   `json:"icon,omitempty"`
}

type promptInput struct {
	MonthlyIncome     float64          `json:"monthly_income"`
	Currency          string           `json:"currency"`
	City              string           `json:"city"`
	FamilySize        int              `json:"family_size"`
	Age               int              `json:"age"`
	Occupation        string           `json:"occupation,omitempty"`
	TotalAllocated    int64            `json:"total_allocated"`
	Categories        []promptCategory `json:"categories"`
	Validation        promptValidation `json:"validation"`
	LifestyleInsights []string         `json:"lifestyle_insights,omitempty"`
}

type promptCategory struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Amount     int64  `json:"amount"`
	Percentage int    `json:"percentage"`
}

type promptValidation struct {
	Score    int      `json:"score"`
	IsValid  bool     `json:"is_valid"`
	Issues   []string `json:"issues,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
