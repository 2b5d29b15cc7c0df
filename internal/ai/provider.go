package ai

import (
	"context"
	"fmt"

	"example.com/adaptive-budget/backend/internal/models"
)

// InsightProvider produces explanations, tips and recommendations for a balanced budget.
type InsightProvider interface {
	Name() string
	Insights(ctx context.Context, request models.InsightRequest) (Candidate, error)
}

// Candidate is a provider result before the orchestrator accepts or rejects it.
type Candidate struct {
	Insights    models.Insights
	Model       string
	Prompt      string
	RawResponse string
	States      []State
}

// LLMProvider asks a chat model for insights and scores what comes back.
type LLMProvider struct {
	client   Client
	provider string
	model    string
}

// NewLLMProvider создает провайдера рекомендаций поверх AI-клиента.
func NewLLMProvider(client Client, provider, model string) *LLMProvider {
	return &LLMProvider{client: client, provider: provider, model: model}
}

// Name возвращает имя провайдера.
func (p *LLMProvider) Name() string {
	return p.provider
}

// Insights строит промпт, делает один запрос к модели и оценивает ответ.
// Ошибка возвращается вместе с частично заполненным Candidate для журнала запросов.
func (p *LLMProvider) Insights(ctx context.Context, request models.InsightRequest) (Candidate, error) {
	candidate := Candidate{Model: p.model}

	prompt, err := buildInsightPrompt(request)
	if err != nil {
		candidate.States = append(candidate.States, StateLLMFailed)
		return candidate, fmt.Errorf("build prompt: %w", err)
	}
	candidate.Prompt = prompt
	candidate.States = append(candidate.States, StatePromptBuilt)

	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}

	content, raw, err := p.client.Chat(ctx, messages)
	candidate.States = append(candidate.States, StateLLMCalled)
	candidate.RawResponse = string(raw)
	if err != nil {
		candidate.States = append(candidate.States, StateLLMFailed)
		return candidate, err
	}
	if candidate.RawResponse == "" {
		candidate.RawResponse = content
	}

	payload, err := parseInsightPayload(content)
	if err != nil {
		candidate.States = append(candidate.States, StateLLMFailed)
		return candidate, err
	}
	candidate.States = append(candidate.States, StateLLMParsed)

	result := assessPayload(payload, request.Profile.MonthlyIncome)
	candidate.Insights = result.insights
	candidate.Insights.Source = p.provider
	return candidate, nil
}
