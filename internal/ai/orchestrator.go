package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"example.com/adaptive-budget/backend/internal/models"
)

type State string

const (
	StateIdle        State = "IDLE"
	StatePromptBuilt State = "PROMPT_BUILT"
	StateLLMCalled   State = "LLM_CALLED"
	StateLLMParsed   State = "LLM_PARSED"
	StateLLMFailed   State = "LLM_FAILED"
	StateAIValidated State = "AI_VALIDATED"
	StateAIRejected  State = "AI_REJECTED"
	StateDone        State = "DONE"
)

const (
	DefaultTimeout = 10 * time.Second

	minAcceptedConfidence = 0.6
	confidenceEpsilon     = 1e-9
)

var errLowConfidence = errors.New("ai response confidence is too low")

// Orchestrator runs the primary provider once under a timeout and falls back to the
// deterministic provider on any failure. It never returns an error or panics.
type Orchestrator struct {
	primary  InsightProvider
	fallback InsightProvider
	timeout  time.Duration
	logger   *slog.Logger
}

// NewOrchestrator создает оркестратор. primary может быть nil, тогда всегда используется fallback.
func NewOrchestrator(primary, fallback InsightProvider, timeout time.Duration, logger *slog.Logger) *Orchestrator {
	if fallback == nil {
		fallback = NewFallbackProvider()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		primary:  primary,
		fallback: fallback,
		timeout:  timeout,
		logger:   logger,
	}
}

type providerResult struct {
	candidate Candidate
	err       error
}

// Enrich возвращает рекомендации для бюджета: от модели, если ответ прошел проверку,
// иначе шаблонные.
func (o *Orchestrator) Enrich(ctx context.Context, request models.InsightRequest) models.Insights {
	states := []State{StateIdle}
	if o.primary == nil {
		return o.useFallback(ctx, request, states, nil, nil)
	}

	started := time.Now()
	candidate, err := o.callPrimary(ctx, request)
	states = append(states, candidate.States...)

	trace := &models.InsightTrace{
		Provider:    o.primary.Name(),
		Model:       candidate.Model,
		Prompt:      candidate.Prompt,
		RawResponse: candidate.RawResponse,
		Duration:    time.Since(started),
	}

	if err == nil && candidate.Insights.Confidence-minAcceptedConfidence <= confidenceEpsilon {
		err = fmt.Errorf("%w: %.1f", errLowConfidence, candidate.Insights.Confidence)
	}
	if err != nil {
		if last(states) == StateLLMParsed {
			states = append(states, StateAIRejected)
		}
		trace.Error = err.Error()
		trace.Confidence = candidate.Insights.Confidence
		return o.useFallback(ctx, request, states, trace, candidate.Insights.Issues)
	}

	states = append(states, StateAIValidated, StateDone)
	trace.States = stateNames(states)
	trace.Confidence = candidate.Insights.Confidence
	trace.Success = true

	insights := candidate.Insights
	insights.AIGenerated = true
	insights.Trace = trace
	if insights.Source == "" {
		insights.Source = o.primary.Name()
	}
	if insights.Explanations.Categories == nil {
		insights.Explanations.Categories = map[string]string{}
	}

	o.logger.Info("ai insights generated",
		slog.String("provider", trace.Provider),
		slog.Float64("confidence", insights.Confidence),
		slog.Duration("latency", trace.Duration),
	)
	return insights
}

// callPrimary runs the provider in its own goroutine so a provider that ignores the
// context still cannot hold the request past the timeout.
func (o *Orchestrator) callPrimary(ctx context.Context, request models.InsightRequest) (Candidate, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	done := make(chan providerResult, 1)
	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				done <- providerResult{
					candidate: Candidate{States: []State{StateLLMFailed}},
					err:       fmt.Errorf("insight provider panic: %v", recovered),
				}
			}
		}()

		candidate, err := o.primary.Insights(callCtx, request)
		done <- providerResult{candidate: candidate, err: err}
	}()

	select {
	case result := <-done:
		return result.candidate, result.err
	case <-callCtx.Done():
		return Candidate{States: []State{StateLLMCalled, StateLLMFailed}}, fmt.Errorf("insight provider: %w", callCtx.Err())
	}
}

func (o *Orchestrator) useFallback(ctx context.Context, request models.InsightRequest, states []State, trace *models.InsightTrace, issues []string) models.Insights {
	candidate, err := o.fallback.Insights(ctx, request)
	if err != nil {
		o.logger.Error("fallback insight provider failed", slog.String("error", err.Error()))
		candidate = Candidate{Insights: GenerateFallback(request)}
	}

	states = append(states, StateDone)
	insights := candidate.Insights
	insights.AIGenerated = false
	insights.Source = o.fallback.Name()
	insights.Issues = issues

	if trace != nil {
		trace.States = stateNames(states)
		insights.Trace = trace
		o.logger.Warn("ai insights fallback used",
			slog.String("provider", trace.Provider),
			slog.String("error", trace.Error),
		)
	} else {
		insights.Trace = &models.InsightTrace{Provider: o.fallback.Name(), States: stateNames(states), Confidence: insights.Confidence, Success: true}
	}

	return insights
}

func last(states []State) State {
	if len(states) == 0 {
		return ""
	}
	return states[len(states)-1]
}

func stateNames(states []State) []string {
	names := make([]string, 0, len(states))
	for _, state := range states {
		names = append(names, string(state))
	}
	return names
}
