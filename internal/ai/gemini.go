package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GeminiClient calls the Google Generative Language API (Gemini).
type GeminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  *geminiConfig   `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Finish reasons after which the candidate text cannot be a complete insight document.
var geminiIncompleteFinish = map[string]bool{
	"MAX_TOKENS": true,
	"SAFETY":     true,
	"RECITATION": true,
}

// NewGeminiClient создает клиент Gemini с заданными параметрами.
func NewGeminiClient(apiKey, baseURL, model string, timeout time.Duration, maxTokens int) *GeminiClient {
	return &GeminiClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		maxTokens:  maxTokens,
		httpClient: newHTTPClient(timeout),
	}
}

// Chat отправляет сообщения в Gemini в режиме JSON-ответа и возвращает текст и сырой ответ API.
func (c *GeminiClient) Chat(ctx context.Context, messages []Message) (string, []byte, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", nil, errors.New("gemini api key is missing")
	}

	request, err := newGeminiRequest(messages, resolveMaxTokens(c.maxTokens))
	if err != nil {
		return "", nil, err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	status, body, err := postJSON(ctx, c.httpClient, endpoint, nil, request)
	if err != nil {
		return "", body, err
	}

	var parsed geminiResponse
	decodeErr := json.Unmarshal(body, &parsed)
	if !isSuccess(status) {
		if decodeErr == nil && parsed.Error != nil {
			return "", body, fmt.Errorf("gemini api error: %s", parsed.Error.Message)
		}
		return "", body, fmt.Errorf("gemini api error: status %d", status)
	}
	if decodeErr != nil {
		return "", body, decodeErr
	}

	text, err := parsed.insightText()
	return text, body, err
}

// newGeminiRequest maps chat roles onto Gemini contents: system messages become the
// system instruction and assistant turns use the "model" role.
func newGeminiRequest(messages []Message, maxTokens int) (geminiRequest, error) {
	var system []geminiPart
	contents := make([]geminiContent, 0, len(messages))

	for _, message := range messages {
		text := strings.TrimSpace(message.Content)
		if text == "" {
			continue
		}

		part := geminiPart{Text: text}
		switch strings.ToLower(strings.TrimSpace(message.Role)) {
		case "system":
			system = append(system, part)
		case "assistant", "model":
			contents = append(contents, geminiContent{Role: "model", Parts: []geminiPart{part}})
		default:
			contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{part}})
		}
	}

	if len(contents) == 0 {
		return geminiRequest{}, errors.New("gemini request has no user content")
	}

	request := geminiRequest{
		Contents: contents,
		GenerationConfig: &geminiConfig{
			Temperature:      0.3,
			MaxOutputTokens:  maxTokens,
			ResponseMimeType: "application/json",
		},
	}
	if len(system) > 0 {
		request.SystemInstruction = &geminiContent{Parts: system}
	}

	return request, nil
}

func (r geminiResponse) insightText() (string, error) {
	if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini blocked the prompt: %s", r.PromptFeedback.BlockReason)
	}
	if len(r.Candidates) == 0 {
		return "", errors.New("gemini response missing candidates")
	}

	candidate := r.Candidates[0]
	if geminiIncompleteFinish[candidate.FinishReason] {
		return "", fmt.Errorf("gemini stopped early: %s", candidate.FinishReason)
	}
	if len(candidate.Content.Parts) == 0 {
		return "", errors.New("gemini response missing content")
	}

	var builder strings.Builder
	for _, part := range candidate.Content.Parts {
		builder.WriteString(part.Text)
	}

	return builder.String(), nil
}
