package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const anthropicVersion = "2023-06-01"

// AnthropicClient calls the Anthropic messages API.
type AnthropicClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

type anthropicRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Messages    []Message `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewAnthropicClient создает клиент Anthropic с заданными параметрами.
func NewAnthropicClient(apiKey, baseURL, model string, timeout time.Duration, maxTokens int) *AnthropicClient {
	return &AnthropicClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		maxTokens:  maxTokens,
		httpClient: newHTTPClient(timeout),
	}
}

// Chat отправляет сообщения в Anthropic и возвращает текст ответа и сырой ответ API.
// Системные сообщения передаются отдельным полем system.
func (c *AnthropicClient) Chat(ctx context.Context, messages []Message) (string, []byte, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", nil, errors.New("anthropic api key is missing")
	}

	systemParts := make([]string, 0)
	conversation := make([]Message, 0, len(messages))
	for _, message := range messages {
		text := strings.TrimSpace(message.Content)
		if text == "" {
			continue
		}
		if strings.EqualFold(message.Role, "system") {
			systemParts = append(systemParts, text)
			continue
		}
		role := "user"
		if strings.EqualFold(message.Role, "assistant") {
			role = "assistant"
		}
		conversation = append(conversation, Message{Role: role, Content: text})
	}

	if len(conversation) == 0 {
		return "", nil, errors.New("anthropic request has no user content")
	}

	request := anthropicRequest{
		Model:       c.model,
		MaxTokens:   resolveMaxTokens(c.maxTokens),
		System:      strings.Join(systemParts, "\n\n"),
		Temperature: 0.3,
		Messages:    conversation,
	}

	status, body, err := postJSON(ctx, c.httpClient, c.baseURL+"/messages", map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": anthropicVersion,
	}, request)
	if err != nil {
		return "", body, err
	}

	if !isSuccess(status) {
		var apiErr anthropicResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != nil {
			return "", body, fmt.Errorf("anthropic api error: %s", apiErr.Error.Message)
		}
		return "", body, fmt.Errorf("anthropic api error: status %d", status)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", body, err
	}

	var builder strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "" || block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}
	if builder.Len() == 0 {
		return "", body, errors.New("anthropic response missing content")
	}

	return builder.String(), body, nil
}
