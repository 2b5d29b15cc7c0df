package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	ProviderGemini    = "gemini"
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"

	defaultMaxTokens = 2048
	maxResponseBytes = 1 << 20
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is a single-shot chat completion transport.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, []byte, error)
}

// NewClient создает клиента выбранного провайдера. Для "none" возвращает nil без ошибки.
func NewClient(provider, apiKey, baseURL, model string, timeout time.Duration, maxTokens int) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderGemini:
		return NewGeminiClient(apiKey, baseURL, model, timeout, maxTokens), nil
	case ProviderGroq:
		return NewGroqClient(apiKey, baseURL, model, timeout, maxTokens), nil
	case ProviderAnthropic:
		return NewAnthropicClient(apiKey, baseURL, model, timeout, maxTokens), nil
	case ProviderNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", provider)
	}
}

func resolveMaxTokens(value int) int {
	if value > 0 {
		return value
	}

	return defaultMaxTokens
}

// postJSON sends payload as JSON and returns the status code and the (size-limited) body.
func postJSON(ctx context.Context, httpClient *http.Client, endpoint string, headers map[string]string, payload any) (int, []byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return 0, nil, err
	}
	request.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	response, err := httpClient.Do(request)
	if err != nil {
		return 0, nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return response.StatusCode, nil, err
	}

	return response.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
