package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sandevgo/solace/internal/core"
)

type OpenAICompatible struct {
	baseProvider
	authHeader string
	authPrefix string
}

type OpenAICompatibleConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	AuthHeader string // e.g., "Authorization"
	AuthPrefix string // e.g., "Bearer "
	Timeout    time.Duration
}

func NewOpenAICompatible(cfg OpenAICompatibleConfig) *OpenAICompatible {
	return &OpenAICompatible{
		baseProvider: newBaseProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Timeout),
		authHeader:   cfg.AuthHeader,
		authPrefix:   cfg.AuthPrefix,
	}
}

func (o *OpenAICompatible) Generate(ctx context.Context, prompt string) (string, error) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	payload := map[string]any{
		"model":    o.model,
		"messages": []msg{{Role: core.RoleUser, Content: prompt}},
	}

	headers := make(map[string]string)
	if o.authHeader != "" && o.apiKey != "" {
		headers[o.authHeader] = o.authPrefix + o.apiKey
	}

	resp, err := o.doRequest(ctx, http.MethodPost, "/v1/chat/completions", payload, headers)
	if err != nil {
		return "", fmt.Errorf("%w: %s", core.ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	text, err := parseOpenAIResponse(resp)
	if err != nil {
		return "", fmt.Errorf("%w: %s", core.ErrGenerationFailed, err)
	}
	return text, nil
}

func parseOpenAIResponse(resp *http.Response) (string, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("empty choices: %s", string(data))
	}
	return result.Choices[0].Message.Content, nil
}
