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

type Anthropic struct {
	baseProvider
}

func NewAnthropic(apiKey, model string, timeout time.Duration) *Anthropic {
	return &Anthropic{
		baseProvider: newBaseProvider("https://api.anthropic.com", apiKey, model, timeout),
	}
}

func (a *Anthropic) Generate(ctx context.Context, prompt string) (string, error) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	payload := map[string]any{
		"model":      a.model,
		"max_tokens": 1024,
		"messages":   []msg{{Role: core.RoleUser, Content: prompt}},
	}

	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": "2023-06-01",
	}

	resp, err := a.doRequest(ctx, http.MethodPost, "/v1/messages", payload, headers)
	if err != nil {
		return "", fmt.Errorf("%w: %s", core.ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %s", core.ErrGenerationFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: http %d: %s", core.ErrGenerationFailed, resp.StatusCode, string(data))
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("%w: decode: %s", core.ErrGenerationFailed, err)
	}

	var text string
	for _, c := range result.Content {
		if c.Type == "text" {
			text += c.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("%w: empty content: %s", core.ErrGenerationFailed, string(data))
	}
	return text, nil
}
