package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sandevgo/solace/internal/core"
)

// OpenAIEmbedder calls an OpenAI-compatible /v1/embeddings endpoint.
type OpenAIEmbedder struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
}

type OpenAIConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

func NewOpenAIEmbedder(cfg OpenAIConfig) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := map[string]any{
		"model": e.model,
		"input": text,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal: %s", core.ErrEmbeddingFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/embeddings", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %s", core.ErrEmbeddingFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request: %s", core.ErrEmbeddingFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %s", core.ErrEmbeddingFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http %d: %s", core.ErrEmbeddingFailed, resp.StatusCode, string(body))
	}

	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: decode: %s", core.ErrEmbeddingFailed, err)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", core.ErrEmbeddingFailed)
	}

	vec := result.Data[0].Embedding
	if e.dimensions > 0 && len(vec) != e.dimensions {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d", core.ErrEmbeddingFailed, e.dimensions, len(vec))
	}
	return vec, nil
}

func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}
