package embed

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/solace/internal/config"
	"github.com/sandevgo/solace/internal/core"
)

func TestMockEmbedder(t *testing.T) {
	ctx := context.Background()
	embedder := NewMockEmbedder(64)

	t.Run("deterministic", func(t *testing.T) {
		a, err := embedder.Embed(ctx, "same input")
		require.NoError(t, err)
		b, err := embedder.Embed(ctx, "same input")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("different inputs differ", func(t *testing.T) {
		a, err := embedder.Embed(ctx, "one")
		require.NoError(t, err)
		b, err := embedder.Embed(ctx, "two")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("unit length", func(t *testing.T) {
		vec, err := embedder.Embed(ctx, "normalize me")
		require.NoError(t, err)
		require.Len(t, vec, 64)

		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 0.001)
	})
}

func TestOpenAIEmbedder_Embed(t *testing.T) {
	embedding := make([]string, 8)
	for i := range embedding {
		embedding[i] = "0.5"
	}
	okBody := fmt.Sprintf(`{"data": [{"embedding": [%s]}]}`, strings.Join(embedding, ","))

	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr bool
	}{
		{
			name: "successful embedding",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/embeddings", r.URL.Path)
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
				fmt.Fprint(w, okBody)
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantErr: true,
		},
		{
			name: "empty data",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"data": []}`)
			},
			wantErr: true,
		},
		{
			name: "wrong dimensionality",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"data": [{"embedding": [0.1, 0.2]}]}`)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			embedder := NewOpenAIEmbedder(OpenAIConfig{
				BaseURL:    server.URL,
				APIKey:     "test-key",
				Model:      "test-model",
				Dimensions: 8,
				Timeout:    5 * time.Second,
			})

			vec, err := embedder.Embed(context.Background(), "some text")
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, core.ErrEmbeddingFailed)
				return
			}
			require.NoError(t, err)
			assert.Len(t, vec, 8)
		})
	}
}

func TestNewEmbedder(t *testing.T) {
	ctx := context.Background()

	t.Run("openai", func(t *testing.T) {
		e, err := NewEmbedder(ctx, &config.EmbeddingConfig{Provider: "openai", Dimensions: 1536, TimeoutSeconds: 15})
		require.NoError(t, err)
		assert.Equal(t, 1536, e.Dimensions())
	})

	t.Run("mock", func(t *testing.T) {
		e, err := NewEmbedder(ctx, &config.EmbeddingConfig{Provider: "mock", Dimensions: 64})
		require.NoError(t, err)
		assert.IsType(t, &MockEmbedder{}, e)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := NewEmbedder(ctx, &config.EmbeddingConfig{Provider: "telepathy"})
		require.Error(t, err)
	})
}
