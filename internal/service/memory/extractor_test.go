package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/solace/internal/core"
	"github.com/sandevgo/solace/internal/providers/embed"
	"github.com/sandevgo/solace/internal/storage/chromem"
)

type stubGenerator struct {
	response string
	err      error
	calls    int
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func newTestExtractor(t *testing.T, gen core.Generator) (*Extractor, *LongTerm) {
	t.Helper()
	longTerm := NewLongTerm(chromem.NewEphemeral(), embed.NewMockEmbedder(64))
	return NewExtractor(longTerm, gen), longTerm
}

func sampleTurns() []core.WorkingMemoryEntry {
	return []core.WorkingMemoryEntry{
		{Role: core.RoleUser, Text: "I moved to Lisbon last month for a new job."},
		{Role: core.RoleAssistant, Text: "That sounds like a big change. How are you settling in?"},
		{Role: core.RoleUser, Text: "It's hard, I miss my sister a lot."},
	}
}

func TestExtractor_Extract(t *testing.T) {
	gen := &stubGenerator{response: `Here are the facts:
[{"fact": "User moved to Lisbon for a new job", "category": "life_event"},
 {"fact": "User misses their sister", "category": "relationship"}]`}

	extractor, longTerm := newTestExtractor(t, gen)

	stored, err := extractor.Extract(context.Background(), "u1", sampleTurns())
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	result, err := longTerm.Recall(context.Background(), "u1", "moving to a new city", 5, core.KindInsight)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	for _, rec := range result.Records {
		assert.Equal(t, core.KindInsight, rec.Kind)
		assert.Equal(t, "extracted", rec.Metadata["source"])
	}
}

func TestExtractor_Extract_DeduplicatesFacts(t *testing.T) {
	gen := &stubGenerator{response: `[{"fact": "User moved to Lisbon", "category": "life_event"}]`}
	extractor, _ := newTestExtractor(t, gen)

	stored, err := extractor.Extract(context.Background(), "u1", sampleTurns())
	require.NoError(t, err)
	assert.Equal(t, 1, stored)

	// Same fact again, different casing.
	gen.response = `[{"fact": "user moved to lisbon", "category": "life_event"}]`
	stored, err = extractor.Extract(context.Background(), "u1", sampleTurns())
	require.NoError(t, err)
	assert.Equal(t, 0, stored)

	// Dedupe is per owner.
	stored, err = extractor.Extract(context.Background(), "u2", sampleTurns())
	require.NoError(t, err)
	assert.Equal(t, 1, stored)
}

func TestExtractor_Extract_EmptyConversation(t *testing.T) {
	gen := &stubGenerator{response: `[]`}
	extractor, _ := newTestExtractor(t, gen)

	stored, err := extractor.Extract(context.Background(), "u1", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stored)
	assert.Zero(t, gen.calls, "no turns, no generation call")
}

func TestExtractor_Extract_GenerationError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model offline")}
	extractor, _ := newTestExtractor(t, gen)

	_, err := extractor.Extract(context.Background(), "u1", sampleTurns())
	require.Error(t, err)
}

func TestParseExtractionResponse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{
			name:    "bare array",
			content: `[{"fact": "User likes tea", "category": "preference"}]`,
			want:    1,
		},
		{
			name:    "array wrapped in prose",
			content: "Sure! Here you go:\n[{\"fact\": \"User likes tea\", \"category\": \"preference\"}]\nLet me know if you need more.",
			want:    1,
		},
		{
			name:    "empty array",
			content: `[]`,
			want:    0,
		},
		{
			name:    "no array at all",
			content: "I could not find any facts.",
			wantErr: true,
		},
		{
			name:    "malformed json",
			content: `[{"fact": }]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts, err := parseExtractionResponse(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, facts, tt.want)
		})
	}
}

func TestFormatConversation_SkipsSystemTurns(t *testing.T) {
	turns := []core.WorkingMemoryEntry{
		{Role: core.RoleSystem, Text: "internal directive"},
		{Role: core.RoleUser, Text: "hello"},
	}

	out := formatConversation(turns)
	assert.NotContains(t, out, "internal directive")
	assert.Contains(t, out, "USER: hello")
}
