package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/sandevgo/solace/internal/core"
	"github.com/sandevgo/solace/pkg/log"
)

// Extractor distills durable insights from recent conversation turns and
// writes them to long-term memory. Extraction is best-effort: a failed run
// is logged and retried on the next cadence, never surfaced to the user.
type Extractor struct {
	longTerm  *LongTerm
	generator core.Generator

	mu   sync.Mutex
	seen map[string]map[string]struct{} // owner -> fact hash
}

func NewExtractor(longTerm *LongTerm, generator core.Generator) *Extractor {
	return &Extractor{
		longTerm:  longTerm,
		generator: generator,
		seen:      make(map[string]map[string]struct{}),
	}
}

// Extract runs one distillation pass over the given turns and persists any
// new insights for the owner. Returns the number of insights stored.
func (e *Extractor) Extract(ctx context.Context, owner string, turns []core.WorkingMemoryEntry) (int, error) {
	conversation := formatConversation(turns)
	if conversation == "" {
		return 0, nil
	}

	logger := log.FromCtx(ctx)
	logger.Debug().Str("user", owner).Int("turns", len(turns)).Msg("distilling insights")

	resp, err := e.generator.Generate(ctx, buildExtractionPrompt(conversation))
	if err != nil {
		return 0, fmt.Errorf("insight generation: %w", err)
	}

	facts, err := parseExtractionResponse(resp)
	if err != nil {
		return 0, fmt.Errorf("parse insights: %w", err)
	}

	stored := 0
	for _, f := range facts {
		fact := strings.TrimSpace(f.Fact)
		if fact == "" {
			continue
		}
		if e.isDuplicate(owner, fact) {
			continue
		}

		_, err := e.longTerm.Remember(ctx, owner, fact, core.KindInsight, map[string]string{
			"category": f.Category,
			"source":   "extracted",
		})
		if err != nil {
			logger.Error().Err(err).Str("user", owner).Msg("failed to store insight")
			continue
		}
		e.markSeen(owner, fact)
		stored++
		logger.Info().Str("user", owner).Str("category", f.Category).Msg("insight stored")
	}

	return stored, nil
}

func (e *Extractor) isDuplicate(owner, fact string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	hashes, ok := e.seen[owner]
	if !ok {
		return false
	}
	_, dup := hashes[factHash(fact)]
	return dup
}

func (e *Extractor) markSeen(owner, fact string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.seen[owner] == nil {
		e.seen[owner] = make(map[string]struct{})
	}
	e.seen[owner][factHash(fact)] = struct{}{}
}

func factHash(fact string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(fact))))
	return hex.EncodeToString(sum[:])
}

func formatConversation(turns []core.WorkingMemoryEntry) string {
	var b strings.Builder
	for _, t := range turns {
		if t.Role == core.RoleSystem {
			continue
		}
		b.WriteString(strings.ToUpper(t.Role))
		b.WriteString(": ")
		b.WriteString(t.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

type extractedFact struct {
	Fact     string `json:"fact"`
	Category string `json:"category"`
}

func buildExtractionPrompt(conversation string) string {
	return fmt.Sprintf(
		`Extract distinct, durable facts about the user from the conversation. Output format: JSON list of objects {fact, category}. Categories: [preference, life_event, emotional_pattern, relationship, goal]. Rules: 1. Ignore greetings and small talk. 2. Facts must be self-contained (replace "he" with "User"). 3. Output an empty list if nothing qualifies. Conversation: %s`,
		conversation,
	)
}

func parseExtractionResponse(content string) ([]extractedFact, error) {
	jsonStr := extractJSONArray(content)
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON array found in response")
	}

	var facts []extractedFact
	if err := json.Unmarshal([]byte(jsonStr), &facts); err != nil {
		return nil, fmt.Errorf("unmarshal facts: %w", err)
	}

	return facts, nil
}

func extractJSONArray(content string) string {
	start := strings.Index(content, "[")
	if start == -1 {
		return ""
	}

	end := strings.LastIndex(content[start:], "]")
	if end == -1 {
		return ""
	}

	return content[start : start+end+1]
}
