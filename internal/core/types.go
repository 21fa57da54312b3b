package core

import "time"

const (
	SolaceName    = "Solace"
	SolaceVersion = "0.1.0"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// MemoryKind labels long-term records by tier.
type MemoryKind string

const (
	KindEpisodic MemoryKind = "episodic"
	KindInsight  MemoryKind = "insight"
	KindProfile  MemoryKind = "profile"
)

// RiskLevel is the outcome of safety classification.
type RiskLevel string

const (
	RiskNone     RiskLevel = "none"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// MemoryRecord is an immutable long-term memory entry. Updates are new
// records; the vector index never sees in-place mutation.
type MemoryRecord struct {
	ID        string            `json:"id"`
	Owner     string            `json:"owner"`
	Text      string            `json:"text"`
	Vector    []float32         `json:"-"`
	Kind      MemoryKind        `json:"kind"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// WorkingMemoryEntry is one turn of the live session buffer.
type WorkingMemoryEntry struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	TurnIndex int       `json:"turn_index"`
}

// RetrievedRecord annotates a MemoryRecord with its query similarity.
type RetrievedRecord struct {
	MemoryRecord
	Similarity float32 `json:"similarity"`
}

// RetrievalResult is ordered most-similar first.
type RetrievalResult struct {
	Records []RetrievedRecord `json:"records"`
}

// Empty reports whether the query matched nothing.
func (r RetrievalResult) Empty() bool {
	return len(r.Records) == 0
}

// SafetyVerdict is the classification outcome for one piece of text.
type SafetyVerdict struct {
	Risk          RiskLevel `json:"risk_level"`
	MatchedSignal string    `json:"matched_signal,omitempty"`
	ToneHint      string    `json:"tone_hint,omitempty"`
	OverrideText  string    `json:"override_text,omitempty"`
}

// Overridden reports whether normal generation must be skipped.
func (v SafetyVerdict) Overridden() bool {
	return v.Risk == RiskHigh
}

// TurnResult is what ProcessTurn hands back to the transport layer.
type TurnResult struct {
	ResponseText string    `json:"response_text"`
	Risk         RiskLevel `json:"risk_level"`
}
