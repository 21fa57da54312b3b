package core

import (
	"context"
	"time"
)

// VectorStore persists (vector, text, metadata) records per user namespace
// and answers nearest-neighbour queries. Writes are durable before Put
// returns. Implementations must tolerate an empty namespace by returning an
// empty result, not an error.
type VectorStore interface {
	// Put is idempotent by record ID.
	Put(ctx context.Context, rec MemoryRecord) error

	// Query returns at most k records from the owner namespace ranked by
	// similarity, ties broken by most recent CreatedAt. A zero-value kind
	// matches all kinds.
	Query(ctx context.Context, owner string, vector []float32, k int, kind MemoryKind) (RetrievalResult, error)

	Close() error
}

// StoredTurn is one audited conversational turn. Overridden turns are
// recorded like any other so the audit trail has no gaps.
type StoredTurn struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"user_id"`
	SessionID     string    `json:"session_id"`
	TurnIndex     int       `json:"turn_index"`
	Role          string    `json:"role"`
	Content       string    `json:"content"`
	Risk          RiskLevel `json:"risk_level"`
	MatchedSignal string    `json:"matched_signal,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// TurnsRepository is the durable audit log behind the dashboard and
// reporting operations.
type TurnsRepository interface {
	AddTurn(ctx context.Context, turn StoredTurn) error
	GetRecentTurns(ctx context.Context, userID string, limit int) ([]StoredTurn, error)
}
