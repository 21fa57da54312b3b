package core

import "context"

// LongTermMemory is the durable, vector-indexed tier: episodic text plus
// distilled insights. Persistence is best-effort; conversational continuity
// never depends on it.
type LongTermMemory interface {
	Remember(ctx context.Context, owner, text string, kind MemoryKind, metadata map[string]string) (MemoryRecord, error)
	Recall(ctx context.Context, owner, query string, k int, kind MemoryKind) (RetrievalResult, error)
}
