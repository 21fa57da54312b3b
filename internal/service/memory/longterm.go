package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sandevgo/solace/internal/core"
	"github.com/sandevgo/solace/pkg/log"
	"github.com/sandevgo/solace/pkg/retry"
)

// LongTerm persists memories to the vector store and recalls them by
// semantic similarity. Records are append-only; nothing here mutates or
// deletes an existing record.
type LongTerm struct {
	store    core.VectorStore
	embedder core.Embedder
	retrier  *retry.Retrier
}

func NewLongTerm(store core.VectorStore, embedder core.Embedder) *LongTerm {
	return &LongTerm{
		store:    store,
		embedder: embedder,
		retrier:  retry.NewDefaultRetrier(),
	}
}

// Remember embeds the text and writes a new immutable record.
func (l *LongTerm) Remember(ctx context.Context, owner, text string, kind core.MemoryKind, metadata map[string]string) (core.MemoryRecord, error) {
	vector, err := l.embed(ctx, text)
	if err != nil {
		return core.MemoryRecord{}, err
	}

	rec := core.MemoryRecord{
		ID:        uuid.NewString(),
		Owner:     owner,
		Text:      text,
		Vector:    vector,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
		Metadata:  metadata,
	}

	if err := l.store.Put(ctx, rec); err != nil {
		return core.MemoryRecord{}, fmt.Errorf("store memory: %w", err)
	}
	return rec, nil
}

// Recall embeds the query and returns the k nearest records for the owner,
// optionally filtered by kind. An unknown owner yields an empty result, not
// an error.
func (l *LongTerm) Recall(ctx context.Context, owner, query string, k int, kind core.MemoryKind) (core.RetrievalResult, error) {
	vector, err := l.embed(ctx, query)
	if err != nil {
		return core.RetrievalResult{}, err
	}

	result, err := l.store.Query(ctx, owner, vector, k, kind)
	if err != nil {
		return core.RetrievalResult{}, fmt.Errorf("recall memory: %w", err)
	}
	return result, nil
}

func (l *LongTerm) embed(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := l.retrier.Do(ctx, func() error {
		var embedErr error
		vector, embedErr = l.embedder.Embed(ctx, text)
		if embedErr != nil {
			log.FromCtx(ctx).Debug().Err(embedErr).Msg("embedding attempt failed")
		}
		return embedErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrEmbeddingFailed, err)
	}
	return vector, nil
}
