package chromem

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/sandevgo/solace/internal/core"
	"github.com/sandevgo/solace/pkg/log"
)

// Reserved metadata keys used to round-trip MemoryRecord fields through the
// chromem document metadata.
const (
	metaOwner     = "owner"
	metaKind      = "kind"
	metaCreatedAt = "created_at"
)

// Store implements core.VectorStore on chromem-go, an embedded pure-Go
// vector database. Each user namespace gets its own collection, so
// cross-user retrieval is impossible by construction.
type Store struct {
	db          *chromem.DB
	collections map[string]*chromem.Collection
	mu          sync.RWMutex
}

// NewPersistent opens a store that writes every document to disk before
// Put returns.
func NewPersistent(path string) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("%w: open persistent db: %s", core.ErrStoreUnavailable, err)
	}
	return &Store{
		db:          db,
		collections: make(map[string]*chromem.Collection),
	}, nil
}

// NewEphemeral returns an in-memory store. Used by tests and offline runs.
func NewEphemeral() *Store {
	return &Store{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
	}
}

func (s *Store) getOrCreateCollection(owner string) (*chromem.Collection, error) {
	s.mu.RLock()
	col, exists := s.collections[owner]
	s.mu.RUnlock()
	if exists {
		return col, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if col, exists := s.collections[owner]; exists {
		return col, nil
	}

	name := fmt.Sprintf("user_%s", owner)
	col, err := s.db.GetOrCreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create collection: %s", core.ErrStoreUnavailable, err)
	}

	s.collections[owner] = col
	return col, nil
}

// Put persists a record. Re-adding the same ID replaces the identical
// document, so the call is idempotent.
func (s *Store) Put(ctx context.Context, rec core.MemoryRecord) error {
	col, err := s.getOrCreateCollection(rec.Owner)
	if err != nil {
		return err
	}

	metadata := map[string]string{
		metaOwner:     rec.Owner,
		metaKind:      string(rec.Kind),
		metaCreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	for k, v := range rec.Metadata {
		metadata[k] = v
	}

	doc := chromem.Document{
		ID:        rec.ID,
		Content:   rec.Text,
		Embedding: rec.Vector,
		Metadata:  metadata,
	}

	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("%w: add document: %s", core.ErrStoreUnavailable, err)
	}

	log.FromCtx(ctx).Debug().
		Str("id", rec.ID).
		Str("owner", rec.Owner).
		Str("kind", string(rec.Kind)).
		Msg("stored memory record")
	return nil
}

// Query returns at most k records ranked by cosine similarity, ties broken
// by most recent CreatedAt. An empty namespace yields an empty result.
func (s *Store) Query(ctx context.Context, owner string, vector []float32, k int, kind core.MemoryKind) (core.RetrievalResult, error) {
	col, err := s.getOrCreateCollection(owner)
	if err != nil {
		return core.RetrievalResult{}, err
	}

	// chromem requires nResults <= collection size
	count := col.Count()
	if count == 0 {
		return core.RetrievalResult{}, nil
	}
	if k > count {
		k = count
	}
	if k <= 0 {
		return core.RetrievalResult{}, nil
	}

	var where map[string]string
	if kind != "" {
		where = map[string]string{metaKind: string(kind)}
	}

	results, err := col.QueryEmbedding(ctx, vector, k, where, nil)
	for err != nil && isInsufficientDocsError(err) {
		// A kind filter can shrink the candidate set below k; retry smaller.
		if k == 1 {
			return core.RetrievalResult{}, nil
		}
		k--
		results, err = col.QueryEmbedding(ctx, vector, k, where, nil)
	}
	if err != nil {
		return core.RetrievalResult{}, fmt.Errorf("%w: query: %s", core.ErrStoreUnavailable, err)
	}

	records := make([]core.RetrievedRecord, 0, len(results))
	for _, res := range results {
		records = append(records, toRetrieved(res))
	}

	// chromem orders by similarity; enforce the recency tie-break on top.
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Similarity != records[j].Similarity {
			return records[i].Similarity > records[j].Similarity
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return core.RetrievalResult{Records: records}, nil
}

func (s *Store) Close() error {
	// chromem persists on write, nothing to flush
	return nil
}

func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}

func toRetrieved(res chromem.Result) core.RetrievedRecord {
	createdAt, _ := time.Parse(time.RFC3339Nano, res.Metadata[metaCreatedAt])

	metadata := make(map[string]string)
	for k, v := range res.Metadata {
		if k == metaOwner || k == metaKind || k == metaCreatedAt {
			continue
		}
		metadata[k] = v
	}
	if len(metadata) == 0 {
		metadata = nil
	}

	return core.RetrievedRecord{
		MemoryRecord: core.MemoryRecord{
			ID:        res.ID,
			Owner:     res.Metadata[metaOwner],
			Text:      res.Content,
			Vector:    res.Embedding,
			Kind:      core.MemoryKind(res.Metadata[metaKind]),
			CreatedAt: createdAt,
			Metadata:  metadata,
		},
		Similarity: res.Similarity,
	}
}
