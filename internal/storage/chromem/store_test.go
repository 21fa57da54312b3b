package chromem

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/solace/internal/core"
	"github.com/sandevgo/solace/internal/providers/embed"
)

func testRecord(t *testing.T, embedder core.Embedder, id, owner, text string, kind core.MemoryKind, createdAt time.Time) core.MemoryRecord {
	t.Helper()
	vector, err := embedder.Embed(context.Background(), text)
	require.NoError(t, err)

	return core.MemoryRecord{
		ID:        id,
		Owner:     owner,
		Text:      text,
		Vector:    vector,
		Kind:      kind,
		CreatedAt: createdAt,
	}
}

func TestStore_PutAndQuery(t *testing.T) {
	ctx := context.Background()
	store := NewEphemeral()
	embedder := embed.NewMockEmbedder(64)
	now := time.Now().UTC()

	rec := testRecord(t, embedder, "m1", "alice", "alice adopted a dog named Rex", core.KindEpisodic, now)
	rec.Metadata = map[string]string{"role": "user"}
	require.NoError(t, store.Put(ctx, rec))

	vector, err := embedder.Embed(ctx, "alice adopted a dog named Rex")
	require.NoError(t, err)

	result, err := store.Query(ctx, "alice", vector, 5, "")
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	got := result.Records[0]
	assert.Equal(t, "m1", got.ID)
	assert.Equal(t, "alice", got.Owner)
	assert.Equal(t, "alice adopted a dog named Rex", got.Text)
	assert.Equal(t, core.KindEpisodic, got.Kind)
	assert.Equal(t, map[string]string{"role": "user"}, got.Metadata)
	assert.WithinDuration(t, now, got.CreatedAt, time.Second)
	assert.InDelta(t, 1.0, got.Similarity, 0.001, "identical text should be a near-perfect match")
}

func TestStore_Put_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewEphemeral()
	embedder := embed.NewMockEmbedder(64)

	rec := testRecord(t, embedder, "m1", "alice", "same record", core.KindEpisodic, time.Now())
	require.NoError(t, store.Put(ctx, rec))
	require.NoError(t, store.Put(ctx, rec))

	result, err := store.Query(ctx, "alice", rec.Vector, 5, "")
	require.NoError(t, err)
	assert.Len(t, result.Records, 1)
}

func TestStore_Query_EmptyNamespace(t *testing.T) {
	ctx := context.Background()
	store := NewEphemeral()
	embedder := embed.NewMockEmbedder(64)

	vector, err := embedder.Embed(ctx, "anything")
	require.NoError(t, err)

	result, err := store.Query(ctx, "nobody", vector, 5, "")
	require.NoError(t, err)
	assert.True(t, result.Empty())
}

func TestStore_Query_OwnerIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewEphemeral()
	embedder := embed.NewMockEmbedder(64)

	require.NoError(t, store.Put(ctx, testRecord(t, embedder, "m1", "alice", "alice's secret", core.KindEpisodic, time.Now())))

	vector, err := embedder.Embed(ctx, "alice's secret")
	require.NoError(t, err)

	result, err := store.Query(ctx, "bob", vector, 5, "")
	require.NoError(t, err)
	assert.True(t, result.Empty(), "bob must never see alice's records")
}

func TestStore_Query_KindFilter(t *testing.T) {
	ctx := context.Background()
	store := NewEphemeral()
	embedder := embed.NewMockEmbedder(64)
	now := time.Now().UTC()

	require.NoError(t, store.Put(ctx, testRecord(t, embedder, "e1", "alice", "went hiking on saturday", core.KindEpisodic, now)))
	require.NoError(t, store.Put(ctx, testRecord(t, embedder, "i1", "alice", "User enjoys hiking", core.KindInsight, now)))

	vector, err := embedder.Embed(ctx, "hiking")
	require.NoError(t, err)

	result, err := store.Query(ctx, "alice", vector, 5, core.KindInsight)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "i1", result.Records[0].ID)

	result, err = store.Query(ctx, "alice", vector, 5, "")
	require.NoError(t, err)
	assert.Len(t, result.Records, 2)
}

func TestStore_Query_ClampsKToCollectionSize(t *testing.T) {
	ctx := context.Background()
	store := NewEphemeral()
	embedder := embed.NewMockEmbedder(64)

	for i := 0; i < 3; i++ {
		text := fmt.Sprintf("memory number %d", i)
		require.NoError(t, store.Put(ctx, testRecord(t, embedder, fmt.Sprintf("m%d", i), "alice", text, core.KindEpisodic, time.Now())))
	}

	vector, err := embedder.Embed(ctx, "memory")
	require.NoError(t, err)

	result, err := store.Query(ctx, "alice", vector, 50, "")
	require.NoError(t, err)
	assert.Len(t, result.Records, 3)
}

func TestStore_Query_OrderedBySimilarity(t *testing.T) {
	ctx := context.Background()
	store := NewEphemeral()
	embedder := embed.NewMockEmbedder(64)

	require.NoError(t, store.Put(ctx, testRecord(t, embedder, "m1", "alice", "completely unrelated topic about cars", core.KindEpisodic, time.Now())))
	require.NoError(t, store.Put(ctx, testRecord(t, embedder, "m2", "alice", "the exact query text", core.KindEpisodic, time.Now())))

	vector, err := embedder.Embed(ctx, "the exact query text")
	require.NoError(t, err)

	result, err := store.Query(ctx, "alice", vector, 2, "")
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "m2", result.Records[0].ID)
	assert.GreaterOrEqual(t, result.Records[0].Similarity, result.Records[1].Similarity)
}
