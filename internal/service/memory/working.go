package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/sandevgo/solace/internal/core"
	"github.com/sandevgo/solace/internal/service/prompt"
)

// WorkingBuffer is the short-term conversational window. It holds the most
// recent turns in order and evicts from the front whenever the entry cap or
// the token cap is exceeded. A single session goroutine owns each buffer;
// the mutex guards maintenance reads from other goroutines.
type WorkingBuffer struct {
	mu         sync.Mutex
	entries    []core.WorkingMemoryEntry
	maxEntries int
	maxTokens  int
	turnIndex  int
}

func NewWorkingBuffer(maxEntries, maxTokens int) (*WorkingBuffer, error) {
	if maxEntries <= 0 || maxTokens <= 0 {
		return nil, fmt.Errorf("%w: working memory caps must be positive (entries=%d tokens=%d)",
			core.ErrConfiguration, maxEntries, maxTokens)
	}
	return &WorkingBuffer{
		entries:    make([]core.WorkingMemoryEntry, 0, maxEntries),
		maxEntries: maxEntries,
		maxTokens:  maxTokens,
	}, nil
}

// Append records a turn and evicts oldest entries until both caps hold.
// An entry larger than the token cap on its own still enters the buffer
// alone; it ages out on the next append.
func (b *WorkingBuffer) Append(role, text string) core.WorkingMemoryEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry := core.WorkingMemoryEntry{
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
		TurnIndex: b.turnIndex,
	}
	b.turnIndex++
	b.entries = append(b.entries, entry)

	for len(b.entries) > b.maxEntries {
		b.entries = b.entries[1:]
	}
	for len(b.entries) > 1 && b.tokenCountLocked() > b.maxTokens {
		b.entries = b.entries[1:]
	}
	return entry
}

// Snapshot returns the buffered turns oldest first.
func (b *WorkingBuffer) Snapshot() []core.WorkingMemoryEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]core.WorkingMemoryEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

func (b *WorkingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// TurnIndex reports how many turns this session has appended so far.
func (b *WorkingBuffer) TurnIndex() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.turnIndex
}

func (b *WorkingBuffer) tokenCountLocked() int {
	total := 0
	for _, e := range b.entries {
		total += prompt.CountTokens(e.Text)
	}
	return total
}
