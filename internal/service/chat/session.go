package chat

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/sandevgo/solace/internal/service/memory"
)

// session is one user's live conversation state. All turn processing for a
// user runs under the session mutex, so a session sees its own writes in
// order even when a transport fires concurrent requests.
type session struct {
	mu        sync.Mutex
	id        string
	userID    string
	working   *memory.WorkingBuffer
	userTurns int
}

// sessionRegistry hands out at most one live session per user.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*session

	workingEntries int
	workingTokens  int
}

func newSessionRegistry(workingEntries, workingTokens int) *sessionRegistry {
	return &sessionRegistry{
		sessions:       make(map[string]*session),
		workingEntries: workingEntries,
		workingTokens:  workingTokens,
	}
}

func (r *sessionRegistry) get(userID string) (*session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[userID]; ok {
		return s, nil
	}

	working, err := memory.NewWorkingBuffer(r.workingEntries, r.workingTokens)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s := &session{
		id:      uuid.NewString(),
		userID:  userID,
		working: working,
	}
	r.sessions[userID] = s
	return s, nil
}

// peek returns the live session without creating one.
func (r *sessionRegistry) peek(userID string) (*session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	return s, ok
}

func (r *sessionRegistry) remove(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}
