package service

import (
	"sync"

	"github.com/google/uuid"
)

// StagingManager provides thread-safe in-memory storage for task drafts
// staged per session, so a client can propose several tasks and commit
// them as one batch.
type StagingManager struct {
	mu     sync.RWMutex
	staged map[string][]CreateTaskInput
}

func NewStagingManager() *StagingManager {
	return &StagingManager{
		staged: make(map[string][]CreateTaskInput),
	}
}

// NewSession returns a fresh session identifier.
func (sm *StagingManager) NewSession() string {
	return uuid.NewString()
}

func (sm *StagingManager) Add(session string, in CreateTaskInput) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.staged[session] = append(sm.staged[session], in)
}

// Peek returns the session's drafts without clearing them.
func (sm *StagingManager) Peek(session string) []CreateTaskInput {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	items := sm.staged[session]
	out := make([]CreateTaskInput, len(items))
	copy(out, items)
	return out
}

// GetAndClear drains the session's drafts.
func (sm *StagingManager) GetAndClear(session string) []CreateTaskInput {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	items := sm.staged[session]
	delete(sm.staged, session)
	return items
}
