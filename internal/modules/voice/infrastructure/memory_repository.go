package infrastructure

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/rollcall/internal/modules/voice/domain"
)

// MemoryRepository is an in-memory implementation of VoiceSessionRepository.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[snowflake.ID]*domain.VoiceSession
}

// NewMemoryRepository creates a new MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[snowflake.ID]*domain.VoiceSession),
	}
}

// Get returns the VoiceSession for the given guild, or nil if not exists.
func (r *MemoryRepository) Get(guildID snowflake.ID) *domain.VoiceSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sessions[guildID]
}

// Save stores the VoiceSession.
func (r *MemoryRepository) Save(session *domain.VoiceSession) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.GetGuildID()] = session
}

// Delete removes the VoiceSession for the given guild.
func (r *MemoryRepository) Delete(guildID snowflake.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, guildID)
}

// All returns a snapshot of every stored session.
func (r *MemoryRepository) All() []*domain.VoiceSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*domain.VoiceSession, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// Count returns the number of sessions (for testing/monitoring).
func (r *MemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// Ensure MemoryRepository implements VoiceSessionRepository.
var _ domain.VoiceSessionRepository = (*MemoryRepository)(nil)
