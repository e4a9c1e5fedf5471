package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// VoiceSessionRepository defines the interface for storing and retrieving voice sessions.
// Implementations must be safe for concurrent use.
type VoiceSessionRepository interface {
	// Get returns the VoiceSession for the given guild, or nil if not exists.
	Get(guildID snowflake.ID) *VoiceSession

	// Save stores the VoiceSession, replacing any session for the same guild.
	Save(session *VoiceSession)

	// Delete removes the VoiceSession for the given guild.
	Delete(guildID snowflake.ID)

	// All returns a snapshot of every stored session.
	All() []*VoiceSession
}
