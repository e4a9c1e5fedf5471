package domain

import (
	"context"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// VoiceConnection is an open voice connection owned by a VoiceSession.
type VoiceConnection interface {
	// Speaking sets the speaking indicator of the bot.
	Speaking(speaking bool) error

	// SendOpus queues one 20ms Opus frame for transmission.
	SendOpus(ctx context.Context, frame []byte) error

	// Disconnect closes the connection.
	Disconnect() error
}

// playback is the audio currently streamed into a session.
type playback struct {
	id    uint64
	title string
	stop  func()
}

// VoiceSession represents the bot's voice presence in a single guild.
type VoiceSession struct {
	guildID     snowflake.ID
	connection  VoiceConnection
	connectedAt time.Time

	mu           sync.Mutex
	channelID    snowflake.ID
	playback     *playback
	nextPlayback uint64
}

// NewVoiceSession creates a new VoiceSession for the given guild and channel.
func NewVoiceSession(guildID, channelID snowflake.ID, connection VoiceConnection) *VoiceSession {
	return &VoiceSession{
		guildID:     guildID,
		channelID:   channelID,
		connection:  connection,
		connectedAt: time.Now(),
	}
}

// GetGuildID returns the guild ID.
func (s *VoiceSession) GetGuildID() snowflake.ID {
	// No lock: guildID must not be modified after initialization
	return s.guildID
}

// Connection returns the voice connection owned by the session.
func (s *VoiceSession) Connection() VoiceConnection {
	return s.connection
}

// ConnectedAt returns when the session was created.
func (s *VoiceSession) ConnectedAt() time.Time {
	return s.connectedAt
}

// GetChannelID returns the voice channel the bot is connected to.
func (s *VoiceSession) GetChannelID() snowflake.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channelID
}

// SetChannelID updates the voice channel after the bot was moved.
func (s *VoiceSession) SetChannelID(channelID snowflake.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channelID = channelID
}

// StartPlayback records a new playback and returns its ID.
// A playback already in progress is stopped first; StartPlayback returns
// only after its stop function returned.
func (s *VoiceSession) StartPlayback(title string, stop func()) uint64 {
	s.mu.Lock()
	previous := s.playback
	s.nextPlayback++
	s.playback = &playback{
		id:    s.nextPlayback,
		title: title,
		stop:  stop,
	}
	id := s.nextPlayback
	s.mu.Unlock()

	if previous != nil {
		previous.stop()
	}

	return id
}

// StopPlayback stops the current playback, if any, and reports whether one was active.
func (s *VoiceSession) StopPlayback() bool {
	s.mu.Lock()
	current := s.playback
	s.playback = nil
	s.mu.Unlock()

	if current == nil {
		return false
	}
	current.stop()
	return true
}

// FinishPlayback clears the playback with the given ID once it has ended.
// It is a no-op if that playback was already replaced or stopped.
func (s *VoiceSession) FinishPlayback(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playback != nil && s.playback.id == id {
		s.playback = nil
	}
}

// NowPlaying returns the title of the current playback.
func (s *VoiceSession) NowPlaying() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playback == nil {
		return "", false
	}
	return s.playback.title, true
}
