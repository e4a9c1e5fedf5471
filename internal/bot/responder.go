package bot

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Responder provides an abstraction for replying to the channel a command came from.
// This interface enables testing handlers without a live Discord connection.
type Responder interface {
	// Send posts a plain text message to the invoking channel.
	Send(content string) error
}

// ChannelResponder implements Responder using a live Discord session.
type ChannelResponder struct {
	session   *discordgo.Session
	channelID string
}

// NewChannelResponder creates a new ChannelResponder for the given channel.
func NewChannelResponder(s *discordgo.Session, channelID string) *ChannelResponder {
	return &ChannelResponder{
		session:   s,
		channelID: channelID,
	}
}

// Send posts the message via the Discord API.
func (r *ChannelResponder) Send(content string) error {
	_, err := r.session.ChannelMessageSend(r.channelID, content)
	return err
}

// MockResponder is a test double for Responder.
type MockResponder struct {
	mu       sync.Mutex
	Messages []string
	Err      error
}

// Send records the message for testing.
func (m *MockResponder) Send(content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Messages = append(m.Messages, content)
	return nil
}

// LastMessage returns the most recently sent message, or "" if none was sent.
func (m *MockResponder) LastMessage() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Messages) == 0 {
		return ""
	}
	return m.Messages[len(m.Messages)-1]
}
