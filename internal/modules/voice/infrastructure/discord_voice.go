package infrastructure

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/rollcall/internal/modules/voice/application/ports"
	"github.com/sglre6355/rollcall/internal/modules/voice/domain"
)

// VoiceJoiner opens voice connections; *discordgo.Session implements it.
type VoiceJoiner interface {
	ChannelVoiceJoin(gID, cID string, mute, deaf bool) (*discordgo.VoiceConnection, error)
}

// DiscordVoiceConnector opens voice connections through the Discord gateway.
type DiscordVoiceConnector struct {
	joiner VoiceJoiner

	mu          sync.Mutex
	connections map[snowflake.ID]*DiscordVoiceConnection
}

// NewDiscordVoiceConnector creates a new DiscordVoiceConnector.
func NewDiscordVoiceConnector(joiner VoiceJoiner) *DiscordVoiceConnector {
	return &DiscordVoiceConnector{
		joiner:      joiner,
		connections: make(map[snowflake.ID]*DiscordVoiceConnection),
	}
}

// Connect joins the voice channel self-deafened.
// discordgo keeps one connection per guild and moves it when joining another
// channel; in that case the connection returned earlier is returned again.
func (c *DiscordVoiceConnector) Connect(
	_ context.Context,
	guildID, channelID snowflake.ID,
) (domain.VoiceConnection, error) {
	vc, err := c.joiner.ChannelVoiceJoin(guildID.String(), channelID.String(), false, true)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel %s: %w", channelID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.connections[guildID]; ok && existing.vc == vc {
		return existing, nil
	}

	conn := &DiscordVoiceConnection{vc: vc}
	c.connections[guildID] = conn
	return conn, nil
}

// DiscordVoiceConnection adapts a discordgo voice connection to domain.VoiceConnection.
type DiscordVoiceConnection struct {
	vc *discordgo.VoiceConnection
}

// Speaking sets the speaking indicator of the bot.
func (c *DiscordVoiceConnection) Speaking(speaking bool) error {
	return c.vc.Speaking(speaking)
}

// SendOpus queues one Opus frame, blocking until there is room or ctx is done.
func (c *DiscordVoiceConnection) SendOpus(ctx context.Context, frame []byte) error {
	select {
	case c.vc.OpusSend <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Disconnect leaves the voice channel and closes the connection.
func (c *DiscordVoiceConnection) Disconnect() error {
	return c.vc.Disconnect()
}

// Ensure DiscordVoiceConnector implements ports.VoiceConnector.
var _ ports.VoiceConnector = (*DiscordVoiceConnector)(nil)

// Ensure DiscordVoiceConnection implements domain.VoiceConnection.
var _ domain.VoiceConnection = (*DiscordVoiceConnection)(nil)
