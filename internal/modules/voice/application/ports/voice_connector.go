package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/rollcall/internal/modules/voice/domain"
)

// VoiceConnector defines the interface for opening voice connections.
type VoiceConnector interface {
	// Connect joins the specified voice channel and returns the connection.
	// If the guild already has a connection, the implementation may move it
	// and return the same connection.
	Connect(ctx context.Context, guildID, channelID snowflake.ID) (domain.VoiceConnection, error)
}
