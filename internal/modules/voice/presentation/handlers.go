package presentation

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/rollcall/internal/bot"
	"github.com/sglre6355/rollcall/internal/modules/voice/application/usecases"
)

// Replies sent around a play request.
const (
	msgDownloading = "Downloading and processing the audio. Please wait..."
	msgNowPlaying  = "Now playing: %s"
)

var errMissingURL = errors.New("url is a required argument that is missing.")

// Handlers holds the voice command handlers.
type Handlers struct {
	voiceChannel *usecases.VoiceChannelService
	playback     *usecases.PlaybackService
}

// NewHandlers creates new Handlers.
func NewHandlers(
	voiceChannel *usecases.VoiceChannelService,
	playback *usecases.PlaybackService,
) *Handlers {
	return &Handlers{
		voiceChannel: voiceChannel,
		playback:     playback,
	}
}

// HandleJoin handles the join command. It never replies.
func (h *Handlers) HandleJoin(
	_ *discordgo.Session,
	m *discordgo.MessageCreate,
	_ []string,
	_ bot.Responder,
) error {
	// Voice only exists in guilds
	if m.GuildID == "" {
		return nil
	}

	guildID, err := snowflake.Parse(m.GuildID)
	if err != nil {
		return fmt.Errorf("invalid guild ID %q: %w", m.GuildID, err)
	}
	userID, err := snowflake.Parse(m.Author.ID)
	if err != nil {
		return fmt.Errorf("invalid user ID %q: %w", m.Author.ID, err)
	}

	_, err = h.voiceChannel.Join(context.Background(), usecases.JoinInput{
		GuildID: guildID,
		UserID:  userID,
	})
	return err
}

// HandleLeave handles the leave command. It never replies.
func (h *Handlers) HandleLeave(
	_ *discordgo.Session,
	m *discordgo.MessageCreate,
	_ []string,
	_ bot.Responder,
) error {
	if m.GuildID == "" {
		return nil
	}

	guildID, err := snowflake.Parse(m.GuildID)
	if err != nil {
		return fmt.Errorf("invalid guild ID %q: %w", m.GuildID, err)
	}

	return h.voiceChannel.Leave(context.Background(), usecases.LeaveInput{GuildID: guildID})
}

// HandlePlay handles the play command.
// It acknowledges the request, waits for the download and announces the title
// once playback has started.
func (h *Handlers) HandlePlay(
	_ *discordgo.Session,
	m *discordgo.MessageCreate,
	args []string,
	r bot.Responder,
) error {
	if len(args) == 0 {
		return errMissingURL
	}
	if m.GuildID == "" {
		return usecases.ErrNoActiveSession
	}

	guildID, err := snowflake.Parse(m.GuildID)
	if err != nil {
		return fmt.Errorf("invalid guild ID %q: %w", m.GuildID, err)
	}

	if err := r.Send(msgDownloading); err != nil {
		return fmt.Errorf("failed to send acknowledgement: %w", err)
	}

	output, err := h.playback.Play(context.Background(), usecases.PlayInput{
		GuildID: guildID,
		URL:     args[0],
	})
	if err != nil {
		return err
	}

	return r.Send(fmt.Sprintf(msgNowPlaying, output.Title))
}
