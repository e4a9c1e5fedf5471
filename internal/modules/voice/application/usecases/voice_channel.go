package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/rollcall/internal/modules/voice/application/ports"
	"github.com/sglre6355/rollcall/internal/modules/voice/domain"
)

// JoinInput contains the input for the Join use case.
type JoinInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// JoinOutput contains the result of the Join use case.
type JoinOutput struct {
	// VoiceChannelID is 0 when the user was not in a voice channel.
	VoiceChannelID snowflake.ID

	// Connected is true if a new connection was opened or the existing one moved.
	Connected bool
}

// LeaveInput contains the input for the Leave use case.
type LeaveInput struct {
	GuildID snowflake.ID
}

// BotVoiceStateChangeInput contains the input for handling bot voice state changes.
type BotVoiceStateChangeInput struct {
	GuildID      snowflake.ID
	NewChannelID *snowflake.ID // nil means disconnected
}

// VoiceChannelService handles voice channel operations.
type VoiceChannelService struct {
	repo       domain.VoiceSessionRepository
	connector  ports.VoiceConnector
	voiceState ports.VoiceStateProvider
	locks      *GuildLocks
}

// NewVoiceChannelService creates a new VoiceChannelService.
func NewVoiceChannelService(
	repo domain.VoiceSessionRepository,
	connector ports.VoiceConnector,
	voiceState ports.VoiceStateProvider,
	locks *GuildLocks,
) *VoiceChannelService {
	return &VoiceChannelService{
		repo:       repo,
		connector:  connector,
		voiceState: voiceState,
		locks:      locks,
	}
}

// Join connects the bot to the invoking user's voice channel.
// It is a silent no-op if the user is not in a voice channel or the bot is
// already connected to that channel.
func (v *VoiceChannelService) Join(ctx context.Context, input JoinInput) (*JoinOutput, error) {
	// Get user's current voice channel
	userChannel, err := v.voiceState.GetUserVoiceChannel(input.GuildID, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user voice channel: %w", err)
	}
	if userChannel == 0 {
		return &JoinOutput{}, nil
	}

	unlock := v.locks.Lock(input.GuildID)
	defer unlock()

	existing := v.repo.Get(input.GuildID)

	// Already connected to the same channel
	if existing != nil && existing.GetChannelID() == userChannel {
		return &JoinOutput{VoiceChannelID: userChannel}, nil
	}

	if existing != nil {
		// Audio must not keep streaming into the channel being left
		existing.StopPlayback()
	}

	conn, err := v.connector.Connect(ctx, input.GuildID, userChannel)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}

	// A connector that moved the existing connection returns the same handle;
	// any other handle replaces it and the old one must be closed.
	if existing != nil && existing.Connection() != conn {
		if err := existing.Connection().Disconnect(); err != nil {
			slog.Warn("failed to disconnect replaced voice connection",
				"guild", input.GuildID,
				"error", err,
			)
		}
	}

	v.repo.Save(domain.NewVoiceSession(input.GuildID, userChannel, conn))

	slog.Info("joined voice channel", "guild", input.GuildID, "channel", userChannel)

	return &JoinOutput{VoiceChannelID: userChannel, Connected: true}, nil
}

// Leave disconnects the bot from the guild's voice channel and deletes the session.
// It is a silent no-op if there is no session.
func (v *VoiceChannelService) Leave(_ context.Context, input LeaveInput) error {
	unlock := v.locks.Lock(input.GuildID)
	defer unlock()

	session := v.repo.Get(input.GuildID)
	if session == nil {
		return nil
	}

	session.StopPlayback()

	// Forget the session even if the disconnect fails
	v.repo.Delete(input.GuildID)

	if err := session.Connection().Disconnect(); err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}

	slog.Info("left voice channel", "guild", input.GuildID)

	return nil
}

// HandleBotVoiceStateChange handles external voice state changes (bot moved or disconnected).
// This should be called when the bot's voice state changes due to external factors
// (e.g., being moved by a user or disconnected by Discord).
func (v *VoiceChannelService) HandleBotVoiceStateChange(input BotVoiceStateChangeInput) {
	unlock := v.locks.Lock(input.GuildID)
	defer unlock()

	session := v.repo.Get(input.GuildID)
	if session == nil {
		// No session exists, nothing to do
		return
	}

	if input.NewChannelID == nil {
		// Bot was disconnected from voice
		session.StopPlayback()
		v.repo.Delete(input.GuildID)

		// Release the local resources of the dropped connection
		if err := session.Connection().Disconnect(); err != nil {
			slog.Debug("failed to close dropped voice connection",
				"guild", input.GuildID,
				"error", err,
			)
		}

		slog.Info("voice session dropped", "guild", input.GuildID)
		return
	}

	// Bot was moved to a different channel
	if *input.NewChannelID != session.GetChannelID() {
		session.SetChannelID(*input.NewChannelID)
		slog.Info("moved to voice channel", "guild", input.GuildID, "channel", *input.NewChannelID)
	}
}

// Shutdown stops all playback and disconnects every session.
func (v *VoiceChannelService) Shutdown(ctx context.Context) error {
	var errs []error
	for _, session := range v.repo.All() {
		if err := v.Leave(ctx, LeaveInput{GuildID: session.GetGuildID()}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
