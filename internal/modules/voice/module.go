package voice

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/sglre6355/rollcall/internal/bot"
	"github.com/sglre6355/rollcall/internal/modules/voice/application/usecases"
	"github.com/sglre6355/rollcall/internal/modules/voice/infrastructure"
	"github.com/sglre6355/rollcall/internal/modules/voice/presentation"
)

func init() {
	bot.Register(&VoiceModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*VoiceModule)(nil)

// VoiceModule provides the join, leave and play commands.
type VoiceModule struct {
	config        *Config
	handlers      *presentation.Handlers
	eventHandlers *presentation.EventHandlers
	voiceChannel  *usecases.VoiceChannelService
	playback      *usecases.PlaybackService
}

// Name returns the module name.
func (m *VoiceModule) Name() string {
	return "voice"
}

// Commands returns the text commands for this module.
func (m *VoiceModule) Commands() []bot.Command {
	return []bot.Command{
		{
			Name:    "join",
			Brief:   "Join your voice channel",
			Handler: m.handlers.HandleJoin,
		},
		{
			Name:    "leave",
			Brief:   "Leave the voice channel",
			Handler: m.handlers.HandleLeave,
		},
		{
			Name:    "play",
			Usage:   "<url>",
			Brief:   "Play the audio of <url> in the voice channel",
			Handler: m.handlers.HandlePlay,
		},
	}
}

// EventHandlers returns the event handlers for this module.
func (m *VoiceModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			if m.eventHandlers != nil {
				m.eventHandlers.HandleVoiceStateUpdate(s, event)
			}
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *VoiceModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *VoiceModule) Init(deps bot.ModuleDependencies) error {
	if m.config == nil {
		if err := m.LoadConfig(); err != nil {
			return err
		}
	}

	var (
		joiner infrastructure.VoiceJoiner
		state  *discordgo.State
	)
	if deps.Session != nil {
		joiner = deps.Session
		state = deps.Session.State
	} else {
		// Nobody is ever in voice in an empty state, so join never connects
		slog.Warn("voice module initialized without session, voice commands disabled")
		state = discordgo.NewState()
	}

	repo := infrastructure.NewMemoryRepository()
	locks := usecases.NewGuildLocks()

	connector := infrastructure.NewDiscordVoiceConnector(joiner)
	voiceState := infrastructure.NewVoiceStateProvider(state)
	downloader := infrastructure.NewYtDlpDownloader(infrastructure.DownloaderConfig{
		YtDlpPath:    m.config.YtDlpPath,
		FFmpegPath:   m.config.FFmpegPath,
		Dir:          m.config.MediaDir,
		AudioFormat:  m.config.AudioFormat,
		AudioQuality: m.config.AudioQuality,
	})
	player := infrastructure.NewFFmpegPlayer(m.config.FFmpegPath, infrastructure.NewOpusEncoder)

	m.voiceChannel = usecases.NewVoiceChannelService(repo, connector, voiceState, locks)
	m.playback = usecases.NewPlaybackService(
		repo,
		downloader,
		player,
		locks,
		m.config.DownloadTimeout,
	)

	m.handlers = presentation.NewHandlers(m.voiceChannel, m.playback)
	m.eventHandlers = presentation.NewEventHandlers(m.voiceChannel)

	slog.Debug("voice module initialized",
		"ytdlp", m.config.YtDlpPath,
		"ffmpeg", m.config.FFmpegPath,
		"audio_format", m.config.AudioFormat,
	)

	return nil
}

// Shutdown leaves every voice channel and waits for playback to end.
func (m *VoiceModule) Shutdown() error {
	if m.voiceChannel == nil {
		return nil
	}

	err := m.voiceChannel.Shutdown(context.Background())
	m.playback.Wait()
	return err
}
