package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/rollcall/internal/modules/voice/application/ports"
	"github.com/sglre6355/rollcall/internal/modules/voice/domain"
)

// PlayInput contains the input for the Play use case.
type PlayInput struct {
	GuildID snowflake.ID
	URL     string
}

// PlayOutput contains the result of the Play use case.
type PlayOutput struct {
	Title string
}

// PlaybackService downloads media and streams it into voice sessions.
type PlaybackService struct {
	repo            domain.VoiceSessionRepository
	downloader      ports.MediaDownloader
	player          ports.AudioPlayer
	locks           *GuildLocks
	downloadTimeout time.Duration

	wg sync.WaitGroup
}

// NewPlaybackService creates a new PlaybackService.
// A downloadTimeout of zero or less means downloads are never timed out.
func NewPlaybackService(
	repo domain.VoiceSessionRepository,
	downloader ports.MediaDownloader,
	player ports.AudioPlayer,
	locks *GuildLocks,
	downloadTimeout time.Duration,
) *PlaybackService {
	return &PlaybackService{
		repo:            repo,
		downloader:      downloader,
		player:          player,
		locks:           locks,
		downloadTimeout: downloadTimeout,
	}
}

// Play downloads the media at input.URL and starts streaming it into the
// guild's voice session. It returns once playback has started; the audio
// keeps playing in the background until it ends, is replaced by another
// Play, or the session is left.
func (p *PlaybackService) Play(ctx context.Context, input PlayInput) (*PlayOutput, error) {
	url := strings.TrimSpace(input.URL)
	if url == "" {
		return nil, ErrEmptyURL
	}

	// Fail before downloading anything if there is nowhere to play
	if p.repo.Get(input.GuildID) == nil {
		return nil, ErrNoActiveSession
	}

	media, err := p.download(ctx, url)
	if err != nil {
		return nil, err
	}

	unlock := p.locks.Lock(input.GuildID)
	defer unlock()

	// The session may have been left while downloading
	session := p.repo.Get(input.GuildID)
	if session == nil {
		p.cleanup(media)
		return nil, ErrNoActiveSession
	}

	playCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	stop := func() {
		cancel()
		<-done
	}

	id := session.StartPlayback(media.Title, stop)

	p.wg.Add(1)
	go p.run(playCtx, cancel, done, session, id, media)

	slog.Info("started playback",
		"guild", input.GuildID,
		"title", media.Title,
		"url", url,
	)

	return &PlayOutput{Title: media.Title}, nil
}

// Wait blocks until every playback started by the service has ended.
func (p *PlaybackService) Wait() {
	p.wg.Wait()
}

func (p *PlaybackService) download(ctx context.Context, url string) (*ports.Media, error) {
	if p.downloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.downloadTimeout)
		defer cancel()
	}

	media, err := p.downloader.Download(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to download media: %w", err)
	}
	return media, nil
}

func (p *PlaybackService) run(
	ctx context.Context,
	cancel context.CancelFunc,
	done chan<- struct{},
	session *domain.VoiceSession,
	id uint64,
	media *ports.Media,
) {
	defer p.wg.Done()
	defer close(done)
	defer cancel()
	defer p.cleanup(media)

	err := p.player.Play(ctx, session.Connection(), media.Path)
	session.FinishPlayback(id)

	switch {
	case err == nil:
		slog.Info("finished playing", "guild", session.GetGuildID(), "title", media.Title)
	case errors.Is(err, context.Canceled):
		slog.Info("stopped playing", "guild", session.GetGuildID(), "title", media.Title)
	default:
		slog.Error("failed to play media",
			"guild", session.GetGuildID(),
			"title", media.Title,
			"error", err,
		)
	}
}

func (p *PlaybackService) cleanup(media *ports.Media) {
	if err := p.downloader.Cleanup(media); err != nil {
		slog.Warn("failed to remove downloaded media", "dir", media.Dir, "error", err)
	}
}
