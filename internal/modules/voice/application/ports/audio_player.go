package ports

import (
	"context"

	"github.com/sglre6355/rollcall/internal/modules/voice/domain"
)

// AudioPlayer defines the interface for streaming an audio file into a voice connection.
type AudioPlayer interface {
	// Play streams the file at path into conn. It blocks until the file was
	// played completely, playback failed, or ctx was cancelled.
	Play(ctx context.Context, conn domain.VoiceConnection, path string) error
}
