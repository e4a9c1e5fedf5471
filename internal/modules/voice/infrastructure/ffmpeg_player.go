package infrastructure

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sglre6355/rollcall/internal/modules/voice/application/ports"
	"github.com/sglre6355/rollcall/internal/modules/voice/domain"
	"layeh.com/gopus"
)

// Discord voice expects 48kHz stereo Opus in 20ms frames.
const (
	sampleRate   = 48000
	channels     = 2
	frameSize    = 960
	maxFrameSize = frameSize * channels * 2
)

// FrameEncoder encodes one frame of interleaved 16-bit PCM into Opus.
type FrameEncoder interface {
	Encode(pcm []int16, frameSize, maxDataBytes int) ([]byte, error)
}

// EncoderFactory creates a FrameEncoder for a single playback.
type EncoderFactory func() (FrameEncoder, error)

// NewOpusEncoder creates an Opus encoder for Discord voice.
func NewOpusEncoder() (FrameEncoder, error) {
	return gopus.NewEncoder(sampleRate, channels, gopus.Audio)
}

// FFmpegPlayer decodes audio files with ffmpeg and streams them as Opus.
type FFmpegPlayer struct {
	ffmpegPath string
	newEncoder EncoderFactory
}

// NewFFmpegPlayer creates a new FFmpegPlayer.
func NewFFmpegPlayer(ffmpegPath string, newEncoder EncoderFactory) *FFmpegPlayer {
	if newEncoder == nil {
		newEncoder = NewOpusEncoder
	}
	return &FFmpegPlayer{
		ffmpegPath: ffmpegPath,
		newEncoder: newEncoder,
	}
}

// Play decodes the file at path and streams it into conn until the file
// ends, an error occurs, or ctx is cancelled.
func (p *FFmpegPlayer) Play(ctx context.Context, conn domain.VoiceConnection, path string) error {
	encoder, err := p.newEncoder()
	if err != nil {
		return fmt.Errorf("failed to create opus encoder: %w", err)
	}

	cmd := exec.CommandContext(ctx, p.ffmpegPath,
		"-hide_banner",
		"-loglevel", "warning",
		"-i", path,
		"-f", "s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(channels),
		"pipe:1",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open ffmpeg output: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	if err := conn.Speaking(true); err != nil {
		slog.Warn("failed to set speaking state", "error", err)
	}
	defer func() {
		if err := conn.Speaking(false); err != nil {
			slog.Debug("failed to clear speaking state", "error", err)
		}
	}()

	streamErr := stream(ctx, conn, encoder, stdout)
	if streamErr != nil {
		// ffmpeg blocks on a full pipe once nobody reads it
		_ = cmd.Process.Kill()
	}
	waitErr := cmd.Wait()

	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case streamErr != nil:
		return streamErr
	case waitErr != nil:
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("ffmpeg failed: %w: %s", waitErr, msg)
		}
		return fmt.Errorf("ffmpeg failed: %w", waitErr)
	}

	return nil
}

// stream encodes s16le PCM from r into Opus frames and sends them to conn.
// A trailing partial frame is padded with silence.
func stream(ctx context.Context, conn domain.VoiceConnection, encoder FrameEncoder, r io.Reader) error {
	raw := make([]byte, frameSize*channels*2)
	pcm := make([]int16, frameSize*channels)

	for {
		n, err := io.ReadFull(r, raw)
		if errors.Is(err, io.EOF) {
			return nil
		}
		last := errors.Is(err, io.ErrUnexpectedEOF)
		if err != nil && !last {
			return fmt.Errorf("failed to read pcm: %w", err)
		}

		clear(raw[n:])
		for i := range pcm {
			pcm[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
		}

		frame, err := encoder.Encode(pcm, frameSize, maxFrameSize)
		if err != nil {
			return fmt.Errorf("failed to encode opus frame: %w", err)
		}
		if err := conn.SendOpus(ctx, frame); err != nil {
			return err
		}

		if last {
			return nil
		}
	}
}

// Ensure FFmpegPlayer implements ports.AudioPlayer.
var _ ports.AudioPlayer = (*FFmpegPlayer)(nil)
