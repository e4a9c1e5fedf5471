package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sglre6355/rollcall/internal/modules/voice/application/ports"
)

// outputName is the base name of the extracted audio inside a download directory.
const outputName = "audio"

// CommandRunner runs an external command and returns its standard output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// DownloaderConfig configures YtDlpDownloader.
type DownloaderConfig struct {
	YtDlpPath  string
	FFmpegPath string

	// Dir is the parent of the per-download directories; empty means the OS temp dir.
	Dir string

	AudioFormat  string
	AudioQuality string
}

// YtDlpDownloader fetches media with yt-dlp and extracts its audio with ffmpeg.
type YtDlpDownloader struct {
	config DownloaderConfig
	run    CommandRunner
}

// NewYtDlpDownloader creates a new YtDlpDownloader that runs yt-dlp as a subprocess.
func NewYtDlpDownloader(cfg DownloaderConfig) *YtDlpDownloader {
	return newYtDlpDownloader(cfg, runCommand)
}

func newYtDlpDownloader(cfg DownloaderConfig, run CommandRunner) *YtDlpDownloader {
	return &YtDlpDownloader{
		config: cfg,
		run:    run,
	}
}

// Download fetches the media at url into a new directory and extracts its audio.
func (d *YtDlpDownloader) Download(ctx context.Context, url string) (*ports.Media, error) {
	dir, err := os.MkdirTemp(d.config.Dir, "rollcall-")
	if err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	out, err := d.run(ctx, d.config.YtDlpPath, d.args(dir, url)...)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("yt-dlp failed: %w", err)
	}

	title, path := parseOutput(out)
	path, err = resolveAudioFile(dir, path)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	if title == "" {
		title = url
	}

	return &ports.Media{
		Title: title,
		Path:  path,
		Dir:   dir,
	}, nil
}

// Cleanup removes the download directory of media.
func (d *YtDlpDownloader) Cleanup(media *ports.Media) error {
	if media == nil || media.Dir == "" {
		return nil
	}
	return os.RemoveAll(media.Dir)
}

func (d *YtDlpDownloader) args(dir, url string) []string {
	args := []string{
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"--no-progress",
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", d.config.AudioFormat,
		"--audio-quality", d.config.AudioQuality,
		"-o", filepath.Join(dir, outputName+".%(ext)s"),
		"--print", "title",
		"--print", "after_move:filepath",
		"--no-simulate",
	}

	// A bare command name is looked up in PATH by yt-dlp itself
	if p := d.config.FFmpegPath; p != "" && filepath.Base(p) != p {
		args = append(args, "--ffmpeg-location", p)
	}

	return append(args, "--", url)
}

// parseOutput extracts the title and final file path printed by yt-dlp.
func parseOutput(out []byte) (title, path string) {
	var lines []string
	for line := range strings.Lines(string(out)) {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	switch len(lines) {
	case 0:
		return "", ""
	case 1:
		return lines[0], ""
	default:
		return lines[0], lines[len(lines)-1]
	}
}

// resolveAudioFile returns the extracted audio file inside dir, preferring
// the path reported by yt-dlp.
func resolveAudioFile(dir, reported string) (string, error) {
	if reported != "" && filepath.Dir(reported) == filepath.Clean(dir) {
		if _, err := os.Stat(reported); err == nil {
			return reported, nil
		}
	}

	matches, err := filepath.Glob(filepath.Join(dir, outputName+".*"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", errors.New("yt-dlp produced no audio file")
	}
	return matches[0], nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// Ensure YtDlpDownloader implements ports.MediaDownloader.
var _ ports.MediaDownloader = (*YtDlpDownloader)(nil)
