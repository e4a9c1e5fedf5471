package voice

import "time"

// Config holds the voice module configuration.
type Config struct {
	YtDlpPath  string `env:"YTDLP_PATH"  envDefault:"yt-dlp"`
	FFmpegPath string `env:"FFMPEG_PATH" envDefault:"ffmpeg"`

	// MediaDir holds the per-play download directories; empty means the OS temp dir.
	MediaDir        string        `env:"MEDIA_DIR"`
	AudioFormat     string        `env:"MEDIA_AUDIO_FORMAT"     envDefault:"mp3"`
	AudioQuality    string        `env:"MEDIA_AUDIO_QUALITY"    envDefault:"192K"`
	DownloadTimeout time.Duration `env:"MEDIA_DOWNLOAD_TIMEOUT" envDefault:"0"`
}
