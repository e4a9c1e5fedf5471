package ports

import "context"

// Media is an audio file downloaded for a single playback.
type Media struct {
	Title string

	// Path is the playable audio file.
	Path string

	// Dir is the directory owned by this download; it holds Path and any
	// intermediate files.
	Dir string
}

// MediaDownloader defines the interface for fetching and transcoding media.
type MediaDownloader interface {
	// Download fetches the media at url into a directory of its own.
	Download(ctx context.Context, url string) (*Media, error)

	// Cleanup removes everything Download created for media.
	Cleanup(media *Media) error
}
