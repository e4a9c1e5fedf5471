package usecases

import "errors"

// Domain errors for the voice module.
var (
	// ErrNoActiveSession is returned when playback is requested for a guild
	// the bot has not joined.
	ErrNoActiveSession = errors.New("no active voice session")

	// ErrEmptyURL is returned when playback is requested without a media URL.
	ErrEmptyURL = errors.New("media URL must not be empty")
)
