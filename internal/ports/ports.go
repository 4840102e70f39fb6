package ports

import (
	"context"
	"errors"
	"io"

	"versecoach/internal/domain"
)

// ErrPermissionDenied is returned by AudioCapture.Start when the platform
// refuses access to the input device.
var ErrPermissionDenied = errors.New("microphone access denied")

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session. It must be stopped on every exit
// path; Stop is idempotent.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture acquires microphone capture sessions.
type AudioCapture interface {
	// Available reports whether the platform can capture audio at all.
	Available() bool
	// Supports reports whether the capability can deliver the given MIME
	// type. The empty string is the capability default and always supported.
	Supports(mimeType string) bool
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// ScoringService submits one finalized clip and returns the raw score.
type ScoringService interface {
	Score(ctx context.Context, clip domain.AudioClip, verse domain.VerseContext) (int, error)
}

// ReportService materializes the session-end report.
type ReportService interface {
	MaterializeReport(ctx context.Context, songID int, sessionID string) (domain.Report, error)
}

// SongService reads song, verse and lyrics metadata.
type SongService interface {
	ListSongs(ctx context.Context) ([]domain.Song, error)
	GetSong(ctx context.Context, songID int) (domain.Song, error)
	GetVerse(ctx context.Context, songID, verseOrder int) (domain.Verse, error)
	GetLyrics(ctx context.Context, songID int) ([]domain.Verse, error)
}

// Synthesizer speaks a lyric line in the native voice, when the platform
// offers speech synthesis at all.
type Synthesizer interface {
	Available() bool
	Speak(ctx context.Context, text string) error
}

// EventSink emits capture state, scores and errors to the UI.
type EventSink interface {
	CaptureStateChanged(state domain.CaptureState)
	ScoreReceived(result domain.ScoreResult)
	CaptureFailed(code domain.ErrorCode, detail string)
}
