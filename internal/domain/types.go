package domain

import "fmt"

// CaptureState models the verse-recording lifecycle.
type CaptureState string

const (
	CaptureStateIdle       CaptureState = "idle"
	CaptureStateRecording  CaptureState = "recording"
	CaptureStateProcessing CaptureState = "processing"
)

// ErrorCode classifies why a capture or submission attempt failed.
type ErrorCode string

const (
	ErrorCodePermissionDenied ErrorCode = "permission_denied"
	ErrorCodeNotSupported     ErrorCode = "not_supported"
	ErrorCodeNetwork          ErrorCode = "network_error"
	ErrorCodeUnknown          ErrorCode = "unknown"
)

// CaptureError carries a classified error code alongside the underlying cause.
type CaptureError struct {
	Code ErrorCode
	Err  error
}

func NewCaptureError(code ErrorCode, err error) *CaptureError {
	return &CaptureError{Code: code, Err: err}
}

func (e *CaptureError) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// AudioClip is a finalized, immutable recording for one verse attempt.
type AudioClip struct {
	Data     []byte
	MIMEType string
}

// VerseContext identifies what a clip was recorded against.
type VerseContext struct {
	SessionID    string
	VerseIndex   int
	LyricsZh     string
	LyricsPinyin string
}

// ScoreResult is one acknowledged pronunciation score. Only a successful
// submission produces one; failures surface as a CaptureError instead.
type ScoreResult struct {
	Score      int `json:"score"`
	VerseIndex int `json:"verseIndex"`
}

// Status summarizes the current capture state for the UI.
type Status struct {
	State   CaptureState `json:"state"`
	Active  bool         `json:"active"`
	Error   ErrorCode    `json:"error,omitempty"`
	Message string       `json:"message,omitempty"`
}

// Song is the catalog metadata for one practice song.
type Song struct {
	ID         int    `json:"id"`
	TitleZh    string `json:"title_zh"`
	TitleEn    string `json:"title_en"`
	ArtistZh   string `json:"artist_zh"`
	ArtistEn   string `json:"artist_en"`
	Difficulty string `json:"difficulty"`
	NumVerses  int    `json:"num_verses"`
	YoutubeURL string `json:"youtube_url"`
}

// Verse is one lyric line presented for a single recording attempt.
type Verse struct {
	ID           int    `json:"id"`
	SongID       int    `json:"song_id"`
	VerseOrder   int    `json:"verse_order"`
	LyricsZh     string `json:"lyrics_zh"`
	LyricsPinyin string `json:"lyrics_pinyin"`
	LyricsEn     string `json:"lyrics_en"`
}

// SuggestedSong is a follow-up recommendation inside a report.
type SuggestedSong struct {
	ID       int    `json:"id"`
	TitleZh  string `json:"title_zh"`
	TitleEn  string `json:"title_en"`
	ArtistZh string `json:"artist_zh"`
}

// Report is the session-end summary materialized by the report endpoint.
type Report struct {
	SongID         int             `json:"song_id"`
	SessionID      string          `json:"session_id"`
	OverallScore   int             `json:"overall_score"`
	Positives      []string        `json:"positives"`
	Improvements   []string        `json:"improvements"`
	SuggestedSongs []SuggestedSong `json:"suggested_songs"`
}
