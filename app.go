package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"

	"versecoach/internal/bootstrap"
	"versecoach/internal/config"
	"versecoach/internal/domain"
	"versecoach/internal/ports"
	"versecoach/internal/session"
	"versecoach/internal/usecase"
)

const (
	eventState = "versecoach:state"
	eventScore = "versecoach:score"
	eventError = "versecoach:error"
)

// App is the Wails application root. It binds the capture controller,
// session aggregator and catalog reads to the frontend and implements the
// event sink the controller reports through.
type App struct {
	ctx context.Context

	controller *usecase.CaptureController
	session    *session.Aggregator
	songs      ports.SongService
	speech     ports.Synthesizer
	logger     *zap.Logger
	cfg        config.Config
	bootErr    error
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a)
	if err != nil {
		a.bootErr = err
		a.CaptureFailed(domain.ErrorCodeUnknown, err.Error())
		return
	}

	a.controller = services.Controller
	a.session = services.Session
	a.songs = services.Songs
	a.speech = services.Speech
	a.logger = services.Logger
	a.cfg = services.Config
	a.CaptureStateChanged(domain.CaptureStateIdle)
}

// StartRecording begins capturing one verse attempt.
func (a *App) StartRecording() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.controller.Start(a.ctx); err != nil {
		return a.controller.Status(), err
	}
	return a.controller.Status(), nil
}

// StopAndSubmit finalizes the capture and submits it for scoring against
// the verse currently on screen.
func (a *App) StopAndSubmit(songID, verseOrder int) (domain.ScoreResult, error) {
	if err := a.requireReady(); err != nil {
		return domain.ScoreResult{}, err
	}

	verse, err := a.songs.GetVerse(a.ctx, songID, verseOrder)
	if err != nil {
		// Verse data is cached from rendering the page, so this is rare;
		// submit with lyric context missing rather than dropping the take.
		a.logger.Warn("verse lookup failed before submission", zap.Error(err))
	}

	return a.controller.StopAndSubmit(a.ctx, domain.VerseContext{
		SessionID:    a.session.ID(),
		VerseIndex:   verseOrder,
		LyricsZh:     verse.LyricsZh,
		LyricsPinyin: verse.LyricsPinyin,
	})
}

// ClearError dismisses the last surfaced capture error.
func (a *App) ClearError() {
	if a.controller != nil {
		a.controller.ClearError()
	}
}

// GetStatus returns the current capture status.
func (a *App) GetStatus() domain.Status {
	if a.controller == nil {
		if a.bootErr != nil {
			return domain.Status{State: domain.CaptureStateIdle, Message: a.bootErr.Error()}
		}
		return domain.Status{State: domain.CaptureStateIdle}
	}
	return a.controller.Status()
}

// GetSessionID returns the identifier of the running practice session.
func (a *App) GetSessionID() (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	return a.session.ID(), nil
}

// RestartSession begins a fresh session with a new identifier and an empty
// score log, returning the new identifier.
func (a *App) RestartSession() (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	return a.session.Restart(), nil
}

// SessionScores returns the score log in completion order.
func (a *App) SessionScores() ([]domain.ScoreResult, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	return a.session.Scores(), nil
}

// Aggregate returns the running session mean.
func (a *App) Aggregate() (int, error) {
	if err := a.requireReady(); err != nil {
		return 0, err
	}
	return a.session.Aggregate(), nil
}

// ViewReport materializes (idempotently) and returns the session report.
func (a *App) ViewReport(songID int) (domain.Report, error) {
	if err := a.requireReady(); err != nil {
		return domain.Report{}, err
	}
	report, err := a.session.RequestReport(a.ctx, songID)
	if err != nil {
		a.CaptureFailed(domain.CodeOf(err), err.Error())
		return domain.Report{}, err
	}
	return report, nil
}

// PreviousVerse returns the verse before current, wrapping to the last.
func (a *App) PreviousVerse(songID, current int) (int, error) {
	song, err := a.getSong(songID)
	if err != nil {
		return current, err
	}
	return session.PreviousVerse(current, song.NumVerses), nil
}

// NextVerse returns the verse after current, wrapping to the first.
func (a *App) NextVerse(songID, current int) (int, error) {
	song, err := a.getSong(songID)
	if err != nil {
		return current, err
	}
	return session.NextVerse(current, song.NumVerses), nil
}

// ListSongs returns the practice catalog.
func (a *App) ListSongs() ([]domain.Song, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	return a.songs.ListSongs(a.ctx)
}

// GetSong returns one song's metadata.
func (a *App) GetSong(songID int) (domain.Song, error) {
	return a.getSong(songID)
}

// GetVerse returns one verse's lyric text.
func (a *App) GetVerse(songID, verseOrder int) (domain.Verse, error) {
	if err := a.requireReady(); err != nil {
		return domain.Verse{}, err
	}
	return a.songs.GetVerse(a.ctx, songID, verseOrder)
}

// GetLyrics returns the full song text for the lyrics toggle.
func (a *App) GetLyrics(songID int) ([]domain.Verse, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	return a.songs.GetLyrics(a.ctx, songID)
}

// PlayNative speaks the verse in a native voice, when the platform can.
func (a *App) PlayNative(text string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if !a.speech.Available() {
		err := domain.NewCaptureError(domain.ErrorCodeNotSupported,
			errors.New("speech synthesis is not available"))
		a.CaptureFailed(err.Code, err.Error())
		return err
	}
	return a.speech.Speak(a.ctx, text)
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	return map[string]string{
		"apiBaseURL":       a.cfg.API.BaseURL,
		"audioInput":       a.cfg.Audio.InputDevice,
		"audioInputFormat": a.cfg.Audio.InputFormat,
		"sampleRate":       strconv.Itoa(a.cfg.Audio.SampleRate),
		"cacheTTL":         a.cfg.Cache.TTL.String(),
	}
}

func (a *App) getSong(songID int) (domain.Song, error) {
	if err := a.requireReady(); err != nil {
		return domain.Song{}, err
	}
	return a.songs.GetSong(a.ctx, songID)
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// CaptureStateChanged emits capture lifecycle updates to the frontend.
func (a *App) CaptureStateChanged(state domain.CaptureState) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventState, map[string]string{
		"state": string(state),
	})
}

// ScoreReceived appends the score to the session log and notifies the
// frontend. Every acknowledged submission lands here exactly once.
func (a *App) ScoreReceived(result domain.ScoreResult) {
	aggregate := result.Score
	if a.session != nil {
		a.session.RecordScore(result.VerseIndex, result.Score)
		aggregate = a.session.Aggregate()
	}
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventScore, map[string]int{
		"score":      result.Score,
		"verseIndex": result.VerseIndex,
		"aggregate":  aggregate,
	})
}

// CaptureFailed emits a classified error to the frontend.
func (a *App) CaptureFailed(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code),
		"detail":  detail,
	})
}

// errorMessage maps each error code to its fixed user-facing message.
func errorMessage(code domain.ErrorCode) string {
	switch code {
	case domain.ErrorCodePermissionDenied:
		return "Microphone access was denied. Please allow microphone access and try again."
	case domain.ErrorCodeNotSupported:
		return "Audio recording is not supported on this device."
	case domain.ErrorCodeNetwork:
		return "Could not reach the scoring service. Please check your connection and try again."
	default:
		return "Something went wrong. Please try again."
	}
}
