package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"versecoach/internal/domain"
	"versecoach/internal/ports"
)

// ErrNoActiveCapture is returned by StopAndSubmit when nothing is recording.
var ErrNoActiveCapture = errors.New("no active capture")

// Config controls capture and submission behavior.
type Config struct {
	Audio ports.AudioConfig
	// Encodings is the ordered MIME preference list; "" means the capture
	// capability's default.
	Encodings     []string
	ChunkSize     int
	SubmitTimeout time.Duration
}

// CaptureController mediates microphone access for one capture surface. It
// owns the idle → recording → processing → idle state machine and guarantees
// the device is released on every exit path from recording, before any
// network activity.
type CaptureController struct {
	capture   ports.AudioCapture
	submitter submitter
	events    ports.EventSink
	logger    *zap.Logger
	cfg       Config

	mu       sync.Mutex
	state    domain.CaptureState
	starting bool
	current  *activeCapture
	lastErr  *domain.CaptureError
}

func NewCaptureController(
	capture ports.AudioCapture,
	scoring ports.ScoringService,
	events ports.EventSink,
	logger *zap.Logger,
	cfg Config,
) *CaptureController {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = 30 * time.Second
	}
	if len(cfg.Encodings) == 0 {
		cfg.Encodings = []string{""}
	}
	return &CaptureController{
		capture:   capture,
		submitter: newSubmitter(scoring, logger),
		events:    events,
		logger:    logger,
		cfg:       cfg,
		state:     domain.CaptureStateIdle,
	}
}

// Start acquires the microphone and begins buffering audio. A start while a
// capture is live or being acquired is a no-op; the controller never holds
// two device handles. Failure leaves the state idle with no resource held.
func (c *CaptureController) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != domain.CaptureStateIdle || c.starting {
		c.mu.Unlock()
		return nil
	}
	c.starting = true
	c.lastErr = nil
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.starting = false
		c.mu.Unlock()
	}()

	if !c.capture.Available() {
		return c.failIdle(domain.ErrorCodeNotSupported,
			errors.New("audio capture is not available on this platform"))
	}

	mimeType := c.negotiateEncoding()

	captureCtx, cancel := context.WithCancel(ctx)
	session, err := c.capture.Start(captureCtx, c.cfg.Audio)
	if err != nil {
		cancel()
		code := domain.ErrorCodeUnknown
		if errors.Is(err, ports.ErrPermissionDenied) {
			code = domain.ErrorCodePermissionDenied
		}
		return c.failIdle(code, err)
	}

	active := &activeCapture{
		cancel:   cancel,
		session:  session,
		mimeType: mimeType,
		pumpDone: make(chan struct{}),
	}

	c.mu.Lock()
	c.state = domain.CaptureStateRecording
	c.current = active
	c.mu.Unlock()

	go pumpAudioChunks(session, active, c.cfg.ChunkSize, c.logger, active.pumpDone)

	c.logger.Debug("recording started", zap.String("mime_type", mimeType))
	c.events.CaptureStateChanged(domain.CaptureStateRecording)
	return nil
}

// StopAndSubmit finalizes the buffered audio, releases the microphone and
// submits the clip for scoring. The controller returns to idle on every exit
// path, including panics inside submission.
func (c *CaptureController) StopAndSubmit(ctx context.Context, verse domain.VerseContext) (result domain.ScoreResult, err error) {
	c.mu.Lock()
	if c.state != domain.CaptureStateRecording || c.current == nil {
		c.mu.Unlock()
		return domain.ScoreResult{}, ErrNoActiveCapture
	}
	active := c.current
	c.current = nil
	c.state = domain.CaptureStateProcessing
	c.mu.Unlock()

	c.events.CaptureStateChanged(domain.CaptureStateProcessing)

	defer func() {
		if r := recover(); r != nil {
			err = domain.NewCaptureError(domain.ErrorCodeUnknown,
				fmt.Errorf("submission panicked: %v", r))
		}
		if err != nil {
			ce := asCaptureError(err)
			err = ce
			c.mu.Lock()
			c.lastErr = ce
			c.state = domain.CaptureStateIdle
			c.mu.Unlock()
			c.events.CaptureFailed(ce.Code, ce.Error())
		} else {
			c.mu.Lock()
			c.state = domain.CaptureStateIdle
			c.mu.Unlock()
			c.events.ScoreReceived(result)
		}
		c.events.CaptureStateChanged(domain.CaptureStateIdle)
	}()

	// Release the device before any network activity.
	active.cancel()
	if stopErr := active.session.Stop(); stopErr != nil {
		c.logger.Warn("capture did not stop cleanly", zap.Error(stopErr))
	}
	<-active.pumpDone

	clip := active.finalize(c.cfg.Audio.SampleRate, c.cfg.Audio.Channels)
	c.logger.Debug("clip finalized",
		zap.String("mime_type", clip.MIMEType),
		zap.Int("bytes", len(clip.Data)))

	submitCtx, cancelSubmit := context.WithTimeout(ctx, c.cfg.SubmitTimeout)
	defer cancelSubmit()

	result, err = c.submitter.Submit(submitCtx, clip, verse)
	return result, err
}

// Status reports the current capture state and last classified error.
func (c *CaptureController) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := domain.Status{
		State:  c.state,
		Active: c.state != domain.CaptureStateIdle,
	}
	if c.lastErr != nil {
		status.Error = c.lastErr.Code
	}
	return status
}

// ClearError drops the last surfaced error, typically when the UI dismisses
// it or a new attempt begins.
func (c *CaptureController) ClearError() {
	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()
}

// negotiateEncoding picks the first supported entry from the preference
// list; "" stands for the capability default and always matches.
func (c *CaptureController) negotiateEncoding() string {
	for _, enc := range c.cfg.Encodings {
		if enc == "" || c.capture.Supports(enc) {
			return enc
		}
	}
	return ""
}

func (c *CaptureController) failIdle(code domain.ErrorCode, cause error) error {
	ce := domain.NewCaptureError(code, cause)

	c.mu.Lock()
	c.lastErr = ce
	c.mu.Unlock()

	c.logger.Warn("capture start failed", zap.String("code", string(code)), zap.Error(cause))
	c.events.CaptureFailed(ce.Code, ce.Error())
	return ce
}

func asCaptureError(err error) *domain.CaptureError {
	var ce *domain.CaptureError
	if errors.As(err, &ce) {
		return ce
	}
	return domain.NewCaptureError(domain.ErrorCodeUnknown, err)
}
