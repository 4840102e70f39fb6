package bootstrap

import (
	"go.uber.org/zap"

	"versecoach/internal/audio"
	"versecoach/internal/cache"
	"versecoach/internal/config"
	"versecoach/internal/ports"
	"versecoach/internal/providers/lyricsapi"
	"versecoach/internal/session"
	"versecoach/internal/speech"
	"versecoach/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.CaptureController
	Session    *session.Aggregator
	Songs      ports.SongService
	Speech     ports.Synthesizer
	Cache      *cache.Store
	Logger     *zap.Logger
	Config     config.Config
}

// Build wires all backend dependencies for the current runtime.
func Build(eventSink ports.EventSink) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return Services{}, err
	}

	store := cache.New(cfg.Cache.TTL)
	api := lyricsapi.NewClient(cfg.API.BaseURL, cfg.API.Timeout, store, logger)

	controller := usecase.NewCaptureController(
		audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand),
		api,
		eventSink,
		logger,
		usecase.Config{
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			Encodings:     cfg.Capture.Encodings,
			ChunkSize:     cfg.Capture.ChunkSize,
			SubmitTimeout: cfg.API.SubmitTimeout,
		},
	)

	return Services{
		Controller: controller,
		Session:    session.NewAggregator(api, logger),
		Songs:      api,
		Speech:     speech.NewCommandSynthesizer(cfg.Speech.Command, cfg.Speech.Voice),
		Cache:      store,
		Logger:     logger,
		Config:     cfg,
	}, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		lvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logCfg := zap.NewProductionConfig()
	logCfg.Level = lvl
	return logCfg.Build()
}
