package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores runtime configuration for the practice client.
type Config struct {
	API     APIConfig
	Audio   AudioConfig
	Capture CaptureConfig
	Cache   CacheConfig
	Speech  SpeechConfig
	Log     LogConfig
}

type APIConfig struct {
	BaseURL       string
	Timeout       time.Duration
	SubmitTimeout time.Duration
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
}

type CaptureConfig struct {
	// Encodings is the ordered MIME preference list; the empty string at the
	// end stands for the capture capability's default.
	Encodings []string
	ChunkSize int
}

type CacheConfig struct {
	TTL time.Duration
}

type SpeechConfig struct {
	Command string
	Voice   string
}

type LogConfig struct {
	Level string
}

// Load resolves configuration from VERSECOACH_* environment variables and
// sensible defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("versecoach")
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		API: APIConfig{
			BaseURL:       strings.TrimRight(v.GetString("api_base_url"), "/"),
			Timeout:       v.GetDuration("api_timeout"),
			SubmitTimeout: v.GetDuration("submit_timeout"),
		},
		Audio: AudioConfig{
			RecorderCommand: v.GetString("audio_recorder_command"),
			InputFormat:     v.GetString("audio_input_format"),
			InputDevice:     v.GetString("audio_input_device"),
			SampleRate:      v.GetInt("audio_sample_rate"),
			Channels:        v.GetInt("audio_channels"),
		},
		Capture: CaptureConfig{
			Encodings: splitEncodings(v.GetString("capture_encodings")),
			ChunkSize: v.GetInt("capture_chunk_size"),
		},
		Cache: CacheConfig{
			TTL: v.GetDuration("cache_ttl"),
		},
		Speech: SpeechConfig{
			Command: v.GetString("speech_command"),
			Voice:   v.GetString("speech_voice"),
		},
		Log: LogConfig{
			Level: v.GetString("log_level"),
		},
	}

	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Capture.ChunkSize < 256 {
		cfg.Capture.ChunkSize = 4096
	}
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = 15 * time.Second
	}
	if cfg.API.SubmitTimeout <= 0 {
		cfg.API.SubmitTimeout = 30 * time.Second
	}
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = 5 * time.Minute
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_base_url", "http://localhost:8000")
	v.SetDefault("api_timeout", "15s")
	v.SetDefault("submit_timeout", "30s")

	v.SetDefault("audio_recorder_command", "ffmpeg")
	v.SetDefault("audio_input_format", "pulse")
	v.SetDefault("audio_input_device", "default")
	v.SetDefault("audio_sample_rate", 16000)
	v.SetDefault("audio_channels", 1)

	// Same preference order the browser client used, with WAV ahead of the
	// capability default since that is what the ffmpeg capture delivers.
	v.SetDefault("capture_encodings", "audio/webm,audio/ogg,audio/wav")
	v.SetDefault("capture_chunk_size", 4096)

	v.SetDefault("cache_ttl", "5m")

	v.SetDefault("speech_command", "")
	v.SetDefault("speech_voice", "zh-CN")

	v.SetDefault("log_level", "info")
}

// splitEncodings parses the comma-separated preference list and appends the
// capability-default terminal entry.
func splitEncodings(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return append(out, "")
}
