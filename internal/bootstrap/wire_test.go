package bootstrap

import (
	"testing"

	"versecoach/internal/domain"
)

type nopEventSink struct{}

func (nopEventSink) CaptureStateChanged(domain.CaptureState) {}
func (nopEventSink) ScoreReceived(domain.ScoreResult)        {}
func (nopEventSink) CaptureFailed(domain.ErrorCode, string)  {}

func TestBuildWiresAllServices(t *testing.T) {
	services, err := Build(nopEventSink{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if services.Controller == nil {
		t.Fatalf("controller not wired")
	}
	if services.Session == nil || services.Session.ID() == "" {
		t.Fatalf("session aggregator not wired")
	}
	if services.Songs == nil {
		t.Fatalf("song service not wired")
	}
	if services.Speech == nil {
		t.Fatalf("synthesizer not wired")
	}
	if services.Cache == nil {
		t.Fatalf("cache not wired")
	}
	if services.Logger == nil {
		t.Fatalf("logger not wired")
	}
}

func TestBuildHonorsEnvironment(t *testing.T) {
	t.Setenv("VERSECOACH_API_BASE_URL", "https://practice.example.com")
	t.Setenv("VERSECOACH_LOG_LEVEL", "debug")

	services, err := Build(nopEventSink{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if services.Config.API.BaseURL != "https://practice.example.com" {
		t.Fatalf("unexpected base url: %q", services.Config.API.BaseURL)
	}
}
