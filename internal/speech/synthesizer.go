package speech

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// speakers, in probe order, with the arguments that select a slow Mandarin
// voice for each backend.
var speakers = []struct {
	command string
	args    func(voice, text string) []string
}{
	{
		command: "espeak-ng",
		args: func(voice, text string) []string {
			return []string{"-v", strings.ToLower(voice), "-s", "90", text}
		},
	},
	{
		command: "espeak",
		args: func(voice, text string) []string {
			return []string{"-v", strings.ToLower(voice), "-s", "90", text}
		},
	},
	{
		command: "say",
		args: func(voice, text string) []string {
			return []string{"-r", "90", text}
		},
	},
}

// CommandSynthesizer speaks lyric lines through a local text-to-speech
// command. When no backend is installed, it reports unavailable and Speak
// fails rather than silently dropping the request.
type CommandSynthesizer struct {
	command string
	voice   string
	args    func(voice, text string) []string
}

// NewCommandSynthesizer resolves a synthesizer backend. An explicit command
// skips probing; otherwise the first installed backend wins.
func NewCommandSynthesizer(command, voice string) *CommandSynthesizer {
	if voice == "" {
		voice = "zh-CN"
	}
	if command != "" {
		return &CommandSynthesizer{
			command: command,
			voice:   voice,
			args:    speakers[0].args,
		}
	}
	for _, s := range speakers {
		if _, err := exec.LookPath(s.command); err == nil {
			return &CommandSynthesizer{command: s.command, voice: voice, args: s.args}
		}
	}
	return &CommandSynthesizer{voice: voice}
}

func (s *CommandSynthesizer) Available() bool {
	if s.command == "" {
		return false
	}
	_, err := exec.LookPath(s.command)
	return err == nil
}

func (s *CommandSynthesizer) Speak(ctx context.Context, text string) error {
	if !s.Available() {
		return errors.New("speech synthesis is not available on this platform")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	cmd := exec.CommandContext(ctx, s.command, s.args(s.voice, text)...)
	return cmd.Run()
}
