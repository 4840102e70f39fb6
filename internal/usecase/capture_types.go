package usecase

import (
	"sync"

	"versecoach/internal/audio"
	"versecoach/internal/domain"
	"versecoach/internal/ports"
)

// activeCapture owns one microphone acquisition: the live session, the
// negotiated encoding and the chunk buffer the pump appends into.
type activeCapture struct {
	cancel   func()
	session  ports.AudioSession
	mimeType string

	mu     sync.Mutex
	chunks [][]byte

	pumpDone chan struct{}
}

func (a *activeCapture) append(chunk []byte) {
	buf := make([]byte, len(chunk))
	copy(buf, chunk)

	a.mu.Lock()
	a.chunks = append(a.chunks, buf)
	a.mu.Unlock()
}

// finalize joins the buffered chunks into one immutable clip. Raw PCM
// destined for audio/wav (or the capability default) is wrapped into a WAV
// container; any other negotiated encoding is passed through as delivered.
func (a *activeCapture) finalize(sampleRate, channels int) domain.AudioClip {
	a.mu.Lock()
	total := 0
	for _, c := range a.chunks {
		total += len(c)
	}
	data := make([]byte, 0, total)
	for _, c := range a.chunks {
		data = append(data, c...)
	}
	a.mu.Unlock()

	mimeType := a.mimeType
	switch mimeType {
	case "", "audio/wav":
		mimeType = "audio/wav"
		data = audio.EncodeWAV(data, sampleRate, channels)
	}

	return domain.AudioClip{Data: data, MIMEType: mimeType}
}
