package usecase

import (
	"errors"
	"io"
	"os"

	"go.uber.org/zap"

	"versecoach/internal/ports"
)

// pumpAudioChunks drains the capture session into the chunk buffer until the
// session ends. Chunks only accumulate while the capture is live; stopping
// the session ends the pump via EOF or pipe closure.
func pumpAudioChunks(
	session ports.AudioSession,
	active *activeCapture,
	chunkSize int,
	logger *zap.Logger,
	done chan struct{},
) {
	defer close(done)

	if chunkSize < 256 {
		chunkSize = 4096
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := session.Read(buf)
		if n > 0 {
			active.append(buf[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) && !errors.Is(err, io.ErrClosedPipe) {
				logger.Warn("audio capture read ended abnormally", zap.Error(err))
			}
			return
		}
	}
}
