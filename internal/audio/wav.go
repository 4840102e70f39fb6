package audio

import (
	"bytes"
	"encoding/binary"
)

const (
	wavBytesPerSample = 2  // LINEAR16 → 2 bytes per sample
	wavBitsPerSample  = 16 // LINEAR16 → 16 bits per sample
	wavPCMFormat      = 1  // WAV PCM format tag
)

// EncodeWAV wraps raw LINEAR16 PCM into a WAV container.
func EncodeWAV(pcm []byte, sampleRate, channels int) []byte {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	if channels <= 0 {
		channels = 1
	}
	byteRate := sampleRate * channels * wavBytesPerSample

	var buf bytes.Buffer
	buf.Write([]byte("RIFF"))
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.Write([]byte("WAVE"))

	buf.Write([]byte("fmt "))
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(wavPCMFormat))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(wavBytesPerSample*channels))
	binary.Write(&buf, binary.LittleEndian, uint16(wavBitsPerSample))

	buf.Write([]byte("data"))
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}
