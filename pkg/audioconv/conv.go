// Package audioconv bridges the raw float32 PCM the capture path works in
// and the RIFF/WAV container the transcription API expects.
package audioconv

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// EncodeWAV renders mono float32 PCM in [-1, 1] into a 16-bit PCM WAV file.
func EncodeWAV(pcm []float32, sampleRate int) ([]byte, error) {
	if len(pcm) == 0 {
		return nil, errors.New("no audio samples")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	var ws writeSeeker
	enc := wav.NewEncoder(&ws, sampleRate, 16, 1, 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           float32ToInt16(pcm),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("wav write: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("wav finalize: %w", err)
	}

	return ws.buf, nil
}

func float32ToInt16(pcm []float32) []int {
	out := make([]int, len(pcm))
	for i, x := range pcm {
		if x > 1 {
			x = 1
		} else if x < -1 {
			x = -1
		}
		out[i] = int(x * 32767)
	}
	return out
}

// writeSeeker is the in-memory io.WriteSeeker the wav encoder needs to patch
// chunk sizes into the header after the data is written.
type writeSeeker struct {
	buf []byte
	pos int
}

func (ws *writeSeeker) Write(p []byte) (int, error) {
	if need := ws.pos + len(p); need > len(ws.buf) {
		grown := make([]byte, need)
		copy(grown, ws.buf)
		ws.buf = grown
	}
	copy(ws.buf[ws.pos:], p)
	ws.pos += len(p)
	return len(p), nil
}

func (ws *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(ws.pos) + offset
	case io.SeekEnd:
		pos = int64(len(ws.buf)) + offset
	default:
		return 0, fmt.Errorf("unknown whence %d", whence)
	}
	if pos < 0 {
		return 0, errors.New("negative seek position")
	}
	ws.pos = int(pos)
	return pos, nil
}
