package audio

import (
	"errors"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const (
	// SampleRate is the capture rate. Everything downstream (WAV encode,
	// whisper) assumes mono 16 kHz.
	SampleRate = 16000

	// FrameSize is one 20 ms analysis window.
	FrameSize = 320
)

// Recorder owns the microphone. The stream is opened on Open and released on
// Stop; nothing else in the process may touch the input device.
type Recorder struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	buf    []float32
}

func NewRecorder() *Recorder {
	return &Recorder{buf: make([]float32, FrameSize)}
}

// Init initializes the audio subsystem. Call once at boot.
func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

// Close tears the audio subsystem down. Call once at shutdown.
func (r *Recorder) Close() {
	portaudio.Terminate()
}

// Open acquires the default input device.
func (r *Recorder) Open() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stream != nil {
		return errors.New("recorder already open")
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, SampleRate, len(r.buf), r.buf)
	if err != nil {
		return err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return err
	}

	r.stream = stream
	return nil
}

// ReadFrame blocks until the next 20 ms frame is available and returns a copy
// of it.
func (r *Recorder) ReadFrame() ([]float32, error) {
	r.mu.Lock()
	stream := r.stream
	r.mu.Unlock()

	if stream == nil {
		return nil, errors.New("recorder not open")
	}
	if err := stream.Read(); err != nil {
		return nil, err
	}

	frame := make([]float32, len(r.buf))
	copy(frame, r.buf)
	return frame, nil
}

// Stop releases the input device.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stream == nil {
		return
	}
	r.stream.Stop()
	r.stream.Close()
	r.stream = nil
}
