package audio

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	log "log/slog"
)

const (
	// EnergyThreshold is the speech/silence boundary on a 0–255 byte scale,
	// matching the analyser calibration the assistant was tuned with.
	EnergyThreshold = 25

	// SilenceHold is how long energy must stay at or below the threshold
	// before a recording is finalized.
	SilenceHold = 1500 * time.Millisecond

	// MinClip is the shortest recording that counts as an utterance.
	// Anything shorter is ambient noise and is discarded.
	MinClip = 500 * time.Millisecond

	frameDuration = time.Second * FrameSize / SampleRate
)

// FrameSource yields fixed-size PCM frames. The Recorder is the production
// source; tests script their own.
type FrameSource interface {
	ReadFrame() ([]float32, error)
}

// Segmenter turns a continuous frame stream into discrete utterance clips
// using energy hysteresis: recording starts when a frame rises above the
// threshold, and stops once silence has held for SilenceHold. No push-to-talk.
//
// Finalized clips go to emit on their own goroutine; the busy gate keeps a
// new recording from starting while the pipeline still works on the previous
// clip, so overlapping speech is dropped rather than queued.
type Segmenter struct {
	src  FrameSource
	busy func() bool
	emit func(clip []float32)

	recording atomic.Bool

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewSegmenter(src FrameSource, busy func() bool, emit func(clip []float32)) *Segmenter {
	return &Segmenter{src: src, busy: busy, emit: emit}
}

// Recording reports whether an utterance is currently being captured.
func (s *Segmenter) Recording() bool { return s.recording.Load() }

// Start launches the analysis loop. Returns an error if already running.
func (s *Segmenter) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		return errors.New("segmenter already running")
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
	return nil
}

// Stop halts the loop and waits for it to exit. Any half-captured clip and
// the pending silence countdown are discarded.
func (s *Segmenter) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	s.recording.Store(false)
}

func (s *Segmenter) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	silenceFrames := int(SilenceHold / frameDuration)
	minSamples := int(MinClip.Seconds() * SampleRate)

	var (
		clip    []float32
		silence int
	)

	for {
		select {
		case <-stop:
			return
		default:
		}

		frame, err := s.src.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			log.Error("frame read failed, segmenter stopping", "err", err)
			return
		}

		level := frameLevel(frame)

		switch {
		case level > EnergyThreshold && !s.recording.Load():
			if s.busy() {
				// Pipeline still processing the previous utterance.
				continue
			}
			s.recording.Store(true)
			clip = append(clip[:0], frame...)
			silence = 0

		case level > EnergyThreshold:
			// Utterance continuing: the silence countdown resets.
			clip = append(clip, frame...)
			silence = 0

		case s.recording.Load():
			// Silence tail is kept in the clip, same as the capture device
			// kept rolling until the stop fired.
			clip = append(clip, frame...)
			silence++
			if silence < silenceFrames {
				continue
			}

			s.recording.Store(false)
			// The silence tail alone already exceeds MinClip at the current
			// constants; this guard only bites if SilenceHold shrinks below it.
			if len(clip) >= minSamples {
				out := make([]float32, len(clip))
				copy(out, clip)
				go s.emit(out)
			} else {
				log.Debug("clip below minimum duration, dropped",
					"samples", len(clip), "min", minSamples)
			}
			clip = clip[:0]
			silence = 0
		}
	}
}

// frameLevel maps a float32 frame onto the 0–255 average-magnitude scale the
// threshold was calibrated against.
func frameLevel(frame []float32) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, x := range frame {
		if x < 0 {
			x = -x
		}
		sum += float64(x)
	}
	return sum / float64(len(frame)) * 255
}
