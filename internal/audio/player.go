package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"

	log "log/slog"
)

// Player is the single owner of speech output. Play decodes an mp3 reply,
// ducks every other audio stream, plays, and restores volumes afterwards.
// At most one reply plays at a time; Stop halts the current one.
type Player struct {
	mu       sync.Mutex
	ducker   *Ducker
	playing  bool
	halt     chan struct{}
	duckFade time.Duration
}

func NewPlayer(ducker *Ducker) *Player {
	return &Player{
		ducker:   ducker,
		duckFade: 200 * time.Millisecond,
	}
}

// Play blocks until the clip finishes or Stop is called. Decode errors are
// returned; playback-level failures resolve as finished speech.
func (p *Player) Play(audio []byte) error {
	streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(audio)))
	if err != nil {
		return fmt.Errorf("decode reply audio: %w", err)
	}
	defer streamer.Close()

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("speaker init: %w", err)
	}

	halt := make(chan struct{})

	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return fmt.Errorf("already speaking")
	}
	p.playing = true
	p.halt = halt
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.playing = false
		p.halt = nil
		p.mu.Unlock()
	}()

	if p.ducker != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := p.ducker.DuckOthers(ctx, 0.3, p.duckFade); err != nil {
			log.Debug("duck failed", "err", err)
		}
		cancel()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := p.ducker.UnduckOthers(ctx, p.duckFade); err != nil {
				log.Debug("unduck failed", "err", err)
			}
		}()
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
	case <-halt:
		speaker.Clear()
	}
	return nil
}

// Stop halts in-progress playback. No-op when idle.
func (p *Player) Stop() {
	p.mu.Lock()
	halt := p.halt
	p.halt = nil
	p.mu.Unlock()

	if halt != nil {
		close(halt)
	}
}
