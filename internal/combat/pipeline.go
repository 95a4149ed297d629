package combat

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	log "log/slog"
)

// Collaborator contracts. Concrete clients live in internal/stt,
// internal/nlu and internal/tts; tests substitute fakes.
type (
	// Transcriber turns a mono 16 kHz PCM clip into text.
	Transcriber interface {
		Transcribe(ctx context.Context, pcm []float32) (string, error)
	}

	// Advisor asks the remote model for combat advice with session context.
	Advisor interface {
		Advise(ctx context.Context, message string, history []Message, profile Profile, phase Phase) (string, error)
	}

	// Synthesizer renders a reply to audio bytes.
	Synthesizer interface {
		Synthesize(ctx context.Context, text string) ([]byte, error)
	}

	// Player owns the single "currently speaking" output. Play blocks until
	// playback ends; Stop halts it mid-flight.
	Player interface {
		Play(audio []byte) error
		Stop()
	}
)

// In-band fallback strings. Collaborator failures never escape the pipeline;
// the user just hears one of these and speaks again.
const (
	fallbackReply = "Koneksi bermasalah. Coba lagi!"
	retryReply    = "Coba ulangi ya!"
	pipelineError = "Ada error, coba lagi ya..."
)

// historyWindow caps how much transcript goes to the remote model.
const historyWindow = 4

// Pipeline sequences one captured utterance through transcription, the phase
// machine, the quick-response table and, on a full miss, the remote model,
// then speaks the result. At most one run is in flight: clips arriving while
// busy are dropped, not queued.
type Pipeline struct {
	session *Session
	stt     Transcriber
	advisor Advisor
	tts     Synthesizer
	player  Player

	inFlight atomic.Bool
	speaking atomic.Bool

	mu         sync.Mutex
	transcript string
	lastReply  string
	lastError  string
}

func NewPipeline(session *Session, stt Transcriber, advisor Advisor, tts Synthesizer, player Player) *Pipeline {
	return &Pipeline{
		session: session,
		stt:     stt,
		advisor: advisor,
		tts:     tts,
		player:  player,
	}
}

// Busy reports whether a run is in flight. The segmenter checks this before
// arming a new recording.
func (p *Pipeline) Busy() bool { return p.inFlight.Load() }

// Speaking reports whether the reply is currently being played back.
func (p *Pipeline) Speaking() bool { return p.speaking.Load() }

// Transcript returns the last accepted utterance text.
func (p *Pipeline) Transcript() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transcript
}

// LastReply returns the last spoken reply.
func (p *Pipeline) LastReply() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastReply
}

// LastError returns the last in-band error notice, empty when the previous
// run finished cleanly.
func (p *Pipeline) LastError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastError
}

func (p *Pipeline) setError(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastError = msg
}

// OnUtterance runs the full pipeline for one captured clip. It is a no-op
// while a previous run has not completed, which guarantees utterances are
// processed strictly one at a time.
func (p *Pipeline) OnUtterance(ctx context.Context, clip []float32) {
	if !p.inFlight.CompareAndSwap(false, true) {
		log.Debug("pipeline busy, clip dropped", "samples", len(clip))
		return
	}
	defer p.inFlight.Store(false)

	p.setError("")

	text, err := p.stt.Transcribe(ctx, clip)
	if err != nil {
		log.Error("transcription failed", "err", err)
		p.setError(pipelineError)
		return
	}

	text = strings.TrimSpace(text)
	if len(text) < 2 {
		// Noise, not an utterance.
		log.Debug("transcript too short, dropped", "text", text)
		return
	}

	p.mu.Lock()
	p.transcript = text
	p.mu.Unlock()

	// History snapshot excludes the utterance being answered.
	history := p.session.History(historyWindow)
	p.session.AddUser(text)

	phase := p.session.Phase()

	// Phase machine first. It owns all transitions, battle included.
	if reply, handled := p.session.HandleUtterance(text); handled {
		p.respond(ctx, reply, true)
		return
	}

	// Quick-response table only runs mid-battle.
	if phase == PhaseInBattle {
		if pat, ok := MatchQuickPattern(text); ok {
			log.Info("quick pattern hit", "id", pat.ID, "priority", pat.Priority)
			p.respond(ctx, pat.Response, true)
			return
		}
	}

	// An unrecognized utterance in idle starts identification but is still
	// forwarded to the model, in case it was a genuine question.
	if phase == PhaseIdle {
		p.session.SetPhase(PhaseIdentifying)
	}

	reply, err := p.advisor.Advise(ctx, text, history, p.session.Profile(), p.session.Phase())
	if err != nil {
		log.Error("advisor failed", "err", err)
		reply = fallbackReply
	}
	if strings.TrimSpace(reply) == "" {
		reply = retryReply
	}

	p.respond(ctx, reply, false)
}

// respond logs the reply into the transcript and speaks it. Synthesis and
// playback failures are absorbed: the next clip must still be processable.
func (p *Pipeline) respond(ctx context.Context, reply string, quick bool) {
	p.mu.Lock()
	p.lastReply = reply
	p.mu.Unlock()

	p.session.AddAssistant(reply, quick)

	audio, err := p.tts.Synthesize(ctx, reply)
	if err != nil {
		log.Error("speech synthesis failed", "err", err)
		return
	}

	p.speaking.Store(true)
	defer p.speaking.Store(false)

	if err := p.player.Play(audio); err != nil {
		// Treated as finished speaking.
		log.Warn("playback failed", "err", err)
	}
}
