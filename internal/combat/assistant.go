package combat

import (
	"context"
	"sync"

	log "log/slog"

	"huntboard/internal/audio"
)

// micError is the persistent notice shown when the input device cannot be
// acquired. The assistant stays disabled until the user retries.
const micError = "Gak bisa akses mikrofon. Cek izin browser dulu ya!"

const activationNotice = "Asisten Tempur aktif! Sebutin boss yang mau dilawan dan senjata yang kamu pakai."

// Status is the assistant snapshot served over IPC and the websocket feed.
type Status struct {
	Enabled    bool      `json:"enabled"`
	Listening  bool      `json:"listening"`
	Processing bool      `json:"processing"`
	Speaking   bool      `json:"speaking"`
	Phase      Phase     `json:"phase"`
	Profile    Profile   `json:"profile"`
	Transcript string    `json:"transcript,omitempty"`
	LastReply  string    `json:"lastReply,omitempty"`
	Error      string    `json:"error,omitempty"`
	Messages   []Message `json:"messages,omitempty"`
}

// Assistant ties the microphone, the voice segmenter and the pipeline into
// one enable/disable lifecycle. Disable tears everything down: recording
// stops, the mic is released, the silence countdown dies with the segmenter
// loop and playback is halted. Nothing leaks into the next activation.
type Assistant struct {
	mu       sync.Mutex
	enabled  bool
	micFail  string
	rec      *audio.Recorder
	seg      *audio.Segmenter
	session  *Session
	pipeline *Pipeline
	player   Player
}

func NewAssistant(rec *audio.Recorder, session *Session, pipeline *Pipeline, player Player) *Assistant {
	a := &Assistant{
		rec:      rec,
		session:  session,
		pipeline: pipeline,
		player:   player,
	}
	a.seg = audio.NewSegmenter(rec, pipeline.Busy, func(clip []float32) {
		pipeline.OnUtterance(context.Background(), clip)
	})
	return a
}

// Enable acquires the microphone and starts listening. A device failure is
// surfaced in Status.Error and leaves the assistant disabled.
func (a *Assistant) Enable() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.enabled {
		return nil
	}

	if err := a.rec.Open(); err != nil {
		log.Error("microphone open failed", "err", err)
		a.micFail = micError
		return err
	}
	if err := a.seg.Start(); err != nil {
		a.rec.Stop()
		return err
	}

	a.micFail = ""
	a.enabled = true
	a.session.SetPhase(PhaseIdentifying)
	a.session.AddSystem(activationNotice)
	log.Info("combat assistant enabled")
	return nil
}

// Disable stops listening and resets the session to idle.
func (a *Assistant) Disable() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.enabled {
		return
	}

	a.seg.Stop()
	a.rec.Stop()
	a.player.Stop()
	a.enabled = false
	a.session.SetPhase(PhaseIdle)
	log.Info("combat assistant disabled")
}

// ResetProfile clears the hunter profile and asks for a new target.
func (a *Assistant) ResetProfile() {
	a.session.ResetProfile()
	a.session.AddSystem("Profil di-reset. Mau lawan boss apa sekarang?")
}

// StartBattle forces the in-battle phase, for the manual start control.
func (a *Assistant) StartBattle() {
	a.session.SetPhase(PhaseInBattle)
	name := a.session.Profile().BossName
	if name == "" {
		name = "boss"
	}
	a.session.AddSystem("Battle dimulai lawan " + name + "! Mode quick-response aktif!")
}

// Enabled reports whether the assistant is live.
func (a *Assistant) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// Status snapshots the whole assistant state. withMessages controls whether
// the transcript rides along (the feed sends it, the IPC status keeps it).
func (a *Assistant) Status(withMessages bool) Status {
	a.mu.Lock()
	enabled, micFail := a.enabled, a.micFail
	a.mu.Unlock()

	st := Status{
		Enabled:    enabled,
		Listening:  a.seg.Recording(),
		Processing: a.pipeline.Busy(),
		Speaking:   a.pipeline.Speaking(),
		Phase:      a.session.Phase(),
		Profile:    a.session.Profile(),
		Transcript: a.pipeline.Transcript(),
		LastReply:  a.pipeline.LastReply(),
		Error:      a.pipeline.LastError(),
	}
	if micFail != "" {
		st.Error = micFail
	}
	if withMessages {
		st.Messages = a.session.Messages()
	}
	return st
}
