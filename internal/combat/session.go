package combat

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase is the current stage of a boss-fight session.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseIdentifying Phase = "identifying"
	PhasePreBattle   Phase = "pre-battle"
	PhaseInBattle    Phase = "in-battle"
	PhasePostBattle  Phase = "post-battle"
)

// Role of a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one immutable transcript entry. QuickResponse marks replies
// produced by the rule engine or phase machine rather than the model.
type Message struct {
	Role          Role      `json:"role"`
	Content       string    `json:"content"`
	Timestamp     time.Time `json:"timestamp"`
	QuickResponse bool      `json:"isQuickResponse,omitempty"`
}

// Profile is what the session has learned about the hunter so far.
// Fields fill monotonically during identification; only an explicit reset
// clears them.
type Profile struct {
	BossID   string   `json:"currentBoss,omitempty"`
	BossName string   `json:"currentBossName,omitempty"`
	Weapon   string   `json:"weapon,omitempty"`
	Skills   []string `json:"skills,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// Canned identification prompts, spoken when the profile is incomplete.
const (
	promptAskBoss   = "Mau lawan boss apa nih? Sebutin nama boss-nya biar aku bisa kasih strategi yang tepat!"
	promptAskWeapon = "Senjata apa yang kamu pakai? Misalnya sword, bow, staff, dll."
)

// preBattleChecklist is read back before every battle.
var preBattleChecklist = []string{
	"Setup combo skill — pastikan rotasi DPS sudah optimal",
	"Pakai consumable — buff makanan, potion, dan scroll",
	"Skill immune/iframe — taruh di slot yang gampang dijangkau",
	"Cek equipment — pastikan gear sudah enhance maksimal",
	"Stok potion — bawa HP & MP potion yang cukup",
	"Party buff — koordinasi buff sama party member",
}

// Trigger vocabularies for the cross-phase transitions.
var (
	startTriggers  = []string{"mulai", "siap", "start", "gas", "hajar"}
	doneTriggers   = []string{"selesai", "done", "menang", "kalah", "udahan"}
	switchTriggers = []string{"ganti boss", "boss lain", "ganti musuh"}
)

// Session holds the combat phase, the hunter profile and the transcript for
// one assistant activation. Safe for concurrent use; the pipeline, the IPC
// handler and the HTTP feed all read it.
type Session struct {
	mu       sync.Mutex
	phase    Phase
	profile  Profile
	messages []Message
}

func NewSession() *Session {
	return &Session{phase: PhaseIdle}
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) SetPhase(p Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = p
}

func (s *Session) Profile() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneProfile(s.profile)
}

// AddSkill appends to the profile's skill list. Skills are append-only for
// the lifetime of the session.
func (s *Session) AddSkill(skill string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Skills = append(s.profile.Skills, skill)
}

func (s *Session) SetNotes(notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Notes = notes
}

// ResetProfile clears the profile and drops back to identification. This is
// the only transition against the normal phase direction.
func (s *Session) ResetProfile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = Profile{}
	s.phase = PhaseIdentifying
}

// Reset clears everything, including the transcript. Used on disable.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = Profile{}
	s.phase = PhaseIdle
	s.messages = nil
}

func (s *Session) AddUser(content string) {
	s.append(Message{Role: RoleUser, Content: content, Timestamp: time.Now()})
}

func (s *Session) AddAssistant(content string, quick bool) {
	s.append(Message{Role: RoleAssistant, Content: content, Timestamp: time.Now(), QuickResponse: quick})
}

func (s *Session) AddSystem(content string) {
	s.append(Message{Role: RoleSystem, Content: content, Timestamp: time.Now()})
}

func (s *Session) append(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// History returns the n most recent transcript entries.
func (s *Session) History(n int) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) <= n {
		out := make([]Message, len(s.messages))
		copy(out, s.messages)
		return out
	}
	out := make([]Message, n)
	copy(out, s.messages[len(s.messages)-n:])
	return out
}

// HandleUtterance runs the phase transition rules against a transcript and
// returns a canned reply when one of them fires. Rules are checked in a fixed
// order: boss detection, weapon detection, battle start, battle end, target
// switch. Boss and weapon detection only run while the profile is still
// missing the field and the session is not mid-battle.
//
// Rule order stops at the first hit: an utterance naming both the boss and
// the weapon only consumes the boss, and the weapon question is asked even
// though the answer was already spoken.
func (s *Session) HandleUtterance(text string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lower := strings.ToLower(text)

	if s.phase != PhaseInBattle {
		// Rule 1: boss still unknown.
		if s.profile.BossID == "" {
			if boss, ok := DetectBoss(text); ok {
				s.profile.BossID = boss.ID
				s.profile.BossName = boss.Name

				if s.profile.Weapon == "" {
					s.phase = PhaseIdentifying
					return fmt.Sprintf("Oke, lawan %s ya! %s — %s", boss.Name, boss.Description, promptAskWeapon), true
				}

				s.phase = PhasePreBattle
				return fmt.Sprintf("Siap lawan %s! Sebelum mulai, cek dulu:\n%s",
					boss.Name, strings.Join(preBattleChecklist, "\n")), true
			}
		}

		// Rule 2: weapon still unknown.
		if s.profile.Weapon == "" {
			if weapon, ok := DetectWeapon(text); ok {
				s.profile.Weapon = weapon

				if s.profile.BossID == "" {
					s.phase = PhaseIdentifying
					return fmt.Sprintf("Oke, pakai %s ya! Sekarang, mau lawan boss apa? Sebutin nama boss-nya!", weapon), true
				}

				s.phase = PhasePreBattle
				return fmt.Sprintf("Pakai %s lawan %s! Sebelum mulai:\n%s",
					weapon, s.profile.BossName, strings.Join(preBattleChecklist, "\n")), true
			}
		}

		// Rule 3: battle start trigger, needs a known boss.
		if containsAny(lower, startTriggers) && s.profile.BossID != "" {
			s.phase = PhaseInBattle
			return fmt.Sprintf("Oke gas! Lawan %s sekarang! Aku siap bantu kapan aja. Semangat!", s.profile.BossName), true
		}
	}

	// Rules 4 and 5 apply across every phase, battle included.
	if containsAny(lower, doneTriggers) {
		s.phase = PhasePostBattle
		return "Battle selesai! Mau lawan boss lain? Atau mau evaluasi tadi?", true
	}

	if containsAny(lower, switchTriggers) {
		s.profile = Profile{}
		s.phase = PhaseIdentifying
		return "Oke ganti boss! Mau lawan siapa sekarang?", true
	}

	return "", false
}

func containsAny(lower string, triggers []string) bool {
	for _, t := range triggers {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func cloneProfile(p Profile) Profile {
	out := p
	if p.Skills != nil {
		out.Skills = append([]string(nil), p.Skills...)
	}
	return out
}
