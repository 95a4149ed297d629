// Package nlu holds the remote chat collaborator that answers utterances the
// local rule table and phase machine could not.
package nlu

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v3"

	"huntboard/internal/combat"
)

const systemPrompt = `Kamu Asisten Tempur game Toram Online. Jawab SELALU dalam Bahasa Indonesia, singkat & tegas.

ATURAN:
- Maks 2 kalimat. Saat battle, 1 kalimat saja.
- Langsung kasih solusi, jangan bertele-tele.
- Boleh pakai istilah game (AoE, iframe, DPS, dodge, buff, debuff, prorate).
- Logat: santai tapi tegas, kayak teman seperjuangan.

RESPON CEPAT (hafalkan pola ini):
- User sebut "AoE/area/luas" → "Pakai skill iframe sekarang!" atau "Dodge ke belakang boss!"
- User sebut "damage turun/kecil/berkurang" → "Cek prorate! Ganti rotasi skill, refresh buff!"
- User sebut "HP dikit/tipis/sekarat" → "Mundur dan heal sekarang! Jangan greedy!"
- User sebut "buff habis" → "Refresh buff segera! Damage bakal drop tanpa buff!"
- User sebut "mati terus" → "Upgrade armor atau tambahin HP consumable!"
- User sebut "shield/kebal" → "Boss lagi immune, cari weak point dulu!"
- User sebut "enrage/rage" → "Fokus survive, dodge terus, tunggu rage habis!"
- User sebut "prorate" → "Ganti rotasi skill, jangan spam skill yang sama!"
- User sebut "cooldown" → "Pakai basic attack sambil nunggu cooldown!"
- User sebut "stun" → "Pakai skill anti-stun atau timing dodge sebelum serangan stun!"

JANGAN pernah jawab dalam bahasa Inggris.`

// Advisor calls the chat model with a compact session context. Replies are
// kept short: mid-battle answers get a tighter token budget than prep talk.
type Advisor struct {
	api openai.Client
}

func NewAdvisor(api openai.Client) *Advisor {
	return &Advisor{api: api}
}

func (a *Advisor) Advise(ctx context.Context, message string, history []combat.Message, profile combat.Profile, phase combat.Phase) (string, error) {
	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.SystemMessage("[" + buildContext(profile, phase) + "]"),
	}

	for _, m := range history {
		switch m.Role {
		case combat.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		case combat.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	msgs = append(msgs, openai.UserMessage(message))

	maxTokens := int64(120)
	if phase == combat.PhaseInBattle {
		maxTokens = 60
	}

	resp, err := a.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    msgs,
		Model:       openai.ChatModelGPT4oMini,
		MaxTokens:   openai.Int(maxTokens),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return resp.Choices[0].Message.Content, nil
}

// buildContext packs the session profile into one short system line instead
// of shipping the whole boss table every call.
func buildContext(profile combat.Profile, phase combat.Phase) string {
	parts := []string{fmt.Sprintf("Fase: %s", phase)}
	if profile.BossName != "" {
		parts = append(parts, "Boss: "+profile.BossName)
	}
	if profile.Weapon != "" {
		parts = append(parts, "Senjata: "+profile.Weapon)
	}
	if len(profile.Skills) > 0 {
		parts = append(parts, "Skill: "+strings.Join(profile.Skills, ", "))
	}
	if profile.Notes != "" {
		parts = append(parts, "Catatan: "+profile.Notes)
	}
	return strings.Join(parts, " | ")
}
