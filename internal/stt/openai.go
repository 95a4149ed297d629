// Package stt provides the transcription collaborators: a remote Whisper API
// client and a local whisper.cpp backend, both speaking the same contract.
package stt

import (
	"bytes"
	"context"
	"fmt"

	openai "github.com/openai/openai-go/v3"

	"huntboard/internal/audio"
	"huntboard/pkg/audioconv"
)

// vocabularyHint primes the recognizer with the guild's working vocabulary.
// Without it, short Indonesian words and game terms get misheard badly.
const vocabularyHint = "tes, tes tes, halo, hai, " +
	"AoE, iframe, dodge, DPS, buff, debuff, prorate, cooldown, burst, combo, " +
	"damage, skill, heal, potion, HP, MP, SP, shield, stun, slow, " +
	"boss, musuh, lawan, serang, mundur, maju, kiri, kanan, " +
	"sword, bow, staff, katana, halberd, knuckle, dual sword, bowgun, magic device, " +
	"mulai, siap, gas, hajar, selesai, menang, kalah, " +
	"ganti boss, rotasi, equipment, senjata, armor, " +
	"Auvio, Castila, Eto, Ferzen, Gespents, Igneus, Merzehal, Mimyu, Pedrio, Vatudo"

// Remote transcribes clips with the hosted Whisper API.
type Remote struct {
	api openai.Client
}

func NewRemote(api openai.Client) *Remote {
	return &Remote{api: api}
}

func (r *Remote) Transcribe(ctx context.Context, pcm []float32) (string, error) {
	wavBytes, err := audioconv.EncodeWAV(pcm, audio.SampleRate)
	if err != nil {
		return "", fmt.Errorf("encode clip: %w", err)
	}

	resp, err := r.api.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model:    openai.AudioModelWhisper1,
		File:     openai.File(bytes.NewReader(wavBytes), "clip.wav", "audio/wav"),
		Language: openai.String("id"),
		Prompt:   openai.String(vocabularyHint),
	})
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}

	return resp.Text, nil
}
