// Package tts holds the speech synthesis collaborator.
package tts

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/openai/openai-go/v3"
)

// Client renders reply text to mp3 bytes with the hosted TTS API.
type Client struct {
	api openai.Client
}

func NewClient(api openai.Client) *Client {
	return &Client{api: api}
}

func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, errors.New("empty text")
	}

	res, err := c.api.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModelTTS1,
		Voice:          openai.AudioSpeechNewParamsVoice("nova"),
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}
	defer res.Body.Close()

	audio, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read synthesized audio: %w", err)
	}
	return audio, nil
}
