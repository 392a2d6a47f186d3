package services

import (
	"context"
	"fmt"
	"io"
	"log"

	openai "github.com/sashabaranov/go-openai"
)

// ---------------------------------------------------------------------------
// OpenAI Text-to-Speech Service
// Uses the /v1/audio/speech endpoint via the go-openai client.
// ---------------------------------------------------------------------------

type OpenAIService struct {
	client *openai.Client
	model  openai.SpeechModel
}

// Ensure OpenAIService implements SynthesisBackend at compile time.
var _ SynthesisBackend = (*OpenAIService)(nil)

func NewOpenAIService(apiKey string) *OpenAIService {
	return &OpenAIService{
		client: openai.NewClient(apiKey),
		model:  openai.TTSModel1HD,
	}
}

// Synthesize converts one text chunk to MP3 speech. OpenAI TTS has neither
// pitch nor emotion fields; they're passed as a delivery instruction, which
// tts-1 models accept on a best-effort basis.
func (s *OpenAIService) Synthesize(ctx context.Context, text string, vs VoiceSettings) (*SynthesisResult, error) {
	req := openai.CreateSpeechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          openai.SpeechVoice(vs.Voice.OpenAIVoice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          vs.Speed,
	}

	if style := styleInstruction(vs); style != "" {
		req.Instructions = "Deliver the text " + style + "."
	}

	log.Printf("[OpenAI TTS] Generating speech (voice=%s, model=%s, textLen=%d, speed=%.2f)",
		vs.Voice.OpenAIVoice, s.model, len(text), vs.Speed)

	resp, err := s.client.CreateSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai speech request failed: %w", err)
	}
	defer resp.Close()

	audioData, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read openai audio response: %w", err)
	}

	if len(audioData) == 0 {
		return nil, fmt.Errorf("openai returned empty audio")
	}

	durationMs := estimateAudioDuration(text, vs.Speed)

	log.Printf("[OpenAI TTS] Speech generated (%d bytes, estimated %dms)", len(audioData), durationMs)

	return &SynthesisResult{
		AudioData:  audioData,
		DurationMs: durationMs,
		Format:     FormatMP3,
	}, nil
}
