package services

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"
)

// ---------------------------------------------------------------------------
// Gemini Text-to-Speech Service
// Uses the Google Gen AI SDK with the AUDIO response modality and a prebuilt
// voice. Gemini TTS emits raw 24kHz mono 16-bit PCM rather than a container
// format, so results are tagged FormatPCM24k for the encoder.
// ---------------------------------------------------------------------------

const defaultGeminiTTSModel = "gemini-2.5-flash-preview-tts"

type GeminiService struct {
	apiKey string
	model  string
}

// Ensure GeminiService implements SynthesisBackend at compile time.
var _ SynthesisBackend = (*GeminiService)(nil)

// NewGeminiService creates a Gemini TTS backend.
// model: empty string defaults to gemini-2.5-flash-preview-tts.
func NewGeminiService(apiKey, model string) *GeminiService {
	if model == "" {
		model = defaultGeminiTTSModel
	}
	return &GeminiService{
		apiKey: apiKey,
		model:  model,
	}
}

// Synthesize converts one text chunk to PCM speech. Gemini steers delivery
// through natural-language instructions, so emotion and pitch are rendered
// as a style prefix. Speed is likewise instruction-driven (no numeric knob).
func (s *GeminiService) Synthesize(ctx context.Context, text string, vs VoiceSettings) (*SynthesisResult, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	prompt := text
	if instr := buildGeminiDelivery(vs); instr != "" {
		prompt = instr + text
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: vs.Voice.GeminiVoice,
				},
			},
		},
	}

	log.Printf("[Gemini TTS] Generating speech (voice=%s, model=%s, textLen=%d)",
		vs.Voice.GeminiVoice, s.model, len(text))

	resp, err := client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("gemini speech request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	var audioData []byte
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			audioData = part.InlineData.Data
			break
		}
	}

	if len(audioData) == 0 {
		return nil, fmt.Errorf("gemini returned no audio data")
	}

	// PCM s16le mono at 24kHz: 48000 bytes per second
	durationMs := len(audioData) * 1000 / 48000

	log.Printf("[Gemini TTS] Speech generated (%d bytes, %dms)", len(audioData), durationMs)

	return &SynthesisResult{
		AudioData:  audioData,
		DurationMs: durationMs,
		Format:     FormatPCM24k,
	}, nil
}

// buildGeminiDelivery renders speed/pitch/emotion as a spoken-style
// instruction prefix understood by the TTS models.
func buildGeminiDelivery(vs VoiceSettings) string {
	style := styleInstruction(vs)
	switch {
	case vs.Speed <= 0.75:
		if style != "" {
			style += ", "
		}
		style += "very slowly"
	case vs.Speed < 0.95:
		if style != "" {
			style += ", "
		}
		style += "slowly"
	case vs.Speed >= 1.5:
		if style != "" {
			style += ", "
		}
		style += "very quickly"
	case vs.Speed > 1.1:
		if style != "" {
			style += ", "
		}
		style += "quickly"
	}

	if style == "" {
		return ""
	}
	return "Say the following " + style + ": "
}
