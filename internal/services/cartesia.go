package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ---------------------------------------------------------------------------
// Cartesia Text-to-Speech Service
// Cartesia's generation_config takes speed and emotion natively, which maps
// directly onto the request fields we accept from clients.
// ---------------------------------------------------------------------------

const (
	cartesiaAPIVersion = "2024-06-10"

	// Cartesia accepts speed in [0.6, 1.5]
	cartesiaMinSpeed = 0.6
	cartesiaMaxSpeed = 1.5
)

type CartesiaService struct {
	apiKey     string
	apiURL     string
	apiVersion string
	client     *http.Client
}

// Ensure CartesiaService implements SynthesisBackend at compile time.
var _ SynthesisBackend = (*CartesiaService)(nil)

func NewCartesiaService(apiKey, apiURL string) *CartesiaService {
	return &CartesiaService{
		apiKey:     apiKey,
		apiURL:     apiURL,
		apiVersion: cartesiaAPIVersion,
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

// cartesiaRequest matches the Cartesia API specification
type cartesiaRequest struct {
	ModelID      string                    `json:"model_id"`
	Transcript   string                    `json:"transcript"`
	Voice        cartesiaVoiceSpecifier    `json:"voice"`
	Language     *string                   `json:"language,omitempty"`
	OutputFormat cartesiaOutputFormat      `json:"output_format"`
	Config       *cartesiaGenerationConfig `json:"generation_config,omitempty"`
}

type cartesiaVoiceSpecifier struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

type cartesiaOutputFormat struct {
	Container  string `json:"container"`
	Encoding   string `json:"encoding,omitempty"`
	SampleRate int    `json:"sample_rate"`
	BitRate    int    `json:"bit_rate,omitempty"`
}

type cartesiaGenerationConfig struct {
	Volume  *float64 `json:"volume,omitempty"`  // 0.5 to 2.0
	Speed   *float64 `json:"speed,omitempty"`   // 0.6 to 1.5
	Emotion *string  `json:"emotion,omitempty"` // e.g., "neutral", "excited", "calm"
}

// Synthesize generates MP3 audio from one text chunk using Cartesia TTS.
func (s *CartesiaService) Synthesize(ctx context.Context, text string, vs VoiceSettings) (*SynthesisResult, error) {
	speed := vs.Speed
	if speed < cartesiaMinSpeed {
		speed = cartesiaMinSpeed
	}
	if speed > cartesiaMaxSpeed {
		speed = cartesiaMaxSpeed
	}

	language := "en"
	reqBody := cartesiaRequest{
		ModelID:    "sonic-english",
		Transcript: text,
		Voice: cartesiaVoiceSpecifier{
			Mode: "id",
			ID:   vs.Voice.CartesiaVoiceID,
		},
		Language: &language,
		OutputFormat: cartesiaOutputFormat{
			Container:  "mp3",
			SampleRate: 44100,
			BitRate:    192000,
		},
	}

	config := &cartesiaGenerationConfig{Speed: &speed}
	if vs.Emotion != "" {
		emotion := vs.Emotion
		config.Emotion = &emotion
	}
	reqBody.Config = config

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/tts/bytes", s.apiURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cartesia-Version", s.apiVersion)

	log.Printf("[Cartesia] Generating speech (voiceID=%s, textLen=%d, speed=%.2f, emotion=%s)",
		vs.Voice.CartesiaVoiceID, len(text), speed, vs.Emotion)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cartesia returned status %d: %s", resp.StatusCode, string(body))
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}

	if len(audioData) == 0 {
		return nil, fmt.Errorf("cartesia returned empty audio")
	}

	durationMs := estimateAudioDuration(text, speed)

	return &SynthesisResult{
		AudioData:  audioData,
		DurationMs: durationMs,
		Format:     FormatMP3,
	}, nil
}
