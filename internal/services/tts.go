package services

import (
	"context"
	"strings"

	"github.com/bobarin/narrate/internal/voices"
)

// ---------------------------------------------------------------------------
// SynthesisBackend — common interface for text-to-speech providers.
// ElevenLabs, Cartesia, OpenAI and Gemini all implement it so the pipeline
// can use whichever is configured without knowing the underlying provider.
// ---------------------------------------------------------------------------

// Audio format tags carried in SynthesisResult. The encoder needs these to
// demux the concatenated stream correctly.
const (
	FormatMP3 = "mp3"
	// Gemini returns raw 24kHz mono 16-bit PCM, not a container format.
	FormatPCM24k = "pcm_s16le_24000"
)

// VoiceSettings is the resolved per-job voice configuration handed to a
// backend for every chunk.
type VoiceSettings struct {
	Voice   voices.Params
	Speed   float64 // [0.5, 2.0], already clamped
	Pitch   float64 // [-10, 10], already clamped; ignored by providers without pitch control
	Emotion string  // one of models.KnownEmotions
}

// SynthesisResult is the common response type from any provider.
type SynthesisResult struct {
	AudioData  []byte
	DurationMs int
	Format     string // FormatMP3 or FormatPCM24k
}

// SynthesisBackend converts one text chunk into raw audio. Implementations
// must honor ctx cancellation; the pipeline wraps every call in a timeout.
type SynthesisBackend interface {
	Synthesize(ctx context.Context, text string, vs VoiceSettings) (*SynthesisResult, error)
}

// estimateAudioDuration estimates spoken duration from text length and speed.
// Average narration rate is ~140 words per minute at normal speed.
func estimateAudioDuration(text string, speed float64) int {
	words := len(strings.Fields(text))
	baseWPM := 140.0

	// Lower speed = fewer WPM = longer duration
	actualWPM := baseWPM * speed
	if actualWPM <= 0 {
		actualWPM = baseWPM
	}

	minutes := float64(words) / actualWPM
	return int(minutes * 60 * 1000)
}

// styleInstruction renders emotion and pitch as a delivery description for
// providers that take style as free text rather than structured fields.
func styleInstruction(vs VoiceSettings) string {
	var parts []string
	if vs.Emotion != "" && vs.Emotion != "neutral" {
		parts = append(parts, vs.Emotion)
	}
	switch {
	case vs.Pitch >= 4:
		parts = append(parts, "noticeably higher-pitched")
	case vs.Pitch > 0:
		parts = append(parts, "slightly higher-pitched")
	case vs.Pitch <= -4:
		parts = append(parts, "noticeably lower-pitched")
	case vs.Pitch < 0:
		parts = append(parts, "slightly lower-pitched")
	}
	return strings.Join(parts, ", ")
}
