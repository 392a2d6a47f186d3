package voices

import "sort"

// ---------------------------------------------------------------------------
// VoiceCatalog — static mapping from public voice ids to per-provider
// synthesis parameters. Pure lookup, no state; safe for concurrent use.
// ---------------------------------------------------------------------------

// Params describes one catalog voice and how each provider addresses it.
type Params struct {
	Name   string // Display name
	Gender string // "female", "male"
	Tone   string // Tonal profile, e.g. "soft", "deep"

	// Provider-specific voice identifiers
	ElevenLabsVoiceID string
	CartesiaVoiceID   string
	OpenAIVoice       string
	GeminiVoice       string
}

type Catalog struct {
	voices map[string]Params
}

// NewCatalog returns the built-in voice set.
func NewCatalog() *Catalog {
	return &Catalog{
		voices: map[string]Params{
			"fem-soft": {
				Name:              "Mia",
				Gender:            "female",
				Tone:              "soft",
				ElevenLabsVoiceID: "EXAVITQu4vr4xnSDxMaL",
				CartesiaVoiceID:   "a0e99841-438c-4a64-b679-ae501e7d6091",
				OpenAIVoice:       "nova",
				GeminiVoice:       "Leda",
			},
			"fem-bright": {
				Name:              "Ruby",
				Gender:            "female",
				Tone:              "bright",
				ElevenLabsVoiceID: "21m00Tcm4TlvDq8ikWAM",
				CartesiaVoiceID:   "f114a467-c40a-4db8-964d-aaba89cd08fa",
				OpenAIVoice:       "shimmer",
				GeminiVoice:       "Aoede",
			},
			"fem-warm": {
				Name:              "Clara",
				Gender:            "female",
				Tone:              "warm",
				ElevenLabsVoiceID: "AZnzlk1XvdvUeBnXmlld",
				CartesiaVoiceID:   "79a125e8-cd45-4c13-8a67-188112f4dd22",
				OpenAIVoice:       "alloy",
				GeminiVoice:       "Kore",
			},
			"male-deep": {
				Name:              "Marcus",
				Gender:            "male",
				Tone:              "deep",
				ElevenLabsVoiceID: "pNInz6obpgDQGcFmaJgB",
				CartesiaVoiceID:   "41534e16-2966-4c6b-9670-111411def906",
				OpenAIVoice:       "onyx",
				GeminiVoice:       "Charon",
			},
			"male-warm": {
				Name:              "Theo",
				Gender:            "male",
				Tone:              "warm",
				ElevenLabsVoiceID: "ErXwobaYiN019PkySvjV",
				CartesiaVoiceID:   "729651dc-c6c3-4ee5-97fa-350da1f88600",
				OpenAIVoice:       "echo",
				GeminiVoice:       "Puck",
			},
			"male-bright": {
				Name:              "Oliver",
				Gender:            "male",
				Tone:              "bright",
				ElevenLabsVoiceID: "onwK4e9ZLuTAKqWW03F9",
				CartesiaVoiceID:   "63ff761f-c1e8-414b-b969-d1833d1c870c",
				OpenAIVoice:       "fable",
				GeminiVoice:       "Fenrir",
			},
		},
	}
}

// Resolve looks up a voice by public id. The second return is false when
// the id is unknown — callers must reject the request in that case.
func (c *Catalog) Resolve(id string) (Params, bool) {
	p, ok := c.voices[id]
	return p, ok
}

// IDs returns all catalog voice ids in stable order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.voices))
	for id := range c.voices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
