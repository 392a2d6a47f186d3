package models

import "testing"

func TestNormalizeClampsSpeed(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero defaults to normal", 0, 1.0},
		{"below minimum", 0.1, MinSpeed},
		{"above maximum", 3.5, MaxSpeed},
		{"in range unchanged", 1.25, 1.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := SynthesisRequest{Text: "hi", VoiceID: "fem-soft", Speed: tt.in}
			r.Normalize()
			if r.Speed != tt.want {
				t.Errorf("speed = %v, want %v", r.Speed, tt.want)
			}
		})
	}
}

func TestNormalizeClampsPitch(t *testing.T) {
	r := SynthesisRequest{Pitch: -50}
	r.Normalize()
	if r.Pitch != MinPitch {
		t.Errorf("pitch = %v, want %v", r.Pitch, MinPitch)
	}

	r = SynthesisRequest{Pitch: 50}
	r.Normalize()
	if r.Pitch != MaxPitch {
		t.Errorf("pitch = %v, want %v", r.Pitch, MaxPitch)
	}
}

func TestNormalizeEmotion(t *testing.T) {
	// Unrecognized emotions fall back to neutral instead of failing the
	// submission — clients send loose values like "neutro".
	r := SynthesisRequest{Emotion: "neutro"}
	r.Normalize()
	if r.Emotion != DefaultEmotion {
		t.Errorf("emotion = %q, want %q", r.Emotion, DefaultEmotion)
	}

	r = SynthesisRequest{Emotion: "excited"}
	r.Normalize()
	if r.Emotion != "excited" {
		t.Errorf("emotion = %q, want excited", r.Emotion)
	}
}

func TestJobStatusIsTerminal(t *testing.T) {
	if JobStatusQueued.IsTerminal() || JobStatusProcessing.IsTerminal() {
		t.Error("queued/processing must not be terminal")
	}
	if !JobStatusCompleted.IsTerminal() || !JobStatusFailed.IsTerminal() {
		t.Error("completed/failed must be terminal")
	}
}
