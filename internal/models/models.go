package models

import (
	"time"

	"github.com/google/uuid"
)

// Enums
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether a job in this status can never change again.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Request limits. Speed and pitch outside their ranges are clamped at
// submission, not rejected.
const (
	MaxTextChars = 100000

	MinSpeed = 0.5
	MaxSpeed = 2.0

	MinPitch = -10.0
	MaxPitch = 10.0

	DefaultEmotion = "neutral"
)

// Emotions the synthesis backends understand. Anything else is normalized
// to DefaultEmotion at submission.
var KnownEmotions = map[string]bool{
	"neutral": true,
	"happy":   true,
	"sad":     true,
	"angry":   true,
	"excited": true,
	"calm":    true,
}

// SynthesisRequest is the validated, immutable input for one job.
type SynthesisRequest struct {
	Text    string  `json:"text"`
	VoiceID string  `json:"voice_id"`
	Speed   float64 `json:"speed"`
	Pitch   float64 `json:"pitch"`
	Emotion string  `json:"emotion"`
}

// Normalize clamps speed/pitch into range and maps unknown emotions to
// neutral. Called once at submission; the stored request is final.
func (r *SynthesisRequest) Normalize() {
	if r.Speed == 0 {
		r.Speed = 1.0
	}
	if r.Speed < MinSpeed {
		r.Speed = MinSpeed
	}
	if r.Speed > MaxSpeed {
		r.Speed = MaxSpeed
	}
	if r.Pitch < MinPitch {
		r.Pitch = MinPitch
	}
	if r.Pitch > MaxPitch {
		r.Pitch = MaxPitch
	}
	if !KnownEmotions[r.Emotion] {
		r.Emotion = DefaultEmotion
	}
}

// Job is the mutable record tracked by the store. All mutation goes through
// the store's Mutate/AttachAudio/Fail so the per-job lock is never bypassed.
type Job struct {
	ID          uuid.UUID        `json:"id"`
	Request     SynthesisRequest `json:"-"`
	Status      JobStatus        `json:"status"`
	Progress    int              `json:"progress"`
	Error       *string          `json:"error,omitempty"`
	DurationSec *float64         `json:"duration_sec,omitempty"`
	Audio       []byte           `json:"-"`
	CreatedAt   time.Time        `json:"created_at"`
	FinishedAt  *time.Time       `json:"finished_at,omitempty"`
}

// DTOs for API responses

// SubmitResponse is returned by POST /v1/speech.
type SubmitResponse struct {
	JobID  uuid.UUID `json:"job_id"`
	Status JobStatus `json:"status"`
}

// StatusView is returned by GET /v1/speech/{id}. DownloadAvailable mirrors
// status == completed so clients don't have to compare strings.
type StatusView struct {
	JobID             uuid.UUID `json:"job_id"`
	Status            JobStatus `json:"status"`
	Progress          int       `json:"progress"`
	Error             *string   `json:"error,omitempty"`
	DurationSec       *float64  `json:"duration_sec,omitempty"`
	DownloadAvailable bool      `json:"download_available"`
}

// VoiceView is one entry in the GET /v1/voices listing.
type VoiceView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Gender string `json:"gender"`
	Tone   string `json:"tone"`
}
