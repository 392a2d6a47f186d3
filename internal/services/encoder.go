package services

import (
	"context"
	"io"
)

// ---------------------------------------------------------------------------
// AudioEncoder — transcodes a raw audio stream into constant-bitrate MP3,
// reporting lifecycle events as it goes. The pipeline maps progress events
// onto the final stretch of job progress.
// ---------------------------------------------------------------------------

// MP3BitrateKbps is the fixed output bitrate for all encoded audio.
const MP3BitrateKbps = 320

// EncodeEventType classifies encoder lifecycle events.
type EncodeEventType string

const (
	EncodeEventStart    EncodeEventType = "start"
	EncodeEventProgress EncodeEventType = "progress"
	EncodeEventEnd      EncodeEventType = "end"
	EncodeEventError    EncodeEventType = "error"
)

// EncodeEvent is one ordered lifecycle event. Percent is only meaningful for
// progress events; Message is only set on errors.
type EncodeEvent struct {
	Type    EncodeEventType
	Percent int
	Message string
}

// EncodeOptions configures one encode run.
type EncodeOptions struct {
	// InputFormat is the SynthesisResult format tag of the input stream
	// (FormatMP3 or FormatPCM24k). Raw PCM needs explicit demux flags.
	InputFormat string

	// DurationHintMs is the expected input duration, used to turn the
	// encoder's elapsed-time reports into percentages. Zero disables
	// percentage reporting (progress events carry 0).
	DurationHintMs int
}

// AudioEncoder transcodes input into 320kbps CBR MP3. onEvent receives
// start, zero or more progress events with non-decreasing percentages, and
// exactly one of end or error. onEvent may be nil.
type AudioEncoder interface {
	Encode(ctx context.Context, input io.Reader, opts EncodeOptions, onEvent func(EncodeEvent)) ([]byte, error)
}

// MP3Duration returns the playback duration in seconds of a CBR MP3 buffer.
// Exact for constant-bitrate streams, which is all this encoder produces.
func MP3Duration(byteLen int) float64 {
	return float64(byteLen) * 8 / float64(MP3BitrateKbps*1000)
}
