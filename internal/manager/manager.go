package manager

import (
	"errors"
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/bobarin/narrate/internal/models"
	"github.com/bobarin/narrate/internal/queue"
	"github.com/bobarin/narrate/internal/store"
	"github.com/bobarin/narrate/internal/voices"
	"github.com/google/uuid"
)

// Error taxonomy surfaced to callers. Pipeline-stage failures never appear
// here — they land in the job's error field and show up on status polls.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("job not found")
	ErrNotReady       = errors.New("audio not ready")
	ErrAudioMissing   = errors.New("audio buffer missing")
)

// Manager is the façade external callers use: submit a request, poll its
// status, fetch the finished audio. It owns request validation; the
// pipeline behind the queue owns everything after that.
type Manager struct {
	store   *store.Store
	queue   *queue.Queue
	catalog *voices.Catalog
}

func New(st *store.Store, q *queue.Queue, catalog *voices.Catalog) *Manager {
	return &Manager{
		store:   st,
		queue:   q,
		catalog: catalog,
	}
}

// Submit validates the request, registers a job and enqueues it for the
// worker pool. Returns immediately — it never waits on the pipeline.
// Validation failures return ErrInvalidRequest and create no job.
func (m *Manager) Submit(req models.SynthesisRequest) (uuid.UUID, error) {
	if req.Text == "" {
		return uuid.Nil, fmt.Errorf("%w: text is required", ErrInvalidRequest)
	}
	if n := utf8.RuneCountInString(req.Text); n > models.MaxTextChars {
		return uuid.Nil, fmt.Errorf("%w: text is %d characters, limit is %d",
			ErrInvalidRequest, n, models.MaxTextChars)
	}
	if _, ok := m.catalog.Resolve(req.VoiceID); !ok {
		return uuid.Nil, fmt.Errorf("%w: unknown voice %q", ErrInvalidRequest, req.VoiceID)
	}

	// Out-of-range speed/pitch and unknown emotions are clamped, not
	// rejected. The stored request is final from here on.
	req.Normalize()

	id := m.store.Create(req)
	m.queue.Enqueue(id)

	log.Printf("[Manager] Job %s submitted (voice=%s, textLen=%d)",
		id, req.VoiceID, utf8.RuneCountInString(req.Text))

	return id, nil
}

// Status returns the job's current status view.
func (m *Manager) Status(id uuid.UUID) (models.StatusView, error) {
	job, ok := m.store.Get(id)
	if !ok {
		return models.StatusView{}, ErrNotFound
	}

	return models.StatusView{
		JobID:             job.ID,
		Status:            job.Status,
		Progress:          job.Progress,
		Error:             job.Error,
		DurationSec:       job.DurationSec,
		DownloadAvailable: job.Status == models.JobStatusCompleted,
	}, nil
}

// FetchAudio returns the exact committed MP3 buffer of a completed job.
func (m *Manager) FetchAudio(id uuid.UUID) ([]byte, error) {
	job, ok := m.store.Get(id)
	if !ok {
		return nil, ErrNotFound
	}

	if job.Status != models.JobStatusCompleted {
		return nil, fmt.Errorf("%w: job is %s", ErrNotReady, job.Status)
	}

	if len(job.Audio) == 0 {
		// Completed without a buffer is an invariant violation, always a bug
		log.Printf("[Manager] ERROR: job %s is completed but has no audio buffer", id)
		return nil, ErrAudioMissing
	}

	return job.Audio, nil
}

// Voices lists the catalog for clients picking a voice.
func (m *Manager) Voices() []models.VoiceView {
	ids := m.catalog.IDs()
	out := make([]models.VoiceView, 0, len(ids))
	for _, id := range ids {
		p, _ := m.catalog.Resolve(id)
		out = append(out, models.VoiceView{
			ID:     id,
			Name:   p.Name,
			Gender: p.Gender,
			Tone:   p.Tone,
		})
	}
	return out
}
