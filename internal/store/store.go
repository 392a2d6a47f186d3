package store

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/bobarin/narrate/internal/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned for job ids the store has never seen (or has
// already swept).
var ErrNotFound = errors.New("job not found")

// ErrJobFinished is returned when a mutation targets a job that already
// reached completed or failed. Terminal states are final.
var ErrJobFinished = errors.New("job already finished")

// Store is the in-memory job registry. The outer RWMutex guards only map
// membership; every job record carries its own mutex, so readers and the
// owning pipeline of one job never contend with other jobs.
type Store struct {
	mu        sync.RWMutex
	jobs      map[uuid.UUID]*entry
	retention time.Duration
}

type entry struct {
	mu  sync.Mutex
	job models.Job
}

// New creates a store. retention bounds how long terminal jobs are kept
// before the janitor sweeps them; non-terminal jobs are never evicted.
func New(retention time.Duration) *Store {
	return &Store{
		jobs:      make(map[uuid.UUID]*entry),
		retention: retention,
	}
}

// Create registers a new job for the given request in state queued with
// progress 0 and returns its id.
func (s *Store) Create(req models.SynthesisRequest) uuid.UUID {
	id := uuid.New()

	s.mu.Lock()
	s.jobs[id] = &entry{
		job: models.Job{
			ID:        id,
			Request:   req,
			Status:    models.JobStatusQueued,
			Progress:  0,
			CreatedAt: time.Now().UTC(),
		},
	}
	s.mu.Unlock()

	return id
}

// Get returns a snapshot of the job. The Audio slice in the snapshot is
// shared, not copied — it is immutable once committed.
func (s *Store) Get(id uuid.UUID) (models.Job, bool) {
	e := s.lookup(id)
	if e == nil {
		return models.Job{}, false
	}

	e.mu.Lock()
	job := e.job
	e.mu.Unlock()
	return job, true
}

// Mutate applies fn to the job under its lock. It is the only non-terminal
// mutation path; fn must not be used to enter a terminal state (that is
// what AttachAudio and Fail are for). Mutations against a finished job are
// rejected with ErrJobFinished and leave the record untouched.
func (s *Store) Mutate(id uuid.UUID, fn func(*models.Job)) error {
	e := s.lookup(id)
	if e == nil {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.job.Status.IsTerminal() {
		return ErrJobFinished
	}

	fn(&e.job)
	return nil
}

// SetProgress raises the job's progress to p. Lower values are ignored so
// progress stays monotonic even when chunk completions race.
func (s *Store) SetProgress(id uuid.UUID, p int) error {
	return s.Mutate(id, func(j *models.Job) {
		if p > j.Progress {
			j.Progress = p
		}
	})
}

// AttachAudio commits the finished audio buffer: status completed, progress
// 100, audio and duration set in one atomic step. Exactly once per job.
func (s *Store) AttachAudio(id uuid.UUID, audio []byte, durationSec float64) error {
	e := s.lookup(id)
	if e == nil {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.job.Status.IsTerminal() {
		return ErrJobFinished
	}

	now := time.Now().UTC()
	e.job.Status = models.JobStatusCompleted
	e.job.Progress = 100
	e.job.Audio = audio
	e.job.DurationSec = &durationSec
	e.job.FinishedAt = &now
	return nil
}

// Fail marks the job failed with a human-readable message. Exactly once;
// a job that already finished keeps its original outcome.
func (s *Store) Fail(id uuid.UUID, msg string) error {
	e := s.lookup(id)
	if e == nil {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.job.Status.IsTerminal() {
		return ErrJobFinished
	}

	now := time.Now().UTC()
	e.job.Status = models.JobStatusFailed
	e.job.Error = &msg
	e.job.FinishedAt = &now
	return nil
}

// Len returns the number of jobs currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

func (s *Store) lookup(id uuid.UUID) *entry {
	s.mu.RLock()
	e := s.jobs[id]
	s.mu.RUnlock()
	return e
}

// StartJanitor sweeps terminal jobs older than the retention window at the
// given interval until ctx is cancelled. Bounds memory for a registry the
// pipeline itself never deletes from.
func (s *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sweep(time.Now().UTC()); n > 0 {
				log.Printf("[Store] Swept %d expired jobs", n)
			}
		}
	}
}

func (s *Store) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.jobs {
		e.mu.Lock()
		expired := e.job.Status.IsTerminal() &&
			e.job.FinishedAt != nil &&
			now.Sub(*e.job.FinishedAt) > s.retention
		e.mu.Unlock()

		if expired {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}
