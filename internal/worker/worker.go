package worker

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bobarin/narrate/internal/models"
	"github.com/bobarin/narrate/internal/queue"
	"github.com/bobarin/narrate/internal/services"
	"github.com/bobarin/narrate/internal/store"
	"github.com/bobarin/narrate/internal/voices"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Progress weighting: 5% setup, 85% synthesis, 10% encoding. Synthesis
// reaches exactly 90 when the last chunk lands; encoder events fill 90-100.

// Options tunes one worker pool. Zero values fall back to defaults.
type Options struct {
	ChunkChars       int           // max characters per synthesis call
	ChunkWorkers     int           // bounded parallelism for one job's chunks
	SynthesisTimeout time.Duration // per backend call
	EncodeTimeout    time.Duration // whole encode step
}

func (o *Options) applyDefaults() {
	if o.ChunkChars <= 0 {
		o.ChunkChars = 2000
	}
	if o.ChunkWorkers <= 0 {
		o.ChunkWorkers = 3
	}
	if o.SynthesisTimeout <= 0 {
		o.SynthesisTimeout = 90 * time.Second
	}
	if o.EncodeTimeout <= 0 {
		o.EncodeTimeout = 2 * time.Minute
	}
}

type Worker struct {
	store   *store.Store
	queue   *queue.Queue
	catalog *voices.Catalog
	tts     services.SynthesisBackend
	encoder services.AudioEncoder
	opts    Options
}

func New(
	st *store.Store,
	q *queue.Queue,
	catalog *voices.Catalog,
	tts services.SynthesisBackend,
	encoder services.AudioEncoder,
	opts Options,
) *Worker {
	opts.applyDefaults()
	return &Worker{
		store:   st,
		queue:   q,
		catalog: catalog,
		tts:     tts,
		encoder: encoder,
		opts:    opts,
	}
}

// Start begins processing jobs from the queue with the given number of
// worker goroutines. Blocks until ctx is cancelled. Each dequeued job is
// owned by exactly one worker for its whole lifetime.
func (w *Worker) Start(ctx context.Context, concurrency int) {
	log.Printf("Worker started with concurrency: %d", concurrency)

	for i := 0; i < concurrency; i++ {
		go w.processQueue(ctx)
	}

	<-ctx.Done()
	log.Println("Worker shutting down...")
}

func (w *Worker) processQueue(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			task, err := w.queue.Dequeue(ctx, 5*time.Second)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("Error dequeuing: %v", err)
				continue
			}

			if task == nil {
				continue // No job available, retry
			}

			log.Printf("Processing job %s", task.JobID)

			if err := w.runJob(ctx, task.JobID); err != nil {
				log.Printf("Job %s failed: %v", task.JobID, err)
			} else {
				log.Printf("Job %s completed successfully", task.JobID)
			}
		}
	}
}

// runJob drives one job from queued to a terminal state. Every failure path
// lands in store.Fail with a human-readable message; nothing is ever
// partially committed.
func (w *Worker) runJob(ctx context.Context, jobID uuid.UUID) (err error) {
	// A panic inside one job must not take down the workers handling
	// everyone else's jobs.
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("internal error: %v", r)
			w.store.Fail(jobID, msg)
			err = fmt.Errorf("job %s panicked: %v", jobID, r)
		}
	}()

	job, ok := w.store.Get(jobID)
	if !ok {
		return fmt.Errorf("job %s not in store", jobID)
	}
	req := job.Request

	voice, ok := w.catalog.Resolve(req.VoiceID)
	if !ok {
		// Validated at submit; only reachable if the catalog changed
		w.store.Fail(jobID, fmt.Sprintf("voice %q is no longer available", req.VoiceID))
		return fmt.Errorf("job %s: unresolvable voice %q", jobID, req.VoiceID)
	}

	if err := w.store.Mutate(jobID, func(j *models.Job) {
		j.Status = models.JobStatusProcessing
		if j.Progress < 1 {
			j.Progress = 1
		}
	}); err != nil {
		return fmt.Errorf("job %s: %w", jobID, err)
	}

	vs := services.VoiceSettings{
		Voice:   voice,
		Speed:   req.Speed,
		Pitch:   req.Pitch,
		Emotion: req.Emotion,
	}

	chunks := splitText(req.Text, w.opts.ChunkChars)
	if len(chunks) == 0 {
		w.store.Fail(jobID, "request contains no synthesizable text")
		return fmt.Errorf("job %s: empty chunk list", jobID)
	}

	log.Printf("Job %s: synthesizing %d chunks (voice=%s, parallelism=%d)",
		jobID, len(chunks), req.VoiceID, w.opts.ChunkWorkers)

	// Chunks may finish out of order; the index-addressed slice pins the
	// concatenation order to the original text order.
	segments := make([]*services.SynthesisResult, len(chunks))
	var progressMu sync.Mutex
	completed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.ChunkWorkers)

	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, w.opts.SynthesisTimeout)
			defer cancel()

			res, err := w.tts.Synthesize(callCtx, chunk, vs)
			if err != nil {
				return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
			}
			segments[i] = res

			progressMu.Lock()
			completed++
			p := 5 + 85*completed/len(chunks)
			progressMu.Unlock()

			w.store.SetProgress(jobID, p)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		w.store.Fail(jobID, fmt.Sprintf("speech synthesis failed: %v", err))
		return fmt.Errorf("job %s: %w", jobID, err)
	}

	var raw bytes.Buffer
	durationHintMs := 0
	format := segments[0].Format
	for i, seg := range segments {
		if seg.Format != format {
			w.store.Fail(jobID, "synthesis produced mixed audio formats")
			return fmt.Errorf("job %s: segment %d format %q != %q", jobID, i, seg.Format, format)
		}
		raw.Write(seg.AudioData)
		durationHintMs += seg.DurationMs
	}

	w.store.SetProgress(jobID, 90)
	log.Printf("Job %s: %d raw bytes, encoding...", jobID, raw.Len())

	encCtx, cancel := context.WithTimeout(ctx, w.opts.EncodeTimeout)
	defer cancel()

	mp3, err := w.encoder.Encode(encCtx, bytes.NewReader(raw.Bytes()), services.EncodeOptions{
		InputFormat:    format,
		DurationHintMs: durationHintMs,
	}, func(ev services.EncodeEvent) {
		if ev.Type == services.EncodeEventProgress {
			// 100 is reserved for the atomic completion in AttachAudio
			p := 90 + ev.Percent/10
			if p > 99 {
				p = 99
			}
			w.store.SetProgress(jobID, p)
		}
	})
	if err != nil {
		w.store.Fail(jobID, fmt.Sprintf("audio encoding failed: %v", err))
		return fmt.Errorf("job %s: %w", jobID, err)
	}

	durationSec := services.MP3Duration(len(mp3))
	if err := w.store.AttachAudio(jobID, mp3, durationSec); err != nil {
		return fmt.Errorf("job %s: commit audio: %w", jobID, err)
	}

	log.Printf("Job %s: done (%d bytes, %.2fs)", jobID, len(mp3), durationSec)
	return nil
}
