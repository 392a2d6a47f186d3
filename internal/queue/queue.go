package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// In-memory FIFO dispatch queue between submit and the worker pool.
// Enqueue never blocks: when all workers are busy, tasks simply wait here
// and their jobs stay in queued state. Dequeue blocks up to a timeout and
// returns nil when nothing arrived, so worker loops can re-check shutdown.
// ---------------------------------------------------------------------------

// Task is one unit of dispatch: the id of a job whose record (including the
// validated request) lives in the job store.
type Task struct {
	JobID      uuid.UUID
	EnqueuedAt time.Time
}

type Queue struct {
	mu     sync.Mutex
	tasks  []Task
	notify chan struct{}
}

func New() *Queue {
	return &Queue{
		notify: make(chan struct{}, 1),
	}
}

// Enqueue appends a task and wakes one waiting worker. Never blocks.
func (q *Queue) Enqueue(jobID uuid.UUID) {
	q.mu.Lock()
	q.tasks = append(q.tasks, Task{JobID: jobID, EnqueuedAt: time.Now()})
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Dequeue pops the oldest task, waiting up to timeout for one to arrive.
// Returns (nil, nil) on timeout and ctx.Err() on cancellation.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		q.mu.Lock()
		if len(q.tasks) > 0 {
			task := q.tasks[0]
			q.tasks = q.tasks[1:]

			// A single notify token can cover several pending tasks;
			// re-arm it so other waiters see the remainder.
			if len(q.tasks) > 0 {
				select {
				case q.notify <- struct{}{}:
				default:
				}
			}
			q.mu.Unlock()
			return &task, nil
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-deadline.C:
			return nil, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Len returns the number of tasks waiting for a worker slot.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
