package printer

import (
	"sync"
	"time"
)

type parkedJob struct {
	timer *time.Timer
	gen   uint64
}

// retryQueue parks failed jobs until their backoff elapses and then hands them
// back to the workers. Parked jobs are abandoned once the dispatcher stops.
type retryQueue struct {
	out   chan<- Job
	done  <-chan struct{}
	onLen func(int)

	mu     sync.Mutex
	gen    uint64
	parked map[string]parkedJob
}

func newRetryQueue(out chan<- Job, done <-chan struct{}, onLen func(int)) *retryQueue {
	return &retryQueue{out: out, done: done, onLen: onLen, parked: make(map[string]parkedJob)}
}

// Enqueue parks job for delay. A job already parked under the same id is replaced.
func (q *retryQueue) Enqueue(job Job, delay time.Duration) {
	delay = max(delay, 0)
	q.mu.Lock()
	defer q.mu.Unlock()
	select {
	case <-q.done:
		return
	default:
	}
	if p, ok := q.parked[job.JobID]; ok {
		p.timer.Stop()
	}
	q.gen++
	gen := q.gen
	q.parked[job.JobID] = parkedJob{gen: gen, timer: time.AfterFunc(delay, func() { q.release(job, gen) })}
}

func (q *retryQueue) release(job Job, gen uint64) {
	q.mu.Lock()
	p, ok := q.parked[job.JobID]
	if !ok || p.gen != gen {
		q.mu.Unlock()
		return
	}
	delete(q.parked, job.JobID)
	q.mu.Unlock()

	select {
	case <-q.done:
	case q.out <- job:
		q.onLen(len(q.out))
	}
}

// stop cancels every parked retry and reports how many were abandoned.
func (q *retryQueue) stop() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.parked)
	for id, p := range q.parked {
		p.timer.Stop()
		delete(q.parked, id)
	}
	return n
}
