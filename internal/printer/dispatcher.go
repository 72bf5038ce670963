package printer

import (
	"context"
	"errors"
	"sync"
	"time"

	"cashier-terminal/internal/config"
	"cashier-terminal/internal/metrics"

	"github.com/rs/zerolog/log"
)

var (
	ErrDisabled    = errors.New("printing_disabled")
	ErrQueueFull   = errors.New("print_queue_full")
	ErrNotStarted  = errors.New("printer_not_started")
	errCircuitOpen = errors.New("circuit_open")
)

type agent interface {
	Print(ctx context.Context, job Job) error
}

type breakerState struct {
	consecutiveFailures int
	openUntil           time.Time
}

// Dispatcher hands jobs to a small worker pool. Failed jobs are retried with
// exponential backoff; repeated failures open a breaker that fails jobs fast
// until the agent has had time to recover.
type Dispatcher struct {
	cfg     config.PrintConfig
	agent   agent
	metrics *metrics.Metrics

	dispatchCh chan Job
	retryQ     *retryQueue
	done       chan struct{}

	mu      sync.Mutex
	started bool
	breaker breakerState
}

func NewDispatcher(cfg config.PrintConfig, m *metrics.Metrics) *Dispatcher {
	return newDispatcher(cfg, NewAgentClient(cfg.AgentURL, cfg.RequestTimeout), m)
}

func newDispatcher(cfg config.PrintConfig, a agent, m *metrics.Metrics) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.CircuitOpenDuration <= 0 {
		cfg.CircuitOpenDuration = 30 * time.Second
	}
	d := &Dispatcher{
		cfg:        cfg,
		agent:      a,
		metrics:    m,
		dispatchCh: make(chan Job, cfg.QueueSize),
		done:       make(chan struct{}),
	}
	d.retryQ = newRetryQueue(d.dispatchCh, d.done, m.PrintQueue)
	return d
}

func (d *Dispatcher) Start(ctx context.Context) error {
	if !d.cfg.Enabled {
		return nil
	}
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return nil
	}
	d.started = true
	d.mu.Unlock()

	for i := 0; i < d.cfg.Workers; i++ {
		go d.worker(ctx)
	}
	go func() {
		<-ctx.Done()
		close(d.done)
		if n := d.retryQ.stop(); n > 0 {
			log.Warn().Int("jobs", n).Msg("print_retries_abandoned")
		}
	}()
	log.Info().Str("agent_url", d.cfg.AgentURL).Int("workers", d.cfg.Workers).Msg("printer_started")
	return nil
}

// Submit queues job without waiting for the agent and returns its id.
func (d *Dispatcher) Submit(_ context.Context, job Job) (string, error) {
	if !d.cfg.Enabled {
		return "", ErrDisabled
	}
	d.mu.Lock()
	started := d.started
	d.mu.Unlock()
	if !started {
		return "", ErrNotStarted
	}
	select {
	case <-d.done:
		return "", ErrNotStarted
	default:
	}
	select {
	case d.dispatchCh <- job:
		d.metrics.PrintQueue(len(d.dispatchCh))
		return job.JobID, nil
	default:
		d.metrics.PrintJob("queue_full")
		return "", ErrQueueFull
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.done:
			return
		case job := <-d.dispatchCh:
			d.metrics.PrintQueue(len(d.dispatchCh))
			d.process(ctx, job)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, job Job) {
	if err := d.beforeSend(time.Now()); err != nil {
		d.metrics.PrintJob("circuit_open")
		d.retryOrDrop(job, err)
		return
	}
	if err := d.agent.Print(ctx, job); err != nil {
		d.metrics.PrintJob("failed")
		d.afterFailure(time.Now())
		d.retryOrDrop(job, err)
		return
	}
	d.metrics.PrintJob("printed")
	d.afterSuccess()
	log.Info().Str("job_id", job.JobID).Str("type", job.Type).Msg("print_job_done")
}

func (d *Dispatcher) retryOrDrop(job Job, err error) bool {
	if job.attempt >= d.cfg.RetryMax {
		d.metrics.PrintJob("dropped")
		log.Warn().Err(err).Str("job_id", job.JobID).Int("attempts", job.attempt+1).Msg("print_job_dropped")
		return false
	}
	job.attempt++
	d.metrics.PrintJob("retried")
	delay := d.cfg.RetryBase * time.Duration(1<<(job.attempt-1))
	d.retryQ.Enqueue(job, delay)
	return true
}

func (d *Dispatcher) beforeSend(now time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.breaker.openUntil.IsZero() && now.Before(d.breaker.openUntil) {
		return errCircuitOpen
	}
	return nil
}

func (d *Dispatcher) afterFailure(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.breaker.consecutiveFailures++
	if d.breaker.consecutiveFailures >= d.cfg.FailureThreshold {
		d.breaker.openUntil = now.Add(d.cfg.CircuitOpenDuration)
		d.breaker.consecutiveFailures = 0
		log.Warn().Dur("open_for", d.cfg.CircuitOpenDuration).Msg("print_breaker_open")
	}
}

func (d *Dispatcher) afterSuccess() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.breaker = breakerState{}
}
