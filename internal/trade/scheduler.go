package trade

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomislav-safran/vibe-trader/internal/metrics"
	"github.com/tomislav-safran/vibe-trader/internal/telegram"
)

// TickFunc is one decision cycle. It returns the placed order id, or ""
// for a deliberate no-trade.
type TickFunc func(ctx context.Context, symbol string) (string, error)

// WorkerPool bounds how many ticks run concurrently. A single pool can be
// shared by several schedulers, matching one fixed-size pool driving all
// recurring jobs.
type WorkerPool chan struct{}

func NewWorkerPool(size int) WorkerPool {
	if size < 1 {
		size = 1
	}
	return make(WorkerPool, size)
}

// Scheduler keeps at most one live recurring job per symbol. Rescheduling
// a symbol cancels its previous job first; cancelling takes effect for
// future ticks only, an in-flight tick runs to completion. Tick failures
// are logged and discarded; the schedule itself is never torn down by a
// failing decision cycle.
type Scheduler struct {
	label   string // used in log lines, e.g. "trade" or "algo trade"
	workers WorkerPool

	mu   sync.Mutex
	jobs map[string]*Job
}

func NewScheduler(label string, pool WorkerPool) *Scheduler {
	return &Scheduler{
		label:   label,
		workers: pool,
		jobs:    make(map[string]*Job),
	}
}

// Job is the cancellable handle for one symbol's recurring schedule.
type Job struct {
	symbol    string
	stop      chan struct{}
	cancelled atomic.Bool
}

// Cancelled reports whether the job has been cancelled or replaced.
func (j *Job) Cancelled() bool { return j.cancelled.Load() }

func (j *Job) cancel() {
	if j.cancelled.CompareAndSwap(false, true) {
		close(j.stop)
	}
}

// Schedule starts a recurring job for the symbol, replacing any existing
// one. The job runs at a fixed rate: the first tick fires immediately,
// subsequent ticks every interval.
func (s *Scheduler) Schedule(symbol string, interval time.Duration, tick TickFunc) (*Job, error) {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	if normalized == "" {
		return nil, fmt.Errorf("symbol must be provided")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}

	job := &Job{symbol: normalized, stop: make(chan struct{})}

	s.mu.Lock()
	if existing, ok := s.jobs[normalized]; ok {
		existing.cancel()
		metrics.JobCancelled()
	}
	s.jobs[normalized] = job
	s.mu.Unlock()
	metrics.JobScheduled()

	go s.run(job, interval, tick)
	log.Printf("Scheduled %s job for %s every %s", s.label, normalized, interval)
	return job, nil
}

// Cancel removes the symbol's job if one exists.
func (s *Scheduler) Cancel(symbol string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))

	s.mu.Lock()
	job, ok := s.jobs[normalized]
	if ok {
		delete(s.jobs, normalized)
	}
	s.mu.Unlock()

	if !ok {
		log.Printf("No %s job found for %s", s.label, normalized)
		return false
	}
	job.cancel()
	metrics.JobCancelled()
	log.Printf("Cancelled %s job for %s", s.label, normalized)
	return true
}

func (s *Scheduler) run(job *Job, interval time.Duration, tick TickFunc) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Fixed-rate semantics: the first decision cycle runs at schedule
	// time, not one interval later.
	s.execute(job, tick)

	for {
		select {
		case <-job.stop:
			return
		case <-ticker.C:
			s.execute(job, tick)
		}
	}
}

// execute claims a worker-pool slot for one cycle. The semaphore bounds
// concurrency across symbols; running the tick synchronously here keeps
// one job's ticks from overlapping.
func (s *Scheduler) execute(job *Job, tick TickFunc) {
	s.workers <- struct{}{}
	defer func() { <-s.workers }()
	s.runTick(job, tick)
}

// runTick executes one cycle, fire-and-forget: any failure is logged and
// the schedule keeps firing at its fixed period.
func (s *Scheduler) runTick(job *Job, tick TickFunc) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Scheduled %s tick panicked for %s: %v", s.label, job.symbol, r)
		}
	}()

	orderID, err := tick(context.Background(), job.symbol)
	switch {
	case err != nil:
		log.Printf("Scheduled %s failed for %s: %v", s.label, job.symbol, err)
	case orderID == "":
		log.Printf("No %s placed for %s", s.label, job.symbol)
	default:
		log.Printf("%s placed for %s with order id %s", strings.ToUpper(s.label[:1])+s.label[1:], job.symbol, orderID)
		telegram.Notify(fmt.Sprintf("📈 *%s*: order `%s` placed by scheduled %s", job.symbol, orderID, s.label))
	}
}
