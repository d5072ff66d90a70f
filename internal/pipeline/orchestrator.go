package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/memoire/internal/config"
	"github.com/dgallion1/memoire/internal/project"
)

// ErrJobActive is returned by Submit when the project already has a job in flight.
var ErrJobActive = errors.New("a drafting job is already running for this project")

// Orchestrator manages the section drafting pipeline.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	drafter Drafter
	repo    *project.Repository
	index   Indexer
	log     *slog.Logger
	cfg     config.Config

	submitMu sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, drafter Drafter, repo *project.Repository, index Indexer, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, cfg.MaxQueueSize),
		drafter: drafter,
		repo:    repo,
		index:   index,
		log:     log,
		cfg:     cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.drafter, o.repo, o.index, o.log, o.cfg.MaxConcurrentDraft, o.cfg.DraftWords, o.cfg.ContextBudget)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing. It fails fast when the queue is
// full or the project already has a queued or running job.
func (o *Orchestrator) Submit(job *Job) error {
	o.submitMu.Lock()
	defer o.submitMu.Unlock()

	if active := o.jobs.Active(job.ProjectID); active != nil {
		return fmt.Errorf("%w (%s)", ErrJobActive, active.ID)
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.AddError("job queue is full")
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
