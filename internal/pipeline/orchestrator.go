package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"masrag/internal/config"
	"masrag/internal/enrich"
	"masrag/internal/lineext"
	"masrag/internal/vecstore"
)

// Orchestrator manages the notice ingestion pipeline.
type Orchestrator struct {
	jobs   *JobStore
	queue  chan *Job
	gemini *enrich.GeminiClient
	store  *vecstore.Store
	log    *slog.Logger
	cfg    config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Start must be called before
// jobs are submitted.
func NewOrchestrator(cfg config.Config, gemini *enrich.GeminiClient, store *vecstore.Store, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:   NewJobStore(cfg.JobTTL),
		queue:  make(chan *Job, cfg.MaxQueueSize),
		gemini: gemini,
		store:  store,
		log:    log,
		cfg:    cfg,
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
			extOpts := lineext.Options{PDFFallbackPdftotext: o.cfg.PDFFallbackPdftotext}
			w := NewWorker(o.gemini, o.store, o.log, extOpts, o.cfg.MaxConcurrentEnrich, o.cfg.MaxConcurrentStore)
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

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
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

// Store returns the node store for direct use by API handlers.
func (o *Orchestrator) Store() *vecstore.Store {
	return o.store
}
