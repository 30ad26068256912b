package downloader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wikiassets/pkg/logger"
	"wikiassets/pkg/models"
)

// Job is one item to process
type Job struct {
	Index int
	Item  models.CategoryItem
}

// Result is the outcome of a Job
type Result struct {
	Job      Job
	Asset    models.ResolvedAsset
	WorkerID int
	Duration time.Duration
}

// ItemProcessor runs the full resolve and fetch sequence for one item
type ItemProcessor interface {
	ProcessItem(ctx context.Context, item models.CategoryItem) models.ResolvedAsset
}

// WorkerPool runs a fixed number of workers over a job queue. Results are
// delivered in completion order.
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan Job
	resultQueue chan Result
	wg          sync.WaitGroup
	stopOnce    sync.Once
	stopped     chan struct{}
	ctx         context.Context
	processor   ItemProcessor
	logger      logger.Logger
}

// NewWorkerPool creates a worker pool. ctx is handed to every job and does
// not stop the workers.
func NewWorkerPool(ctx context.Context, numWorkers int, processor ItemProcessor, log logger.Logger) *WorkerPool {
	if log == nil {
		log = logger.GetLogger()
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan Job, numWorkers*2),
		resultQueue: make(chan Result, numWorkers),
		stopped:     make(chan struct{}),
		ctx:         ctx,
		processor:   processor,
		logger:      log,
	}
}

// Start launches the workers
func (wp *WorkerPool) Start() {
	wp.logger.DebugWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": wp.GetActiveWorkers(),
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop closes the job queue, waits for queued jobs to finish and closes the
// result channel. Results must be drained concurrently.
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.stopped)
		close(wp.jobQueue)
		wp.wg.Wait()
		close(wp.resultQueue)
		wp.logger.Debug("Worker pool stopped")
	})
}

// Submit queues a job, blocking while the queue is full
func (wp *WorkerPool) Submit(job Job) (err error) {
	select {
	case <-wp.stopped:
		return fmt.Errorf("worker pool is stopped")
	default:
	}

	defer func() {
		if recover() != nil {
			err = fmt.Errorf("worker pool is stopped")
		}
	}()
	wp.jobQueue <- job
	return nil
}

// Results returns the result channel
func (wp *WorkerPool) Results() <-chan Result {
	return wp.resultQueue
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		wp.resultQueue <- wp.processJob(job, id)
	}
}

// processJob runs one job. A panic is recorded as a failed item so sibling
// jobs keep running.
func (wp *WorkerPool) processJob(job Job, workerID int) (result Result) {
	start := time.Now()
	result = Result{Job: job, WorkerID: workerID}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic while processing %q: %v", job.Item.Title, r)
			wp.logger.WithError(err).ErrorWithFields("Worker recovered from panic", map[string]interface{}{
				"worker_id": workerID,
				"item":      job.Item.Title,
			})
			result.Asset = models.ResolvedAsset{
				Name:   job.Item.Title,
				Status: models.StatusFailed,
				Err:    err,
			}
		}
		result.Duration = time.Since(start)
	}()

	result.Asset = wp.processor.ProcessItem(wp.ctx, job.Item)
	wp.logger.DebugWithFields("Job processed", map[string]interface{}{
		"worker_id":   workerID,
		"item":        job.Item.Title,
		"status":      string(result.Asset.Status),
		"queue_depth": wp.GetQueueSize(),
	})
	return result
}

// GetQueueSize returns the number of jobs waiting in the queue
func (wp *WorkerPool) GetQueueSize() int {
	return len(wp.jobQueue)
}

// GetActiveWorkers returns the number of workers
func (wp *WorkerPool) GetActiveWorkers() int {
	return wp.numWorkers
}
