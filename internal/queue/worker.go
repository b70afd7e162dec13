package queue

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/vaibh/v2srt/internal/pipeline"
	"github.com/vaibh/v2srt/internal/storage"
)

// PipelineFactory builds a pipeline for one job; the progress callback
// receives the per-stage log lines.
type PipelineFactory func(progress func(line string)) *pipeline.Pipeline

// WorkerPool processes subtitle jobs sequentially per worker.
type WorkerPool struct {
	jobQueue    chan *Job
	workerCount int
	newPipeline PipelineFactory
	history     *storage.History
	archive     *storage.Archive
	driveClient *storage.DriveClient

	mu   sync.Mutex
	jobs map[string]*Job
}

// NewWorkerPool creates a worker pool. archive and driveClient may be nil.
func NewWorkerPool(workerCount int, newPipeline PipelineFactory,
	history *storage.History, archive *storage.Archive, driveClient *storage.DriveClient) *WorkerPool {
	return &WorkerPool{
		jobQueue:    make(chan *Job, 100),
		workerCount: workerCount,
		newPipeline: newPipeline,
		history:     history,
		archive:     archive,
		driveClient: driveClient,
		jobs:        make(map[string]*Job),
	}
}

// Start launches the workers.
func (wp *WorkerPool) Start() {
	log.Printf("starting worker pool with %d workers", wp.workerCount)
	for i := 0; i < wp.workerCount; i++ {
		go wp.worker(i)
	}
}

// Enqueue registers and queues a job.
func (wp *WorkerPool) Enqueue(job *Job) {
	wp.mu.Lock()
	wp.jobs[job.ID] = job
	wp.mu.Unlock()

	wp.jobQueue <- job
	log.Printf("job %s enqueued (name: %s)", job.ID, job.Name)
}

// Get looks up a job by ID.
func (wp *WorkerPool) Get(id string) (*Job, bool) {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	job, ok := wp.jobs[id]
	return job, ok
}

func (wp *WorkerPool) worker(id int) {
	log.Printf("worker %d started", id)

	for job := range wp.jobQueue {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("worker %d: panic processing job %s: %v\n%s",
						id, job.ID, r, string(debug.Stack()))
					job.setStatus(StatusFailed, fmt.Errorf("worker panic: %v", r))
					job.finish()
					wp.removeUpload(job)
				}
			}()
			wp.processJob(id, job)
		}()
	}
}

func (wp *WorkerPool) processJob(workerID int, job *Job) {
	log.Printf("worker %d: processing job %s", workerID, job.ID)
	job.setStatus(StatusProcessing, nil)
	defer job.finish()
	defer wp.removeUpload(job)

	p := wp.newPipeline(job.publish)
	result, err := p.Run(context.Background(), job.VideoPath, job.OutputPath)

	run := storage.Run{
		JobID:      job.ID,
		VideoPath:  job.Name,
		OutputPath: job.OutputPath,
		CreatedAt:  time.Now(),
	}

	if err != nil {
		log.Printf("worker %d: job %s failed: %v", workerID, job.ID, err)
		job.setStatus(StatusFailed, err)
		run.Status = StatusFailed
		run.Error = err.Error()
		wp.saveRun(run)
		return
	}

	run.Status = StatusCompleted
	run.CueCount = result.CueCount
	run.DurationSeconds = result.DurationSeconds

	if wp.archive != nil {
		if archived, err := wp.archive.Save(run); err != nil {
			log.Printf("worker %d: archive failed for job %s: %v", workerID, job.ID, err)
		} else {
			log.Printf("worker %d: archived %s", workerID, archived)
		}
	}

	if wp.driveClient != nil {
		wp.uploadWithRetry(workerID, run)
	}

	wp.saveRun(run)
	job.setStatus(StatusCompleted, nil)
	log.Printf("worker %d: job %s completed (%d cues)", workerID, job.ID, result.CueCount)
}

// uploadWithRetry attempts the Drive upload three times with quadratic
// backoff; a persistent failure is logged, not fatal, since the subtitles
// are already on local disk.
func (wp *WorkerPool) uploadWithRetry(workerID int, run storage.Run) {
	for attempt := 1; attempt <= 3; attempt++ {
		url, err := wp.driveClient.Upload(run)
		if err == nil {
			log.Printf("worker %d: uploaded subtitles to %s", workerID, url)
			return
		}
		log.Printf("worker %d: drive upload attempt %d/3 failed: %v", workerID, attempt, err)
		if attempt < 3 {
			time.Sleep(time.Duration(attempt*attempt) * time.Second)
		}
	}
	log.Printf("worker %d: drive upload failed after 3 attempts, keeping local copy only", workerID)
}

func (wp *WorkerPool) saveRun(run storage.Run) {
	if wp.history == nil {
		return
	}
	if err := wp.history.SaveRun(run); err != nil {
		log.Printf("failed to record run %s: %v", run.JobID, err)
	}
}

// removeUpload deletes the uploaded video once the job is terminal.
func (wp *WorkerPool) removeUpload(job *Job) {
	if job.VideoPath == "" {
		return
	}
	if err := os.Remove(job.VideoPath); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to clean up upload %s: %v", job.VideoPath, err)
	}
}
