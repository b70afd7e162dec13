// Package queue holds the serve-mode job model and the worker pool that
// runs the subtitle pipeline for each submitted video.
package queue

import (
	"sync"
	"time"
)

// Job status constants.
const (
	StatusQueued     = "QUEUED"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// Job is one submitted video waiting for, or undergoing, subtitle
// generation.
type Job struct {
	ID         string
	Name       string
	VideoPath  string
	OutputPath string
	CreatedAt  time.Time

	mu       sync.Mutex
	status   string
	err      error
	progress []string
	subs     []chan string
	done     bool
}

// NewJob creates a queued job.
func NewJob(id, name, videoPath, outputPath string) *Job {
	return &Job{
		ID:         id,
		Name:       name,
		VideoPath:  videoPath,
		OutputPath: outputPath,
		CreatedAt:  time.Now(),
		status:     StatusQueued,
	}
}

// Status returns the job's current status and error, if any.
func (j *Job) Status() (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status, j.err
}

func (j *Job) setStatus(status string, err error) {
	j.mu.Lock()
	j.status = status
	j.err = err
	j.mu.Unlock()
}

// publish records a progress line and fans it out to subscribers. Slow
// subscribers drop lines rather than stalling the pipeline.
func (j *Job) publish(line string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.progress = append(j.progress, line)
	for _, ch := range j.subs {
		select {
		case ch <- line:
		default:
		}
	}
}

// Subscribe returns the progress lines so far plus a channel carrying
// subsequent ones. The channel is closed when the job finishes.
func (j *Job) Subscribe() ([]string, <-chan string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	history := make([]string, len(j.progress))
	copy(history, j.progress)

	ch := make(chan string, 64)
	if j.done {
		close(ch)
		return history, ch
	}
	j.subs = append(j.subs, ch)
	return history, ch
}

// finish marks the job terminal and closes all subscriber channels.
func (j *Job) finish() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.done = true
	for _, ch := range j.subs {
		close(ch)
	}
	j.subs = nil
}
