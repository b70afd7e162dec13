// Package cleanup sweeps stale working files left behind by interrupted
// serve-mode runs. CLI runs remove their working directory on exit and
// never need it.
package cleanup

import (
	"log"
	"os"
	"path/filepath"
	"time"
)

// Scheduler periodically deletes entries in the temp directory older than
// the configured age.
type Scheduler struct {
	tempDir  string
	interval time.Duration
	maxAge   time.Duration
	stopChan chan struct{}
}

// NewScheduler creates a scheduler for tempDir.
func NewScheduler(tempDir string, intervalMinutes, maxAgeHours int) *Scheduler {
	return &Scheduler{
		tempDir:  tempDir,
		interval: time.Duration(intervalMinutes) * time.Minute,
		maxAge:   time.Duration(maxAgeHours) * time.Hour,
		stopChan: make(chan struct{}),
	}
}

// Start runs one sweep immediately, then sweeps on the configured interval
// until Stop.
func (s *Scheduler) Start() {
	log.Println("running initial temp cleanup...")
	s.sweep()

	ticker := time.NewTicker(s.interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()

	log.Printf("cleanup scheduler started (interval: %s, max age: %s)", s.interval, s.maxAge)
}

// Stop halts the scheduler.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	log.Println("cleanup scheduler stopped")
}

// sweep removes top-level temp entries (run directories and stray files)
// older than maxAge. Failures are logged, never surfaced.
func (s *Scheduler) sweep() {
	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		log.Printf("cleanup: cannot read %s: %v", s.tempDir, err)
		return
	}

	now := time.Now()
	removed := 0
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		age := now.Sub(info.ModTime())
		if age <= s.maxAge {
			continue
		}
		path := filepath.Join(s.tempDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			log.Printf("cleanup: failed to remove %s: %v", path, err)
			continue
		}
		removed++
		log.Printf("cleanup: removed stale %s (age %s)", entry.Name(), age.Round(time.Minute))
	}

	if removed > 0 {
		log.Printf("cleanup complete: %d entries removed", removed)
	}
}

// EnsureDir creates dir if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return nil
}
