// Package scheduler runs periodic jobs, such as autosaving the open
// script, on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/stlalpha/pocketscene/internal/logging"
)

// Job is a named task run on a cron schedule. Specs include a seconds field.
type Job struct {
	Name     string
	Schedule string
	Run      func()
}

// Stats counts the runs of one job.
type Stats struct {
	Name     string
	LastRun  time.Time
	RunCount int
	Skipped  int
}

// Scheduler manages scheduled job execution.
type Scheduler struct {
	cron    *cron.Cron
	mu      sync.Mutex
	running map[string]bool
	stats   map[string]*Stats
	jobs    int
}

// New creates a scheduler with no jobs.
func New() *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		running: make(map[string]bool),
		stats:   make(map[string]*Stats),
	}
}

// Add registers a job. An empty schedule disables the job and is not an
// error.
func (s *Scheduler) Add(job Job) error {
	if job.Schedule == "" {
		logging.Debug("Job '%s' has no schedule, skipping", job.Name)
		return nil
	}
	if job.Run == nil {
		return fmt.Errorf("job %q has no function", job.Name)
	}
	if _, err := s.cron.AddFunc(job.Schedule, func() { s.execute(job) }); err != nil {
		return fmt.Errorf("job %q: invalid schedule %q: %w", job.Name, job.Schedule, err)
	}
	s.mu.Lock()
	s.stats[job.Name] = &Stats{Name: job.Name}
	s.jobs++
	s.mu.Unlock()
	logging.Info("Job '%s' scheduled: %s", job.Name, job.Schedule)
	return nil
}

// Start runs the scheduler until ctx is done, then waits for running jobs.
// It returns at once when no job is scheduled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	n := s.jobs
	s.mu.Unlock()
	if n == 0 {
		logging.Debug("No jobs to schedule")
		return
	}

	s.cron.Start()
	logging.Info("Scheduler running with %d jobs", n)
	<-ctx.Done()
	s.Stop()
}

// Stop stops the scheduler and waits for running jobs to complete.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// execute runs a job unless a previous run of it is still in progress.
func (s *Scheduler) execute(job Job) {
	s.mu.Lock()
	st := s.stats[job.Name]
	if s.running[job.Name] {
		st.Skipped++
		s.mu.Unlock()
		logging.Warn("Job '%s' skipped: already running", job.Name)
		return
	}
	s.running[job.Name] = true
	st.LastRun = time.Now()
	st.RunCount++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.running, job.Name)
		s.mu.Unlock()
	}()

	logging.Debug("Job '%s' starting", job.Name)
	job.Run()
}

// Stats returns a copy of the run counts of every job.
func (s *Scheduler) Stats() map[string]Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Stats, len(s.stats))
	for k, v := range s.stats {
		out[k] = *v
	}
	return out
}
