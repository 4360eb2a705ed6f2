// Package scheduler wraps gocron with a small job registry so the admin API
// can inspect and trigger the maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
)

// JobStatus represents the status of a job.
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusScheduled JobStatus = "scheduled"
)

// JobInfo contains information about a scheduled job.
type JobInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Status     JobStatus `json:"status"`
	LastRun    time.Time `json:"lastRun"`
	NextRun    time.Time `json:"nextRun"`
	Schedule   string    `json:"schedule"`
	RunCount   int       `json:"runCount"`
	ErrorCount int       `json:"errorCount"`
	LastError  string    `json:"lastError,omitempty"`

	gocronJob gocron.Job
}

// JobFunc represents a function that can be scheduled.
type JobFunc func(ctx context.Context) error

// Scheduler manages scheduled jobs.
type Scheduler struct {
	gocron gocron.Scheduler
	mu     sync.RWMutex
	jobs   map[string]*JobInfo
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new scheduler.
func New() (*Scheduler, error) {
	gocronScheduler, err := gocron.NewScheduler(gocron.WithLogger(newLogger()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		gocron: gocronScheduler,
		jobs:   make(map[string]*JobInfo),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Start starts the scheduler and fills in the next run times.
func (s *Scheduler) Start() {
	s.gocron.Start()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, jobInfo := range s.jobs {
		if nextRun, err := jobInfo.gocronJob.NextRun(); err == nil {
			jobInfo.NextRun = nextRun
		} else {
			log.Warn("Failed to get next run time for job", "id", id, "error", err)
		}
	}
	log.Info("Job scheduler started", "jobs", len(s.jobs))
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() error {
	log.Info("Stopping job scheduler")
	s.cancel()
	return s.gocron.Shutdown()
}

// AddCronJob registers a job on the given cron schedule. Jobs are singletons,
// a run that overlaps its next trigger pushes that trigger back.
func (s *Scheduler) AddCronJob(id, name, schedule string, jobFunc JobFunc) error {
	jobInfo := &JobInfo{
		ID:       id,
		Name:     name,
		Status:   JobStatusScheduled,
		Schedule: schedule,
	}

	job, err := s.gocron.NewJob(
		gocron.CronJob(schedule, false),
		gocron.NewTask(s.wrapJobFunc(id, jobFunc)),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", id, err)
	}
	jobInfo.gocronJob = job

	s.mu.Lock()
	s.jobs[id] = jobInfo
	s.mu.Unlock()

	log.Info("Added job to scheduler", "id", id, "schedule", schedule)
	return nil
}

// RunJobNow manually triggers a job to run immediately.
func (s *Scheduler) RunJobNow(id string) error {
	s.mu.RLock()
	jobInfo, exists := s.jobs[id]
	s.mu.RUnlock()
	if !exists {
		return fmt.Errorf("job %s not found", id)
	}

	log.Info("Manually triggering job", "id", id, "name", jobInfo.Name)
	if err := jobInfo.gocronJob.RunNow(); err != nil {
		return fmt.Errorf("failed to trigger job %s: %w", id, err)
	}
	return nil
}

// GetJobs returns a snapshot of all job information.
func (s *Scheduler) GetJobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobs := make([]JobInfo, 0, len(s.jobs))
	for _, jobInfo := range s.jobs {
		jobs = append(jobs, *jobInfo)
	}
	return jobs
}

// jobLogger routes gocron's internal logging through charmbracelet/log.
type jobLogger struct {
	log *log.Logger
}

func newLogger() *jobLogger {
	return &jobLogger{
		log: log.Default().WithPrefix("scheduler"),
	}
}

func (l *jobLogger) Debug(msg string, args ...any) {
	l.log.Debug(msg, args...)
}

func (l *jobLogger) Error(msg string, args ...any) {
	l.log.Error(msg, args...)
}

func (l *jobLogger) Info(msg string, args ...any) {
	l.log.Info(msg, args...)
}

func (l *jobLogger) Warn(msg string, args ...any) {
	l.log.Warn(msg, args...)
}

// wrapJobFunc wraps a job function to update job statistics.
func (s *Scheduler) wrapJobFunc(id string, jobFunc JobFunc) func() {
	return func() {
		s.mu.Lock()
		jobInfo := s.jobs[id]
		if jobInfo == nil {
			s.mu.Unlock()
			log.Error("Job info not found", "id", id)
			return
		}
		jobInfo.Status = JobStatusRunning
		jobInfo.LastRun = time.Now()
		jobInfo.RunCount++
		s.mu.Unlock()

		err := jobFunc(s.ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			log.Error("Job failed", "id", id, "name", jobInfo.Name, "error", err)
			jobInfo.Status = JobStatusFailed
			jobInfo.ErrorCount++
			jobInfo.LastError = err.Error()
		} else {
			jobInfo.Status = JobStatusCompleted
			jobInfo.LastError = ""
		}
		if nextRun, nextErr := jobInfo.gocronJob.NextRun(); nextErr == nil {
			jobInfo.NextRun = nextRun
		}
	}
}
