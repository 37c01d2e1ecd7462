package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JobStatus tracks a job through its lifecycle.
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is one projection refresh for one company over one window.
type Job struct {
	ID          uuid.UUID
	CompanyID   uuid.UUID
	WindowStart time.Time
	WindowEnd   time.Time
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
}

func NewJob(companyID uuid.UUID, windowStart, windowEnd time.Time, maxRetries int) *Job {
	return &Job{
		ID:          uuid.New(),
		CompanyID:   companyID,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Status:      JobStatusPending,
		MaxRetries:  maxRetries,
	}
}

func nowPtr() *time.Time {
	now := time.Now()
	return &now
}

func (j *Job) Start() {
	j.Status = JobStatusRunning
	j.StartedAt = nowPtr()
	j.Error = ""
}

func (j *Job) Complete() {
	j.Status = JobStatusSuccess
	j.CompletedAt = nowPtr()
}

func (j *Job) Fail(reason string) {
	j.Status = JobStatusFailed
	j.CompletedAt = nowPtr()
	j.Error = reason
}

// ShouldRetry reports whether a failed job still has retry budget.
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry moves a failed job back to pending after the delay.
func (j *Job) ScheduleRetry(delay time.Duration) {
	next := time.Now().Add(delay)
	j.RetryCount++
	j.Status = JobStatusPending
	j.NextRetryAt = &next
	j.Error = ""
}

// JobExecutor performs the actual projection refresh for a job.
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}
