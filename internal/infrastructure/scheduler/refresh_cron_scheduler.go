package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RefreshCronSchedulerConfig controls when the nightly refresh fires
// and how the underlying worker pool is sized.
type RefreshCronSchedulerConfig struct {
	Enabled bool
	// CronHour and CronMinute are the local wall-clock time of the
	// daily run, extracted from DailyCronSchedule.
	CronHour          int
	CronMinute        int
	DailyCronSchedule string
	// WindowMonths is how far ahead projections are regenerated.
	WindowMonths      int
	JobTimeout        time.Duration
	MaxConcurrentJobs int
	RetryAttempts     int
	RetryDelay        time.Duration
}

// DefaultRefreshCronSchedulerConfig runs the refresh at 02:00 daily
// over a twelve month window.
func DefaultRefreshCronSchedulerConfig() RefreshCronSchedulerConfig {
	return RefreshCronSchedulerConfig{
		Enabled:           true,
		CronHour:          2,
		CronMinute:        0,
		DailyCronSchedule: "0 2 * * *",
		WindowMonths:      12,
		JobTimeout:        30 * time.Minute,
		MaxConcurrentJobs: 3,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Minute,
	}
}

// ParseCronSchedule extracts hour and minute from a daily cron
// expression of the form "minute hour * * *". Empty or short
// expressions fall back to 02:00; out-of-range values are an error.
func ParseCronSchedule(expr string) (hour, minute int, err error) {
	hour, minute = 2, 0

	fields := strings.Fields(expr)
	if len(fields) < 2 {
		return hour, minute, nil
	}

	if v, ok := cronField(fields[0]); ok {
		minute = v
	}
	if v, ok := cronField(fields[1]); ok {
		hour = v
	}

	if minute < 0 || minute > 59 {
		return 2, 0, fmt.Errorf("minute must be 0-59, got %d", minute)
	}
	if hour < 0 || hour > 23 {
		return 2, 0, fmt.Errorf("hour must be 0-23, got %d", hour)
	}
	return hour, minute, nil
}

func cronField(s string) (int, bool) {
	if s == "" || s == "*" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

// CompanySource enumerates companies whose projections need refreshing.
type CompanySource interface {
	ActiveCompanyIDs(ctx context.Context) ([]uuid.UUID, error)
}

// GormCompanySource derives the company list from recurring payments and
// open invoices. A company with neither has nothing to project.
type GormCompanySource struct {
	db *gorm.DB
}

func NewGormCompanySource(db *gorm.DB) *GormCompanySource {
	return &GormCompanySource{db: db}
}

var _ CompanySource = (*GormCompanySource)(nil)

func (s *GormCompanySource) ActiveCompanyIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Raw(`
		SELECT DISTINCT company_id FROM recurring_payments WHERE is_active = true
		UNION
		SELECT DISTINCT company_id FROM invoices WHERE status = 'OPEN'
	`).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// SchedulerJobRecord is the persisted audit row for one refresh run.
type SchedulerJobRecord struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	CompanyID   *uuid.UUID `gorm:"column:company_id;type:uuid"`
	Status      string     `gorm:"column:last_run_status;size:20"`
	Error       string     `gorm:"column:last_error;type:text"`
	StartedAt   *time.Time `gorm:"column:last_run_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	NextRunAt   *time.Time `gorm:"column:next_run_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (SchedulerJobRecord) TableName() string {
	return "projection_refresh_jobs"
}

// SchedulerJobRepository persists refresh run audit rows.
type SchedulerJobRepository struct {
	db *gorm.DB
}

func NewSchedulerJobRepository(db *gorm.DB) *SchedulerJobRepository {
	return &SchedulerJobRepository{db: db}
}

func (r *SchedulerJobRepository) RecordJobStart(ctx context.Context, companyID *uuid.UUID) (uuid.UUID, error) {
	now := time.Now()
	record := &SchedulerJobRecord{
		ID:        uuid.New(),
		CompanyID: companyID,
		Status:    string(JobStatusRunning),
		StartedAt: &now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return uuid.Nil, err
	}
	return record.ID, nil
}

func (r *SchedulerJobRepository) RecordJobComplete(ctx context.Context, jobID uuid.UUID, success bool, errMsg string) error {
	status := JobStatusSuccess
	if !success {
		status = JobStatusFailed
	}
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&SchedulerJobRecord{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"last_run_status": string(status),
			"last_error":      errMsg,
			"completed_at":    now,
			"updated_at":      now,
		}).Error
}

// GetLastJobStatus returns the most recent run for a company, or for
// the whole-system runs when companyID is nil.
func (r *SchedulerJobRepository) GetLastJobStatus(ctx context.Context, companyID *uuid.UUID) (*SchedulerJobRecord, error) {
	query := r.db.WithContext(ctx)
	if companyID == nil {
		query = query.Where("company_id IS NULL")
	} else {
		query = query.Where("company_id = ?", *companyID)
	}

	var record SchedulerJobRecord
	if err := query.Order("last_run_at DESC").First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// RefreshCronScheduler sleeps until the configured wall-clock time each
// day, then enqueues one refresh job per active company on the worker
// pool.
type RefreshCronScheduler struct {
	config        RefreshCronSchedulerConfig
	companySource CompanySource
	jobRepo       *SchedulerJobRepository
	logger        *zap.Logger
	pool          *Scheduler

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	running   bool
	lastRunAt *time.Time
	nextRunAt *time.Time
}

func NewRefreshCronScheduler(
	config RefreshCronSchedulerConfig,
	executor JobExecutor,
	companySource CompanySource,
	jobRepo *SchedulerJobRepository,
	logger *zap.Logger,
) *RefreshCronScheduler {
	pool := NewScheduler(SchedulerConfig{
		Enabled:           config.Enabled,
		MaxConcurrentJobs: config.MaxConcurrentJobs,
		JobTimeout:        config.JobTimeout,
		RetryAttempts:     config.RetryAttempts,
		RetryDelay:        config.RetryDelay,
	}, executor, logger)

	return &RefreshCronScheduler{
		config:        config,
		companySource: companySource,
		jobRepo:       jobRepo,
		logger:        logger,
		pool:          pool,
	}
}

func (s *RefreshCronScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	if err := s.pool.Start(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	next := s.nextRunAfter(time.Now())
	s.setNextRun(next)

	s.wg.Add(1)
	go s.cronLoop(ctx, next)

	s.logger.Info("projection refresh cron started",
		zap.Int("cron_hour", s.config.CronHour),
		zap.Int("cron_minute", s.config.CronMinute),
		zap.Int("window_months", s.config.WindowMonths),
		zap.Time("next_run_at", next),
	)
	return nil
}

func (s *RefreshCronScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if err := s.pool.Stop(ctx); err != nil {
			s.logger.Warn("error stopping refresh worker pool", zap.Error(err))
		}
		s.logger.Info("projection refresh cron stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("projection refresh cron stop timed out")
		return ctx.Err()
	}
}

// cronLoop sleeps until each scheduled run rather than polling.
func (s *RefreshCronScheduler) cronLoop(ctx context.Context, next time.Time) {
	defer s.wg.Done()

	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.runDailyRefresh(ctx)
			next = s.nextRunAfter(time.Now())
			s.setNextRun(next)
			timer.Reset(time.Until(next))
		}
	}
}

// nextRunAfter returns the first scheduled run strictly after now.
func (s *RefreshCronScheduler) nextRunAfter(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(),
		s.config.CronHour, s.config.CronMinute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s *RefreshCronScheduler) setNextRun(next time.Time) {
	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()
}

// refreshWindow is the projection window starting today.
func (s *RefreshCronScheduler) refreshWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	months := s.config.WindowMonths
	if months <= 0 {
		months = 12
	}
	return start, start.AddDate(0, months, 0)
}

// runDailyRefresh enqueues a refresh job for every active company.
func (s *RefreshCronScheduler) runDailyRefresh(ctx context.Context) {
	now := time.Now()
	s.mu.Lock()
	s.lastRunAt = &now
	s.mu.Unlock()

	companyIDs, err := s.companySource.ActiveCompanyIDs(ctx)
	if err != nil {
		s.logger.Error("failed to list companies for projection refresh", zap.Error(err))
		return
	}

	s.logger.Info("daily projection refresh starting",
		zap.Int("company_count", len(companyIDs)))

	windowStart, windowEnd := s.refreshWindow(now)
	for _, companyID := range companyIDs {
		s.enqueueCompanyRefresh(ctx, companyID, windowStart, windowEnd)
	}
}

func (s *RefreshCronScheduler) enqueueCompanyRefresh(ctx context.Context, companyID uuid.UUID, windowStart, windowEnd time.Time) {
	var auditID uuid.UUID
	if s.jobRepo != nil {
		id := companyID
		var err error
		if auditID, err = s.jobRepo.RecordJobStart(ctx, &id); err != nil {
			s.logger.Warn("failed to record refresh job start",
				zap.String("company_id", companyID.String()),
				zap.Error(err))
		}
	}

	job := NewJob(companyID, windowStart, windowEnd, s.config.RetryAttempts)
	if err := s.pool.SubmitJob(job); err != nil {
		s.logger.Error("failed to enqueue refresh job",
			zap.String("company_id", companyID.String()),
			zap.Error(err))
		if s.jobRepo != nil && auditID != uuid.Nil {
			_ = s.jobRepo.RecordJobComplete(ctx, auditID, false, err.Error())
		}
	}
}

// TriggerManualRun kicks off an out-of-schedule refresh of every
// company. It runs on a background context so the caller's request
// ending does not cancel the enqueue.
func (s *RefreshCronScheduler) TriggerManualRun(ctx context.Context) error {
	if !s.isRunning() {
		return ErrSchedulerNotRunning
	}
	go s.runDailyRefresh(context.Background())
	return nil
}

// TriggerCompanyRefresh enqueues a refresh for one company and window.
func (s *RefreshCronScheduler) TriggerCompanyRefresh(ctx context.Context, companyID uuid.UUID, windowStart, windowEnd time.Time) error {
	if !s.isRunning() {
		return ErrSchedulerNotRunning
	}
	job := NewJob(companyID, windowStart, windowEnd, s.config.RetryAttempts)
	return s.pool.SubmitJob(job)
}

func (s *RefreshCronScheduler) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Status reports the cron state for diagnostics.
func (s *RefreshCronScheduler) Status() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":       s.config.Enabled,
		"is_running":    s.running,
		"cron_hour":     s.config.CronHour,
		"cron_minute":   s.config.CronMinute,
		"window_months": s.config.WindowMonths,
		"last_run_at":   s.lastRunAt,
		"next_run_at":   s.nextRunAt,
	}
}
