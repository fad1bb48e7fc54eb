package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// cronTickerInterval is how often the cron loop checks the clock
const cronTickerInterval = 1 * time.Minute

// ReportCronSchedulerConfig tunes the nightly refresh and the worker
// pool underneath it
type ReportCronSchedulerConfig struct {
	Enabled    bool
	CronHour   int // 0-23
	CronMinute int // 0-59
	// DailyCronSchedule overrides CronHour/CronMinute when set; only
	// the "minute hour * * *" form is understood
	DailyCronSchedule string
	JobTimeout        time.Duration
	MaxConcurrentJobs int
	RetryAttempts     int
	RetryDelay        time.Duration
}

// DefaultReportCronSchedulerConfig refreshes nightly at 02:00
func DefaultReportCronSchedulerConfig() ReportCronSchedulerConfig {
	return ReportCronSchedulerConfig{
		Enabled:           true,
		CronHour:          2,
		CronMinute:        0,
		DailyCronSchedule: "0 2 * * *",
		JobTimeout:        30 * time.Minute,
		MaxConcurrentJobs: 3,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Minute,
	}
}

// ParseCronSchedule extracts hour and minute from a "minute hour * * *"
// expression. Empty or unparseable fields fall back to the 02:00
// default instead of failing startup.
func ParseCronSchedule(cronExpr string) (hour, minute int, err error) {
	hour = 2
	minute = 0

	parts := strings.Fields(cronExpr)
	if len(parts) < 2 {
		return hour, minute, nil
	}

	if parts[0] != "*" {
		if val, parseErr := strconv.Atoi(parts[0]); parseErr == nil {
			minute = val
		}
	}
	if parts[1] != "*" {
		if val, parseErr := strconv.Atoi(parts[1]); parseErr == nil {
			hour = val
		}
	}

	if minute < 0 || minute > 59 {
		return 2, 0, fmt.Errorf("minute must be 0-59, got %d", minute)
	}
	if hour < 0 || hour > 23 {
		return 2, 0, fmt.Errorf("hour must be 0-23, got %d", hour)
	}

	return hour, minute, nil
}

// SchedulerJobRecord is the persisted audit row for one refresh run
type SchedulerJobRecord struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ReportType  string     `gorm:"column:report_type;size:50;not null"`
	Period      string     `gorm:"column:period;size:7"`
	Status      string     `gorm:"column:last_run_status;size:20"`
	Error       string     `gorm:"column:last_error;type:text"`
	StartedAt   *time.Time `gorm:"column:last_run_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	NextRunAt   *time.Time `gorm:"column:next_run_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (SchedulerJobRecord) TableName() string {
	return "report_scheduler_jobs"
}

// SchedulerJobRepository persists the refresh audit trail
type SchedulerJobRepository struct {
	db *gorm.DB
}

func NewSchedulerJobRepository(db *gorm.DB) *SchedulerJobRepository {
	return &SchedulerJobRepository{db: db}
}

// RecordJobStart opens an audit row and returns its id for the
// completion update
func (r *SchedulerJobRepository) RecordJobStart(ctx context.Context, reportType, period string) (uuid.UUID, error) {
	now := time.Now()
	record := &SchedulerJobRecord{
		ID:         uuid.New(),
		ReportType: reportType,
		Period:     period,
		Status:     string(JobStatusRunning),
		StartedAt:  &now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return uuid.Nil, err
	}
	return record.ID, nil
}

// RecordJobComplete closes an audit row with the outcome
func (r *SchedulerJobRepository) RecordJobComplete(ctx context.Context, jobID uuid.UUID, success bool, errMsg string) error {
	now := time.Now()
	status := string(JobStatusSuccess)
	if !success {
		status = string(JobStatusFailed)
	}
	return r.db.WithContext(ctx).
		Model(&SchedulerJobRecord{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"last_run_status": status,
			"last_error":      errMsg,
			"completed_at":    now,
			"updated_at":      now,
		}).Error
}

// GetLastJobStatus returns the most recent audit row for a report type
func (r *SchedulerJobRepository) GetLastJobStatus(ctx context.Context, reportType string) (*SchedulerJobRecord, error) {
	var record SchedulerJobRecord
	if err := r.db.WithContext(ctx).
		Where("report_type = ?", reportType).
		Order("last_run_at DESC").
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ReportCronScheduler implements cron-based scheduling for the nightly
// portfolio view refresh
type ReportCronScheduler struct {
	config    ReportCronSchedulerConfig
	executor  JobExecutor
	jobRepo   *SchedulerJobRepository
	logger    *zap.Logger
	scheduler *Scheduler

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastRunAt *time.Time
	nextRunAt *time.Time
}

func NewReportCronScheduler(
	config ReportCronSchedulerConfig,
	executor JobExecutor,
	jobRepo *SchedulerJobRepository,
	logger *zap.Logger,
) *ReportCronScheduler {
	schedulerConfig := SchedulerConfig{
		Enabled:           config.Enabled,
		MaxConcurrentJobs: config.MaxConcurrentJobs,
		JobTimeout:        config.JobTimeout,
		RetryAttempts:     config.RetryAttempts,
		RetryDelay:        config.RetryDelay,
	}
	scheduler := NewScheduler(schedulerConfig, executor, logger)

	return &ReportCronScheduler{
		config:    config,
		executor:  executor,
		jobRepo:   jobRepo,
		logger:    logger,
		scheduler: scheduler,
	}
}

// Start launches the worker pool and the cron loop; calling it twice
// is a no-op
func (s *ReportCronScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	if err := s.scheduler.Start(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.calculateNextRunTime()

	s.wg.Add(1)
	go s.cronLoop(ctx)

	s.logger.Info("report cron scheduler started",
		zap.Int("cron_hour", s.config.CronHour),
		zap.Int("cron_minute", s.config.CronMinute),
		zap.Timep("next_run_at", s.nextRunAt),
	)

	return nil
}

// Stop shuts down the cron loop first, then drains the worker pool
func (s *ReportCronScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
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
		if err := s.scheduler.Stop(ctx); err != nil {
			s.logger.Warn("error stopping report scheduler", zap.Error(err))
		}
		s.logger.Info("report cron scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("report cron scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *ReportCronScheduler) cronLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if s.shouldRun(now) {
				s.runNightlyRefresh(ctx)
				s.calculateNextRunTime()
			}
		}
	}
}

// shouldRun matches the ticker tick against the configured wall time;
// the minute-granularity ticker guarantees at most one match per day
func (s *ReportCronScheduler) shouldRun(now time.Time) bool {
	return now.Hour() == s.config.CronHour && now.Minute() == s.config.CronMinute
}

func (s *ReportCronScheduler) calculateNextRunTime() {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.config.CronHour, s.config.CronMinute, 0, 0, now.Location())

	if now.After(next) {
		next = next.AddDate(0, 0, 1)
	}

	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()
}

// runNightlyRefresh queues a recompute of every portfolio view for the
// latest servicing period, recording an audit row per view
func (s *ReportCronScheduler) runNightlyRefresh(ctx context.Context) {
	s.logger.Info("starting nightly portfolio view refresh")

	now := time.Now()
	s.mu.Lock()
	s.lastRunAt = &now
	s.mu.Unlock()

	period := LatestServicingPeriod(now)

	for _, reportType := range AllReportTypes() {
		var jobID uuid.UUID
		if s.jobRepo != nil {
			var recordErr error
			jobID, recordErr = s.jobRepo.RecordJobStart(ctx, string(reportType), period)
			if recordErr != nil {
				s.logger.Warn("failed to record refresh job start",
					zap.String("report_type", string(reportType)),
					zap.Error(recordErr),
				)
			}
		}

		job := NewJob(reportType, period, s.config.RetryAttempts)
		if err := s.scheduler.SubmitJob(job); err != nil {
			s.logger.Error("failed to submit report job",
				zap.String("report_type", string(reportType)),
				zap.Error(err),
			)
			if s.jobRepo != nil && jobID != uuid.Nil {
				_ = s.jobRepo.RecordJobComplete(ctx, jobID, false, err.Error())
			}
			continue
		}

		s.logger.Debug("report job queued",
			zap.String("report_type", string(reportType)),
			zap.String("period", period),
		)
	}

	s.logger.Info("nightly refresh jobs queued",
		zap.Int("report_types", len(AllReportTypes())),
		zap.String("period", period),
	)
}

// TriggerManualRun kicks off the nightly refresh out of schedule. It
// runs on a background context so the refresh survives the HTTP
// request that triggered it.
func (s *ReportCronScheduler) TriggerManualRun(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	go s.runNightlyRefresh(context.Background())
	return nil
}

// TriggerPeriodAggregation recomputes every view for a specific servicing period
func (s *ReportCronScheduler) TriggerPeriodAggregation(ctx context.Context, period string) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	for _, reportType := range AllReportTypes() {
		job := NewJob(reportType, period, s.config.RetryAttempts)
		if err := s.scheduler.SubmitJob(job); err != nil {
			return err
		}
	}
	return nil
}

// GetStatus snapshots the scheduler for the admin endpoint
func (s *ReportCronScheduler) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":       s.config.Enabled,
		"is_running":    s.isRunning,
		"cron_hour":     s.config.CronHour,
		"cron_minute":   s.config.CronMinute,
		"cron_schedule": "Daily",
		"last_run_at":   s.lastRunAt,
		"next_run_at":   s.nextRunAt,
		"report_types":  AllReportTypes(),
	}
}

// LastRunRecords returns the most recent audit row per report type;
// views that never ran are simply absent
func (s *ReportCronScheduler) LastRunRecords(ctx context.Context) ([]*SchedulerJobRecord, error) {
	if s.jobRepo == nil {
		return nil, nil
	}

	records := make([]*SchedulerJobRecord, 0, len(AllReportTypes()))
	for _, reportType := range AllReportTypes() {
		record, err := s.jobRepo.GetLastJobStatus(ctx, string(reportType))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
