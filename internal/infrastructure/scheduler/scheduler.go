package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus tracks a report job through its lifecycle
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// ReportType names a portfolio view to recompute
type ReportType string

const (
	ReportTypePortfolioSummary  ReportType = "PORTFOLIO_SUMMARY"
	ReportTypeTradePipeline     ReportType = "TRADE_PIPELINE"
	ReportTypeDelinquency       ReportType = "DELINQUENCY_DISTRIBUTION"
	ReportTypeTrackSummary      ReportType = "TRACK_SUMMARY"
	ReportTypeValuationCoverage ReportType = "VALUATION_COVERAGE"
)

// AllReportTypes lists every view the nightly refresh recomputes
func AllReportTypes() []ReportType {
	return []ReportType{
		ReportTypePortfolioSummary,
		ReportTypeTradePipeline,
		ReportTypeDelinquency,
		ReportTypeTrackSummary,
		ReportTypeValuationCoverage,
	}
}

// Job is one report recomputation with its retry bookkeeping
type Job struct {
	ID          uuid.UUID
	ReportType  ReportType
	Period      string // YYYY-MM, set for servicing-derived views
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
}

func NewJob(reportType ReportType, period string, maxRetries int) *Job {
	return &Job{
		ID:         uuid.New(),
		ReportType: reportType,
		Period:     period,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the job running and clears any error from a prior attempt
func (j *Job) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

func (j *Job) Complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

func (j *Job) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry reports whether the job still has retry budget left
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry moves the job back to pending with a delay before the
// next attempt
func (j *Job) ScheduleRetry(delay time.Duration) {
	j.RetryCount++
	j.Status = JobStatusPending
	nextRetry := time.Now().Add(delay)
	j.NextRetryAt = &nextRetry
	j.Error = ""
}

// JobExecutor computes one report; implementations live in the
// reporting layer
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}

// SchedulerConfig tunes the worker pool behind report jobs
type SchedulerConfig struct {
	Enabled           bool
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:           true,
		MaxConcurrentJobs: 3,
		JobTimeout:        30 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Minute,
	}
}

// jobQueueCapacity bounds the submit queue; a full queue rejects with
// ErrJobQueueFull rather than blocking the caller
const jobQueueCapacity = 100

// Scheduler runs report jobs on a bounded worker pool
type Scheduler struct {
	config   SchedulerConfig
	executor JobExecutor
	logger   *zap.Logger

	jobs      chan *Job
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

func NewScheduler(config SchedulerConfig, executor JobExecutor, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		config:   config,
		executor: executor,
		logger:   logger,
		jobs:     make(chan *Job, jobQueueCapacity),
	}
}

// Start spins up the worker pool; calling it twice is a no-op
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("report scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop drains the workers, giving up when ctx expires
func (s *Scheduler) Stop(ctx context.Context) error {
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
	close(s.jobs)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("report scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("report scheduler stop timed out")
		return ctx.Err()
	}
}

// SubmitJob queues a job without blocking; a stopped scheduler or a
// full queue is reported as an error
func (s *Scheduler) SubmitJob(job *Job) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	select {
	case s.jobs <- job:
		s.logger.Debug("report job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("report_type", string(job.ReportType)),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			s.runJob(ctx, job, workerID)
		}
	}
}

// requeue puts a job back on the queue, dropping it with a warning if
// the queue is full
func (s *Scheduler) requeue(job *Job) {
	select {
	case s.jobs <- job:
	default:
		s.logger.Warn("failed to requeue report job",
			zap.String("job_id", job.ID.String()),
			zap.String("report_type", string(job.ReportType)),
		)
	}
}

func (s *Scheduler) runJob(ctx context.Context, job *Job, workerID int) {
	// A retry whose backoff has not lapsed goes back on the queue
	if job.NextRetryAt != nil && time.Now().Before(*job.NextRetryAt) {
		s.requeue(job)
		return
	}

	job.Start()
	s.logger.Info("running report job",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("report_type", string(job.ReportType)),
	)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	if err := s.executor.Execute(jobCtx, job); err != nil {
		job.Fail(err.Error())
		s.logger.Error("report job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("report_type", string(job.ReportType)),
			zap.Error(err),
		)

		if job.ShouldRetry() {
			job.ScheduleRetry(s.config.RetryDelay)
			s.logger.Info("report job scheduled for retry",
				zap.String("job_id", job.ID.String()),
				zap.Int("retry_count", job.RetryCount),
				zap.Int("max_retries", job.MaxRetries),
			)
			s.requeue(job)
		}
		return
	}

	job.Complete()
	s.logger.Info("report job completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("report_type", string(job.ReportType)),
	)
}

// LatestServicingPeriod returns the YYYY-MM of the last full month,
// which is the most recent period a servicer file can cover.
func LatestServicingPeriod(now time.Time) string {
	return now.AddDate(0, -1, 0).Format("2006-01")
}

// ScheduleDailyReports queues a refresh of every portfolio view for
// the latest servicing period
func (s *Scheduler) ScheduleDailyReports() error {
	period := LatestServicingPeriod(time.Now())

	for _, reportType := range AllReportTypes() {
		job := NewJob(reportType, period, s.config.RetryAttempts)
		if err := s.SubmitJob(job); err != nil {
			return err
		}
	}
	return nil
}

// ScheduleReport queues a single view for recomputation
func (s *Scheduler) ScheduleReport(reportType ReportType, period string) error {
	job := NewJob(reportType, period, s.config.RetryAttempts)
	return s.SubmitJob(job)
}
