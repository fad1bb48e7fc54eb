package etl

import (
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
)

// JobStatus represents the state of an extraction job
type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusMerging   JobStatus = "MERGING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
)

// IsValid checks if the status is a valid JobStatus
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusRunning, JobStatusMerging, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses with no outgoing transitions
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransitionTo checks if the status can transition to the target status
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	switch s {
	case JobStatusPending:
		return target == JobStatusRunning || target == JobStatusFailed
	case JobStatusRunning:
		return target == JobStatusMerging || target == JobStatusFailed
	case JobStatusMerging:
		return target == JobStatusCompleted || target == JobStatusFailed
	case JobStatusCompleted, JobStatusFailed:
		return false // Terminal states
	}
	return false
}

// PassStatus represents the state of one extraction pass
type PassStatus string

const (
	PassStatusPending   PassStatus = "PENDING"
	PassStatusCompleted PassStatus = "COMPLETED"
	PassStatusFailed    PassStatus = "FAILED"
)

// DefaultPassPageSize bounds how many document pages one model call
// sees; large reports are split into this many pages per pass.
const DefaultPassPageSize = 10

// DefaultMaxPassAttempts is how many times a failed pass is retried
// before the job fails, unless the job was planned with its own cap.
const DefaultMaxPassAttempts = 3

// ExtractionJob runs a document through the vision model in bounded
// page-range passes and merges the per-pass field results.
type ExtractionJob struct {
	shared.BaseAggregateRoot
	HubID       uuid.UUID `gorm:"type:uuid;not null;index"`
	DocumentID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Status      JobStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PageCount   int       `gorm:"not null"`
	PassSize    int       `gorm:"not null"`
	MaxAttempts int       `gorm:"not null;default:3"`
	Model       string    `gorm:"type:varchar(100);not null"`
	FailReason  string    `gorm:"type:varchar(500)"`
	StartedAt   *time.Time
	CompletedAt *time.Time
	Passes      []ExtractionPass `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ExtractionJob) TableName() string {
	return "extraction_jobs"
}

// ExtractionPass is one bounded page-range model call within a job
type ExtractionPass struct {
	shared.BaseEntity
	JobID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Sequence  int        `gorm:"not null"`
	StartPage int        `gorm:"not null"` // 1-based, inclusive
	EndPage   int        `gorm:"not null"` // Inclusive
	Status    PassStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Attempts  int        `gorm:"not null;default:0"`
	LastError string     `gorm:"type:varchar(500)"`
	RawOutput string     `gorm:"type:jsonb"` // Model JSON for the pass, kept for audit
}

// TableName returns the table name for GORM
func (ExtractionPass) TableName() string {
	return "extraction_passes"
}

// NewExtractionJob plans a job over a document, splitting its pages
// into sequential passes of at most passSize pages. maxAttempts caps
// retries per pass.
func NewExtractionJob(hubID, documentID uuid.UUID, pageCount, passSize, maxAttempts int, model string) (*ExtractionJob, error) {
	if hubID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_HUB", "Hub ID cannot be empty")
	}
	if documentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DOCUMENT", "Document ID cannot be empty")
	}
	if pageCount < 1 {
		return nil, shared.NewDomainError("INVALID_PAGE_COUNT", "Document must have at least one page")
	}
	if model == "" {
		return nil, shared.NewDomainError("INVALID_MODEL", "Model name cannot be empty")
	}
	if passSize < 1 {
		passSize = DefaultPassPageSize
	}
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxPassAttempts
	}

	job := &ExtractionJob{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		HubID:             hubID,
		DocumentID:        documentID,
		Status:            JobStatusPending,
		PageCount:         pageCount,
		PassSize:          passSize,
		MaxAttempts:       maxAttempts,
		Model:             model,
	}

	seq := 0
	for start := 1; start <= pageCount; start += passSize {
		end := start + passSize - 1
		if end > pageCount {
			end = pageCount
		}
		job.Passes = append(job.Passes, ExtractionPass{
			BaseEntity: shared.NewBaseEntity(),
			JobID:      job.ID,
			Sequence:   seq,
			StartPage:  start,
			EndPage:    end,
			Status:     PassStatusPending,
		})
		seq++
	}

	return job, nil
}

// Start moves the job into RUNNING
func (j *ExtractionJob) Start() error {
	if !j.Status.CanTransitionTo(JobStatusRunning) {
		return shared.NewDomainError("INVALID_STATE", "Job cannot start from "+j.Status.String())
	}
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.UpdatedAt = now
	j.IncrementVersion()
	return nil
}

// CompletePass records a successful model call for the pass
func (j *ExtractionJob) CompletePass(passID uuid.UUID, rawOutput string) error {
	p := j.findPass(passID)
	if p == nil {
		return shared.ErrNotFound
	}
	if p.Status == PassStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Pass is already completed")
	}
	p.Status = PassStatusCompleted
	p.Attempts++
	p.LastError = ""
	p.RawOutput = rawOutput
	p.UpdatedAt = time.Now()
	return nil
}

// FailPass records a failed attempt. The pass stays retryable until
// the job's attempt cap is exhausted, at which point it is marked FAILED.
func (j *ExtractionJob) FailPass(passID uuid.UUID, reason string) error {
	p := j.findPass(passID)
	if p == nil {
		return shared.ErrNotFound
	}
	if p.Status == PassStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Completed passes cannot fail")
	}
	p.Attempts++
	p.LastError = reason
	if p.Attempts >= j.attemptCap() {
		p.Status = PassStatusFailed
	}
	p.UpdatedAt = time.Now()
	return nil
}

// AllPassesCompleted reports whether every pass has finished cleanly
func (j *ExtractionJob) AllPassesCompleted() bool {
	for i := range j.Passes {
		if j.Passes[i].Status != PassStatusCompleted {
			return false
		}
	}
	return len(j.Passes) > 0
}

// RetryablePasses returns passes that still have attempts left
func (j *ExtractionJob) RetryablePasses() []*ExtractionPass {
	var out []*ExtractionPass
	for i := range j.Passes {
		p := &j.Passes[i]
		if p.Status == PassStatusPending && p.Attempts < j.attemptCap() {
			out = append(out, p)
		}
	}
	return out
}

// BeginMerge moves the job into MERGING once all passes are complete
func (j *ExtractionJob) BeginMerge() error {
	if !j.Status.CanTransitionTo(JobStatusMerging) {
		return shared.NewDomainError("INVALID_STATE", "Job cannot merge from "+j.Status.String())
	}
	if !j.AllPassesCompleted() {
		return shared.NewDomainError("PASSES_INCOMPLETE", "All passes must complete before merging")
	}
	j.Status = JobStatusMerging
	j.UpdatedAt = time.Now()
	j.IncrementVersion()
	return nil
}

// Complete finishes the job with its merged result. The valuation
// writer consumes the resulting event.
func (j *ExtractionJob) Complete(result MergedResult) error {
	if !j.Status.CanTransitionTo(JobStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE", "Job cannot complete from "+j.Status.String())
	}
	now := time.Now()
	j.Status = JobStatusCompleted
	j.CompletedAt = &now
	j.UpdatedAt = now
	j.IncrementVersion()

	j.AddDomainEvent(NewJobCompletedEvent(j, result))
	return nil
}

// Fail aborts the job
func (j *ExtractionJob) Fail(reason string) error {
	if j.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Job is already finished")
	}
	now := time.Now()
	j.Status = JobStatusFailed
	j.FailReason = reason
	j.CompletedAt = &now
	j.UpdatedAt = now
	j.IncrementVersion()
	return nil
}

// attemptCap guards rows persisted before the cap became a column
func (j *ExtractionJob) attemptCap() int {
	if j.MaxAttempts < 1 {
		return DefaultMaxPassAttempts
	}
	return j.MaxAttempts
}

func (j *ExtractionJob) findPass(passID uuid.UUID) *ExtractionPass {
	for i := range j.Passes {
		if j.Passes[i].ID == passID {
			return &j.Passes[i]
		}
	}
	return nil
}
