package etl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	docapp "github.com/npl/backend/internal/application/document"
	"github.com/npl/backend/internal/domain/document"
	"github.com/npl/backend/internal/domain/etl"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/npl/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// VisionExtractor asks a vision model to read the canonical fields out
// of a bounded page range of a PDF
type VisionExtractor interface {
	ExtractFields(ctx context.Context, pdf []byte, startPage, endPage int) ([]etl.FieldResult, error)
}

// ExtractionConfig holds tunables for the extraction pipeline
type ExtractionConfig struct {
	Model           string
	PassSize        int
	Concurrency     int
	MaxPassAttempts int
}

// DefaultExtractionConfig returns the default configuration
func DefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		Model:           "gemini-2.0-flash",
		PassSize:        etl.DefaultPassPageSize,
		Concurrency:     3,
		MaxPassAttempts: etl.DefaultMaxPassAttempts,
	}
}

// ExtractionService runs valuation PDFs through the vision model in
// bounded page-range passes and merges the results
type ExtractionService struct {
	jobRepo        etl.JobRepository
	docRepo        document.DocumentRepository
	storage        docapp.ObjectStorageService
	extractor      VisionExtractor
	eventPublisher shared.EventPublisher
	config         ExtractionConfig
	logger         *zap.Logger
}

// NewExtractionService creates a new ExtractionService
func NewExtractionService(
	jobRepo etl.JobRepository,
	docRepo document.DocumentRepository,
	storage docapp.ObjectStorageService,
	extractor VisionExtractor,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *ExtractionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtractionService{
		jobRepo:        jobRepo,
		docRepo:        docRepo,
		storage:        storage,
		extractor:      extractor,
		eventPublisher: eventPublisher,
		config:         DefaultExtractionConfig(),
		logger:         logger,
	}
}

// SetConfig sets the service configuration
func (s *ExtractionService) SetConfig(config ExtractionConfig) {
	if config.Model == "" {
		config.Model = DefaultExtractionConfig().Model
	}
	if config.PassSize < 1 {
		config.PassSize = etl.DefaultPassPageSize
	}
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	if config.MaxPassAttempts < 1 {
		config.MaxPassAttempts = etl.DefaultMaxPassAttempts
	}
	s.config = config
}

// Start plans and runs an extraction job over an uploaded valuation PDF.
// The job runs to a terminal state before returning; the caller gets
// the finished job either way.
func (s *ExtractionService) Start(ctx context.Context, documentID uuid.UUID) (*JobResponse, error) {
	doc, err := s.docRepo.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.IsAvailable() {
		return nil, shared.NewDomainError("DOCUMENT_NOT_AVAILABLE", "Document upload has not been confirmed")
	}
	if !doc.IsPDF() {
		return nil, shared.NewDomainError("NOT_A_PDF", "Extraction only runs on PDF documents")
	}
	if doc.HubID == nil {
		return nil, shared.NewDomainError("NOT_ASSET_ANCHORED", "Extraction requires an asset-level document")
	}
	if doc.PageCount < 1 {
		return nil, shared.NewDomainError("UNKNOWN_PAGE_COUNT", "Document page count is not recorded")
	}

	active, err := s.jobRepo.FindActiveByDocument(ctx, documentID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if active != nil {
		return nil, shared.NewDomainError("JOB_ACTIVE", "An extraction job is already running for this document")
	}

	job, err := etl.NewExtractionJob(*doc.HubID, doc.ID, doc.PageCount, s.config.PassSize, s.config.MaxPassAttempts, s.config.Model)
	if err != nil {
		return nil, err
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		return nil, err
	}

	s.run(ctx, job, doc.StorageKey)

	response := ToJobResponse(job)
	return &response, nil
}

// run executes the job's passes against the vision model, retrying
// failed passes up to the attempt budget, then merges and completes.
// The job always lands in a terminal state.
func (s *ExtractionService) run(ctx context.Context, job *etl.ExtractionJob, storageKey string) {
	ctx, span := telemetry.StartServiceSpan(ctx, "extraction", "run_job")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrJobID, job.ID.String(),
		telemetry.SpanAttrDocumentID, job.DocumentID.String(),
		telemetry.SpanAttrPassCount, len(job.Passes),
	)

	if err := job.Start(); err != nil {
		telemetry.RecordError(span, err)
		return
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		s.logger.Error("failed to persist running job", zap.Error(err))
	}

	pdf, err := s.storage.Download(ctx, storageKey)
	if err != nil {
		telemetry.RecordError(span, err)
		s.failJob(ctx, job, "failed to fetch document from storage")
		return
	}

	var (
		mu          sync.Mutex
		passResults []etl.PassResult
	)

	for {
		passes := job.RetryablePasses()
		if len(passes) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.config.Concurrency)

		for _, p := range passes {
			pass := p
			g.Go(func() error {
				var (
					fields     []etl.FieldResult
					extractErr error
				)
				// Label the pass so vision-call CPU time is separable
				// in profiles
				telemetry.WithProfilingLabels(gctx, telemetry.OperationLabels("extraction_pass", nil), func(c context.Context) {
					fields, extractErr = s.extractor.ExtractFields(c, pdf, pass.StartPage, pass.EndPage)
				})

				mu.Lock()
				defer mu.Unlock()
				if extractErr != nil {
					s.logger.Warn("extraction pass failed",
						zap.String("job_id", job.ID.String()),
						zap.Int("sequence", pass.Sequence),
						zap.Int("attempt", pass.Attempts+1),
						zap.Error(extractErr))
					return job.FailPass(pass.ID, extractErr.Error())
				}

				raw, _ := json.Marshal(fields)
				if err := job.CompletePass(pass.ID, string(raw)); err != nil {
					return err
				}
				passResults = append(passResults, etl.PassResult{
					PassSequence: pass.Sequence,
					Fields:       fields,
				})
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			telemetry.RecordError(span, err)
			s.failJob(ctx, job, err.Error())
			return
		}
	}

	if !job.AllPassesCompleted() {
		s.failJob(ctx, job, fmt.Sprintf("passes exhausted after %d attempts", job.MaxAttempts))
		return
	}

	if err := job.BeginMerge(); err != nil {
		telemetry.RecordError(span, err)
		s.failJob(ctx, job, err.Error())
		return
	}

	merged := etl.Merge(passResults)
	if err := job.Complete(merged); err != nil {
		telemetry.RecordError(span, err)
		s.failJob(ctx, job, err.Error())
		return
	}
	if err := s.saveAndPublish(ctx, job); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("failed to persist completed job",
			zap.String("job_id", job.ID.String()),
			zap.Error(err))
		return
	}

	telemetry.AddEvent(span, "extraction_job_completed",
		"fields_merged", len(merged.Fields))
	s.logger.Info("extraction job completed",
		zap.String("job_id", job.ID.String()),
		zap.String("hub_id", job.HubID.String()),
		zap.Int("fields", len(merged.Fields)))
}

// GetByID retrieves a job by ID
func (s *ExtractionService) GetByID(ctx context.Context, jobID uuid.UUID) (*JobResponse, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	response := ToJobResponse(job)
	return &response, nil
}

// ListByHub retrieves extraction jobs for an asset
func (s *ExtractionService) ListByHub(ctx context.Context, hubID uuid.UUID, filter shared.Filter) ([]JobResponse, error) {
	jobs, err := s.jobRepo.FindByHub(ctx, hubID, filter)
	if err != nil {
		return nil, err
	}
	return ToJobResponses(jobs), nil
}

// ListByDocument retrieves all jobs ever run against a document
func (s *ExtractionService) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]JobResponse, error) {
	jobs, err := s.jobRepo.FindByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return ToJobResponses(jobs), nil
}

// ListByStatus retrieves jobs in one state
func (s *ExtractionService) ListByStatus(ctx context.Context, status etl.JobStatus, filter shared.Filter) ([]JobResponse, error) {
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown job status: "+status.String())
	}
	jobs, err := s.jobRepo.FindByStatus(ctx, status, filter)
	if err != nil {
		return nil, err
	}
	return ToJobResponses(jobs), nil
}

// Result re-merges the audited per-pass outputs of a completed job
func (s *ExtractionService) Result(ctx context.Context, jobID uuid.UUID) (*ExtractionResultResponse, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != etl.JobStatusCompleted {
		return nil, shared.NewDomainError("JOB_NOT_COMPLETED", "Job has no merged result in "+job.Status.String())
	}

	var passResults []etl.PassResult
	for i := range job.Passes {
		p := &job.Passes[i]
		if p.RawOutput == "" {
			continue
		}
		var fields []etl.FieldResult
		if err := json.Unmarshal([]byte(p.RawOutput), &fields); err != nil {
			s.logger.Warn("unreadable pass output",
				zap.String("job_id", job.ID.String()),
				zap.Int("sequence", p.Sequence))
			continue
		}
		passResults = append(passResults, etl.PassResult{
			PassSequence: p.Sequence,
			Fields:       fields,
		})
	}

	response := ToExtractionResultResponse(job.ID, etl.Merge(passResults))
	return &response, nil
}

func (s *ExtractionService) failJob(ctx context.Context, job *etl.ExtractionJob, reason string) {
	if err := job.Fail(reason); err != nil {
		return
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		s.logger.Error("failed to persist failed job",
			zap.String("job_id", job.ID.String()),
			zap.Error(err))
	}
	s.logger.Warn("extraction job failed",
		zap.String("job_id", job.ID.String()),
		zap.String("reason", reason))
}

func (s *ExtractionService) saveAndPublish(ctx context.Context, job *etl.ExtractionJob) error {
	events := job.GetDomainEvents()
	job.ClearDomainEvents()

	if err := s.jobRepo.Save(ctx, job); err != nil {
		return err
	}

	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			// The write has committed; event delivery failures are logged,
			// not surfaced to the caller.
			s.logger.Error("failed to publish job events",
				zap.String("job_id", job.ID.String()),
				zap.Error(err))
		}
	}
	return nil
}
