package etl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/document"
	"github.com/npl/backend/internal/domain/etl"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockJobRepository is a mock implementation of etl.JobRepository
type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*etl.ExtractionJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*etl.ExtractionJob), args.Error(1)
}

func (m *MockJobRepository) FindByHub(ctx context.Context, hubID uuid.UUID, filter shared.Filter) ([]etl.ExtractionJob, error) {
	args := m.Called(ctx, hubID, filter)
	return args.Get(0).([]etl.ExtractionJob), args.Error(1)
}

func (m *MockJobRepository) FindByDocument(ctx context.Context, documentID uuid.UUID) ([]etl.ExtractionJob, error) {
	args := m.Called(ctx, documentID)
	return args.Get(0).([]etl.ExtractionJob), args.Error(1)
}

func (m *MockJobRepository) FindByStatus(ctx context.Context, status etl.JobStatus, filter shared.Filter) ([]etl.ExtractionJob, error) {
	args := m.Called(ctx, status, filter)
	return args.Get(0).([]etl.ExtractionJob), args.Error(1)
}

func (m *MockJobRepository) FindActiveByDocument(ctx context.Context, documentID uuid.UUID) (*etl.ExtractionJob, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*etl.ExtractionJob), args.Error(1)
}

func (m *MockJobRepository) Save(ctx context.Context, job *etl.ExtractionJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobRepository) CountByStatus(ctx context.Context, status etl.JobStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockDocumentRepository is a mock implementation of document.DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByHub(ctx context.Context, hubID uuid.UUID, filter shared.Filter) ([]document.Document, error) {
	args := m.Called(ctx, hubID, filter)
	return args.Get(0).([]document.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByTrade(ctx context.Context, tradeID uuid.UUID, filter shared.Filter) ([]document.Document, error) {
	args := m.Called(ctx, tradeID, filter)
	return args.Get(0).([]document.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByHubAndType(ctx context.Context, hubID uuid.UUID, docType document.DocumentType) ([]document.Document, error) {
	args := m.Called(ctx, hubID, docType)
	return args.Get(0).([]document.Document), args.Error(1)
}

func (m *MockDocumentRepository) Save(ctx context.Context, doc *document.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) CountByHub(ctx context.Context, hubID uuid.UUID) (int64, error) {
	args := m.Called(ctx, hubID)
	return args.Get(0).(int64), args.Error(1)
}

// MockObjectStorage is a mock implementation of docapp.ObjectStorageService
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

func (m *MockObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	args := m.Called(ctx, storageKey)
	return args.Bool(0), args.Error(1)
}

func (m *MockObjectStorage) Download(ctx context.Context, storageKey string) ([]byte, error) {
	args := m.Called(ctx, storageKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// stubExtractor routes each page range through a programmable callback.
// Extraction runs concurrently, so calls are tracked under a lock.
type stubExtractor struct {
	mu      sync.Mutex
	calls   map[string]int
	respond func(startPage, endPage, attempt int) ([]etl.FieldResult, error)
}

func newStubExtractor(respond func(startPage, endPage, attempt int) ([]etl.FieldResult, error)) *stubExtractor {
	return &stubExtractor{
		calls:   make(map[string]int),
		respond: respond,
	}
}

func (s *stubExtractor) ExtractFields(_ context.Context, _ []byte, startPage, endPage int) ([]etl.FieldResult, error) {
	s.mu.Lock()
	key := fmt.Sprintf("%d-%d", startPage, endPage)
	s.calls[key]++
	attempt := s.calls[key]
	s.mu.Unlock()
	return s.respond(startPage, endPage, attempt)
}

type etlFixture struct {
	jobRepo   *MockJobRepository
	docRepo   *MockDocumentRepository
	storage   *MockObjectStorage
	publisher *MockEventPublisher
}

func (f *etlFixture) service(extractor VisionExtractor) *ExtractionService {
	return NewExtractionService(f.jobRepo, f.docRepo, f.storage, extractor, f.publisher, nil)
}

func newETLFixture() *etlFixture {
	return &etlFixture{
		jobRepo:   new(MockJobRepository),
		docRepo:   new(MockDocumentRepository),
		storage:   new(MockObjectStorage),
		publisher: new(MockEventPublisher),
	}
}

func availablePDF(t *testing.T, pageCount int) *document.Document {
	hubID := uuid.New()
	doc, err := document.NewDocument(&hubID, nil, document.DocTypeValuation, "appraisal.pdf", "application/pdf")
	require.NoError(t, err)
	require.NoError(t, doc.ConfirmUpload(512000, pageCount, nil))
	return doc
}

func TestExtractionService_Start_CompletesAndPublishes(t *testing.T) {
	f := newETLFixture()
	ctx := context.Background()
	doc := availablePDF(t, 12)

	f.docRepo.On("FindByID", ctx, doc.ID).Return(doc, nil)
	f.jobRepo.On("FindActiveByDocument", ctx, doc.ID).Return(nil, shared.ErrNotFound)
	f.jobRepo.On("Save", ctx, mock.AnythingOfType("*etl.ExtractionJob")).Return(nil)
	f.storage.On("Download", ctx, doc.StorageKey).Return([]byte("%PDF-1.7"), nil)

	var published []shared.DomainEvent
	f.publisher.On("Publish", ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			published = args.Get(1).([]shared.DomainEvent)
		}).Return(nil)

	// Pass 1 reads the summary page; pass 2 repeats the value at lower
	// confidence deeper in the report.
	extractor := newStubExtractor(func(startPage, _, _ int) ([]etl.FieldResult, error) {
		if startPage == 1 {
			return []etl.FieldResult{
				{Field: etl.FieldAsIsValue, Value: "205000", Confidence: 0.92, Page: 1},
				{Field: etl.FieldEffectiveDate, Value: "2024-05-20", Confidence: 0.88, Page: 1},
			}, nil
		}
		return []etl.FieldResult{
			{Field: etl.FieldAsIsValue, Value: "199000", Confidence: 0.61, Page: 11},
			{Field: etl.FieldVendorName, Value: "Acme Valuations", Confidence: 0.8, Page: 12},
		}, nil
	})

	result, err := f.service(extractor).Start(ctx, doc.ID)

	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", result.Status)
	require.Len(t, result.Passes, 2)
	assert.Equal(t, 1, result.Passes[0].StartPage)
	assert.Equal(t, 10, result.Passes[0].EndPage)
	assert.Equal(t, 11, result.Passes[1].StartPage)
	assert.Equal(t, 12, result.Passes[1].EndPage)

	require.Len(t, published, 1)
	completed, ok := published[0].(*etl.JobCompletedEvent)
	require.True(t, ok)
	asIs, ok := completed.Result.Get(etl.FieldAsIsValue)
	require.True(t, ok)
	assert.Equal(t, "205000", asIs.Value)
	vendor, ok := completed.Result.Get(etl.FieldVendorName)
	require.True(t, ok)
	assert.Equal(t, "Acme Valuations", vendor.Value)
}

func TestExtractionService_Start_RetriesFailedPass(t *testing.T) {
	f := newETLFixture()
	ctx := context.Background()
	doc := availablePDF(t, 8)

	f.docRepo.On("FindByID", ctx, doc.ID).Return(doc, nil)
	f.jobRepo.On("FindActiveByDocument", ctx, doc.ID).Return(nil, shared.ErrNotFound)
	f.jobRepo.On("Save", ctx, mock.AnythingOfType("*etl.ExtractionJob")).Return(nil)
	f.storage.On("Download", ctx, doc.StorageKey).Return([]byte("%PDF-1.7"), nil)
	f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

	extractor := newStubExtractor(func(_, _, attempt int) ([]etl.FieldResult, error) {
		if attempt < 2 {
			return nil, errors.New("model timeout")
		}
		return []etl.FieldResult{
			{Field: etl.FieldAsIsValue, Value: "150000", Confidence: 0.9, Page: 1},
		}, nil
	})

	result, err := f.service(extractor).Start(ctx, doc.ID)

	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", result.Status)
	require.Len(t, result.Passes, 1)
	assert.Equal(t, 2, result.Passes[0].Attempts)
}

func TestExtractionService_Start_ExhaustedPassFailsJob(t *testing.T) {
	f := newETLFixture()
	ctx := context.Background()
	doc := availablePDF(t, 5)

	f.docRepo.On("FindByID", ctx, doc.ID).Return(doc, nil)
	f.jobRepo.On("FindActiveByDocument", ctx, doc.ID).Return(nil, shared.ErrNotFound)
	f.jobRepo.On("Save", ctx, mock.AnythingOfType("*etl.ExtractionJob")).Return(nil)
	f.storage.On("Download", ctx, doc.StorageKey).Return([]byte("%PDF-1.7"), nil)

	extractor := newStubExtractor(func(_, _, _ int) ([]etl.FieldResult, error) {
		return nil, errors.New("model unavailable")
	})

	result, err := f.service(extractor).Start(ctx, doc.ID)

	require.NoError(t, err)
	assert.Equal(t, "FAILED", result.Status)
	assert.NotEmpty(t, result.FailReason)
	require.Len(t, result.Passes, 1)
	assert.Equal(t, etl.DefaultMaxPassAttempts, result.Passes[0].Attempts)
	assert.Equal(t, "model unavailable", result.Passes[0].LastError)
	f.publisher.AssertNotCalled(t, "Publish")
}

func TestExtractionService_Start_ConfiguredAttemptCap(t *testing.T) {
	f := newETLFixture()
	ctx := context.Background()
	doc := availablePDF(t, 5)

	f.docRepo.On("FindByID", ctx, doc.ID).Return(doc, nil)
	f.jobRepo.On("FindActiveByDocument", ctx, doc.ID).Return(nil, shared.ErrNotFound)
	f.jobRepo.On("Save", ctx, mock.AnythingOfType("*etl.ExtractionJob")).Return(nil)
	f.storage.On("Download", ctx, doc.StorageKey).Return([]byte("%PDF-1.7"), nil)

	extractor := newStubExtractor(func(_, _, _ int) ([]etl.FieldResult, error) {
		return nil, errors.New("model unavailable")
	})

	svc := f.service(extractor)
	svc.SetConfig(ExtractionConfig{MaxPassAttempts: 5})

	result, err := svc.Start(ctx, doc.ID)

	require.NoError(t, err)
	assert.Equal(t, "FAILED", result.Status)
	require.Len(t, result.Passes, 1)
	assert.Equal(t, 5, result.Passes[0].Attempts)
	assert.Contains(t, result.FailReason, "5 attempts")
}

func TestExtractionService_Start_ActiveJobRejected(t *testing.T) {
	f := newETLFixture()
	ctx := context.Background()
	doc := availablePDF(t, 5)

	running, err := etl.NewExtractionJob(uuid.New(), doc.ID, 5, 10, 3, "gemini-2.0-flash")
	require.NoError(t, err)

	f.docRepo.On("FindByID", ctx, doc.ID).Return(doc, nil)
	f.jobRepo.On("FindActiveByDocument", ctx, doc.ID).Return(running, nil)

	result, err := f.service(newStubExtractor(nil)).Start(ctx, doc.ID)

	assert.Error(t, err)
	assert.Nil(t, result)
	f.jobRepo.AssertNotCalled(t, "Save")
}

func TestExtractionService_Start_PendingDocumentRejected(t *testing.T) {
	f := newETLFixture()
	ctx := context.Background()
	hubID := uuid.New()
	doc, err := document.NewDocument(&hubID, nil, document.DocTypeValuation, "appraisal.pdf", "application/pdf")
	require.NoError(t, err)

	f.docRepo.On("FindByID", ctx, doc.ID).Return(doc, nil)

	result, err := f.service(newStubExtractor(nil)).Start(ctx, doc.ID)

	assert.Error(t, err)
	assert.Nil(t, result)
	f.jobRepo.AssertNotCalled(t, "FindActiveByDocument")
}

func TestExtractionService_Start_NonPDFRejected(t *testing.T) {
	f := newETLFixture()
	ctx := context.Background()
	hubID := uuid.New()
	doc, err := document.NewDocument(&hubID, nil, document.DocTypeTape, "tape.csv", "text/csv")
	require.NoError(t, err)
	require.NoError(t, doc.ConfirmUpload(2048, 0, nil))

	f.docRepo.On("FindByID", ctx, doc.ID).Return(doc, nil)

	result, err := f.service(newStubExtractor(nil)).Start(ctx, doc.ID)

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestExtractionService_Result_RemergesAuditedOutputs(t *testing.T) {
	f := newETLFixture()
	ctx := context.Background()

	job, err := etl.NewExtractionJob(uuid.New(), uuid.New(), 12, 10, 3, "gemini-2.0-flash")
	require.NoError(t, err)
	require.NoError(t, job.Start())
	require.NoError(t, job.CompletePass(job.Passes[0].ID,
		`[{"field":"as_is_value","value":"205000","confidence":0.92,"page":1}]`))
	require.NoError(t, job.CompletePass(job.Passes[1].ID,
		`[{"field":"as_is_value","value":"199000","confidence":0.61,"page":11},{"field":"arv_value","value":"255000","confidence":0.7,"page":12}]`))
	require.NoError(t, job.BeginMerge())
	require.NoError(t, job.Complete(etl.MergedResult{}))

	f.jobRepo.On("FindByID", ctx, job.ID).Return(job, nil)

	result, err := f.service(newStubExtractor(nil)).Result(ctx, job.ID)

	require.NoError(t, err)
	assert.Equal(t, "205000", result.Fields[etl.FieldAsIsValue].Value)
	assert.Equal(t, "255000", result.Fields[etl.FieldARVValue].Value)
}

func TestExtractionService_Result_IncompleteJobRejected(t *testing.T) {
	f := newETLFixture()
	ctx := context.Background()

	job, err := etl.NewExtractionJob(uuid.New(), uuid.New(), 5, 10, 3, "gemini-2.0-flash")
	require.NoError(t, err)

	f.jobRepo.On("FindByID", ctx, job.ID).Return(job, nil)

	result, err := f.service(newStubExtractor(nil)).Result(ctx, job.ID)

	assert.Error(t, err)
	assert.Nil(t, result)
}
