package etl

import (
	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeExtractionJob = "ExtractionJob"

// Event type constants
const (
	EventTypeJobCompleted = "ExtractionJobCompleted"
)

// JobCompletedEvent is raised when an extraction job completes with a
// merged result. The valuation writer turns it into an EXTRACTION
// valuation row.
type JobCompletedEvent struct {
	shared.BaseDomainEvent
	JobID      uuid.UUID    `json:"job_id"`
	HubID      uuid.UUID    `json:"hub_id"`
	DocumentID uuid.UUID    `json:"document_id"`
	Result     MergedResult `json:"result"`
}

// NewJobCompletedEvent creates a new JobCompletedEvent
func NewJobCompletedEvent(j *ExtractionJob, result MergedResult) *JobCompletedEvent {
	return &JobCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJobCompleted, AggregateTypeExtractionJob, j.ID),
		JobID:           j.ID,
		HubID:           j.HubID,
		DocumentID:      j.DocumentID,
		Result:          result,
	}
}

// EventType returns the event type name
func (e *JobCompletedEvent) EventType() string {
	return EventTypeJobCompleted
}
