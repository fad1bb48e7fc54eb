package etl

import (
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/etl"
)

// PassResponse is the API representation of one extraction pass
type PassResponse struct {
	ID        uuid.UUID `json:"id"`
	Sequence  int       `json:"sequence"`
	StartPage int       `json:"start_page"`
	EndPage   int       `json:"end_page"`
	Status    string    `json:"status"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"last_error,omitempty"`
}

// JobResponse is the API representation of an extraction job
type JobResponse struct {
	ID          uuid.UUID      `json:"id"`
	HubID       uuid.UUID      `json:"hub_id"`
	DocumentID  uuid.UUID      `json:"document_id"`
	Status      string         `json:"status"`
	PageCount   int            `json:"page_count"`
	PassSize    int            `json:"pass_size"`
	MaxAttempts int            `json:"max_attempts"`
	Model       string         `json:"model"`
	FailReason  string         `json:"fail_reason,omitempty"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Passes      []PassResponse `json:"passes,omitempty"`
	Version     int            `json:"version"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ToJobResponse converts a job to its API representation
func ToJobResponse(j *etl.ExtractionJob) JobResponse {
	resp := JobResponse{
		ID:          j.ID,
		HubID:       j.HubID,
		DocumentID:  j.DocumentID,
		Status:      j.Status.String(),
		PageCount:   j.PageCount,
		PassSize:    j.PassSize,
		MaxAttempts: j.MaxAttempts,
		Model:       j.Model,
		FailReason:  j.FailReason,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
		Version:     j.Version,
		CreatedAt:   j.CreatedAt,
	}
	for i := range j.Passes {
		p := &j.Passes[i]
		resp.Passes = append(resp.Passes, PassResponse{
			ID:        p.ID,
			Sequence:  p.Sequence,
			StartPage: p.StartPage,
			EndPage:   p.EndPage,
			Status:    string(p.Status),
			Attempts:  p.Attempts,
			LastError: p.LastError,
		})
	}
	return resp
}

// ToJobResponses converts a slice of jobs
func ToJobResponses(jobs []etl.ExtractionJob) []JobResponse {
	out := make([]JobResponse, len(jobs))
	for i := range jobs {
		out[i] = ToJobResponse(&jobs[i])
	}
	return out
}

// FieldResultResponse is one merged field observation
type FieldResultResponse struct {
	Field      string  `json:"field"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Page       int     `json:"page"`
}

// ExtractionResultResponse is the document-level merged result
type ExtractionResultResponse struct {
	JobID  uuid.UUID                      `json:"job_id"`
	Fields map[string]FieldResultResponse `json:"fields"`
}

// ToExtractionResultResponse converts a merged result to its API representation
func ToExtractionResultResponse(jobID uuid.UUID, merged etl.MergedResult) ExtractionResultResponse {
	resp := ExtractionResultResponse{
		JobID:  jobID,
		Fields: make(map[string]FieldResultResponse, len(merged.Fields)),
	}
	for name, fr := range merged.Fields {
		resp.Fields[name] = FieldResultResponse{
			Field:      fr.Field,
			Value:      fr.Value,
			Confidence: fr.Confidence,
			Page:       fr.Page,
		}
	}
	return resp
}
