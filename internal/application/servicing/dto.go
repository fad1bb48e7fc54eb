package servicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/servicing"
)

// ExtractResponse is the API representation of one asset-month
type ExtractResponse struct {
	ID                uuid.UUID  `json:"id"`
	HubID             uuid.UUID  `json:"hub_id"`
	Period            string     `json:"period"`
	ImportID          uuid.UUID  `json:"import_id"`
	Servicer          string     `json:"servicer,omitempty"`
	CurrentUPB        string     `json:"current_upb"`
	InterestRate      string     `json:"interest_rate"`
	NextDueDate       *time.Time `json:"next_due_date,omitempty"`
	LastPaymentDate   *time.Time `json:"last_payment_date,omitempty"`
	LastPaymentAmount string     `json:"last_payment_amount"`
	DaysPastDue       int        `json:"days_past_due"`
	Bucket            string     `json:"bucket"`
	EscrowBalance     string     `json:"escrow_balance"`
	CorporateAdvances string     `json:"corporate_advances"`
}

// ToExtractResponse converts a servicing extract to its API representation
func ToExtractResponse(e *servicing.ServicingExtract) ExtractResponse {
	return ExtractResponse{
		ID:                e.ID,
		HubID:             e.HubID,
		Period:            e.Period,
		ImportID:          e.ImportID,
		Servicer:          e.Servicer,
		CurrentUPB:        e.CurrentUPB.String(),
		InterestRate:      e.InterestRate.String(),
		NextDueDate:       e.NextDueDate,
		LastPaymentDate:   e.LastPaymentDate,
		LastPaymentAmount: e.LastPaymentAmount.String(),
		DaysPastDue:       e.DaysPastDue,
		Bucket:            e.Bucket.String(),
		EscrowBalance:     e.EscrowBalance.String(),
		CorporateAdvances: e.CorporateAdvances.String(),
	}
}

// ToExtractResponses converts a slice of extracts
func ToExtractResponses(es []servicing.ServicingExtract) []ExtractResponse {
	out := make([]ExtractResponse, len(es))
	for i := range es {
		out[i] = ToExtractResponse(&es[i])
	}
	return out
}

// BucketDistributionResponse is the period-level delinquency rollup
type BucketDistributionResponse struct {
	Period  string           `json:"period"`
	Buckets map[string]int64 `json:"buckets"`
}
