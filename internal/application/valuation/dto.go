package valuation

import (
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/valuation"
	"github.com/shopspring/decimal"
)

// AddValuationRequest records a new value opinion for an asset
type AddValuationRequest struct {
	Source        string          `json:"source" binding:"required,oneof=SELLER_TAPE BPO APPRAISAL AVM DESKTOP EXTRACTION"`
	AsIsValue     decimal.Decimal `json:"as_is_value" binding:"required"`
	ARVValue      decimal.Decimal `json:"arv_value"`
	EffectiveDate time.Time       `json:"effective_date" binding:"required"`
	Vendor        string          `json:"vendor" binding:"max=100"`
	Notes         string          `json:"notes" binding:"max=1000"`
}

// ValuationResponse is the API representation of a valuation
type ValuationResponse struct {
	ID            uuid.UUID  `json:"id"`
	HubID         uuid.UUID  `json:"hub_id"`
	Source        string     `json:"source"`
	AsIsValue     string     `json:"as_is_value"`
	ARVValue      string     `json:"arv_value"`
	EffectiveDate time.Time  `json:"effective_date"`
	Vendor        string     `json:"vendor,omitempty"`
	SourceRef     *uuid.UUID `json:"source_ref,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToValuationResponse converts a valuation to its API representation
func ToValuationResponse(v *valuation.Valuation) ValuationResponse {
	return ValuationResponse{
		ID:            v.ID,
		HubID:         v.HubID,
		Source:        v.Source.String(),
		AsIsValue:     v.AsIsValue.String(),
		ARVValue:      v.ARVValue.String(),
		EffectiveDate: v.EffectiveDate,
		Vendor:        v.Vendor,
		SourceRef:     v.SourceRef,
		Notes:         v.Notes,
		CreatedAt:     v.CreatedAt,
	}
}

// ToValuationResponses converts a slice of valuations
func ToValuationResponses(vs []valuation.Valuation) []ValuationResponse {
	out := make([]ValuationResponse, len(vs))
	for i := range vs {
		out[i] = ToValuationResponse(&vs[i])
	}
	return out
}

// ReconciledValueResponse is the authoritative value pick for an asset
type ReconciledValueResponse struct {
	Valuation ValuationResponse `json:"valuation"`
	Stale     bool              `json:"stale"` // True when even the winning opinion is outside the freshness window
}
