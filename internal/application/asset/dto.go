package asset

import (
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/asset"
	"github.com/shopspring/decimal"
)

// UpdateUPBRequest applies a new balance to an asset
type UpdateUPBRequest struct {
	CurrentUPB decimal.Decimal `json:"current_upb" binding:"required"`
}

// AssetResponse is the API representation of a boarded asset
type AssetResponse struct {
	ID               uuid.UUID  `json:"id"`
	HubID            uuid.UUID  `json:"hub_id"`
	TradeID          uuid.UUID  `json:"trade_id"`
	SellerID         uuid.UUID  `json:"seller_id"`
	SellerLoanNumber string     `json:"seller_loan_number"`
	Status           string     `json:"status"`
	CurrentUPB       string     `json:"current_upb"`
	InterestRate     string     `json:"interest_rate"`
	LienPosition     int        `json:"lien_position"`
	NextDueDate      *time.Time `json:"next_due_date,omitempty"`
	MaturityDate     *time.Time `json:"maturity_date,omitempty"`
	PropertyStreet   string     `json:"property_street,omitempty"`
	PropertyCity     string     `json:"property_city,omitempty"`
	PropertyState    string     `json:"property_state,omitempty"`
	PropertyZip      string     `json:"property_zip,omitempty"`
	PropertyType     string     `json:"property_type,omitempty"`
	Occupancy        string     `json:"occupancy,omitempty"`
	BoardedAt        time.Time  `json:"boarded_at"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
	Version          int        `json:"version"`
}

// ToAssetResponse converts an asset aggregate to its API representation
func ToAssetResponse(a *asset.Asset) AssetResponse {
	return AssetResponse{
		ID:               a.ID,
		HubID:            a.HubID,
		TradeID:          a.TradeID,
		SellerID:         a.SellerID,
		SellerLoanNumber: a.SellerLoanNumber,
		Status:           a.Status.String(),
		CurrentUPB:       a.CurrentUPB.String(),
		InterestRate:     a.InterestRate.String(),
		LienPosition:     a.LienPosition,
		NextDueDate:      a.NextDueDate,
		MaturityDate:     a.MaturityDate,
		PropertyStreet:   a.PropertyStreet,
		PropertyCity:     a.PropertyCity,
		PropertyState:    a.PropertyState,
		PropertyZip:      a.PropertyZip,
		PropertyType:     a.PropertyType,
		Occupancy:        a.Occupancy,
		BoardedAt:        a.BoardedAt,
		ResolvedAt:       a.ResolvedAt,
		Version:          a.Version,
	}
}

// ToAssetResponses converts a slice of assets
func ToAssetResponses(assets []asset.Asset) []AssetResponse {
	out := make([]AssetResponse, len(assets))
	for i := range assets {
		out[i] = ToAssetResponse(&assets[i])
	}
	return out
}

// HubResponse is the API representation of a hub identity
type HubResponse struct {
	ID               uuid.UUID `json:"id"`
	TradeID          uuid.UUID `json:"trade_id"`
	SellerLoanNumber string    `json:"seller_loan_number"`
	RawDataID        uuid.UUID `json:"raw_data_id"`
	CreatedAt        time.Time `json:"created_at"`
}

// ToHubResponse converts a hub identity to its API representation
func ToHubResponse(h *asset.AssetIdHub) HubResponse {
	return HubResponse{
		ID:               h.ID,
		TradeID:          h.TradeID,
		SellerLoanNumber: h.SellerLoanNumber,
		RawDataID:        h.RawDataID,
		CreatedAt:        h.CreatedAt,
	}
}
