package asset

import (
	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeAsset = "Asset"

// Event type constants
const (
	EventTypeAssetBoarded  = "AssetBoarded"
	EventTypeAssetResolved = "AssetResolved"
)

// AssetBoardedEvent is raised when an asset is boarded at trade settlement
type AssetBoardedEvent struct {
	shared.BaseDomainEvent
	AssetID          uuid.UUID       `json:"asset_id"`
	HubID            uuid.UUID       `json:"hub_id"`
	TradeID          uuid.UUID       `json:"trade_id"`
	SellerLoanNumber string          `json:"seller_loan_number"`
	CurrentUPB       decimal.Decimal `json:"current_upb"`
}

// NewAssetBoardedEvent creates a new AssetBoardedEvent
func NewAssetBoardedEvent(a *Asset) *AssetBoardedEvent {
	return &AssetBoardedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeAssetBoarded, AggregateTypeAsset, a.ID),
		AssetID:          a.ID,
		HubID:            a.HubID,
		TradeID:          a.TradeID,
		SellerLoanNumber: a.SellerLoanNumber,
		CurrentUPB:       a.CurrentUPB,
	}
}

// EventType returns the event type name
func (e *AssetBoardedEvent) EventType() string {
	return EventTypeAssetBoarded
}

// AssetResolvedEvent is raised when an asset leaves the book
type AssetResolvedEvent struct {
	shared.BaseDomainEvent
	AssetID     uuid.UUID   `json:"asset_id"`
	HubID       uuid.UUID   `json:"hub_id"`
	PriorStatus AssetStatus `json:"prior_status"`
	NewStatus   AssetStatus `json:"new_status"`
}

// NewAssetResolvedEvent creates a new AssetResolvedEvent
func NewAssetResolvedEvent(a *Asset, prior AssetStatus) *AssetResolvedEvent {
	return &AssetResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssetResolved, AggregateTypeAsset, a.ID),
		AssetID:         a.ID,
		HubID:           a.HubID,
		PriorStatus:     prior,
		NewStatus:       a.Status,
	}
}

// EventType returns the event type name
func (e *AssetResolvedEvent) EventType() string {
	return EventTypeAssetResolved
}
