package asset

import (
	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
)

// AssetIdHub is the canonical identity record for a loan asset.
// Every downstream row (valuations, servicing extracts, documents,
// asset-management tracks) keys on the hub ID rather than on the
// seller's loan number, which is only unique within one trade.
type AssetIdHub struct {
	shared.BaseEntity
	TradeID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_hub_trade_loan,priority:1"`
	SellerLoanNumber string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_hub_trade_loan,priority:2"`
	RawDataID        uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (AssetIdHub) TableName() string {
	return "asset_id_hub"
}

// NewAssetIdHub mints a hub identity for a boarded loan
func NewAssetIdHub(tradeID, rawDataID uuid.UUID, sellerLoanNumber string) (*AssetIdHub, error) {
	if tradeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TRADE", "Trade ID cannot be empty")
	}
	if rawDataID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RAW_DATA", "Raw data ID cannot be empty")
	}
	if sellerLoanNumber == "" {
		return nil, shared.NewDomainError("INVALID_LOAN_NUMBER", "Seller loan number cannot be empty")
	}

	return &AssetIdHub{
		BaseEntity:       shared.NewBaseEntity(),
		TradeID:          tradeID,
		SellerLoanNumber: sellerLoanNumber,
		RawDataID:        rawDataID,
	}, nil
}
