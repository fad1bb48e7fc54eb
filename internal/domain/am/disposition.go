package am

import (
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ShortSale is the detail record for a short-sale track: the borrower
// sells the property for less than the payoff with lender approval.
type ShortSale struct {
	shared.BaseEntity
	TrackID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	HubID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	OfferAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PayoffDemand   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ApprovedAmount decimal.Decimal `gorm:"type:decimal(18,2)"`
	ApprovedAt     *time.Time
	ClosedAt       *time.Time
	NetProceeds    decimal.Decimal `gorm:"type:decimal(18,2)"`
}

// TableName returns the table name for GORM
func (ShortSale) TableName() string {
	return "short_sales"
}

// NewShortSale records a short-sale offer under review
func NewShortSale(trackID, hubID uuid.UUID, offer, payoffDemand decimal.Decimal) (*ShortSale, error) {
	if trackID == uuid.Nil || hubID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Track and hub IDs cannot be empty")
	}
	if offer.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Offer amount must be positive")
	}
	if offer.GreaterThanOrEqual(payoffDemand) {
		return nil, shared.NewDomainError("NOT_SHORT", "Offer covers the payoff; this is not a short sale")
	}
	return &ShortSale{
		BaseEntity:     shared.NewBaseEntity(),
		TrackID:        trackID,
		HubID:          hubID,
		OfferAmount:    offer,
		PayoffDemand:   payoffDemand,
		ApprovedAmount: decimal.Zero,
		NetProceeds:    decimal.Zero,
	}, nil
}

// Approve accepts the short payoff
func (s *ShortSale) Approve(amount decimal.Decimal, approvedAt time.Time) error {
	if s.ApprovedAt != nil {
		return shared.NewDomainError("INVALID_STATE", "Short sale is already approved")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Approved amount must be positive")
	}
	s.ApprovedAmount = amount
	s.ApprovedAt = &approvedAt
	s.UpdatedAt = time.Now()
	return nil
}

// Close records the closed short sale and net proceeds to the fund
func (s *ShortSale) Close(netProceeds decimal.Decimal, closedAt time.Time) error {
	if s.ApprovedAt == nil {
		return shared.NewDomainError("INVALID_STATE", "Short sale must be approved before closing")
	}
	if s.ClosedAt != nil {
		return shared.NewDomainError("INVALID_STATE", "Short sale is already closed")
	}
	if netProceeds.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Net proceeds must be positive")
	}
	s.NetProceeds = netProceeds
	s.ClosedAt = &closedAt
	s.UpdatedAt = time.Now()
	return nil
}

// NoteSale is the detail record for a note-sale track: the loan itself
// is sold to another investor rather than worked out.
type NoteSale struct {
	shared.BaseEntity
	TrackID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	HubID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	BuyerName    string          `gorm:"type:varchar(200);not null"`
	AgreedPrice  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	UPBAtSale    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PricePctUPB  decimal.Decimal `gorm:"type:decimal(8,5);not null"`
	TradeDate    time.Time       `gorm:"not null"`
	SettledAt    *time.Time
}

// TableName returns the table name for GORM
func (NoteSale) TableName() string {
	return "note_sales"
}

// NewNoteSale records an agreed note sale
func NewNoteSale(trackID, hubID uuid.UUID, buyerName string, agreedPrice, upbAtSale decimal.Decimal, tradeDate time.Time) (*NoteSale, error) {
	if trackID == uuid.Nil || hubID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Track and hub IDs cannot be empty")
	}
	if buyerName == "" {
		return nil, shared.NewDomainError("INVALID_BUYER", "Buyer name cannot be empty")
	}
	if agreedPrice.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Agreed price must be positive")
	}
	if upbAtSale.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_UPB", "UPB at sale must be positive")
	}
	return &NoteSale{
		BaseEntity:  shared.NewBaseEntity(),
		TrackID:     trackID,
		HubID:       hubID,
		BuyerName:   buyerName,
		AgreedPrice: agreedPrice,
		UPBAtSale:   upbAtSale,
		PricePctUPB: agreedPrice.Div(upbAtSale).Round(5),
		TradeDate:   tradeDate,
	}, nil
}

// Settle records the funded settlement
func (n *NoteSale) Settle(settledAt time.Time) error {
	if n.SettledAt != nil {
		return shared.NewDomainError("INVALID_STATE", "Note sale is already settled")
	}
	n.SettledAt = &settledAt
	n.UpdatedAt = time.Now()
	return nil
}
