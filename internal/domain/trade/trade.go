package trade

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TradeStatus represents the status of a trade in the acquisition pipeline
type TradeStatus string

const (
	TradeStatusDraft        TradeStatus = "DRAFT"
	TradeStatusDiligence    TradeStatus = "DILIGENCE"
	TradeStatusBidSubmitted TradeStatus = "BID_SUBMITTED"
	TradeStatusAwarded      TradeStatus = "AWARDED"
	TradeStatusSettled      TradeStatus = "SETTLED"
	TradeStatusPassed       TradeStatus = "PASSED"
	TradeStatusCancelled    TradeStatus = "CANCELLED"
)

// IsValid checks if the status is a valid TradeStatus
func (s TradeStatus) IsValid() bool {
	switch s {
	case TradeStatusDraft, TradeStatusDiligence, TradeStatusBidSubmitted,
		TradeStatusAwarded, TradeStatusSettled, TradeStatusPassed, TradeStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of TradeStatus
func (s TradeStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses with no outgoing transitions
func (s TradeStatus) IsTerminal() bool {
	return s == TradeStatusSettled || s == TradeStatusPassed || s == TradeStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s TradeStatus) CanTransitionTo(target TradeStatus) bool {
	switch s {
	case TradeStatusDraft:
		return target == TradeStatusDiligence || target == TradeStatusCancelled
	case TradeStatusDiligence:
		return target == TradeStatusBidSubmitted || target == TradeStatusPassed || target == TradeStatusCancelled
	case TradeStatusBidSubmitted:
		return target == TradeStatusAwarded || target == TradeStatusPassed
	case TradeStatusAwarded:
		return target == TradeStatusSettled || target == TradeStatusCancelled
	case TradeStatusSettled, TradeStatusPassed, TradeStatusCancelled:
		return false // Terminal states
	}
	return false
}

// Trade represents a bulk purchase of loans from a seller.
// It is the aggregate root of the acquisition pipeline.
type Trade struct {
	shared.BaseAggregateRoot
	TradeNumber    string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name           string          `gorm:"type:varchar(200);not null"`
	SellerID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellerName     string          `gorm:"type:varchar(200);not null"`
	Status         TradeStatus     `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	BidAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	BidPctOfUPB    decimal.Decimal `gorm:"type:decimal(8,5);not null;default:0"` // BidAmount / population UPB at bid time
	PurchasePrice  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	BidDate        *time.Time
	AwardDate      *time.Time
	SettlementDate *time.Time
	Notes          string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Trade) TableName() string {
	return "trades"
}

// NewTrade creates a new draft trade
func NewTrade(tradeNumber, name string, sellerID uuid.UUID, sellerName string) (*Trade, error) {
	if tradeNumber == "" {
		return nil, shared.NewDomainError("INVALID_TRADE_NUMBER", "Trade number cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Trade name cannot be empty")
	}
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SELLER", "Seller ID cannot be empty")
	}

	trade := &Trade{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TradeNumber:       strings.ToUpper(tradeNumber),
		Name:              name,
		SellerID:          sellerID,
		SellerName:        sellerName,
		Status:            TradeStatusDraft,
		BidAmount:         decimal.Zero,
		BidPctOfUPB:       decimal.Zero,
		PurchasePrice:     decimal.Zero,
	}

	trade.AddDomainEvent(NewTradeCreatedEvent(trade))
	return trade, nil
}

// Update updates mutable header fields. Terminal trades are immutable.
func (t *Trade) Update(name, notes string) error {
	if t.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update a trade in terminal status")
	}
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Trade name cannot be empty")
	}

	t.Name = name
	t.Notes = notes
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// StartDiligence moves the trade from draft into diligence
func (t *Trade) StartDiligence() error {
	if !t.Status.CanTransitionTo(TradeStatusDiligence) {
		return shared.NewDomainError("INVALID_STATE", "Trade cannot enter diligence from "+t.Status.String())
	}
	t.Status = TradeStatusDiligence
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// SubmitBid records the bid and moves the trade to bid-submitted.
// populationUPB is the current landed UPB; a bid requires a non-empty population.
func (t *Trade) SubmitBid(bidAmount, populationUPB decimal.Decimal) error {
	if !t.Status.CanTransitionTo(TradeStatusBidSubmitted) {
		return shared.NewDomainError("INVALID_STATE", "Trade cannot submit a bid from "+t.Status.String())
	}
	if bidAmount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_BID", "Bid amount must be positive")
	}
	if populationUPB.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("EMPTY_POPULATION", "Cannot bid on a trade with no landed population")
	}

	now := time.Now()
	t.Status = TradeStatusBidSubmitted
	t.BidAmount = bidAmount
	t.BidPctOfUPB = bidAmount.Div(populationUPB).Round(5)
	t.BidDate = &now
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTradeBidSubmittedEvent(t))
	return nil
}

// Award marks the bid as won
func (t *Trade) Award() error {
	if !t.Status.CanTransitionTo(TradeStatusAwarded) {
		return shared.NewDomainError("INVALID_STATE", "Trade cannot be awarded from "+t.Status.String())
	}
	now := time.Now()
	t.Status = TradeStatusAwarded
	t.AwardDate = &now
	t.UpdatedAt = now
	t.IncrementVersion()
	return nil
}

// Settle closes the purchase. Settlement triggers asset boarding downstream.
func (t *Trade) Settle(purchasePrice decimal.Decimal, settlementDate time.Time) error {
	if !t.Status.CanTransitionTo(TradeStatusSettled) {
		return shared.NewDomainError("INVALID_STATE", "Trade cannot settle from "+t.Status.String())
	}
	if purchasePrice.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PRICE", "Purchase price must be positive")
	}

	t.Status = TradeStatusSettled
	t.PurchasePrice = purchasePrice
	t.SettlementDate = &settlementDate
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTradeSettledEvent(t))
	return nil
}

// Pass walks away from the trade
func (t *Trade) Pass() error {
	if !t.Status.CanTransitionTo(TradeStatusPassed) {
		return shared.NewDomainError("INVALID_STATE", "Trade cannot be passed from "+t.Status.String())
	}
	t.Status = TradeStatusPassed
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// Cancel cancels the trade before settlement
func (t *Trade) Cancel() error {
	if !t.Status.CanTransitionTo(TradeStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", "Trade cannot be cancelled from "+t.Status.String())
	}
	t.Status = TradeStatusCancelled
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// IsSettled returns true once the purchase has closed
func (t *Trade) IsSettled() bool {
	return t.Status == TradeStatusSettled
}
