package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeTrade = "Trade"

// Event type constants
const (
	EventTypeTradeCreated      = "TradeCreated"
	EventTypeTradeBidSubmitted = "TradeBidSubmitted"
	EventTypeTradeSettled      = "TradeSettled"
)

// TradeCreatedEvent is raised when a new trade is created
type TradeCreatedEvent struct {
	shared.BaseDomainEvent
	TradeID     uuid.UUID `json:"trade_id"`
	TradeNumber string    `json:"trade_number"`
	SellerID    uuid.UUID `json:"seller_id"`
	SellerName  string    `json:"seller_name"`
}

// NewTradeCreatedEvent creates a new TradeCreatedEvent
func NewTradeCreatedEvent(t *Trade) *TradeCreatedEvent {
	return &TradeCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTradeCreated, AggregateTypeTrade, t.ID),
		TradeID:         t.ID,
		TradeNumber:     t.TradeNumber,
		SellerID:        t.SellerID,
		SellerName:      t.SellerName,
	}
}

// EventType returns the event type name
func (e *TradeCreatedEvent) EventType() string {
	return EventTypeTradeCreated
}

// TradeBidSubmittedEvent is raised when a bid is submitted on a trade
type TradeBidSubmittedEvent struct {
	shared.BaseDomainEvent
	TradeID     uuid.UUID       `json:"trade_id"`
	TradeNumber string          `json:"trade_number"`
	BidAmount   decimal.Decimal `json:"bid_amount"`
	BidPctOfUPB decimal.Decimal `json:"bid_pct_of_upb"`
}

// NewTradeBidSubmittedEvent creates a new TradeBidSubmittedEvent
func NewTradeBidSubmittedEvent(t *Trade) *TradeBidSubmittedEvent {
	return &TradeBidSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTradeBidSubmitted, AggregateTypeTrade, t.ID),
		TradeID:         t.ID,
		TradeNumber:     t.TradeNumber,
		BidAmount:       t.BidAmount,
		BidPctOfUPB:     t.BidPctOfUPB,
	}
}

// EventType returns the event type name
func (e *TradeBidSubmittedEvent) EventType() string {
	return EventTypeTradeBidSubmitted
}

// TradeSettledEvent is raised when a trade settles.
// The asset boarding handler consumes this event to create hub and asset rows.
type TradeSettledEvent struct {
	shared.BaseDomainEvent
	TradeID        uuid.UUID       `json:"trade_id"`
	TradeNumber    string          `json:"trade_number"`
	SellerID       uuid.UUID       `json:"seller_id"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	SettlementDate time.Time       `json:"settlement_date"`
}

// NewTradeSettledEvent creates a new TradeSettledEvent
func NewTradeSettledEvent(t *Trade) *TradeSettledEvent {
	var settledAt time.Time
	if t.SettlementDate != nil {
		settledAt = *t.SettlementDate
	}
	return &TradeSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTradeSettled, AggregateTypeTrade, t.ID),
		TradeID:         t.ID,
		TradeNumber:     t.TradeNumber,
		SellerID:        t.SellerID,
		PurchasePrice:   t.PurchasePrice,
		SettlementDate:  settledAt,
	}
}

// EventType returns the event type name
func (e *TradeSettledEvent) EventType() string {
	return EventTypeTradeSettled
}
