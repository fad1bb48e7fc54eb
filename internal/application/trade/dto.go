package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// CreateTradeRequest is the request to create a trade
type CreateTradeRequest struct {
	TradeNumber string    `json:"trade_number" binding:"required,max=50"`
	Name        string    `json:"name" binding:"required,max=200"`
	SellerID    uuid.UUID `json:"seller_id" binding:"required"`
	Notes       string    `json:"notes" binding:"max=2000"`
}

// UpdateTradeRequest is the request to update a trade's header fields
type UpdateTradeRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Notes string `json:"notes" binding:"max=2000"`
}

// SubmitBidRequest is the request to submit a bid on a trade
type SubmitBidRequest struct {
	BidAmount decimal.Decimal `json:"bid_amount" binding:"required"`
}

// SettleTradeRequest is the request to settle an awarded trade
type SettleTradeRequest struct {
	PurchasePrice  decimal.Decimal `json:"purchase_price" binding:"required"`
	SettlementDate time.Time       `json:"settlement_date" binding:"required"`
}

// TradeResponse is the API representation of a trade
type TradeResponse struct {
	ID             uuid.UUID  `json:"id"`
	TradeNumber    string     `json:"trade_number"`
	Name           string     `json:"name"`
	SellerID       uuid.UUID  `json:"seller_id"`
	SellerName     string     `json:"seller_name"`
	Status         string     `json:"status"`
	BidAmount      string     `json:"bid_amount"`
	BidPctOfUPB    string     `json:"bid_pct_of_upb"`
	PurchasePrice  string     `json:"purchase_price"`
	BidDate        *time.Time `json:"bid_date,omitempty"`
	AwardDate      *time.Time `json:"award_date,omitempty"`
	SettlementDate *time.Time `json:"settlement_date,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	Version        int        `json:"version"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ToTradeResponse converts a trade aggregate to its API representation
func ToTradeResponse(t *trade.Trade) TradeResponse {
	return TradeResponse{
		ID:             t.ID,
		TradeNumber:    t.TradeNumber,
		Name:           t.Name,
		SellerID:       t.SellerID,
		SellerName:     t.SellerName,
		Status:         t.Status.String(),
		BidAmount:      t.BidAmount.String(),
		BidPctOfUPB:    t.BidPctOfUPB.String(),
		PurchasePrice:  t.PurchasePrice.String(),
		BidDate:        t.BidDate,
		AwardDate:      t.AwardDate,
		SettlementDate: t.SettlementDate,
		Notes:          t.Notes,
		Version:        t.Version,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// ToTradeResponses converts a slice of trades
func ToTradeResponses(trades []trade.Trade) []TradeResponse {
	out := make([]TradeResponse, len(trades))
	for i := range trades {
		out[i] = ToTradeResponse(&trades[i])
	}
	return out
}
