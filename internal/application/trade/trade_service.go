package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/seller"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/npl/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TradeService drives the acquisition pipeline from draft through settlement
type TradeService struct {
	tradeRepo      trade.TradeRepository
	sellerRepo     seller.SellerRepository
	rawRepo        seller.RawDataRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewTradeService creates a new TradeService
func NewTradeService(
	tradeRepo trade.TradeRepository,
	sellerRepo seller.SellerRepository,
	rawRepo seller.RawDataRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *TradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TradeService{
		tradeRepo:      tradeRepo,
		sellerRepo:     sellerRepo,
		rawRepo:        rawRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Create opens a new draft trade against an active seller
func (s *TradeService) Create(ctx context.Context, req CreateTradeRequest) (*TradeResponse, error) {
	exists, err := s.tradeRepo.ExistsByTradeNumber(ctx, req.TradeNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Trade with this number already exists")
	}

	sl, err := s.sellerRepo.FindByID(ctx, req.SellerID)
	if err != nil {
		return nil, err
	}
	if !sl.CanTrade() {
		return nil, shared.NewDomainError("SELLER_NOT_TRADABLE", "Seller is not active for new trades")
	}

	tr, err := trade.NewTrade(req.TradeNumber, req.Name, sl.ID, sl.Name)
	if err != nil {
		return nil, err
	}
	if req.Notes != "" {
		tr.Notes = req.Notes
	}

	if err := s.saveAndPublish(ctx, tr); err != nil {
		return nil, err
	}

	s.logger.Info("trade created",
		zap.String("trade_id", tr.ID.String()),
		zap.String("trade_number", tr.TradeNumber))

	response := ToTradeResponse(tr)
	return &response, nil
}

// GetByID retrieves a trade by ID
func (s *TradeService) GetByID(ctx context.Context, tradeID uuid.UUID) (*TradeResponse, error) {
	tr, err := s.tradeRepo.FindByID(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	response := ToTradeResponse(tr)
	return &response, nil
}

// GetByNumber retrieves a trade by trade number
func (s *TradeService) GetByNumber(ctx context.Context, tradeNumber string) (*TradeResponse, error) {
	tr, err := s.tradeRepo.FindByTradeNumber(ctx, tradeNumber)
	if err != nil {
		return nil, err
	}
	response := ToTradeResponse(tr)
	return &response, nil
}

// List retrieves trades with pagination
func (s *TradeService) List(ctx context.Context, filter shared.Filter) ([]TradeResponse, int64, error) {
	trades, err := s.tradeRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.tradeRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToTradeResponses(trades), total, nil
}

// ListBySeller retrieves trades for one seller
func (s *TradeService) ListBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) ([]TradeResponse, error) {
	trades, err := s.tradeRepo.FindBySeller(ctx, sellerID, filter)
	if err != nil {
		return nil, err
	}
	return ToTradeResponses(trades), nil
}

// ListByStatus retrieves trades in one pipeline stage
func (s *TradeService) ListByStatus(ctx context.Context, status trade.TradeStatus, filter shared.Filter) ([]TradeResponse, error) {
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown trade status: "+status.String())
	}
	trades, err := s.tradeRepo.FindByStatus(ctx, status, filter)
	if err != nil {
		return nil, err
	}
	return ToTradeResponses(trades), nil
}

// Update updates a trade's header fields
func (s *TradeService) Update(ctx context.Context, tradeID uuid.UUID, req UpdateTradeRequest) (*TradeResponse, error) {
	return s.transition(ctx, tradeID, func(tr *trade.Trade) error {
		return tr.Update(req.Name, req.Notes)
	})
}

// StartDiligence moves a draft trade into diligence
func (s *TradeService) StartDiligence(ctx context.Context, tradeID uuid.UUID) (*TradeResponse, error) {
	return s.transition(ctx, tradeID, func(tr *trade.Trade) error {
		return tr.StartDiligence()
	})
}

// SubmitBid records a bid priced against the trade's landed population UPB
func (s *TradeService) SubmitBid(ctx context.Context, tradeID uuid.UUID, req SubmitBidRequest) (*TradeResponse, error) {
	summary, err := s.rawRepo.SumUPBByTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	populationUPB, err := decimal.NewFromString(summary.TotalUPB)
	if err != nil {
		populationUPB = decimal.Zero
	}

	return s.transition(ctx, tradeID, func(tr *trade.Trade) error {
		return tr.SubmitBid(req.BidAmount, populationUPB)
	})
}

// Award marks the bid as won
func (s *TradeService) Award(ctx context.Context, tradeID uuid.UUID) (*TradeResponse, error) {
	return s.transition(ctx, tradeID, func(tr *trade.Trade) error {
		return tr.Award()
	})
}

// Settle closes the purchase. The settlement event drives asset
// boarding downstream.
func (s *TradeService) Settle(ctx context.Context, tradeID uuid.UUID, req SettleTradeRequest) (*TradeResponse, error) {
	resp, err := s.transition(ctx, tradeID, func(tr *trade.Trade) error {
		return tr.Settle(req.PurchasePrice, req.SettlementDate)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("trade settled",
		zap.String("trade_id", tradeID.String()),
		zap.String("purchase_price", req.PurchasePrice.String()))
	return resp, nil
}

// Pass walks away from the trade
func (s *TradeService) Pass(ctx context.Context, tradeID uuid.UUID) (*TradeResponse, error) {
	return s.transition(ctx, tradeID, func(tr *trade.Trade) error {
		return tr.Pass()
	})
}

// Cancel cancels the trade before settlement
func (s *TradeService) Cancel(ctx context.Context, tradeID uuid.UUID) (*TradeResponse, error) {
	return s.transition(ctx, tradeID, func(tr *trade.Trade) error {
		return tr.Cancel()
	})
}

// Delete removes a draft trade. Anything past draft stays for the audit trail.
func (s *TradeService) Delete(ctx context.Context, tradeID uuid.UUID) error {
	tr, err := s.tradeRepo.FindByID(ctx, tradeID)
	if err != nil {
		return err
	}
	if tr.Status != trade.TradeStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft trades can be deleted")
	}
	return s.tradeRepo.Delete(ctx, tradeID)
}

func (s *TradeService) transition(ctx context.Context, tradeID uuid.UUID, change func(*trade.Trade) error) (*TradeResponse, error) {
	tr, err := s.tradeRepo.FindByID(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if err := change(tr); err != nil {
		return nil, err
	}
	if err := s.saveAndPublish(ctx, tr); err != nil {
		return nil, err
	}
	response := ToTradeResponse(tr)
	return &response, nil
}

func (s *TradeService) saveAndPublish(ctx context.Context, tr *trade.Trade) error {
	events := tr.GetDomainEvents()
	tr.ClearDomainEvents()

	if err := s.tradeRepo.Save(ctx, tr); err != nil {
		return err
	}

	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			// The write has committed; event delivery failures are logged,
			// not surfaced to the caller.
			s.logger.Error("failed to publish trade events",
				zap.String("trade_id", tr.ID.String()),
				zap.Error(err))
		}
	}
	return nil
}
