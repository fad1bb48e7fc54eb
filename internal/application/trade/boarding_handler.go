package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/npl/backend/internal/domain/asset"
	"github.com/npl/backend/internal/domain/seller"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/npl/backend/internal/domain/trade"
	"github.com/npl/backend/internal/domain/valuation"
	"go.uber.org/zap"
)

// BoardingHandler boards assets when a trade settles. For every landed
// tape row still in the population it mints a hub identity, creates the
// asset with a snapshot of the tape fields, and seeds a seller-tape
// valuation. Boarding is idempotent: rows already boarded and hubs
// already minted are skipped, so a redelivered settlement event is
// harmless.
type BoardingHandler struct {
	rawRepo       seller.RawDataRepository
	hubRepo       asset.HubRepository
	assetRepo     asset.AssetRepository
	valuationRepo valuation.ValuationRepository
	logger        *zap.Logger
}

// NewBoardingHandler creates a new BoardingHandler
func NewBoardingHandler(
	rawRepo seller.RawDataRepository,
	hubRepo asset.HubRepository,
	assetRepo asset.AssetRepository,
	valuationRepo valuation.ValuationRepository,
	logger *zap.Logger,
) *BoardingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoardingHandler{
		rawRepo:       rawRepo,
		hubRepo:       hubRepo,
		assetRepo:     assetRepo,
		valuationRepo: valuationRepo,
		logger:        logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *BoardingHandler) EventTypes() []string {
	return []string{trade.EventTypeTradeSettled}
}

// Handle boards all boardable rows of the settled trade
func (h *BoardingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	settled, ok := event.(*trade.TradeSettledEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			trade.EventTypeTradeSettled, event.EventType())
	}

	rows, err := h.rawRepo.FindBoardable(ctx, settled.TradeID)
	if err != nil {
		return fmt.Errorf("load boardable rows: %w", err)
	}

	boarded, skipped := 0, 0
	for i := range rows {
		row := &rows[i]
		if err := h.boardRow(ctx, settled, row); err != nil {
			if errors.Is(err, shared.ErrAlreadyBoarded) {
				skipped++
				continue
			}
			h.logger.Error("failed to board row",
				zap.String("trade_id", settled.TradeID.String()),
				zap.String("loan_number", row.SellerLoanNumber),
				zap.Error(err))
			return err
		}
		boarded++
	}

	h.logger.Info("trade boarding complete",
		zap.String("trade_id", settled.TradeID.String()),
		zap.String("trade_number", settled.TradeNumber),
		zap.Int("boarded", boarded),
		zap.Int("skipped", skipped))
	return nil
}

func (h *BoardingHandler) boardRow(ctx context.Context, settled *trade.TradeSettledEvent, row *seller.SellerRawData) error {
	hub, err := h.hubRepo.FindByTradeAndLoanNumber(ctx, settled.TradeID, row.SellerLoanNumber)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	if hub == nil {
		hub, err = asset.NewAssetIdHub(settled.TradeID, row.ID, row.SellerLoanNumber)
		if err != nil {
			return err
		}
		if err := h.hubRepo.Save(ctx, hub); err != nil {
			return err
		}
	}

	existing, err := h.assetRepo.FindByHubID(ctx, hub.ID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	if existing != nil {
		return shared.ErrAlreadyBoarded
	}

	a, err := asset.NewAsset(hub.ID, settled.TradeID, settled.SellerID,
		row.SellerLoanNumber, row.CurrentUPB, row.InterestRate)
	if err != nil {
		return err
	}
	a.SetProperty(row.PropertyStreet, row.PropertyCity, row.PropertyState,
		row.PropertyZip, row.PropertyType, row.Occupancy)
	a.SetLoanTerms(row.LienPosition, row.NextDueDate, row.MaturityDate)

	a.ClearDomainEvents()
	if err := h.assetRepo.Save(ctx, a); err != nil {
		return err
	}

	if err := row.MarkBoarded(); err != nil {
		return err
	}
	if err := h.rawRepo.Save(ctx, row); err != nil {
		return err
	}

	// Seed the value stack with the seller's opinion so reconciliation
	// has a floor before any ordered valuations land.
	if row.SellerAsIsValue.IsPositive() {
		v, err := valuation.NewValuation(hub.ID, valuation.SourceSellerTape,
			row.SellerAsIsValue, settled.SettlementDate)
		if err != nil {
			return err
		}
		v.ARVValue = row.SellerARVValue
		importID := row.ImportID
		v.SourceRef = &importID
		if err := h.valuationRepo.Save(ctx, v); err != nil {
			return err
		}
	}

	return nil
}

// Ensure BoardingHandler implements shared.EventHandler
var _ shared.EventHandler = (*BoardingHandler)(nil)
