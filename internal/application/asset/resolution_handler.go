package asset

import (
	"context"
	"errors"
	"fmt"

	"github.com/npl/backend/internal/domain/am"
	"github.com/npl/backend/internal/domain/asset"
	"github.com/npl/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ResolutionHandler maps workout-track outcomes onto the asset
// lifecycle. A liquidation outcome retires the asset as LIQUIDATED, a
// note sale retires it as SOLD, and a reperforming loan stays ACTIVE
// on the book.
type ResolutionHandler struct {
	assetRepo asset.AssetRepository
	logger    *zap.Logger
}

// NewResolutionHandler creates a new ResolutionHandler
func NewResolutionHandler(assetRepo asset.AssetRepository, logger *zap.Logger) *ResolutionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResolutionHandler{
		assetRepo: assetRepo,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ResolutionHandler) EventTypes() []string {
	return []string{am.EventTypeTrackResolved}
}

// Handle applies a track resolution to its asset
func (h *ResolutionHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	resolved, ok := event.(*am.TrackResolvedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			am.EventTypeTrackResolved, event.EventType())
	}

	if resolved.Outcome == am.OutcomeReperformed {
		h.logger.Info("track resolved as reperforming, asset stays active",
			zap.String("hub_id", resolved.HubID.String()),
			zap.String("track_type", string(resolved.TrackType)))
		return nil
	}

	a, err := h.assetRepo.FindByHubID(ctx, resolved.HubID)
	if err != nil {
		return fmt.Errorf("load asset for hub %s: %w", resolved.HubID, err)
	}

	switch resolved.Outcome {
	case am.OutcomeLiquidated:
		err = a.MarkLiquidated()
	case am.OutcomeNoteSold:
		err = a.MarkSold()
	default:
		return fmt.Errorf("unknown resolution outcome: %s", resolved.Outcome)
	}
	if err != nil {
		// A redelivered event lands on an already resolved asset.
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			h.logger.Warn("asset already resolved, skipping",
				zap.String("hub_id", resolved.HubID.String()),
				zap.String("outcome", string(resolved.Outcome)))
			return nil
		}
		return err
	}

	a.ClearDomainEvents()
	if err := h.assetRepo.Save(ctx, a); err != nil {
		return err
	}

	h.logger.Info("asset resolved from track outcome",
		zap.String("asset_id", a.ID.String()),
		zap.String("hub_id", resolved.HubID.String()),
		zap.String("status", a.Status.String()))
	return nil
}

// Ensure ResolutionHandler implements shared.EventHandler
var _ shared.EventHandler = (*ResolutionHandler)(nil)
