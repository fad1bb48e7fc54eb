package asset

import (
	"context"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/asset"
	"github.com/npl/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AssetService exposes the boarded asset book
type AssetService struct {
	assetRepo      asset.AssetRepository
	hubRepo        asset.HubRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewAssetService creates a new AssetService
func NewAssetService(
	assetRepo asset.AssetRepository,
	hubRepo asset.HubRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *AssetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssetService{
		assetRepo:      assetRepo,
		hubRepo:        hubRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// GetByID retrieves an asset by ID
func (s *AssetService) GetByID(ctx context.Context, assetID uuid.UUID) (*AssetResponse, error) {
	a, err := s.assetRepo.FindByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	response := ToAssetResponse(a)
	return &response, nil
}

// GetByHub retrieves the asset behind a hub identity
func (s *AssetService) GetByHub(ctx context.Context, hubID uuid.UUID) (*AssetResponse, error) {
	a, err := s.assetRepo.FindByHubID(ctx, hubID)
	if err != nil {
		return nil, err
	}
	response := ToAssetResponse(a)
	return &response, nil
}

// GetHub retrieves a hub identity record
func (s *AssetService) GetHub(ctx context.Context, hubID uuid.UUID) (*HubResponse, error) {
	h, err := s.hubRepo.FindByID(ctx, hubID)
	if err != nil {
		return nil, err
	}
	response := ToHubResponse(h)
	return &response, nil
}

// List retrieves assets with pagination
func (s *AssetService) List(ctx context.Context, filter shared.Filter) ([]AssetResponse, int64, error) {
	assets, err := s.assetRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.assetRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToAssetResponses(assets), total, nil
}

// ListByTrade retrieves assets boarded from one trade
func (s *AssetService) ListByTrade(ctx context.Context, tradeID uuid.UUID, filter shared.Filter) ([]AssetResponse, error) {
	assets, err := s.assetRepo.FindByTrade(ctx, tradeID, filter)
	if err != nil {
		return nil, err
	}
	return ToAssetResponses(assets), nil
}

// ListByStatus retrieves assets in one lifecycle state
func (s *AssetService) ListByStatus(ctx context.Context, status asset.AssetStatus, filter shared.Filter) ([]AssetResponse, error) {
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown asset status: "+status.String())
	}
	assets, err := s.assetRepo.FindByStatus(ctx, status, filter)
	if err != nil {
		return nil, err
	}
	return ToAssetResponses(assets), nil
}

// UpdateUPB applies a balance update to an active asset
func (s *AssetService) UpdateUPB(ctx context.Context, assetID uuid.UUID, req UpdateUPBRequest) (*AssetResponse, error) {
	a, err := s.assetRepo.FindByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if err := a.UpdateUPB(req.CurrentUPB); err != nil {
		return nil, err
	}
	if err := s.assetRepo.Save(ctx, a); err != nil {
		return nil, err
	}
	response := ToAssetResponse(a)
	return &response, nil
}

// MarkLiquidated resolves an asset through collateral liquidation
func (s *AssetService) MarkLiquidated(ctx context.Context, assetID uuid.UUID) (*AssetResponse, error) {
	return s.resolve(ctx, assetID, func(a *asset.Asset) error { return a.MarkLiquidated() })
}

// MarkSold resolves an asset through a note sale
func (s *AssetService) MarkSold(ctx context.Context, assetID uuid.UUID) (*AssetResponse, error) {
	return s.resolve(ctx, assetID, func(a *asset.Asset) error { return a.MarkSold() })
}

func (s *AssetService) resolve(ctx context.Context, assetID uuid.UUID, change func(*asset.Asset) error) (*AssetResponse, error) {
	a, err := s.assetRepo.FindByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if err := change(a); err != nil {
		return nil, err
	}

	events := a.GetDomainEvents()
	a.ClearDomainEvents()

	if err := s.assetRepo.Save(ctx, a); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Error("failed to publish asset events",
				zap.String("asset_id", a.ID.String()),
				zap.Error(err))
		}
	}

	response := ToAssetResponse(a)
	return &response, nil
}
