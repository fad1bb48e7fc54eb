package valuation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/asset"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/npl/backend/internal/domain/valuation"
	"go.uber.org/zap"
)

// ValuationService manages the append-only value stack per asset
type ValuationService struct {
	valuationRepo valuation.ValuationRepository
	hubRepo       asset.HubRepository
	logger        *zap.Logger
}

// NewValuationService creates a new ValuationService
func NewValuationService(
	valuationRepo valuation.ValuationRepository,
	hubRepo asset.HubRepository,
	logger *zap.Logger,
) *ValuationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValuationService{
		valuationRepo: valuationRepo,
		hubRepo:       hubRepo,
		logger:        logger,
	}
}

// Add records a value opinion against a hub identity
func (s *ValuationService) Add(ctx context.Context, hubID uuid.UUID, req AddValuationRequest) (*ValuationResponse, error) {
	if _, err := s.hubRepo.FindByID(ctx, hubID); err != nil {
		return nil, err
	}

	v, err := valuation.NewValuation(hubID, valuation.ValuationSource(req.Source), req.AsIsValue, req.EffectiveDate)
	if err != nil {
		return nil, err
	}
	if req.ARVValue.IsPositive() {
		v.ARVValue = req.ARVValue
	}
	v.Vendor = req.Vendor
	v.Notes = req.Notes

	if err := s.valuationRepo.Save(ctx, v); err != nil {
		return nil, err
	}

	response := ToValuationResponse(v)
	return &response, nil
}

// GetByID retrieves a valuation by ID
func (s *ValuationService) GetByID(ctx context.Context, valuationID uuid.UUID) (*ValuationResponse, error) {
	v, err := s.valuationRepo.FindByID(ctx, valuationID)
	if err != nil {
		return nil, err
	}
	response := ToValuationResponse(v)
	return &response, nil
}

// ListByHub retrieves all value opinions for an asset
func (s *ValuationService) ListByHub(ctx context.Context, hubID uuid.UUID) ([]ValuationResponse, error) {
	vs, err := s.valuationRepo.FindByHub(ctx, hubID)
	if err != nil {
		return nil, err
	}
	return ToValuationResponses(vs), nil
}

// Reconciled picks the authoritative value for an asset. Fresh opinions
// win by source precedence; if everything is stale the same precedence
// applies and the response is flagged stale.
func (s *ValuationService) Reconciled(ctx context.Context, hubID uuid.UUID) (*ReconciledValueResponse, error) {
	vs, err := s.valuationRepo.FindByHub(ctx, hubID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	best := valuation.Reconcile(vs, valuation.DefaultStalenessWindow, now)
	if best == nil {
		return nil, shared.ErrNotFound
	}

	return &ReconciledValueResponse{
		Valuation: ToValuationResponse(best),
		Stale:     best.IsStale(valuation.DefaultStalenessWindow, now),
	}, nil
}
