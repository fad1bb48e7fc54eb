package seller

import (
	"context"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/seller"
	"github.com/npl/backend/internal/domain/shared"
)

// SellerService handles seller-related business operations
type SellerService struct {
	sellerRepo seller.SellerRepository
}

// NewSellerService creates a new SellerService
func NewSellerService(sellerRepo seller.SellerRepository) *SellerService {
	return &SellerService{
		sellerRepo: sellerRepo,
	}
}

// Create creates a new seller
func (s *SellerService) Create(ctx context.Context, req CreateSellerRequest) (*SellerResponse, error) {
	exists, err := s.sellerRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Seller with this code already exists")
	}

	sl, err := seller.NewSeller(req.Code, req.Name, seller.SellerType(req.Type))
	if err != nil {
		return nil, err
	}

	if req.ShortName != "" {
		if err := sl.Update(req.Name, req.ShortName); err != nil {
			return nil, err
		}
	}
	if req.ContactName != "" || req.Phone != "" || req.Email != "" {
		if err := sl.SetContact(req.ContactName, req.Phone, req.Email); err != nil {
			return nil, err
		}
	}
	if req.Address != "" || req.City != "" || req.State != "" || req.PostalCode != "" {
		if err := sl.SetAddress(req.Address, req.City, req.State, req.PostalCode); err != nil {
			return nil, err
		}
	}
	if req.Notes != "" {
		sl.SetNotes(req.Notes)
	}

	if err := s.sellerRepo.Save(ctx, sl); err != nil {
		return nil, err
	}

	response := ToSellerResponse(sl)
	return &response, nil
}

// GetByID retrieves a seller by ID
func (s *SellerService) GetByID(ctx context.Context, sellerID uuid.UUID) (*SellerResponse, error) {
	sl, err := s.sellerRepo.FindByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	response := ToSellerResponse(sl)
	return &response, nil
}

// GetByCode retrieves a seller by code
func (s *SellerService) GetByCode(ctx context.Context, code string) (*SellerResponse, error) {
	sl, err := s.sellerRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	response := ToSellerResponse(sl)
	return &response, nil
}

// List retrieves sellers with pagination
func (s *SellerService) List(ctx context.Context, filter shared.Filter) ([]SellerResponse, int64, error) {
	sellers, err := s.sellerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.sellerRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToSellerResponses(sellers), total, nil
}

// Update updates a seller's mutable fields
func (s *SellerService) Update(ctx context.Context, sellerID uuid.UUID, req UpdateSellerRequest) (*SellerResponse, error) {
	sl, err := s.sellerRepo.FindByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	if err := sl.Update(req.Name, req.ShortName); err != nil {
		return nil, err
	}
	if err := sl.SetContact(req.ContactName, req.Phone, req.Email); err != nil {
		return nil, err
	}
	if req.Address != "" || req.City != "" || req.State != "" || req.PostalCode != "" {
		if err := sl.SetAddress(req.Address, req.City, req.State, req.PostalCode); err != nil {
			return nil, err
		}
	}
	sl.SetNotes(req.Notes)

	if err := s.sellerRepo.Save(ctx, sl); err != nil {
		return nil, err
	}

	response := ToSellerResponse(sl)
	return &response, nil
}

// Activate re-enables a seller for new trades
func (s *SellerService) Activate(ctx context.Context, sellerID uuid.UUID) (*SellerResponse, error) {
	return s.changeStatus(ctx, sellerID, func(sl *seller.Seller) error { return sl.Activate() })
}

// Deactivate disables a seller
func (s *SellerService) Deactivate(ctx context.Context, sellerID uuid.UUID) (*SellerResponse, error) {
	return s.changeStatus(ctx, sellerID, func(sl *seller.Seller) error { return sl.Deactivate() })
}

// Block blocks a seller from new trades
func (s *SellerService) Block(ctx context.Context, sellerID uuid.UUID) (*SellerResponse, error) {
	return s.changeStatus(ctx, sellerID, func(sl *seller.Seller) error { return sl.Block() })
}

func (s *SellerService) changeStatus(ctx context.Context, sellerID uuid.UUID, change func(*seller.Seller) error) (*SellerResponse, error) {
	sl, err := s.sellerRepo.FindByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if err := change(sl); err != nil {
		return nil, err
	}
	if err := s.sellerRepo.Save(ctx, sl); err != nil {
		return nil, err
	}
	response := ToSellerResponse(sl)
	return &response, nil
}
