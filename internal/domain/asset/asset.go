package asset

import (
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AssetStatus represents the lifecycle state of a boarded asset
type AssetStatus string

const (
	AssetStatusActive     AssetStatus = "ACTIVE"
	AssetStatusLiquidated AssetStatus = "LIQUIDATED"
	AssetStatusSold       AssetStatus = "SOLD"
)

// IsValid checks if the status is a valid AssetStatus
func (s AssetStatus) IsValid() bool {
	switch s {
	case AssetStatusActive, AssetStatusLiquidated, AssetStatusSold:
		return true
	}
	return false
}

// String returns the string representation of AssetStatus
func (s AssetStatus) String() string {
	return string(s)
}

// IsTerminal returns true once the asset has left the book
func (s AssetStatus) IsTerminal() bool {
	return s == AssetStatusLiquidated || s == AssetStatusSold
}

// Asset is a boarded loan under management. It is created from a
// SellerRawData row when its trade settles and carries a snapshot of
// the tape fields current at boarding time.
type Asset struct {
	shared.BaseAggregateRoot
	HubID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	TradeID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellerID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellerLoanNumber string          `gorm:"type:varchar(50);not null;index"`
	Status           AssetStatus     `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	CurrentUPB       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	InterestRate     decimal.Decimal `gorm:"type:decimal(8,5);not null"`
	LienPosition     int             `gorm:"not null;default:1"`
	NextDueDate      *time.Time
	MaturityDate     *time.Time
	PropertyStreet   string `gorm:"type:varchar(200)"`
	PropertyCity     string `gorm:"type:varchar(100)"`
	PropertyState    string `gorm:"type:varchar(2)"`
	PropertyZip      string `gorm:"type:varchar(10)"`
	PropertyType     string `gorm:"type:varchar(50)"`
	Occupancy        string `gorm:"type:varchar(30)"`
	BoardedAt        time.Time
	ResolvedAt       *time.Time
}

// TableName returns the table name for GORM
func (Asset) TableName() string {
	return "assets"
}

// NewAsset boards an asset against an existing hub identity
func NewAsset(hubID, tradeID, sellerID uuid.UUID, sellerLoanNumber string, upb, rate decimal.Decimal) (*Asset, error) {
	if hubID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_HUB", "Hub ID cannot be empty")
	}
	if tradeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TRADE", "Trade ID cannot be empty")
	}
	if sellerLoanNumber == "" {
		return nil, shared.NewDomainError("INVALID_LOAN_NUMBER", "Seller loan number cannot be empty")
	}
	if upb.IsNegative() {
		return nil, shared.NewDomainError("INVALID_UPB", "UPB cannot be negative")
	}

	a := &Asset{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		HubID:             hubID,
		TradeID:           tradeID,
		SellerID:          sellerID,
		SellerLoanNumber:  sellerLoanNumber,
		Status:            AssetStatusActive,
		CurrentUPB:        upb,
		InterestRate:      rate,
		LienPosition:      1,
		BoardedAt:         time.Now(),
	}

	a.AddDomainEvent(NewAssetBoardedEvent(a))
	return a, nil
}

// SetProperty fills the collateral address snapshot
func (a *Asset) SetProperty(street, city, state, zip, propType, occupancy string) {
	a.PropertyStreet = street
	a.PropertyCity = city
	a.PropertyState = state
	a.PropertyZip = zip
	a.PropertyType = propType
	a.Occupancy = occupancy
	a.UpdatedAt = time.Now()
}

// SetLoanTerms fills the remaining tape snapshot fields
func (a *Asset) SetLoanTerms(lienPosition int, nextDue, maturity *time.Time) {
	if lienPosition > 0 {
		a.LienPosition = lienPosition
	}
	a.NextDueDate = nextDue
	a.MaturityDate = maturity
	a.UpdatedAt = time.Now()
}

// UpdateUPB applies the balance from the latest servicing extract
func (a *Asset) UpdateUPB(upb decimal.Decimal) error {
	if a.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update a resolved asset")
	}
	if upb.IsNegative() {
		return shared.NewDomainError("INVALID_UPB", "UPB cannot be negative")
	}
	a.CurrentUPB = upb
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// MarkLiquidated resolves the asset through collateral liquidation
// (REO sale, foreclosure sale to a third party, short sale)
func (a *Asset) MarkLiquidated() error {
	return a.resolve(AssetStatusLiquidated)
}

// MarkSold resolves the asset through a note sale
func (a *Asset) MarkSold() error {
	return a.resolve(AssetStatusSold)
}

func (a *Asset) resolve(target AssetStatus) error {
	if a.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Asset is already resolved")
	}
	now := time.Now()
	prior := a.Status
	a.Status = target
	a.ResolvedAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()

	a.AddDomainEvent(NewAssetResolvedEvent(a, prior))
	return nil
}

// IsActive returns true while the asset remains on the book
func (a *Asset) IsActive() bool {
	return a.Status == AssetStatusActive
}
