package am

import (
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// REOStage tracks an owned property through marketing to sale
type REOStage string

const (
	REOStagePreMarketing  REOStage = "PRE_MARKETING" // Eviction, rehab, title clearing
	REOStageListed        REOStage = "LISTED"
	REOStageUnderContract REOStage = "UNDER_CONTRACT"
	REOStageSold          REOStage = "SOLD"
)

// IsValid checks if the stage is a valid REOStage
func (s REOStage) IsValid() bool {
	switch s {
	case REOStagePreMarketing, REOStageListed, REOStageUnderContract, REOStageSold:
		return true
	}
	return false
}

// CanTransitionTo checks if the stage can transition to the target stage
func (s REOStage) CanTransitionTo(target REOStage) bool {
	switch s {
	case REOStagePreMarketing:
		return target == REOStageListed
	case REOStageListed:
		return target == REOStageUnderContract
	case REOStageUnderContract:
		return target == REOStageSold || target == REOStageListed // Fallen contract relists
	case REOStageSold:
		return false
	}
	return false
}

// REOProperty is the detail record for an REO track
type REOProperty struct {
	shared.BaseEntity
	TrackID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	HubID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Stage          REOStage        `gorm:"type:varchar(20);not null;default:'PRE_MARKETING'"`
	DeedRecordedAt *time.Time
	ListPrice      decimal.Decimal `gorm:"type:decimal(18,2)"`
	ListedAt       *time.Time
	ContractPrice  decimal.Decimal `gorm:"type:decimal(18,2)"`
	ContractAt     *time.Time
	SalePrice      decimal.Decimal `gorm:"type:decimal(18,2)"`
	SoldAt         *time.Time
	RehabBudget    decimal.Decimal `gorm:"type:decimal(18,2)"`
	BrokerName     string          `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (REOProperty) TableName() string {
	return "reo_properties"
}

// NewREOProperty opens the REO detail for a track
func NewREOProperty(trackID, hubID uuid.UUID) (*REOProperty, error) {
	if trackID == uuid.Nil || hubID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Track and hub IDs cannot be empty")
	}
	return &REOProperty{
		BaseEntity:    shared.NewBaseEntity(),
		TrackID:       trackID,
		HubID:         hubID,
		Stage:         REOStagePreMarketing,
		ListPrice:     decimal.Zero,
		ContractPrice: decimal.Zero,
		SalePrice:     decimal.Zero,
		RehabBudget:   decimal.Zero,
	}, nil
}

// List puts the property on market
func (r *REOProperty) List(listPrice decimal.Decimal, brokerName string) error {
	if !r.Stage.CanTransitionTo(REOStageListed) {
		return shared.NewDomainError("INVALID_STATE", "Property cannot be listed from "+string(r.Stage))
	}
	if listPrice.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PRICE", "List price must be positive")
	}
	now := time.Now()
	r.Stage = REOStageListed
	r.ListPrice = listPrice
	r.BrokerName = brokerName
	r.ListedAt = &now
	r.UpdatedAt = now
	return nil
}

// ReducePrice lowers the list price of a marketed property
func (r *REOProperty) ReducePrice(newPrice decimal.Decimal) error {
	if r.Stage != REOStageListed {
		return shared.NewDomainError("INVALID_STATE", "Only a listed property can be repriced")
	}
	if newPrice.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PRICE", "List price must be positive")
	}
	if newPrice.GreaterThanOrEqual(r.ListPrice) {
		return shared.NewDomainError("INVALID_PRICE", "Reduced price must be below the current list price")
	}
	r.ListPrice = newPrice
	r.UpdatedAt = time.Now()
	return nil
}

// AcceptContract records an accepted purchase contract
func (r *REOProperty) AcceptContract(contractPrice decimal.Decimal) error {
	if !r.Stage.CanTransitionTo(REOStageUnderContract) {
		return shared.NewDomainError("INVALID_STATE", "Property cannot go under contract from "+string(r.Stage))
	}
	if contractPrice.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PRICE", "Contract price must be positive")
	}
	now := time.Now()
	r.Stage = REOStageUnderContract
	r.ContractPrice = contractPrice
	r.ContractAt = &now
	r.UpdatedAt = now
	return nil
}

// ContractFell relists the property after a fallen contract
func (r *REOProperty) ContractFell() error {
	if r.Stage != REOStageUnderContract {
		return shared.NewDomainError("INVALID_STATE", "Only a property under contract can fall back to listed")
	}
	r.Stage = REOStageListed
	r.ContractPrice = decimal.Zero
	r.ContractAt = nil
	r.UpdatedAt = time.Now()
	return nil
}

// Close records the closed sale
func (r *REOProperty) Close(salePrice decimal.Decimal, soldAt time.Time) error {
	if !r.Stage.CanTransitionTo(REOStageSold) {
		return shared.NewDomainError("INVALID_STATE", "Property cannot close from "+string(r.Stage))
	}
	if salePrice.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PRICE", "Sale price must be positive")
	}
	r.Stage = REOStageSold
	r.SalePrice = salePrice
	r.SoldAt = &soldAt
	r.UpdatedAt = time.Now()
	return nil
}
