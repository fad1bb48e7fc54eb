package am

import (
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// FCStage tracks a foreclosure case through the court process
type FCStage string

const (
	FCStageReferred      FCStage = "REFERRED" // Sent to foreclosure counsel
	FCStageComplaint     FCStage = "COMPLAINT_FILED"
	FCStageJudgment      FCStage = "JUDGMENT"
	FCStageSaleScheduled FCStage = "SALE_SCHEDULED"
	FCStageSaleHeld      FCStage = "SALE_HELD"
)

// IsValid checks if the stage is a valid FCStage
func (s FCStage) IsValid() bool {
	switch s {
	case FCStageReferred, FCStageComplaint, FCStageJudgment, FCStageSaleScheduled, FCStageSaleHeld:
		return true
	}
	return false
}

// CanTransitionTo checks if the stage can transition to the target stage
func (s FCStage) CanTransitionTo(target FCStage) bool {
	switch s {
	case FCStageReferred:
		return target == FCStageComplaint
	case FCStageComplaint:
		return target == FCStageJudgment
	case FCStageJudgment:
		return target == FCStageSaleScheduled
	case FCStageSaleScheduled:
		return target == FCStageSaleHeld || target == FCStageJudgment // Postponed sale reschedules
	case FCStageSaleHeld:
		return false
	}
	return false
}

// ForeclosureCase is the detail record for a foreclosure track
type ForeclosureCase struct {
	shared.BaseEntity
	TrackID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	HubID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	Stage            FCStage         `gorm:"type:varchar(20);not null;default:'REFERRED'"`
	CaseNumber       string          `gorm:"type:varchar(50)"`
	AttorneyFirm     string          `gorm:"type:varchar(100)"`
	IsJudicial       bool            `gorm:"not null;default:true"`
	ReferredAt       time.Time       `gorm:"not null"`
	ComplaintFiledAt *time.Time
	JudgmentAt       *time.Time
	JudgmentAmount   decimal.Decimal `gorm:"type:decimal(18,2)"`
	SaleScheduledFor *time.Time
	SaleHeldAt       *time.Time
	SaleProceeds     decimal.Decimal `gorm:"type:decimal(18,2)"`
	ThirdPartySale   bool            `gorm:"not null;default:false"` // Third-party winner; false means reverted to REO
}

// TableName returns the table name for GORM
func (ForeclosureCase) TableName() string {
	return "foreclosure_cases"
}

// NewForeclosureCase opens the foreclosure detail for a track
func NewForeclosureCase(trackID, hubID uuid.UUID, attorneyFirm string, judicial bool) (*ForeclosureCase, error) {
	if trackID == uuid.Nil || hubID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Track and hub IDs cannot be empty")
	}
	return &ForeclosureCase{
		BaseEntity:     shared.NewBaseEntity(),
		TrackID:        trackID,
		HubID:          hubID,
		Stage:          FCStageReferred,
		AttorneyFirm:   attorneyFirm,
		IsJudicial:     judicial,
		ReferredAt:     time.Now(),
		JudgmentAmount: decimal.Zero,
		SaleProceeds:   decimal.Zero,
	}, nil
}

// FileComplaint records the complaint filing
func (f *ForeclosureCase) FileComplaint(caseNumber string, filedAt time.Time) error {
	if !f.Stage.CanTransitionTo(FCStageComplaint) {
		return shared.NewDomainError("INVALID_STATE", "Complaint cannot be filed from "+string(f.Stage))
	}
	if caseNumber == "" {
		return shared.NewDomainError("INVALID_CASE_NUMBER", "Case number cannot be empty")
	}
	f.Stage = FCStageComplaint
	f.CaseNumber = caseNumber
	f.ComplaintFiledAt = &filedAt
	f.UpdatedAt = time.Now()
	return nil
}

// EnterJudgment records the foreclosure judgment
func (f *ForeclosureCase) EnterJudgment(amount decimal.Decimal, enteredAt time.Time) error {
	if !f.Stage.CanTransitionTo(FCStageJudgment) {
		return shared.NewDomainError("INVALID_STATE", "Judgment cannot be entered from "+string(f.Stage))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Judgment amount must be positive")
	}
	f.Stage = FCStageJudgment
	f.JudgmentAmount = amount
	f.JudgmentAt = &enteredAt
	f.UpdatedAt = time.Now()
	return nil
}

// ScheduleSale sets the sheriff/trustee sale date
func (f *ForeclosureCase) ScheduleSale(saleDate time.Time) error {
	if !f.Stage.CanTransitionTo(FCStageSaleScheduled) {
		return shared.NewDomainError("INVALID_STATE", "Sale cannot be scheduled from "+string(f.Stage))
	}
	f.Stage = FCStageSaleScheduled
	f.SaleScheduledFor = &saleDate
	f.UpdatedAt = time.Now()
	return nil
}

// PostponeSale drops the case back to judgment for rescheduling
func (f *ForeclosureCase) PostponeSale() error {
	if f.Stage != FCStageSaleScheduled {
		return shared.NewDomainError("INVALID_STATE", "Only a scheduled sale can be postponed")
	}
	f.Stage = FCStageJudgment
	f.SaleScheduledFor = nil
	f.UpdatedAt = time.Now()
	return nil
}

// RecordSale records the held sale. thirdParty true means a third-party
// bidder won; false means the property reverted and continues as REO.
func (f *ForeclosureCase) RecordSale(proceeds decimal.Decimal, heldAt time.Time, thirdParty bool) error {
	if !f.Stage.CanTransitionTo(FCStageSaleHeld) {
		return shared.NewDomainError("INVALID_STATE", "Sale cannot be recorded from "+string(f.Stage))
	}
	if thirdParty && proceeds.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Third-party sale proceeds must be positive")
	}
	f.Stage = FCStageSaleHeld
	f.SaleProceeds = proceeds
	f.SaleHeldAt = &heldAt
	f.ThirdPartySale = thirdParty
	f.UpdatedAt = time.Now()
	return nil
}
