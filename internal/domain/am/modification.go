package am

import (
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ModStage tracks a loan modification from offer to permanent terms
type ModStage string

const (
	ModStageOffered   ModStage = "OFFERED"
	ModStageTrial     ModStage = "TRIAL" // Trial payment plan in effect
	ModStagePermanent ModStage = "PERMANENT"
	ModStageBroken    ModStage = "BROKEN" // Borrower missed trial or permanent payments
)

// IsValid checks if the stage is a valid ModStage
func (s ModStage) IsValid() bool {
	switch s {
	case ModStageOffered, ModStageTrial, ModStagePermanent, ModStageBroken:
		return true
	}
	return false
}

// LoanModification is the detail record for a modification track
type LoanModification struct {
	shared.BaseEntity
	TrackID              uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	HubID                uuid.UUID       `gorm:"type:uuid;not null;index"`
	Stage                ModStage        `gorm:"type:varchar(20);not null;default:'OFFERED'"`
	NewRate              decimal.Decimal `gorm:"type:decimal(8,5);not null"`
	NewPayment           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	NewMaturityDate      *time.Time
	ForgivenAmount       decimal.Decimal `gorm:"type:decimal(18,2)"`
	CapitalizedArrearage decimal.Decimal `gorm:"type:decimal(18,2)"`
	TrialMonths          int             `gorm:"not null;default:3"`
	TrialPaymentsMade    int             `gorm:"not null;default:0"`
	TrialStartedAt       *time.Time
	PermanentAt          *time.Time
	BrokenAt             *time.Time
}

// TableName returns the table name for GORM
func (LoanModification) TableName() string {
	return "loan_modifications"
}

// NewLoanModification records a modification offer
func NewLoanModification(trackID, hubID uuid.UUID, newRate, newPayment decimal.Decimal, trialMonths int) (*LoanModification, error) {
	if trackID == uuid.Nil || hubID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Track and hub IDs cannot be empty")
	}
	if newRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Modified rate cannot be negative")
	}
	if newPayment.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Modified payment must be positive")
	}
	if trialMonths < 1 {
		trialMonths = 3
	}
	return &LoanModification{
		BaseEntity:           shared.NewBaseEntity(),
		TrackID:              trackID,
		HubID:                hubID,
		Stage:                ModStageOffered,
		NewRate:              newRate,
		NewPayment:           newPayment,
		ForgivenAmount:       decimal.Zero,
		CapitalizedArrearage: decimal.Zero,
		TrialMonths:          trialMonths,
	}, nil
}

// StartTrial begins the trial payment plan
func (m *LoanModification) StartTrial(startedAt time.Time) error {
	if m.Stage != ModStageOffered {
		return shared.NewDomainError("INVALID_STATE", "Trial can only start from an offered modification")
	}
	m.Stage = ModStageTrial
	m.TrialStartedAt = &startedAt
	m.UpdatedAt = time.Now()
	return nil
}

// RecordTrialPayment counts one received trial payment. Payments past
// the required count are rejected rather than silently absorbed.
func (m *LoanModification) RecordTrialPayment() error {
	if m.Stage != ModStageTrial {
		return shared.NewDomainError("INVALID_STATE", "Trial payments only apply to an active trial")
	}
	if m.TrialPaymentsMade >= m.TrialMonths {
		return shared.NewDomainError("TRIAL_COMPLETE", "All required trial payments are already recorded")
	}
	m.TrialPaymentsMade++
	m.UpdatedAt = time.Now()
	return nil
}

// TrialComplete reports whether every required trial payment was made
func (m *LoanModification) TrialComplete() bool {
	return m.TrialPaymentsMade >= m.TrialMonths
}

// MakePermanent converts a completed trial into permanent terms
func (m *LoanModification) MakePermanent(effectiveAt time.Time) error {
	if m.Stage != ModStageTrial {
		return shared.NewDomainError("INVALID_STATE", "Only a trial modification can become permanent")
	}
	if !m.TrialComplete() {
		return shared.NewDomainError("TRIAL_INCOMPLETE", "All trial payments must be made before permanent conversion")
	}
	m.Stage = ModStagePermanent
	m.PermanentAt = &effectiveAt
	m.UpdatedAt = time.Now()
	return nil
}

// Break marks the plan broken after missed payments
func (m *LoanModification) Break(brokenAt time.Time) error {
	if m.Stage != ModStageTrial && m.Stage != ModStagePermanent {
		return shared.NewDomainError("INVALID_STATE", "Only an active plan can break")
	}
	m.Stage = ModStageBroken
	m.BrokenAt = &brokenAt
	m.UpdatedAt = time.Now()
	return nil
}
