package servicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DelinquencyBucket is the standardized delinquency band for reporting
type DelinquencyBucket string

const (
	BucketCurrent   DelinquencyBucket = "CURRENT"
	BucketThirty    DelinquencyBucket = "30"
	BucketSixty     DelinquencyBucket = "60"
	BucketNinety    DelinquencyBucket = "90"
	BucketOneTwenty DelinquencyBucket = "120+"
)

// IsValid checks if the bucket is a valid DelinquencyBucket
func (b DelinquencyBucket) IsValid() bool {
	switch b {
	case BucketCurrent, BucketThirty, BucketSixty, BucketNinety, BucketOneTwenty:
		return true
	}
	return false
}

// String returns the string representation of DelinquencyBucket
func (b DelinquencyBucket) String() string {
	return string(b)
}

// DaysPastDueAt derives days past due from the next contractual due
// date as of a reporting date. A due date on or after the reporting
// date reads as zero.
func DaysPastDueAt(nextDue, asOf time.Time) int {
	days := int(asOf.Sub(nextDue).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// PeriodEnd returns the last day of a YYYY-MM reporting period
func PeriodEnd(period string) (time.Time, error) {
	t, err := time.Parse("2006-01", period)
	if err != nil {
		return time.Time{}, shared.NewDomainError("INVALID_PERIOD", "Period must be YYYY-MM")
	}
	return t.AddDate(0, 1, -1), nil
}

// BucketForDays maps days past due to the reporting bucket
func BucketForDays(days int) DelinquencyBucket {
	switch {
	case days < 30:
		return BucketCurrent
	case days < 60:
		return BucketThirty
	case days < 90:
		return BucketSixty
	case days < 120:
		return BucketNinety
	default:
		return BucketOneTwenty
	}
}

// ServicingExtract is one asset's row from a servicer's monthly file.
// One row per (hub, period); re-importing a period replaces the row.
type ServicingExtract struct {
	shared.BaseEntity
	HubID             uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_servicing_hub_period,priority:1"`
	Period            string            `gorm:"type:varchar(7);not null;uniqueIndex:idx_servicing_hub_period,priority:2"` // YYYY-MM
	ImportID          uuid.UUID         `gorm:"type:uuid;not null;index"`
	Servicer          string            `gorm:"type:varchar(100)"`
	CurrentUPB        decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	InterestRate      decimal.Decimal   `gorm:"type:decimal(8,5);not null"`
	NextDueDate       *time.Time
	LastPaymentDate   *time.Time
	LastPaymentAmount decimal.Decimal   `gorm:"type:decimal(18,2)"`
	DaysPastDue       int               `gorm:"not null;default:0"`
	Bucket            DelinquencyBucket `gorm:"type:varchar(10);not null;index"`
	EscrowBalance     decimal.Decimal   `gorm:"type:decimal(18,2)"`
	CorporateAdvances decimal.Decimal   `gorm:"type:decimal(18,2)"`
}

// TableName returns the table name for GORM
func (ServicingExtract) TableName() string {
	return "servicing_extracts"
}

// NewServicingExtract records one asset-month from a servicer file.
// period must be YYYY-MM.
func NewServicingExtract(hubID, importID uuid.UUID, period string, upb decimal.Decimal, daysPastDue int) (*ServicingExtract, error) {
	if hubID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_HUB", "Hub ID cannot be empty")
	}
	if _, err := time.Parse("2006-01", period); err != nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period must be YYYY-MM")
	}
	if upb.IsNegative() {
		return nil, shared.NewDomainError("INVALID_UPB", "UPB cannot be negative")
	}
	if daysPastDue < 0 {
		return nil, shared.NewDomainError("INVALID_DPD", "Days past due cannot be negative")
	}

	return &ServicingExtract{
		BaseEntity:        shared.NewBaseEntity(),
		HubID:             hubID,
		ImportID:          importID,
		Period:            period,
		CurrentUPB:        upb,
		InterestRate:      decimal.Zero,
		LastPaymentAmount: decimal.Zero,
		EscrowBalance:     decimal.Zero,
		CorporateAdvances: decimal.Zero,
		DaysPastDue:       daysPastDue,
		Bucket:            BucketForDays(daysPastDue),
	}, nil
}

// SetPayment records last-payment fields from the servicer file
func (e *ServicingExtract) SetPayment(date *time.Time, amount decimal.Decimal) {
	e.LastPaymentDate = date
	e.LastPaymentAmount = amount
	e.UpdatedAt = time.Now()
}

// SetBalances records escrow and advance balances from the servicer file
func (e *ServicingExtract) SetBalances(escrow, advances decimal.Decimal) {
	e.EscrowBalance = escrow
	e.CorporateAdvances = advances
	e.UpdatedAt = time.Now()
}
