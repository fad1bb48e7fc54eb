package valuation

import (
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ValuationSource identifies where a value opinion came from
type ValuationSource string

const (
	SourceSellerTape ValuationSource = "SELLER_TAPE"
	SourceBPO        ValuationSource = "BPO"
	SourceAppraisal  ValuationSource = "APPRAISAL"
	SourceAVM        ValuationSource = "AVM"
	SourceDesktop    ValuationSource = "DESKTOP"
	SourceExtraction ValuationSource = "EXTRACTION"
)

// IsValid checks if the source is a valid ValuationSource
func (s ValuationSource) IsValid() bool {
	switch s {
	case SourceSellerTape, SourceBPO, SourceAppraisal, SourceAVM, SourceDesktop, SourceExtraction:
		return true
	}
	return false
}

// String returns the string representation of ValuationSource
func (s ValuationSource) String() string {
	return string(s)
}

// Rank returns the reconciliation precedence of the source.
// Higher rank wins; full appraisals outrank everything, seller tape
// values are the floor.
func (s ValuationSource) Rank() int {
	switch s {
	case SourceAppraisal:
		return 6
	case SourceBPO:
		return 5
	case SourceDesktop:
		return 4
	case SourceAVM:
		return 3
	case SourceExtraction:
		return 2
	case SourceSellerTape:
		return 1
	}
	return 0
}

// Valuation is one value opinion for an asset. Valuations are
// append-only; a corrected opinion is a new row.
type Valuation struct {
	shared.BaseEntity
	HubID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Source        ValuationSource `gorm:"type:varchar(20);not null;index"`
	AsIsValue     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ARVValue      decimal.Decimal `gorm:"type:decimal(18,2)"`
	EffectiveDate time.Time       `gorm:"not null;index"`
	Vendor        string          `gorm:"type:varchar(100)"`
	SourceRef     *uuid.UUID      `gorm:"type:uuid"` // Extraction job or import run that produced this row
	Notes         string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Valuation) TableName() string {
	return "valuations"
}

// NewValuation records a value opinion for an asset
func NewValuation(hubID uuid.UUID, source ValuationSource, asIs decimal.Decimal, effectiveDate time.Time) (*Valuation, error) {
	if hubID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_HUB", "Hub ID cannot be empty")
	}
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Unknown valuation source: "+string(source))
	}
	if asIs.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_VALUE", "As-is value must be positive")
	}
	if effectiveDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Effective date cannot be zero")
	}
	if effectiveDate.After(time.Now().Add(24 * time.Hour)) {
		return nil, shared.NewDomainError("INVALID_DATE", "Effective date cannot be in the future")
	}

	return &Valuation{
		BaseEntity:    shared.NewBaseEntity(),
		HubID:         hubID,
		Source:        source,
		AsIsValue:     asIs,
		ARVValue:      decimal.Zero,
		EffectiveDate: effectiveDate,
	}, nil
}

// IsStale reports whether the opinion is older than the staleness window
func (v *Valuation) IsStale(window time.Duration, now time.Time) bool {
	return now.Sub(v.EffectiveDate) > window
}

// DefaultStalenessWindow is how far back reconciliation will reach
// before falling through to lower-ranked sources.
const DefaultStalenessWindow = 180 * 24 * time.Hour

// Reconcile picks the authoritative valuation from a set of opinions.
//
// Opinions inside the staleness window are preferred, ranked by source
// precedence with recency breaking ties. If every opinion is stale the
// same ranking applies across the full set, so an old appraisal still
// beats an old tape value. Returns nil for an empty set.
func Reconcile(valuations []Valuation, window time.Duration, now time.Time) *Valuation {
	if len(valuations) == 0 {
		return nil
	}

	best := pick(valuations, func(v *Valuation) bool { return !v.IsStale(window, now) })
	if best == nil {
		best = pick(valuations, func(v *Valuation) bool { return true })
	}
	return best
}

func pick(valuations []Valuation, eligible func(*Valuation) bool) *Valuation {
	var best *Valuation
	for i := range valuations {
		v := &valuations[i]
		if !eligible(v) {
			continue
		}
		if best == nil {
			best = v
			continue
		}
		if v.Source.Rank() > best.Source.Rank() {
			best = v
			continue
		}
		if v.Source.Rank() == best.Source.Rank() && v.EffectiveDate.After(best.EffectiveDate) {
			best = v
		}
	}
	return best
}
