package seller

import (
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RawDataStatus tracks whether a landed tape row has been boarded
type RawDataStatus string

const (
	RawDataStatusLanded   RawDataStatus = "LANDED"
	RawDataStatusBoarded  RawDataStatus = "BOARDED"
	RawDataStatusRejected RawDataStatus = "REJECTED" // Dropped from the trade during diligence
)

// SellerRawData is the landing table for as-received loan tape rows.
// Rows are written once during tape import and never mutated afterwards,
// apart from the boarding status flip at settlement.
type SellerRawData struct {
	shared.BaseEntity
	TradeID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_rawdata_trade_loan,priority:1"`
	SellerLoanNumber string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_rawdata_trade_loan,priority:2"`
	ImportID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status           RawDataStatus   `gorm:"type:varchar(20);not null;default:'LANDED'"`
	CurrentUPB       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	InterestRate     decimal.Decimal `gorm:"type:decimal(8,5);not null"`
	OriginationDate  *time.Time
	MaturityDate     *time.Time
	NextDueDate      *time.Time
	DelinquencyRaw   string          `gorm:"type:varchar(50)"` // As-received delinquency string, e.g. "90+"
	LienPosition     int             `gorm:"not null;default:1"`
	PropertyStreet   string          `gorm:"type:varchar(200)"`
	PropertyCity     string          `gorm:"type:varchar(100)"`
	PropertyState    string          `gorm:"type:varchar(2)"`
	PropertyZip      string          `gorm:"type:varchar(10)"`
	PropertyType     string          `gorm:"type:varchar(50)"`
	Occupancy        string          `gorm:"type:varchar(30)"`
	SellerAsIsValue  decimal.Decimal `gorm:"type:decimal(18,2)"`
	SellerARVValue   decimal.Decimal `gorm:"type:decimal(18,2)"`
	BoardedAt        *time.Time
}

// TableName returns the table name for GORM
func (SellerRawData) TableName() string {
	return "seller_raw_data"
}

// NewSellerRawData creates a landed tape row for a trade
func NewSellerRawData(tradeID, importID uuid.UUID, sellerLoanNumber string) (*SellerRawData, error) {
	if tradeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TRADE", "Trade ID cannot be empty")
	}
	if sellerLoanNumber == "" {
		return nil, shared.NewDomainError("INVALID_LOAN_NUMBER", "Seller loan number cannot be empty")
	}

	return &SellerRawData{
		BaseEntity:       shared.NewBaseEntity(),
		TradeID:          tradeID,
		ImportID:         importID,
		SellerLoanNumber: sellerLoanNumber,
		Status:           RawDataStatusLanded,
		CurrentUPB:       decimal.Zero,
		InterestRate:     decimal.Zero,
		SellerAsIsValue:  decimal.Zero,
		SellerARVValue:   decimal.Zero,
		LienPosition:     1,
	}, nil
}

// MarkBoarded flips the row to boarded. Boarding is one-way.
func (r *SellerRawData) MarkBoarded() error {
	if r.Status == RawDataStatusBoarded {
		return shared.ErrAlreadyBoarded
	}
	if r.Status == RawDataStatusRejected {
		return shared.NewDomainError("INVALID_STATE", "Rejected rows cannot be boarded")
	}
	now := time.Now()
	r.Status = RawDataStatusBoarded
	r.BoardedAt = &now
	r.UpdatedAt = now
	return nil
}

// Reject drops the row from the trade population during diligence
func (r *SellerRawData) Reject() error {
	if r.Status != RawDataStatusLanded {
		return shared.NewDomainError("INVALID_STATE", "Only landed rows can be rejected")
	}
	r.Status = RawDataStatusRejected
	r.UpdatedAt = time.Now()
	return nil
}

// ImportStatus represents the state of a tape import run
type ImportStatus string

const (
	ImportStatusRunning   ImportStatus = "RUNNING"
	ImportStatusCompleted ImportStatus = "COMPLETED"
	ImportStatusFailed    ImportStatus = "FAILED"
)

// TapeImport records one tape or servicing-extract ingestion run with row counts
type TapeImport struct {
	shared.BaseEntity
	TradeID      uuid.UUID    `gorm:"type:uuid;not null;index"`
	FileName     string       `gorm:"type:varchar(255);not null"`
	Kind         string       `gorm:"type:varchar(30);not null;default:'TAPE'"` // TAPE or SERVICING
	Status       ImportStatus `gorm:"type:varchar(20);not null;default:'RUNNING'"`
	TotalRows    int          `gorm:"not null;default:0"`
	SuccessRows  int          `gorm:"not null;default:0"`
	FailedRows   int          `gorm:"not null;default:0"`
	ErrorDetail  string       `gorm:"type:jsonb"` // JSON array of {row, error}
	CompletedAt  *time.Time
	SubmittedBy  *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (TapeImport) TableName() string {
	return "tape_imports"
}

// NewTapeImport starts an import-history record
func NewTapeImport(tradeID uuid.UUID, fileName, kind string) *TapeImport {
	return &TapeImport{
		BaseEntity: shared.NewBaseEntity(),
		TradeID:    tradeID,
		FileName:   fileName,
		Kind:       kind,
		Status:     ImportStatusRunning,
	}
}

// Complete records final counts and marks the run finished
func (t *TapeImport) Complete(total, success, failed int, errorDetail string) {
	now := time.Now()
	t.TotalRows = total
	t.SuccessRows = success
	t.FailedRows = failed
	t.ErrorDetail = errorDetail
	t.Status = ImportStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
}

// Fail marks the run failed outright (unreadable file, missing headers)
func (t *TapeImport) Fail(reason string) {
	now := time.Now()
	t.Status = ImportStatusFailed
	t.ErrorDetail = reason
	t.CompletedAt = &now
	t.UpdatedAt = now
}
