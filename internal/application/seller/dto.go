package seller

import (
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/seller"
)

// CreateSellerRequest is the request to create a seller
type CreateSellerRequest struct {
	Code        string `json:"code" binding:"required,max=20"`
	Name        string `json:"name" binding:"required,max=200"`
	Type        string `json:"type" binding:"required,oneof=bank fund servicer aggregator"`
	ShortName   string `json:"short_name" binding:"max=50"`
	ContactName string `json:"contact_name" binding:"max=100"`
	Phone       string `json:"phone" binding:"max=50"`
	Email       string `json:"email" binding:"omitempty,email"`
	Address     string `json:"address" binding:"max=200"`
	City        string `json:"city" binding:"max=100"`
	State       string `json:"state" binding:"omitempty,usstate"`
	PostalCode  string `json:"postal_code" binding:"max=10"`
	Notes       string `json:"notes" binding:"max=1000"`
}

// UpdateSellerRequest is the request to update a seller
type UpdateSellerRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	ShortName   string `json:"short_name" binding:"max=50"`
	ContactName string `json:"contact_name" binding:"max=100"`
	Phone       string `json:"phone" binding:"max=50"`
	Email       string `json:"email" binding:"omitempty,email"`
	Address     string `json:"address" binding:"max=200"`
	City        string `json:"city" binding:"max=100"`
	State       string `json:"state" binding:"omitempty,usstate"`
	PostalCode  string `json:"postal_code" binding:"max=10"`
	Notes       string `json:"notes" binding:"max=1000"`
}

// SellerResponse is the API representation of a seller
type SellerResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	ShortName   string    `json:"short_name,omitempty"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	ContactName string    `json:"contact_name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	Address     string    `json:"address,omitempty"`
	City        string    `json:"city,omitempty"`
	State       string    `json:"state,omitempty"`
	PostalCode  string    `json:"postal_code,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToSellerResponse converts a seller aggregate to its API representation
func ToSellerResponse(s *seller.Seller) SellerResponse {
	return SellerResponse{
		ID:          s.ID,
		Code:        s.Code,
		Name:        s.Name,
		ShortName:   s.ShortName,
		Type:        string(s.Type),
		Status:      string(s.Status),
		ContactName: s.ContactName,
		Phone:       s.Phone,
		Email:       s.Email,
		Address:     s.Address,
		City:        s.City,
		State:       s.State,
		PostalCode:  s.PostalCode,
		Notes:       s.Notes,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ToSellerResponses converts a slice of sellers
func ToSellerResponses(sellers []seller.Seller) []SellerResponse {
	out := make([]SellerResponse, len(sellers))
	for i := range sellers {
		out[i] = ToSellerResponse(&sellers[i])
	}
	return out
}

// RawDataResponse is the API representation of a landed tape row
type RawDataResponse struct {
	ID               uuid.UUID  `json:"id"`
	TradeID          uuid.UUID  `json:"trade_id"`
	SellerLoanNumber string     `json:"seller_loan_number"`
	Status           string     `json:"status"`
	CurrentUPB       string     `json:"current_upb"`
	InterestRate     string     `json:"interest_rate"`
	DelinquencyRaw   string     `json:"delinquency_raw,omitempty"`
	LienPosition     int        `json:"lien_position"`
	PropertyStreet   string     `json:"property_street,omitempty"`
	PropertyCity     string     `json:"property_city,omitempty"`
	PropertyState    string     `json:"property_state,omitempty"`
	PropertyZip      string     `json:"property_zip,omitempty"`
	PropertyType     string     `json:"property_type,omitempty"`
	Occupancy        string     `json:"occupancy,omitempty"`
	SellerAsIsValue  string     `json:"seller_as_is_value"`
	SellerARVValue   string     `json:"seller_arv_value"`
	BoardedAt        *time.Time `json:"boarded_at,omitempty"`
}

// ToRawDataResponse converts a raw data row to its API representation
func ToRawDataResponse(r *seller.SellerRawData) RawDataResponse {
	return RawDataResponse{
		ID:               r.ID,
		TradeID:          r.TradeID,
		SellerLoanNumber: r.SellerLoanNumber,
		Status:           string(r.Status),
		CurrentUPB:       r.CurrentUPB.String(),
		InterestRate:     r.InterestRate.String(),
		DelinquencyRaw:   r.DelinquencyRaw,
		LienPosition:     r.LienPosition,
		PropertyStreet:   r.PropertyStreet,
		PropertyCity:     r.PropertyCity,
		PropertyState:    r.PropertyState,
		PropertyZip:      r.PropertyZip,
		PropertyType:     r.PropertyType,
		Occupancy:        r.Occupancy,
		SellerAsIsValue:  r.SellerAsIsValue.String(),
		SellerARVValue:   r.SellerARVValue.String(),
		BoardedAt:        r.BoardedAt,
	}
}

// ToRawDataResponses converts a slice of raw data rows
func ToRawDataResponses(rows []seller.SellerRawData) []RawDataResponse {
	out := make([]RawDataResponse, len(rows))
	for i := range rows {
		out[i] = ToRawDataResponse(&rows[i])
	}
	return out
}

// TapeImportResponse is the API representation of an import run
type TapeImportResponse struct {
	ID          uuid.UUID  `json:"id"`
	TradeID     uuid.UUID  `json:"trade_id"`
	FileName    string     `json:"file_name"`
	Kind        string     `json:"kind"`
	Status      string     `json:"status"`
	TotalRows   int        `json:"total_rows"`
	SuccessRows int        `json:"success_rows"`
	FailedRows  int        `json:"failed_rows"`
	ErrorDetail string     `json:"error_detail,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ToTapeImportResponse converts an import record to its API representation
func ToTapeImportResponse(t *seller.TapeImport) TapeImportResponse {
	return TapeImportResponse{
		ID:          t.ID,
		TradeID:     t.TradeID,
		FileName:    t.FileName,
		Kind:        t.Kind,
		Status:      string(t.Status),
		TotalRows:   t.TotalRows,
		SuccessRows: t.SuccessRows,
		FailedRows:  t.FailedRows,
		ErrorDetail: t.ErrorDetail,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
}

// PopulationSummaryResponse is the trade population rollup
type PopulationSummaryResponse struct {
	LoanCount     int64  `json:"loan_count"`
	TotalUPB      string `json:"total_upb"`
	TotalAsIs     string `json:"total_as_is"`
	TotalARV      string `json:"total_arv"`
	BoardedCount  int64  `json:"boarded_count"`
	RejectedCount int64  `json:"rejected_count"`
}
