package seller

import (
	"strings"
	"time"

	"github.com/npl/backend/internal/domain/shared"
)

// SellerStatus represents the status of a seller counterparty
type SellerStatus string

const (
	SellerStatusActive   SellerStatus = "active"
	SellerStatusInactive SellerStatus = "inactive"
	SellerStatusBlocked  SellerStatus = "blocked" // Blocked due to repurchase or data-quality disputes
)

// SellerType classifies the counterparty selling loan pools
type SellerType string

const (
	SellerTypeBank       SellerType = "bank"
	SellerTypeFund       SellerType = "fund"
	SellerTypeServicer   SellerType = "servicer"
	SellerTypeAggregator SellerType = "aggregator"
)

// Seller represents a counterparty that sells loan pools.
// It is the aggregate root for seller-related operations.
type Seller struct {
	shared.BaseAggregateRoot
	Code        string       `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string       `gorm:"type:varchar(200);not null"`
	ShortName   string       `gorm:"type:varchar(100)"`
	Type        SellerType   `gorm:"type:varchar(20);not null;default:'bank'"`
	Status      SellerStatus `gorm:"type:varchar(20);not null;default:'active'"`
	ContactName string       `gorm:"type:varchar(100)"`
	Phone       string       `gorm:"type:varchar(50)"`
	Email       string       `gorm:"type:varchar(200);index"`
	Address     string       `gorm:"type:text"`
	City        string       `gorm:"type:varchar(100)"`
	State       string       `gorm:"type:varchar(2)"`
	PostalCode  string       `gorm:"type:varchar(20)"`
	Notes       string       `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Seller) TableName() string {
	return "sellers"
}

// NewSeller creates a new seller with required fields
func NewSeller(code, name string, sellerType SellerType) (*Seller, error) {
	if err := validateCode(code); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if !sellerType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SELLER_TYPE", "Unknown seller type")
	}

	return &Seller{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Type:              sellerType,
		Status:            SellerStatusActive,
	}, nil
}

// IsValid checks if the seller type is known
func (t SellerType) IsValid() bool {
	switch t {
	case SellerTypeBank, SellerTypeFund, SellerTypeServicer, SellerTypeAggregator:
		return true
	}
	return false
}

// Update updates the seller's basic information
func (s *Seller) Update(name, shortName string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if shortName != "" && len(shortName) > 100 {
		return shared.NewDomainError("INVALID_SHORT_NAME", "Short name cannot exceed 100 characters")
	}

	s.Name = name
	s.ShortName = shortName
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// SetContact sets the seller's contact information
func (s *Seller) SetContact(contactName, phone, email string) error {
	if contactName != "" && len(contactName) > 100 {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
	}
	if email != "" && !strings.Contains(email, "@") {
		return shared.NewDomainError("INVALID_EMAIL", "Email format is invalid")
	}

	s.ContactName = contactName
	s.Phone = phone
	s.Email = strings.ToLower(email)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// SetAddress sets the seller's mailing address
func (s *Seller) SetAddress(address, city, state, postalCode string) error {
	if state != "" && len(state) != 2 {
		return shared.NewDomainError("INVALID_STATE", "State must be a two-letter code")
	}

	s.Address = address
	s.City = city
	s.State = strings.ToUpper(state)
	s.PostalCode = postalCode
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// SetNotes sets free-form notes
func (s *Seller) SetNotes(notes string) {
	s.Notes = notes
	s.UpdatedAt = time.Now()
}

// Activate activates the seller
func (s *Seller) Activate() error {
	if s.Status == SellerStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Seller is already active")
	}
	s.Status = SellerStatusActive
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// Deactivate deactivates the seller
func (s *Seller) Deactivate() error {
	if s.Status == SellerStatusInactive {
		return shared.NewDomainError("INVALID_STATE", "Seller is already inactive")
	}
	s.Status = SellerStatusInactive
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// Block blocks the seller from new trades
func (s *Seller) Block() error {
	if s.Status == SellerStatusBlocked {
		return shared.NewDomainError("INVALID_STATE", "Seller is already blocked")
	}
	s.Status = SellerStatusBlocked
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// CanTrade returns true if new trades may be opened with this seller
func (s *Seller) CanTrade() bool {
	return s.Status == SellerStatusActive
}

func validateCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Seller code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Seller code cannot exceed 50 characters")
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Seller name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Seller name cannot exceed 200 characters")
	}
	return nil
}
