package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"username":      true,
	"email":         true,
	"display_name":  true,
	"status":        true,
	"role":          true,
	"last_login_at": true,
}

// SellerSortFields contains allowed sort fields for sellers
var SellerSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"short_name": true,
	"type":       true,
	"status":     true,
	"state":      true,
}

// TradeSortFields contains allowed sort fields for trades
var TradeSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"trade_number":    true,
	"name":            true,
	"seller_name":     true,
	"status":          true,
	"bid_amount":      true,
	"bid_pct_of_upb":  true,
	"purchase_price":  true,
	"bid_date":        true,
	"award_date":      true,
	"settlement_date": true,
}

// RawDataSortFields contains allowed sort fields for landed tape rows
var RawDataSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"seller_loan_number": true,
	"status":             true,
	"current_upb":        true,
	"interest_rate":      true,
	"property_state":     true,
	"boarded_at":         true,
}

// AssetSortFields contains allowed sort fields for assets
var AssetSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"seller_loan_number": true,
	"status":             true,
	"current_upb":        true,
	"interest_rate":      true,
	"property_state":     true,
	"boarded_at":         true,
	"resolved_at":        true,
}

// ValuationSortFields contains allowed sort fields for valuations
var ValuationSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"source":         true,
	"as_is_value":    true,
	"arv_value":      true,
	"effective_date": true,
	"vendor":         true,
}

// ExtractSortFields contains allowed sort fields for servicing extracts
var ExtractSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"period":        true,
	"current_upb":   true,
	"days_past_due": true,
	"bucket":        true,
	"servicer":      true,
}

// TrackSortFields contains allowed sort fields for AM tracks
var TrackSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"type":        true,
	"status":      true,
	"outcome":     true,
	"opened_at":   true,
	"resolved_at": true,
}

// DocumentSortFields contains allowed sort fields for documents
var DocumentSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"type":         true,
	"status":       true,
	"file_name":    true,
	"size_bytes":   true,
	"confirmed_at": true,
}

// JobSortFields contains allowed sort fields for extraction jobs
var JobSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"status":       true,
	"page_count":   true,
	"started_at":   true,
	"completed_at": true,
}
