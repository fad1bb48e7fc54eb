package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "DESC"},
		{"ASC", "ASC"},
		{"asc", "ASC"},
		{"  asc  ", "ASC"},
		{"DESC", "DESC"},
		{"desc", "DESC"},
		{"INVALID", "DESC"},
		{"   ", "DESC"},
		{"ASC; DROP TABLE asset_hubs;--", "DESC"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ValidateSortOrder(tt.input), "input %q", tt.input)
	}
}

func TestValidateSortField(t *testing.T) {
	allowed := map[string]bool{
		"id":          true,
		"created_at":  true,
		"current_upb": true,
		"status":      true,
	}

	tests := []struct {
		name     string
		input    string
		fallback string
		expected string
	}{
		{"empty input falls back", "", "created_at", "created_at"},
		{"whitelisted field passes", "current_upb", "created_at", "current_upb"},
		{"whitespace trimmed", "  status  ", "created_at", "status"},
		{"unknown field falls back", "servicer_comment", "created_at", "created_at"},
		{"case sensitive", "STATUS", "created_at", "created_at"},
		{"whitespace only falls back", "   ", "created_at", "created_at"},
		{"injection falls back", "id; DROP TABLE asset_hubs;--", "created_at", "created_at"},
		{"embedded space falls back", "status id", "created_at", "created_at"},
		{"quote falls back", "status'--", "created_at", "created_at"},
		{"empty fallback passthrough", "unknown", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, allowed, tt.fallback))
		})
	}
}

// Every whitelist must carry the audit columns so default sorts work
// across list endpoints.
func TestSortFieldWhitelists(t *testing.T) {
	whitelists := map[string]map[string]bool{
		"user":      UserSortFields,
		"seller":    SellerSortFields,
		"trade":     TradeSortFields,
		"raw_data":  RawDataSortFields,
		"asset":     AssetSortFields,
		"valuation": ValuationSortFields,
		"extract":   ExtractSortFields,
		"track":     TrackSortFields,
		"document":  DocumentSortFields,
		"job":       JobSortFields,
	}

	for name, whitelist := range whitelists {
		t.Run(name, func(t *testing.T) {
			for _, field := range []string{"id", "created_at", "updated_at"} {
				assert.True(t, whitelist[field], "%s whitelist missing %q", name, field)
			}
			assert.Greater(t, len(whitelist), 3)
		})
	}
}

func TestSortValidation_RejectsInjectionPayloads(t *testing.T) {
	payloads := []string{
		"id; DROP TABLE asset_hubs;--",
		"id' OR '1'='1",
		"id UNION SELECT * FROM users",
		"id, (SELECT password_hash FROM users)",
		"CASE WHEN 1=1 THEN id ELSE status END",
		"id/**/;DROP TABLE trades",
		"id\n; DROP TABLE trades",
		"' OR ''='",
	}

	for _, payload := range payloads {
		label := payload[:min(len(payload), 30)]
		t.Run(label, func(t *testing.T) {
			assert.Equal(t, "created_at", ValidateSortField(payload, AssetSortFields, "created_at"))
			assert.Equal(t, "DESC", ValidateSortOrder(payload))
		})
	}
}
