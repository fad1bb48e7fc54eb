package vision

import (
	"context"

	etlapp "github.com/npl/backend/internal/application/etl"
	"github.com/npl/backend/internal/domain/etl"
	"github.com/npl/backend/internal/domain/shared"
)

// DisabledVisionExtractor is the extractor used when no vision API key is
// configured. Every extraction attempt fails with a domain error so jobs
// end up FAILED instead of panicking on a nil client.
type DisabledVisionExtractor struct{}

// NewDisabledVisionExtractor creates a new DisabledVisionExtractor
func NewDisabledVisionExtractor() *DisabledVisionExtractor {
	return &DisabledVisionExtractor{}
}

var _ etlapp.VisionExtractor = (*DisabledVisionExtractor)(nil)

// ExtractFields always fails; extraction requires a configured vision API key
func (e *DisabledVisionExtractor) ExtractFields(ctx context.Context, pdf []byte, startPage, endPage int) ([]etl.FieldResult, error) {
	return nil, shared.NewDomainError("EXTRACTION_DISABLED", "Vision extraction is not configured")
}
