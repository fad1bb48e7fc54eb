package valuation

import (
	"context"
	"fmt"
	"time"

	"github.com/npl/backend/internal/domain/etl"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/npl/backend/internal/domain/valuation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ExtractionWriter turns a completed document-extraction job into an
// EXTRACTION valuation row. Jobs whose merged result carries no usable
// as-is value are skipped, not failed: the extraction still stands as
// document metadata even when no value opinion came out of it.
type ExtractionWriter struct {
	valuationRepo valuation.ValuationRepository
	logger        *zap.Logger
}

// NewExtractionWriter creates a new ExtractionWriter
func NewExtractionWriter(valuationRepo valuation.ValuationRepository, logger *zap.Logger) *ExtractionWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtractionWriter{
		valuationRepo: valuationRepo,
		logger:        logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (w *ExtractionWriter) EventTypes() []string {
	return []string{etl.EventTypeJobCompleted}
}

// Handle writes the extracted value opinion for the job's asset
func (w *ExtractionWriter) Handle(ctx context.Context, event shared.DomainEvent) error {
	completed, ok := event.(*etl.JobCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			etl.EventTypeJobCompleted, event.EventType())
	}

	asIs, ok := completed.Result.AsIsValue()
	if !ok {
		w.logger.Info("extraction produced no usable as-is value, skipping valuation",
			zap.String("job_id", completed.JobID.String()),
			zap.String("hub_id", completed.HubID.String()))
		return nil
	}

	effectiveDate := extractedEffectiveDate(completed.Result)

	v, err := valuation.NewValuation(completed.HubID, valuation.SourceExtraction, asIs, effectiveDate)
	if err != nil {
		return fmt.Errorf("build extraction valuation for job %s: %w", completed.JobID, err)
	}

	if fr, ok := completed.Result.Get(etl.FieldARVValue); ok {
		if arv, err := decimal.NewFromString(fr.Value); err == nil && arv.IsPositive() {
			v.ARVValue = arv
		}
	}
	if fr, ok := completed.Result.Get(etl.FieldVendorName); ok {
		v.Vendor = fr.Value
	}
	jobID := completed.JobID
	v.SourceRef = &jobID

	if err := w.valuationRepo.Save(ctx, v); err != nil {
		return err
	}

	w.logger.Info("extraction valuation recorded",
		zap.String("job_id", completed.JobID.String()),
		zap.String("hub_id", completed.HubID.String()),
		zap.String("as_is_value", asIs.String()))
	return nil
}

// extractedEffectiveDate uses the document's own effective date when
// the model read one; otherwise the extraction time stands in.
func extractedEffectiveDate(result etl.MergedResult) time.Time {
	fr, ok := result.Get(etl.FieldEffectiveDate)
	if !ok {
		return time.Now()
	}
	t, err := time.Parse("2006-01-02", fr.Value)
	if err != nil || t.After(time.Now()) {
		return time.Now()
	}
	return t
}

// Ensure ExtractionWriter implements shared.EventHandler
var _ shared.EventHandler = (*ExtractionWriter)(nil)
