package etl

import (
	"github.com/shopspring/decimal"
)

// Canonical field names the vision model is asked to extract
const (
	FieldAsIsValue     = "as_is_value"
	FieldARVValue      = "arv_value"
	FieldEffectiveDate = "effective_date"
	FieldVendorName    = "vendor_name"
	FieldPropertyType  = "property_type"
	FieldOccupancy     = "occupancy"
)

// MinConfidence is the floor below which a field observation is
// discarded instead of merged.
const MinConfidence = 0.5

// FieldResult is one field observation from one pass
type FieldResult struct {
	Field      string          `json:"field"`
	Value      string          `json:"value"`
	Confidence float64         `json:"confidence"`
	Page       int             `json:"page"` // Document page the value was read from
}

// PassResult is the parsed output of one extraction pass
type PassResult struct {
	PassSequence int           `json:"pass_sequence"`
	Fields       []FieldResult `json:"fields"`
}

// MergedResult is the document-level consensus after merging passes
type MergedResult struct {
	Fields map[string]FieldResult `json:"fields"`
}

// Get returns the merged observation for a field
func (m MergedResult) Get(field string) (FieldResult, bool) {
	fr, ok := m.Fields[field]
	return fr, ok
}

// AsIsValue parses the merged as-is value as a decimal
func (m MergedResult) AsIsValue() (decimal.Decimal, bool) {
	fr, ok := m.Fields[FieldAsIsValue]
	if !ok {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(fr.Value)
	if err != nil || d.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false
	}
	return d, true
}

// Merge folds per-pass field observations into a document-level
// result. For each field the highest-confidence observation wins;
// equal confidence resolves to the earliest page, so values from a
// report's summary page beat repeats deeper in the document.
// Observations below MinConfidence are dropped.
func Merge(passes []PassResult) MergedResult {
	merged := MergedResult{Fields: make(map[string]FieldResult)}

	for _, pass := range passes {
		for _, fr := range pass.Fields {
			if fr.Field == "" || fr.Value == "" {
				continue
			}
			if fr.Confidence < MinConfidence {
				continue
			}
			best, exists := merged.Fields[fr.Field]
			if !exists {
				merged.Fields[fr.Field] = fr
				continue
			}
			if fr.Confidence > best.Confidence {
				merged.Fields[fr.Field] = fr
				continue
			}
			if fr.Confidence == best.Confidence && fr.Page < best.Page {
				merged.Fields[fr.Field] = fr
			}
		}
	}

	return merged
}
