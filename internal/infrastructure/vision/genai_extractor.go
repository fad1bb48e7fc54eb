package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	etlapp "github.com/npl/backend/internal/application/etl"
	"github.com/npl/backend/internal/domain/etl"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// extractionPrompt asks the model for the canonical valuation-report
// fields as strict JSON. The page range keeps one call bounded; the
// merge step reconciles overlapping observations across calls.
const extractionPrompt = `You are reading a residential property valuation report (BPO or appraisal).
Read ONLY pages %d through %d of the attached PDF.

Extract the following fields where present:
- as_is_value: the as-is market value opinion, digits only (no currency symbols or commas)
- arv_value: the after-repair value opinion, digits only
- effective_date: the effective date of the value opinion, formatted YYYY-MM-DD
- vendor_name: the company or agent that produced the report
- property_type: the property type as stated (e.g. SFR, Condo, 2-4 Unit)
- occupancy: the stated occupancy (e.g. Occupied, Vacant, Unknown)

For each field you find, report the page number you read it from and a
confidence between 0 and 1. Omit fields that do not appear in the page range.`

// GenAIVisionExtractor reads valuation-report fields with the Gemini
// vision API.
type GenAIVisionExtractor struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

var _ etlapp.VisionExtractor = (*GenAIVisionExtractor)(nil)

// NewGenAIVisionExtractor creates a new GenAIVisionExtractor
func NewGenAIVisionExtractor(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GenAIVisionExtractor, error) {
	if apiKey == "" {
		return nil, errors.New("vision API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}

	return &GenAIVisionExtractor{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// fieldResultSchema constrains the model to the field-observation shape
// the merge step expects.
func fieldResultSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"field": {
					Type:        genai.TypeString,
					Description: "Canonical field name",
				},
				"value": {
					Type:        genai.TypeString,
					Description: "Extracted value as a string",
				},
				"confidence": {
					Type:        genai.TypeNumber,
					Description: "Extraction confidence between 0 and 1",
				},
				"page": {
					Type:        genai.TypeInteger,
					Description: "1-based page number the value was read from",
				},
			},
			Required: []string{"field", "value", "confidence", "page"},
		},
	}
}

// ExtractFields asks the vision model to read the canonical fields out
// of one bounded page range of a PDF
func (e *GenAIVisionExtractor) ExtractFields(ctx context.Context, pdf []byte, startPage, endPage int) ([]etl.FieldResult, error) {
	if len(pdf) == 0 {
		return nil, errors.New("pdf content is empty")
	}
	if startPage < 1 || endPage < startPage {
		return nil, fmt.Errorf("invalid page range %d-%d", startPage, endPage)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(pdf, "application/pdf"),
			genai.NewPartFromText(fmt.Sprintf(extractionPrompt, startPage, endPage)),
		}, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   fieldResultSchema(),
	}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("vision model call failed: %w", err)
	}

	raw := resp.Text()
	if raw == "" {
		return nil, errors.New("vision model returned an empty response")
	}

	results, err := parseFieldResults([]byte(raw), startPage, endPage)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Vision pass extracted fields",
		zap.Int("start_page", startPage),
		zap.Int("end_page", endPage),
		zap.Int("field_count", len(results)),
	)

	return results, nil
}

// parseFieldResults decodes the model JSON and drops observations that
// fall outside the requested page range or carry a malformed confidence.
func parseFieldResults(raw []byte, startPage, endPage int) ([]etl.FieldResult, error) {
	var results []etl.FieldResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("failed to parse vision model output: %w", err)
	}

	filtered := results[:0]
	for _, fr := range results {
		if fr.Page < startPage || fr.Page > endPage {
			continue
		}
		if fr.Confidence < 0 || fr.Confidence > 1 {
			continue
		}
		filtered = append(filtered, fr)
	}

	return filtered, nil
}
