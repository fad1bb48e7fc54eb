package tape

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// FieldType is the expected shape of a tape column
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
	TypeDate    FieldType = "date"
)

// Tape dates default to ISO; sellers exporting US-style dates are
// normalized upstream before upload.
const defaultDateFormat = "2006-01-02"

var zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// uspsStates covers the 50 states plus DC and PR, the footprint the
// platform trades in.
var uspsStates = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {},
	"DE": {}, "DC": {}, "FL": {}, "GA": {}, "HI": {}, "ID": {}, "IL": {},
	"IN": {}, "IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {},
	"MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {},
	"NV": {}, "NH": {}, "NJ": {}, "NM": {}, "NY": {}, "NC": {}, "ND": {},
	"OH": {}, "OK": {}, "OR": {}, "PA": {}, "PR": {}, "RI": {}, "SC": {},
	"SD": {}, "TN": {}, "TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {},
	"WV": {}, "WI": {}, "WY": {},
}

// IsUSPSState reports whether code is a recognized two-letter state
func IsUSPSState(code string) bool {
	_, ok := uspsStates[code]
	return ok
}

// FieldRule is the validation contract for one tape column
type FieldRule struct {
	Column     string
	Type       FieldType
	Required   bool
	MinLength  int
	MaxLength  int
	MinValue   *decimal.Decimal
	MaxValue   *decimal.Decimal
	DateFormat string
	Unique     bool
	StateCode  bool
	ZipCode    bool
}

// RuleBuilder assembles a FieldRule fluently
type RuleBuilder struct {
	rule FieldRule
}

// Field starts a rule for the named column
func Field(column string) *RuleBuilder {
	return &RuleBuilder{
		rule: FieldRule{
			Column:     column,
			Type:       TypeString,
			DateFormat: defaultDateFormat,
		},
	}
}

// Required rejects blank values
func (b *RuleBuilder) Required() *RuleBuilder {
	b.rule.Required = true
	return b
}

// String expects free text
func (b *RuleBuilder) String() *RuleBuilder {
	b.rule.Type = TypeString
	return b
}

// Int expects a whole number (lien position, days past due)
func (b *RuleBuilder) Int() *RuleBuilder {
	b.rule.Type = TypeInt
	return b
}

// Decimal expects a money or rate value
func (b *RuleBuilder) Decimal() *RuleBuilder {
	b.rule.Type = TypeDecimal
	return b
}

// DateFormat expects a date in the given Go layout
func (b *RuleBuilder) DateFormat(layout string) *RuleBuilder {
	b.rule.Type = TypeDate
	b.rule.DateFormat = layout
	return b
}

// MinLength bounds the value length from below
func (b *RuleBuilder) MinLength(n int) *RuleBuilder {
	b.rule.MinLength = n
	return b
}

// MaxLength bounds the value length from above
func (b *RuleBuilder) MaxLength(n int) *RuleBuilder {
	b.rule.MaxLength = n
	return b
}

// MinValue bounds a numeric column from below
func (b *RuleBuilder) MinValue(v decimal.Decimal) *RuleBuilder {
	b.rule.MinValue = &v
	return b
}

// MaxValue bounds a numeric column from above
func (b *RuleBuilder) MaxValue(v decimal.Decimal) *RuleBuilder {
	b.rule.MaxValue = &v
	return b
}

// Unique rejects values repeated within the same file
func (b *RuleBuilder) Unique() *RuleBuilder {
	b.rule.Unique = true
	return b
}

// StateCode expects a two-letter USPS state abbreviation
func (b *RuleBuilder) StateCode() *RuleBuilder {
	b.rule.StateCode = true
	return b
}

// ZipCode expects a 5-digit or ZIP+4 postal code
func (b *RuleBuilder) ZipCode() *RuleBuilder {
	b.rule.ZipCode = true
	return b
}

// Build finalizes the rule
func (b *RuleBuilder) Build() FieldRule {
	return b.rule
}
