package tape

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tapeRules() []FieldRule {
	zero := decimal.Zero
	return []FieldRule{
		Field("seller_loan_number").Required().String().MinLength(1).MaxLength(50).Unique().Build(),
		Field("current_upb").Required().Decimal().MinValue(zero).Build(),
		Field("interest_rate").Decimal().MinValue(zero).MaxValue(decimal.NewFromInt(1)).Build(),
		Field("next_due_date").DateFormat("2006-01-02").Build(),
		Field("lien_position").Int().Build(),
		Field("property_state").StateCode().Build(),
		Field("property_zip").ZipCode().Build(),
	}
}

func makeRow(line int, overrides map[string]string) *Row {
	data := map[string]string{
		"seller_loan_number": fmt.Sprintf("LN-%04d", line),
		"current_upb":        "125000.00",
		"interest_rate":      "0.065",
		"next_due_date":      "2025-11-01",
		"lien_position":      "1",
		"property_state":     "TX",
		"property_zip":       "75201",
	}
	for k, v := range overrides {
		data[k] = v
	}
	return &Row{LineNumber: line, Data: data}
}

func TestFieldValidator_CleanRowPasses(t *testing.T) {
	v := NewFieldValidator(tapeRules(), 100)
	assert.True(t, v.ValidateRow(makeRow(2, nil)))
	assert.False(t, v.Errors().HasErrors())
}

func TestFieldValidator_RequiredAndTypes(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
		wantCode  string
	}{
		{"blank loan number", map[string]string{"seller_loan_number": ""}, ErrCodeRequired},
		{"non-numeric UPB", map[string]string{"current_upb": "abc"}, ErrCodeBadType},
		{"US-style date", map[string]string{"next_due_date": "11/01/2025"}, ErrCodeBadType},
		{"fractional lien", map[string]string{"lien_position": "1.5"}, ErrCodeBadType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewFieldValidator(tapeRules(), 100)
			assert.False(t, v.ValidateRow(makeRow(2, tt.overrides)))

			errs := v.Errors().Errors()
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantCode, errs[0].Code)
			assert.Equal(t, 2, errs[0].Row)
		})
	}
}

func TestFieldValidator_Bounds(t *testing.T) {
	v := NewFieldValidator(tapeRules(), 100)

	// Negative UPB and a 450% note rate
	assert.False(t, v.ValidateRow(makeRow(2, map[string]string{
		"current_upb":   "-1.00",
		"interest_rate": "4.50",
	})))

	errs := v.Errors().Errors()
	require.Len(t, errs, 2)
	for _, e := range errs {
		assert.Equal(t, ErrCodeBadRange, e.Code)
	}
}

func TestFieldValidator_StateAndZip(t *testing.T) {
	v := NewFieldValidator(tapeRules(), 100)

	assert.False(t, v.ValidateRow(makeRow(2, map[string]string{
		"property_state": "ZZ",
		"property_zip":   "7520",
	})))

	codes := map[string]bool{}
	for _, e := range v.Errors().Errors() {
		codes[e.Code] = true
	}
	assert.True(t, codes[ErrCodeBadState])
	assert.True(t, codes[ErrCodeBadZip])

	// Lowercase state codes and ZIP+4 are fine
	v2 := NewFieldValidator(tapeRules(), 100)
	assert.True(t, v2.ValidateRow(makeRow(3, map[string]string{
		"property_state": "tx",
		"property_zip":   "75201-1234",
	})))
}

func TestFieldValidator_DuplicateLoanNumbers(t *testing.T) {
	v := NewFieldValidator(tapeRules(), 100)

	require.True(t, v.ValidateRow(makeRow(2, map[string]string{"seller_loan_number": "LN-1"})))
	assert.False(t, v.ValidateRow(makeRow(3, map[string]string{"seller_loan_number": "LN-1"})))

	errs := v.Errors().Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeDuplicateInFile, errs[0].Code)
	assert.Equal(t, 3, errs[0].Row)
	assert.Contains(t, errs[0].Message, "line 2")
}

func TestFieldValidator_OptionalBlanksSkipChecks(t *testing.T) {
	v := NewFieldValidator(tapeRules(), 100)
	assert.True(t, v.ValidateRow(makeRow(2, map[string]string{
		"interest_rate":  "",
		"next_due_date":  "",
		"property_state": "",
		"property_zip":   "",
	})))
}

func TestErrorList_CapAndTotal(t *testing.T) {
	l := NewErrorList(3)
	for i := 0; i < 10; i++ {
		l.Add(NewRowError(i+2, "current_upb", ErrCodeBadType, "expected decimal"))
	}

	assert.Equal(t, 3, l.Count())
	assert.Equal(t, 10, l.TotalCount())
	assert.True(t, l.Truncated())
	assert.Contains(t, l.String(), "10 error(s)")
	assert.Contains(t, l.String(), "first 3 shown")
}

func TestIsUSPSState(t *testing.T) {
	assert.True(t, IsUSPSState("TX"))
	assert.True(t, IsUSPSState("DC"))
	assert.False(t, IsUSPSState("XX"))
	assert.False(t, IsUSPSState("tx"), "lookup is case sensitive; callers upcase first")
}
