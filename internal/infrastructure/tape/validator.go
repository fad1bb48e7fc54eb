package tape

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldValidator applies column rules to tape rows, tracking in-file
// duplicates for Unique columns. One validator covers one file; its
// duplicate state is not safe to reuse across files.
type FieldValidator struct {
	rules  []FieldRule
	seen   map[string]map[string]int // column -> value -> first line
	errors *ErrorList
}

// NewFieldValidator creates a validator for one tape file
func NewFieldValidator(rules []FieldRule, maxErrors int) *FieldValidator {
	return &FieldValidator{
		rules:  rules,
		seen:   make(map[string]map[string]int),
		errors: NewErrorList(maxErrors),
	}
}

// ValidateRow checks every ruled column of the row. Returns false if
// any rule failed; the failures land in Errors.
func (v *FieldValidator) ValidateRow(row *Row) bool {
	ok := true
	for i := range v.rules {
		if !v.checkField(row, &v.rules[i]) {
			ok = false
		}
	}
	return ok
}

func (v *FieldValidator) checkField(row *Row, rule *FieldRule) bool {
	value := row.Get(rule.Column)

	if value == "" {
		if rule.Required {
			v.errors.AddRequired(row.LineNumber, rule.Column)
			return false
		}
		return true
	}

	if err := parseAs(value, rule); err != nil {
		v.errors.AddBadType(row.LineNumber, rule.Column, string(rule.Type), value)
		return false
	}

	ok := true
	if rule.MinLength > 0 && len(value) < rule.MinLength ||
		rule.MaxLength > 0 && len(value) > rule.MaxLength {
		v.errors.AddBadLength(row.LineNumber, rule.Column, rule.MinLength, rule.MaxLength)
		ok = false
	}

	if rule.Type == TypeInt || rule.Type == TypeDecimal {
		if err := checkBounds(value, rule.MinValue, rule.MaxValue); err != nil {
			v.errors.Add(NewRowErrorWithValue(row.LineNumber, rule.Column, ErrCodeBadRange, err.Error(), value))
			ok = false
		}
	}

	if rule.StateCode && !IsUSPSState(strings.ToUpper(value)) {
		v.errors.Add(NewRowErrorWithValue(row.LineNumber, rule.Column, ErrCodeBadState,
			"not a USPS state code", value))
		ok = false
	}

	if rule.ZipCode && !zipPattern.MatchString(value) {
		v.errors.Add(NewRowErrorWithValue(row.LineNumber, rule.Column, ErrCodeBadZip,
			"not a 5-digit or ZIP+4 postal code", value))
		ok = false
	}

	if rule.Unique && !v.checkUnique(row.LineNumber, rule.Column, value) {
		ok = false
	}

	return ok
}

func (v *FieldValidator) checkUnique(line int, column, value string) bool {
	if v.seen[column] == nil {
		v.seen[column] = make(map[string]int)
	}
	if first, dup := v.seen[column][value]; dup {
		v.errors.Add(NewRowErrorWithValue(line, column, ErrCodeDuplicateInFile,
			fmt.Sprintf("duplicate value, first seen at line %d", first), value))
		return false
	}
	v.seen[column][value] = line
	return true
}

func parseAs(value string, rule *FieldRule) error {
	switch rule.Type {
	case TypeInt:
		_, err := strconv.ParseInt(value, 10, 64)
		return err
	case TypeDecimal:
		_, err := decimal.NewFromString(value)
		return err
	case TypeDate:
		_, err := time.Parse(rule.DateFormat, value)
		return err
	}
	return nil
}

func checkBounds(value string, min, max *decimal.Decimal) error {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return err
	}
	if min != nil && d.LessThan(*min) {
		return fmt.Errorf("below minimum %s", min.String())
	}
	if max != nil && d.GreaterThan(*max) {
		return fmt.Errorf("above maximum %s", max.String())
	}
	return nil
}

// Errors returns the failures accumulated so far
func (v *FieldValidator) Errors() *ErrorList {
	return v.errors
}
