package tape

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReader_RejectsEmptyAndBinary(t *testing.T) {
	_, err := NewReader(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = NewReader(strings.NewReader("seller_loan_number\xff\xfe,current_upb"))
	assert.ErrorIs(t, err, ErrNotUTF8)
}

func TestReader_StripsBOM(t *testing.T) {
	r, err := NewReader(strings.NewReader("\xEF\xBB\xBFseller_loan_number,current_upb\nLN-1,100000.00\n"))
	require.NoError(t, err)
	require.NoError(t, r.ParseHeader())

	assert.True(t, r.HasHeader("seller_loan_number"), "BOM must not corrupt the first header")

	row, err := r.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, "LN-1", row.Get("seller_loan_number"))
}

func TestReader_NormalizesHeaderCase(t *testing.T) {
	r, err := NewReader(strings.NewReader("Seller_Loan_Number, CURRENT_UPB \nLN-9,87500.00\n"))
	require.NoError(t, err)
	require.NoError(t, r.ParseHeader())

	assert.Equal(t, []string{"seller_loan_number", "current_upb"}, r.Headers())

	row, err := r.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, "87500.00", row.Get("current_upb"))
}

func TestReader_ValidateHeaders(t *testing.T) {
	r, err := NewReader(strings.NewReader("seller_loan_number,interest_rate\n"))
	require.NoError(t, err)
	require.NoError(t, r.ParseHeader())

	missing := r.ValidateHeaders([]string{"seller_loan_number", "current_upb"})
	assert.Equal(t, []string{"current_upb"}, missing)
}

func TestReader_ShortAndLongRecords(t *testing.T) {
	// Sellers pad or truncate trailing columns; both must map cleanly
	input := "seller_loan_number,current_upb,property_state\n" +
		"LN-1,100000.00\n" +
		"LN-2,95000.00,TX,extra\n"
	r, err := NewReader(strings.NewReader(input))
	require.NoError(t, err)
	require.NoError(t, r.ParseHeader())

	row, err := r.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, "", row.Get("property_state"))
	assert.Equal(t, 2, row.LineNumber)

	row, err = r.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, "TX", row.Get("property_state"))
	assert.Equal(t, 3, row.LineNumber)

	_, err = r.ReadRow()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 2, r.DataRows())
}

func TestReader_PipeDelimited(t *testing.T) {
	r, err := NewReader(strings.NewReader("seller_loan_number|current_upb\nLN-1|100000.00\n"), WithDelimiter('|'))
	require.NoError(t, err)
	require.NoError(t, r.ParseHeader())

	row, err := r.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, "100000.00", row.Get("current_upb"))
}

func TestReader_MissingHeader(t *testing.T) {
	r, err := NewReader(strings.NewReader("\n"))
	require.NoError(t, err)
	assert.ErrorIs(t, r.ParseHeader(), ErrMissingHeader)
}

func TestRow_IsEmpty(t *testing.T) {
	row := &Row{Data: map[string]string{"a": "", "b": ""}}
	assert.True(t, row.IsEmpty())

	row.Data["b"] = "x"
	assert.False(t, row.IsEmpty())
}
