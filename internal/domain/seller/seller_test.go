package seller

import (
	"testing"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeller(t *testing.T) {
	s, err := NewSeller("fnb", "First National Bank", SellerTypeBank)
	require.NoError(t, err)
	assert.Equal(t, "FNB", s.Code) // Uppercased
	assert.Equal(t, SellerStatusActive, s.Status)
	assert.True(t, s.CanTrade())
}

func TestNewSeller_Validation(t *testing.T) {
	_, err := NewSeller("", "First National Bank", SellerTypeBank)
	assert.Error(t, err)

	_, err = NewSeller("FNB", "", SellerTypeBank)
	assert.Error(t, err)

	_, err = NewSeller("FNB", "First National Bank", SellerType("HEDGE"))
	assert.Error(t, err)
}

func TestSeller_StatusTransitions(t *testing.T) {
	s, err := NewSeller("FNB", "First National Bank", SellerTypeBank)
	require.NoError(t, err)

	require.NoError(t, s.Deactivate())
	assert.False(t, s.CanTrade())

	require.NoError(t, s.Activate())
	assert.True(t, s.CanTrade())

	require.NoError(t, s.Block())
	assert.Equal(t, SellerStatusBlocked, s.Status)
	assert.False(t, s.CanTrade())
}

func TestSeller_SetAddress(t *testing.T) {
	s, err := NewSeller("FNB", "First National Bank", SellerTypeBank)
	require.NoError(t, err)

	assert.Error(t, s.SetAddress("1 Main St", "Austin", "Texas", "78701"))
	require.NoError(t, s.SetAddress("1 Main St", "Austin", "TX", "78701"))
	assert.Equal(t, "TX", s.State)
}

func TestSellerRawData_Boarding(t *testing.T) {
	row, err := NewSellerRawData(uuid.New(), uuid.New(), "LN-00123")
	require.NoError(t, err)
	assert.Equal(t, RawDataStatusLanded, row.Status)

	require.NoError(t, row.MarkBoarded())
	assert.Equal(t, RawDataStatusBoarded, row.Status)
	require.NotNil(t, row.BoardedAt)

	// Boarding is idempotent at the service layer; re-boarding errors here
	err = row.MarkBoarded()
	assert.ErrorIs(t, err, shared.ErrAlreadyBoarded)

	// Rejected rows stay out of the population
	row2, err := NewSellerRawData(uuid.New(), uuid.New(), "LN-00124")
	require.NoError(t, err)
	require.NoError(t, row2.Reject())
	assert.Error(t, row2.MarkBoarded())
	assert.Error(t, row2.Reject())
}

func TestTapeImport_Lifecycle(t *testing.T) {
	imp := NewTapeImport(uuid.New(), "tape-2024-03.csv", "TAPE")
	assert.Equal(t, ImportStatusRunning, imp.Status)

	imp.Complete(100, 97, 3, `[{"row":12,"error":"bad UPB"}]`)
	assert.Equal(t, ImportStatusCompleted, imp.Status)
	assert.Equal(t, 97, imp.SuccessRows)
	require.NotNil(t, imp.CompletedAt)

	failed := NewTapeImport(uuid.New(), "broken.csv", "TAPE")
	failed.Fail("missing required headers")
	assert.Equal(t, ImportStatusFailed, failed.Status)
}

func TestRawDataDecimalDefaults(t *testing.T) {
	row, err := NewSellerRawData(uuid.New(), uuid.New(), "LN-1")
	require.NoError(t, err)
	assert.True(t, row.CurrentUPB.Equal(decimal.Zero))
	assert.Equal(t, 1, row.LienPosition)
}
