package valuation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeValuation(t *testing.T, source ValuationSource, asIs int64, effective time.Time) Valuation {
	v, err := NewValuation(uuid.New(), source, decimal.NewFromInt(asIs), effective)
	require.NoError(t, err)
	return *v
}

func TestValuationSource_Rank(t *testing.T) {
	// Appraisal outranks everything; seller tape is the floor
	assert.Greater(t, SourceAppraisal.Rank(), SourceBPO.Rank())
	assert.Greater(t, SourceBPO.Rank(), SourceDesktop.Rank())
	assert.Greater(t, SourceDesktop.Rank(), SourceAVM.Rank())
	assert.Greater(t, SourceAVM.Rank(), SourceExtraction.Rank())
	assert.Greater(t, SourceExtraction.Rank(), SourceSellerTape.Rank())
	assert.Equal(t, 0, ValuationSource("UNKNOWN").Rank())
}

func TestNewValuation_Validation(t *testing.T) {
	now := time.Now()

	_, err := NewValuation(uuid.Nil, SourceBPO, decimal.NewFromInt(100000), now)
	assert.Error(t, err)

	_, err = NewValuation(uuid.New(), ValuationSource("BOGUS"), decimal.NewFromInt(100000), now)
	assert.Error(t, err)

	_, err = NewValuation(uuid.New(), SourceBPO, decimal.Zero, now)
	assert.Error(t, err)

	_, err = NewValuation(uuid.New(), SourceBPO, decimal.NewFromInt(100000), time.Time{})
	assert.Error(t, err)

	_, err = NewValuation(uuid.New(), SourceBPO, decimal.NewFromInt(100000), now.Add(72*time.Hour))
	assert.Error(t, err)
}

func TestReconcile_SourcePrecedence(t *testing.T) {
	now := time.Now()
	vals := []Valuation{
		makeValuation(t, SourceSellerTape, 90000, now.AddDate(0, -1, 0)),
		makeValuation(t, SourceAVM, 95000, now.AddDate(0, -1, 0)),
		makeValuation(t, SourceBPO, 100000, now.AddDate(0, -2, 0)),
	}

	best := Reconcile(vals, DefaultStalenessWindow, now)
	require.NotNil(t, best)
	assert.Equal(t, SourceBPO, best.Source)
}

func TestReconcile_RecencyBreaksTies(t *testing.T) {
	now := time.Now()
	older := makeValuation(t, SourceBPO, 100000, now.AddDate(0, -3, 0))
	newer := makeValuation(t, SourceBPO, 105000, now.AddDate(0, -1, 0))

	best := Reconcile([]Valuation{older, newer}, DefaultStalenessWindow, now)
	require.NotNil(t, best)
	assert.True(t, best.AsIsValue.Equal(decimal.NewFromInt(105000)))
}

func TestReconcile_StaleHighRankLosesToFreshLowRank(t *testing.T) {
	now := time.Now()
	staleAppraisal := makeValuation(t, SourceAppraisal, 120000, now.AddDate(-1, 0, 0))
	freshAVM := makeValuation(t, SourceAVM, 98000, now.AddDate(0, 0, -10))

	best := Reconcile([]Valuation{staleAppraisal, freshAVM}, DefaultStalenessWindow, now)
	require.NotNil(t, best)
	assert.Equal(t, SourceAVM, best.Source)
}

func TestReconcile_AllStaleFallsBackToRanking(t *testing.T) {
	now := time.Now()
	staleAppraisal := makeValuation(t, SourceAppraisal, 120000, now.AddDate(-2, 0, 0))
	staleTape := makeValuation(t, SourceSellerTape, 90000, now.AddDate(-1, 0, 0))

	best := Reconcile([]Valuation{staleTape, staleAppraisal}, DefaultStalenessWindow, now)
	require.NotNil(t, best)
	assert.Equal(t, SourceAppraisal, best.Source)
}

func TestReconcile_Empty(t *testing.T) {
	assert.Nil(t, Reconcile(nil, DefaultStalenessWindow, time.Now()))
}

func TestValuation_IsStale(t *testing.T) {
	now := time.Now()
	v := makeValuation(t, SourceBPO, 100000, now.AddDate(0, -7, 0))
	assert.True(t, v.IsStale(DefaultStalenessWindow, now))

	v = makeValuation(t, SourceBPO, 100000, now.AddDate(0, -1, 0))
	assert.False(t, v.IsStale(DefaultStalenessWindow, now))
}
