package report

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPortfolioReportRepository is a mock implementation of report.PortfolioReportRepository
type MockPortfolioReportRepository struct {
	mock.Mock
}

func (m *MockPortfolioReportRepository) GetPortfolioSummary(ctx context.Context, filter report.PortfolioReportFilter) (*report.PortfolioSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.PortfolioSummary), args.Error(1)
}

func (m *MockPortfolioReportRepository) GetTradePipeline(ctx context.Context, filter report.PortfolioReportFilter) ([]report.TradePipelineRow, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.TradePipelineRow), args.Error(1)
}

func (m *MockPortfolioReportRepository) GetDelinquencyDistribution(ctx context.Context, filter report.PortfolioReportFilter) (*report.DelinquencyDistribution, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.DelinquencyDistribution), args.Error(1)
}

func (m *MockPortfolioReportRepository) GetTrackSummary(ctx context.Context, filter report.PortfolioReportFilter) ([]report.TrackSummaryRow, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.TrackSummaryRow), args.Error(1)
}

func (m *MockPortfolioReportRepository) GetValuationCoverage(ctx context.Context, filter report.PortfolioReportFilter) ([]report.ValuationCoverageRow, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.ValuationCoverageRow), args.Error(1)
}

// memoryCache is a map-backed ReportCache for tests
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.entries[key]
	return payload, ok, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memoryCache) DeletePrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

// brokenCache fails every operation
type brokenCache struct{}

func (brokenCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errors.New("cache unavailable")
}

func (brokenCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("cache unavailable")
}

func (brokenCache) DeletePrefix(ctx context.Context, prefix string) error {
	return errors.New("cache unavailable")
}

func testSummary() *report.PortfolioSummary {
	return &report.PortfolioSummary{
		AsOf:             time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		ActiveAssets:     412,
		LiquidatedAssets: 38,
		SoldAssets:       12,
		TotalUPB:         decimal.NewFromInt(61_400_000),
		AvgUPB:           decimal.NewFromInt(149_029),
		TotalAsIsValue:   decimal.NewFromInt(74_200_000),
		WeightedRate:     decimal.NewFromFloat(0.0685),
	}
}

func TestReportService_GetPortfolioSummary(t *testing.T) {
	mockRepo := new(MockPortfolioReportRepository)
	service := NewReportService(mockRepo, nil, nil)

	mockRepo.On("GetPortfolioSummary", mock.Anything, report.PortfolioReportFilter{}).
		Return(testSummary(), nil)

	resp, err := service.GetPortfolioSummary(context.Background(), PortfolioReportFilter{})

	require.NoError(t, err)
	assert.Equal(t, int64(412), resp.ActiveAssets)
	assert.Equal(t, int64(38), resp.LiquidatedAssets)
	assert.InDelta(t, 61_400_000, resp.TotalUPB, 0.01)
	assert.InDelta(t, 0.0685, resp.WeightedRate, 0.00001)
	mockRepo.AssertExpectations(t)
}

func TestReportService_GetPortfolioSummary_SecondReadServedFromCache(t *testing.T) {
	mockRepo := new(MockPortfolioReportRepository)
	service := NewReportService(mockRepo, newMemoryCache(), nil)

	mockRepo.On("GetPortfolioSummary", mock.Anything, report.PortfolioReportFilter{}).
		Return(testSummary(), nil).Once()

	first, err := service.GetPortfolioSummary(context.Background(), PortfolioReportFilter{})
	require.NoError(t, err)

	second, err := service.GetPortfolioSummary(context.Background(), PortfolioReportFilter{})
	require.NoError(t, err)

	assert.Equal(t, first.TotalUPB, second.TotalUPB)
	assert.Equal(t, first.ActiveAssets, second.ActiveAssets)
	mockRepo.AssertExpectations(t)
}

func TestReportService_GetPortfolioSummary_FilterGetsOwnCacheEntry(t *testing.T) {
	mockRepo := new(MockPortfolioReportRepository)
	service := NewReportService(mockRepo, newMemoryCache(), nil)

	tradeID := uuid.New()
	filtered := testSummary()
	filtered.ActiveAssets = 57

	mockRepo.On("GetPortfolioSummary", mock.Anything, report.PortfolioReportFilter{}).
		Return(testSummary(), nil).Once()
	mockRepo.On("GetPortfolioSummary", mock.Anything, report.PortfolioReportFilter{TradeID: &tradeID}).
		Return(filtered, nil).Once()

	whole, err := service.GetPortfolioSummary(context.Background(), PortfolioReportFilter{})
	require.NoError(t, err)

	scoped, err := service.GetPortfolioSummary(context.Background(), PortfolioReportFilter{TradeID: &tradeID})
	require.NoError(t, err)

	assert.Equal(t, int64(412), whole.ActiveAssets)
	assert.Equal(t, int64(57), scoped.ActiveAssets)
	mockRepo.AssertExpectations(t)
}

func TestReportService_BrokenCacheDegradesToRepository(t *testing.T) {
	mockRepo := new(MockPortfolioReportRepository)
	service := NewReportService(mockRepo, brokenCache{}, nil)

	mockRepo.On("GetPortfolioSummary", mock.Anything, report.PortfolioReportFilter{}).
		Return(testSummary(), nil).Twice()

	_, err := service.GetPortfolioSummary(context.Background(), PortfolioReportFilter{})
	require.NoError(t, err)

	_, err = service.GetPortfolioSummary(context.Background(), PortfolioReportFilter{})
	require.NoError(t, err)

	mockRepo.AssertExpectations(t)
}

func TestReportService_GetTradePipeline(t *testing.T) {
	mockRepo := new(MockPortfolioReportRepository)
	service := NewReportService(mockRepo, nil, nil)

	tradeID := uuid.New()
	settlement := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	mockRepo.On("GetTradePipeline", mock.Anything, mock.AnythingOfType("report.PortfolioReportFilter")).
		Return([]report.TradePipelineRow{
			{
				TradeID:        tradeID,
				TradeNumber:    "TR-2025-014",
				SellerName:     "Midland Capital",
				Status:         "SETTLED",
				LoanCount:      96,
				TotalUPB:       decimal.NewFromInt(14_500_000),
				BidAmount:      decimal.NewFromInt(10_875_000),
				BidPctOfUPB:    decimal.NewFromFloat(0.75),
				SettlementDate: &settlement,
			},
		}, nil)

	rows, err := service.GetTradePipeline(context.Background(), PortfolioReportFilter{})

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, tradeID.String(), rows[0].TradeID)
	assert.Equal(t, "TR-2025-014", rows[0].TradeNumber)
	assert.InDelta(t, 0.75, rows[0].BidPctOfUPB, 0.0001)
	require.NotNil(t, rows[0].SettlementDate)
}

func TestReportService_GetDelinquencyDistribution(t *testing.T) {
	mockRepo := new(MockPortfolioReportRepository)
	service := NewReportService(mockRepo, nil, nil)

	mockRepo.On("GetDelinquencyDistribution", mock.Anything, report.PortfolioReportFilter{Period: "2025-06"}).
		Return(&report.DelinquencyDistribution{
			Period: "2025-06",
			Bands: []report.DelinquencyBand{
				{Bucket: "CURRENT", LoanCount: 120, TotalUPB: decimal.NewFromInt(18_000_000), PctOfUPB: decimal.NewFromFloat(0.42)},
				{Bucket: "90+", LoanCount: 64, TotalUPB: decimal.NewFromInt(9_700_000), PctOfUPB: decimal.NewFromFloat(0.23)},
			},
		}, nil)

	dist, err := service.GetDelinquencyDistribution(context.Background(), PortfolioReportFilter{Period: "2025-06"})

	require.NoError(t, err)
	assert.Equal(t, "2025-06", dist.Period)
	require.Len(t, dist.Bands, 2)
	assert.Equal(t, "90+", dist.Bands[1].Bucket)
	assert.Equal(t, int64(64), dist.Bands[1].LoanCount)
}

func TestReportService_GetTrackSummary(t *testing.T) {
	mockRepo := new(MockPortfolioReportRepository)
	service := NewReportService(mockRepo, nil, nil)

	mockRepo.On("GetTrackSummary", mock.Anything, report.PortfolioReportFilter{}).
		Return([]report.TrackSummaryRow{
			{TrackType: "FC", Status: "IN_PROGRESS", Count: 31},
			{TrackType: "REO", Status: "OPEN", Count: 9},
		}, nil)

	rows, err := service.GetTrackSummary(context.Background(), PortfolioReportFilter{})

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "FC", rows[0].TrackType)
	assert.Equal(t, int64(31), rows[0].Count)
}

func TestReportService_GetValuationCoverage(t *testing.T) {
	mockRepo := new(MockPortfolioReportRepository)
	service := NewReportService(mockRepo, nil, nil)

	mockRepo.On("GetValuationCoverage", mock.Anything, report.PortfolioReportFilter{}).
		Return([]report.ValuationCoverageRow{
			{Source: "BPO", AssetCount: 388, StaleCount: 45},
			{Source: "APPRAISAL", AssetCount: 112, StaleCount: 12},
		}, nil)

	rows, err := service.GetValuationCoverage(context.Background(), PortfolioReportFilter{})

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "BPO", rows[0].Source)
	assert.Equal(t, int64(45), rows[0].StaleCount)
}

func TestReportService_Refresh_RewarmsUnfilteredViews(t *testing.T) {
	mockRepo := new(MockPortfolioReportRepository)
	cache := newMemoryCache()
	service := NewReportService(mockRepo, cache, nil)

	unfiltered := report.PortfolioReportFilter{}
	mockRepo.On("GetPortfolioSummary", mock.Anything, unfiltered).Return(testSummary(), nil).Once()
	mockRepo.On("GetTradePipeline", mock.Anything, unfiltered).Return([]report.TradePipelineRow{}, nil).Once()
	mockRepo.On("GetTrackSummary", mock.Anything, unfiltered).Return([]report.TrackSummaryRow{}, nil).Once()
	mockRepo.On("GetValuationCoverage", mock.Anything, unfiltered).Return([]report.ValuationCoverageRow{}, nil).Once()

	err := service.Refresh(context.Background())
	require.NoError(t, err)

	// Subsequent reads must not touch the repository again.
	_, err = service.GetPortfolioSummary(context.Background(), PortfolioReportFilter{})
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestReportService_Refresh_PropagatesRepositoryError(t *testing.T) {
	mockRepo := new(MockPortfolioReportRepository)
	service := NewReportService(mockRepo, newMemoryCache(), nil)

	mockRepo.On("GetPortfolioSummary", mock.Anything, report.PortfolioReportFilter{}).
		Return(nil, errors.New("query timeout"))

	err := service.Refresh(context.Background())
	assert.Error(t, err)
}
