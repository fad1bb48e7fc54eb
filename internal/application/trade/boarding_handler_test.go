package trade

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/asset"
	"github.com/npl/backend/internal/domain/seller"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/npl/backend/internal/domain/trade"
	"github.com/npl/backend/internal/domain/valuation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockHubRepository is a mock implementation of asset.HubRepository
type MockHubRepository struct {
	mock.Mock
}

func (m *MockHubRepository) FindByID(ctx context.Context, id uuid.UUID) (*asset.AssetIdHub, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asset.AssetIdHub), args.Error(1)
}

func (m *MockHubRepository) FindByTradeAndLoanNumber(ctx context.Context, tradeID uuid.UUID, loanNumber string) (*asset.AssetIdHub, error) {
	args := m.Called(ctx, tradeID, loanNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asset.AssetIdHub), args.Error(1)
}

func (m *MockHubRepository) Save(ctx context.Context, hub *asset.AssetIdHub) error {
	args := m.Called(ctx, hub)
	return args.Error(0)
}

func (m *MockHubRepository) CountByTrade(ctx context.Context, tradeID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tradeID)
	return args.Get(0).(int64), args.Error(1)
}

// MockAssetRepository is a mock implementation of asset.AssetRepository
type MockAssetRepository struct {
	mock.Mock
}

func (m *MockAssetRepository) FindByID(ctx context.Context, id uuid.UUID) (*asset.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asset.Asset), args.Error(1)
}

func (m *MockAssetRepository) FindByHubID(ctx context.Context, hubID uuid.UUID) (*asset.Asset, error) {
	args := m.Called(ctx, hubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asset.Asset), args.Error(1)
}

func (m *MockAssetRepository) FindAll(ctx context.Context, filter shared.Filter) ([]asset.Asset, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]asset.Asset), args.Error(1)
}

func (m *MockAssetRepository) FindByTrade(ctx context.Context, tradeID uuid.UUID, filter shared.Filter) ([]asset.Asset, error) {
	args := m.Called(ctx, tradeID, filter)
	return args.Get(0).([]asset.Asset), args.Error(1)
}

func (m *MockAssetRepository) FindByStatus(ctx context.Context, status asset.AssetStatus, filter shared.Filter) ([]asset.Asset, error) {
	args := m.Called(ctx, status, filter)
	return args.Get(0).([]asset.Asset), args.Error(1)
}

func (m *MockAssetRepository) Save(ctx context.Context, a *asset.Asset) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssetRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAssetRepository) CountByStatus(ctx context.Context, status asset.AssetStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAssetRepository) CountByTrade(ctx context.Context, tradeID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tradeID)
	return args.Get(0).(int64), args.Error(1)
}

// MockValuationRepository is a mock implementation of valuation.ValuationRepository
type MockValuationRepository struct {
	mock.Mock
}

func (m *MockValuationRepository) FindByID(ctx context.Context, id uuid.UUID) (*valuation.Valuation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*valuation.Valuation), args.Error(1)
}

func (m *MockValuationRepository) FindByHub(ctx context.Context, hubID uuid.UUID) ([]valuation.Valuation, error) {
	args := m.Called(ctx, hubID)
	return args.Get(0).([]valuation.Valuation), args.Error(1)
}

func (m *MockValuationRepository) FindByHubAndSource(ctx context.Context, hubID uuid.UUID, source valuation.ValuationSource) ([]valuation.Valuation, error) {
	args := m.Called(ctx, hubID, source)
	return args.Get(0).([]valuation.Valuation), args.Error(1)
}

func (m *MockValuationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]valuation.Valuation, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]valuation.Valuation), args.Error(1)
}

func (m *MockValuationRepository) Save(ctx context.Context, v *valuation.Valuation) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockValuationRepository) SaveBatch(ctx context.Context, vs []*valuation.Valuation) error {
	args := m.Called(ctx, vs)
	return args.Error(0)
}

func (m *MockValuationRepository) CountByHub(ctx context.Context, hubID uuid.UUID) (int64, error) {
	args := m.Called(ctx, hubID)
	return args.Get(0).(int64), args.Error(1)
}

func settledEvent(t *testing.T) *trade.TradeSettledEvent {
	tr := tradeInStatus(t, trade.TradeStatusAwarded)
	require.NoError(t, tr.Settle(decimal.NewFromInt(640000), time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)))
	events := tr.GetDomainEvents()
	require.Len(t, events, 1)
	return events[0].(*trade.TradeSettledEvent)
}

func landedRow(t *testing.T, tradeID uuid.UUID, loanNumber string) seller.SellerRawData {
	row, err := seller.NewSellerRawData(tradeID, uuid.New(), loanNumber)
	require.NoError(t, err)
	row.CurrentUPB = decimal.NewFromInt(125000)
	row.InterestRate = decimal.NewFromFloat(7.125)
	row.PropertyState = "FL"
	row.PropertyCity = "Tampa"
	row.SellerAsIsValue = decimal.NewFromInt(180000)
	return *row
}

func TestBoardingHandler_Handle_BoardsRows(t *testing.T) {
	rawRepo := new(MockRawDataRepository)
	hubRepo := new(MockHubRepository)
	assetRepo := new(MockAssetRepository)
	valuationRepo := new(MockValuationRepository)
	handler := NewBoardingHandler(rawRepo, hubRepo, assetRepo, valuationRepo, nil)

	ctx := context.Background()
	event := settledEvent(t)
	rows := []seller.SellerRawData{
		landedRow(t, event.TradeID, "LN-1001"),
		landedRow(t, event.TradeID, "LN-1002"),
	}

	var boardedAssets []*asset.Asset
	var savedValuations []*valuation.Valuation

	rawRepo.On("FindBoardable", ctx, event.TradeID).Return(rows, nil)
	hubRepo.On("FindByTradeAndLoanNumber", ctx, event.TradeID, mock.Anything).Return(nil, shared.ErrNotFound)
	hubRepo.On("Save", ctx, mock.AnythingOfType("*asset.AssetIdHub")).Return(nil)
	assetRepo.On("FindByHubID", ctx, mock.Anything).Return(nil, shared.ErrNotFound)
	assetRepo.On("Save", ctx, mock.AnythingOfType("*asset.Asset")).
		Run(func(args mock.Arguments) {
			boardedAssets = append(boardedAssets, args.Get(1).(*asset.Asset))
		}).Return(nil)
	rawRepo.On("Save", ctx, mock.AnythingOfType("*seller.SellerRawData")).Return(nil)
	valuationRepo.On("Save", ctx, mock.AnythingOfType("*valuation.Valuation")).
		Run(func(args mock.Arguments) {
			savedValuations = append(savedValuations, args.Get(1).(*valuation.Valuation))
		}).Return(nil)

	err := handler.Handle(ctx, event)

	require.NoError(t, err)
	require.Len(t, boardedAssets, 2)
	assert.Equal(t, "LN-1001", boardedAssets[0].SellerLoanNumber)
	assert.Equal(t, "125000", boardedAssets[0].CurrentUPB.String())
	assert.Equal(t, "FL", boardedAssets[0].PropertyState)
	assert.Equal(t, asset.AssetStatusActive, boardedAssets[0].Status)

	require.Len(t, savedValuations, 2)
	assert.Equal(t, valuation.SourceSellerTape, savedValuations[0].Source)
	assert.Equal(t, "180000", savedValuations[0].AsIsValue.String())
	assert.Equal(t, event.SettlementDate, savedValuations[0].EffectiveDate)
}

func TestBoardingHandler_Handle_SkipsAlreadyBoarded(t *testing.T) {
	rawRepo := new(MockRawDataRepository)
	hubRepo := new(MockHubRepository)
	assetRepo := new(MockAssetRepository)
	valuationRepo := new(MockValuationRepository)
	handler := NewBoardingHandler(rawRepo, hubRepo, assetRepo, valuationRepo, nil)

	ctx := context.Background()
	event := settledEvent(t)
	row := landedRow(t, event.TradeID, "LN-1001")
	hub, err := asset.NewAssetIdHub(event.TradeID, row.ID, row.SellerLoanNumber)
	require.NoError(t, err)
	existing, err := asset.NewAsset(hub.ID, event.TradeID, event.SellerID, row.SellerLoanNumber,
		row.CurrentUPB, row.InterestRate)
	require.NoError(t, err)

	rawRepo.On("FindBoardable", ctx, event.TradeID).Return([]seller.SellerRawData{row}, nil)
	hubRepo.On("FindByTradeAndLoanNumber", ctx, event.TradeID, row.SellerLoanNumber).Return(hub, nil)
	assetRepo.On("FindByHubID", ctx, hub.ID).Return(existing, nil)

	err = handler.Handle(ctx, event)

	require.NoError(t, err)
	assetRepo.AssertNotCalled(t, "Save")
	valuationRepo.AssertNotCalled(t, "Save")
	hubRepo.AssertNotCalled(t, "Save")
}

func TestBoardingHandler_Handle_NoSellerValueSkipsValuation(t *testing.T) {
	rawRepo := new(MockRawDataRepository)
	hubRepo := new(MockHubRepository)
	assetRepo := new(MockAssetRepository)
	valuationRepo := new(MockValuationRepository)
	handler := NewBoardingHandler(rawRepo, hubRepo, assetRepo, valuationRepo, nil)

	ctx := context.Background()
	event := settledEvent(t)
	row := landedRow(t, event.TradeID, "LN-1003")
	row.SellerAsIsValue = decimal.Zero

	rawRepo.On("FindBoardable", ctx, event.TradeID).Return([]seller.SellerRawData{row}, nil)
	hubRepo.On("FindByTradeAndLoanNumber", ctx, event.TradeID, row.SellerLoanNumber).Return(nil, shared.ErrNotFound)
	hubRepo.On("Save", ctx, mock.AnythingOfType("*asset.AssetIdHub")).Return(nil)
	assetRepo.On("FindByHubID", ctx, mock.Anything).Return(nil, shared.ErrNotFound)
	assetRepo.On("Save", ctx, mock.AnythingOfType("*asset.Asset")).Return(nil)
	rawRepo.On("Save", ctx, mock.AnythingOfType("*seller.SellerRawData")).Return(nil)

	err := handler.Handle(ctx, event)

	require.NoError(t, err)
	valuationRepo.AssertNotCalled(t, "Save")
}

func TestBoardingHandler_Handle_MarksRowBoarded(t *testing.T) {
	rawRepo := new(MockRawDataRepository)
	hubRepo := new(MockHubRepository)
	assetRepo := new(MockAssetRepository)
	valuationRepo := new(MockValuationRepository)
	handler := NewBoardingHandler(rawRepo, hubRepo, assetRepo, valuationRepo, nil)

	ctx := context.Background()
	event := settledEvent(t)
	row := landedRow(t, event.TradeID, "LN-1004")

	var savedRow *seller.SellerRawData
	rawRepo.On("FindBoardable", ctx, event.TradeID).Return([]seller.SellerRawData{row}, nil)
	hubRepo.On("FindByTradeAndLoanNumber", ctx, event.TradeID, row.SellerLoanNumber).Return(nil, shared.ErrNotFound)
	hubRepo.On("Save", ctx, mock.AnythingOfType("*asset.AssetIdHub")).Return(nil)
	assetRepo.On("FindByHubID", ctx, mock.Anything).Return(nil, shared.ErrNotFound)
	assetRepo.On("Save", ctx, mock.AnythingOfType("*asset.Asset")).Return(nil)
	rawRepo.On("Save", ctx, mock.AnythingOfType("*seller.SellerRawData")).
		Run(func(args mock.Arguments) {
			savedRow = args.Get(1).(*seller.SellerRawData)
		}).Return(nil)
	valuationRepo.On("Save", ctx, mock.AnythingOfType("*valuation.Valuation")).Return(nil)

	err := handler.Handle(ctx, event)

	require.NoError(t, err)
	require.NotNil(t, savedRow)
	assert.Equal(t, seller.RawDataStatusBoarded, savedRow.Status)
	assert.NotNil(t, savedRow.BoardedAt)
}

func TestBoardingHandler_Handle_WrongEventType(t *testing.T) {
	handler := NewBoardingHandler(nil, nil, nil, nil, nil)

	tr := createTestTrade(t)
	err := handler.Handle(context.Background(), trade.NewTradeCreatedEvent(tr))

	assert.Error(t, err)
}

func TestBoardingHandler_EventTypes(t *testing.T) {
	handler := NewBoardingHandler(nil, nil, nil, nil, nil)
	assert.Equal(t, []string{trade.EventTypeTradeSettled}, handler.EventTypes())
}
