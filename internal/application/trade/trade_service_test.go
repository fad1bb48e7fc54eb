package trade

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/seller"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/npl/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTradeRepository is a mock implementation of trade.TradeRepository
type MockTradeRepository struct {
	mock.Mock
}

func (m *MockTradeRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Trade, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Trade), args.Error(1)
}

func (m *MockTradeRepository) FindByTradeNumber(ctx context.Context, tradeNumber string) (*trade.Trade, error) {
	args := m.Called(ctx, tradeNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Trade), args.Error(1)
}

func (m *MockTradeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Trade, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]trade.Trade), args.Error(1)
}

func (m *MockTradeRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) ([]trade.Trade, error) {
	args := m.Called(ctx, sellerID, filter)
	return args.Get(0).([]trade.Trade), args.Error(1)
}

func (m *MockTradeRepository) FindByStatus(ctx context.Context, status trade.TradeStatus, filter shared.Filter) ([]trade.Trade, error) {
	args := m.Called(ctx, status, filter)
	return args.Get(0).([]trade.Trade), args.Error(1)
}

func (m *MockTradeRepository) Save(ctx context.Context, t *trade.Trade) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTradeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTradeRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTradeRepository) CountByStatus(ctx context.Context, status trade.TradeStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTradeRepository) ExistsByTradeNumber(ctx context.Context, tradeNumber string) (bool, error) {
	args := m.Called(ctx, tradeNumber)
	return args.Bool(0), args.Error(1)
}

// MockSellerRepository is a mock implementation of seller.SellerRepository
type MockSellerRepository struct {
	mock.Mock
}

func (m *MockSellerRepository) FindByID(ctx context.Context, id uuid.UUID) (*seller.Seller, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seller.Seller), args.Error(1)
}

func (m *MockSellerRepository) FindByCode(ctx context.Context, code string) (*seller.Seller, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seller.Seller), args.Error(1)
}

func (m *MockSellerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]seller.Seller, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]seller.Seller), args.Error(1)
}

func (m *MockSellerRepository) Save(ctx context.Context, s *seller.Seller) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSellerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSellerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSellerRepository) CountByStatus(ctx context.Context, status seller.SellerStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSellerRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// MockRawDataRepository is a mock implementation of seller.RawDataRepository
type MockRawDataRepository struct {
	mock.Mock
}

func (m *MockRawDataRepository) FindByID(ctx context.Context, id uuid.UUID) (*seller.SellerRawData, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seller.SellerRawData), args.Error(1)
}

func (m *MockRawDataRepository) FindByTradeAndLoanNumber(ctx context.Context, tradeID uuid.UUID, loanNumber string) (*seller.SellerRawData, error) {
	args := m.Called(ctx, tradeID, loanNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seller.SellerRawData), args.Error(1)
}

func (m *MockRawDataRepository) FindByTrade(ctx context.Context, tradeID uuid.UUID, filter shared.Filter) ([]seller.SellerRawData, error) {
	args := m.Called(ctx, tradeID, filter)
	return args.Get(0).([]seller.SellerRawData), args.Error(1)
}

func (m *MockRawDataRepository) FindBoardable(ctx context.Context, tradeID uuid.UUID) ([]seller.SellerRawData, error) {
	args := m.Called(ctx, tradeID)
	return args.Get(0).([]seller.SellerRawData), args.Error(1)
}

func (m *MockRawDataRepository) Save(ctx context.Context, row *seller.SellerRawData) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

func (m *MockRawDataRepository) SaveBatch(ctx context.Context, rows []*seller.SellerRawData) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockRawDataRepository) CountByTrade(ctx context.Context, tradeID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tradeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRawDataRepository) CountByTradeAndStatus(ctx context.Context, tradeID uuid.UUID, status seller.RawDataStatus) (int64, error) {
	args := m.Called(ctx, tradeID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRawDataRepository) SumUPBByTrade(ctx context.Context, tradeID uuid.UUID) (seller.TradePopulationSummary, error) {
	args := m.Called(ctx, tradeID)
	return args.Get(0).(seller.TradePopulationSummary), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// Test helpers
func newTestSellerID() uuid.UUID {
	return uuid.MustParse("11111111-1111-1111-1111-111111111111")
}

func createTestSeller() *seller.Seller {
	s, _ := seller.NewSeller("RCB", "Regional Community Bank", seller.SellerTypeBank)
	return s
}

func createTestTrade(t *testing.T) *trade.Trade {
	tr, err := trade.NewTrade("NPL-2024-01", "Q1 Pool", newTestSellerID(), "Regional Community Bank")
	require.NoError(t, err)
	tr.ClearDomainEvents()
	return tr
}

func tradeInStatus(t *testing.T, status trade.TradeStatus) *trade.Trade {
	tr := createTestTrade(t)
	tr.Status = status
	return tr
}

func newTradeService(tradeRepo *MockTradeRepository, sellerRepo *MockSellerRepository, rawRepo *MockRawDataRepository, publisher *MockEventPublisher) *TradeService {
	return NewTradeService(tradeRepo, sellerRepo, rawRepo, publisher, nil)
}

// Tests for TradeService.Create
func TestTradeService_Create_Success(t *testing.T) {
	tradeRepo := new(MockTradeRepository)
	sellerRepo := new(MockSellerRepository)
	rawRepo := new(MockRawDataRepository)
	publisher := new(MockEventPublisher)
	service := newTradeService(tradeRepo, sellerRepo, rawRepo, publisher)

	ctx := context.Background()
	sl := createTestSeller()
	req := CreateTradeRequest{
		TradeNumber: "npl-2024-07",
		Name:        "July Pool",
		SellerID:    sl.ID,
	}

	tradeRepo.On("ExistsByTradeNumber", ctx, req.TradeNumber).Return(false, nil)
	sellerRepo.On("FindByID", ctx, sl.ID).Return(sl, nil)
	tradeRepo.On("Save", ctx, mock.AnythingOfType("*trade.Trade")).Return(nil)
	publisher.On("Publish", ctx, mock.Anything).Return(nil)

	result, err := service.Create(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, "NPL-2024-07", result.TradeNumber)
	assert.Equal(t, "DRAFT", result.Status)
	assert.Equal(t, sl.Name, result.SellerName)
	tradeRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestTradeService_Create_DuplicateNumber(t *testing.T) {
	tradeRepo := new(MockTradeRepository)
	sellerRepo := new(MockSellerRepository)
	rawRepo := new(MockRawDataRepository)
	publisher := new(MockEventPublisher)
	service := newTradeService(tradeRepo, sellerRepo, rawRepo, publisher)

	ctx := context.Background()
	req := CreateTradeRequest{TradeNumber: "NPL-2024-01", Name: "Dup", SellerID: newTestSellerID()}

	tradeRepo.On("ExistsByTradeNumber", ctx, req.TradeNumber).Return(true, nil)

	result, err := service.Create(ctx, req)

	assert.Error(t, err)
	assert.Nil(t, result)
	tradeRepo.AssertNotCalled(t, "Save")
}

func TestTradeService_Create_BlockedSeller(t *testing.T) {
	tradeRepo := new(MockTradeRepository)
	sellerRepo := new(MockSellerRepository)
	rawRepo := new(MockRawDataRepository)
	publisher := new(MockEventPublisher)
	service := newTradeService(tradeRepo, sellerRepo, rawRepo, publisher)

	ctx := context.Background()
	sl := createTestSeller()
	require.NoError(t, sl.Block())

	tradeRepo.On("ExistsByTradeNumber", ctx, "NPL-2024-08").Return(false, nil)
	sellerRepo.On("FindByID", ctx, sl.ID).Return(sl, nil)

	result, err := service.Create(ctx, CreateTradeRequest{
		TradeNumber: "NPL-2024-08", Name: "Blocked Pool", SellerID: sl.ID,
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	tradeRepo.AssertNotCalled(t, "Save")
}

// Tests for TradeService.SubmitBid
func TestTradeService_SubmitBid_Success(t *testing.T) {
	tradeRepo := new(MockTradeRepository)
	sellerRepo := new(MockSellerRepository)
	rawRepo := new(MockRawDataRepository)
	publisher := new(MockEventPublisher)
	service := newTradeService(tradeRepo, sellerRepo, rawRepo, publisher)

	ctx := context.Background()
	tr := tradeInStatus(t, trade.TradeStatusDiligence)

	rawRepo.On("SumUPBByTrade", ctx, tr.ID).Return(seller.TradePopulationSummary{
		TotalUPB: "1000000.00",
	}, nil)
	tradeRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)
	tradeRepo.On("Save", ctx, tr).Return(nil)
	publisher.On("Publish", ctx, mock.Anything).Return(nil)

	result, err := service.SubmitBid(ctx, tr.ID, SubmitBidRequest{
		BidAmount: decimal.NewFromInt(650000),
	})

	require.NoError(t, err)
	assert.Equal(t, "BID_SUBMITTED", result.Status)
	assert.Equal(t, "650000", result.BidAmount)
	assert.Equal(t, "0.65", result.BidPctOfUPB)
	publisher.AssertExpectations(t)
}

func TestTradeService_SubmitBid_EmptyPopulation(t *testing.T) {
	tradeRepo := new(MockTradeRepository)
	sellerRepo := new(MockSellerRepository)
	rawRepo := new(MockRawDataRepository)
	publisher := new(MockEventPublisher)
	service := newTradeService(tradeRepo, sellerRepo, rawRepo, publisher)

	ctx := context.Background()
	tr := tradeInStatus(t, trade.TradeStatusDiligence)

	rawRepo.On("SumUPBByTrade", ctx, tr.ID).Return(seller.TradePopulationSummary{
		TotalUPB: "0",
	}, nil)
	tradeRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)

	result, err := service.SubmitBid(ctx, tr.ID, SubmitBidRequest{
		BidAmount: decimal.NewFromInt(650000),
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	tradeRepo.AssertNotCalled(t, "Save")
}

func TestTradeService_SubmitBid_WrongStatus(t *testing.T) {
	tradeRepo := new(MockTradeRepository)
	sellerRepo := new(MockSellerRepository)
	rawRepo := new(MockRawDataRepository)
	publisher := new(MockEventPublisher)
	service := newTradeService(tradeRepo, sellerRepo, rawRepo, publisher)

	ctx := context.Background()
	tr := createTestTrade(t) // still DRAFT

	rawRepo.On("SumUPBByTrade", ctx, tr.ID).Return(seller.TradePopulationSummary{
		TotalUPB: "1000000.00",
	}, nil)
	tradeRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)

	result, err := service.SubmitBid(ctx, tr.ID, SubmitBidRequest{
		BidAmount: decimal.NewFromInt(650000),
	})

	assert.Error(t, err)
	assert.Nil(t, result)
}

// Tests for TradeService.Settle
func TestTradeService_Settle_Success(t *testing.T) {
	tradeRepo := new(MockTradeRepository)
	sellerRepo := new(MockSellerRepository)
	rawRepo := new(MockRawDataRepository)
	publisher := new(MockEventPublisher)
	service := newTradeService(tradeRepo, sellerRepo, rawRepo, publisher)

	ctx := context.Background()
	tr := tradeInStatus(t, trade.TradeStatusAwarded)
	settlementDate := time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)

	var published []shared.DomainEvent
	tradeRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)
	tradeRepo.On("Save", ctx, tr).Return(nil)
	publisher.On("Publish", ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			published = args.Get(1).([]shared.DomainEvent)
		}).Return(nil)

	result, err := service.Settle(ctx, tr.ID, SettleTradeRequest{
		PurchasePrice:  decimal.NewFromInt(640000),
		SettlementDate: settlementDate,
	})

	require.NoError(t, err)
	assert.Equal(t, "SETTLED", result.Status)
	require.Len(t, published, 1)
	assert.Equal(t, trade.EventTypeTradeSettled, published[0].EventType())
}

func TestTradeService_Settle_FromDraft(t *testing.T) {
	tradeRepo := new(MockTradeRepository)
	sellerRepo := new(MockSellerRepository)
	rawRepo := new(MockRawDataRepository)
	publisher := new(MockEventPublisher)
	service := newTradeService(tradeRepo, sellerRepo, rawRepo, publisher)

	ctx := context.Background()
	tr := createTestTrade(t)

	tradeRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)

	result, err := service.Settle(ctx, tr.ID, SettleTradeRequest{
		PurchasePrice:  decimal.NewFromInt(640000),
		SettlementDate: time.Now(),
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	tradeRepo.AssertNotCalled(t, "Save")
}

// Tests for TradeService.Delete
func TestTradeService_Delete_DraftOnly(t *testing.T) {
	tradeRepo := new(MockTradeRepository)
	sellerRepo := new(MockSellerRepository)
	rawRepo := new(MockRawDataRepository)
	publisher := new(MockEventPublisher)
	service := newTradeService(tradeRepo, sellerRepo, rawRepo, publisher)

	ctx := context.Background()
	draft := createTestTrade(t)
	settled := tradeInStatus(t, trade.TradeStatusSettled)

	tradeRepo.On("FindByID", ctx, draft.ID).Return(draft, nil)
	tradeRepo.On("Delete", ctx, draft.ID).Return(nil)
	assert.NoError(t, service.Delete(ctx, draft.ID))

	tradeRepo.On("FindByID", ctx, settled.ID).Return(settled, nil)
	assert.Error(t, service.Delete(ctx, settled.ID))
	tradeRepo.AssertNumberOfCalls(t, "Delete", 1)
}

// Tests for TradeService lifecycle transitions
func TestTradeService_FullLifecycle(t *testing.T) {
	tradeRepo := new(MockTradeRepository)
	sellerRepo := new(MockSellerRepository)
	rawRepo := new(MockRawDataRepository)
	publisher := new(MockEventPublisher)
	service := newTradeService(tradeRepo, sellerRepo, rawRepo, publisher)

	ctx := context.Background()
	tr := createTestTrade(t)

	tradeRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)
	tradeRepo.On("Save", ctx, tr).Return(nil)
	rawRepo.On("SumUPBByTrade", ctx, tr.ID).Return(seller.TradePopulationSummary{
		TotalUPB: "2000000.00",
	}, nil)
	publisher.On("Publish", ctx, mock.Anything).Return(nil)

	resp, err := service.StartDiligence(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "DILIGENCE", resp.Status)

	resp, err = service.SubmitBid(ctx, tr.ID, SubmitBidRequest{BidAmount: decimal.NewFromInt(1500000)})
	require.NoError(t, err)
	assert.Equal(t, "BID_SUBMITTED", resp.Status)

	resp, err = service.Award(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "AWARDED", resp.Status)

	resp, err = service.Settle(ctx, tr.ID, SettleTradeRequest{
		PurchasePrice:  decimal.NewFromInt(1480000),
		SettlementDate: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, "SETTLED", resp.Status)
}
