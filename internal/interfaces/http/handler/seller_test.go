package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	sellerapp "github.com/npl/backend/internal/application/seller"
	"github.com/npl/backend/internal/domain/seller"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/npl/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSellerRepository implements seller.SellerRepository for testing
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

func (m *MockSellerRepository) Save(ctx context.Context, sl *seller.Seller) error {
	args := m.Called(ctx, sl)
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

func setupSellerRouter(repo *MockSellerRepository) *gin.Engine {
	h := NewSellerHandler(sellerapp.NewSellerService(repo))

	r := gin.New()
	r.POST("/sellers", h.Create)
	r.GET("/sellers", h.List)
	r.GET("/sellers/:id", h.GetByID)
	r.GET("/sellers/code/:code", h.GetByCode)
	r.PUT("/sellers/:id", h.Update)
	r.POST("/sellers/:id/block", h.Block)
	return r
}

func TestSellerHandler_Create(t *testing.T) {
	t.Run("creates seller", func(t *testing.T) {
		repo := new(MockSellerRepository)
		repo.On("ExistsByCode", mock.Anything, "FNMA").Return(false, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*seller.Seller")).Return(nil)

		body, _ := json.Marshal(map[string]string{
			"code": "FNMA",
			"name": "Federal National Mortgage Association",
			"type": "bank",
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/sellers", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		setupSellerRouter(repo).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		repo.AssertExpectations(t)
	})

	t.Run("rejects duplicate code", func(t *testing.T) {
		repo := new(MockSellerRepository)
		repo.On("ExistsByCode", mock.Anything, "FNMA").Return(true, nil)

		body, _ := json.Marshal(map[string]string{
			"code": "FNMA",
			"name": "Federal National Mortgage Association",
			"type": "bank",
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/sellers", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		setupSellerRouter(repo).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeAlreadyExists, resp.Error.Code)
	})

	t.Run("rejects invalid body", func(t *testing.T) {
		repo := new(MockSellerRepository)

		body, _ := json.Marshal(map[string]string{
			"code": "FNMA",
			"name": "Federal National Mortgage Association",
			"type": "hedge-fund", // not in the enum
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/sellers", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		setupSellerRouter(repo).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		repo.AssertNotCalled(t, "Save")
	})
}

func TestSellerHandler_GetByID(t *testing.T) {
	t.Run("returns seller", func(t *testing.T) {
		sl, err := seller.NewSeller("FHLMC", "Freddie Mac", seller.SellerType("bank"))
		require.NoError(t, err)

		repo := new(MockSellerRepository)
		repo.On("FindByID", mock.Anything, sl.ID).Return(sl, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/sellers/"+sl.ID.String(), nil)
		setupSellerRouter(repo).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("404 when missing", func(t *testing.T) {
		repo := new(MockSellerRepository)
		repo.On("FindByID", mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError("NOT_FOUND", "Seller not found"))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/sellers/"+uuid.NewString(), nil)
		setupSellerRouter(repo).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("400 on malformed ID", func(t *testing.T) {
		repo := new(MockSellerRepository)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/sellers/not-a-uuid", nil)
		setupSellerRouter(repo).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		repo.AssertNotCalled(t, "FindByID")
	})
}

func TestSellerHandler_List(t *testing.T) {
	sl1, err := seller.NewSeller("FNMA", "Fannie Mae", seller.SellerType("bank"))
	require.NoError(t, err)
	sl2, err := seller.NewSeller("LSF11", "Lone Star Fund XI", seller.SellerType("fund"))
	require.NoError(t, err)

	repo := new(MockSellerRepository)
	repo.On("FindAll", mock.Anything, mock.Anything).Return([]seller.Seller{*sl1, *sl2}, nil)
	repo.On("Count", mock.Anything, mock.Anything).Return(int64(2), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/sellers?page=1&page_size=10", nil)
	setupSellerRouter(repo).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.Equal(t, 10, resp.Meta.PageSize)
}

func TestSellerHandler_Block(t *testing.T) {
	sl, err := seller.NewSeller("FNMA", "Fannie Mae", seller.SellerType("bank"))
	require.NoError(t, err)

	repo := new(MockSellerRepository)
	repo.On("FindByID", mock.Anything, sl.ID).Return(sl, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*seller.Seller")).Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/sellers/"+sl.ID.String()+"/block", nil)
	setupSellerRouter(repo).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}
