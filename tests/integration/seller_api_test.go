// Package integration provides integration testing for the NPL backend API.
// This file contains tests for the Seller API endpoints against a real database.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	sellerapp "github.com/npl/backend/internal/application/seller"
	"github.com/npl/backend/internal/infrastructure/persistence"
	"github.com/npl/backend/internal/interfaces/http/handler"
	"github.com/npl/backend/internal/interfaces/http/router"
	"github.com/npl/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SellerTestServer wraps the test database and HTTP server for Seller API testing
type SellerTestServer struct {
	DB     *TestDB
	Engine *gin.Engine
}

// NewSellerTestServer creates a new test server with the Seller API registered
func NewSellerTestServer(t *testing.T) *SellerTestServer {
	t.Helper()

	gin.SetMode(gin.TestMode)
	testDB := NewTestDB(t)

	sellerRepo := persistence.NewGormSellerRepository(testDB.DB)
	sellerService := sellerapp.NewSellerService(sellerRepo)
	sellerHandler := handler.NewSellerHandler(sellerService)

	engine := gin.New()
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	sellerGroup := router.NewDomainGroup("sellers", "/sellers")
	sellerGroup.
		POST("", sellerHandler.Create).
		GET("", sellerHandler.List).
		GET("/code/:code", sellerHandler.GetByCode).
		GET("/:id", sellerHandler.GetByID).
		PUT("/:id", sellerHandler.Update).
		POST("/:id/activate", sellerHandler.Activate).
		POST("/:id/deactivate", sellerHandler.Deactivate).
		POST("/:id/block", sellerHandler.Block)

	r.Register(sellerGroup)
	r.Setup()

	return &SellerTestServer{
		DB:     testDB,
		Engine: engine,
	}
}

// doJSON performs a JSON request against the test server
func (s *SellerTestServer) doJSON(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = bytes.NewReader(nil)
	if body != nil {
		reader = testutil.ToJSONReader(t, body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.Engine.ServeHTTP(w, req)
	return w
}

// envelope is the standard API response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func createTestSeller(t *testing.T, s *SellerTestServer, code string) uuid.UUID {
	t.Helper()

	w := s.doJSON(t, http.MethodPost, "/api/v1/sellers", sellerapp.CreateSellerRequest{
		Code: code,
		Name: "Test Bank " + code,
		Type: "bank",
	})
	require.Equal(t, http.StatusCreated, w.Code, "create seller failed: %s", w.Body.String())

	env := decodeEnvelope(t, w)
	require.True(t, env.Success)

	var resp sellerapp.SellerResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	return resp.ID
}

func TestSellerAPI_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	server := NewSellerTestServer(t)

	t.Run("create seller", func(t *testing.T) {
		w := server.doJSON(t, http.MethodPost, "/api/v1/sellers", sellerapp.CreateSellerRequest{
			Code:        "acq-bank-1",
			Name:        "Acquisition Bank One",
			Type:        "bank",
			ContactName: "Jordan Reyes",
			Email:       "jordan@acqbank.example",
			State:       "TX",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		env := decodeEnvelope(t, w)
		assert.True(t, env.Success)

		var resp sellerapp.SellerResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, "ACQ-BANK-1", resp.Code, "codes are uppercased")
		assert.Equal(t, "active", resp.Status)
	})

	t.Run("duplicate code rejected", func(t *testing.T) {
		w := server.doJSON(t, http.MethodPost, "/api/v1/sellers", sellerapp.CreateSellerRequest{
			Code: "ACQ-BANK-1",
			Name: "Duplicate",
			Type: "fund",
		})
		assert.Equal(t, http.StatusConflict, w.Code)

		env := decodeEnvelope(t, w)
		assert.False(t, env.Success)
	})

	t.Run("get by code", func(t *testing.T) {
		w := server.doJSON(t, http.MethodGet, "/api/v1/sellers/code/ACQ-BANK-1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		env := decodeEnvelope(t, w)
		var resp sellerapp.SellerResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, "Acquisition Bank One", resp.Name)
	})

	t.Run("get by id", func(t *testing.T) {
		id := createTestSeller(t, server, "GETBYID-1")

		w := server.doJSON(t, http.MethodGet, "/api/v1/sellers/"+id.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)

		env := decodeEnvelope(t, w)
		var resp sellerapp.SellerResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, id, resp.ID)
	})

	t.Run("get unknown id returns 404", func(t *testing.T) {
		w := server.doJSON(t, http.MethodGet, "/api/v1/sellers/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid type rejected", func(t *testing.T) {
		w := server.doJSON(t, http.MethodPost, "/api/v1/sellers", map[string]string{
			"code": "BADTYPE",
			"name": "Bad Type",
			"type": "hedgehog",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSellerAPI_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	server := NewSellerTestServer(t)
	id := createTestSeller(t, server, "LIFE-1")

	t.Run("block then reactivate", func(t *testing.T) {
		w := server.doJSON(t, http.MethodPost, fmt.Sprintf("/api/v1/sellers/%s/block", id), nil)
		require.Equal(t, http.StatusOK, w.Code)

		env := decodeEnvelope(t, w)
		var resp sellerapp.SellerResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, "blocked", resp.Status)

		w = server.doJSON(t, http.MethodPost, fmt.Sprintf("/api/v1/sellers/%s/activate", id), nil)
		require.Equal(t, http.StatusOK, w.Code)

		env = decodeEnvelope(t, w)
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, "active", resp.Status)
	})

	t.Run("deactivate", func(t *testing.T) {
		w := server.doJSON(t, http.MethodPost, fmt.Sprintf("/api/v1/sellers/%s/deactivate", id), nil)
		require.Equal(t, http.StatusOK, w.Code)

		env := decodeEnvelope(t, w)
		var resp sellerapp.SellerResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, "inactive", resp.Status)
	})

	t.Run("update header fields", func(t *testing.T) {
		w := server.doJSON(t, http.MethodPut, "/api/v1/sellers/"+id.String(), sellerapp.UpdateSellerRequest{
			Name:  "Renamed Counterparty",
			City:  "Dallas",
			State: "TX",
		})
		require.Equal(t, http.StatusOK, w.Code)

		env := decodeEnvelope(t, w)
		var resp sellerapp.SellerResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, "Renamed Counterparty", resp.Name)
		assert.Equal(t, "Dallas", resp.City)
	})
}

func TestSellerAPI_List(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	server := NewSellerTestServer(t)
	for i := 1; i <= 3; i++ {
		createTestSeller(t, server, fmt.Sprintf("LIST-%d", i))
	}

	w := server.doJSON(t, http.MethodGet, "/api/v1/sellers?page=1&page_size=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool              `json:"success"`
		Data    []json.RawMessage `json:"data"`
		Meta    *struct {
			Total    int64 `json:"total"`
			Page     int   `json:"page"`
			PageSize int   `json:"page_size"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 2)
	require.NotNil(t, resp.Meta)
	assert.EqualValues(t, 3, resp.Meta.Total)
}
