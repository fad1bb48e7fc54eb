package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/npl/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sellerForm struct {
	Email string `json:"email" binding:"required,email"`
	State string `json:"state" binding:"omitempty,usstate"`
	Loans int    `json:"loans" binding:"required,min=1"`
}

func validationRouter(t *testing.T) *gin.Engine {
	t.Helper()
	SetupValidator()

	router := gin.New()
	router.POST("/sellers", func(c *gin.Context) {
		var req sellerForm
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/sellers", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError_ReportsEachField(t *testing.T) {
	router := validationRouter(t)

	w := postJSON(router, `{"email": "invalid", "loans": 0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "Request validation failed", resp.Error.Message)
	require.Len(t, resp.Error.Details, 2)

	// Field names come from the json tags, not the Go struct
	fields := []string{resp.Error.Details[0].Field, resp.Error.Details[1].Field}
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "loans")
}

func TestHandleValidationError_USState(t *testing.T) {
	router := validationRouter(t)

	w := postJSON(router, `{"email": "ops@example.com", "state": "ZZ", "loans": 10}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "state", resp.Error.Details[0].Field)
	assert.Equal(t, "Must be a two-letter USPS state code", resp.Error.Details[0].Message)

	// Lowercase codes pass
	w = postJSON(router, `{"email": "ops@example.com", "state": "tx", "loans": 10}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleValidationError_ValidInput(t *testing.T) {
	router := validationRouter(t)

	w := postJSON(router, `{"email": "ops@example.com", "state": "OH", "loans": 250}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestValidationMessage(t *testing.T) {
	type form struct {
		Required string `binding:"required"`
		Email    string `binding:"email"`
		Min      string `binding:"min=5"`
		Max      string `binding:"max=10"`
		Len      string `binding:"len=5"`
		UUID     string `binding:"uuid"`
		OneOf    string `binding:"oneof=a b c"`
		URL      string `binding:"url"`
	}

	v := validator.New()
	err := v.Struct(form{
		Email: "invalid",
		Min:   "ab",
		Max:   "this is way too long",
		Len:   "ab",
		UUID:  "invalid",
		OneOf: "d",
		URL:   "invalid",
	})
	require.Error(t, err)

	want := map[string]string{
		"Required": "This field is required",
		"Email":    "Invalid email format",
		"Min":      "Must be at least 5 characters",
		"Max":      "Must be at most 10 characters",
		"Len":      "Must be exactly 5 characters",
		"UUID":     "Invalid UUID format",
		"OneOf":    "Must be one of: a b c",
		"URL":      "Invalid URL format",
	}

	for _, e := range err.(validator.ValidationErrors) {
		assert.Equal(t, want[e.Field()], validationMessage(e), e.Field())
	}
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-1")

	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
	assert.Equal(t, "req-1", resp.Error.RequestID)
}
