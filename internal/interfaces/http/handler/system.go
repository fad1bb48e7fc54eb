package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/npl/backend/internal/interfaces/http/dto"
)

// SystemHandler serves the unauthenticated service-identity endpoints
type SystemHandler struct {
	BaseHandler
	env       string
	startTime time.Time
}

func NewSystemHandler(env string) *SystemHandler {
	return &SystemHandler{
		env:       env,
		startTime: time.Now(),
	}
}

// SystemInfoResponse identifies the running service instance
type SystemInfoResponse struct {
	Name        string `json:"name" example:"NPL Backend API"`
	Version     string `json:"version" example:"1.0.0"`
	Environment string `json:"environment" example:"production"`
	GoVersion   string `json:"go_version" example:"go1.25.5"`
	StartedAt   string `json:"started_at" example:"2026-01-23T10:30:00Z"`
	Uptime      string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @Summary      Get system information
// @Description  Returns service identity, environment and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=SystemInfoResponse}
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:        "NPL Backend API",
		Version:     "1.0.0",
		Environment: h.env,
		GoVersion:   runtime.Version(),
		StartedAt:   h.startTime.Format(time.RFC3339),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// PingResponse is the liveness probe payload
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @Summary      Ping the API
// @Description  Liveness check; always returns pong
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=PingResponse}
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}))
}
