package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/npl/backend/internal/application/trade"
	tradedomain "github.com/npl/backend/internal/domain/trade"
)

// TradeHandler handles trade lifecycle HTTP requests
type TradeHandler struct {
	BaseHandler
	tradeService *trade.TradeService
}

// NewTradeHandler creates a new trade handler
func NewTradeHandler(tradeService *trade.TradeService) *TradeHandler {
	return &TradeHandler{
		tradeService: tradeService,
	}
}

// Create godoc
// @Summary      Create a trade
// @Description  Open a new trade in DRAFT against a seller
// @Tags         trades
// @Accept       json
// @Produce      json
// @Param        request body trade.CreateTradeRequest true "Trade data"
// @Success      201 {object} dto.Response{data=trade.TradeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /trades [post]
func (h *TradeHandler) Create(c *gin.Context) {
	var req trade.CreateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.tradeService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID godoc
// @Summary      Get a trade by ID
// @Tags         trades
// @Produce      json
// @Param        id path string true "Trade ID" format(uuid)
// @Success      200 {object} dto.Response{data=trade.TradeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /trades/{id} [get]
func (h *TradeHandler) GetByID(c *gin.Context) {
	tradeID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid trade ID")
		return
	}

	result, err := h.tradeService.GetByID(c.Request.Context(), tradeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByNumber godoc
// @Summary      Get a trade by trade number
// @Tags         trades
// @Produce      json
// @Param        number path string true "Trade number"
// @Success      200 {object} dto.Response{data=trade.TradeResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /trades/number/{number} [get]
func (h *TradeHandler) GetByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Trade number is required")
		return
	}

	result, err := h.tradeService.GetByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @Summary      List trades
// @Tags         trades
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        status query string false "Filter by status"
// @Param        seller_id query string false "Filter by seller" format(uuid)
// @Success      200 {object} dto.Response{data=[]trade.TradeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /trades [get]
func (h *TradeHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	if sellerIDStr := c.Query("seller_id"); sellerIDStr != "" {
		sellerID, err := uuid.Parse(sellerIDStr)
		if err != nil {
			h.BadRequest(c, "Invalid seller ID")
			return
		}
		results, err := h.tradeService.ListBySeller(c.Request.Context(), sellerID, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, results)
		return
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := tradedomain.TradeStatus(statusStr)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid trade status")
			return
		}
		results, err := h.tradeService.ListByStatus(c.Request.Context(), status, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, results)
		return
	}

	results, total, err := h.tradeService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, results, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a trade
// @Tags         trades
// @Accept       json
// @Produce      json
// @Param        id path string true "Trade ID" format(uuid)
// @Param        request body trade.UpdateTradeRequest true "Fields to update"
// @Success      200 {object} dto.Response{data=trade.TradeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /trades/{id} [put]
func (h *TradeHandler) Update(c *gin.Context) {
	tradeID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid trade ID")
		return
	}

	var req trade.UpdateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.tradeService.Update(c.Request.Context(), tradeID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// StartDiligence godoc
// @Summary      Move a trade into diligence
// @Tags         trades
// @Produce      json
// @Param        id path string true "Trade ID" format(uuid)
// @Success      200 {object} dto.Response{data=trade.TradeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /trades/{id}/diligence [post]
func (h *TradeHandler) StartDiligence(c *gin.Context) {
	h.transition(c, h.tradeService.StartDiligence)
}

// SubmitBid godoc
// @Summary      Submit a bid on a trade
// @Tags         trades
// @Accept       json
// @Produce      json
// @Param        id path string true "Trade ID" format(uuid)
// @Param        request body trade.SubmitBidRequest true "Bid amount"
// @Success      200 {object} dto.Response{data=trade.TradeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /trades/{id}/bid [post]
func (h *TradeHandler) SubmitBid(c *gin.Context) {
	tradeID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid trade ID")
		return
	}

	var req trade.SubmitBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.tradeService.SubmitBid(c.Request.Context(), tradeID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Award godoc
// @Summary      Mark a trade as awarded
// @Tags         trades
// @Produce      json
// @Param        id path string true "Trade ID" format(uuid)
// @Success      200 {object} dto.Response{data=trade.TradeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /trades/{id}/award [post]
func (h *TradeHandler) Award(c *gin.Context) {
	h.transition(c, h.tradeService.Award)
}

// Settle godoc
// @Summary      Settle a trade
// @Description  Record the purchase price and settlement date; boards the population as assets
// @Tags         trades
// @Accept       json
// @Produce      json
// @Param        id path string true "Trade ID" format(uuid)
// @Param        request body trade.SettleTradeRequest true "Settlement terms"
// @Success      200 {object} dto.Response{data=trade.TradeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /trades/{id}/settle [post]
func (h *TradeHandler) Settle(c *gin.Context) {
	tradeID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid trade ID")
		return
	}

	var req trade.SettleTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.tradeService.Settle(c.Request.Context(), tradeID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Pass godoc
// @Summary      Pass on a trade
// @Tags         trades
// @Produce      json
// @Param        id path string true "Trade ID" format(uuid)
// @Success      200 {object} dto.Response{data=trade.TradeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /trades/{id}/pass [post]
func (h *TradeHandler) Pass(c *gin.Context) {
	h.transition(c, h.tradeService.Pass)
}

// Cancel godoc
// @Summary      Cancel a trade
// @Tags         trades
// @Produce      json
// @Param        id path string true "Trade ID" format(uuid)
// @Success      200 {object} dto.Response{data=trade.TradeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /trades/{id}/cancel [post]
func (h *TradeHandler) Cancel(c *gin.Context) {
	h.transition(c, h.tradeService.Cancel)
}

// Delete godoc
// @Summary      Delete a trade
// @Description  Only DRAFT trades can be deleted
// @Tags         trades
// @Produce      json
// @Param        id path string true "Trade ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /trades/{id} [delete]
func (h *TradeHandler) Delete(c *gin.Context) {
	tradeID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid trade ID")
		return
	}

	if err := h.tradeService.Delete(c.Request.Context(), tradeID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *TradeHandler) transition(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*trade.TradeResponse, error)) {
	tradeID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid trade ID")
		return
	}

	result, err := op(c.Request.Context(), tradeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
