package handler

import (
	"net/http"

	"github.com/GoPolymarket/hudgate/internal/middleware"
	"github.com/GoPolymarket/hudgate/internal/model"
	"github.com/GoPolymarket/hudgate/internal/pkg/apperrors"
	"github.com/GoPolymarket/hudgate/internal/pkg/metrics"
	"github.com/GoPolymarket/hudgate/internal/service"
	"github.com/gin-gonic/gin"
)

type TradeHandler struct {
	svc *service.TradeService
}

func NewTradeHandler(svc *service.TradeService) *TradeHandler {
	return &TradeHandler{svc: svc}
}

func (h *TradeHandler) Execute(c *gin.Context) {
	var req model.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := apperrors.NewInvalidRequest("Bad JSON")
		metrics.TradesTotal.WithLabelValues("error", "").Inc()
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	resp, err := h.svc.Execute(c.Request.Context(), req)
	if err != nil {
		appErr := apperrors.Wrap(err)
		middleware.AddAuditContext(c, "error", appErr.Message)
		metrics.TradesTotal.WithLabelValues("error", req.Side).Inc()
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	middleware.AddAuditContext(c, "token_id", resp.Meta.TokenID)
	metrics.TradesTotal.WithLabelValues("success", req.Side).Inc()

	c.JSON(http.StatusOK, resp)
}
