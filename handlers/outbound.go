// File: handlers/outbound.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"moveline/models"
	"moveline/services/telephony"
	"moveline/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LeadCaller places outbound calls to web leads.
type LeadCaller interface {
	PlaceLeadCall(ctx context.Context, lead models.OutboundLead) (*models.OutboundCallResponse, error)
	CallsToday(ctx context.Context) (int, error)
}

// OutboundHandler exposes outbound lead calls to integrations.
type OutboundHandler struct {
	Caller LeadCaller
}

// NewOutboundHandler creates a new OutboundHandler.
func NewOutboundHandler(caller LeadCaller) *OutboundHandler {
	return &OutboundHandler{Caller: caller}
}

// CreateLeadCallHandler dials a lead submitted by a web form.
func (h *OutboundHandler) CreateLeadCallHandler(c *gin.Context) {
	var lead models.OutboundLead
	if err := c.ShouldBindJSON(&lead); err != nil {
		utils.RespondError(c, utils.NewAppError(http.StatusBadRequest, "invalid_request", "phone is required", err))
		return
	}

	resp, err := h.Caller.PlaceLeadCall(c.Request.Context(), lead)
	switch {
	case errors.Is(err, telephony.ErrInvalidPhone):
		utils.RespondError(c, utils.NewAppError(http.StatusBadRequest, "invalid_phone", "Invalid phone number", err))
		return
	case errors.Is(err, telephony.ErrDailyCapReached):
		utils.RespondError(c, utils.NewAppError(http.StatusTooManyRequests, "daily_limit", "Daily outbound call limit reached", err))
		return
	case errors.Is(err, telephony.ErrOutboundDisabled):
		utils.RespondError(c, utils.NewAppError(http.StatusServiceUnavailable, "outbound_disabled", "Outbound calls are disabled", err))
		return
	case err != nil:
		getLogger(c).Error("failed to place lead call", zap.Error(err))
		utils.RespondError(c, utils.NewAppError(http.StatusBadGateway, "call_failed", "Failed to place call", err))
		return
	}
	c.JSON(http.StatusOK, resp)
}
