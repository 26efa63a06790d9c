package handlers

import (
	"errors"
	"net/http"

	"moveline/models"
	"moveline/services/distance"
	"moveline/services/pricing"
	"moveline/services/validation"
	"moveline/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// QuoteRequest are the query parameters of GET /api/quote. Miles is used
// as-is when given; otherwise the pickup → dropoff driving distance is
// measured.
type QuoteRequest struct {
	MoveType     string   `form:"moveType" binding:"required"`
	Pickup       string   `form:"pickup"`
	Dropoff      string   `form:"dropoff"`
	Miles        *float64 `form:"miles"`
	PickupRooms  int      `form:"pickupRooms" binding:"min=0,max=10"`
	DropoffRooms int      `form:"dropoffRooms" binding:"min=0,max=10"`
	Stairs       int      `form:"stairs" binding:"min=0"`
	Packing      bool     `form:"packing"`
}

// QuoteResponse is the priced estimate plus the sentence read to callers.
type QuoteResponse struct {
	Estimate models.Estimate `json:"estimate"`
	Message  string          `json:"message"`
}

// QuoteHandler prices a job for web forms and integrations.
type QuoteHandler struct {
	Maps   distance.Service
	Policy pricing.Policy
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(maps distance.Service, policy pricing.Policy) *QuoteHandler {
	return &QuoteHandler{Maps: maps, Policy: policy}
}

// GetQuoteHandler returns an estimate for the requested job.
func (h *QuoteHandler) GetQuoteHandler(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.RespondError(c, utils.NewAppError(http.StatusBadRequest, "invalid_request", "Invalid quote parameters", err))
		return
	}
	moveType, ok := ParseMoveType(req.MoveType)
	if !ok {
		utils.RespondError(c, utils.NewAppError(http.StatusBadRequest, "invalid_move_type", "Unknown move type", nil))
		return
	}

	in := pricing.Input{
		PickupRooms: req.PickupRooms,
		Stairs:      req.Stairs,
		MoveType:    moveType,
		Packing:     req.Packing,
	}
	if moveType.NeedsDropoff() {
		in.DropoffRooms = req.DropoffRooms
		miles, err := h.miles(c, req)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		in.DistanceMiles = miles
	}

	estimate, err := h.Policy.Estimate(in)
	if err != nil {
		utils.RespondError(c, utils.NewAppError(http.StatusBadRequest, "invalid_request", "Cannot price this job", err))
		return
	}
	c.JSON(http.StatusOK, QuoteResponse{Estimate: estimate, Message: pricing.FormatMessage(estimate)})
}

func (h *QuoteHandler) miles(c *gin.Context, req QuoteRequest) (float64, error) {
	if req.Miles != nil {
		return *req.Miles, nil
	}
	if req.Pickup == "" || req.Dropoff == "" {
		return 0, utils.NewAppError(http.StatusBadRequest, "missing_address", "pickup and dropoff are required when miles is not given", nil)
	}

	route, err := h.Maps.Route(c.Request.Context(), req.Pickup, req.Dropoff)
	switch {
	case errors.Is(err, distance.ErrMissingAPIKey):
		return 0, utils.NewAppError(http.StatusServiceUnavailable, "maps_unavailable", "Distance lookup is not configured", err)
	case errors.Is(err, distance.ErrNoRoute), errors.Is(err, distance.ErrAddressNotFound):
		return 0, utils.NewAppError(http.StatusUnprocessableEntity, "no_route", "No driving route between the addresses", err)
	case err != nil:
		getLogger(c).Error("route lookup failed", zap.Error(err))
		return 0, utils.NewAppError(http.StatusBadGateway, "maps_error", "Distance lookup failed", err)
	}
	return route.PickupToDropoffMiles, nil
}

// ParseMoveType accepts the stored identifiers ("long_distance") as well as
// the spoken labels ("long distance").
func ParseMoveType(raw string) (models.MoveType, bool) {
	switch mt := models.MoveType(raw); mt {
	case models.MoveLocal, models.MoveLongDistance, models.MoveJunkRemoval, models.MoveInHomeService:
		return mt, true
	}
	return validation.ParseMoveType(raw)
}
