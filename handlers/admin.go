// File: handlers/admin.go
package handlers

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"moveline/models"
	"moveline/services/session"
	"moveline/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionSummary is the admin view of one active dialogue.
type SessionSummary struct {
	ID             string           `json:"id"`
	Channel        models.Channel   `json:"channel"`
	Direction      models.Direction `json:"direction"`
	CallerPhone    string           `json:"callerPhone,omitempty"`
	Step           models.Step      `json:"step"`
	Name           string           `json:"name,omitempty"`
	MoveType       models.MoveType  `json:"moveType,omitempty"`
	Flushed        bool             `json:"flushed"`
	LastActivityAt string           `json:"lastActivityAt"`
}

// AdminHandler encapsulates operator-level read operations.
type AdminHandler struct {
	Sessions session.Store
	Calls    LeadCaller
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(sessions session.Store, calls LeadCaller) *AdminHandler {
	return &AdminHandler{Sessions: sessions, Calls: calls}
}

func summarize(s *models.Session) SessionSummary {
	return SessionSummary{
		ID:             s.ID,
		Channel:        s.Channel,
		Direction:      s.Direction,
		CallerPhone:    s.CallerPhone,
		Step:           s.Step,
		Name:           s.Data.Name,
		MoveType:       s.Data.MoveType,
		Flushed:        s.Flushed,
		LastActivityAt: s.LastActivityAt.UTC().Format(time.RFC3339),
	}
}

// GetSessionsHandler lists active sessions, most recently active first.
func (ah *AdminHandler) GetSessionsHandler(c *gin.Context) {
	sessions, err := ah.Sessions.List(c.Request.Context())
	if err != nil {
		getLogger(c).Error("Failed to list sessions", zap.Error(err))
		utils.RespondError(c, utils.NewAppError(http.StatusInternalServerError, "store_error", "Failed to list sessions", err))
		return
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastActivityAt.After(sessions[j].LastActivityAt)
	})

	out := make([]SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, summarize(s))
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "sessions": out})
}

// GetSessionHandler returns the full state of one session.
func (ah *AdminHandler) GetSessionHandler(c *gin.Context) {
	s, err := ah.Sessions.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, session.ErrNotFound) {
		utils.RespondError(c, utils.NewAppError(http.StatusNotFound, "not_found", "Session not found", nil))
		return
	}
	if err != nil {
		utils.RespondError(c, utils.NewAppError(http.StatusInternalServerError, "store_error", "Failed to load session", err))
		return
	}
	c.JSON(http.StatusOK, s)
}

// GetOutboundUsageHandler reports today's outbound call count.
func (ah *AdminHandler) GetOutboundUsageHandler(c *gin.Context) {
	n, err := ah.Calls.CallsToday(c.Request.Context())
	if err != nil {
		utils.RespondError(c, utils.NewAppError(http.StatusInternalServerError, "counter_error", "Failed to read call counter", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"callsToday": n})
}
