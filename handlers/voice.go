// File: handlers/voice.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"moveline/models"
	"moveline/services/conversation"
	"moveline/services/notification"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dialogue is the conversation engine behind the webhooks.
type Dialogue interface {
	StartInbound(ctx context.Context, callSID, from string) models.Directive
	StartOutbound(ctx context.Context, callSID string, lead models.OutboundLead) models.Directive
	HandleTurn(ctx context.Context, ev conversation.Event) models.Directive
	HandleStatus(ctx context.Context, ev conversation.StatusEvent)
}

// VoiceHandler serves the Twilio voice webhooks.
type VoiceHandler struct {
	Dialogue Dialogue
	Options  VoiceOptions
	Company  notification.Company
}

// NewVoiceHandler creates a new VoiceHandler.
func NewVoiceHandler(d Dialogue, opts VoiceOptions, company notification.Company) *VoiceHandler {
	return &VoiceHandler{Dialogue: d, Options: opts, Company: company}
}

// callSID returns the CallSid form value, or a generated id so a malformed
// request still gets a session of its own.
func callSID(c *gin.Context) string {
	if sid := strings.TrimSpace(c.PostForm("CallSid")); sid != "" {
		return sid
	}
	sid := "local-" + uuid.NewString()
	getLogger(c).Warn("webhook without CallSid", zap.String("generated", sid))
	return sid
}

// InboundHandler answers a new inbound call with the greeting.
func (h *VoiceHandler) InboundHandler(c *gin.Context) {
	sid := callSID(c)
	from := c.PostForm("From")
	getLogger(c).Info("incoming call", zap.String("callSID", sid), zap.String("from", from))

	d := h.Dialogue.StartInbound(c.Request.Context(), sid, from)
	respondVoice(c, d, h.Options)
}

// ProcessHandler runs one dialogue turn with the gathered speech or digits.
func (h *VoiceHandler) ProcessHandler(c *gin.Context) {
	in := models.Input{
		Text:   strings.TrimSpace(c.PostForm("SpeechResult")),
		Digits: strings.TrimSpace(c.PostForm("Digits")),
		Source: models.SourceNone,
	}
	switch {
	case in.Digits != "":
		in.Source = models.SourceDTMF
	case in.Text != "":
		in.Source = models.SourceSpeech
	}

	d := h.Dialogue.HandleTurn(c.Request.Context(), conversation.Event{
		SessionID: callSID(c),
		Channel:   models.ChannelVoice,
		From:      c.PostForm("From"),
		Input:     in,
	})
	respondVoice(c, d, h.Options)
}

// OutboundHandler serves the script of an answered outbound lead call. The
// lead's name and email travel in the query string of the answer URL.
func (h *VoiceHandler) OutboundHandler(c *gin.Context) {
	sid := callSID(c)
	log := getLogger(c).With(zap.String("callSID", sid))

	if answeredBy := c.PostForm("AnsweredBy"); strings.HasPrefix(answeredBy, "machine") || answeredBy == "fax" {
		log.Info("outbound call reached voicemail", zap.String("answeredBy", answeredBy))
		msg := fmt.Sprintf("Hello, this is %s returning your moving inquiry. Please call us back at %s. Thank you!", h.Company.Name, h.Company.Phone)
		respondVoice(c, models.HangupDirective(msg), h.Options)
		return
	}

	lead := models.OutboundLead{
		Phone: c.PostForm("To"),
		Name:  c.Query("name"),
		Email: c.Query("email"),
	}
	log.Info("outbound call answered", zap.String("to", lead.Phone))
	d := h.Dialogue.StartOutbound(c.Request.Context(), sid, lead)
	respondVoice(c, d, h.Options)
}

// StatusHandler receives call status callbacks. Final statuses flush the
// session; Twilio only needs an empty success.
func (h *VoiceHandler) StatusHandler(c *gin.Context) {
	ev := conversation.StatusEvent{
		CallSID: callSID(c),
		Status:  c.PostForm("CallStatus"),
		From:    c.PostForm("From"),
		To:      c.PostForm("To"),
	}
	getLogger(c).Info("call status", zap.String("callSID", ev.CallSID), zap.String("status", ev.Status))
	// The flush must outlive a Twilio timeout on this request.
	h.Dialogue.HandleStatus(context.WithoutCancel(c.Request.Context()), ev)
	c.Status(http.StatusNoContent)
}
