// File: handlers/sms.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"moveline/models"
	"moveline/services/conversation"
	"moveline/services/notification"
	"moveline/services/persistence"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddressUpdater rewrites the addresses of a caller's latest booking.
type AddressUpdater interface {
	UpdateLatestBookingAddresses(ctx context.Context, phone, pickup, dropoff string) (*models.Record, error)
}

// SMSSender delivers a text message.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// SMSHandler serves the Twilio messaging webhook.
type SMSHandler struct {
	Dialogue     Dialogue
	Bookings     AddressUpdater
	Sender       SMSSender
	Company      notification.Company
	ManagerPhone string
}

// NewSMSHandler creates a new SMSHandler.
func NewSMSHandler(d Dialogue, bookings AddressUpdater, sender SMSSender, company notification.Company, managerPhone string) *SMSHandler {
	return &SMSHandler{
		Dialogue:     d,
		Bookings:     bookings,
		Sender:       sender,
		Company:      company,
		ManagerPhone: managerPhone,
	}
}

// SMSSessionID is the session key of a text conversation with phone.
func SMSSessionID(phone string) string {
	key := persistence.PhoneKey(phone)
	if key == "" {
		return "sms:" + uuid.NewString()
	}
	return "sms:" + key
}

// parseAddressUpdate reads "From: <pickup>" and "To: <dropoff>" lines.
// found reports whether either line was present.
func parseAddressUpdate(body string) (pickup, dropoff string, found bool) {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		switch {
		case strings.HasPrefix(lower, "from:"):
			pickup = strings.TrimSpace(trimmed[len("from:"):])
			found = true
		case strings.HasPrefix(lower, "to:"):
			dropoff = strings.TrimSpace(trimmed[len("to:"):])
			found = true
		}
	}
	return pickup, dropoff, found
}

// IncomingHandler handles an inbound text. An address update is applied to
// the sender's latest booking; anything else is a dialogue turn over SMS.
func (h *SMSHandler) IncomingHandler(c *gin.Context) {
	from := c.PostForm("From")
	body := strings.TrimSpace(c.PostForm("Body"))
	log := getLogger(c).With(zap.String("from", from))
	log.Info("incoming sms", zap.Int("length", len(body)))

	if pickup, dropoff, found := parseAddressUpdate(body); found {
		h.reply(c, h.updateAddresses(c.Request.Context(), log, from, pickup, dropoff))
		return
	}

	d := h.Dialogue.HandleTurn(c.Request.Context(), conversation.Event{
		SessionID: SMSSessionID(from),
		Channel:   models.ChannelSMS,
		From:      from,
		Input:     models.Input{Text: body, Source: models.SourceSMS},
	})
	h.reply(c, d.Text())
}

func (h *SMSHandler) updateAddresses(ctx context.Context, log *zap.Logger, from, pickup, dropoff string) string {
	if pickup == "" || dropoff == "" {
		return notification.AddressFormatSMS(h.Company)
	}

	record, err := h.Bookings.UpdateLatestBookingAddresses(ctx, from, pickup, dropoff)
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		log.Info("address update without a booking")
		return fmt.Sprintf("We couldn't find a booking for this number. Please call us at %s.", h.Company.Phone)
	case err != nil:
		log.Error("failed to update booking addresses", zap.Error(err))
		return fmt.Sprintf("Sorry, we couldn't update your booking right now. Please call us at %s.", h.Company.Phone)
	}

	log.Info("booking addresses updated", zap.String("recordID", record.ID))
	if h.ManagerPhone != "" {
		// Detached so the manager text is not lost when Twilio drops the request.
		if err := h.Sender.SendSMS(context.WithoutCancel(ctx), h.ManagerPhone, notification.ManagerAddressUpdateSMS(*record, h.Company)); err != nil {
			log.Warn("failed to notify manager of address update", zap.Error(err))
		}
	}
	return notification.AddressUpdateSMS(*record, h.Company)
}

func (h *SMSHandler) reply(c *gin.Context, text string) {
	doc, err := RenderMessage(text)
	if err != nil {
		getLogger(c).Error("failed to render sms reply", zap.Error(err))
		doc, _ = RenderMessage("")
	}
	writeTwiML(c, doc)
}
