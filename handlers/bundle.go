// File: handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Twilio voice webhooks
	VoiceInboundHandler  gin.HandlerFunc
	VoiceProcessHandler  gin.HandlerFunc
	VoiceOutboundHandler gin.HandlerFunc
	VoiceStatusHandler   gin.HandlerFunc

	// Twilio messaging webhook
	SMSIncomingHandler gin.HandlerFunc

	// Integration API
	CreateLeadCallHandler gin.HandlerFunc
	GetQuoteHandler       gin.HandlerFunc

	// Admin endpoints
	AdminHandler *AdminHandler
}

// NewHandlerBundle wires the handler structs into a bundle.
func NewHandlerBundle(voice *VoiceHandler, sms *SMSHandler, outbound *OutboundHandler, quote *QuoteHandler, admin *AdminHandler) *HandlerBundle {
	return &HandlerBundle{
		VoiceInboundHandler:   voice.InboundHandler,
		VoiceProcessHandler:   voice.ProcessHandler,
		VoiceOutboundHandler:  voice.OutboundHandler,
		VoiceStatusHandler:    voice.StatusHandler,
		SMSIncomingHandler:    sms.IncomingHandler,
		CreateLeadCallHandler: outbound.CreateLeadCallHandler,
		GetQuoteHandler:       quote.GetQuoteHandler,
		AdminHandler:          admin,
	}
}
