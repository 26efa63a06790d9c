package models

// OutboundLead is a web-form lead the assistant should call back.
type OutboundLead struct {
	Phone string `json:"phone" binding:"required"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OutboundCallResponse is returned once the call has been placed.
type OutboundCallResponse struct {
	CallSID string `json:"call_sid"`
	Status  string `json:"status"`
}
