package models

// ReminderPayload is the body of a move-day reminder task.
type ReminderPayload struct {
	BookingID string `json:"bookingId"`
	Phone     string `json:"phone"`
	Name      string `json:"name"`
	MoveDate  string `json:"moveDate"`
	MoveTime  string `json:"moveTime"`
}

// FollowUpPayload is the body of a disconnected-call follow-up SMS task.
type FollowUpPayload struct {
	CallSID string `json:"callSid"`
	Phone   string `json:"phone"`
	Name    string `json:"name"`
}
