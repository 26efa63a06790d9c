package models

import "time"

// RecordStatus distinguishes confirmed bookings from partial leads.
type RecordStatus string

const (
	StatusBooking     RecordStatus = "booking"
	StatusPartialLead RecordStatus = "partial-lead"
)

// Record is one persisted booking or lead row. Every collected field is
// flattened to a string; a record is written once and never amended.
type Record struct {
	ID               string       `bson:"_id" json:"id"`
	CreatedAt        time.Time    `bson:"createdAt" json:"createdAt"`
	Status           RecordStatus `bson:"status" json:"status"`
	CallSID          string       `bson:"callSid" json:"callSid"`
	Name             string       `bson:"name" json:"name"`
	Phone            string       `bson:"phone" json:"phone"`
	Email            string       `bson:"email" json:"email"`
	MoveType         string       `bson:"moveType" json:"moveType"`
	PropertyType     string       `bson:"propertyType" json:"propertyType"`
	PickupAddress    string       `bson:"pickupAddress" json:"pickupAddress"`
	PickupType       string       `bson:"pickupType" json:"pickupType"`
	PickupRooms      string       `bson:"pickupRooms" json:"pickupRooms"`
	DropoffAddress   string       `bson:"dropoffAddress" json:"dropoffAddress"`
	DropoffType      string       `bson:"dropoffType" json:"dropoffType"`
	DropoffRooms     string       `bson:"dropoffRooms" json:"dropoffRooms"`
	Stairs           string       `bson:"stairs" json:"stairs"`
	MoveDate         string       `bson:"moveDate" json:"moveDate"`
	MoveTime         string       `bson:"moveTime" json:"moveTime"`
	Packing          string       `bson:"packing" json:"packing"`
	SpecialItems     string       `bson:"specialItems" json:"specialItems"`
	DistanceMiles    string       `bson:"distanceMiles" json:"distanceMiles"`
	Movers           string       `bson:"movers" json:"movers"`
	EstimatedHours   string       `bson:"estimatedHours" json:"estimatedHours"`
	HourlyRate       string       `bson:"hourlyRate" json:"hourlyRate"`
	BasePrice        string       `bson:"basePrice" json:"basePrice"`
	MileageCost      string       `bson:"mileageCost" json:"mileageCost"`
	PackingCost      string       `bson:"packingCost" json:"packingCost"`
	TotalEstimate    string       `bson:"totalEstimate" json:"totalEstimate"`
	Outcome          string       `bson:"outcome" json:"outcome"`
	ConfirmationSent string       `bson:"confirmationSent" json:"confirmationSent"`
}

// Customer is a known caller, keyed by phone.
type Customer struct {
	ID            string    `bson:"_id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	Phone         string    `bson:"phone" json:"phone"`
	Email         string    `bson:"email,omitempty" json:"email,omitempty"`
	LastBookingID string    `bson:"lastBookingId,omitempty" json:"lastBookingId,omitempty"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

// CallLog is one row per finished call.
type CallLog struct {
	ID        string    `bson:"_id" json:"id"`
	CallSID   string    `bson:"callSid" json:"callSid"`
	Phone     string    `bson:"phone" json:"phone"`
	Direction string    `bson:"direction" json:"direction"`
	Status    string    `bson:"status" json:"status"`
	LastStep  string    `bson:"lastStep" json:"lastStep"`
	Outcome   string    `bson:"outcome" json:"outcome"`
	RecordID  string    `bson:"recordId,omitempty" json:"recordId,omitempty"`
	StartedAt time.Time `bson:"startedAt" json:"startedAt"`
	EndedAt   time.Time `bson:"endedAt" json:"endedAt"`
}
