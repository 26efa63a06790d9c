package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"moveline/config"
	"moveline/models"
)

// Company is the sender identity printed in every message.
type Company struct {
	Name  string
	Phone string
}

func CompanyFromConfig(cfg config.Config) Company {
	return Company{Name: cfg.CompanyName, Phone: cfg.CompanyPhone}
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}

func dollars(s string) string {
	if s == "" {
		return "TBD"
	}
	return "$" + s
}

var bookingEmailHTML = template.Must(template.New("booking").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <h2>New booking: {{.Record.Name}}</h2>
  <table cellpadding="4">
    <tr><td><strong>Booking ID</strong></td><td>{{.Record.ID}}</td></tr>
    <tr><td><strong>Phone</strong></td><td>{{.Record.Phone}}</td></tr>
    <tr><td><strong>Email</strong></td><td>{{.Record.Email}}</td></tr>
    <tr><td><strong>Move type</strong></td><td>{{.Record.MoveType}}</td></tr>
    <tr><td><strong>Move date</strong></td><td>{{.Record.MoveDate}} {{.Record.MoveTime}}</td></tr>
    <tr><td><strong>Pickup</strong></td><td>{{.Record.PickupAddress}} ({{.Record.PickupRooms}} rooms)</td></tr>
    <tr><td><strong>Dropoff</strong></td><td>{{.Record.DropoffAddress}}</td></tr>
    <tr><td><strong>Stairs</strong></td><td>{{.Record.Stairs}}</td></tr>
    <tr><td><strong>Packing</strong></td><td>{{.Record.Packing}}</td></tr>
    <tr><td><strong>Special items</strong></td><td>{{.SpecialItems}}</td></tr>
    <tr><td><strong>Distance</strong></td><td>{{.Record.DistanceMiles}} miles</td></tr>
    <tr><td><strong>Crew</strong></td><td>{{.Record.Movers}} movers, {{.Record.EstimatedHours}} hours at {{.Rate}}/hr</td></tr>
    <tr><td><strong>Total estimate</strong></td><td>{{.Total}}</td></tr>
  </table>
  <p>{{.Company.Name}} | {{.Company.Phone}}</p>
</body>
</html>
`))

// BookingEmail renders the manager notification for a confirmed booking.
func BookingEmail(r models.Record, c Company) (subject, text, html string, err error) {
	subject = fmt.Sprintf("New Booking: %s - %s", r.Name, r.MoveDate)

	text = fmt.Sprintf(`%s - New Booking

Booking ID: %s
Customer: %s
Phone: %s
Email: %s
Move Type: %s
Move Date: %s %s
Pickup: %s (%s rooms)
Dropoff: %s
Stairs: %s
Packing: %s
Special Items: %s
Distance: %s miles
Crew: %s movers, %s hours at %s/hr
Total Estimate: %s`,
		c.Name, r.ID, r.Name, r.Phone, orNone(r.Email), r.MoveType, r.MoveDate, r.MoveTime,
		r.PickupAddress, r.PickupRooms, orNone(r.DropoffAddress), r.Stairs, r.Packing,
		orNone(r.SpecialItems), r.DistanceMiles, r.Movers, r.EstimatedHours, dollars(r.HourlyRate),
		dollars(r.TotalEstimate))

	var buf bytes.Buffer
	err = bookingEmailHTML.Execute(&buf, map[string]interface{}{
		"Record":       r,
		"Company":      c,
		"SpecialItems": orNone(r.SpecialItems),
		"Rate":         dollars(r.HourlyRate),
		"Total":        dollars(r.TotalEstimate),
	})
	if err != nil {
		return "", "", "", fmt.Errorf("BookingEmail: %w", err)
	}
	return subject, text, buf.String(), nil
}

// BookingConfirmationSMS is sent to the caller once the booking is saved.
func BookingConfirmationSMS(r models.Record, c Company) string {
	return fmt.Sprintf(`%s - Booking Confirmed!

Date: %s
Time: %s
From: %s
To: %s
Estimate: %s

We'll call you 1 day before to confirm.
Questions? Call %s`,
		c.Name, r.MoveDate, r.MoveTime, r.PickupAddress, orNone(r.DropoffAddress), dollars(r.TotalEstimate), c.Phone)
}

// ReminderSMS is the move-day-eve reminder.
func ReminderSMS(p models.ReminderPayload, c Company) string {
	return fmt.Sprintf(`%s - Reminder

Hi %s, your move is scheduled for TOMORROW:
Date: %s
Time: %s

Our crew will arrive on time with all equipment.
Questions? Call %s`,
		c.Name, p.Name, p.MoveDate, p.MoveTime, c.Phone)
}

// FollowUpSMS goes to callers who hung up before booking.
func FollowUpSMS(p models.FollowUpPayload, c Company) string {
	name := p.Name
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(`Hi %s,

Thank you for contacting %s. We'd love to help with your move!

Ready to schedule? Call us at %s.`,
		name, c.Name, c.Phone)
}

// QuoteRequestSMS asks the manager for a custom long-distance price.
func QuoteRequestSMS(d models.LeadData, miles float64) string {
	stairs := "unknown"
	if d.Stairs != nil {
		stairs = fmt.Sprint(*d.Stairs)
	}
	return fmt.Sprintf(`LONG DISTANCE MOVE QUOTE REQUEST

Customer: %s
Phone: %s
Email: %s

FROM: %s
TO: %s

Total Distance: %.1f miles
Rooms (Pickup): %d
Rooms (Dropoff): %d
Stairs: %s
Move Date: %s

Customer is waiting for callback with quote.`,
		d.Name, d.Phone, orNone(d.Email), d.Pickup.String(), d.Dropoff.String(),
		miles, d.PickupRooms, d.DropoffRooms, stairs, orNone(d.MoveDate))
}

// QuoteRequestCustomerSMS tells a long-distance caller a custom quote is on
// its way.
func QuoteRequestCustomerSMS(d models.LeadData, c Company) string {
	name := d.Name
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(`Hi %s,

Thank you for choosing %s for your long distance move from %s to %s.

Our manager will call you within 24 hours with a custom quote. Packing materials are free for long distance moves.

Questions? Call %s`,
		name, c.Name, d.Pickup.String(), d.Dropoff.String(), c.Phone)
}

// AddressUpdateSMS confirms an address change made by text message.
func AddressUpdateSMS(r models.Record, c Company) string {
	return fmt.Sprintf(`%s - Booking Updated

Booking: %s
From: %s
To: %s

Questions? Call %s`,
		c.Name, r.ID, orNone(r.PickupAddress), orNone(r.DropoffAddress), c.Phone)
}

// ManagerAddressUpdateSMS gives the manager the final details of a booking
// whose addresses were texted in after the call.
func ManagerAddressUpdateSMS(r models.Record, c Company) string {
	return fmt.Sprintf(`%s - Final Booking Info

Booking: %s
Name: %s
Phone: %s
Date: %s  Time: %s
Pickup: %s
Drop-off: %s
Estimate: %s  Move: %s`,
		c.Name, r.ID, r.Name, r.Phone, r.MoveDate, r.MoveTime,
		orNone(r.PickupAddress), orNone(r.DropoffAddress), dollars(r.TotalEstimate), r.MoveType)
}

// AddressFormatSMS explains the address update format when a text cannot be
// matched to anything else.
func AddressFormatSMS(c Company) string {
	return fmt.Sprintf(`Thanks for texting %s! To update your booking, reply with your addresses in this format:
From: <pickup address>
To: <drop-off address>

Or call us at %s.`, c.Name, c.Phone)
}
