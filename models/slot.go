package models

// Slot is a bookable start time offered to the caller.
type Slot struct {
	Date   string `json:"date"`   // YYYY-MM-DD
	Hour   int    `json:"hour"`   // 24h start hour
	Label  string `json:"label"`  // spoken time, e.g. "1 PM"
	Window string `json:"window"` // arrival window, e.g. "1 to 3 PM"
}
