package calendar

import (
	"fmt"
	"strings"
	"time"

	"moveline/models"
)

var ordinalWords = []string{"first", "second", "third"}

// FormatAlternatives lists offered slots and asks the caller to pick one by
// position. An empty list yields the no-availability message.
func FormatAlternatives(alts []models.Slot, officePhone string) string {
	if len(alts) == 0 {
		return fmt.Sprintf("Unfortunately, we don't have availability in the next week. Please call our office at %s for scheduling.", officePhone)
	}
	parts := make([]string, 0, len(alts))
	for i, a := range alts {
		if i >= len(ordinalWords) {
			break
		}
		day := a.Date
		if d, err := time.Parse("2006-01-02", a.Date); err == nil {
			day = d.Format("Monday, January 2")
		}
		parts = append(parts, fmt.Sprintf("%s, %s at %s with an arrival window of %s", ordinalWords[i], day, a.Label, a.Window))
	}
	choices := strings.Join(ordinalWords[:len(parts)], ", or ")
	return "We do have availability at these times: " + strings.Join(parts, "; ") + ". Which works best? Say " + choices + "."
}
