package pricing

import (
	"fmt"
	"strconv"
	"strings"

	"moveline/models"
)

// FormatMessage renders an estimate the way it is read to the caller.
func FormatMessage(e models.Estimate) string {
	var b strings.Builder
	b.WriteString("Based on the information provided, here's your estimate. ")
	fmt.Fprintf(&b, "We'll need %d %s and a truck. ", e.Movers, plural(e.Movers, "mover", "movers"))
	fmt.Fprintf(&b, "The hourly rate is %s dollars per hour. ", money(e.HourlyRate))
	fmt.Fprintf(&b, "We estimate approximately %s hours for your move", trim(e.EstimatedHours))
	if e.TravelHours > 0 {
		fmt.Fprintf(&b, ", plus %d minutes of travel time", int(e.TravelHours*60+0.5))
	}
	b.WriteString(". ")
	if e.MileageSurcharge > 0 {
		fmt.Fprintf(&b, "The distance is %s miles, with a mileage charge of %s dollars. ", trim(e.DistanceMiles), money(e.MileageSurcharge))
	}
	if e.PackingCost > 0 {
		fmt.Fprintf(&b, "Packing service adds %s dollars. ", money(e.PackingCost))
	}
	fmt.Fprintf(&b, "Your total estimated cost is %s dollars.", money(e.Total))
	if e.FreePackingMaterials {
		b.WriteString(" Packing materials are free for long distance moves.")
	}
	if e.RequiresManualQuote {
		b.WriteString(" Our manager will confirm the final long distance quote with you.")
	}
	return b.String()
}

func money(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func trim(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
