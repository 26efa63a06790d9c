// Package pricing computes moving estimates from distance, rooms, stairs and
// move type using a free-radius plus per-mile overage model.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"moveline/config"
	"moveline/models"
)

var (
	ErrNegativeInput   = errors.New("negative or invalid pricing input")
	ErrUnknownMoveType = errors.New("unknown move type")
)

// Tier groups jobs by how hard the pickup is.
type Tier int

const (
	Tier1 Tier = iota + 1 // up to 2 rooms, no stairs
	Tier2                 // up to 3 rooms, up to 2 flights
	Tier3                 // everything larger
)

// rateTable is hourly rate by tier, then by weekly-load column (0-2, 3-4, 5+ jobs).
type rateTable [3][3]float64

type moveRates struct {
	rates rateTable
	crews [3]int
}

var tables = map[models.MoveType]moveRates{
	models.MoveLocal: {
		rates: rateTable{{100, 125, 150}, {125, 150, 175}, {180, 200, 250}},
		crews: [3]int{2, 3, 4},
	},
	models.MoveLongDistance: {
		rates: rateTable{{150, 175, 200}, {180, 210, 240}, {250, 280, 320}},
		crews: [3]int{2, 3, 4},
	},
	models.MoveJunkRemoval: {
		rates: rateTable{{90, 110, 130}, {120, 140, 160}, {160, 180, 210}},
		crews: [3]int{2, 3, 4},
	},
	models.MoveInHomeService: {
		rates: rateTable{{80, 95, 110}, {100, 120, 140}, {140, 160, 180}},
		crews: [3]int{1, 2, 3},
	},
}

// Policy holds the configurable pricing knobs.
type Policy struct {
	FreeRadiusMiles float64
	MileageRate     float64
	TravelHours     float64
	PackingFee      float64
	MinHours        float64
}

// DefaultPolicy: 20 free miles, 1 per mile after, half an hour of travel.
var DefaultPolicy = Policy{
	FreeRadiusMiles: 20,
	MileageRate:     1,
	TravelHours:     0.5,
	PackingFee:      50,
	MinHours:        2,
}

// PolicyFromConfig builds a Policy from the loaded configuration.
func PolicyFromConfig(c config.Config) Policy {
	p := DefaultPolicy
	p.FreeRadiusMiles = c.MileageFreeRadius
	p.MileageRate = c.MileageRate
	p.TravelHours = c.TravelTimeHours
	p.PackingFee = c.PackingFee
	return p
}

// Input is everything the estimate depends on.
type Input struct {
	DistanceMiles  float64
	PickupRooms    int
	DropoffRooms   int
	Stairs         int
	MoveType       models.MoveType
	Packing        bool
	WeeklyBookings int
}

// Estimate prices a job under DefaultPolicy with an empty weekly schedule.
// For moves with a destination the drop-off is assumed to match the pickup.
func Estimate(distanceMiles float64, rooms, stairs int, moveType models.MoveType) (models.Estimate, error) {
	in := Input{
		DistanceMiles: distanceMiles,
		PickupRooms:   rooms,
		Stairs:        stairs,
		MoveType:      moveType,
	}
	if moveType.NeedsDropoff() {
		in.DropoffRooms = rooms
	}
	return DefaultPolicy.Estimate(in)
}

// Estimate prices a job. Negative or NaN numbers and unknown move types are
// rejected; every other input yields an estimate.
func (p Policy) Estimate(in Input) (models.Estimate, error) {
	if invalid(in.DistanceMiles) || in.PickupRooms < 0 || in.DropoffRooms < 0 || in.Stairs < 0 || in.WeeklyBookings < 0 {
		return models.Estimate{}, fmt.Errorf("Estimate: %w", ErrNegativeInput)
	}
	table, ok := tables[in.MoveType]
	if !ok {
		return models.Estimate{}, fmt.Errorf("Estimate: %w: %q", ErrUnknownMoveType, in.MoveType)
	}

	tier := SelectTier(in.PickupRooms, in.Stairs)
	rate := table.rates[tier-1][loadColumn(in.WeeklyBookings)]

	hours := math.Max(p.MinHours, float64(in.PickupRooms+in.DropoffRooms)/2)
	travel := math.Max(0, p.TravelHours)
	labor := hours + travel

	billable := math.Max(0, in.DistanceMiles-p.FreeRadiusMiles)
	mileage := billable * p.MileageRate

	var packing float64
	if in.Packing {
		packing = p.PackingFee
	}
	base := rate * labor

	longDistance := in.MoveType == models.MoveLongDistance
	return models.Estimate{
		MoveType:             in.MoveType,
		DistanceMiles:        round2(in.DistanceMiles),
		BillableMiles:        round2(billable),
		Tier:                 int(tier),
		Movers:               table.crews[tier-1],
		HourlyRate:           rate,
		EstimatedHours:       round2(hours),
		TravelHours:          round2(travel),
		LaborHours:           round2(labor),
		BasePrice:            round2(base),
		MileageSurcharge:     round2(mileage),
		PackingCost:          round2(packing),
		Total:                round2(base + mileage + packing),
		FreePackingMaterials: longDistance,
		RequiresManualQuote:  longDistance,
	}, nil
}

// SelectTier picks the rate tier from pickup rooms and flights of stairs.
func SelectTier(rooms, stairs int) Tier {
	switch {
	case rooms <= 2 && stairs == 0:
		return Tier1
	case rooms <= 3 && stairs <= 2:
		return Tier2
	}
	return Tier3
}

func loadColumn(weekly int) int {
	switch {
	case weekly <= 2:
		return 0
	case weekly <= 4:
		return 1
	}
	return 2
}

func invalid(f float64) bool {
	return f < 0 || math.IsNaN(f) || math.IsInf(f, 0)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
