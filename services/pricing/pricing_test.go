package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moveline/config"
	"moveline/models"
)

func TestEstimate_FreeRadius(t *testing.T) {
	e, err := Estimate(15, 2, 0, models.MoveLocal)
	require.NoError(t, err)
	assert.Equal(t, 0.0, e.MileageSurcharge)
	assert.Equal(t, 0.0, e.BillableMiles)
	assert.Equal(t, 250.0, e.BasePrice)
	assert.Equal(t, 250.0, e.Total)
	assert.Equal(t, 2, e.Movers)

	e, err = Estimate(20, 2, 0, models.MoveLocal)
	require.NoError(t, err)
	assert.Equal(t, 0.0, e.MileageSurcharge)
}

func TestEstimate_MileageOverage(t *testing.T) {
	e, err := Estimate(25, 2, 0, models.MoveLocal)
	require.NoError(t, err)
	assert.Equal(t, 5.0, e.MileageSurcharge)
	assert.Equal(t, 5.0, e.BillableMiles)
	assert.Equal(t, 255.0, e.Total)
}

func TestEstimate_RejectsInvalidInput(t *testing.T) {
	_, err := Estimate(-1, 2, 0, models.MoveLocal)
	assert.ErrorIs(t, err, ErrNegativeInput)

	_, err = Estimate(10, -2, 0, models.MoveLocal)
	assert.ErrorIs(t, err, ErrNegativeInput)

	_, err = Estimate(10, 2, -1, models.MoveLocal)
	assert.ErrorIs(t, err, ErrNegativeInput)

	_, err = Estimate(math.NaN(), 2, 0, models.MoveLocal)
	assert.ErrorIs(t, err, ErrNegativeInput)

	_, err = Estimate(10, 2, 0, models.MoveType("piano"))
	assert.ErrorIs(t, err, ErrUnknownMoveType)
}

func TestEstimate_MoveTypes(t *testing.T) {
	ld, err := Estimate(100, 3, 1, models.MoveLongDistance)
	require.NoError(t, err)
	assert.Equal(t, 2, ld.Tier)
	assert.Equal(t, 180.0, ld.HourlyRate)
	assert.Equal(t, 3, ld.Movers)
	assert.Equal(t, 630.0, ld.BasePrice)
	assert.Equal(t, 80.0, ld.MileageSurcharge)
	assert.Equal(t, 710.0, ld.Total)
	assert.True(t, ld.FreePackingMaterials)
	assert.True(t, ld.RequiresManualQuote)

	junk, err := Estimate(10, 5, 3, models.MoveJunkRemoval)
	require.NoError(t, err)
	assert.Equal(t, 3, junk.Tier)
	assert.Equal(t, 160.0, junk.HourlyRate)
	assert.Equal(t, 2.5, junk.EstimatedHours)
	assert.Equal(t, 480.0, junk.Total)
	assert.False(t, junk.FreePackingMaterials)

	home, err := Estimate(0, 1, 0, models.MoveInHomeService)
	require.NoError(t, err)
	assert.Equal(t, 1, home.Movers)
	assert.Equal(t, 80.0, home.HourlyRate)
	assert.Equal(t, 200.0, home.Total)
}

func TestPolicy_WeeklyLoadAndPacking(t *testing.T) {
	e, err := DefaultPolicy.Estimate(Input{
		DistanceMiles:  5,
		PickupRooms:    2,
		DropoffRooms:   2,
		MoveType:       models.MoveLocal,
		Packing:        true,
		WeeklyBookings: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 125.0, e.HourlyRate)
	assert.Equal(t, 50.0, e.PackingCost)
	assert.Equal(t, 362.5, e.Total)
}

func TestPolicy_TotalIsSumOfParts(t *testing.T) {
	for _, mt := range []models.MoveType{models.MoveLocal, models.MoveLongDistance, models.MoveJunkRemoval, models.MoveInHomeService} {
		for _, d := range []float64{0, 19.9, 20, 33.3, 250} {
			for rooms := 0; rooms <= 6; rooms += 2 {
				for stairs := 0; stairs <= 3; stairs++ {
					e, err := Estimate(d, rooms, stairs, mt)
					require.NoError(t, err)
					assert.InDelta(t, e.BasePrice+e.MileageSurcharge+e.PackingCost, e.Total, 0.011)
					assert.GreaterOrEqual(t, e.MileageSurcharge, 0.0)
				}
			}
		}
	}
}

func TestSelectTier(t *testing.T) {
	assert.Equal(t, Tier1, SelectTier(2, 0))
	assert.Equal(t, Tier2, SelectTier(2, 1))
	assert.Equal(t, Tier2, SelectTier(3, 2))
	assert.Equal(t, Tier3, SelectTier(3, 3))
	assert.Equal(t, Tier3, SelectTier(4, 0))
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(config.Config{MileageFreeRadius: 10, MileageRate: 2, TravelTimeHours: 0, PackingFee: 75})
	e, err := p.Estimate(Input{DistanceMiles: 15, PickupRooms: 2, DropoffRooms: 2, MoveType: models.MoveLocal, Packing: true})
	require.NoError(t, err)
	assert.Equal(t, 10.0, e.MileageSurcharge)
	assert.Equal(t, 200.0, e.BasePrice)
	assert.Equal(t, 285.0, e.Total)
}

func TestFormatMessage(t *testing.T) {
	e, err := Estimate(25, 2, 0, models.MoveLocal)
	require.NoError(t, err)
	msg := FormatMessage(e)
	assert.Contains(t, msg, "2 movers")
	assert.Contains(t, msg, "100.00 dollars per hour")
	assert.Contains(t, msg, "30 minutes of travel time")
	assert.Contains(t, msg, "mileage charge of 5.00 dollars")
	assert.Contains(t, msg, "255.00 dollars")
	assert.NotContains(t, msg, "free")

	ld, err := Estimate(300, 2, 0, models.MoveLongDistance)
	require.NoError(t, err)
	assert.Contains(t, FormatMessage(ld), "Packing materials are free")
}
