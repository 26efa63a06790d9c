package models

// Estimate is the derived price of a job. It lives inside the session and is
// recomputed after any pricing-relevant field changes.
type Estimate struct {
	MoveType             MoveType `json:"moveType"`
	DistanceMiles        float64  `json:"distanceMiles"`
	BillableMiles        float64  `json:"billableMiles"`
	Tier                 int      `json:"tier"`
	Movers               int      `json:"movers"`
	HourlyRate           float64  `json:"hourlyRate"`
	EstimatedHours       float64  `json:"estimatedHours"`
	TravelHours          float64  `json:"travelHours"`
	LaborHours           float64  `json:"laborHours"`
	BasePrice            float64  `json:"basePrice"`
	MileageSurcharge     float64  `json:"mileageSurcharge"`
	PackingCost          float64  `json:"packingCost"`
	Total                float64  `json:"total"`
	FreePackingMaterials bool     `json:"freePackingMaterials"`
	RequiresManualQuote  bool     `json:"requiresManualQuote"`
}
