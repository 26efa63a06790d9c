package models

// MoveType is the job category; each has its own rate table.
type MoveType string

const (
	MoveLocal         MoveType = "local"
	MoveLongDistance  MoveType = "long_distance"
	MoveJunkRemoval   MoveType = "junk_removal"
	MoveInHomeService MoveType = "in_home_service"
)

// Label is the spoken/persisted form of the move type.
func (m MoveType) Label() string {
	switch m {
	case MoveLocal:
		return "Local"
	case MoveLongDistance:
		return "Long Distance"
	case MoveJunkRemoval:
		return "Junk Removal"
	case MoveInHomeService:
		return "In-Home Service"
	}
	return ""
}

// NeedsDropoff reports whether the job has a destination address.
func (m MoveType) NeedsDropoff() bool {
	return m == MoveLocal || m == MoveLongDistance
}

// PropertyType separates homes from businesses.
type PropertyType string

const (
	PropertyResidential PropertyType = "residential"
	PropertyCommercial  PropertyType = "commercial"
)

// LeadData is everything the dialogue has collected. Values are stored
// normalized; zero values mean "not collected yet".
type LeadData struct {
	Name              string       `json:"name,omitempty"`
	Phone             string       `json:"phone,omitempty"`
	Email             string       `json:"email,omitempty"`
	EmailDeclined     bool         `json:"emailDeclined,omitempty"`
	MoveType          MoveType     `json:"moveType,omitempty"`
	PropertyType      PropertyType `json:"propertyType,omitempty"`
	PickupType        string       `json:"pickupType,omitempty"`
	DropoffType       string       `json:"dropoffType,omitempty"`
	Pickup            *Address     `json:"pickup,omitempty"`
	Dropoff           *Address     `json:"dropoff,omitempty"`
	PickupRooms       int          `json:"pickupRooms,omitempty"`
	DropoffRooms      int          `json:"dropoffRooms,omitempty"`
	Stairs            *int         `json:"stairs,omitempty"`
	MoveDate          string       `json:"moveDate,omitempty"` // YYYY-MM-DD
	MoveTime          string       `json:"moveTime,omitempty"` // "Morning", "3 PM", ...
	Packing           *bool        `json:"packing,omitempty"`
	SpecialItems      string       `json:"specialItems,omitempty"`
	DistanceMiles     float64      `json:"distanceMiles,omitempty"`
	RoundTripMiles    float64      `json:"roundTripMiles,omitempty"`
	ReturningCustomer bool         `json:"returningCustomer,omitempty"`
}

// HasMinimumContact reports whether a partial lead is worth persisting.
func (d LeadData) HasMinimumContact() bool {
	return d.Name != "" && d.Phone != ""
}

func (d LeadData) clone() LeadData {
	out := d
	if d.Pickup != nil {
		p := *d.Pickup
		out.Pickup = &p
	}
	if d.Dropoff != nil {
		p := *d.Dropoff
		out.Dropoff = &p
	}
	if d.Stairs != nil {
		v := *d.Stairs
		out.Stairs = &v
	}
	if d.Packing != nil {
		v := *d.Packing
		out.Packing = &v
	}
	return out
}
