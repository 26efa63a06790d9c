package models

// Address is a validated location produced from caller input plus a geocoding lookup.
type Address struct {
	Street    string   `json:"street,omitempty" bson:"street,omitempty"`
	City      string   `json:"city,omitempty" bson:"city,omitempty"`
	State     string   `json:"state,omitempty" bson:"state,omitempty"`
	Zip       string   `json:"zip,omitempty" bson:"zip,omitempty"`
	Formatted string   `json:"formatted" bson:"formatted"`
	Lat       *float64 `json:"lat,omitempty" bson:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty" bson:"lng,omitempty"`
	Raw       string   `json:"raw,omitempty" bson:"raw,omitempty"`
}

// String is the form spoken back and persisted.
func (a *Address) String() string {
	if a == nil {
		return ""
	}
	if a.Formatted != "" {
		return a.Formatted
	}
	return a.Raw
}
