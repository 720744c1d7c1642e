package models

// Place is a lookup result a venue can be populated from.
type Place struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

const UnknownPlaceName = "Unknown"

func (p *Place) ApplyTo(v *Venue) {
	v.Name = p.Name
	v.Address = p.Address
	v.Latitude = p.Latitude
	v.Longitude = p.Longitude
}
