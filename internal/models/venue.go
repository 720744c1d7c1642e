package models

import (
	"strings"

	"tabl/pkg/docstore"
)

const ClubsCollection = "clubs"

type Venue struct {
	ID          string  `json:"id"`
	Name        string  `json:"name" validate:"max=200"`
	Address     string  `json:"address" validate:"max=500"`
	Description string  `json:"description" validate:"max=5000"`
	Link        string  `json:"link" validate:"max=2048"`
	Latitude    float64 `json:"latitude" validate:"latitude"`
	Longitude   float64 `json:"longitude" validate:"longitude"`
}

// IsPersisted reports whether the venue has been written at least once.
func (v *Venue) IsPersisted() bool {
	return v != nil && v.ID != ""
}

// ReservationURL returns the link with an https scheme when it was entered without one.
func (v *Venue) ReservationURL() string {
	link := strings.TrimSpace(v.Link)
	if link == "" {
		return ""
	}
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		return "https://" + link
	}
	return link
}

// The coordinate keys carry the spelling used by documents the iOS client already wrote.
func (v *Venue) ToDocument() map[string]interface{} {
	return map[string]interface{}{
		"name":        v.Name,
		"address":     v.Address,
		"description": v.Description,
		"link":        v.Link,
		"latitue":     v.Latitude,
		"longuitude":  v.Longitude,
	}
}

func VenueFromDocument(doc *docstore.Document) *Venue {
	return &Venue{
		ID:          doc.ID,
		Name:        stringField(doc.Data, "name"),
		Address:     stringField(doc.Data, "address"),
		Description: stringField(doc.Data, "description"),
		Link:        stringField(doc.Data, "link"),
		Latitude:    floatField(doc.Data, "latitue"),
		Longitude:   floatField(doc.Data, "longuitude"),
	}
}
