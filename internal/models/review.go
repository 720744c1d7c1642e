package models

import (
	"fmt"
	"time"

	"tabl/pkg/docstore"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID       string    `json:"id"`
	Title    string    `json:"title" validate:"max=200"`
	Body     string    `json:"body" validate:"max=5000"`
	Rating   int       `json:"rating" validate:"rating_value"`
	Reviewer string    `json:"reviewer"`
	PostedOn time.Time `json:"posted_on"`
}

func ReviewsCollection(clubID string) string {
	return docstore.Path(ClubsCollection, clubID, "reviews")
}

// ToDocument leaves postedOn to the server clock.
func (r *Review) ToDocument() map[string]interface{} {
	return map[string]interface{}{
		"title":    r.Title,
		"body":     r.Body,
		"rating":   r.Rating,
		"reviewer": r.Reviewer,
		"postedOn": docstore.ServerTimestamp,
	}
}

func ReviewFromDocument(doc *docstore.Document) *Review {
	return &Review{
		ID:       doc.ID,
		Title:    stringField(doc.Data, "title"),
		Body:     stringField(doc.Data, "body"),
		Rating:   intField(doc.Data, "rating"),
		Reviewer: stringField(doc.Data, "reviewer"),
		PostedOn: timeField(doc.Data, "postedOn"),
	}
}

// AverageRating is the mean rating of a set of reviews, kept in tenths so that the
// rounding happens once.
type AverageRating struct {
	Count  int `json:"count"`
	Tenths int `json:"-"`
}

func (a AverageRating) IsEmpty() bool {
	return a.Count == 0
}

func (a AverageRating) Value() float64 {
	return float64(a.Tenths) / 10
}

// String renders one decimal place, or "N/A" when there is nothing to average.
func (a AverageRating) String() string {
	if a.IsEmpty() {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", a.Value())
}

func (a AverageRating) MarshalJSON() ([]byte, error) {
	if a.IsEmpty() {
		return []byte(fmt.Sprintf(`{"count":0,"value":null,"display":%q}`, a.String())), nil
	}
	return []byte(fmt.Sprintf(`{"count":%d,"value":%s,"display":%q}`, a.Count, a.String(), a.String())), nil
}
