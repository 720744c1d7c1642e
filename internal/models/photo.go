package models

import (
	"time"

	"tabl/pkg/docstore"
)

const PhotoContentType = "image/jpeg"

type Photo struct {
	ID          string    `json:"id"`
	ImageURL    string    `json:"image_url"`
	Description string    `json:"description" validate:"max=1000"`
	Reviewer    string    `json:"reviewer"`
	PostedOn    time.Time `json:"posted_on"`
}

// NewPhoto stamps the posting time from the local clock.
func NewPhoto(description string) *Photo {
	return &Photo{
		Description: description,
		PostedOn:    time.Now().UTC(),
	}
}

func PhotosCollection(clubID string) string {
	return docstore.Path(ClubsCollection, clubID, "photos")
}

// BlobKey is the object path of the photo's image.
func BlobKey(clubID, photoID string) string {
	return clubID + "/" + photoID
}

func (p *Photo) ToDocument() map[string]interface{} {
	return map[string]interface{}{
		"imageURLString": p.ImageURL,
		"description":    p.Description,
		"reviewer":       p.Reviewer,
		"postedOn":       p.PostedOn,
	}
}

func PhotoFromDocument(doc *docstore.Document) *Photo {
	return &Photo{
		ID:          doc.ID,
		ImageURL:    stringField(doc.Data, "imageURLString"),
		Description: stringField(doc.Data, "description"),
		Reviewer:    stringField(doc.Data, "reviewer"),
		PostedOn:    timeField(doc.Data, "postedOn"),
	}
}
