package validators

import "tabl/internal/models"

func ValidateVenue(venue *models.Venue) ValidationErrors {
	return ValidateStruct(venue)
}

// ValidateReview enforces the 1-5 star range on every write.
func ValidateReview(review *models.Review) ValidationErrors {
	return ValidateStruct(review)
}

func ValidatePhoto(photo *models.Photo) ValidationErrors {
	return ValidateStruct(photo)
}
