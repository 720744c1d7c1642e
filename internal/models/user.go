package models

import (
	"time"

	"tabl/pkg/docstore"
)

const (
	UsersCollection    = "users"
	FavoriteClubsField = "favoriteClubs"
)

type UserType string

const (
	UserTypeAdmin   UserType = "admin"
	UserTypeRegular UserType = "regular"
)

type UserProfile struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	UserType      UserType  `json:"user_type"`
	CreatedAt     time.Time `json:"created_at"`
	FavoriteClubs []string  `json:"favorite_clubs"`
}

func (u *UserProfile) IsAdmin() bool {
	return u.UserType == UserTypeAdmin
}

// ToDocument omits favorites; they are only written through FavoritesDocument.
func (u *UserProfile) ToDocument() map[string]interface{} {
	return map[string]interface{}{
		"email":     u.Email,
		"userType":  string(u.UserType),
		"createdAt": docstore.ServerTimestamp,
	}
}

func FavoritesDocument(clubIDs []string) map[string]interface{} {
	ids := make([]interface{}, len(clubIDs))
	for i, id := range clubIDs {
		ids[i] = id
	}
	return map[string]interface{}{FavoriteClubsField: ids}
}

// FavoritesFromDocument returns nil for a missing document or field.
func FavoritesFromDocument(doc *docstore.Document) []string {
	if doc == nil {
		return nil
	}
	return stringSliceField(doc.Data, FavoriteClubsField)
}

func UserProfileFromDocument(doc *docstore.Document) *UserProfile {
	return &UserProfile{
		ID:            doc.ID,
		Email:         stringField(doc.Data, "email"),
		UserType:      UserType(stringField(doc.Data, "userType")),
		CreatedAt:     timeField(doc.Data, "createdAt"),
		FavoriteClubs: stringSliceField(doc.Data, FavoriteClubsField),
	}
}
