package utils

const (
	// Listing limits
	DefaultListLimit = 50
	MaxListLimit     = 200

	// Photo upload
	MaxPhotoDimension     = 2048
	PhotoJPEGQuality      = 80
	DefaultMaxPhotoPixels = 40_000_000
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInvalidToken     = "invalid token"
	ErrInvalidInput     = "invalid input"
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized"
	ErrForbidden        = "forbidden"
	ErrValidationFailed = "validation failed"
	ErrFileUploadFailed = "file upload failed"
	ErrNoPlacesFound    = "no places found"
)
