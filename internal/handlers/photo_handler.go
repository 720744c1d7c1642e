package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"tabl/internal/models"
	"tabl/internal/repositories/interfaces"
	"tabl/internal/utils"
	"tabl/pkg/logger"
)

type PhotoHandler struct {
	clubs          interfaces.VenueRepository
	photos         interfaces.PhotoRepository
	maxUploadBytes int64
	maxPixels      int64
	logger         *logger.Logger
}

// NewPhotoHandler caps uploads at maxUploadBytes on the wire and maxPixels once decoded.
func NewPhotoHandler(clubs interfaces.VenueRepository, photos interfaces.PhotoRepository, maxUploadBytes, maxPixels int64, log *logger.Logger) *PhotoHandler {
	return &PhotoHandler{
		clubs:          clubs,
		photos:         photos,
		maxUploadBytes: maxUploadBytes,
		maxPixels:      maxPixels,
		logger:         log,
	}
}

func (h *PhotoHandler) ListPhotos(c *gin.Context) {
	venue, ok := loadClub(c, h.clubs, "id")
	if !ok {
		return
	}

	limit := utils.GetLimit(c, utils.DefaultListLimit, utils.MaxListLimit)
	photos, err := h.photos.List(c.Request.Context(), venue, limit)
	if err != nil {
		respondError(c, err, "photo")
		return
	}

	utils.SuccessResponseWithMeta(c, "Photos retrieved successfully", photos, &utils.Meta{Count: len(photos), Limit: limit})
}

// UploadPhoto takes a multipart form with an "image" file and an optional "description". The
// image is stored as a JPEG no larger than MaxPhotoDimension on either side.
func (h *PhotoHandler) UploadPhoto(c *gin.Context) {
	venue, ok := loadClub(c, h.clubs, "id")
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "image exceeds the upload limit")
			return
		}
		utils.BadRequestResponse(c, "image file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.BadRequestResponse(c, "image file could not be read")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		utils.BadRequestResponse(c, "image file could not be read")
		return
	}

	data, err := utils.NormalizePhoto(raw, utils.MaxPhotoDimension, h.maxPixels, utils.PhotoJPEGQuality)
	if errors.Is(err, utils.ErrImageTooLarge) {
		utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "IMAGE_TOO_LARGE", "image dimensions exceed the upload limit")
		return
	}
	if err != nil {
		utils.BadRequestResponse(c, "image must be a JPEG or PNG")
		return
	}

	photo := models.NewPhoto(c.PostForm("description"))
	if err := h.photos.Upload(c.Request.Context(), venue, photo, data); err != nil {
		respondError(c, err, "photo")
		return
	}

	h.logger.WithContext(c.Request.Context()).WithClubID(venue.ID).WithField("photo_id", photo.ID).Info("Photo added to club")
	utils.CreatedResponse(c, "Photo uploaded successfully", photo)
}
