package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tabl/internal/identity"
	"tabl/internal/repositories/interfaces"
	"tabl/internal/services"
	"tabl/internal/utils"
	"tabl/internal/validators"
)

// respondError maps repository and service errors onto the API error envelope.
func respondError(c *gin.Context, err error, resource string) {
	var verrs validators.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		utils.ValidationErrorResponse(c, verrs.Details())
	case errors.Is(err, identity.ErrNotAuthenticated):
		utils.UnauthorizedResponse(c, utils.ErrUnauthorized)
	case errors.Is(err, interfaces.ErrNotFound):
		utils.NotFoundResponse(c, resource)
	case errors.Is(err, interfaces.ErrNotPersisted):
		utils.BadRequestResponse(c, resource+" id is required")
	case errors.Is(err, services.ErrNoPlacesFound):
		utils.ErrorResponse(c, http.StatusNotFound, "NO_PLACES_FOUND", utils.ErrNoPlacesFound)
	case errors.Is(err, interfaces.ErrBlobUpload):
		utils.BadGatewayResponse(c, "UPLOAD_FAILED", utils.ErrFileUploadFailed)
	case errors.Is(err, interfaces.ErrURLResolution):
		utils.BadGatewayResponse(c, "URL_RESOLUTION_FAILED", "photo stored but its URL could not be resolved")
	case errors.Is(err, interfaces.ErrWriteFailed):
		utils.BadGatewayResponse(c, "WRITE_FAILED", "failed to save "+resource)
	default:
		utils.InternalServerErrorResponse(c)
	}
}
