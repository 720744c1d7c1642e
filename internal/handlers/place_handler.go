package handlers

import (
	"github.com/gin-gonic/gin"

	"tabl/internal/services"
	"tabl/internal/utils"
	"tabl/pkg/maps"
)

type PlaceHandler struct {
	places services.PlaceService
}

func NewPlaceHandler(places services.PlaceService) *PlaceHandler {
	return &PlaceHandler{places: places}
}

// SearchPlaces handles ?q= with an optional lat/lng center and radius in meters.
func (h *PlaceHandler) SearchPlaces(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		utils.BadRequestResponse(c, "q is required")
		return
	}

	var near *maps.Location
	lat, hasLat := utils.GetFloatQuery(c, "lat")
	lng, hasLng := utils.GetFloatQuery(c, "lng")
	if hasLat != hasLng {
		utils.BadRequestResponse(c, "lat and lng must be given together")
		return
	}
	if hasLat {
		near = &maps.Location{Latitude: lat, Longitude: lng}
	}
	radius, _ := utils.GetFloatQuery(c, "radius")

	places, err := h.places.Search(c.Request.Context(), query, near, int(radius))
	if err != nil {
		respondError(c, err, "place")
		return
	}

	utils.SuccessResponseWithMeta(c, "Places retrieved successfully", places, &utils.Meta{Count: len(places)})
}

func (h *PlaceHandler) ReverseGeocode(c *gin.Context) {
	lat, hasLat := utils.GetFloatQuery(c, "lat")
	lng, hasLng := utils.GetFloatQuery(c, "lng")
	if !hasLat || !hasLng {
		utils.BadRequestResponse(c, "lat and lng are required")
		return
	}

	place, err := h.places.ReverseGeocode(c.Request.Context(), lat, lng)
	if err != nil {
		respondError(c, err, "place")
		return
	}

	utils.SuccessResponse(c, "Place retrieved successfully", place)
}
