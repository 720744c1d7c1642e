package handlers

import (
	"github.com/gin-gonic/gin"

	"tabl/internal/models"
	"tabl/internal/repositories/interfaces"
	"tabl/internal/utils"
	"tabl/pkg/logger"
)

type ClubHandler struct {
	clubs  interfaces.VenueRepository
	logger *logger.Logger
}

func NewClubHandler(clubs interfaces.VenueRepository, log *logger.Logger) *ClubHandler {
	return &ClubHandler{
		clubs:  clubs,
		logger: log,
	}
}

type clubRequest struct {
	Name        string  `json:"name" binding:"required"`
	Address     string  `json:"address"`
	Description string  `json:"description"`
	Link        string  `json:"link"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

func (r *clubRequest) venue(id string) *models.Venue {
	return &models.Venue{
		ID:          id,
		Name:        r.Name,
		Address:     r.Address,
		Description: r.Description,
		Link:        r.Link,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
	}
}

type clubResponse struct {
	*models.Venue
	ReservationURL string `json:"reservation_url,omitempty"`
}

func newClubResponse(v *models.Venue) clubResponse {
	return clubResponse{Venue: v, ReservationURL: v.ReservationURL()}
}

func (h *ClubHandler) ListClubs(c *gin.Context) {
	limit := utils.GetLimit(c, utils.DefaultListLimit, utils.MaxListLimit)

	venues, err := h.clubs.List(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithContext(c.Request.Context()).WithError(err).Error("Failed to list clubs")
		respondError(c, err, "club")
		return
	}

	clubs := make([]clubResponse, len(venues))
	for i, v := range venues {
		clubs[i] = newClubResponse(v)
	}

	utils.SuccessResponseWithMeta(c, "Clubs retrieved successfully", clubs, &utils.Meta{Count: len(clubs), Limit: limit})
}

func (h *ClubHandler) GetClub(c *gin.Context) {
	venue, ok := loadClub(c, h.clubs, "id")
	if !ok {
		return
	}

	utils.SuccessResponse(c, "Club retrieved successfully", newClubResponse(venue))
}

func (h *ClubHandler) CreateClub(c *gin.Context) {
	var request clubRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	venue := request.venue("")
	if _, err := h.clubs.Save(c.Request.Context(), venue); err != nil {
		respondError(c, err, "club")
		return
	}

	utils.CreatedResponse(c, "Club created successfully", newClubResponse(venue))
}

// UpdateClub replaces every field of an existing club.
func (h *ClubHandler) UpdateClub(c *gin.Context) {
	existing, ok := loadClub(c, h.clubs, "id")
	if !ok {
		return
	}

	var request clubRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	venue := request.venue(existing.ID)
	if _, err := h.clubs.Save(c.Request.Context(), venue); err != nil {
		respondError(c, err, "club")
		return
	}

	utils.SuccessResponse(c, "Club updated successfully", newClubResponse(venue))
}

func (h *ClubHandler) DeleteClub(c *gin.Context) {
	if err := h.clubs.Delete(c.Request.Context(), &models.Venue{ID: c.Param("id")}); err != nil {
		respondError(c, err, "club")
		return
	}

	utils.NoContentResponse(c)
}

// loadClub fetches the club named by the param or writes the error response.
func loadClub(c *gin.Context, clubs interfaces.VenueRepository, param string) (*models.Venue, bool) {
	venue, err := clubs.Get(c.Request.Context(), c.Param(param))
	if err != nil {
		respondError(c, err, "club")
		return nil, false
	}
	return venue, true
}
