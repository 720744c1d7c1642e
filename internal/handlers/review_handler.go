package handlers

import (
	"github.com/gin-gonic/gin"

	"tabl/internal/identity"
	"tabl/internal/models"
	"tabl/internal/repositories/interfaces"
	"tabl/internal/repositories/remote"
	"tabl/internal/utils"
	"tabl/pkg/logger"
)

type ReviewHandler struct {
	clubs   interfaces.VenueRepository
	reviews interfaces.ReviewRepository
	policy  identity.AdminPolicy
	logger  *logger.Logger
}

func NewReviewHandler(clubs interfaces.VenueRepository, reviews interfaces.ReviewRepository, policy identity.AdminPolicy, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		clubs:   clubs,
		reviews: reviews,
		policy:  policy,
		logger:  log,
	}
}

type reviewRequest struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Rating int    `json:"rating" binding:"required"`
}

type reviewListResponse struct {
	Reviews       []*models.Review     `json:"reviews"`
	AverageRating models.AverageRating `json:"average_rating"`
}

// ListReviews returns the reviews together with their average, computed from the same list.
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	venue, ok := loadClub(c, h.clubs, "id")
	if !ok {
		return
	}

	reviews, err := h.reviews.List(c.Request.Context(), venue)
	if err != nil {
		respondError(c, err, "review")
		return
	}

	utils.SuccessResponse(c, "Reviews retrieved successfully", reviewListResponse{
		Reviews:       reviews,
		AverageRating: remote.ComputeAverageRating(reviews),
	})
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	venue, ok := loadClub(c, h.clubs, "id")
	if !ok {
		return
	}

	var request reviewRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	review := &models.Review{Title: request.Title, Body: request.Body, Rating: request.Rating}
	if _, err := h.reviews.Save(c.Request.Context(), venue, review); err != nil {
		respondError(c, err, "review")
		return
	}

	utils.CreatedResponse(c, "Review created successfully", review)
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	venue, review, ok := h.ownedReview(c)
	if !ok {
		return
	}

	var request reviewRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	review.Title = request.Title
	review.Body = request.Body
	review.Rating = request.Rating
	if _, err := h.reviews.Save(c.Request.Context(), venue, review); err != nil {
		respondError(c, err, "review")
		return
	}

	utils.SuccessResponse(c, "Review updated successfully", review)
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	venue, review, ok := h.ownedReview(c)
	if !ok {
		return
	}

	if err := h.reviews.Delete(c.Request.Context(), venue, review); err != nil {
		respondError(c, err, "review")
		return
	}

	utils.NoContentResponse(c)
}

// ownedReview loads :review_id and checks that the caller wrote it or is an admin.
func (h *ReviewHandler) ownedReview(c *gin.Context) (*models.Venue, *models.Review, bool) {
	venue, ok := loadClub(c, h.clubs, "id")
	if !ok {
		return nil, nil, false
	}

	review, err := h.reviews.Get(c.Request.Context(), venue, c.Param("review_id"))
	if err != nil {
		respondError(c, err, "review")
		return nil, nil, false
	}

	principal, ok := identity.FromContext(c.Request.Context())
	if !ok {
		utils.UnauthorizedResponse(c, utils.ErrUnauthorized)
		return nil, nil, false
	}
	if !identity.Owns(principal, review.Reviewer) && !h.policy.IsAdmin(principal) {
		utils.ForbiddenResponse(c)
		return nil, nil, false
	}

	return venue, review, true
}
