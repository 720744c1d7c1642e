package handlers

import (
	"github.com/gin-gonic/gin"

	"tabl/internal/identity"
	"tabl/internal/models"
	"tabl/internal/repositories/interfaces"
	"tabl/internal/utils"
)

type ProfileHandler struct {
	users  interfaces.UserRepository
	policy identity.AdminPolicy
}

func NewProfileHandler(users interfaces.UserRepository, policy identity.AdminPolicy) *ProfileHandler {
	return &ProfileHandler{users: users, policy: policy}
}

// RegisterProfile records the caller after sign-in. The user type comes from the admin policy,
// never from the request.
func (h *ProfileHandler) RegisterProfile(c *gin.Context) {
	principal, ok := identity.FromContext(c.Request.Context())
	if !ok {
		utils.UnauthorizedResponse(c, utils.ErrUnauthorized)
		return
	}

	userType := models.UserTypeRegular
	if h.policy.IsAdmin(principal) {
		userType = models.UserTypeAdmin
	}

	profile, err := h.users.Register(c.Request.Context(), userType)
	if err != nil {
		respondError(c, err, "user")
		return
	}

	utils.SuccessResponse(c, "Profile saved successfully", profile)
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.users.Get(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, err, "user")
		return
	}

	utils.SuccessResponse(c, "Profile retrieved successfully", profile)
}
