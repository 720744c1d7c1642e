package handlers

import (
	"github.com/gin-gonic/gin"

	"tabl/internal/utils"
)

type HealthHandler struct {
	version string
}

func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version}
}

func (h *HealthHandler) Health(c *gin.Context) {
	utils.SuccessResponse(c, "OK", gin.H{"version": h.version})
}
