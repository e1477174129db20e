package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chatdeck/chatdeck/internal/service"
)

// Handler handles admin API requests
type Handler struct {
	adminService *service.AdminService
}

// NewHandler creates a new admin handler
func NewHandler(adminService *service.AdminService) *Handler {
	return &Handler{adminService: adminService}
}

// RegisterRoutes registers admin routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats", h.GetStats)
	r.GET("/feedback", h.ListFeedback)
}

// GetStats returns gateway statistics
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListFeedback returns the most recent feedback events
func (h *Handler) ListFeedback(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	events, err := h.adminService.ListFeedback(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"feedback": events})
}
