package routes

import (
	"github.com/gin-gonic/gin"

	"proposal-reviewer/api/handlers"
	"proposal-reviewer/api/middleware"
)

// SetupRoutes registers all HTTP endpoints.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers) {
	r.Use(middleware.CORS())

	r.GET("/health", h.Proposal.Health)
	r.POST("/check_proposal", h.Proposal.CheckProposals)
	r.GET("/pending-proposals", h.Proposal.PendingProposals)
}
