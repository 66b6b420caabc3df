package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the endpoints on router. Analyze and feedback are
// served both at the root and under /api/v1. A non-nil metrics handler is
// mounted at /metrics.
func RegisterRoutes(router *gin.Engine, h *Handler, metrics http.Handler) {
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	router.POST("/analyze", h.Analyze)
	router.POST("/feedback", h.Feedback)

	v1 := router.Group("/api/v1")
	v1.POST("/analyze", h.Analyze)
	v1.POST("/feedback", h.Feedback)

	sources := v1.Group("/sources")
	sources.GET("", h.ListSources)
	sources.GET("/:domain", h.GetSource)
}
