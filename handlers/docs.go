package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"omtours/views"
)

// Docs documents the itinerary service's query parameters and response shape.
func (h *Handler) Docs(c *gin.Context) {
	data, err := views.NewDocsPageData()
	if err != nil {
		h.logger.Error("failed to build docs page", zap.Error(err))
		c.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}
	c.HTML(http.StatusOK, views.DocsPage, data)
}
