package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"omtours/models"
	"omtours/services"
)

// GenerateItinerary is the JSON form of the trip form submission.
func (h *Handler) GenerateItinerary(c *gin.Context) {
	req := models.NewTripRequest()
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request: " + err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		h.itineraryError(c, err)
		return
	}

	itinerary, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		h.logger.Warn("itinerary generation failed", zap.String("destination", req.Destination), zap.Error(err))
		h.itineraryError(c, err)
		return
	}

	if id := h.archiveItinerary(c.Request.Context(), req, itinerary); id != "" {
		c.Header("X-Itinerary-ID", id)
	}
	c.JSON(http.StatusOK, itinerary)
}

func (h *Handler) itineraryError(c *gin.Context, err error) {
	var validationErr *models.ValidationError
	var apiErr *services.APIError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"message": validationErr.Message, "field": validationErr.Field})
	case errors.As(err, &apiErr):
		c.JSON(apiErr.Status, gin.H{"message": apiErr.Message})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"message": err.Error()})
	}
}
