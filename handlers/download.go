package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"omtours/database"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ListItineraries returns the most recently archived itineraries.
func (h *Handler) ListItineraries(c *gin.Context) {
	if !h.archiveEnabled(c) {
		return
	}

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	list, err := h.archive.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list itineraries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list itineraries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"itineraries": list})
}

func (h *Handler) GetItinerary(c *gin.Context) {
	if !h.archiveEnabled(c) {
		return
	}
	itinerary, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, itinerary)
}

func (h *Handler) DownloadItineraryPDF(c *gin.Context) {
	if !h.archiveEnabled(c) {
		return
	}
	itinerary, ok := h.lookup(c)
	if !ok {
		return
	}
	h.writePDF(c, itinerary.Response)
}

func (h *Handler) lookup(c *gin.Context) (*database.ArchivedItinerary, bool) {
	id := c.Param("id")
	itinerary, err := h.archive.Get(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Itinerary not found"})
		return nil, false
	}
	if err != nil {
		h.logger.Error("failed to load itinerary", zap.String("itinerary_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load itinerary"})
		return nil, false
	}
	return itinerary, true
}

func (h *Handler) archiveEnabled(c *gin.Context) bool {
	if h.archive == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Itinerary archive is not configured"})
		return false
	}
	return true
}
