package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"omtours/services"
	"omtours/views"
)

// RoutePage renders the route viewer. When both places are given the driving route is drawn on
// the map; if it cannot be resolved the failure is only logged and the map opens empty.
func (h *Handler) RoutePage(c *gin.Context) {
	source := strings.TrimSpace(c.Query("source"))
	destination := strings.TrimSpace(c.Query("destination"))

	data := views.RoutePageData{
		Source:      source,
		Destination: destination,
		BrowserKey:  h.opts.BrowserKey,
		Center:      views.DefaultMapCenter,
		Zoom:        views.DefaultMapZoom,
	}

	if source != "" && destination != "" {
		route, err := h.findRoute(c, source, destination)
		if err != nil {
			h.logger.Warn("Error fetching directions",
				zap.String("source", source),
				zap.String("destination", destination),
				zap.Error(err))
		} else {
			data.Route = route.FeatureCollection()
			data.Summary = routeSummary(route)
		}
	}

	c.HTML(http.StatusOK, views.RoutePage, data)
}

// RouteJSON returns the driving route as GeoJSON plus totals.
func (h *Handler) RouteJSON(c *gin.Context) {
	source := strings.TrimSpace(c.Query("source"))
	destination := strings.TrimSpace(c.Query("destination"))
	if source == "" || destination == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "source and destination are required"})
		return
	}

	route, err := h.findRoute(c, source, destination)
	if err != nil {
		h.logger.Warn("Error fetching directions", zap.String("source", source), zap.String("destination", destination), zap.Error(err))

		var statusErr *services.RouteStatusError
		switch {
		case errors.Is(err, services.ErrDirectionsNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Directions are not configured"})
		case errors.As(err, &statusErr) && (statusErr.Status == "ZERO_RESULTS" || statusErr.Status == "NOT_FOUND"):
			c.JSON(http.StatusNotFound, gin.H{"message": "No route found", "status": statusErr.Status})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"message": err.Error()})
		}
		return
	}

	bound := route.Bound()
	c.JSON(http.StatusOK, gin.H{
		"origin":        route.Origin,
		"destination":   route.Destination,
		"start_address": route.StartAddress,
		"end_address":   route.EndAddress,
		"summary":       route.Summary,
		"distance_m":    route.Distance,
		"duration_s":    int(route.Duration.Seconds()),
		"bbox":          []float64{bound.Min.Lon(), bound.Min.Lat(), bound.Max.Lon(), bound.Max.Lat()},
		"geojson":       route.FeatureCollection(),
	})
}

func (h *Handler) findRoute(c *gin.Context, source, destination string) (*services.Route, error) {
	if h.routes == nil {
		return nil, services.ErrDirectionsNotConfigured
	}
	return h.routes.Route(c.Request.Context(), source, destination)
}

func routeSummary(r *services.Route) string {
	via := ""
	if r.Summary != "" {
		via = " via " + r.Summary
	}
	return fmt.Sprintf("%s to %s%s: %.1f km, about %s",
		r.Origin, r.Destination, via, float64(r.Distance)/1000, r.Duration.Round(time.Minute))
}
