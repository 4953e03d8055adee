package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"omtours/dashboard"
	"omtours/database"
	"omtours/models"
	"omtours/services"
	"omtours/views"
)

// RouteFinder resolves driving directions between two places.
type RouteFinder interface {
	Route(ctx context.Context, origin, destination string) (*services.Route, error)
}

// Archive keeps generated itineraries. A nil Archive disables archiving.
type Archive interface {
	Save(ctx context.Context, req models.TripRequest, resp *models.ItineraryResponse) (string, error)
	Get(ctx context.Context, id string) (*database.ArchivedItinerary, error)
	Recent(ctx context.Context, limit int) ([]database.ArchivedItinerary, error)
	Ping(ctx context.Context) error
}

// SubmitLimiter builds rate limit middleware. reject answers a request that is over its
// allowance; nil means the limiter's own JSON response.
type SubmitLimiter interface {
	Middleware(reject gin.HandlerFunc) gin.HandlerFunc
}

// Options carries the handler settings that come from configuration.
type Options struct {
	BrowserKey   string
	SignOutURL   string
	CookieSecure bool
	SessionTTL   time.Duration
}

type Handler struct {
	generator dashboard.Generator
	routes    RouteFinder
	archive   Archive
	sessions  dashboard.Store
	formatter *views.Formatter
	opts      Options
	logger    *zap.Logger
}

func NewHandler(
	generator dashboard.Generator,
	routes RouteFinder,
	archive Archive,
	sessions dashboard.Store,
	formatter *views.Formatter,
	opts Options,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SignOutURL == "" {
		opts.SignOutURL = "/"
	}
	return &Handler{
		generator: generator,
		routes:    routes,
		archive:   archive,
		sessions:  sessions,
		formatter: formatter,
		opts:      opts,
		logger:    logger,
	}
}

// Register mounts every route on r. limiter, when set, guards the endpoints that call the
// itinerary service.
func (h *Handler) Register(r *gin.Engine, limiter SubmitLimiter) {
	formSubmit := []gin.HandlerFunc{h.SubmitItinerary}
	apiSubmit := []gin.HandlerFunc{h.GenerateItinerary}
	if limiter != nil {
		formSubmit = []gin.HandlerFunc{limiter.Middleware(h.rejectSubmit), h.SubmitItinerary}
		apiSubmit = []gin.HandlerFunc{limiter.Middleware(nil), h.GenerateItinerary}
	}

	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/dashboard") })
	r.POST("/logout", h.Logout)
	r.GET("/route", h.RoutePage)
	r.GET("/docs", h.Docs)

	dash := r.Group("/dashboard")
	{
		dash.GET("", h.Dashboard)
		dash.POST("/itinerary", formSubmit...)
		dash.POST("/reset", h.ResetItinerary)
		dash.GET("/itinerary.pdf", h.DownloadCurrentPDF)
	}

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.POST("/itinerary", apiSubmit...)
		api.GET("/route", h.RouteJSON)
		api.GET("/itineraries", h.ListItineraries)
		api.GET("/itineraries/:id", h.GetItinerary)
		api.GET("/itineraries/:id/pdf", h.DownloadItineraryPDF)
	}
}

// archiveItinerary stores a generated itinerary when an archive is configured. Failures are
// logged and otherwise ignored.
func (h *Handler) archiveItinerary(ctx context.Context, req models.TripRequest, resp *models.ItineraryResponse) string {
	if h.archive == nil {
		return ""
	}
	id, err := h.archive.Save(ctx, req, resp)
	if err != nil {
		h.logger.Warn("failed to archive itinerary", zap.String("destination", req.Destination), zap.Error(err))
		return ""
	}
	h.logger.Info("itinerary archived", zap.String("itinerary_id", id))
	return id
}
