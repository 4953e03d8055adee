package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"omtours/dashboard"
	"omtours/models"
	"omtours/services"
	"omtours/views"
)

const (
	settleTimeout   = 5 * time.Second
	tooManyRequests = "Too many requests. Please wait a minute and try again."
)

// Dashboard shows the trip form, or the itinerary once one has been generated.
func (h *Handler) Dashboard(c *gin.Context) {
	s, err := h.loadSession(c)
	if err != nil {
		h.sessionFailure(c, err)
		return
	}

	if s.View() == dashboard.ViewSubmitted {
		c.HTML(http.StatusOK, views.ItineraryPage, views.ItineraryPageData{
			Itinerary: views.NewItineraryView(s.Itinerary, h.formatter),
		})
		return
	}

	c.HTML(http.StatusOK, views.FormPage, views.FormPageData{
		Request: s.Request,
		Error:   s.Error,
		Loading: s.Loading,
		Modes:   models.TravelModes,
	})
}

// SubmitItinerary takes the posted form, asks the itinerary service for a plan and redirects
// back to the dashboard, which shows either the plan or the error.
func (h *Handler) SubmitItinerary(c *gin.Context) {
	ctx := c.Request.Context()
	s, err := h.loadSession(c)
	if err != nil {
		h.sessionFailure(c, err)
		return
	}

	if s.Loading {
		h.logger.Info("ignoring submit while a request is in flight", zap.String("session_id", s.ID))
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	var req models.TripRequest
	if err := c.ShouldBind(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid form submission")
		return
	}
	s.Edit(req)

	// The loading flag is saved before the call so a second submit from this browser sees it.
	err = s.Submit(ctx, h.generator, func(loading *dashboard.Session) error {
		return h.saveSession(ctx, c, loading)
	})

	var validationErr *models.ValidationError
	switch {
	case errors.Is(err, dashboard.ErrNotSaved):
		h.sessionFailure(c, err)
		return
	case errors.As(err, &validationErr):
		h.logger.Debug("trip form rejected", zap.String("session_id", s.ID), zap.String("field", validationErr.Field))
	case err != nil:
		h.logger.Warn("itinerary generation failed", zap.String("session_id", s.ID), zap.Error(err))
	}

	// Stored even when the browser has gone away: the loading flag must not outlive the call.
	settleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer cancel()

	if err == nil {
		h.archiveItinerary(settleCtx, s.Request, s.Itinerary)
	}
	if err := h.saveSession(settleCtx, c, s); err != nil {
		h.sessionFailure(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// rejectSubmit is the rate limit response for the form: the message is shown on the dashboard.
func (h *Handler) rejectSubmit(c *gin.Context) {
	s, err := h.loadSession(c)
	if err != nil {
		h.sessionFailure(c, err)
		return
	}
	s.Error = tooManyRequests
	if err := h.saveSession(c.Request.Context(), c, s); err != nil {
		h.sessionFailure(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// ResetItinerary discards the current itinerary and returns to the form.
func (h *Handler) ResetItinerary(c *gin.Context) {
	s, err := h.loadSession(c)
	if err != nil {
		h.sessionFailure(c, err)
		return
	}
	s.Reset()
	if err := h.saveSession(c.Request.Context(), c, s); err != nil {
		h.sessionFailure(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// DownloadCurrentPDF renders the itinerary on screen as a PDF.
func (h *Handler) DownloadCurrentPDF(c *gin.Context) {
	s, err := h.loadSession(c)
	if err != nil {
		h.sessionFailure(c, err)
		return
	}
	if s.View() != dashboard.ViewSubmitted {
		c.String(http.StatusNotFound, "No itinerary to download")
		return
	}
	h.writePDF(c, s.Itinerary)
}

// Logout drops the dashboard session and hands over to the sign-out page.
func (h *Handler) Logout(c *gin.Context) {
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		if err := h.sessions.Delete(c.Request.Context(), id); err != nil {
			h.logger.Warn("failed to delete session", zap.String("session_id", id), zap.Error(err))
		}
	}
	h.clearSessionCookie(c)
	c.Redirect(http.StatusSeeOther, h.opts.SignOutURL)
}

func (h *Handler) writePDF(c *gin.Context, itinerary *models.ItineraryResponse) {
	pdfBytes, err := services.GenerateItineraryPDF(itinerary, h.formatter)
	if err != nil {
		h.logger.Error("PDF generation failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to generate PDF")
		return
	}
	c.Header("Content-Disposition", "attachment; filename=omtours-itinerary.pdf")
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func (h *Handler) sessionFailure(c *gin.Context, err error) {
	h.logger.Error("session store failure", zap.Error(err))
	c.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
}
