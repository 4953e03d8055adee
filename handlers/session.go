package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"omtours/dashboard"
)

const sessionCookie = "omtours_session"

// loadSession returns the browser's dashboard session, or a fresh one when the cookie is
// missing or the session has expired. Fresh sessions are not stored until saveSession.
func (h *Handler) loadSession(c *gin.Context) (*dashboard.Session, error) {
	id, err := c.Cookie(sessionCookie)
	if err != nil || id == "" {
		return dashboard.NewSession(), nil
	}

	s, err := h.sessions.Get(c.Request.Context(), id)
	if errors.Is(err, dashboard.ErrSessionNotFound) {
		return dashboard.NewSession(), nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// saveSession stores s under ctx and refreshes the session cookie.
func (h *Handler) saveSession(ctx context.Context, c *gin.Context, s *dashboard.Session) error {
	if err := h.sessions.Save(ctx, s); err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, s.ID, int(h.opts.SessionTTL.Seconds()), "/", "", h.opts.CookieSecure, true)
	return nil
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", h.opts.CookieSecure, true)
}
