package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	sessionStatus := "ok"
	if err := h.sessions.Ping(ctx); err != nil {
		sessionStatus = "error: " + err.Error()
	}

	archiveStatus := "disabled"
	if h.archive != nil {
		archiveStatus = "ok"
		if err := h.archive.Ping(ctx); err != nil {
			archiveStatus = "error: " + err.Error()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "Om Tours",
		"sessions": sessionStatus,
		"database": archiveStatus,
		"locale":   h.formatter.Locale(),
	})
}
