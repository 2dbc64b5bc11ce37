package history

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/neekaru/washgate/internal/app"
)

const maxHistoryLimit = 500

// Handlers contains HTTP handlers for the scan journal
type Handlers struct {
	app     *app.App
	journal *Journal
}

// NewHandlers creates a new history handlers instance
func NewHandlers(app *app.App, journal *Journal) *Handlers {
	return &Handlers{app: app, journal: journal}
}

// RecentHandler handles GET /history?limit=N - newest scans first
func (h *Handlers) RecentHandler(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := h.journal.Recent(c.Request.Context(), limit)
	if err != nil {
		h.app.Logger.Error().Err(err).Msg("Failed to read scan history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read history"})
		return
	}
	if entries == nil {
		entries = []Entry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"total":   len(entries),
	})
}
