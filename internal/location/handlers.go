package location

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neekaru/washgate/internal/app"
	"github.com/neekaru/washgate/internal/events"
)

// Handlers contains HTTP handlers for location selection
type Handlers struct {
	app   *app.App
	store *Store
}

// NewHandlers creates a new location handlers instance
func NewHandlers(app *app.App, store *Store) *Handlers {
	return &Handlers{app: app, store: store}
}

// ListHandler handles GET /locations - returns the cached locations
func (h *Handlers) ListHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.response())
}

// RefreshHandler handles POST /locations/refresh - reloads from the backend
func (h *Handlers) RefreshHandler(c *gin.Context) {
	if _, err := h.store.Refresh(c.Request.Context()); err != nil {
		h.app.Logger.Warn().Err(err).Msg("Location refresh failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to load locations",
			"details": err.Error(),
		})
		return
	}
	h.publish()
	c.JSON(http.StatusOK, h.response())
}

// SelectHandler handles POST /locations/select - binds the scanner to a location
func (h *Handlers) SelectHandler(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. Required: {\"location_id\": \"id\"}"})
		return
	}

	if err := h.store.Select(req.LocationID); err != nil {
		if errors.Is(err, ErrUnknownLocation) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown location", "location_id": req.LocationID})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.app.Logger.Info().Str("location", req.LocationID).Msg("Location selected")
	h.publish()
	c.JSON(http.StatusOK, h.response())
}

func (h *Handlers) response() LocationsResponse {
	locs := h.store.List()
	return LocationsResponse{
		Locations: locs,
		Selected:  h.store.SelectedID(),
		Total:     len(locs),
	}
}

func (h *Handlers) publish() {
	h.app.Bus.Publish(events.New(events.EventTypeLocation, h.response()))
}
