package health

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neekaru/washgate/internal/app"
	"github.com/neekaru/washgate/internal/scanner"
)

// StatusReporter is satisfied by the scanner controller.
type StatusReporter interface {
	Status() scanner.Status
}

// Handlers contains HTTP handlers for health checks
type Handlers struct {
	app      *app.App
	scanner  StatusReporter
	displays func() int
}

// NewHandlers creates a new health handlers instance. displays may be nil.
func NewHandlers(app *app.App, scanner StatusReporter, displays func() int) *Handlers {
	return &Handlers{app: app, scanner: scanner, displays: displays}
}

// RootHandler handles the root endpoint for Docker health checks
func (h *Handlers) RootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"uptime":  time.Since(h.app.StartTime).String(),
		"scanner": h.scanner.Status().State,
		"version": app.Version,
	})
}

// HealthCheckHandler handles the health check endpoint
func (h *Handlers) HealthCheckHandler(c *gin.Context) {
	st := h.scanner.Status()

	displays := 0
	if h.displays != nil {
		displays = h.displays()
	}

	h.app.Logger.Debug().Str("remote", c.ClientIP()).Msg("Health check requested")

	// Always 200: a stopped camera is a state, not an outage.
	resp := gin.H{
		"status":         "ok",
		"uptime":         time.Since(h.app.StartTime).String(),
		"scanner":        st.State,
		"camera_id":      st.CameraID,
		"cameras":        len(st.Cameras),
		"location_id":    st.LocationID,
		"result_visible": st.ResultVisible,
		"displays":       displays,
		"go_version":     runtime.Version(),
		"version":        app.Version,
		"timestamp":      time.Now().Format(time.RFC3339),
	}
	if st.Error != nil {
		resp["last_error"] = st.Error
	}
	c.JSON(http.StatusOK, resp)
}
