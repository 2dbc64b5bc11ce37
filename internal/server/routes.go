package server

import (
	"github.com/neekaru/washgate/internal/health"
	"github.com/neekaru/washgate/internal/history"
	"github.com/neekaru/washgate/internal/live"
	"github.com/neekaru/washgate/internal/location"
	"github.com/neekaru/washgate/internal/pass"
	"github.com/neekaru/washgate/internal/scanner"
)

// Components are the services exposed over HTTP. Journal and Hub may be nil.
type Components struct {
	Scanner   *scanner.Controller
	Locations *location.Store
	Journal   *history.Journal
	Hub       *live.Hub
}

// SetupRoutes configures all the routes for the application
func (s *Server) SetupRoutes(comp Components) {
	// Register health check handlers
	var displays func() int
	if comp.Hub != nil {
		displays = comp.Hub.Count
	}
	healthHandlers := health.NewHandlers(s.app, comp.Scanner, displays)
	s.router.GET("/", healthHandlers.RootHandler)
	s.router.GET("/health", healthHandlers.HealthCheckHandler)

	// Register scanner handlers
	scannerHandlers := scanner.NewHandlers(s.app, comp.Scanner)
	s.router.GET("/scanner/status", scannerHandlers.StatusHandler)
	s.router.POST("/scanner/start", scannerHandlers.StartHandler)
	s.router.POST("/scanner/stop", scannerHandlers.StopHandler)
	s.router.POST("/scanner/flash", scannerHandlers.FlashHandler)
	s.router.POST("/scanner/cycle-camera", scannerHandlers.CycleCameraHandler)
	s.router.POST("/scanner/upload", scannerHandlers.UploadHandler)
	s.router.POST("/scanner/dismiss", scannerHandlers.DismissHandler)
	s.router.POST("/scanner/simulate", scannerHandlers.SimulateHandler)
	s.router.GET("/cameras", scannerHandlers.CamerasHandler)

	// Register location handlers
	locationHandlers := location.NewHandlers(s.app, comp.Locations)
	s.router.GET("/locations", locationHandlers.ListHandler)
	s.router.POST("/locations/refresh", locationHandlers.RefreshHandler)
	s.router.POST("/locations/select", locationHandlers.SelectHandler)

	// Register demo pass handlers
	passHandlers := pass.NewHandlers(s.app)
	s.router.GET("/pass/:memberID", passHandlers.PassHandler)
	s.router.GET("/pass/:memberID/pdf", passHandlers.PDFHandler)

	if comp.Journal != nil {
		historyHandlers := history.NewHandlers(s.app, comp.Journal)
		s.router.GET("/history", historyHandlers.RecentHandler)
	}

	if comp.Hub != nil {
		s.router.GET("/ws", comp.Hub.Handler)
	}
}
