package scanner

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neekaru/washgate/internal/app"
)

// maxUpload caps image uploads.
const maxUpload = 10 << 20

// Handlers contains HTTP handlers for the scanner
type Handlers struct {
	app        *app.App
	controller *Controller
}

// NewHandlers creates a new scanner handlers instance
func NewHandlers(app *app.App, controller *Controller) *Handlers {
	return &Handlers{app: app, controller: controller}
}

// StatusHandler returns the current scanner status
func (h *Handlers) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.Status())
}

// StartHandler starts scanning
func (h *Handlers) StartHandler(c *gin.Context) {
	if err := h.controller.Start(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, "Scanning started")
}

// StopHandler stops scanning
func (h *Handlers) StopHandler(c *gin.Context) {
	if err := h.controller.Stop(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, "Scanning stopped")
}

// FlashHandler toggles the torch
func (h *Handlers) FlashHandler(c *gin.Context) {
	if err := h.controller.ToggleFlash(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, "Flashlight toggled")
}

// CycleCameraHandler switches to the next camera
func (h *Handlers) CycleCameraHandler(c *gin.Context) {
	if err := h.controller.CycleCamera(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, "Camera switched")
}

// UploadHandler decodes a QR code from an uploaded image (form field "file")
func (h *Handlers) UploadHandler(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}
	if fileHeader.Size > maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUpload))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	h.app.Logger.Debug().Str("filename", fileHeader.Filename).Int("bytes", len(data)).Msg("Decoding uploaded image")

	if err := h.controller.DecodeFile(c.Request.Context(), data); err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, "Image scanned")
}

// DismissHandler clears the result on screen and resumes scanning
func (h *Handlers) DismissHandler(c *gin.Context) {
	if !h.controller.Dismiss() {
		h.ok(c, "Nothing to dismiss")
		return
	}
	h.ok(c, "Result dismissed")
}

// SimulateHandler verifies a demo pass without the camera
func (h *Handlers) SimulateHandler(c *gin.Context) {
	if !h.app.Config.DemoMode {
		c.JSON(http.StatusNotFound, gin.H{"error": "Demo mode is disabled"})
		return
	}

	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.controller.Simulate(c.Request.Context(), req.MemberID); err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, "Simulated scan verified")
}

// CamerasHandler re-enumerates and lists the cameras
func (h *Handlers) CamerasHandler(c *gin.Context) {
	cams := h.controller.Cameras(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"cameras":   cams,
		"camera_id": h.controller.Status().CameraID,
	})
}

func (h *Handlers) ok(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, ActionResponse{Msg: msg, Status: h.controller.Status()})
}

func (h *Handlers) writeError(c *gin.Context, err error) {
	se, ok := AsError(err)
	if !ok {
		h.app.Logger.Error().Err(err).Str("path", c.FullPath()).Msg("Scanner request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Status: h.controller.Status()})
		return
	}

	c.JSON(httpStatus(se.Kind), ErrorResponse{
		Error:     se.Message,
		Kind:      se.Kind,
		Retryable: se.Retryable(),
		Status:    h.controller.Status(),
	})
}

func httpStatus(kind Kind) int {
	switch kind {
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindNoLocationSelected, KindNotScanning:
		return http.StatusConflict
	case KindTorchUnsupported, KindImageUnreadable:
		return http.StatusUnprocessableEntity
	case KindDeviceError, KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
