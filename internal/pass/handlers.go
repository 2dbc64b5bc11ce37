package pass

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neekaru/washgate/internal/app"
)

// Handlers serves demo passes so a phone screen can be scanned at the gate.
type Handlers struct {
	app *app.App
	now func() time.Time
}

// NewHandlers creates a new pass handlers instance
func NewHandlers(app *app.App) *Handlers {
	return &Handlers{app: app, now: time.Now}
}

// Response is a freshly issued pass with its QR image.
type Response struct {
	Pass
	ExpiresAt time.Time `json:"expires_at"`
	ExpiresIn int       `json:"expires_in"`
	Image     string    `json:"image"`
}

// PassHandler handles GET /pass/:memberID - issues a pass and returns it as a data URL
func (h *Handlers) PassHandler(c *gin.Context) {
	p, ok := h.issue(c)
	if !ok {
		return
	}

	size := DefaultImageSize
	if raw := c.Query("size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 64 && n <= 1024 {
			size = n
		}
	}

	image, err := p.DataURL(size)
	if err != nil {
		h.app.Logger.Error().Err(err).Int("member", p.MemberID).Msg("QR render failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}

	c.JSON(http.StatusOK, Response{
		Pass:      p,
		ExpiresAt: p.ExpiresAt(),
		ExpiresIn: int(Validity / time.Second),
		Image:     image,
	})
}

// PDFHandler handles GET /pass/:memberID/pdf - a printable pass
func (h *Handlers) PDFHandler(c *gin.Context) {
	p, ok := h.issue(c)
	if !ok {
		return
	}

	holder := c.DefaultQuery("holder", "Member #"+strconv.Itoa(p.MemberID))
	plan := c.DefaultQuery("plan", "Active Plan")

	var buf bytes.Buffer
	if err := p.WritePDF(&buf, holder, plan); err != nil {
		h.app.Logger.Error().Err(err).Int("member", p.MemberID).Msg("PDF render failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
		return
	}

	c.Header("Content-Disposition", "inline; filename=pass-"+strconv.Itoa(p.MemberID)+".pdf")
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (h *Handlers) issue(c *gin.Context) (Pass, bool) {
	if !h.app.Config.DemoMode {
		c.JSON(http.StatusNotFound, gin.H{"error": "Demo mode is disabled"})
		return Pass{}, false
	}

	memberID, err := strconv.Atoi(c.Param("memberID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member id"})
		return Pass{}, false
	}

	p, err := New(memberID, h.now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return Pass{}, false
	}
	return p, true
}
