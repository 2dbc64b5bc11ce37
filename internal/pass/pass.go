// Package pass produces member access passes: the QR payload a member shows
// at the gate and its PNG/PDF renderings.
package pass

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

const (
	// Prefix starts every pass payload.
	Prefix = "CARWASH"
	// Validity is how long a freshly issued pass is shown before refresh.
	Validity = 300 * time.Second
	// DefaultImageSize is the PNG edge length in pixels.
	DefaultImageSize = 256
)

// Pass is one issued code, CARWASH-<memberID>-<unix millis>.
type Pass struct {
	MemberID int       `json:"member_id"`
	IssuedAt time.Time `json:"issued_at"`
	Code     string    `json:"code"`
}

// New issues a pass for memberID at now.
func New(memberID int, now time.Time) (Pass, error) {
	if memberID <= 0 {
		return Pass{}, fmt.Errorf("invalid member id %d", memberID)
	}
	return Pass{
		MemberID: memberID,
		IssuedAt: now,
		Code:     fmt.Sprintf("%s-%d-%d", Prefix, memberID, now.UnixMilli()),
	}, nil
}

// ExpiresAt is when the pass should be refreshed.
func (p Pass) ExpiresAt() time.Time { return p.IssuedAt.Add(Validity) }

// Remaining returns the time left, never negative.
func (p Pass) Remaining(now time.Time) time.Duration {
	if d := p.ExpiresAt().Sub(now); d > 0 {
		return d
	}
	return 0
}

// Expired reports whether the validity window has elapsed.
func (p Pass) Expired(now time.Time) bool { return p.Remaining(now) == 0 }

// PNG renders the payload as a QR code image.
func (p Pass) PNG(size int) ([]byte, error) {
	qr, err := qrcode.New(p.Code, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	png, err := qr.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}
	return png, nil
}

// DataURL renders the PNG as a data: URL for embedding in a page.
func (p Pass) DataURL(size int) (string, error) {
	png, err := p.PNG(size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// WritePDF writes a printable A6 pass with the QR code and holder details.
func (p Pass) WritePDF(w io.Writer, holder, plan string) error {
	png, err := p.PNG(512)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A6", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetTitle("Car Wash Member Pass", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, "Car Wash Member Pass", "", 1, "C", false, 0, "")

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("qr", 19, 24, 67, 67, false, opts, 0, "")

	pdf.SetY(95)
	pdf.SetFont("Helvetica", "", 11)
	if holder == "" {
		holder = fmt.Sprintf("Member #%d", p.MemberID)
	}
	if plan == "" {
		plan = "Active Plan"
	}
	pdf.CellFormat(0, 6, holder, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, plan, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 5, "Valid until "+p.ExpiresAt().Format("2006-01-02 15:04:05"), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, p.Code, "", 1, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pass pdf: %w", err)
	}
	return pdf.Output(w)
}
