package pass

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/neekaru/washgate/internal/engine"
)

func TestNewFormatsCode(t *testing.T) {
	issued := time.UnixMilli(1700000000000)
	p, err := New(4, issued)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if p.Code != "CARWASH-4-1700000000000" {
		t.Errorf("code = %q", p.Code)
	}
	if !p.ExpiresAt().Equal(issued.Add(5 * time.Minute)) {
		t.Errorf("expires = %s", p.ExpiresAt())
	}
}

func TestNewRejectsNonPositiveMember(t *testing.T) {
	if _, err := New(0, time.Now()); err == nil {
		t.Fatal("expected error for member 0")
	}
}

func TestRemainingAndExpired(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	p, _ := New(7, issued)

	if got := p.Remaining(issued.Add(61 * time.Second)); got != 239*time.Second {
		t.Errorf("remaining = %s", got)
	}
	if p.Expired(issued.Add(299 * time.Second)) {
		t.Error("should not be expired yet")
	}
	if !p.Expired(issued.Add(300 * time.Second)) {
		t.Error("should be expired at 300s")
	}
	if p.Remaining(issued.Add(time.Hour)) != 0 {
		t.Error("remaining should clamp to zero")
	}
}

func TestPNGDecodesBackToCode(t *testing.T) {
	p, _ := New(12, time.UnixMilli(1700000000123))
	png, err := p.PNG(DefaultImageSize)
	if err != nil {
		t.Fatalf("png: %v", err)
	}

	got, err := (&engine.FFmpegEngine{}).DecodeImage(context.Background(), png)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != p.Code {
		t.Errorf("decoded %q, want %q", got, p.Code)
	}
}

func TestDataURL(t *testing.T) {
	p, _ := New(1, time.Now())
	url, err := p.DataURL(128)
	if err != nil {
		t.Fatalf("data url: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("url prefix = %q", url[:30])
	}
}

func TestWritePDF(t *testing.T) {
	p, _ := New(4, time.Now())
	var buf bytes.Buffer
	if err := p.WritePDF(&buf, "", "Premium Wash"); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output does not look like a PDF: %q", buf.Bytes()[:8])
	}
}
