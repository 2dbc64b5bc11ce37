package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/neekaru/washgate/internal/app"
	"github.com/neekaru/washgate/internal/config"
	"github.com/neekaru/washgate/internal/scanner"
	"github.com/rs/zerolog"
)

type staticStatus scanner.Status

func (s staticStatus) Status() scanner.Status { return scanner.Status(s) }

func TestHealthCheckHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := staticStatus{
		State:      scanner.StateRunning,
		CameraID:   "video0",
		LocationID: "loc-1",
		Error:      &scanner.ErrorView{Kind: scanner.KindTorchUnsupported, Message: "no torch"},
	}
	h := NewHandlers(app.NewApp(config.NewConfig(), zerolog.Nop(), nil), st, func() int { return 2 })

	r := gin.New()
	r.GET("/", h.RootHandler)
	r.GET("/health", h.HealthCheckHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["scanner"] != "running" || resp["location_id"] != "loc-1" || resp["displays"] != float64(2) {
		t.Fatalf("unexpected response %v", resp)
	}
	if _, ok := resp["last_error"]; !ok {
		t.Fatal("last_error missing")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("root: %d", w.Code)
	}
}
