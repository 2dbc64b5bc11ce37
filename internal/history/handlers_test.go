package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/neekaru/washgate/internal/app"
	"github.com/neekaru/washgate/internal/config"
	"github.com/rs/zerolog"
)

func TestRecentHandler(t *testing.T) {
	j := openTestJournal(t)
	for i := 0; i < 3; i++ {
		if _, err := j.Record(context.Background(), Entry{Source: SourceCamera, Allowed: true, MemberID: i + 1}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	gin.SetMode(gin.TestMode)
	h := NewHandlers(app.NewApp(config.NewConfig(), zerolog.Nop(), nil), j)
	r := gin.New()
	r.GET("/history", h.RecentHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/history?limit=2", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("history: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Entries []Entry `json:"entries"`
		Total   int     `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 || len(resp.Entries) != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/history?limit=abc", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
