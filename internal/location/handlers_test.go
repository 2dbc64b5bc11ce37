package location

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/neekaru/washgate/internal/access"
	"github.com/neekaru/washgate/internal/app"
	"github.com/neekaru/washgate/internal/config"
	"github.com/rs/zerolog"
)

func newLocationRouter(store *Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandlers(app.NewApp(config.NewConfig(), zerolog.Nop(), nil), store)

	r := gin.New()
	r.GET("/locations", h.ListHandler)
	r.POST("/locations/refresh", h.RefreshHandler)
	r.POST("/locations/select", h.SelectHandler)
	return r
}

func TestLocationEndpoints(t *testing.T) {
	src := &fakeSource{locs: []access.Location{{ID: "loc-1", Name: "Downtown"}, {ID: "loc-2", Name: "Airport"}}}
	store := NewStore(src)
	router := newLocationRouter(store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/locations/refresh", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/locations/select", strings.NewReader(`{"location_id":"loc-2"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("select: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/locations", nil))
	var resp LocationsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 || resp.Selected != "loc-2" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestSelectUnknownLocationEndpoint(t *testing.T) {
	router := newLocationRouter(NewStore(&fakeSource{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/locations/select", strings.NewReader(`{"location_id":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
