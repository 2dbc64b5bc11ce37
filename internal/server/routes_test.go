package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/neekaru/washgate/internal/access"
	"github.com/neekaru/washgate/internal/app"
	"github.com/neekaru/washgate/internal/camera"
	"github.com/neekaru/washgate/internal/config"
	"github.com/neekaru/washgate/internal/engine"
	"github.com/neekaru/washgate/internal/location"
	"github.com/neekaru/washgate/internal/presenter"
	"github.com/neekaru/washgate/internal/scanner"
	"github.com/rs/zerolog"
)

type noCameras struct{}

func (noCameras) List(context.Context) ([]camera.Descriptor, error) { return nil, nil }

type noEngine struct{}

func (noEngine) Start(context.Context, string) (engine.Session, error) {
	return nil, engine.ErrDeviceError
}

func (noEngine) DecodeImage(context.Context, []byte) (string, error) { return "", engine.ErrNoCode }

type noLocations struct{}

func (noLocations) Locations(context.Context) ([]access.Location, error) { return nil, nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.NewConfig()
	cfg.ServerPort = "0"
	application := app.NewApp(cfg, zerolog.Nop(), nil)

	store := location.NewStore(noLocations{})
	ctrl := scanner.New(scanner.Deps{
		Engine:    noEngine{},
		Cameras:   noCameras{},
		Verifier:  access.NewClient("http://127.0.0.1:1", time.Second),
		Locations: store,
		Presenter: presenter.New(nil),
		Logger:    zerolog.Nop(),
	})

	s := NewServer(application, nil)
	s.SetupRoutes(Components{Scanner: ctrl, Locations: store})
	return s
}

func TestRoutesRegistered(t *testing.T) {
	s := newTestServer(t)

	want := map[string]bool{
		"GET /":                      false,
		"GET /health":                false,
		"GET /scanner/status":        false,
		"POST /scanner/start":        false,
		"POST /scanner/stop":         false,
		"POST /scanner/flash":        false,
		"POST /scanner/cycle-camera": false,
		"POST /scanner/upload":       false,
		"POST /scanner/dismiss":      false,
		"POST /scanner/simulate":     false,
		"GET /cameras":               false,
		"GET /locations":             false,
		"POST /locations/refresh":    false,
		"POST /locations/select":     false,
		"GET /pass/:memberID":        false,
		"GET /pass/:memberID/pdf":    false,
	}
	for _, r := range s.Router().Routes() {
		key := r.Method + " " + r.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for route, seen := range want {
		if !seen {
			t.Errorf("route %s not registered", route)
		}
	}
}

func TestStartWithoutLocationOverHTTP(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/scanner/start", nil))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestShutdownWithoutStart(t *testing.T) {
	s := newTestServer(t)
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
