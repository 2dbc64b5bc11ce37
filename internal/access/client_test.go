package access

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newScanServer(t *testing.T, status int, body string, seen *scanRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/scan" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if seen != nil {
			if err := json.NewDecoder(r.Body).Decode(seen); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerifyAllowed(t *testing.T) {
	var seen scanRequest
	srv := newScanServer(t, http.StatusOK, `{"allowed":true,"userId":4,"planName":"Premium Wash"}`, &seen)

	out, err := NewClient(srv.URL, time.Second).Verify(context.Background(), "CARWASH-4-1700000000000", "loc-1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if seen.QR != "CARWASH-4-1700000000000" || seen.LocationID != "loc-1" {
		t.Errorf("request = %+v", seen)
	}
	if !out.Allowed {
		t.Fatal("expected allowed")
	}
	if out.Subject != "Member #4" {
		t.Errorf("subject = %q, want Member #4", out.Subject)
	}
	if out.Plan != "Premium Wash" {
		t.Errorf("plan = %q, want Premium Wash", out.Plan)
	}
	if out.LocationID != "loc-1" {
		t.Errorf("location = %q", out.LocationID)
	}
}

func TestVerifyLabelFallbacks(t *testing.T) {
	tests := []struct {
		body    string
		subject string
		plan    string
	}{
		{`{"allowed":true}`, "Member", "Active Plan"},
		{`{"allowed":true,"userId":9,"planId":"plan-basic"}`, "Member #9", "plan-basic"},
		{`{"allowed":true,"userId":9,"userName":" Ada Lovelace ","planName":"Basic"}`, "Ada Lovelace", "Basic"},
	}
	for _, tt := range tests {
		srv := newScanServer(t, http.StatusOK, tt.body, nil)
		out, err := NewClient(srv.URL, time.Second).Verify(context.Background(), "x", "loc-1")
		if err != nil {
			t.Fatalf("%s: %v", tt.body, err)
		}
		if out.Subject != tt.subject || out.Plan != tt.plan {
			t.Errorf("%s: got (%q, %q), want (%q, %q)", tt.body, out.Subject, out.Plan, tt.subject, tt.plan)
		}
	}
}

func TestVerifyDenied(t *testing.T) {
	srv := newScanServer(t, http.StatusOK, `{"allowed":false,"reason":"expired"}`, nil)

	out, err := NewClient(srv.URL, time.Second).Verify(context.Background(), "CARWASH-4-1", "loc-1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if out.Allowed || out.Reason != "expired" {
		t.Errorf("outcome = %+v, want Denied{expired}", out)
	}
}

func TestVerifyDeniedOnBadRequestStatus(t *testing.T) {
	srv := newScanServer(t, http.StatusBadRequest, `{"allowed":false,"reason":"Invalid QR code format"}`, nil)

	out, err := NewClient(srv.URL, time.Second).Verify(context.Background(), "garbage", "loc-1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if out.Allowed || out.Reason != "Invalid QR code format" {
		t.Errorf("outcome = %+v", out)
	}
}

func TestVerifyDeniedWithoutReason(t *testing.T) {
	srv := newScanServer(t, http.StatusOK, `{"allowed":false}`, nil)
	out, err := NewClient(srv.URL, time.Second).Verify(context.Background(), "x", "loc-1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if out.Reason != "Denied" {
		t.Errorf("reason = %q, want Denied", out.Reason)
	}
}

func TestVerifyNonJSONIsServiceUnavailable(t *testing.T) {
	srv := newScanServer(t, http.StatusBadGateway, `<html>bad gateway</html>`, nil)

	_, err := NewClient(srv.URL, time.Second).Verify(context.Background(), "x", "loc-1")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("err = %v, want ErrServiceUnavailable", err)
	}
}

func TestVerifyNetworkErrorIsServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Verify(context.Background(), "x", "loc-1")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("err = %v, want ErrServiceUnavailable", err)
	}
}

func TestVerifyTimeoutIsServiceUnavailable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, 50*time.Millisecond).Verify(context.Background(), "x", "loc-1")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("err = %v, want ErrServiceUnavailable", err)
	}
}

func TestLocations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/locations" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"locations":[{"id":"loc-1","name":"Downtown","address":"1 Main St"},{"id":"loc-2","name":"Airport"}]}`))
	}))
	defer srv.Close()

	locs, err := NewClient(srv.URL+"/", time.Second).Locations(context.Background())
	if err != nil {
		t.Fatalf("locations: %v", err)
	}
	if len(locs) != 2 || locs[0].Name != "Downtown" || locs[1].Address != "" {
		t.Errorf("locations = %+v", locs)
	}
}
