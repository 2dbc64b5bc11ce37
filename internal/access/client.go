package access

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrServiceUnavailable covers every way verification can fail without the
// backend making a decision. It is retryable and never a denial.
var ErrServiceUnavailable = errors.New("scan service unavailable")

// maxBody caps how much of a backend response is read.
const maxBody = 1 << 20

type scanRequest struct {
	QR         string `json:"qr"`
	LocationID string `json:"locationId"`
}

type scanResponse struct {
	Allowed    *bool  `json:"allowed"`
	Reason     string `json:"reason,omitempty"`
	UserID     int    `json:"userId,omitempty"`
	UserName   string `json:"userName,omitempty"`
	PlanID     string `json:"planId,omitempty"`
	PlanName   string `json:"planName,omitempty"`
	LocationID string `json:"locationId,omitempty"`
}

type locationsResponse struct {
	Locations []Location `json:"locations"`
}

// Client is the HTTP client for the scan and locations endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Verify submits a decoded payload for the given location. The payload is
// passed through untouched; the backend is the only judge.
func (c *Client) Verify(ctx context.Context, payload, locationID string) (Outcome, error) {
	body, err := json.Marshal(scanRequest{QR: payload, LocationID: locationID})
	if err != nil {
		return Outcome{}, fmt.Errorf("marshal scan request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/scan", bytes.NewReader(body))
	if err != nil {
		return Outcome{}, fmt.Errorf("build scan request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: read response: %v", ErrServiceUnavailable, err)
	}

	var data scanResponse
	if err := json.Unmarshal(raw, &data); err != nil || data.Allowed == nil {
		return Outcome{}, fmt.Errorf("%w: unexpected response (status %d)", ErrServiceUnavailable, resp.StatusCode)
	}

	out := toOutcome(data)
	out.Payload = payload
	if out.LocationID == "" {
		out.LocationID = locationID
	}
	return out, nil
}

func toOutcome(data scanResponse) Outcome {
	if !*data.Allowed {
		reason := data.Reason
		if reason == "" {
			reason = "Denied"
		}
		out := Denied(reason)
		out.MemberID = data.UserID
		out.LocationID = data.LocationID
		return out
	}

	subject := "Member"
	switch {
	case strings.TrimSpace(data.UserName) != "":
		subject = strings.TrimSpace(data.UserName)
	case data.UserID != 0:
		subject = fmt.Sprintf("Member #%d", data.UserID)
	}

	plan := "Active Plan"
	switch {
	case data.PlanName != "":
		plan = data.PlanName
	case data.PlanID != "":
		plan = data.PlanID
	}

	out := Allowed(subject, plan)
	out.MemberID = data.UserID
	out.PlanID = data.PlanID
	out.LocationID = data.LocationID
	return out
}

// Locations fetches the wash locations a scanner may be bound to.
func (c *Client) Locations(ctx context.Context) ([]Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/locations", nil)
	if err != nil {
		return nil, fmt.Errorf("build locations request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: locations status %s", ErrServiceUnavailable, resp.Status)
	}

	var data locationsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode locations: %v", ErrServiceUnavailable, err)
	}
	return data.Locations, nil
}
