package scanner

import (
	"github.com/neekaru/washgate/internal/access"
	"github.com/neekaru/washgate/internal/camera"
)

// State is the scan session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateStopping
)

// String returns a string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// MarshalText renders the state as its name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Status is a point-in-time view of the controller for the API and console.
type Status struct {
	State         State               `json:"state"`
	TorchOn       bool                `json:"torch_on"`
	ResultVisible bool                `json:"result_visible"`
	Outcome       *access.Outcome     `json:"outcome,omitempty"`
	CameraID      string              `json:"camera_id,omitempty"`
	Cameras       []camera.Descriptor `json:"cameras"`
	LocationID    string              `json:"location_id,omitempty"`
	Verifying     bool                `json:"verifying"`
	Error         *ErrorView          `json:"error,omitempty"`
}
