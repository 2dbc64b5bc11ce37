// Package engine is the QR decode engine: it samples frames from a capture
// device (or a single still image) and extracts the embedded payload.
package engine

import (
	"context"
	"errors"
)

var (
	// ErrPermissionDenied means the OS refused access to the camera.
	ErrPermissionDenied = errors.New("camera permission denied")
	// ErrDeviceError means the camera is busy, missing or failed mid-stream.
	ErrDeviceError = errors.New("camera device error")
	// ErrTorchUnsupported means the active device has no torch control.
	ErrTorchUnsupported = errors.New("torch not supported")
	// ErrNoCode means the image held no decodable QR code.
	ErrNoCode = errors.New("no QR code found")
)

// Engine starts live decode sessions and performs one-shot image decodes.
// A live session and an image decode must not hold the device at once; the
// caller stops the session first.
type Engine interface {
	// Start acquires the camera. An empty cameraID asks for the
	// environment-facing camera.
	Start(ctx context.Context, cameraID string) (Session, error)
	DecodeImage(ctx context.Context, data []byte) (string, error)
}

// Session is one live decode loop bound to one camera.
type Session interface {
	CameraID() string
	// Results yields at most one payload. It is closed without a value when
	// the stream ends before anything decodes.
	Results() <-chan string
	SetTorch(on bool) error
	// Stop releases the device and torch. Safe to call more than once.
	Stop() error
}
