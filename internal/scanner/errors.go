package scanner

import (
	"errors"

	"github.com/neekaru/washgate/internal/access"
	"github.com/neekaru/washgate/internal/engine"
)

// Kind classifies scanner failures.
type Kind int

const (
	KindPermissionDenied Kind = iota + 1
	KindDeviceError
	KindTorchUnsupported
	KindServiceUnavailable
	KindNoLocationSelected
	KindNotScanning
	KindImageUnreadable
)

func (k Kind) String() string {
	switch k {
	case KindPermissionDenied:
		return "permission_denied"
	case KindDeviceError:
		return "device_error"
	case KindTorchUnsupported:
		return "torch_unsupported"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindNoLocationSelected:
		return "no_location_selected"
	case KindNotScanning:
		return "not_scanning"
	case KindImageUnreadable:
		return "image_unreadable"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind as its name in JSON.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Error is a failure the operator should see. Message is user-facing.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether trying again without changing anything may work.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindDeviceError, KindServiceUnavailable, KindImageUnreadable:
		return true
	default:
		return false
	}
}

// ErrorView is the JSON form of an Error.
type ErrorView struct {
	Kind      Kind   `json:"kind"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// View converts the error for JSON output.
func (e *Error) View() *ErrorView {
	return &ErrorView{Kind: e.Kind, Message: e.Message, Retryable: e.Retryable()}
}

// AsError extracts a scanner error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func errNoLocation() *Error {
	return newError(KindNoLocationSelected, "Select a location before scanning.", nil)
}

func errNotScanning() *Error {
	return newError(KindNotScanning, "Start scanning before using flashlight.", nil)
}

func errTorch(err error) *Error {
	return newError(KindTorchUnsupported, "Torch/flashlight is not supported on this device.", err)
}

func errServiceUnavailable(err error) *Error {
	return newError(KindServiceUnavailable, "Scan service unavailable. Try again.", err)
}

func errImage(err error) *Error {
	return newError(KindImageUnreadable, "Failed to read QR from image.", err)
}

func errStreamEnded() *Error {
	return newError(KindDeviceError, "Camera stream ended unexpectedly.", engine.ErrDeviceError)
}

// classifyStart maps an engine start failure onto a scanner error.
func classifyStart(err error) *Error {
	if errors.Is(err, engine.ErrPermissionDenied) {
		return newError(KindPermissionDenied, "Camera permission denied. Please allow camera access and try again.", err)
	}
	return newError(KindDeviceError, "Camera unavailable. Check the device and try again.", err)
}

// classifyVerify maps a verifier failure. Anything that is not a decision is
// service unavailability.
func classifyVerify(err error) *Error {
	if errors.Is(err, access.ErrServiceUnavailable) {
		return errServiceUnavailable(err)
	}
	return errServiceUnavailable(errors.Join(access.ErrServiceUnavailable, err))
}
