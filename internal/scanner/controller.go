// Package scanner runs the gate scanning session: it owns the camera, hands
// decoded payloads to the access backend and puts the outcome on screen.
package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/neekaru/washgate/internal/access"
	"github.com/neekaru/washgate/internal/camera"
	"github.com/neekaru/washgate/internal/engine"
	"github.com/neekaru/washgate/internal/events"
	"github.com/neekaru/washgate/internal/history"
	"github.com/neekaru/washgate/internal/pass"
	"github.com/neekaru/washgate/internal/presenter"
	"github.com/rs/zerolog"
)

// Verifier decides whether a payload may enter at a location.
type Verifier interface {
	Verify(ctx context.Context, payload, locationID string) (access.Outcome, error)
}

// LocationSource reports the currently selected location, or "".
type LocationSource interface {
	SelectedID() string
}

// Recorder journals verified outcomes.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (history.Entry, error)
}

// Deps are the collaborators of a Controller. Journal and Bus may be nil.
type Deps struct {
	Engine    engine.Engine
	Cameras   engine.CameraLister
	Verifier  Verifier
	Locations LocationSource
	Presenter *presenter.Presenter
	Journal   Recorder
	Bus       *events.Bus
	Logger    zerolog.Logger
}

// Controller is the scan session state machine.
//
// lifecycle serialises every acquire and release of the engine so a stop
// always completes before the next start begins. mu guards the fields.
// verifying counts in-flight verifications; Start is refused while any run.
type Controller struct {
	engine    engine.Engine
	cameras   engine.CameraLister
	verifier  Verifier
	locations LocationSource
	presenter *presenter.Presenter
	journal   Recorder
	bus       *events.Bus
	logger    zerolog.Logger

	lifecycle sync.Mutex

	mu               sync.Mutex
	state            State
	torchOn          bool
	verifying        int
	session          engine.Session
	activeCameraID   string
	knownCameras     []camera.Descriptor
	camerasRefreshed bool
	lastErr          *Error
}

// New creates an idle controller. Dismissing a result restarts scanning.
func New(d Deps) *Controller {
	c := &Controller{
		engine:    d.Engine,
		cameras:   d.Cameras,
		verifier:  d.Verifier,
		locations: d.Locations,
		presenter: d.Presenter,
		journal:   d.Journal,
		bus:       d.Bus,
		logger:    d.Logger,
	}
	c.presenter.OnDismiss(c.resume)
	return c
}

func (c *Controller) resume() {
	// Without a location the restart would only show the same denial again.
	if c.locations.SelectedID() == "" {
		return
	}
	if err := c.Start(context.Background()); err != nil {
		c.logger.Warn().Err(err).Msg("Could not resume scanning after dismiss")
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start opens the camera and begins scanning. It is a no-op while a session
// is starting, running or stopping, and while a result is on screen.
func (c *Controller) Start(ctx context.Context) error {
	if !c.canStart() {
		return nil
	}
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	return c.startLocked(ctx)
}

func (c *Controller) canStart() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateIdle && c.verifying == 0 && !c.presenter.Visible()
}

func (c *Controller) startLocked(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle || c.verifying > 0 || c.presenter.Visible() {
		c.mu.Unlock()
		return nil
	}
	if c.locations.SelectedID() == "" {
		c.mu.Unlock()
		c.presenter.Show(access.Denied(access.ReasonNoLocation))
		return c.fail(errNoLocation())
	}
	c.state = StateStarting
	cameraID := c.activeCameraID
	c.mu.Unlock()
	c.publishState()

	sess, err := c.engine.Start(ctx, cameraID)
	if err != nil {
		c.mu.Lock()
		c.state = StateIdle
		c.torchOn = false
		c.mu.Unlock()
		c.publishState()
		return c.fail(classifyStart(err))
	}

	c.mu.Lock()
	c.state = StateRunning
	c.session = sess
	c.torchOn = false
	c.lastErr = nil
	if id := sess.CameraID(); id != "" {
		c.activeCameraID = id
	}
	refresh := !c.camerasRefreshed
	c.mu.Unlock()
	c.publishState()

	c.logger.Info().Str("camera", sess.CameraID()).Msg("Scanning started")
	go c.watch(sess)

	if refresh {
		c.refreshCameras(ctx)
	}
	return nil
}

// watch waits for the session's single payload. The session is released
// before verification so the camera is closed while a result is on screen.
func (c *Controller) watch(sess engine.Session) {
	payload, ok := <-sess.Results()

	c.lifecycle.Lock()
	c.mu.Lock()
	if c.session != sess {
		// Stopped or replaced by someone else.
		c.mu.Unlock()
		c.lifecycle.Unlock()
		return
	}
	c.session = nil
	c.state = StateStopping
	if ok {
		c.verifying++
	}
	c.mu.Unlock()
	c.publishState()

	c.release(sess)
	c.lifecycle.Unlock()

	if !ok {
		c.fail(errStreamEnded())
		return
	}

	c.logger.Debug().Str("camera", sess.CameraID()).Msg("QR decoded")
	c.verify(context.Background(), payload, history.SourceCamera, sess.CameraID())
	c.doneVerifying()
}

// Stop releases the camera. Stopping an idle controller does nothing.
func (c *Controller) Stop(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	return c.stopLocked()
}

func (c *Controller) stopLocked() error {
	c.mu.Lock()
	sess := c.session
	if sess == nil {
		c.mu.Unlock()
		return nil
	}
	c.session = nil
	c.state = StateStopping
	c.mu.Unlock()
	c.publishState()

	if err := c.release(sess); err != nil {
		return c.fail(newError(KindDeviceError, "Camera did not stop cleanly.", err))
	}
	c.logger.Info().Str("camera", sess.CameraID()).Msg("Scanning stopped")
	return nil
}

// release stops sess and returns the controller to Idle. Callers hold
// lifecycle and have already detached sess.
func (c *Controller) release(sess engine.Session) error {
	err := sess.Stop()
	if err != nil {
		c.logger.Warn().Err(err).Str("camera", sess.CameraID()).Msg("Error releasing camera")
	}
	c.mu.Lock()
	c.state = StateIdle
	c.torchOn = false
	c.mu.Unlock()
	c.publishState()
	return err
}

// ToggleFlash flips the torch of the running session.
func (c *Controller) ToggleFlash(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	sess := c.session
	if c.state != StateRunning || sess == nil {
		c.mu.Unlock()
		return c.fail(errNotScanning())
	}
	next := !c.torchOn
	c.mu.Unlock()

	if err := sess.SetTorch(next); err != nil {
		return c.fail(errTorch(err))
	}

	c.mu.Lock()
	c.torchOn = next
	c.mu.Unlock()
	c.publishState()
	return nil
}

// CycleCamera moves to the next known camera, wrapping around. With fewer
// than two cameras nothing changes. A live session is restarted on the new
// camera; an idle one only remembers the choice.
func (c *Controller) CycleCamera(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	known, err := c.cameras.List(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Camera enumeration failed")
		c.mu.Lock()
		known = c.knownCameras
		c.mu.Unlock()
	}
	if len(known) < 2 {
		return nil
	}

	c.mu.Lock()
	c.knownCameras = known
	c.camerasRefreshed = true
	next := known[(camera.IndexOf(known, c.activeCameraID)+1)%len(known)]
	c.activeCameraID = next.ID
	live := c.session != nil
	c.mu.Unlock()

	c.logger.Info().Str("camera", next.ID).Str("label", next.Label).Msg("Switched camera")
	c.publishCameras()

	if !live {
		return nil
	}
	if err := c.stopLocked(); err != nil {
		return err
	}
	return c.startLocked(ctx)
}

// Cameras re-enumerates and returns the known cameras.
func (c *Controller) Cameras(ctx context.Context) []camera.Descriptor {
	c.refreshCameras(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]camera.Descriptor(nil), c.knownCameras...)
}

func (c *Controller) refreshCameras(ctx context.Context) {
	cams, err := c.cameras.List(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Camera enumeration failed")
		return
	}
	c.mu.Lock()
	c.knownCameras = cams
	c.camerasRefreshed = true
	if c.activeCameraID == "" || camera.IndexOf(cams, c.activeCameraID) < 0 {
		if def, ok := camera.PickDefault(cams); ok && c.session == nil {
			c.activeCameraID = def.ID
		}
	}
	c.mu.Unlock()
	c.publishCameras()
}

// DecodeFile reads a QR code from an uploaded image and verifies it. The
// camera is stopped first and restarted afterwards only if it had been
// scanning and no result ended up on screen.
func (c *Controller) DecodeFile(ctx context.Context, data []byte) error {
	return c.oneShot(ctx, history.SourceFile, func(ctx context.Context) (string, error) {
		payload, err := c.engine.DecodeImage(ctx, data)
		if err != nil {
			return "", errImage(err)
		}
		return payload, nil
	})
}

// Simulate verifies a freshly issued pass for memberID as if it had been
// scanned.
func (c *Controller) Simulate(ctx context.Context, memberID int) error {
	p, err := pass.New(memberID, time.Now())
	if err != nil {
		return err
	}
	return c.oneShot(ctx, history.SourceSimulate, func(context.Context) (string, error) {
		return p.Code, nil
	})
}

func (c *Controller) oneShot(ctx context.Context, source string, read func(context.Context) (string, error)) error {
	c.lifecycle.Lock()
	wasScanning := c.State() == StateRunning
	if err := c.stopLocked(); err != nil {
		c.lifecycle.Unlock()
		return err
	}
	c.mu.Lock()
	c.verifying++
	c.mu.Unlock()
	c.lifecycle.Unlock()

	payload, err := read(ctx)
	if err != nil {
		if se, ok := AsError(err); ok {
			err = c.fail(se)
		}
	} else {
		err = c.verify(ctx, payload, source, "")
	}
	c.doneVerifying()

	if wasScanning && !c.presenter.Visible() {
		if startErr := c.Start(ctx); startErr != nil && err == nil {
			err = startErr
		}
	}
	return err
}

// verify asks the backend about payload. A decision goes on screen and into
// the journal; a failure to reach the backend is reported as an error only.
func (c *Controller) verify(ctx context.Context, payload, source, cameraID string) error {
	locationID := c.locations.SelectedID()

	out, err := c.verifier.Verify(ctx, payload, locationID)
	if err != nil {
		return c.fail(classifyVerify(err))
	}

	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()

	c.presenter.Show(out)
	c.logger.Info().
		Bool("allowed", out.Allowed).
		Str("location", out.LocationID).
		Str("source", source).
		Msg(out.String())

	if c.journal != nil {
		if _, err := c.journal.Record(ctx, history.FromOutcome(out, source, cameraID)); err != nil {
			c.logger.Error().Err(err).Msg("Failed to journal scan")
		}
	}
	return nil
}

// Dismiss clears the on-screen result, which resumes scanning.
func (c *Controller) Dismiss() bool {
	return c.presenter.Dismiss()
}

// Status snapshots the controller.
func (c *Controller) Status() Status {
	view := c.presenter.Snapshot()

	c.mu.Lock()
	defer c.mu.Unlock()
	st := Status{
		State:         c.state,
		TorchOn:       c.torchOn,
		ResultVisible: view.Visible,
		Outcome:       view.Outcome,
		CameraID:      c.activeCameraID,
		Cameras:       append([]camera.Descriptor{}, c.knownCameras...),
		LocationID:    c.locations.SelectedID(),
		Verifying:     c.verifying > 0,
	}
	if c.lastErr != nil {
		st.Error = c.lastErr.View()
	}
	return st
}

// LastError returns the most recent unresolved error, if any.
func (c *Controller) LastError() *Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) doneVerifying() {
	c.mu.Lock()
	c.verifying--
	c.mu.Unlock()
}

func (c *Controller) fail(e *Error) error {
	c.mu.Lock()
	c.lastErr = e
	c.mu.Unlock()

	c.logger.Warn().Err(e.Err).Str("kind", e.Kind.String()).Msg(e.Message)
	c.bus.Publish(events.New(events.EventTypeError, e.View()))
	return e
}

func (c *Controller) publishState() {
	c.mu.Lock()
	data := struct {
		State    State  `json:"state"`
		TorchOn  bool   `json:"torch_on"`
		CameraID string `json:"camera_id,omitempty"`
	}{c.state, c.torchOn, c.activeCameraID}
	c.mu.Unlock()
	c.bus.Publish(events.New(events.EventTypeState, data))
}

func (c *Controller) publishCameras() {
	c.mu.Lock()
	data := struct {
		Cameras  []camera.Descriptor `json:"cameras"`
		CameraID string              `json:"camera_id,omitempty"`
	}{append([]camera.Descriptor{}, c.knownCameras...), c.activeCameraID}
	c.mu.Unlock()
	c.bus.Publish(events.New(events.EventTypeCameras, data))
}
