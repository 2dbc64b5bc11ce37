package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/neekaru/washgate/internal/camera"
	"github.com/rs/zerolog"
	ffmpeg_go "github.com/u2takey/ffmpeg-go"
)

// missLogEvery controls how often the live loop reports that nothing decoded.
const missLogEvery = 60

// CameraLister is what the engine needs from the camera enumerator.
type CameraLister interface {
	List(ctx context.Context) ([]camera.Descriptor, error)
}

// Options configures the ffmpeg-backed engine.
type Options struct {
	FFmpegPath   string
	FPS          int
	Width        int
	Height       int
	TorchLED     string
	StartTimeout time.Duration
}

// FFmpegEngine grabs grayscale frames from a V4L2 device through ffmpeg and
// decodes them with gozxing.
type FFmpegEngine struct {
	cameras CameraLister
	opts    Options
	logger  zerolog.Logger
}

// NewFFmpegEngine creates an engine that resolves default cameras through cameras.
func NewFFmpegEngine(cameras CameraLister, opts Options, logger zerolog.Logger) *FFmpegEngine {
	if opts.StartTimeout <= 0 {
		opts.StartTimeout = 5 * time.Second
	}
	return &FFmpegEngine{
		cameras: cameras,
		opts:    opts,
		logger:  logger.With().Str("component", "engine").Logger(),
	}
}

// DecodeImage decodes a still image.
func (e *FFmpegEngine) DecodeImage(ctx context.Context, data []byte) (string, error) {
	return decodeStill(ctx, data, e.opts.FFmpegPath)
}

// Start launches ffmpeg on the camera and waits for the first frame.
func (e *FFmpegEngine) Start(ctx context.Context, cameraID string) (Session, error) {
	if cameraID == "" {
		cams, err := e.cameras.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDeviceError, err)
		}
		def, _ := camera.PickDefault(cams)
		cameraID = def.ID
	}

	if err := probeDevice(cameraID); err != nil {
		return nil, err
	}

	stream := ffmpeg_go.Input(cameraID, ffmpeg_go.KwArgs{"f": "v4l2"}).
		Output("pipe:", ffmpeg_go.KwArgs{
			"f":       "rawvideo",
			"pix_fmt": "gray",
			"s":       fmt.Sprintf("%dx%d", e.opts.Width, e.opts.Height),
			"r":       e.opts.FPS,
		})
	if e.opts.FFmpegPath != "" {
		stream = stream.SetFfmpegPath(e.opts.FFmpegPath)
	}

	stderr := &tailBuffer{max: 4096}
	cmd := stream.WithErrorOutput(stderr).Compile()
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceError, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start ffmpeg: %v", ErrDeviceError, err)
	}

	s := &ffmpegSession{
		cameraID: cameraID,
		cmd:      cmd,
		stdout:   stdout,
		results:  make(chan string, 1),
		ready:    make(chan error, 1),
		done:     make(chan struct{}),
		torchLED: e.opts.TorchLED,
		width:    e.opts.Width,
		height:   e.opts.Height,
		logger:   e.logger.With().Str("camera", cameraID).Logger(),
	}
	go s.loop()

	timer := time.NewTimer(e.opts.StartTimeout)
	defer timer.Stop()

	select {
	case err := <-s.ready:
		if err == nil {
			e.logger.Info().Str("camera", cameraID).Msg("camera stream started")
			return s, nil
		}
		s.Stop()
		return nil, classifyStartFailure(stderr.String(), err)
	case <-timer.C:
		s.Stop()
		return nil, fmt.Errorf("%w: no frame within %s", ErrDeviceError, e.opts.StartTimeout)
	case <-ctx.Done():
		s.Stop()
		return nil, ctx.Err()
	}
}

// probeDevice distinguishes "not allowed" from "not there" before ffmpeg runs.
func probeDevice(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return fmt.Errorf("%w: %v", ErrDeviceError, err)
	}
	return f.Close()
}

func classifyStartFailure(stderr string, err error) error {
	if strings.Contains(stderr, "Permission denied") {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, lastLine(stderr))
	}
	if msg := lastLine(stderr); msg != "" {
		return fmt.Errorf("%w: %s", ErrDeviceError, msg)
	}
	return fmt.Errorf("%w: %v", ErrDeviceError, err)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

type ffmpegSession struct {
	cameraID string
	cmd      *exec.Cmd
	stdout   io.ReadCloser
	results  chan string
	ready    chan error
	done     chan struct{}
	torchLED string
	width    int
	height   int
	logger   zerolog.Logger

	torchMu sync.Mutex
	torchOn bool

	stopOnce sync.Once
	stopErr  error
}

func (s *ffmpegSession) CameraID() string       { return s.cameraID }
func (s *ffmpegSession) Results() <-chan string { return s.results }

func (s *ffmpegSession) loop() {
	defer close(s.done)
	defer close(s.results)

	frame := make([]byte, s.width*s.height)
	img := &image.Gray{Pix: frame, Stride: s.width, Rect: image.Rect(0, 0, s.width, s.height)}
	first := true
	misses := 0

	for {
		if _, err := io.ReadFull(s.stdout, frame); err != nil {
			if first {
				s.ready <- err
			} else if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				s.logger.Warn().Err(err).Msg("camera stream ended")
			}
			return
		}
		if first {
			first = false
			s.ready <- nil
		}

		text, err := DecodeFrame(img, false)
		if err != nil {
			misses++
			if misses%missLogEvery == 0 {
				s.logger.Debug().Int("frames", misses).Msg("scanning, no decode yet")
			}
			continue
		}

		s.logger.Info().Str("payload", text).Msg("decoded QR payload")
		s.results <- text
		return
	}
}

// SetTorch drives the configured LED brightness file.
func (s *ffmpegSession) SetTorch(on bool) error {
	s.torchMu.Lock()
	defer s.torchMu.Unlock()

	if s.torchLED == "" {
		return ErrTorchUnsupported
	}
	val := []byte("0")
	if on {
		val = []byte("1")
	}
	if err := os.WriteFile(s.torchLED, val, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrTorchUnsupported, err)
	}
	s.torchOn = on
	return nil
}

// Stop kills ffmpeg, reaps it and switches the torch off. The frame reader
// must have returned before Wait closes the pipe underneath it.
func (s *ffmpegSession) Stop() error {
	s.stopOnce.Do(func() {
		s.torchMu.Lock()
		if s.torchOn && s.torchLED != "" {
			_ = os.WriteFile(s.torchLED, []byte("0"), 0644)
			s.torchOn = false
		}
		s.torchMu.Unlock()

		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		_ = s.stdout.Close()
		<-s.done

		err := s.cmd.Wait()
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			s.stopErr = fmt.Errorf("release camera %s: %w", s.cameraID, err)
		}
		s.logger.Info().Msg("camera released")
	})
	return s.stopErr
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Write(p)
	if over := t.buf.Len() - t.max; over > 0 {
		t.buf.Next(over)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}
