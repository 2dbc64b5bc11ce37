package engine

import (
	"os/exec"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSessionStopWaitsForFrameReader(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}

	cmd := exec.Command("cat", "/dev/zero")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.Fatalf("stdout pipe: %v", err)
	}
	if err := cmd.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	s := &ffmpegSession{
		cameraID: "/dev/video0",
		cmd:      cmd,
		stdout:   stdout,
		results:  make(chan string, 1),
		ready:    make(chan error, 1),
		done:     make(chan struct{}),
		width:    32,
		height:   32,
		logger:   zerolog.Nop(),
	}
	go s.loop()

	select {
	case err := <-s.ready:
		if err != nil {
			t.Fatalf("first frame: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no frame read")
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	select {
	case <-s.done:
	default:
		t.Fatal("frame reader still running after Stop")
	}
	if _, open := <-s.Results(); open {
		t.Fatal("results should be closed without a payload")
	}
}
