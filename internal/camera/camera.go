// Package camera lists the video capture devices attached to the kiosk.
package camera

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrDeviceUnavailable is returned when no usable video input exists.
var ErrDeviceUnavailable = errors.New("no video input device available")

// Descriptor identifies one capture device. Label may be empty.
type Descriptor struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Enumerator reads V4L2 capture nodes from sysfs.
type Enumerator struct {
	// SysfsRoot is normally /sys/class/video4linux.
	SysfsRoot string
	// DevDir is where device nodes live, normally /dev.
	DevDir string
}

// NewEnumerator returns an enumerator rooted at sysfsRoot.
func NewEnumerator(sysfsRoot string) *Enumerator {
	return &Enumerator{SysfsRoot: sysfsRoot, DevDir: "/dev"}
}

var nodeName = regexp.MustCompile(`^video(\d+)$`)

// List returns the capture devices in node order. Metadata nodes (index != 0)
// are skipped.
func (e *Enumerator) List(ctx context.Context) ([]Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(e.SysfsRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrDeviceUnavailable
		}
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	type node struct {
		num int
		d   Descriptor
	}
	var nodes []node
	permissionDenied := false

	for _, entry := range entries {
		m := nodeName.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		dir := filepath.Join(e.SysfsRoot, entry.Name())

		if idx := readTrimmed(filepath.Join(dir, "index")); idx != "" && idx != "0" {
			continue
		}

		devPath := filepath.Join(e.DevDir, entry.Name())
		if f, err := os.Open(devPath); err != nil {
			if os.IsPermission(err) {
				permissionDenied = true
			}
			continue
		} else {
			f.Close()
		}

		nodes = append(nodes, node{
			num: num,
			d:   Descriptor{ID: devPath, Label: readTrimmed(filepath.Join(dir, "name"))},
		})
	}

	if len(nodes) == 0 {
		if permissionDenied {
			return nil, fmt.Errorf("%w: permission denied", ErrDeviceUnavailable)
		}
		return nil, ErrDeviceUnavailable
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].num < nodes[j].num })

	out := make([]Descriptor, len(nodes))
	for i, n := range nodes {
		out[i] = n.d
	}
	return out, nil
}

func readTrimmed(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

var rearLabel = regexp.MustCompile(`(?i)rear|back|environment`)

// PickDefault guesses the rear-facing camera. A label mentioning
// rear/back/environment wins; otherwise the last device when there are two or
// more (phones and tablets tend to enumerate the rear camera after the front
// one), otherwise the only device. This is a best-effort guess.
func PickDefault(cams []Descriptor) (Descriptor, bool) {
	if len(cams) == 0 {
		return Descriptor{}, false
	}
	for _, c := range cams {
		if rearLabel.MatchString(c.Label) {
			return c, true
		}
	}
	if len(cams) >= 2 {
		return cams[len(cams)-1], true
	}
	return cams[0], true
}

// IndexOf returns the position of id in cams, or -1.
func IndexOf(cams []Descriptor, id string) int {
	for i, c := range cams {
		if c.ID == id {
			return i
		}
	}
	return -1
}
