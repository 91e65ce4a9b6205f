package device

import (
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// Capabilities describes the input surfaces available to the scan flow.
type Capabilities struct {
	HasCamera bool
}

var reMobileUA = regexp.MustCompile(`(?i)iPhone|iPad|iPod|Android`)

// MobileUserAgent reports whether a browser user-agent string belongs to a
// device with a camera-capable capture surface.
func MobileUserAgent(ua string) bool {
	return reMobileUA.MatchString(ua)
}

// Probe determines once, from environment signals, whether the local device
// exposes a camera. Safe to call repeatedly; the answer is cached for the
// session. Detection failure degrades to HasCamera=false and never blocks
// the file-based acquisition paths.
type Probe struct {
	once sync.Once
	caps Capabilities
}

func NewProbe() *Probe {
	return &Probe{}
}

func (p *Probe) Capabilities() Capabilities {
	p.once.Do(func() {
		p.caps = detect()
	})
	return p.caps
}

func detect() Capabilities {
	switch os.Getenv("SCAN_FORCE_CAMERA") {
	case "1", "true":
		return Capabilities{HasCamera: true}
	case "0", "false":
		return Capabilities{HasCamera: false}
	}
	// V4L capture nodes indicate a local camera.
	matches, err := filepath.Glob("/dev/video*")
	if err != nil {
		return Capabilities{}
	}
	return Capabilities{HasCamera: len(matches) > 0}
}
