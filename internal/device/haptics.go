package device

import (
	"io"
	"time"
)

// Haptics is a best-effort tactile-feedback primitive. Implementations must
// never fail the caller; absence of the capability is not an error.
type Haptics interface {
	Pulse(d time.Duration)
}

// NopHaptics is used where no tactile surface exists.
type NopHaptics struct{}

func (NopHaptics) Pulse(time.Duration) {}

// BellHaptics approximates a tactile pulse on a terminal with the BEL
// character. Write errors are swallowed.
type BellHaptics struct {
	W io.Writer
}

func (b BellHaptics) Pulse(time.Duration) {
	if b.W == nil {
		return
	}
	_, _ = b.W.Write([]byte{0x07})
}
