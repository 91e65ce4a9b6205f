package device

import (
	"testing"
	"time"
)

func TestMobileUserAgent(t *testing.T) {
	cases := []struct {
		ua   string
		want bool
	}{
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)", true},
		{"Mozilla/5.0 (Linux; Android 14; Pixel 8)", true},
		{"Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X)", true},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64)", false},
		{"curl/8.0", false},
		{"", false},
	}
	for _, c := range cases {
		if got := MobileUserAgent(c.ua); got != c.want {
			t.Fatalf("MobileUserAgent(%q): got %v, want %v", c.ua, got, c.want)
		}
	}
}

func TestProbe_EnvOverride(t *testing.T) {
	t.Setenv("SCAN_FORCE_CAMERA", "1")
	if !NewProbe().Capabilities().HasCamera {
		t.Fatal("override to true ignored")
	}

	t.Setenv("SCAN_FORCE_CAMERA", "0")
	if NewProbe().Capabilities().HasCamera {
		t.Fatal("override to false ignored")
	}
}

func TestProbe_CachesResult(t *testing.T) {
	t.Setenv("SCAN_FORCE_CAMERA", "1")
	p := NewProbe()
	first := p.Capabilities()

	// A later environment change must not alter a probed session.
	t.Setenv("SCAN_FORCE_CAMERA", "0")
	if got := p.Capabilities(); got != first {
		t.Fatalf("probe result changed mid-session: %v then %v", first, got)
	}
}

func TestBellHaptics_NilWriterIsSafe(t *testing.T) {
	BellHaptics{}.Pulse(50 * time.Millisecond)
	NopHaptics{}.Pulse(50 * time.Millisecond)
}
