package scan

import (
	"testing"

	"github.com/checkam/scanverifier/internal/verify"
)

func TestRoute_Table(t *testing.T) {
	cases := []struct {
		tag  verify.Tag
		want Destination
	}{
		{verify.TagVerified, DestVerified},
		{verify.TagNotFound, DestWarning},
		{verify.TagFake, DestCritical},
		{verify.TagReported, DestCritical},
		{verify.TagUnknown, DestNone},
	}
	for _, c := range cases {
		if got := Route(verify.Outcome{Tag: c.tag}); got != c.want {
			t.Fatalf("Route(%s): got %q, want %q", c.tag, got, c.want)
		}
	}
}

func TestRoute_ReplayAttackIsCriticalClass(t *testing.T) {
	// replay_attack arrives already folded into the reported tag; it must
	// land on the critical view like fake and reported.
	out := verify.Outcome{Tag: verify.TagReported, Status: "replay_attack"}
	if got := Route(out); got != DestCritical {
		t.Fatalf("got %q, want %q", got, DestCritical)
	}
}
