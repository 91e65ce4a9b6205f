package scan

import (
	"github.com/checkam/scanverifier/internal/verify"
)

// Destination is one of the terminal views a verification outcome routes to.
type Destination string

const (
	DestVerified Destination = "verified"
	DestWarning  Destination = "warning"
	DestCritical Destination = "critical"
	// DestNone means stay on the scan view. Unknown outcomes route nowhere:
	// an ambiguous server response must not be presented as success or danger.
	DestNone Destination = ""
)

// Route maps an outcome to exactly one destination. Pure.
func Route(o verify.Outcome) Destination {
	switch o.Tag {
	case verify.TagVerified:
		return DestVerified
	case verify.TagNotFound:
		return DestWarning
	case verify.TagFake, verify.TagReported:
		return DestCritical
	default:
		return DestNone
	}
}
