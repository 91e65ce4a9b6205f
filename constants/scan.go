package constants

// CodeAllowlist is the character set the recognition engine is constrained to.
// Authentication codes are uppercase alphanumerics with optional hyphens.
const CodeAllowlist = "0123456789-ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// MinCodeLength is the shortest normalized code accepted for confirmation.
const MinCodeLength = 3

// Progress phases emitted during extraction, in order. Status signals only.
const (
	PhaseScannerActivated = "scanner activated"
	PhaseReadingCode      = "reading code from image"
)

// User-facing copy for the two surfaced failure classes.
const (
	RemediationMessage = "scan failed. Try a clearer, well-lit photo of the code."
	TransportMessage   = "network error. Please check your connection."
	UnknownMessage     = "unknown response from server."
)
