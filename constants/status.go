package constants

// VerifyStatus is the status field of a verification-service response.
type VerifyStatus string

// Stable values (these exact strings appear on the wire).
const (
	StatusVerified     VerifyStatus = "verified"      // genuine record found
	StatusNotFound     VerifyStatus = "not_found"     // no record for the code
	StatusFake         VerifyStatus = "fake"          // flagged counterfeit
	StatusReported     VerifyStatus = "reported"      // flagged by user reports
	StatusReplayAttack VerifyStatus = "replay_attack" // code reused after a prior scan
)

var knownStatuses = []VerifyStatus{
	StatusVerified,
	StatusNotFound,
	StatusFake,
	StatusReported,
	StatusReplayAttack,
}

// KnownStatus reports whether s is one of the statuses this client understands.
// Anything else is treated as an unknown response, never as a verdict.
func KnownStatus(s string) bool {
	for _, k := range knownStatuses {
		if s == string(k) {
			return true
		}
	}
	return false
}

// CriticalStatus reports whether s routes to the critical destination.
// replay_attack is folded into the reported class per the service contract.
func CriticalStatus(s string) bool {
	switch VerifyStatus(s) {
	case StatusFake, StatusReported, StatusReplayAttack:
		return true
	}
	return false
}
