package verify

import (
	"encoding/json"

	"github.com/checkam/scanverifier/constants"
)

// Tag is the discriminant over verification outcomes.
type Tag string

const (
	TagVerified Tag = "verified"
	TagNotFound Tag = "not_found"
	TagFake     Tag = "fake"
	TagReported Tag = "reported"
	TagUnknown  Tag = "unknown"
)

// Outcome is the tagged result of one verification call. Created exactly
// once per call, immutable, consumed exactly once by the router.
type Outcome struct {
	Tag    Tag
	Status string         // raw service status; distinguishes fake/reported/replay within the critical class
	Code   string         // the queried code
	Record map[string]any // non-status response fields (verified or flagged record)
	Name   string         // best-guess product name, when the service offers one
}

// Critical reports whether the outcome belongs to the critical class.
func (o Outcome) Critical() bool {
	return o.Tag == TagFake || o.Tag == TagReported
}

// parseOutcome maps a raw service response body to an Outcome. A malformed
// payload or an unrecognized status both yield TagUnknown: ambiguous server
// responses are fail-closed, never presented as success or danger.
func parseOutcome(code string, body []byte) Outcome {
	unknown := Outcome{Tag: TagUnknown, Code: code}

	if err := validateResponse(body); err != nil {
		return unknown
	}

	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return unknown
	}
	status, _ := m["status"].(string)
	if !constants.KnownStatus(status) {
		unknown.Status = status
		return unknown
	}

	record := make(map[string]any, len(m))
	for k, v := range m {
		if k == "status" {
			continue
		}
		record[k] = v
	}
	name, _ := m["name"].(string)

	out := Outcome{Status: status, Code: code, Record: record, Name: name}
	switch constants.VerifyStatus(status) {
	case constants.StatusVerified:
		out.Tag = TagVerified
	case constants.StatusNotFound:
		out.Tag = TagNotFound
	case constants.StatusFake:
		out.Tag = TagFake
	default:
		// reported and replay_attack share the reported class.
		out.Tag = TagReported
	}
	return out
}
