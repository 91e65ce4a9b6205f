package scan

import (
	"sync"

	"github.com/google/uuid"

	"github.com/checkam/scanverifier/internal/verify"
)

// Stage is the pipeline session's current stage.
type Stage string

const (
	StageIdle                 Stage = "idle"
	StageAcquiring            Stage = "acquiring"
	StageExtracting           Stage = "extracting"
	StageAwaitingConfirmation Stage = "awaiting_confirmation"
	StageVerifying            Stage = "verifying"
	StageResolved             Stage = "resolved"
)

// Session is the ephemeral state bundle for one scan attempt. It is owned
// exclusively by the view presenting the scan flow; a fresh session is
// created per attempt rather than reusing a stale one. Idle is the initial
// stage and the recovery target for every failure and cancellation.
type Session struct {
	ID uuid.UUID

	mu          sync.Mutex
	stage       Stage
	candidate   string
	progress    string
	lastError   string
	outcome     *verify.Outcome
	destination Destination
}

// NewSession returns a fresh Idle session.
func NewSession() *Session {
	return &Session{ID: uuid.New(), stage: StageIdle}
}

// Snapshot is a consistent read of the session for presentation.
type Snapshot struct {
	ID          uuid.UUID
	Stage       Stage
	Candidate   string
	Progress    string
	LastError   string
	Destination Destination
	Outcome     *verify.Outcome
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:          s.ID,
		Stage:       s.stage,
		Candidate:   s.candidate,
		Progress:    s.progress,
		LastError:   s.lastError,
		Destination: s.destination,
		Outcome:     s.outcome,
	}
}

func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// transition moves the session to stage only if it currently sits in one of
// the from stages. All stage changes go through here so no observer ever
// sees a half-updated session.
func (s *Session) transition(to Stage, from ...Stage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range from {
		if s.stage == f {
			s.stage = to
			return true
		}
	}
	return false
}

// reset returns the session to Idle, optionally surfacing a dismissible
// error message. Candidate and outcome are discarded.
func (s *Session) reset(errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage = StageIdle
	s.candidate = ""
	s.progress = ""
	s.outcome = nil
	s.destination = DestNone
	s.lastError = errMsg
}

func (s *Session) setProgress(phase string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = phase
}

func (s *Session) setCandidate(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidate = code
	s.progress = ""
	s.lastError = ""
	s.stage = StageAwaitingConfirmation
}

func (s *Session) resolve(out verify.Outcome, dest Destination) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcome = &out
	s.destination = dest
	s.progress = ""
	s.lastError = ""
	s.stage = StageResolved
}
