package scan

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/checkam/scanverifier/constants"
	"github.com/checkam/scanverifier/internal/acquire"
	"github.com/checkam/scanverifier/internal/common"
	"github.com/checkam/scanverifier/internal/device"
	"github.com/checkam/scanverifier/internal/ocr"
	"github.com/checkam/scanverifier/internal/verify"
)

// Verifier is the verification-service contract the pipeline depends on.
type Verifier interface {
	Verify(ctx context.Context, code string) (verify.Outcome, error)
}

// Extractor is the recognition contract the pipeline depends on.
type Extractor interface {
	Extract(ctx context.Context, img *acquire.Payload, progress ocr.ProgressFunc) (ocr.RawResult, error)
}

// Pipeline coordinates acquisition, extraction, normalization, human
// confirmation, verification and routing for scan sessions. All work on a
// session happens on one logical thread of control; concurrency is ordered
// suspension, not parallel execution.
type Pipeline struct {
	Acquirer *acquire.Acquirer
	OCR      Extractor
	Client   Verifier
	Haptics  device.Haptics
	Logger   *slog.Logger
}

func NewPipeline(acq *acquire.Acquirer, ex Extractor, client Verifier, haptics device.Haptics, logger *slog.Logger) *Pipeline {
	if haptics == nil {
		haptics = device.NopHaptics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{Acquirer: acq, OCR: ex, Client: client, Haptics: haptics, Logger: logger}
}

// Result is a routed verification verdict.
type Result struct {
	Destination Destination
	Outcome     verify.Outcome
}

// Acquire obtains an image for sess from the camera or gallery surface and
// runs it through extraction. A session that is not Idle rejects the
// request: only one acquisition may be in flight, and none may start while
// a verification is in progress.
func (p *Pipeline) Acquire(ctx context.Context, sess *Session, src acquire.Source) (string, error) {
	if !sess.transition(StageAcquiring, StageIdle) {
		return "", common.ErrAcquisitionBusy
	}

	payload, err := p.Acquirer.Acquire(ctx, src)
	if err != nil {
		if errors.Is(err, common.ErrAcquisitionCancelled) || errors.Is(err, common.ErrAcquisitionBusy) {
			// Silent: back to Idle with no error banner.
			sess.reset("")
			return "", err
		}
		sess.reset(constants.RemediationMessage)
		return "", err
	}
	return p.process(ctx, sess, payload)
}

// Drop feeds a drag-and-drop payload into sess. A non-image drop is
// silently ignored: no error surfaced, no state change. A drop while the
// session is mid-flight is rejected busy, never run concurrently.
func (p *Pipeline) Drop(ctx context.Context, sess *Session, name, declaredMIME string, data []byte) (string, error) {
	payload, ok := p.Acquirer.AcceptDrop(name, declaredMIME, data)
	if !ok {
		return "", nil
	}
	if !sess.transition(StageAcquiring, StageIdle) {
		return "", common.ErrAcquisitionBusy
	}
	return p.process(ctx, sess, payload)
}

// process runs extraction and normalization, leaving the session awaiting
// confirmation on success. The image payload is discarded afterwards
// regardless of outcome.
func (p *Pipeline) process(ctx context.Context, sess *Session, payload *acquire.Payload) (string, error) {
	sess.transition(StageExtracting, StageAcquiring)

	raw, err := p.OCR.Extract(ctx, payload, sess.setProgress)
	if err != nil {
		p.Logger.Info("pipeline.extract.failed", "session_id", sess.ID, "error", err)
		sess.reset(constants.RemediationMessage)
		return "", err
	}

	code, err := ocr.Normalize(raw.Text)
	if err != nil {
		p.Logger.Info("pipeline.normalize.failed", "session_id", sess.ID, "error", err)
		sess.reset(constants.RemediationMessage)
		return "", err
	}

	sess.setCandidate(code)
	p.Haptics.Pulse(50 * time.Millisecond)
	p.Logger.Debug("pipeline.candidate.ready", "session_id", sess.ID, "length", len(code))
	return code, nil
}

// Confirm submits the user-edited code verbatim, with no re-normalization.
// The confirmation gate is mandatory: this is the only way a code reaches
// the verification service. An empty confirmed value is rejected without
// leaving the gate. A second confirm while one verification is in flight
// is rejected, so rapid double-submission issues at most one call.
func (p *Pipeline) Confirm(ctx context.Context, sess *Session, edited string) (Result, error) {
	if strings.TrimSpace(edited) == "" {
		return Result{}, common.ErrEmptyCode
	}
	if !sess.transition(StageVerifying, StageAwaitingConfirmation) {
		if sess.Stage() == StageVerifying {
			return Result{}, common.ErrVerifyInFlight
		}
		return Result{}, common.NewAppError("BAD_STAGE", "no candidate awaiting confirmation", nil)
	}

	// No cancellation from here: the call has been issued and the session
	// waits for its outcome.
	out, err := p.Client.Verify(ctx, edited)
	if err != nil {
		p.Logger.Warn("pipeline.verify.transport_failed", "session_id", sess.ID, "error", err)
		sess.reset(constants.TransportMessage)
		return Result{}, err
	}

	dest := Route(out)
	if dest == DestNone {
		// Fail closed on an unknown status: surface the error, stay put.
		p.Logger.Warn("pipeline.verify.unknown_status", "session_id", sess.ID, "status", out.Status)
		sess.reset(constants.UnknownMessage)
		return Result{Destination: DestNone, Outcome: out}, common.WrapError(common.ErrUnknownStatus, out.Status)
	}

	sess.resolve(out, dest)
	p.Logger.Info("pipeline.resolved", "session_id", sess.ID, "tag", out.Tag, "destination", dest)
	return Result{Destination: dest, Outcome: out}, nil
}

// Dismiss closes the confirmation gate, discarding the candidate and
// returning the session to Idle without contacting the service. Idempotent.
// Once a verification call has been issued it cannot be dismissed.
func (p *Pipeline) Dismiss(sess *Session) error {
	if sess.Stage() == StageVerifying {
		return common.ErrVerifyInFlight
	}
	sess.reset("")
	return nil
}
